package chunk

import (
	"fmt"

	"github.com/apackfmt/apack/errs"
	"github.com/apackfmt/apack/pipeline"
	"github.com/apackfmt/apack/provider"
)

// stageContext carries the per-call data pipeline stages need beyond the
// bytes flowing through them: the AAD bound to this chunk, and (on the
// reverse pass) the original size a declined compression stage must
// still match exactly.
type stageContext struct {
	aad          []byte
	originalSize int32
}

// compressionStage wraps a CompressionProvider as a pipeline.Stage. It
// declines (applied=false) whenever compressing would not shrink the
// data, implementing the size-regression fallback.
type compressionStage struct {
	provider provider.CompressionProvider
	level    int
}

func (s compressionStage) Name() string { return "compress" }

func (s compressionStage) Forward(data []byte, _ stageContext) ([]byte, bool, error) {
	compressed, err := s.provider.CompressBlock(data, s.level)
	if err != nil {
		return nil, false, err
	}
	if len(compressed) < len(data) {
		return compressed, true, nil
	}
	return data, false, nil
}

func (s compressionStage) Reverse(data []byte, applied bool, ctx stageContext) ([]byte, error) {
	if !applied {
		if int32(len(data)) != ctx.originalSize {
			return nil, fmt.Errorf("%w: got %d want %d", errs.ErrChunkSizeMismatch, len(data), ctx.originalSize)
		}
		return data, nil
	}
	return s.provider.DecompressBlock(data, int(ctx.originalSize))
}

// encryptionStage wraps an EncryptionProvider as a pipeline.Stage. It is
// always applied when present in the pipeline; there is no regression
// fallback for encryption.
type encryptionStage struct {
	provider provider.EncryptionProvider
	key      []byte
}

func (s encryptionStage) Name() string { return "encrypt" }

func (s encryptionStage) Forward(data []byte, ctx stageContext) ([]byte, bool, error) {
	if len(s.key) == 0 {
		return nil, false, errs.ErrNoKeyConfigured
	}
	sealed, err := s.provider.EncryptBlock(s.key, data, ctx.aad)
	if err != nil {
		return nil, false, err
	}
	return sealed, true, nil
}

func (s encryptionStage) Reverse(data []byte, applied bool, ctx stageContext) ([]byte, error) {
	if !applied {
		return data, nil
	}
	if len(s.key) == 0 {
		return nil, errs.ErrNoKeyConfigured
	}
	return s.provider.DecryptBlock(s.key, data, ctx.aad)
}

var _ pipeline.Stage[stageContext] = compressionStage{}
var _ pipeline.Stage[stageContext] = encryptionStage{}
