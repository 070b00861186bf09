// Package chunk implements the per-block processing pipeline (§4.4), the
// chunked writer (§4.5), and the chunked reader (§4.6): splitting entry
// data into bounded chunks, each independently checksummed, optionally
// compressed, and optionally encrypted.
package chunk

import (
	"fmt"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"github.com/apackfmt/apack/pipeline"
	"github.com/apackfmt/apack/provider"
)

// Config parameterizes a Processor. Compression and Encryption may be
// nil to disable that stage; Checksum is always required.
type Config struct {
	Compression      provider.CompressionProvider
	CompressionLevel int
	Encryption       provider.EncryptionProvider
	Key              []byte
	Checksum         provider.ChecksumProvider
}

// Processor is the stateless compress-then-encrypt / decrypt-then-
// decompress transform applied to every chunk body. It holds no
// per-call state and is safe for concurrent use; callers needing a
// checksum must still own a fresh hash.Hash per write or read path (see
// §5 of the spec this implements). Internally it composes the
// compress/encrypt stages through a pipeline.Pipeline so the forward and
// reverse orderings can't drift apart.
type Processor struct {
	cfg     Config
	pipe    *pipeline.Pipeline[stageContext]
	hasComp bool
	hasEncr bool
}

// NewProcessor builds a Processor from cfg. Checksum must be non-nil.
func NewProcessor(cfg Config) *Processor {
	p := &Processor{cfg: cfg}

	var stages []pipeline.Stage[stageContext]
	if cfg.Compression != nil {
		stages = append(stages, compressionStage{provider: cfg.Compression, level: cfg.CompressionLevel})
		p.hasComp = true
	}
	if cfg.Encryption != nil {
		stages = append(stages, encryptionStage{provider: cfg.Encryption, key: cfg.Key})
		p.hasEncr = true
	}
	p.pipe = pipeline.New(stages...)

	return p
}

// Checksum computes the chunk checksum over the original (pre-transform)
// bytes, per invariant 5.
func (p *Processor) Checksum(original []byte) uint32 {
	return p.cfg.Checksum.Compute(original)
}

// Result is the outcome of ProcessForWrite: the on-disk body plus the
// flags and sizes that go into the chunk's ChunkHeader.
type Result struct {
	Body         []byte
	OriginalSize int32
	StoredSize   int32
	Compressed   bool
	Encrypted    bool
	Checksum     uint32
}

// ProcessForWrite runs the write-side pipeline: checksum the original
// bytes, then run the configured compress/encrypt stages in order.
// Compression only applies when it shrinks the data (size-regression
// fallback), implemented by the pipeline stage itself.
func (p *Processor) ProcessForWrite(data []byte, aad []byte) (Result, error) {
	res := Result{
		OriginalSize: int32(len(data)),
		Checksum:     p.Checksum(data),
	}

	body, applied, err := p.pipe.Forward(data, stageContext{aad: aad})
	if err != nil {
		return Result{}, fmt.Errorf("chunk: %w", err)
	}

	idx := 0
	if p.hasComp {
		res.Compressed = applied[idx]
		idx++
	}
	if p.hasEncr {
		res.Encrypted = applied[idx]
		idx++
	}

	res.Body = body
	res.StoredSize = int32(len(body))
	return res, nil
}

// ProcessForRead reverses ProcessForWrite: decrypt (if encrypted),
// decompress to exactly originalSize (if compressed), else require the
// body to already be originalSize bytes long. It does not verify the
// checksum; callers (the chunked reader) do that against the header's
// checksum field once the original bytes are reconstructed.
func (p *Processor) ProcessForRead(body []byte, originalSize int32, compressed, encrypted bool, aad []byte) ([]byte, error) {
	if originalSize < 0 || originalSize > apackformat.MaxOriginalSize {
		return nil, fmt.Errorf("%w: original size %d out of bounds [0, %d]", errs.ErrInvalidSize, originalSize, apackformat.MaxOriginalSize)
	}

	if compressed && !p.hasComp {
		return nil, fmt.Errorf("%w", errs.ErrNoCompressionProvider)
	}
	if encrypted && !p.hasEncr {
		return nil, fmt.Errorf("%w", errs.ErrNoKeyConfigured)
	}

	applied := make([]bool, 0, 2)
	if p.hasComp {
		applied = append(applied, compressed)
	}
	if p.hasEncr {
		applied = append(applied, encrypted)
	}

	data, err := p.pipe.Reverse(body, applied, stageContext{aad: aad, originalSize: originalSize})
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	if !compressed && int32(len(data)) != originalSize {
		return nil, fmt.Errorf("chunk: %w: got %d want %d", errs.ErrChunkSizeMismatch, len(data), originalSize)
	}
	return data, nil
}
