package provider

import (
	"fmt"
	"sync"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPools holds one pool per encoder level, since a
// klauspost/compress encoder's level is fixed at construction; the
// decoder has no level and so needs only a single pool. Both are
// designed to be reused after a warmup per the klauspost/compress docs.
var zstdEncoderPools sync.Map // int(zstd.EncoderLevel) -> *sync.Pool

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("provider: failed to build zstd decoder: %v", err))
		}
		return dec
	},
}

func zstdEncoderPoolFor(level zstd.EncoderLevel) *sync.Pool {
	if p, ok := zstdEncoderPools.Load(int(level)); ok {
		return p.(*sync.Pool)
	}
	p := &sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderCRC(false))
			if err != nil {
				panic(fmt.Sprintf("provider: failed to build zstd encoder: %v", err))
			}
			return enc
		},
	}
	actual, _ := zstdEncoderPools.LoadOrStore(int(level), p)
	return actual.(*sync.Pool)
}

type zstdCompression struct{}

func (zstdCompression) ID() uint8    { return apackformat.CompressionZstd }
func (zstdCompression) Name() string { return "zstd" }

// The format exposes zstd's encoder level as a plain int so CLI/API
// callers need not know klauspost's named constants.
func (zstdCompression) DefaultLevel() int { return int(zstd.SpeedDefault) }
func (zstdCompression) MinLevel() int     { return int(zstd.SpeedFastest) }
func (zstdCompression) MaxLevel() int     { return int(zstd.SpeedBestCompression) }

func (zstdCompression) MaxCompressedSize(n int) int {
	// zstd frames can slightly exceed input size on incompressible data;
	// the chunk processor's size-regression fallback covers that case,
	// this bound only needs to be safe for buffer preallocation.
	return n + n/8 + 64
}

func (zstdCompression) CompressBlock(data []byte, level int) ([]byte, error) {
	if level < int(zstd.SpeedFastest) || level > int(zstd.SpeedBestCompression) {
		return nil, fmt.Errorf("%w: zstd level %d", errs.ErrUnsupportedLevel, level)
	}

	pool := zstdEncoderPoolFor(zstd.EncoderLevel(level))
	enc, _ := pool.Get().(*zstd.Encoder)
	defer pool.Put(enc)

	// EncodeAll is stateless; safe to call on a pooled encoder.
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func (zstdCompression) DecompressBlock(data []byte, originalSize int) ([]byte, error) {
	if len(data) == 0 {
		if originalSize != 0 {
			return nil, fmt.Errorf("%w: got 0 want %d", errs.ErrDecompressSizeMismatch, originalSize)
		}
		return nil, nil
	}

	dec, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, make([]byte, 0, originalSize))
	if err != nil {
		return nil, fmt.Errorf("zstd: decompress: %w", err)
	}
	if len(out) != originalSize {
		return nil, fmt.Errorf("%w: got %d want %d", errs.ErrDecompressSizeMismatch, len(out), originalSize)
	}
	return out, nil
}
