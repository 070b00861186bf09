package provider

import (
	"fmt"
	"sync"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; they carry internal
// state worth reusing across chunks.
var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

type lz4Compression struct{}

func (lz4Compression) ID() uint8    { return apackformat.CompressionLZ4 }
func (lz4Compression) Name() string { return "lz4" }

// LZ4 has no meaningful level knob in this binding; all three values
// collapse to the single block-compression mode pierrec/lz4 exposes.
func (lz4Compression) DefaultLevel() int { return 0 }
func (lz4Compression) MinLevel() int     { return 0 }
func (lz4Compression) MaxLevel() int     { return 0 }

func (lz4Compression) MaxCompressedSize(n int) int {
	return lz4.CompressBlockBound(n)
}

func (lz4Compression) CompressBlock(data []byte, level int) ([]byte, error) {
	if level != 0 {
		return nil, fmt.Errorf("%w: lz4 level %d", errs.ErrUnsupportedLevel, level)
	}
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4: compress: %w", err)
	}
	return dst[:n], nil
}

func (lz4Compression) DecompressBlock(data []byte, originalSize int) ([]byte, error) {
	if len(data) == 0 {
		if originalSize != 0 {
			return nil, fmt.Errorf("%w: got 0 want %d", errs.ErrDecompressSizeMismatch, originalSize)
		}
		return nil, nil
	}

	dst := make([]byte, originalSize)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4: decompress: %w", err)
	}
	if n != originalSize {
		return nil, fmt.Errorf("%w: got %d want %d", errs.ErrDecompressSizeMismatch, n, originalSize)
	}
	return dst, nil
}
