package provider

import (
	"fmt"

	"github.com/apackfmt/apack/errs"
	"github.com/klauspost/compress/s2"
)

// CompressionS2ID is the user-extension numeric id for the S2 codec. The
// reserved range 0-127 names only none/ZSTD/LZ4; S2 is carried as the
// first id past the reserved boundary.
const CompressionS2ID uint8 = 128

type s2Compression struct{}

func (s2Compression) ID() uint8    { return CompressionS2ID }
func (s2Compression) Name() string { return "s2" }

func (s2Compression) DefaultLevel() int { return 0 }
func (s2Compression) MinLevel() int     { return 0 }
func (s2Compression) MaxLevel() int     { return 1 } // 0=default, 1=better

func (s2Compression) MaxCompressedSize(n int) int {
	return s2.MaxEncodedLen(n) + 16
}

func (s2Compression) CompressBlock(data []byte, level int) ([]byte, error) {
	if level < 0 || level > 1 {
		return nil, fmt.Errorf("%w: s2 level %d", errs.ErrUnsupportedLevel, level)
	}
	dst := make([]byte, s2.MaxEncodedLen(len(data)))
	if level == 1 {
		return s2.EncodeBetter(dst, data), nil
	}
	return s2.Encode(dst, data), nil
}

func (s2Compression) DecompressBlock(data []byte, originalSize int) ([]byte, error) {
	if len(data) == 0 {
		if originalSize != 0 {
			return nil, fmt.Errorf("%w: got 0 want %d", errs.ErrDecompressSizeMismatch, originalSize)
		}
		return nil, nil
	}
	dst := make([]byte, originalSize)
	out, err := s2.Decode(dst, data)
	if err != nil {
		return nil, fmt.Errorf("s2: decompress: %w", err)
	}
	if len(out) != originalSize {
		return nil, fmt.Errorf("%w: got %d want %d", errs.ErrDecompressSizeMismatch, len(out), originalSize)
	}
	return out, nil
}
