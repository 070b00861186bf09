// Package provider implements the three pluggable-algorithm registries
// the format names by numeric id: compression, encryption, checksum, and
// (for encryption setup) key derivation. Registry lookups by numeric id
// or by name return a stateless, shareable handle; an unknown id or name
// returns errs.ErrUnknownAlgorithm, a Format-kind error (unknown names are
// not reported as Configuration-kind errors).
package provider

import (
	"fmt"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
)

// CompressionProvider compresses/decompresses whole chunk bodies. A
// provider must be safe for concurrent use; it holds no per-call state.
type CompressionProvider interface {
	ID() uint8
	Name() string
	DefaultLevel() int
	MinLevel() int
	MaxLevel() int

	// CompressBlock compresses data at level and returns the compressed
	// bytes. MaxCompressedSize bounds the allocation a caller needs for
	// streaming variants.
	CompressBlock(data []byte, level int) ([]byte, error)

	// DecompressBlock decompresses data, which must expand to exactly
	// originalSize; a mismatch is an integrity error.
	DecompressBlock(data []byte, originalSize int) ([]byte, error)

	MaxCompressedSize(originalSize int) int
}

var compressionByID = map[uint8]CompressionProvider{}
var compressionByName = map[string]CompressionProvider{}

func registerCompression(p CompressionProvider) {
	compressionByID[p.ID()] = p
	compressionByName[p.Name()] = p
}

func init() {
	registerCompression(noopCompression{})
	registerCompression(zstdCompression{})
	registerCompression(lz4Compression{})
	registerCompression(s2Compression{})
}

// CompressionByID looks up a compression provider by its numeric id.
func CompressionByID(id uint8) (CompressionProvider, error) {
	if p, ok := compressionByID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: compression id %d", errs.ErrUnknownAlgorithm, id)
}

// CompressionByName looks up a compression provider by its name.
func CompressionByName(name string) (CompressionProvider, error) {
	if p, ok := compressionByName[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: compression %q", errs.ErrUnknownAlgorithm, name)
}

// noopCompression implements CompressionProvider as a straight passthrough.
type noopCompression struct{}

func (noopCompression) ID() uint8          { return apackformat.CompressionNone }
func (noopCompression) Name() string       { return "none" }
func (noopCompression) DefaultLevel() int  { return 0 }
func (noopCompression) MinLevel() int      { return 0 }
func (noopCompression) MaxLevel() int      { return 0 }
func (noopCompression) MaxCompressedSize(n int) int { return n }

func (noopCompression) CompressBlock(data []byte, _ int) ([]byte, error) {
	return data, nil
}

func (noopCompression) DecompressBlock(data []byte, originalSize int) ([]byte, error) {
	if len(data) != originalSize {
		return nil, fmt.Errorf("%w: got %d want %d", errs.ErrDecompressSizeMismatch, len(data), originalSize)
	}
	return data, nil
}
