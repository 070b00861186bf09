// Package apack implements the APACK binary container format: a chunked,
// optionally compressed and encrypted archive with random-access lookup by
// entry id or name.
//
// # Core Features
//
//   - Per-chunk pipeline: checksum → compress → encrypt on write, the
//     reverse on read, with tamper detection at every stage.
//   - Pluggable compression (none, Zstd, LZ4), encryption (AES-256-GCM,
//     ChaCha20-Poly1305) and checksum (CRC-32, XXH3-64) providers.
//   - Password-based encryption via Argon2id or PBKDF2-SHA256 key
//     derivation, wrapping a per-archive data-encryption key.
//   - Container mode (table of contents, random access by id or name) and
//     stream mode (single entry, sequential only, no seekable sink
//     required).
//
// # Basic Usage
//
// Creating an archive:
//
//	f, _ := os.Create("out.apack")
//	defer f.Close()
//	w, _ := apack.NewWriter(f, apack.WriterConfig{Compression: "zstd"})
//	ew, _ := w.AddEntry(apack.EntryOptions{Name: "a.txt"})
//	ew.Write([]byte("hello"))
//	ew.Close()
//	w.Close()
//
// Reading an archive:
//
//	src, _ := apack.OpenFile("out.apack")
//	r, _ := apack.Open(src, apack.ReaderConfig{})
//	defer r.Close()
//	_, rd, _ := r.ByName("a.txt")
//	data, _ := io.ReadAll(rd)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the archive
// package, simplifying the most common use cases. For advanced usage and
// fine-grained control — custom chunk sizes, per-entry attributes, stream
// mode, low-level chunk or provider access — use the archive, chunk and
// provider packages directly.
package apack

import (
	"io"

	"github.com/apackfmt/apack/archive"
)

// WriterConfig, EntryOptions, ReaderConfig and Source are re-exported from
// the archive package so callers of this package never need to import it
// directly for the common path.
type (
	WriterConfig = archive.WriterConfig
	EntryOptions = archive.EntryOptions
	ReaderConfig = archive.ReaderConfig
	Source       = archive.Source
	Writer       = archive.Writer
	EntryWriter  = archive.EntryWriter
	Reader       = archive.Reader
)

// DefaultChunkSize, MinChunkSize and MaxChunkSize bound WriterConfig.ChunkSize.
const (
	DefaultChunkSize = archive.DefaultChunkSize
	MinChunkSize     = archive.MinChunkSize
	MaxChunkSize     = archive.MaxChunkSize
)

// Option configures a WriterConfig via the functional-options pattern;
// see archive.Option.
type Option = archive.Option

// WithChunkSize, WithCompression, WithEncryption, WithChecksum,
// WithPassword, WithKDF and WithStreamMode build functional Options for
// NewWriterConfig, re-exported from the archive package.
var (
	WithChunkSize   = archive.WithChunkSize
	WithCompression = archive.WithCompression
	WithEncryption  = archive.WithEncryption
	WithChecksum    = archive.WithChecksum
	WithPassword    = archive.WithPassword
	WithKDF         = archive.WithKDF
	WithStreamMode  = archive.WithStreamMode
)

// NewWriterConfig builds a WriterConfig from functional options.
//
// Example:
//
//	cfg, err := apack.NewWriterConfig(
//	    apack.WithCompression("zstd", 3),
//	    apack.WithEncryption("aes-256-gcm"),
//	    apack.WithPassword([]byte("hunter2")),
//	)
func NewWriterConfig(opts ...Option) (WriterConfig, error) {
	return archive.NewWriterConfig(opts...)
}

// NewWriter creates a Writer over sink with the given configuration. If
// sink also implements io.WriterAt (e.g. *os.File), the resulting archive
// supports random access; otherwise it is only readable sequentially.
//
// Example:
//
//	w, err := apack.NewWriter(f, apack.WriterConfig{
//	    Compression: "zstd",
//	    Encryption:  "aes-256-gcm",
//	    Password:    []byte("hunter2"),
//	})
func NewWriter(sink io.Writer, cfg WriterConfig) (*Writer, error) {
	return archive.NewWriter(sink, cfg)
}

// OpenFile opens path as a random-access Source for Open.
func OpenFile(path string) (Source, error) {
	return archive.OpenFile(path)
}

// NewMemorySource wraps an in-memory archive (e.g. already read into
// memory) as a Source for Open.
func NewMemorySource(data []byte) Source {
	return archive.NewMemorySource(data)
}

// Open parses src's FileHeader, unwraps the data-encryption key if the
// archive is encrypted, and reads the trailer/TOC for random access.
//
// Example:
//
//	src, err := apack.OpenFile("archive.apack")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := apack.Open(src, apack.ReaderConfig{Password: []byte("hunter2")})
func Open(src Source, cfg ReaderConfig) (*Reader, error) {
	return archive.Open(src, cfg)
}
