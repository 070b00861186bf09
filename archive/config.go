// Package archive orchestrates a whole APACK container: the archive
// writer (§4.7) assembling FileHeader/EncryptionBlock/EntryHeader/Chunk*
// /TocEntry/Trailer into a single sink, and the archive reader (§4.8)
// opening that layout back up for random-access or name-based entry
// lookup.
package archive

import (
	"fmt"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"github.com/apackfmt/apack/provider"
)

// DefaultChunkSize is the format's default chunk size (256 KiB), also the
// CLI's default per spec §6.
const DefaultChunkSize = 256 * 1024

// MinChunkSize and MaxChunkSize bound WriterConfig.ChunkSize. MaxChunkSize
// is the same bound chunk.Processor enforces on a chunk's decoded
// OriginalSize (apackformat.MaxOriginalSize), so no configured chunk can
// ever produce a chunk that processor would then refuse to read back.
const (
	MinChunkSize = 4 * 1024
	MaxChunkSize = apackformat.MaxOriginalSize
)

// WriterConfig parameterizes a Writer. Compression/Encryption names are
// provider.CompressionByName/EncryptionByName keys; empty disables that
// stage. Checksum defaults to "crc32" when empty.
type WriterConfig struct {
	Compression      string
	CompressionLevel int
	Encryption       string
	Password         []byte
	KDF              string
	Checksum         string
	ChunkSize        int
	StreamMode       bool
}

type resolvedConfig struct {
	compression provider.CompressionProvider
	encryption  provider.EncryptionProvider
	kdf         provider.KDFProvider
	checksum    provider.ChecksumProvider
	level       int
	chunkSize   int
}

func resolveWriterConfig(cfg WriterConfig) (resolvedConfig, error) {
	var rc resolvedConfig

	checksumName := cfg.Checksum
	if checksumName == "" {
		checksumName = "crc32"
	}
	cs, err := provider.ChecksumByName(checksumName)
	if err != nil {
		return rc, err
	}
	rc.checksum = cs

	if cfg.Compression != "" && cfg.Compression != "none" {
		comp, err := provider.CompressionByName(cfg.Compression)
		if err != nil {
			return rc, err
		}
		rc.compression = comp
		rc.level = cfg.CompressionLevel
		if rc.level == 0 {
			rc.level = comp.DefaultLevel()
		}
	}

	if cfg.Encryption != "" && cfg.Encryption != "none" {
		enc, err := provider.EncryptionByName(cfg.Encryption)
		if err != nil {
			return rc, err
		}
		if len(cfg.Password) == 0 {
			return rc, fmt.Errorf("%w: encryption requires a password", errs.ErrNoKeyConfigured)
		}
		rc.encryption = enc

		kdfName := cfg.KDF
		if kdfName == "" {
			kdfName = "argon2id"
		}
		kdf, err := provider.KDFByName(kdfName)
		if err != nil {
			return rc, err
		}
		rc.kdf = kdf
	}

	rc.chunkSize = cfg.ChunkSize
	if rc.chunkSize == 0 {
		rc.chunkSize = DefaultChunkSize
	}
	if rc.chunkSize < MinChunkSize || rc.chunkSize > MaxChunkSize {
		return rc, fmt.Errorf("%w: chunk size %d", errs.ErrInvalidChunkSize, rc.chunkSize)
	}

	return rc, nil
}

// EntryOptions describes one entry to add to a Writer.
type EntryOptions struct {
	ID         uint64 // 0 = auto-assign
	Name       string
	Mime       string
	Attributes []apackformat.Attribute
}

// ReaderConfig parameterizes a Reader. Password is required only if the
// archive's FileHeader reports the encrypted mode flag.
type ReaderConfig struct {
	Password []byte
}

func resolveCompression(id uint8) (provider.CompressionProvider, error) {
	if id == apackformat.CompressionNone {
		return nil, nil
	}
	return provider.CompressionByID(id)
}

func resolveEncryption(id uint8) (provider.EncryptionProvider, error) {
	if id == apackformat.EncryptionNone {
		return nil, nil
	}
	return provider.EncryptionByID(id)
}
