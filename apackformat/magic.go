// Package apackformat defines the on-disk records of the APACK container
// format: FileHeader, EncryptionBlock, EntryHeader, Attribute, ChunkHeader,
// TocEntry, Trailer and StreamTrailer. Fixed-size records expose
// Bytes()/Parse() over an exact-length byte slice; variable-size records
// expose WriteTo/ReadFrom over a stream.
package apackformat

// Magic byte sequences identifying each record, per the persisted layout.
var (
	MagicFile    = [6]byte{'A', 'P', 'A', 'C', 'K', 0}
	MagicEncr    = [4]byte{'E', 'N', 'C', 'R'}
	MagicChunk   = [4]byte{'C', 'H', 'N', 'K'}
	MagicTrailer = [4]byte{'T', 'R', 'L', 'R'}
	MagicStream  = [4]byte{'S', 'T', 'R', 'L'}
)

// Algorithm ids, reserved range 0-127, user extensions start at 128.
const (
	CompressionNone = 0
	CompressionZstd = 1
	CompressionLZ4  = 2

	EncryptionNone           = 0
	EncryptionAES256GCM      = 1
	EncryptionChaCha20Poly1305 = 2

	ChecksumCRC32  = 0
	ChecksumXXH364 = 1

	KDFArgon2id      = 1
	KDFPBKDF2SHA256  = 2
)

// File-header mode-flags bits (u8).
const (
	ModeStreamMode    = 1 << 0
	ModeRandomAccess  = 1 << 1
	ModeEncrypted     = 1 << 2
	ModeCompressedAll = 1 << 3
)

// Chunk-header flags bits (u32).
const (
	ChunkFlagLast       = 1 << 0
	ChunkFlagCompressed = 1 << 1
	ChunkFlagEncrypted  = 1 << 2
)

// EntryHeader flags bits (u8).
const (
	EntryFlagCompressed = 1 << 0
	EntryFlagEncrypted  = 1 << 1
	EntryFlagHasECC     = 1 << 2
)

// Attribute value-type ids.
const (
	AttrTypeString = 0
	AttrTypeInt64  = 1
	AttrTypeBool   = 2
	AttrTypeBytes  = 3
)
