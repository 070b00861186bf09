package apackformat

import (
	"fmt"

	"github.com/apackfmt/apack/errs"
)

// FileHeaderSize is the fixed size of the serialized FileHeader: 24 bytes
// of identity/mode fields followed by entry-count:u64 and
// trailer-offset:u64.
const FileHeaderSize = 40

// CRCCoveredSize is the number of leading bytes the header CRC-32 covers.
const CRCCoveredSize = 16

// FileHeader is the first record of every archive.
type FileHeader struct {
	VersionMajor      uint16
	VersionMinor      uint16
	VersionPatch      uint16
	CompatLevel       uint16
	ModeFlags         uint8
	ChecksumAlgorithm uint8
	ChunkSize         uint32
	HeaderCRC32       uint32
	EntryCount        uint64 // back-patched on close for seekable sinks
	TrailerOffset     uint64 // back-patched on close for seekable sinks
}

// EntryCountOffset and TrailerOffsetOffset are the absolute byte offsets
// of the two fields the archive writer back-patches after the body is
// written.
const (
	EntryCountOffset    = 24
	TrailerOffsetOffset = 32
)

// Bytes serializes the header to exactly FileHeaderSize bytes, computing
// HeaderCRC32 over the first CRCCoveredSize bytes before copying it out.
func (h *FileHeader) Bytes() []byte {
	b := make([]byte, FileHeaderSize)
	copy(b[0:6], MagicFile[:])
	putU16(b[6:8], h.VersionMajor)
	putU16(b[8:10], h.VersionMinor)
	putU16(b[10:12], h.VersionPatch)
	putU16(b[12:14], h.CompatLevel)
	b[14] = h.ModeFlags
	b[15] = h.ChecksumAlgorithm
	putU32(b[16:20], h.ChunkSize)
	h.HeaderCRC32 = crc32Of(b[0:CRCCoveredSize])
	putU32(b[20:24], h.HeaderCRC32)
	putU64(b[24:32], h.EntryCount)
	putU64(b[32:40], h.TrailerOffset)
	return b
}

// Parse decodes a FileHeader from exactly FileHeaderSize bytes and
// validates the magic prefix and header CRC-32.
func (h *FileHeader) Parse(data []byte) error {
	if len(data) != FileHeaderSize {
		return fmt.Errorf("%w: file header must be %d bytes, got %d", errs.ErrTruncated, FileHeaderSize, len(data))
	}
	if string(data[0:6]) != string(MagicFile[:]) {
		return fmt.Errorf("%w: file magic", errs.ErrBadMagic)
	}

	h.VersionMajor = getU16(data[6:8])
	h.VersionMinor = getU16(data[8:10])
	h.VersionPatch = getU16(data[10:12])
	h.CompatLevel = getU16(data[12:14])
	h.ModeFlags = data[14]
	h.ChecksumAlgorithm = data[15]
	h.ChunkSize = getU32(data[16:20])
	h.HeaderCRC32 = getU32(data[20:24])
	h.EntryCount = getU64(data[24:32])
	h.TrailerOffset = getU64(data[32:40])

	got := crc32Of(data[0:CRCCoveredSize])
	if got != h.HeaderCRC32 {
		return fmt.Errorf("%w: file header", errs.ErrHeaderCRCMismatch)
	}
	return nil
}

func (h *FileHeader) HasFlag(bit uint8) bool { return h.ModeFlags&bit != 0 }
func (h *FileHeader) SetFlag(bit uint8)      { h.ModeFlags |= bit }
