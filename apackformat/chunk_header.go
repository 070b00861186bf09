package apackformat

import (
	"fmt"

	"github.com/apackfmt/apack/errs"
)

// ChunkHeaderSize is the fixed size of a serialized ChunkHeader.
const ChunkHeaderSize = 24

// MaxOriginalSize bounds ChunkHeader.OriginalSize. Spec.md §4.4 step 1
// requires 0 <= original_size <= MAX_CHUNK_SIZE on every chunk read, as
// defense against a corrupted or malicious header driving an
// oversized pre-allocation before the chunk's checksum has even been
// verified (the ChunkHeader carries no checksum of its own).
const MaxOriginalSize = 64 * 1024 * 1024

// ChunkHeader frames one chunk of entry data.
type ChunkHeader struct {
	Index        int32
	OriginalSize int32
	StoredSize   int32
	Checksum     uint32
	Flags        uint32
}

// Bytes serializes the header to exactly ChunkHeaderSize bytes.
func (h *ChunkHeader) Bytes() []byte {
	b := make([]byte, ChunkHeaderSize)
	copy(b[0:4], MagicChunk[:])
	putI32(b[4:8], h.Index)
	putI32(b[8:12], h.OriginalSize)
	putI32(b[12:16], h.StoredSize)
	putU32(b[16:20], h.Checksum)
	putU32(b[20:24], h.Flags)
	return b
}

// Parse decodes a ChunkHeader from exactly ChunkHeaderSize bytes and
// validates the chunk magic.
func (h *ChunkHeader) Parse(data []byte) error {
	if len(data) != ChunkHeaderSize {
		return fmt.Errorf("%w: chunk header must be %d bytes, got %d", errs.ErrTruncated, ChunkHeaderSize, len(data))
	}
	if string(data[0:4]) != string(MagicChunk[:]) {
		return fmt.Errorf("%w: chunk magic", errs.ErrBadMagic)
	}
	h.Index = getI32(data[4:8])
	h.OriginalSize = getI32(data[8:12])
	h.StoredSize = getI32(data[12:16])
	h.Checksum = getU32(data[16:20])
	h.Flags = getU32(data[20:24])
	return nil
}

func (h *ChunkHeader) IsLast() bool       { return h.Flags&ChunkFlagLast != 0 }
func (h *ChunkHeader) IsCompressed() bool { return h.Flags&ChunkFlagCompressed != 0 }
func (h *ChunkHeader) IsEncrypted() bool  { return h.Flags&ChunkFlagEncrypted != 0 }

func (h *ChunkHeader) SetLast(v bool)       { h.setFlag(ChunkFlagLast, v) }
func (h *ChunkHeader) SetCompressed(v bool) { h.setFlag(ChunkFlagCompressed, v) }
func (h *ChunkHeader) SetEncrypted(v bool)  { h.setFlag(ChunkFlagEncrypted, v) }

func (h *ChunkHeader) setFlag(bit uint32, v bool) {
	if v {
		h.Flags |= bit
	} else {
		h.Flags &^= bit
	}
}
