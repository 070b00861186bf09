package apackformat

import (
	"fmt"

	"github.com/apackfmt/apack/errs"
)

// TocEntrySize is the fixed size of a serialized TocEntry.
const TocEntrySize = 40

// TocEntry points to one entry for O(1) lookup by id or by name hash.
type TocEntry struct {
	EntryID       uint64
	EntryOffset   uint64
	OriginalSize  uint64
	StoredSize    uint64
	NameHash      uint32
	EntryChecksum uint32
}

// Bytes serializes the entry to exactly TocEntrySize bytes.
func (e *TocEntry) Bytes() []byte {
	b := make([]byte, TocEntrySize)
	putU64(b[0:8], e.EntryID)
	putU64(b[8:16], e.EntryOffset)
	putU64(b[16:24], e.OriginalSize)
	putU64(b[24:32], e.StoredSize)
	putU32(b[32:36], e.NameHash)
	putU32(b[36:40], e.EntryChecksum)
	return b
}

// Parse decodes a TocEntry from exactly TocEntrySize bytes.
func (e *TocEntry) Parse(data []byte) error {
	if len(data) != TocEntrySize {
		return fmt.Errorf("%w: TOC entry must be %d bytes, got %d", errs.ErrTruncated, TocEntrySize, len(data))
	}
	e.EntryID = getU64(data[0:8])
	e.EntryOffset = getU64(data[8:16])
	e.OriginalSize = getU64(data[16:24])
	e.StoredSize = getU64(data[24:32])
	e.NameHash = getU32(data[32:36])
	e.EntryChecksum = getU32(data[36:40])
	return nil
}
