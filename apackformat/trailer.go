package apackformat

import (
	"fmt"

	"github.com/apackfmt/apack/errs"
)

// TrailerSize is the fixed size of a serialized container Trailer.
const TrailerSize = 4 + 4 + 8 + 8 + 8 + 8 + 8 + 4 + 4 + 8

// Trailer closes a container-mode archive; TOC entries are written
// immediately before it.
type Trailer struct {
	TrailerVersion    uint32
	TocOffset         uint64
	TocSize           uint64
	EntryCount        uint64
	TotalOriginalSize uint64
	TotalStoredSize   uint64
	TocChecksum       uint32
	TrailerChecksum   uint32
	FileSize          uint64
}

// Bytes serializes the trailer to exactly TrailerSize bytes. The trailer
// checksum covers every preceding field (magic through toc-checksum).
func (t *Trailer) Bytes() []byte {
	b := make([]byte, TrailerSize)
	copy(b[0:4], MagicTrailer[:])
	putU32(b[4:8], t.TrailerVersion)
	putU64(b[8:16], t.TocOffset)
	putU64(b[16:24], t.TocSize)
	putU64(b[24:32], t.EntryCount)
	putU64(b[32:40], t.TotalOriginalSize)
	putU64(b[40:48], t.TotalStoredSize)
	putU32(b[48:52], t.TocChecksum)

	checksum := crc32Of(b[0:52])
	t.TrailerChecksum = checksum
	putU32(b[52:56], t.TrailerChecksum)
	putU64(b[56:64], t.FileSize)
	return b
}

// Parse decodes a Trailer from exactly TrailerSize bytes and validates the
// trailer magic and trailer checksum.
func (t *Trailer) Parse(data []byte) error {
	if len(data) != TrailerSize {
		return fmt.Errorf("%w: trailer must be %d bytes, got %d", errs.ErrTruncated, TrailerSize, len(data))
	}
	if string(data[0:4]) != string(MagicTrailer[:]) {
		return fmt.Errorf("%w: trailer magic", errs.ErrBadMagic)
	}

	t.TrailerVersion = getU32(data[4:8])
	t.TocOffset = getU64(data[8:16])
	t.TocSize = getU64(data[16:24])
	t.EntryCount = getU64(data[24:32])
	t.TotalOriginalSize = getU64(data[32:40])
	t.TotalStoredSize = getU64(data[40:48])
	t.TocChecksum = getU32(data[48:52])
	t.TrailerChecksum = getU32(data[52:56])
	t.FileSize = getU64(data[56:64])

	got := crc32Of(data[0:52])
	if got != t.TrailerChecksum {
		return fmt.Errorf("%w: trailer", errs.ErrHeaderCRCMismatch)
	}
	return nil
}

// StreamTrailerSize is the fixed size of a serialized StreamTrailer.
const StreamTrailerSize = 32

// StreamTrailer closes a stream-mode, single-entry archive.
type StreamTrailer struct {
	OriginalSize    uint64
	StoredSize      uint64
	ChunkCount      uint32
	TrailerChecksum uint32
}

// Bytes serializes the trailer to exactly StreamTrailerSize bytes.
func (t *StreamTrailer) Bytes() []byte {
	b := make([]byte, StreamTrailerSize)
	copy(b[0:4], MagicStream[:])
	putU32(b[4:8], 0) // reserved
	putU64(b[8:16], t.OriginalSize)
	putU64(b[16:24], t.StoredSize)
	putU32(b[24:28], t.ChunkCount)

	t.TrailerChecksum = crc32Of(b[0:28])
	putU32(b[28:32], t.TrailerChecksum)
	return b
}

// Parse decodes a StreamTrailer from exactly StreamTrailerSize bytes.
func (t *StreamTrailer) Parse(data []byte) error {
	if len(data) != StreamTrailerSize {
		return fmt.Errorf("%w: stream trailer must be %d bytes, got %d", errs.ErrTruncated, StreamTrailerSize, len(data))
	}
	if string(data[0:4]) != string(MagicStream[:]) {
		return fmt.Errorf("%w: stream trailer magic", errs.ErrBadMagic)
	}
	t.OriginalSize = getU64(data[8:16])
	t.StoredSize = getU64(data[16:24])
	t.ChunkCount = getU32(data[24:28])
	t.TrailerChecksum = getU32(data[28:32])

	got := crc32Of(data[0:28])
	if got != t.TrailerChecksum {
		return fmt.Errorf("%w: stream trailer", errs.ErrHeaderCRCMismatch)
	}
	return nil
}
