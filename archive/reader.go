package archive

import (
	"fmt"
	"io"

	apbinary "github.com/apackfmt/apack/binary"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/chunk"
	"github.com/apackfmt/apack/errs"
	"github.com/apackfmt/apack/internal/xxhash32"
	"github.com/apackfmt/apack/provider"
)

// Source is the random-access byte source an archive Reader opens. It is
// exclusively owned by the Reader; Clone produces an independent handle
// (own read position) over the same underlying bytes for concurrent
// entry reads, per spec.md §5's "readers permit multiple concurrent
// entry reads only when the underlying source can be cloned" rule.
type Source interface {
	io.ReaderAt
	io.Closer
	Size() int64
	Clone() (Source, error)
}

// Reader is a random-access reader over one APACK container.
type Reader struct {
	src Source

	fileHeader apackformat.FileHeader
	trailer    apackformat.Trailer
	checksum   provider.ChecksumProvider

	toc    []apackformat.TocEntry
	byID   map[uint64]int
	byName *nameIndex

	dek    []byte
	cipher provider.EncryptionProvider
	closed bool
}

// Open parses src's FileHeader/EncryptionBlock/Trailer/TOC and builds the
// id/name-hash lookup indexes. src is owned by the returned Reader.
func Open(src Source, cfg ReaderConfig) (*Reader, error) {
	r := &Reader{src: src, byID: make(map[uint64]int), byName: newNameIndex()}

	headerBuf := make([]byte, apackformat.FileHeaderSize)
	if _, err := src.ReadAt(headerBuf, 0); err != nil {
		return nil, errs.Classify(fmt.Errorf("%w: reading file header: %w", errs.ErrIO, err))
	}
	if err := r.fileHeader.Parse(headerBuf); err != nil {
		return nil, errs.Classify(err)
	}

	checksum, err := provider.ChecksumByID(r.fileHeader.ChecksumAlgorithm)
	if err != nil {
		return nil, errs.Classify(err)
	}
	r.checksum = checksum

	offset := int64(apackformat.FileHeaderSize)
	if r.fileHeader.HasFlag(apackformat.ModeEncrypted) {
		consumed, err := r.openEncryption(offset, cfg.Password)
		if err != nil {
			return nil, errs.Classify(err)
		}
		offset += consumed
	}

	if r.fileHeader.HasFlag(apackformat.ModeStreamMode) {
		// Stream-mode archives carry no TOC or container trailer, so the
		// returned Reader lists no entries and ByID/ByName find nothing.
		return r, nil
	}

	if err := r.readTrailerAndTOC(); err != nil {
		return nil, errs.Classify(err)
	}
	return r, nil
}

func (r *Reader) openEncryption(offset int64, password []byte) (int64, error) {
	sr := io.NewSectionReader(r.src, offset, r.src.Size()-offset)
	br := apbinary.NewReader(sr)

	var block apackformat.EncryptionBlock
	if err := block.ReadFrom(br, provider.AEADTagSize); err != nil {
		return 0, err
	}

	kdf, err := provider.KDFByID(block.KDFID)
	if err != nil {
		return 0, err
	}
	cipher, err := provider.EncryptionByID(block.CipherID)
	if err != nil {
		return 0, err
	}
	r.cipher = cipher

	if len(password) == 0 {
		return 0, fmt.Errorf("%w: archive is encrypted but no password supplied", errs.ErrNoKeyConfigured)
	}

	params := provider.KDFParams{
		Iterations:  block.KDFIterations,
		MemoryKB:    block.KDFMemoryKB,
		Parallelism: block.KDFParallelism,
	}
	kek := kdf.DeriveKey(password, block.Salt, params, cipher.KeySize())

	sealed := make([]byte, 0, len(block.WrappedKey)+len(block.WrappedKeyTag))
	sealed = append(sealed, block.WrappedKey...)
	sealed = append(sealed, block.WrappedKeyTag...)

	dek, err := cipher.DecryptBlock(kek, sealed, nil)
	if err != nil {
		return 0, err
	}
	r.dek = dek

	return br.Read(), nil
}

func (r *Reader) readTrailerAndTOC() error {
	trailerOffset := int64(r.fileHeader.TrailerOffset)
	if trailerOffset == 0 {
		return fmt.Errorf("%w: trailer offset not recorded (non-seekable write?)", errs.ErrWrongState)
	}

	trailerBuf := make([]byte, apackformat.TrailerSize)
	if _, err := r.src.ReadAt(trailerBuf, trailerOffset); err != nil {
		return fmt.Errorf("%w: reading trailer: %w", errs.ErrIO, err)
	}
	if err := r.trailer.Parse(trailerBuf); err != nil {
		return err
	}

	tocOffset := int64(r.trailer.TocOffset)
	if tocOffset == 0 {
		// Source inconsistency fallback, per spec.md §9: TOC
		// immediately precedes the trailer by toc_size bytes.
		tocOffset = trailerOffset - int64(r.trailer.TocSize)
	}

	tocBuf := make([]byte, r.trailer.TocSize)
	if r.trailer.TocSize > 0 {
		if _, err := r.src.ReadAt(tocBuf, tocOffset); err != nil {
			return fmt.Errorf("%w: reading TOC: %w", errs.ErrIO, err)
		}
	}
	if r.trailer.TocChecksum != 0 {
		h := r.checksum.New()
		h.Write(tocBuf)
		if h.Sum32() != r.trailer.TocChecksum {
			return fmt.Errorf("%w: TOC", errs.ErrHeaderCRCMismatch)
		}
	}

	count := len(tocBuf) / apackformat.TocEntrySize
	r.toc = make([]apackformat.TocEntry, count)
	for i := 0; i < count; i++ {
		start := i * apackformat.TocEntrySize
		if err := r.toc[i].Parse(tocBuf[start : start+apackformat.TocEntrySize]); err != nil {
			return err
		}
		r.byID[r.toc[i].EntryID] = i
		r.byName.add(r.toc[i].NameHash, i)
	}
	return nil
}

// EntryCount returns the number of entries recorded in the TOC.
func (r *Reader) EntryCount() int { return len(r.toc) }

// Entries returns the TOC entries in on-disk order.
func (r *Reader) Entries() []apackformat.TocEntry { return r.toc }

// FileHeader returns the parsed file header.
func (r *Reader) FileHeader() apackformat.FileHeader { return r.fileHeader }

// Trailer returns the parsed container trailer. Its zero value if the
// archive is in stream mode, which has no trailer to report here.
func (r *Reader) Trailer() apackformat.Trailer { return r.trailer }

// StreamMode reports whether the archive was written in stream mode.
func (r *Reader) StreamMode() bool { return r.fileHeader.HasFlag(apackformat.ModeStreamMode) }

// Encrypted reports whether the archive's encrypted mode flag is set.
func (r *Reader) Encrypted() bool { return r.fileHeader.HasFlag(apackformat.ModeEncrypted) }

// ChecksumName returns the name of the checksum provider used throughout
// this archive.
func (r *Reader) ChecksumName() string { return r.checksum.Name() }

// ByID opens the entry with the given id for streaming read.
func (r *Reader) ByID(id uint64) (apackformat.EntryHeader, io.Reader, error) {
	idx, ok := r.byID[id]
	if !ok {
		return apackformat.EntryHeader{}, nil, errs.Classify(fmt.Errorf("%w: id %d", errs.ErrEntryNotFound, id))
	}
	header, rd, err := r.openEntry(r.toc[idx])
	return header, rd, errs.Classify(err)
}

// ByName looks up an entry by exact name, probing the name-hash bucket
// and comparing candidates byte-for-byte (hash equality alone never
// decides a match, per spec.md §9).
func (r *Reader) ByName(name string) (apackformat.EntryHeader, io.Reader, error) {
	hash := xxhash32.Sum(name)
	for _, idx := range r.byName.candidates(hash) {
		header, rd, err := r.openEntry(r.toc[idx])
		if err != nil {
			return apackformat.EntryHeader{}, nil, errs.Classify(err)
		}
		if header.Name == name {
			return header, rd, nil
		}
	}
	return apackformat.EntryHeader{}, nil, errs.Classify(fmt.Errorf("%w: name %q", errs.ErrEntryNotFound, name))
}

func (r *Reader) openEntry(toc apackformat.TocEntry) (apackformat.EntryHeader, io.Reader, error) {
	offset := int64(toc.EntryOffset)
	headerSection := io.NewSectionReader(r.src, offset, r.src.Size()-offset)
	br := apbinary.NewReader(headerSection)

	var header apackformat.EntryHeader
	if err := header.ReadFrom(br); err != nil {
		return apackformat.EntryHeader{}, nil, err
	}

	bodyOffset := offset + br.Read()
	bodySection := io.NewSectionReader(r.src, bodyOffset, r.src.Size()-bodyOffset)

	compression, err := resolveCompression(header.CompressionID)
	if err != nil {
		return apackformat.EntryHeader{}, nil, err
	}
	encryption, err := resolveEncryption(header.EncryptionID)
	if err != nil {
		return apackformat.EntryHeader{}, nil, err
	}

	processor := chunk.NewProcessor(chunk.Config{
		Compression: compression,
		Encryption:  encryption,
		Key:         r.dek,
		Checksum:    r.checksum,
	})

	rd := chunk.NewReader(bodySection, processor, entryAAD(header.Name))
	return header, rd, nil
}

// Clone returns an independent Reader sharing this one's indexes but
// with its own underlying Source handle, for concurrent entry reads.
func (r *Reader) Clone() (*Reader, error) {
	cloned, err := r.src.Clone()
	if err != nil {
		return nil, err
	}
	clone := *r
	clone.src = cloned
	return &clone, nil
}

// Close releases the underlying source and zeroes any derived key.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	for i := range r.dek {
		r.dek[i] = 0
	}
	return errs.Classify(r.src.Close())
}
