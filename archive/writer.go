package archive

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	apbinary "github.com/apackfmt/apack/binary"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/chunk"
	"github.com/apackfmt/apack/errs"
	"github.com/apackfmt/apack/internal/xxhash32"
	"github.com/apackfmt/apack/provider"
)

// seekableSink is the capability an underlying sink needs to expose for
// the file header's entry-count/trailer-offset fields to be back-patched
// on close, per spec.md §4.7 and §9's "requires a seekable sink" note.
type seekableSink interface {
	io.Writer
	io.WriterAt
}

// Writer orchestrates an entire archive write: Fresh → HeaderWritten →
// WritingEntry* → TrailerWritten → Closed.
type Writer struct {
	sink     io.Writer
	writerAt io.WriterAt // non-nil when sink also implements seekableSink

	rc  resolvedConfig
	cfg WriterConfig

	bw *apbinary.Writer

	state  State
	nextID uint64

	toc            []apackformat.TocEntry
	names          *nameIndex
	totalOrig      uint64
	totalStor      uint64
	lastChunkCount int32

	dek     []byte
	current *EntryWriter
}

// NewWriter builds a Writer over sink. If sink also implements
// io.WriterAt (e.g. *os.File), the file header's entry-count and
// trailer-offset fields are back-patched on Close; otherwise those
// fields stay zero and the resulting archive is only readable
// sequentially in stream mode.
func NewWriter(sink io.Writer, cfg WriterConfig) (*Writer, error) {
	rc, err := resolveWriterConfig(cfg)
	if err != nil {
		return nil, errs.Classify(err)
	}

	w := &Writer{
		sink:   sink,
		rc:     rc,
		cfg:    cfg,
		bw:     apbinary.NewWriter(sink),
		nextID: 1,
		names:  newNameIndex(),
	}
	if ss, ok := sink.(seekableSink); ok {
		w.writerAt = ss
	}
	return w, nil
}

func (w *Writer) writeFileHeader() error {
	fh := apackformat.FileHeader{
		VersionMajor:      1,
		ChecksumAlgorithm: w.rc.checksum.ID(),
		ChunkSize:         uint32(w.rc.chunkSize),
	}
	if w.cfg.StreamMode {
		fh.SetFlag(apackformat.ModeStreamMode)
	} else {
		fh.SetFlag(apackformat.ModeRandomAccess)
	}
	if w.rc.encryption != nil {
		fh.SetFlag(apackformat.ModeEncrypted)
	}
	if err := w.bw.WriteBytes(fh.Bytes()); err != nil {
		return err
	}

	if w.rc.encryption == nil {
		w.state = StateHeaderWritten
		return nil
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	params := w.rc.kdf.DefaultParams()
	kek := w.rc.kdf.DeriveKey(w.cfg.Password, salt, params, w.rc.encryption.KeySize())

	dek, err := w.rc.encryption.GenerateKey()
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	w.dek = dek

	sealed, err := w.rc.encryption.EncryptBlock(kek, dek, nil)
	if err != nil {
		return fmt.Errorf("%w: wrapping data encryption key: %w", errs.ErrAuthenticationFailed, err)
	}
	tagSize := provider.AEADTagSize
	block := apackformat.EncryptionBlock{
		KDFID:          w.rc.kdf.ID(),
		CipherID:       w.rc.encryption.ID(),
		KDFIterations:  params.Iterations,
		KDFMemoryKB:    params.MemoryKB,
		KDFParallelism: params.Parallelism,
		Salt:           salt,
		WrappedKey:     sealed[:len(sealed)-tagSize],
		WrappedKeyTag:  sealed[len(sealed)-tagSize:],
	}
	if err := block.WriteTo(w.bw); err != nil {
		return err
	}

	w.state = StateHeaderWritten
	return nil
}

// AddEntry begins writing a new entry and returns a writer for its body.
// The caller must Close the returned EntryWriter before adding another
// entry or closing the archive. In stream mode, at most one entry may
// ever be added.
func (w *Writer) AddEntry(opts EntryOptions) (*EntryWriter, error) {
	switch w.state {
	case StateClosed, StateTrailerWritten:
		return nil, errs.Classify(fmt.Errorf("%w: add entry on closed writer", errs.ErrClosed))
	case StateWritingEntry:
		return nil, errs.Classify(fmt.Errorf("%w: previous entry not closed", errs.ErrWrongState))
	}
	if w.cfg.StreamMode && len(w.toc) > 0 {
		return nil, errs.Classify(fmt.Errorf("%w: stream mode allows exactly one entry", errs.ErrWrongState))
	}

	if w.state == StateFresh {
		if err := w.writeFileHeader(); err != nil {
			return nil, errs.Classify(err)
		}
	}

	id := opts.ID
	if id == 0 {
		id = w.nextID
	}
	if id >= w.nextID {
		w.nextID = id + 1
	}

	entryOffset := w.bw.Written()

	header := apackformat.EntryHeader{
		ID:         id,
		Name:       opts.Name,
		Mime:       opts.Mime,
		Attributes: opts.Attributes,
	}
	if w.rc.compression != nil {
		header.CompressionID = w.rc.compression.ID()
		header.SetFlag(apackformat.EntryFlagCompressed)
	}
	if w.rc.encryption != nil {
		header.EncryptionID = w.rc.encryption.ID()
		header.SetFlag(apackformat.EntryFlagEncrypted)
	}
	if err := header.WriteTo(w.bw); err != nil {
		return nil, errs.Classify(err)
	}

	processor := chunk.NewProcessor(chunk.Config{
		Compression:      w.rc.compression,
		CompressionLevel: w.rc.level,
		Encryption:       w.rc.encryption,
		Key:              w.dek,
		Checksum:         w.rc.checksum,
	})

	ew := &EntryWriter{
		archive:     w,
		id:          id,
		name:        opts.Name,
		entryOffset: entryOffset,
		entryHasher: w.rc.checksum.New(),
	}
	ew.chunkWriter = chunk.NewWriter(binaryWriterSink{w.bw}, w.rc.chunkSize, processor, ew.onChunkHeader, entryAAD(opts.Name))

	w.state = StateWritingEntry
	w.current = ew
	return ew, nil
}

// EntryWriter streams one entry's body; Write/Close mirror io.WriteCloser.
type EntryWriter struct {
	archive     *Writer
	id          uint64
	name        string
	entryOffset int64
	chunkWriter *chunk.Writer
	entryHasher interface {
		Write([]byte) (int, error)
		Sum32() uint32
	}
	closed bool
}

func (e *EntryWriter) onChunkHeader(_ int32, h apackformat.ChunkHeader) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], h.Checksum)
	e.entryHasher.Write(b[:])
}

// Write streams body bytes for this entry.
func (e *EntryWriter) Write(p []byte) (int, error) {
	if e.closed {
		return 0, errs.Classify(fmt.Errorf("%w: write to closed entry", errs.ErrClosed))
	}
	n, err := e.chunkWriter.Write(p)
	return n, errs.Classify(err)
}

// Close finalizes the entry's chunk stream and records its TOC entry.
func (e *EntryWriter) Close() error {
	if e.closed {
		return nil
	}
	if err := e.chunkWriter.Finish(); err != nil {
		return errs.Classify(err)
	}
	e.closed = true

	w := e.archive
	w.toc = append(w.toc, apackformat.TocEntry{
		EntryID:       e.id,
		EntryOffset:   uint64(e.entryOffset),
		OriginalSize:  uint64(e.chunkWriter.TotalOriginalSize()),
		StoredSize:    uint64(e.chunkWriter.TotalStoredSize()),
		NameHash:      xxhash32.Sum(e.name),
		EntryChecksum: e.entryHasher.Sum32(),
	})
	w.names.add(xxhash32.Sum(e.name), len(w.toc)-1)
	w.totalOrig += uint64(e.chunkWriter.TotalOriginalSize())
	w.totalStor += uint64(e.chunkWriter.TotalStoredSize())
	w.lastChunkCount = e.chunkWriter.ChunkCount()

	w.state = StateHeaderWritten
	w.current = nil
	return nil
}

// Close finalizes the archive: writes the TOC and trailer (container
// mode) or the stream trailer (stream mode), back-patches the file
// header when the sink is seekable, and zeroes the DEK. The sink itself
// is not closed; it stays with the caller. Closing an already-closed
// writer is a no-op.
func (w *Writer) Close() error {
	if w.state == StateClosed {
		return nil
	}
	if w.current != nil {
		if err := w.current.Close(); err != nil {
			return errs.Classify(err)
		}
	}
	if w.state == StateFresh {
		if err := w.writeFileHeader(); err != nil {
			return errs.Classify(err)
		}
	}

	var err error
	if w.cfg.StreamMode {
		err = w.writeStreamTrailer()
	} else {
		err = w.writeContainerTrailer()
	}
	w.bw.Release()

	for i := range w.dek {
		w.dek[i] = 0
	}

	w.state = StateClosed
	return errs.Classify(err)
}

func (w *Writer) writeContainerTrailer() error {
	tocOffset := w.bw.Written()
	h := w.rc.checksum.New()
	for i := range w.toc {
		b := w.toc[i].Bytes()
		if err := w.bw.WriteBytes(b); err != nil {
			return err
		}
		h.Write(b)
	}
	tocSize := w.bw.Written() - tocOffset

	trailerOffset := w.bw.Written()
	trailer := apackformat.Trailer{
		TrailerVersion:    1,
		TocOffset:         uint64(tocOffset),
		TocSize:           uint64(tocSize),
		EntryCount:        uint64(len(w.toc)),
		TotalOriginalSize: w.totalOrig,
		TotalStoredSize:   w.totalStor,
		TocChecksum:       h.Sum32(),
	}
	trailer.FileSize = uint64(trailerOffset) + uint64(apackformat.TrailerSize)
	if err := w.bw.WriteBytes(trailer.Bytes()); err != nil {
		return err
	}

	if w.writerAt != nil {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(len(w.toc)))
		if _, err := w.writerAt.WriteAt(buf[:], apackformat.EntryCountOffset); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrIO, err)
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(trailerOffset))
		if _, err := w.writerAt.WriteAt(buf[:], apackformat.TrailerOffsetOffset); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrIO, err)
		}
	}

	w.state = StateTrailerWritten
	return nil
}

func (w *Writer) writeStreamTrailer() error {
	var orig, stor uint64
	if len(w.toc) == 1 {
		orig = w.toc[0].OriginalSize
		stor = w.toc[0].StoredSize
	}

	trailer := apackformat.StreamTrailer{
		OriginalSize: orig,
		StoredSize:   stor,
		ChunkCount:   uint32(w.lastChunkCount),
	}
	if err := w.bw.WriteBytes(trailer.Bytes()); err != nil {
		return err
	}
	w.state = StateTrailerWritten
	return nil
}

// entryAAD builds the AAD binding for an entry's chunks: the entry name
// and chunk index, per spec.md §6's "typical bindings" note. Used
// identically on read.
func entryAAD(name string) chunk.AADFunc {
	return func(index int32) []byte {
		b := []byte(name)
		b = append(b, ':')
		return binary.LittleEndian.AppendUint32(b, uint32(index))
	}
}
