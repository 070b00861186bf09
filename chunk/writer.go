package chunk

import (
	"fmt"
	"io"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"github.com/apackfmt/apack/internal/pool"
)

// HeaderCallback is invoked after each chunk is emitted, with the chunk's
// index and its already-written header; the archive writer uses this to
// accumulate TOC bookkeeping without the chunk writer knowing about TOCs.
type HeaderCallback func(index int32, header apackformat.ChunkHeader)

// AADFunc builds the associated data for a chunk at the given index, used
// when the processor's encryption provider supports AAD binding (typical
// bindings: entry name, chunk index). Return nil for no AAD.
type AADFunc func(index int32) []byte

// Writer is a bounded-memory sink producing a sequence of
// (ChunkHeader, body) records over sink. It buffers input up to
// chunkSize bytes before processing and flushing a chunk.
type Writer struct {
	sink      io.Writer
	chunkSize int
	processor *Processor
	onHeader  HeaderCallback
	aad       AADFunc

	buf *pool.ByteBuffer

	index         int32
	totalOriginal int64
	totalStored   int64
	closed        bool
	wroteAny      bool
}

// NewWriter builds a chunked writer over sink. chunkSize bounds the
// original (pre-transform) size of every chunk but the last.
func NewWriter(sink io.Writer, chunkSize int, processor *Processor, onHeader HeaderCallback, aad AADFunc) *Writer {
	return &Writer{
		sink:      sink,
		chunkSize: chunkSize,
		processor: processor,
		onHeader:  onHeader,
		aad:       aad,
		buf:       pool.GetChunkBuffer(),
	}
}

// Write buffers p, flushing full chunkSize chunks as they accumulate.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("%w: write to closed chunk writer", errs.ErrClosed)
	}

	total := len(p)
	for len(p) > 0 {
		room := w.chunkSize - w.buf.Len()
		n := min(room, len(p))
		w.buf.MustWrite(p[:n])
		p = p[n:]

		if w.buf.Len() >= w.chunkSize {
			if err := w.flushChunk(false); err != nil {
				return total - len(p), err
			}
		}
	}
	return total, nil
}

// Finish flushes any buffered bytes as the terminal chunk with the LAST
// flag set. If nothing was ever written, it still emits a zero-length
// LAST chunk, per spec.
func (w *Writer) Finish() error {
	if w.closed {
		return nil
	}
	if err := w.flushChunk(true); err != nil {
		return err
	}
	w.closed = true
	pool.PutChunkBuffer(w.buf)
	w.buf = nil
	return nil
}

func (w *Writer) flushChunk(last bool) error {
	if !last && w.buf.Len() == 0 {
		return nil
	}

	original := append([]byte(nil), w.buf.Bytes()...)
	w.buf.Reset()

	var aad []byte
	if w.aad != nil {
		aad = w.aad(w.index)
	}

	res, err := w.processor.ProcessForWrite(original, aad)
	if err != nil {
		return err
	}

	header := apackformat.ChunkHeader{
		Index:        w.index,
		OriginalSize: res.OriginalSize,
		StoredSize:   res.StoredSize,
		Checksum:     res.Checksum,
	}
	header.SetCompressed(res.Compressed)
	header.SetEncrypted(res.Encrypted)
	header.SetLast(last)

	if _, err := w.sink.Write(header.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if len(res.Body) > 0 {
		if _, err := w.sink.Write(res.Body); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrIO, err)
		}
	}

	w.totalOriginal += int64(res.OriginalSize)
	w.totalStored += int64(apackformat.ChunkHeaderSize) + int64(res.StoredSize)
	w.wroteAny = true

	if w.onHeader != nil {
		w.onHeader(w.index, header)
	}
	w.index++
	return nil
}

// ChunkCount returns the number of chunks emitted so far, including the
// terminal LAST chunk once Finish has run.
func (w *Writer) ChunkCount() int32 { return w.index }

// TotalOriginalSize returns the sum of every emitted chunk's original size.
func (w *Writer) TotalOriginalSize() int64 { return w.totalOriginal }

// TotalStoredSize returns the sum of (header size + body length) over
// every emitted chunk.
func (w *Writer) TotalStoredSize() int64 { return w.totalStored }
