// Package binary provides the little-endian primitive codec APACK uses to
// serialize every fixed and variable format record: u8/u16/u32/u64/i32/i64,
// raw byte sequences, u16-length-prefixed UTF-8 strings, zero padding, and
// alignment padding.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/apackfmt/apack/errs"
	"github.com/apackfmt/apack/internal/pool"
)

// MaxStringLen is the largest UTF-8 byte length a u16-length-prefixed
// string can carry.
const MaxStringLen = 65535

// Writer buffers little-endian writes to an underlying io.Writer and
// tracks the total number of bytes written, which the archive writer uses
// to capture entry and TOC offsets.
type Writer struct {
	w       io.Writer
	buf     *pool.ByteBuffer
	written int64
}

// NewWriter wraps w with a buffered little-endian encoder.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:   w,
		buf: pool.GetChunkBuffer(),
	}
}

// Written returns the total number of bytes passed to the underlying
// io.Writer so far.
func (w *Writer) Written() int64 {
	return w.written
}

// Release returns the writer's scratch buffer to its pool. Call once the
// Writer is no longer needed.
func (w *Writer) Release() {
	if w.buf != nil {
		pool.PutChunkBuffer(w.buf)
		w.buf = nil
	}
}

func (w *Writer) flush(n int) error {
	nn, err := w.w.Write(w.buf.Bytes()[:n])
	w.written += int64(nn)
	w.buf.Reset()
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if nn != n {
		return fmt.Errorf("%w: short write", errs.ErrIO)
	}
	return nil
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(v uint8) error {
	w.buf.Reset()
	w.buf.MustWrite([]byte{v})
	return w.flush(1)
}

// WriteUint16 writes a little-endian u16.
func (w *Writer) WriteUint16(v uint16) error {
	w.buf.Reset()
	w.buf.B = binary.LittleEndian.AppendUint16(w.buf.B, v)
	return w.flush(2)
}

// WriteUint32 writes a little-endian u32.
func (w *Writer) WriteUint32(v uint32) error {
	w.buf.Reset()
	w.buf.B = binary.LittleEndian.AppendUint32(w.buf.B, v)
	return w.flush(4)
}

// WriteUint64 writes a little-endian u64.
func (w *Writer) WriteUint64(v uint64) error {
	w.buf.Reset()
	w.buf.B = binary.LittleEndian.AppendUint64(w.buf.B, v)
	return w.flush(8)
}

// WriteInt32 writes a little-endian i32.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteInt64 writes a little-endian i64.
func (w *Writer) WriteInt64(v int64) error {
	return w.WriteUint64(uint64(v))
}

// WriteBool writes a single byte: 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

// WriteBytes writes raw bytes with no length prefix.
func (w *Writer) WriteBytes(b []byte) error {
	nn, err := w.w.Write(b)
	w.written += int64(nn)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if nn != len(b) {
		return fmt.Errorf("%w: short write", errs.ErrIO)
	}
	return nil
}

// WriteLenString writes s as a u16 byte-length prefix followed by its
// UTF-8 bytes. Fails if s exceeds MaxStringLen bytes.
func (w *Writer) WriteLenString(s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("%w: %d bytes", errs.ErrStringTooLong, len(s))
	}
	if err := w.WriteUint16(uint16(len(s))); err != nil {
		return err
	}
	return w.WriteBytes([]byte(s))
}

// WriteLenBytes writes b as a u32 byte-length prefix followed by the raw
// bytes, used for Attribute string/bytes values.
func (w *Writer) WriteLenBytes(b []byte) error {
	if err := w.WriteUint32(uint32(len(b))); err != nil {
		return err
	}
	return w.WriteBytes(b)
}

// Pad writes n zero bytes.
func (w *Writer) Pad(n int) error {
	if n <= 0 {
		return nil
	}
	w.buf.Reset()
	w.buf.ExtendOrGrow(n)
	clear(w.buf.Bytes())
	return w.flush(n)
}

// PadToAlignment writes zero bytes until Written() is a multiple of
// alignment, which must be a power of two.
func (w *Writer) PadToAlignment(alignment int) error {
	rem := int(w.written) % alignment
	if rem == 0 {
		return nil
	}
	return w.Pad(alignment - rem)
}
