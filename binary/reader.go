package binary

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/apackfmt/apack/errs"
)

// Reader decodes little-endian primitives from an underlying io.Reader,
// mirroring Writer's encoding exactly.
type Reader struct {
	r       io.Reader
	scratch [8]byte
	read    int64
}

// NewReader wraps r with a little-endian decoder.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read returns the total number of bytes consumed from the underlying
// io.Reader so far.
func (r *Reader) Read() int64 {
	return r.read
}

func (r *Reader) readFull(n int) ([]byte, error) {
	buf := r.scratch[:n]
	nn, err := io.ReadFull(r.r, buf)
	r.read += int64(nn)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: %w", errs.ErrTruncated, err)
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	return buf, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.readFull(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian u16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.readFull(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian u32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.readFull(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian u64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.readFull(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt32 reads a little-endian i32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads a little-endian i64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadBool reads a single byte: nonzero is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// ReadBytes reads exactly n raw bytes into a freshly allocated slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	nn, err := io.ReadFull(r.r, buf)
	r.read += int64(nn)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: %w", errs.ErrTruncated, err)
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	return buf, nil
}

// ReadLenString reads a u16 byte-length prefix followed by that many
// UTF-8 bytes.
func (r *Reader) ReadLenString() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadLenBytes reads a u32 byte-length prefix followed by that many raw
// bytes, used for Attribute string/bytes values.
func (r *Reader) ReadLenBytes() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(n))
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	nn, err := io.CopyN(io.Discard, r.r, int64(n))
	r.read += nn
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrTruncated, err)
	}
	return nil
}
