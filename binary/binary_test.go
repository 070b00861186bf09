package binary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apackfmt/apack/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip_Primitives(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	defer w.Release()

	require.NoError(t, w.WriteUint8(0xAB))
	require.NoError(t, w.WriteUint16(0x1234))
	require.NoError(t, w.WriteUint32(0xDEADBEEF))
	require.NoError(t, w.WriteUint64(0x0102030405060708))
	require.NoError(t, w.WriteInt32(-42))
	require.NoError(t, w.WriteInt64(-1))
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.WriteBool(false))

	assert.EqualValues(t, 1+2+4+8+4+8+1+1, w.Written())

	r := NewReader(&buf)

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), i64)

	b1, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b1)

	b2, err := r.ReadBool()
	require.NoError(t, err)
	assert.False(t, b2)
}

func TestWriteReadLenString(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	defer w.Release()

	require.NoError(t, w.WriteLenString("hello entry"))

	r := NewReader(&buf)
	got, err := r.ReadLenString()
	require.NoError(t, err)
	assert.Equal(t, "hello entry", got)
}

func TestWriteLenString_TooLong(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	defer w.Release()

	long := strings.Repeat("x", MaxStringLen+1)
	err := w.WriteLenString(long)
	assert.ErrorIs(t, err, errs.ErrStringTooLong)
}

func TestWriteReadLenBytes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	defer w.Release()

	payload := []byte("attribute value bytes")
	require.NoError(t, w.WriteLenBytes(payload))

	r := NewReader(&buf)
	got, err := r.ReadLenBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPadToAlignment(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	defer w.Release()

	require.NoError(t, w.WriteBytes([]byte{1, 2, 3}))
	require.NoError(t, w.PadToAlignment(8))
	assert.EqualValues(t, 8, w.Written())
	assert.Equal(t, 8, buf.Len())
}

func TestReadBytes_TruncatedInput(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	_, err := r.ReadBytes(10)
	assert.Error(t, err)
}

func TestReadUint32_TruncatedInput(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	_, err := r.ReadUint32()
	assert.Error(t, err)
}

