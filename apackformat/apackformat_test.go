package apackformat

import (
	"bytes"
	"testing"

	"github.com/apackfmt/apack/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHeader_RoundTrip(t *testing.T) {
	h := FileHeader{
		VersionMajor:      1,
		VersionMinor:      2,
		VersionPatch:      3,
		CompatLevel:       1,
		ModeFlags:         ModeRandomAccess | ModeEncrypted,
		ChecksumAlgorithm: ChecksumXXH364,
		ChunkSize:         1 << 18,
	}

	b := h.Bytes()
	require.Len(t, b, FileHeaderSize)

	var got FileHeader
	require.NoError(t, got.Parse(b))
	assert.Equal(t, h.VersionMajor, got.VersionMajor)
	assert.Equal(t, h.ModeFlags, got.ModeFlags)
	assert.Equal(t, h.ChunkSize, got.ChunkSize)
	assert.True(t, got.HasFlag(ModeEncrypted))
	assert.False(t, got.HasFlag(ModeStreamMode))
}

func TestFileHeader_BadMagic(t *testing.T) {
	h := FileHeader{}
	b := h.Bytes()
	b[0] = 'X'

	var got FileHeader
	err := got.Parse(b)
	assert.Error(t, err)
}

func TestFileHeader_CRCMismatch(t *testing.T) {
	h := FileHeader{ChunkSize: 4096}
	b := h.Bytes()
	b[6] ^= 0xFF // corrupt a byte inside the CRC-covered prefix

	var got FileHeader
	err := got.Parse(b)
	assert.Error(t, err)
}

func TestFileHeader_BackPatchOffsets(t *testing.T) {
	h := FileHeader{EntryCount: 7, TrailerOffset: 12345}
	b := h.Bytes()

	assert.EqualValues(t, 7, getU64(b[EntryCountOffset:EntryCountOffset+8]))
	assert.EqualValues(t, 12345, getU64(b[TrailerOffsetOffset:TrailerOffsetOffset+8]))
}

func TestChunkHeader_RoundTrip(t *testing.T) {
	h := ChunkHeader{Index: 3, OriginalSize: 1024, StoredSize: 900, Checksum: 0xCAFEBABE}
	h.SetCompressed(true)
	h.SetLast(true)

	b := h.Bytes()
	require.Len(t, b, ChunkHeaderSize)

	var got ChunkHeader
	require.NoError(t, got.Parse(b))
	assert.Equal(t, h, got)
	assert.True(t, got.IsLast())
	assert.True(t, got.IsCompressed())
	assert.False(t, got.IsEncrypted())
}

func TestTocEntry_RoundTrip(t *testing.T) {
	e := TocEntry{EntryID: 1, EntryOffset: 64, OriginalSize: 500, StoredSize: 480, NameHash: 0x1234, EntryChecksum: 0x5678}
	b := e.Bytes()
	require.Len(t, b, TocEntrySize)

	var got TocEntry
	require.NoError(t, got.Parse(b))
	assert.Equal(t, e, got)
}

func TestTrailer_RoundTrip(t *testing.T) {
	tr := Trailer{TrailerVersion: 1, TocOffset: 100, TocSize: 40, EntryCount: 1, TotalOriginalSize: 500, TotalStoredSize: 480, FileSize: 600}
	b := tr.Bytes()
	require.Len(t, b, TrailerSize)

	var got Trailer
	require.NoError(t, got.Parse(b))
	assert.Equal(t, tr.EntryCount, got.EntryCount)
	assert.Equal(t, tr.TotalStoredSize, got.TotalStoredSize)
	assert.Equal(t, tr.TrailerChecksum, got.TrailerChecksum)
}

func TestTrailer_ChecksumMismatch(t *testing.T) {
	tr := Trailer{EntryCount: 1}
	b := tr.Bytes()
	b[10] ^= 0xFF

	var got Trailer
	assert.Error(t, got.Parse(b))
}

func TestStreamTrailer_RoundTrip(t *testing.T) {
	st := StreamTrailer{OriginalSize: 1000, StoredSize: 900, ChunkCount: 4}
	b := st.Bytes()
	require.Len(t, b, StreamTrailerSize)

	var got StreamTrailer
	require.NoError(t, got.Parse(b))
	assert.Equal(t, st.OriginalSize, got.OriginalSize)
	assert.Equal(t, st.ChunkCount, got.ChunkCount)
}

func TestEntryHeader_RoundTrip(t *testing.T) {
	h := EntryHeader{
		ID:   42,
		Name: "a/b.txt",
		Mime: "text/plain",
		Attributes: []Attribute{
			StringAttribute("author", "alice"),
			Int64Attribute("mtime", 1710000000),
			BoolAttribute("executable", true),
			BytesAttribute("checksum", []byte{1, 2, 3, 4}),
		},
		CompressionID: CompressionZstd,
		EncryptionID:  EncryptionNone,
		Flags:         EntryFlagCompressed,
	}

	var buf bytes.Buffer
	w := binary.NewWriter(&buf)
	require.NoError(t, h.WriteTo(w))
	w.Release()

	var got EntryHeader
	r := binary.NewReader(&buf)
	require.NoError(t, got.ReadFrom(r))

	assert.Equal(t, h.ID, got.ID)
	assert.Equal(t, h.Name, got.Name)
	assert.Equal(t, h.Mime, got.Mime)
	require.Len(t, got.Attributes, 4)
	assert.Equal(t, "alice", got.Attributes[0].Str)
	assert.Equal(t, int64(1710000000), got.Attributes[1].Int64)
	assert.True(t, got.Attributes[2].Bool)
	assert.Equal(t, []byte{1, 2, 3, 4}, got.Attributes[3].Bytes)
	assert.True(t, got.HasFlag(EntryFlagCompressed))
}

func TestEncryptionBlock_RoundTrip(t *testing.T) {
	eb := EncryptionBlock{
		KDFID:          KDFArgon2id,
		CipherID:       EncryptionAES256GCM,
		KDFIterations:  3,
		KDFMemoryKB:    65536,
		KDFParallelism: 4,
		Salt:           bytes.Repeat([]byte{0xAA}, 16),
		WrappedKey:     bytes.Repeat([]byte{0xBB}, 32),
		WrappedKeyTag:  bytes.Repeat([]byte{0xCC}, 16),
	}

	var buf bytes.Buffer
	w := binary.NewWriter(&buf)
	require.NoError(t, eb.WriteTo(w))
	w.Release()

	var got EncryptionBlock
	r := binary.NewReader(&buf)
	require.NoError(t, got.ReadFrom(r, 16))

	assert.Equal(t, eb.Salt, got.Salt)
	assert.Equal(t, eb.WrappedKey, got.WrappedKey)
	assert.Equal(t, eb.WrappedKeyTag, got.WrappedKeyTag)
	assert.Equal(t, eb.KDFMemoryKB, got.KDFMemoryKB)
}
