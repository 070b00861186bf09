package archive

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSink is a growable, WriteAt-capable in-memory sink standing in for
// a seekable file in tests, so the archive writer can back-patch the
// file header's entry-count/trailer-offset fields (container mode
// requires a seekable sink for those fields to be populated at all).
type memSink struct {
	buf []byte
}

func (m *memSink) Write(p []byte) (int, error) {
	m.buf = append(m.buf, p...)
	return len(p), nil
}

func (m *memSink) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[off:end], p)
	return len(p), nil
}

func buildArchive(t *testing.T, cfg WriterConfig, entries map[string][]byte) []byte {
	t.Helper()

	sink := &memSink{}
	w, err := NewWriter(sink, cfg)
	require.NoError(t, err)

	// Deterministic order for reproducible offsets in assertions.
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sortStrings(names)

	for _, name := range names {
		ew, err := w.AddEntry(EntryOptions{Name: name, Mime: "application/octet-stream"})
		require.NoError(t, err)
		_, err = ew.Write(entries[name])
		require.NoError(t, err)
		require.NoError(t, ew.Close())
	}
	require.NoError(t, w.Close())
	return sink.buf
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func TestRoundTrip_NoOptions(t *testing.T) {
	data := buildArchive(t, WriterConfig{}, map[string][]byte{
		"a.txt": []byte("hello"),
		"b.bin": bytes.Repeat([]byte{0xAB}, 1024*1024),
	})

	r, err := Open(NewMemorySource(data), ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 2, r.EntryCount())

	_, rd, err := r.ByName("a.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	_, rd, err = r.ByName("b.bin")
	require.NoError(t, err)
	got, err = io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, 1024*1024), got)
}

func TestCompression_EffectiveOnZeros(t *testing.T) {
	payload := make([]byte, 1024*1024)

	sink := &memSink{}
	w, err := NewWriter(sink, WriterConfig{Compression: "zstd", CompressionLevel: 3})
	require.NoError(t, err)
	ew, err := w.AddEntry(EntryOptions{Name: "zeros.bin"})
	require.NoError(t, err)
	_, err = ew.Write(payload)
	require.NoError(t, err)
	require.NoError(t, ew.Close())
	require.NoError(t, w.Close())

	r, err := Open(NewMemorySource(sink.buf), ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Less(t, entries[0].StoredSize, entries[0].OriginalSize/2)

	_, rd, err := r.ByName("zeros.bin")
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestCompression_SkippedForIncompressible(t *testing.T) {
	payload := make([]byte, 64*1024)
	for i := range payload {
		payload[i] = byte(i*2654435761 + i*i)
	}

	sink := &memSink{}
	w, err := NewWriter(sink, WriterConfig{Compression: "zstd", CompressionLevel: 3})
	require.NoError(t, err)
	ew, err := w.AddEntry(EntryOptions{Name: "rand.bin"})
	require.NoError(t, err)
	_, err = ew.Write(payload)
	require.NoError(t, err)
	require.NoError(t, ew.Close())
	require.NoError(t, w.Close())

	r, err := Open(NewMemorySource(sink.buf), ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	_, rd, err := r.ByName("rand.bin")
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestEncryption_WrongPasswordFails(t *testing.T) {
	data := buildArchive(t, WriterConfig{
		Encryption: "aes-256-gcm",
		Password:   []byte("correct horse"),
	}, map[string][]byte{"secret.txt": []byte("top secret payload")})

	r, err := Open(NewMemorySource(data), ReaderConfig{Password: []byte("correct horse")})
	require.NoError(t, err)
	defer r.Close()

	_, rd, err := r.ByName("secret.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, []byte("top secret payload"), got)

	_, err = Open(NewMemorySource(data), ReaderConfig{Password: []byte("wrong")})
	require.Error(t, err)
}

func TestRandomAccess_ByID(t *testing.T) {
	entries := make(map[string][]byte)
	for i := 0; i < 20; i++ {
		entries[string(rune('a'+i))] = bytes.Repeat([]byte{byte(i)}, 4096)
	}
	data := buildArchive(t, WriterConfig{}, entries)

	r, err := Open(NewMemorySource(data), ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	// Entry ids are assigned in write order starting at 1.
	for _, id := range []uint64{1, 10, 20} {
		header, rd, err := r.ByID(id)
		require.NoError(t, err)
		got, err := io.ReadAll(rd)
		require.NoError(t, err)
		assert.NotEmpty(t, header.Name)
		assert.Len(t, got, 4096)
	}
}

func TestTamperDetection_ChunkBody(t *testing.T) {
	data := buildArchive(t, WriterConfig{Checksum: "crc32"}, map[string][]byte{
		"a": []byte("this is entry a's content, long enough to matter"),
		"b": []byte("this is entry b's content, untouched"),
	})

	// Flip a byte somewhere past the file header, inside the body.
	tampered := append([]byte(nil), data...)
	tampered[len(tampered)/2] ^= 0xFF

	r, err := Open(NewMemorySource(tampered), ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	var sawError bool
	for _, name := range []string{"a", "b"} {
		_, rd, err := r.ByName(name)
		if err != nil {
			sawError = true
			continue
		}
		if _, err := io.ReadAll(rd); err != nil {
			sawError = true
		}
	}
	assert.True(t, sawError, "expected at least one entry to fail integrity checks after tampering")
}

func TestEmptyEntry_ZeroLengthLastChunk(t *testing.T) {
	data := buildArchive(t, WriterConfig{}, map[string][]byte{"empty": {}})

	r, err := Open(NewMemorySource(data), ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	_, rd, err := r.ByName("empty")
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriter_CloseIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, WriterConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWriter_AddEntryAfterClose_Errors(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, WriterConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.AddEntry(EntryOptions{Name: "too-late"})
	assert.Error(t, err)
}

func TestReader_LookupUnknownName(t *testing.T) {
	data := buildArchive(t, WriterConfig{}, map[string][]byte{"a": []byte("x")})

	r, err := Open(NewMemorySource(data), ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	_, _, err = r.ByName("nonexistent")
	assert.Error(t, err)
}
