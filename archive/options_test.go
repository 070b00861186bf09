package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriterConfig_AppliesOptionsInOrder(t *testing.T) {
	cfg, err := NewWriterConfig(
		WithCompression("zstd", 5),
		WithEncryption("aes-256-gcm"),
		WithPassword([]byte("hunter2")),
		WithChecksum("xxh3-64"),
		WithChunkSize(64*1024),
		WithKDF("pbkdf2-sha256"),
	)
	require.NoError(t, err)

	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, 5, cfg.CompressionLevel)
	assert.Equal(t, "aes-256-gcm", cfg.Encryption)
	assert.Equal(t, []byte("hunter2"), cfg.Password)
	assert.Equal(t, "xxh3-64", cfg.Checksum)
	assert.Equal(t, 64*1024, cfg.ChunkSize)
	assert.Equal(t, "pbkdf2-sha256", cfg.KDF)
	assert.False(t, cfg.StreamMode)
}

func TestWithStreamMode_SetsFlag(t *testing.T) {
	cfg, err := NewWriterConfig(WithStreamMode())
	require.NoError(t, err)
	assert.True(t, cfg.StreamMode)
}

func TestNewWriterConfig_RoundTripsThroughNewWriter(t *testing.T) {
	cfg, err := NewWriterConfig(WithCompression("lz4", 0))
	require.NoError(t, err)

	sink := &memSink{}
	w, err := NewWriter(sink, cfg)
	require.NoError(t, err)

	ew, err := w.AddEntry(EntryOptions{Name: "a.txt"})
	require.NoError(t, err)
	_, err = ew.Write([]byte("hello via functional options"))
	require.NoError(t, err)
	require.NoError(t, ew.Close())
	require.NoError(t, w.Close())

	r, err := Open(NewMemorySource(sink.buf), ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 1, r.EntryCount())
}
