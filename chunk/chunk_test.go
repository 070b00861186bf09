package chunk

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"github.com/apackfmt/apack/provider"
)

func aadForIndex(index int32) []byte {
	return []byte{byte(index)}
}

func buildProcessor(t *testing.T, compression, encryption, checksum string) (*Processor, []byte) {
	t.Helper()

	cfg := Config{}

	if compression != "" {
		c, err := provider.CompressionByName(compression)
		require.NoError(t, err)
		cfg.Compression = c
		cfg.CompressionLevel = c.DefaultLevel()
	}

	var key []byte
	if encryption != "" {
		e, err := provider.EncryptionByName(encryption)
		require.NoError(t, err)
		cfg.Encryption = e
		k, err := e.GenerateKey()
		require.NoError(t, err)
		key = k
		cfg.Key = key
	}

	cs, err := provider.ChecksumByName(checksum)
	require.NoError(t, err)
	cfg.Checksum = cs

	return NewProcessor(cfg), key
}

func TestWriterReader_RoundTrip_Matrix(t *testing.T) {
	compressions := []string{"", "zstd", "lz4"}
	encryptions := []string{"", "aes-256-gcm", "chacha20-poly1305"}
	checksums := []string{"crc32", "xxh3-64"}

	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 500)

	for _, comp := range compressions {
		for _, enc := range encryptions {
			for _, cks := range checksums {
				name := comp + "/" + enc + "/" + cks
				t.Run(name, func(t *testing.T) {
					processor, _ := buildProcessor(t, comp, enc, cks)

					var buf bytes.Buffer
					var aad AADFunc
					if enc != "" {
						aad = aadForIndex
					}

					w := NewWriter(&buf, 4096, processor, nil, aad)
					n, err := w.Write(payload)
					require.NoError(t, err)
					assert.Equal(t, len(payload), n)
					require.NoError(t, w.Finish())

					r := NewReader(&buf, processor, aad)
					got, err := io.ReadAll(r)
					require.NoError(t, err)
					assert.Equal(t, payload, got)
				})
			}
		}
	}
}

func TestWriterReader_EmptyEntry(t *testing.T) {
	processor, _ := buildProcessor(t, "", "", "crc32")

	var buf bytes.Buffer
	w := NewWriter(&buf, 4096, processor, nil, nil)
	require.NoError(t, w.Finish())
	assert.Equal(t, int32(1), w.ChunkCount())

	r := NewReader(&buf, processor, nil)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriter_ExactlyAlignedPayload_StillEmitsTerminalChunk(t *testing.T) {
	processor, _ := buildProcessor(t, "", "", "crc32")

	var buf bytes.Buffer
	w := NewWriter(&buf, 8, processor, nil, nil)
	_, err := w.Write(bytes.Repeat([]byte("a"), 16))
	require.NoError(t, err)
	require.NoError(t, w.Finish())

	// 16 bytes / chunkSize 8 -> two full chunks flushed during Write, plus
	// a zero-length terminal LAST chunk from Finish.
	assert.Equal(t, int32(3), w.ChunkCount())

	r := NewReader(&buf, processor, nil)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte("a"), 16), got)
}

func TestWriter_IncompressiblePayload_ClearsCompressedFlag(t *testing.T) {
	processor, _ := buildProcessor(t, "zstd", "", "crc32")

	var buf bytes.Buffer

	// Short, incompressible payload: zstd output for it should not shrink
	// below the original, so the compressed flag must stay clear and the
	// stored chunk must equal the original bytes.
	incompressible := []byte{0x01, 0x9f, 0x3a, 0x77, 0x00, 0xe2, 0x5c, 0x10, 0x8b, 0x44}

	var sawCompressed bool
	onHeader := func(index int32, h apackformat.ChunkHeader) {
		sawCompressed = sawCompressed || h.IsCompressed()
	}

	w := NewWriter(&buf, 4096, processor, onHeader, nil)
	_, err := w.Write(incompressible)
	require.NoError(t, err)
	require.NoError(t, w.Finish())
	assert.False(t, sawCompressed)

	r := NewReader(&buf, processor, nil)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, incompressible, got)
}

func TestReader_ChecksumMismatch_Fails(t *testing.T) {
	processor, _ := buildProcessor(t, "", "", "crc32")

	var buf bytes.Buffer
	w := NewWriter(&buf, 4096, processor, nil, nil)
	_, err := w.Write([]byte("tamper with me"))
	require.NoError(t, err)
	require.NoError(t, w.Finish())

	tampered := buf.Bytes()
	// Flip a byte in the body, past the fixed-size header.
	tampered[len(tampered)-1] ^= 0xFF

	r := NewReader(bytes.NewReader(tampered), processor, nil)
	_, err = io.ReadAll(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrChunkChecksumMismatch)
}

func TestReader_AuthenticationFailure_OnTamperedCiphertext(t *testing.T) {
	processor, _ := buildProcessor(t, "", "aes-256-gcm", "crc32")

	var buf bytes.Buffer
	w := NewWriter(&buf, 4096, processor, nil, aadForIndex)
	_, err := w.Write([]byte("secret bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Finish())

	tampered := buf.Bytes()
	tampered[len(tampered)-1] ^= 0xFF

	r := NewReader(bytes.NewReader(tampered), processor, aadForIndex)
	_, err = io.ReadAll(r)
	require.Error(t, err)
}

func TestWriter_WriteAfterFinish_Errors(t *testing.T) {
	processor, _ := buildProcessor(t, "", "", "crc32")

	var buf bytes.Buffer
	w := NewWriter(&buf, 4096, processor, nil, nil)
	require.NoError(t, w.Finish())

	_, err := w.Write([]byte("too late"))
	assert.ErrorIs(t, err, errs.ErrClosed)
}

func TestProcessor_ProcessForRead_RejectsOriginalSizeAboveMax(t *testing.T) {
	processor, _ := buildProcessor(t, "zstd", "", "crc32")

	_, err := processor.ProcessForRead(nil, apackformat.MaxOriginalSize+1, true, false, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidSize)
}

func TestProcessor_ProcessForRead_RejectsNegativeOriginalSize(t *testing.T) {
	processor, _ := buildProcessor(t, "", "", "crc32")

	_, err := processor.ProcessForRead(nil, -1, false, false, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidSize)
}
