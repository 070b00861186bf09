package archive

import "github.com/apackfmt/apack/internal/options"

// Option configures a WriterConfig via the functional-options pattern,
// built on the shared internal/options.Option[T] machinery.
type Option = options.Option[*WriterConfig]

// WithChunkSize sets WriterConfig.ChunkSize, in bytes.
func WithChunkSize(size int) Option {
	return options.NoError[*WriterConfig](func(c *WriterConfig) {
		c.ChunkSize = size
	})
}

// WithCompression sets the compression provider name and level.
func WithCompression(name string, level int) Option {
	return options.NoError[*WriterConfig](func(c *WriterConfig) {
		c.Compression = name
		c.CompressionLevel = level
	})
}

// WithEncryption sets the encryption provider name.
func WithEncryption(name string) Option {
	return options.NoError[*WriterConfig](func(c *WriterConfig) {
		c.Encryption = name
	})
}

// WithChecksum sets the checksum provider name.
func WithChecksum(name string) Option {
	return options.NoError[*WriterConfig](func(c *WriterConfig) {
		c.Checksum = name
	})
}

// WithPassword sets the password used to derive the key-encryption key
// when encryption is enabled.
func WithPassword(password []byte) Option {
	return options.NoError[*WriterConfig](func(c *WriterConfig) {
		c.Password = password
	})
}

// WithKDF sets the key-derivation-function provider name.
func WithKDF(name string) Option {
	return options.NoError[*WriterConfig](func(c *WriterConfig) {
		c.KDF = name
	})
}

// WithStreamMode enables stream mode (a single entry, no TOC; the archive
// ends in a stream trailer instead of the container trailer).
func WithStreamMode() Option {
	return options.NoError[*WriterConfig](func(c *WriterConfig) {
		c.StreamMode = true
	})
}

// NewWriterConfig builds a WriterConfig by applying opts, in order, over
// the zero value.
func NewWriterConfig(opts ...Option) (WriterConfig, error) {
	cfg := &WriterConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return WriterConfig{}, err
	}
	return *cfg, nil
}
