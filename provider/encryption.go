package provider

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptionProvider implements one AEAD cipher. Block encrypt/decrypt
// produce/consume exactly `nonce ‖ ciphertext ‖ tag`.
type EncryptionProvider interface {
	ID() uint8
	Name() string
	KeySize() int
	NonceSize() int
	TagSize() int

	GenerateKey() ([]byte, error)

	// EncryptBlock encrypts data under key with optional associated
	// data, returning nonce‖ciphertext‖tag.
	EncryptBlock(key, data, aad []byte) ([]byte, error)

	// DecryptBlock reverses EncryptBlock. A tag mismatch is reported as
	// an authentication error; no plaintext is ever returned on failure.
	DecryptBlock(key, sealed, aad []byte) ([]byte, error)
}

var encryptionByID = map[uint8]EncryptionProvider{}
var encryptionByName = map[string]EncryptionProvider{}

func registerEncryption(p EncryptionProvider) {
	encryptionByID[p.ID()] = p
	encryptionByName[p.Name()] = p
}

func init() {
	registerEncryption(aesGCMEncryption{})
	registerEncryption(chacha20Encryption{})
}

// EncryptionByID looks up an encryption provider by its numeric id.
func EncryptionByID(id uint8) (EncryptionProvider, error) {
	if p, ok := encryptionByID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: encryption id %d", errs.ErrUnknownAlgorithm, id)
}

// EncryptionByName looks up an encryption provider by its name.
func EncryptionByName(name string) (EncryptionProvider, error) {
	if p, ok := encryptionByName[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: encryption %q", errs.ErrUnknownAlgorithm, name)
}

const (
	aeadNonceSize = 12
	aeadTagSize   = 16
)

// AEADTagSize is the fixed AEAD tag size shared by every registered
// encryption provider (both AES-256-GCM and ChaCha20-Poly1305 use 16-byte
// tags, per spec). Callers that must split a sealed blob before knowing
// which cipher produced it (e.g. parsing an EncryptionBlock) can rely on
// this constant instead of resolving a provider first.
const AEADTagSize = aeadTagSize

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	return b, nil
}

func sealBlock(aead cipher.AEAD, data, aad []byte) ([]byte, error) {
	nonce, err := randomBytes(aead.NonceSize())
	if err != nil {
		return nil, err
	}
	// AEAD.Seal appends the ciphertext+tag after dst, so preallocating
	// dst=nonce gives exactly nonce‖ciphertext‖tag.
	sealed := aead.Seal(nonce, nonce, data, aad)
	return sealed, nil
}

func openBlock(aead cipher.AEAD, sealed, aad []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(sealed) < ns+aead.Overhead() {
		return nil, fmt.Errorf("%w: sealed block too short", errs.ErrAuthenticationFailed)
	}
	nonce, ciphertext := sealed[:ns], sealed[ns:]
	plain, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, errs.ErrAuthenticationFailed
	}
	return plain, nil
}

// aesGCMEncryption implements AES-256-GCM.
type aesGCMEncryption struct{}

func (aesGCMEncryption) ID() uint8      { return apackformat.EncryptionAES256GCM }
func (aesGCMEncryption) Name() string   { return "aes-256-gcm" }
func (aesGCMEncryption) KeySize() int   { return 32 }
func (aesGCMEncryption) NonceSize() int { return aeadNonceSize }
func (aesGCMEncryption) TagSize() int   { return aeadTagSize }

func (p aesGCMEncryption) GenerateKey() ([]byte, error) {
	return randomBytes(p.KeySize())
}

func (p aesGCMEncryption) aead(key []byte) (cipher.AEAD, error) {
	if len(key) != p.KeySize() {
		return nil, fmt.Errorf("%w: aes-256-gcm key must be %d bytes", errs.ErrNoKeyConfigured, p.KeySize())
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrAuthenticationFailed, err)
	}
	return cipher.NewGCM(block)
}

func (p aesGCMEncryption) EncryptBlock(key, data, aad []byte) ([]byte, error) {
	aead, err := p.aead(key)
	if err != nil {
		return nil, err
	}
	return sealBlock(aead, data, aad)
}

func (p aesGCMEncryption) DecryptBlock(key, sealed, aad []byte) ([]byte, error) {
	aead, err := p.aead(key)
	if err != nil {
		return nil, err
	}
	return openBlock(aead, sealed, aad)
}

// chacha20Encryption implements ChaCha20-Poly1305.
type chacha20Encryption struct{}

func (chacha20Encryption) ID() uint8      { return apackformat.EncryptionChaCha20Poly1305 }
func (chacha20Encryption) Name() string   { return "chacha20-poly1305" }
func (chacha20Encryption) KeySize() int   { return chacha20poly1305.KeySize }
func (chacha20Encryption) NonceSize() int { return chacha20poly1305.NonceSize }
func (chacha20Encryption) TagSize() int   { return aeadTagSize }

func (p chacha20Encryption) GenerateKey() ([]byte, error) {
	return randomBytes(p.KeySize())
}

func (p chacha20Encryption) aead(key []byte) (cipher.AEAD, error) {
	return chacha20poly1305.New(key)
}

func (p chacha20Encryption) EncryptBlock(key, data, aad []byte) ([]byte, error) {
	aead, err := p.aead(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrNoKeyConfigured, err)
	}
	return sealBlock(aead, data, aad)
}

func (p chacha20Encryption) DecryptBlock(key, sealed, aad []byte) ([]byte, error) {
	aead, err := p.aead(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrNoKeyConfigured, err)
	}
	return openBlock(aead, sealed, aad)
}
