package provider

import (
	"crypto/sha256"
	"fmt"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KDFParams carries the tunable parameters stored in the EncryptionBlock.
// Iterations applies to both KDFs; MemoryKB and Parallelism apply only to
// Argon2id and are ignored by PBKDF2-SHA256.
type KDFParams struct {
	Iterations  uint32
	MemoryKB    uint32
	Parallelism uint32
}

// KDFProvider derives a Key Encryption Key from a password and salt.
type KDFProvider interface {
	ID() uint8
	Name() string
	DefaultParams() KDFParams
	DeriveKey(password, salt []byte, params KDFParams, keyLen int) []byte
}

var kdfByID = map[uint8]KDFProvider{}
var kdfByName = map[string]KDFProvider{}

func registerKDF(p KDFProvider) {
	kdfByID[p.ID()] = p
	kdfByName[p.Name()] = p
}

func init() {
	registerKDF(argon2idKDF{})
	registerKDF(pbkdf2KDF{})
}

// KDFByID looks up a KDF provider by its numeric id.
func KDFByID(id uint8) (KDFProvider, error) {
	if p, ok := kdfByID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: kdf id %d", errs.ErrUnknownAlgorithm, id)
}

// KDFByName looks up a KDF provider by its name.
func KDFByName(name string) (KDFProvider, error) {
	if p, ok := kdfByName[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: kdf %q", errs.ErrUnknownAlgorithm, name)
}

type argon2idKDF struct{}

func (argon2idKDF) ID() uint8    { return apackformat.KDFArgon2id }
func (argon2idKDF) Name() string { return "argon2id" }

func (argon2idKDF) DefaultParams() KDFParams {
	return KDFParams{Iterations: 3, MemoryKB: 64 * 1024, Parallelism: 4}
}

func (argon2idKDF) DeriveKey(password, salt []byte, params KDFParams, keyLen int) []byte {
	return argon2.IDKey(password, salt, params.Iterations, params.MemoryKB, uint8(params.Parallelism), uint32(keyLen))
}

type pbkdf2KDF struct{}

func (pbkdf2KDF) ID() uint8    { return apackformat.KDFPBKDF2SHA256 }
func (pbkdf2KDF) Name() string { return "pbkdf2-sha256" }

func (pbkdf2KDF) DefaultParams() KDFParams {
	return KDFParams{Iterations: 600000}
}

func (pbkdf2KDF) DeriveKey(password, salt []byte, params KDFParams, keyLen int) []byte {
	return pbkdf2.Key(password, salt, int(params.Iterations), keyLen, sha256.New)
}
