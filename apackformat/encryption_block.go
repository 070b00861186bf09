package apackformat

import (
	"fmt"

	"github.com/apackfmt/apack/binary"
	"github.com/apackfmt/apack/errs"
)

// EncryptionBlock carries the KDF parameters, salt, and AEAD-wrapped Data
// Encryption Key. Written once, immediately after the FileHeader, when
// encryption is enabled.
type EncryptionBlock struct {
	KDFID         uint8
	CipherID      uint8
	KDFIterations uint32
	KDFMemoryKB   uint32
	KDFParallelism uint32
	Salt          []byte
	WrappedKey    []byte
	WrappedKeyTag []byte
}

// WriteTo serializes the block to w: magic, kdf/cipher ids, reserved u16,
// KDF parameters, salt/wrapped-key length prefixes, then the salt,
// wrapped key and its AEAD tag.
func (b *EncryptionBlock) WriteTo(w *binary.Writer) error {
	if err := w.WriteBytes(MagicEncr[:]); err != nil {
		return err
	}
	if err := w.WriteUint8(b.KDFID); err != nil {
		return err
	}
	if err := w.WriteUint8(b.CipherID); err != nil {
		return err
	}
	if err := w.WriteUint16(0); err != nil { // reserved
		return err
	}
	if err := w.WriteUint32(b.KDFIterations); err != nil {
		return err
	}
	if err := w.WriteUint32(b.KDFMemoryKB); err != nil {
		return err
	}
	if err := w.WriteUint32(b.KDFParallelism); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(len(b.Salt))); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(len(b.WrappedKey))); err != nil {
		return err
	}
	if err := w.WriteBytes(b.Salt); err != nil {
		return err
	}
	if err := w.WriteBytes(b.WrappedKey); err != nil {
		return err
	}
	return w.WriteBytes(b.WrappedKeyTag)
}

// ReadFrom decodes a block from r. tagSize is the AEAD tag size of the
// cipher named by CipherID, supplied by the caller because the tag is not
// itself length-prefixed on the wire.
func (b *EncryptionBlock) ReadFrom(r *binary.Reader, tagSize int) error {
	magic, err := r.ReadBytes(4)
	if err != nil {
		return err
	}
	if string(magic) != string(MagicEncr[:]) {
		return fmt.Errorf("%w: encryption block magic", errs.ErrBadMagic)
	}

	if b.KDFID, err = r.ReadUint8(); err != nil {
		return err
	}
	if b.CipherID, err = r.ReadUint8(); err != nil {
		return err
	}
	if _, err = r.ReadUint16(); err != nil { // reserved
		return err
	}
	if b.KDFIterations, err = r.ReadUint32(); err != nil {
		return err
	}
	if b.KDFMemoryKB, err = r.ReadUint32(); err != nil {
		return err
	}
	if b.KDFParallelism, err = r.ReadUint32(); err != nil {
		return err
	}

	saltLen, err := r.ReadUint16()
	if err != nil {
		return err
	}
	keyLen, err := r.ReadUint16()
	if err != nil {
		return err
	}

	if b.Salt, err = r.ReadBytes(int(saltLen)); err != nil {
		return err
	}
	if b.WrappedKey, err = r.ReadBytes(int(keyLen)); err != nil {
		return err
	}
	if b.WrappedKeyTag, err = r.ReadBytes(tagSize); err != nil {
		return err
	}
	return nil
}
