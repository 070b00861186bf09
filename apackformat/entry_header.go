package apackformat

import (
	"fmt"

	"github.com/apackfmt/apack/binary"
	"github.com/apackfmt/apack/errs"
)

// Attribute is a typed key/value pair attached to an EntryHeader.
type Attribute struct {
	Key       string
	ValueType uint8
	Str       string
	Int64     int64
	Bool      bool
	Bytes     []byte
}

// StringAttribute, Int64Attribute, BoolAttribute and BytesAttribute build
// an Attribute of the corresponding value type.
func StringAttribute(key, value string) Attribute {
	return Attribute{Key: key, ValueType: AttrTypeString, Str: value}
}

func Int64Attribute(key string, value int64) Attribute {
	return Attribute{Key: key, ValueType: AttrTypeInt64, Int64: value}
}

func BoolAttribute(key string, value bool) Attribute {
	return Attribute{Key: key, ValueType: AttrTypeBool, Bool: value}
}

func BytesAttribute(key string, value []byte) Attribute {
	return Attribute{Key: key, ValueType: AttrTypeBytes, Bytes: value}
}

func (a *Attribute) writeTo(w *binary.Writer) error {
	if err := w.WriteLenString(a.Key); err != nil {
		return err
	}
	if err := w.WriteUint8(a.ValueType); err != nil {
		return err
	}
	switch a.ValueType {
	case AttrTypeString:
		return w.WriteLenBytes([]byte(a.Str))
	case AttrTypeInt64:
		return w.WriteInt64(a.Int64)
	case AttrTypeBool:
		return w.WriteBool(a.Bool)
	case AttrTypeBytes:
		return w.WriteLenBytes(a.Bytes)
	default:
		return fmt.Errorf("%w: attribute value type %d", errs.ErrUnknownAlgorithm, a.ValueType)
	}
}

func (a *Attribute) readFrom(r *binary.Reader) error {
	var err error
	if a.Key, err = r.ReadLenString(); err != nil {
		return err
	}
	if a.ValueType, err = r.ReadUint8(); err != nil {
		return err
	}
	switch a.ValueType {
	case AttrTypeString:
		b, err := r.ReadLenBytes()
		if err != nil {
			return err
		}
		a.Str = string(b)
	case AttrTypeInt64:
		if a.Int64, err = r.ReadInt64(); err != nil {
			return err
		}
	case AttrTypeBool:
		if a.Bool, err = r.ReadBool(); err != nil {
			return err
		}
	case AttrTypeBytes:
		if a.Bytes, err = r.ReadLenBytes(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: attribute value type %d", errs.ErrUnknownAlgorithm, a.ValueType)
	}
	return nil
}

// EntryHeader is the per-entry metadata record, written once immediately
// before the entry's chunk stream.
type EntryHeader struct {
	ID              uint64
	Name            string
	Mime            string
	Attributes      []Attribute
	CompressionID   uint8
	EncryptionID    uint8
	Flags           uint8
}

func (h *EntryHeader) HasFlag(bit uint8) bool { return h.Flags&bit != 0 }
func (h *EntryHeader) SetFlag(bit uint8)      { h.Flags |= bit }

// WriteTo serializes the header to w.
func (h *EntryHeader) WriteTo(w *binary.Writer) error {
	if len(h.Name) > binary.MaxStringLen {
		return fmt.Errorf("%w: %d bytes", errs.ErrNameTooLong, len(h.Name))
	}
	if err := w.WriteUint64(h.ID); err != nil {
		return err
	}
	if err := w.WriteLenString(h.Name); err != nil {
		return err
	}
	if err := w.WriteLenString(h.Mime); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(len(h.Attributes))); err != nil {
		return err
	}
	for i := range h.Attributes {
		if err := h.Attributes[i].writeTo(w); err != nil {
			return err
		}
	}
	if err := w.WriteUint8(h.CompressionID); err != nil {
		return err
	}
	if err := w.WriteUint8(h.EncryptionID); err != nil {
		return err
	}
	return w.WriteUint8(h.Flags)
}

// ReadFrom decodes a header from r.
func (h *EntryHeader) ReadFrom(r *binary.Reader) error {
	var err error
	if h.ID, err = r.ReadUint64(); err != nil {
		return err
	}
	if h.Name, err = r.ReadLenString(); err != nil {
		return err
	}
	if h.Mime, err = r.ReadLenString(); err != nil {
		return err
	}

	attrCount, err := r.ReadUint16()
	if err != nil {
		return err
	}
	h.Attributes = make([]Attribute, attrCount)
	for i := range h.Attributes {
		if err := h.Attributes[i].readFrom(r); err != nil {
			return err
		}
	}

	if h.CompressionID, err = r.ReadUint8(); err != nil {
		return err
	}
	if h.EncryptionID, err = r.ReadUint8(); err != nil {
		return err
	}
	if h.Flags, err = r.ReadUint8(); err != nil {
		return err
	}
	return nil
}
