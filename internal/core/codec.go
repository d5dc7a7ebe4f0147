package core

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// On-disk limits. Length prefixes beyond these indicate a corrupt or
// hostile file and abort the read.
const (
	MaxNameLen  = 1000
	MaxValueLen = 1_000_000
)

// All multi-byte quantities are little-endian. Length prefixes are 64-bit
// unsigned ("size" in the file format).

// WriteSize writes a 64-bit unsigned length prefix.
func WriteSize(w io.Writer, n uint64) error {
	return binary.Write(w, binary.LittleEndian, n)
}

// ReadSize reads a 64-bit unsigned length prefix.
func ReadSize(r io.Reader) (uint64, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// WriteString writes a size-prefixed byte string.
func WriteString(w io.Writer, s string) error {
	if err := WriteSize(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a size-prefixed byte string, rejecting prefixes above
// max as corruption.
func ReadString(r io.Reader, max uint64) (string, error) {
	n, err := ReadSize(r)
	if err != nil {
		return "", err
	}
	if n > max {
		return "", fmt.Errorf("%w: string length %d exceeds limit %d", ErrCorruptFile, n, max)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// EncodePayload writes the value payload without a type tag. This is the
// row encoding of the database file: the column's declared type tells the
// reader how to decode.
func (v Value) EncodePayload(w io.Writer) error {
	switch v.typ {
	case TypeInt:
		return binary.Write(w, binary.LittleEndian, v.i)
	case TypeString:
		return WriteString(w, v.s)
	case TypeBool:
		var b byte
		if v.b {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return err
	case TypeTimestamp:
		return binary.Write(w, binary.LittleEndian, v.ts)
	case TypeFloat:
		return binary.Write(w, binary.LittleEndian, math.Float32bits(v.f))
	case TypeBlob:
		if err := WriteSize(w, uint64(len(v.blob))); err != nil {
			return err
		}
		_, err := w.Write(v.blob)
		return err
	}
	return fmt.Errorf("encode value: unknown type tag %d", v.typ)
}

// DecodePayload reads a payload of the given declared type.
func DecodePayload(r io.Reader, t DataType) (Value, error) {
	switch t {
	case TypeInt:
		var i int32
		if err := binary.Read(r, binary.LittleEndian, &i); err != nil {
			return Value{}, err
		}
		return Int(i), nil
	case TypeString:
		s, err := ReadString(r, MaxValueLen)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case TypeBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Value{}, err
		}
		return Bool(b[0] != 0), nil
	case TypeTimestamp:
		var ts int64
		if err := binary.Read(r, binary.LittleEndian, &ts); err != nil {
			return Value{}, err
		}
		return Timestamp(ts), nil
	case TypeFloat:
		var bits uint32
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return Value{}, err
		}
		return Float(math.Float32frombits(bits)), nil
	case TypeBlob:
		n, err := ReadSize(r)
		if err != nil {
			return Value{}, err
		}
		if n > MaxValueLen {
			return Value{}, fmt.Errorf("%w: blob length %d exceeds limit %d", ErrCorruptFile, n, MaxValueLen)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Value{}, err
		}
		return Blob(buf), nil
	}
	return Value{}, fmt.Errorf("%w: unknown type tag %d", ErrCorruptFile, t)
}

// EncodeTagged writes a self-describing value: a 1-byte type tag followed
// by the payload. It can serve as the key encoder when serializing a tree
// of Values, since a tree is decoded without any column schema in hand.
func (v Value) EncodeTagged(w io.Writer) error {
	if _, err := w.Write([]byte{byte(v.typ)}); err != nil {
		return err
	}
	return v.EncodePayload(w)
}

// DecodeTagged reads a value written by EncodeTagged.
func DecodeTagged(r io.Reader) (Value, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return Value{}, err
	}
	if tag[0] > byte(TypeBlob) {
		return Value{}, fmt.Errorf("%w: unknown value tag %d", ErrCorruptFile, tag[0])
	}
	return DecodePayload(r, DataType(tag[0]))
}
