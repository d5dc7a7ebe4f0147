// Package core defines the data model of the engine: typed values, rows,
// columns, tables, databases, and the database manager that tracks the
// current selection. All integrity rules (primary-key uniqueness, single
// primary key per table, foreign-key validation) live here.
package core

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"time"
)

// DataType identifies one of the six value variants. The numeric order is
// the on-disk tag order and the first component of the value total order;
// it must not be rearranged.
type DataType uint8

const (
	TypeInt DataType = iota
	TypeString
	TypeBool
	TypeTimestamp
	TypeFloat
	TypeBlob
)

// String returns the keyword used for the type in ADD TABLE statements.
func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeString:
		return "STRING"
	case TypeBool:
		return "BOOL"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeFloat:
		return "FLOAT"
	case TypeBlob:
		return "BLOB"
	}
	return "UNKNOWN"
}

// DataTypeFromKeyword maps an ADD TABLE type keyword to its DataType.
func DataTypeFromKeyword(kw string) (DataType, bool) {
	switch kw {
	case "INT":
		return TypeInt, true
	case "STRING":
		return TypeString, true
	case "BOOL":
		return TypeBool, true
	case "TIMESTAMP":
		return TypeTimestamp, true
	case "FLOAT":
		return TypeFloat, true
	case "BLOB":
		return TypeBlob, true
	}
	return 0, false
}

// Value is the closed tagged union stored in rows and indexed by B-trees.
// Values are immutable by convention and copied by value; the blob payload
// must not be mutated after construction.
type Value struct {
	typ  DataType
	i    int32
	ts   int64
	f    float32
	b    bool
	s    string
	blob []byte
}

func Int(v int32) Value           { return Value{typ: TypeInt, i: v} }
func String(v string) Value       { return Value{typ: TypeString, s: v} }
func Bool(v bool) Value           { return Value{typ: TypeBool, b: v} }
func Timestamp(sec int64) Value   { return Value{typ: TypeTimestamp, ts: sec} }
func Float(v float32) Value       { return Value{typ: TypeFloat, f: v} }
func Blob(data []byte) Value      { return Value{typ: TypeBlob, blob: data} }

// Zero returns the default-constructed Value of the given type. Reading a
// column a row never set yields this.
func Zero(t DataType) Value {
	return Value{typ: t}
}

func (v Value) Type() DataType { return v.typ }

func (v Value) Int() int32       { return v.i }
func (v Value) Str() string      { return v.s }
func (v Value) Bool() bool       { return v.b }
func (v Value) Timestamp() int64 { return v.ts }
func (v Value) Float() float32   { return v.f }
func (v Value) Blob() []byte     { return v.blob }

// Equal reports structural equality: same variant, same payload. There is
// no numeric coercion; Int(1) and Float(1) are not equal.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeInt:
		return v.i == o.i
	case TypeString:
		return v.s == o.s
	case TypeBool:
		return v.b == o.b
	case TypeTimestamp:
		return v.ts == o.ts
	case TypeFloat:
		return v.f == o.f
	case TypeBlob:
		return bytes.Equal(v.blob, o.blob)
	}
	return false
}

// Compare defines the total order used by B-tree indexes: variants order
// by tag first, then by natural payload order within the variant
// (lexicographic for strings and blobs, false before true for bools).
func (v Value) Compare(o Value) int {
	if v.typ != o.typ {
		if v.typ < o.typ {
			return -1
		}
		return 1
	}
	switch v.typ {
	case TypeInt:
		return cmpOrdered(v.i, o.i)
	case TypeString:
		return cmpOrdered(v.s, o.s)
	case TypeBool:
		if v.b == o.b {
			return 0
		}
		if !v.b {
			return -1
		}
		return 1
	case TypeTimestamp:
		return cmpOrdered(v.ts, o.ts)
	case TypeFloat:
		return cmpOrdered(v.f, o.f)
	case TypeBlob:
		return bytes.Compare(v.blob, o.blob)
	}
	return 0
}

// Less reports v < o under the total order.
func (v Value) Less(o Value) bool { return v.Compare(o) < 0 }

// String renders the value the way the table printer displays it:
// timestamps as local "2006-01-02 15:04:05", blobs as 0x-prefixed hex,
// bools as true/false.
func (v Value) String() string {
	switch v.typ {
	case TypeInt:
		return strconv.FormatInt(int64(v.i), 10)
	case TypeString:
		return v.s
	case TypeBool:
		if v.b {
			return "true"
		}
		return "false"
	case TypeTimestamp:
		return time.Unix(v.ts, 0).Format("2006-01-02 15:04:05")
	case TypeFloat:
		return strconv.FormatFloat(float64(v.f), 'g', -1, 32)
	case TypeBlob:
		return "0x" + hex.EncodeToString(v.blob)
	}
	return ""
}

func cmpOrdered[T int32 | int64 | float32 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
