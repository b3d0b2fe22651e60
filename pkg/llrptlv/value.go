// Package llrptlv holds the runtime message tree (Spec 3.2): the
// in-memory representation that the Codec both builds from octets and
// consumes to produce them. A Message or Parameter instance is a tagged
// record of (spec reference, field values, ordered sub-items); there is
// one Go type per tree node, not one type per LLRP message, matching
// the "single generic codec driven by SpecModel data" design (Spec 9).
package llrptlv

import "fmt"

// ValueKind tags the variant held by a Value. Booleans are a distinct
// kind from integers so that a bit-packed 0/1 field can never be
// silently treated as a uint (Spec 9).
type ValueKind int

const (
	KindUint ValueKind = iota
	KindSint
	KindBool
	KindBytes
	KindString
	KindUintArray
)

// Value is a tagged union over every semantic type an LLRP field can
// hold (Spec 3.2): unsigned/signed integers of the field's declared
// width, booleans, fixed-width byte strings, UTF-8 text, EPC
// identifiers (held as Bytes), and repeated scalar arrays.
type Value struct {
	kind   ValueKind
	u      uint64
	s      int64
	b      bool
	bytes  []byte
	str    string
	uarray []uint64
}

// Uint wraps an unsigned integer value.
func Uint(v uint64) Value { return Value{kind: KindUint, u: v} }

// Sint wraps a signed integer value.
func Sint(v int64) Value { return Value{kind: KindSint, s: v} }

// Bool wraps a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Bytes wraps a fixed-width byte string (e.g. a 12-byte EPC-96).
func Bytes(v []byte) Value { return Value{kind: KindBytes, bytes: append([]byte(nil), v...)} }

// String wraps a UTF-8 text value.
func String(v string) Value { return Value{kind: KindString, str: v} }

// UintArray wraps a repeated array of unsigned integers (e.g. AntennaIDs).
func UintArray(v []uint64) Value {
	return Value{kind: KindUintArray, uarray: append([]uint64(nil), v...)}
}

// Kind reports which variant this Value holds.
func (v Value) Kind() ValueKind { return v.kind }

// AsUint returns the wrapped value as a uint64. ok is false if the Value
// does not hold KindUint.
func (v Value) AsUint() (uint64, bool) {
	if v.kind != KindUint {
		return 0, false
	}
	return v.u, true
}

// AsSint returns the wrapped value as an int64. ok is false if the Value
// does not hold KindSint.
func (v Value) AsSint() (int64, bool) {
	if v.kind != KindSint {
		return 0, false
	}
	return v.s, true
}

// AsBool returns the wrapped value as a bool. ok is false if the Value
// does not hold KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsBytes returns the wrapped byte string. ok is false if the Value does
// not hold KindBytes.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return append([]byte(nil), v.bytes...), true
}

// AsString returns the wrapped UTF-8 text. ok is false if the Value does
// not hold KindString.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsUintArray returns the wrapped array. ok is false if the Value does
// not hold KindUintArray.
func (v Value) AsUintArray() ([]uint64, bool) {
	if v.kind != KindUintArray {
		return nil, false
	}
	return append([]uint64(nil), v.uarray...), true
}

// Equal reports whether two Values hold the same kind and content,
// which the binary and XML round-trip properties (Spec 8) depend on.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindUint:
		return v.u == o.u
	case KindSint:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindBytes:
		return string(v.bytes) == string(o.bytes)
	case KindString:
		return v.str == o.str
	case KindUintArray:
		if len(v.uarray) != len(o.uarray) {
			return false
		}
		for i := range v.uarray {
			if v.uarray[i] != o.uarray[i] {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindUint:
		return fmt.Sprintf("%d", v.u)
	case KindSint:
		return fmt.Sprintf("%d", v.s)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindBytes:
		return fmt.Sprintf("%x", v.bytes)
	case KindString:
		return v.str
	case KindUintArray:
		return fmt.Sprintf("%v", v.uarray)
	default:
		return "<invalid>"
	}
}
