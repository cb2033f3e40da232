package brine

import (
	"bytes"
	"math"
	"math/big"
	"strconv"
)

// Kind identifies which variant a Value holds. The zero Kind is KindNull,
// so the zero Value is the null value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindText
	KindList
	KindTuple
	KindMap
	KindSet
	KindFrozenSet
)

var kindNames = [...]string{
	KindNull:      "null",
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindBytes:     "bytes",
	KindText:      "text",
	KindList:      "list",
	KindTuple:     "tuple",
	KindMap:       "map",
	KindSet:       "set",
	KindFrozenSet: "frozenset",
}

// String returns a human-readable kind name for diagnostics.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MapEntry is a single key/value pair of a KindMap value. Keys may be any
// value kind; pair order carries no meaning on the wire.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value is one dynamically typed value. Exactly one payload field is
// meaningful, selected by Kind:
//
//	KindNull               no payload
//	KindBool               Bool
//	KindInt                I64, or Big when the magnitude exceeds a 64-bit word
//	KindFloat              F64
//	KindBytes, KindText    Bytes (text payloads hold UTF-8)
//	KindList, KindTuple,
//	KindSet, KindFrozenSet Items
//	KindMap                Entries
//
// Integers use one kind with hybrid storage: Big is nil whenever the value
// fits an int64, and the constructors keep that invariant. Comparison and
// encoding are numeric, so how an integer is stored never changes its
// meaning or its wire form.
type Value struct {
	Kind    Kind
	Bool    bool
	I64     int64
	Big     *big.Int
	F64     float64
	Bytes   []byte
	Items   []Value
	Entries []MapEntry
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int returns an integer value backed by an int64.
func Int(i int64) Value { return Value{Kind: KindInt, I64: i} }

// BigInt returns an integer value from b, copying it. Magnitudes that fit
// a 64-bit word are normalized to int64 storage.
func BigInt(b *big.Int) Value {
	if b == nil {
		return Int(0)
	}
	if b.IsInt64() {
		return Int(b.Int64())
	}
	return Value{Kind: KindInt, Big: new(big.Int).Set(b)}
}

// Uint returns an integer value from an unsigned word. Values past
// math.MaxInt64 land in big storage.
func Uint(u uint64) Value {
	return uintValue(u)
}

// Float returns a float64 value.
func Float(f float64) Value { return Value{Kind: KindFloat, F64: f} }

// BytesValue returns a byte-string value. The slice is retained, not
// copied; the caller must not mutate it afterwards.
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// Text returns a text value holding the UTF-8 bytes of s.
func Text(s string) Value { return Value{Kind: KindText, Bytes: []byte(s)} }

// List returns an ordered sequence value.
func List(items ...Value) Value { return Value{Kind: KindList, Items: items} }

// Tuple returns a fixed sequence value.
func Tuple(items ...Value) Value { return Value{Kind: KindTuple, Items: items} }

// Map returns a map value from key/value pairs.
func Map(entries ...MapEntry) Value { return Value{Kind: KindMap, Entries: entries} }

// Set returns a mutable set value. Element order carries no meaning;
// callers are responsible for element uniqueness.
func Set(items ...Value) Value { return Value{Kind: KindSet, Items: items} }

// FrozenSet returns an immutable set value.
func FrozenSet(items ...Value) Value { return Value{Kind: KindFrozenSet, Items: items} }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Int64 returns the integer payload when it fits an int64.
func (v Value) Int64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	if v.Big == nil {
		return v.I64, true
	}
	if v.Big.IsInt64() {
		return v.Big.Int64(), true
	}
	return 0, false
}

// BigInt returns the integer payload as a fresh big.Int, or nil when v is
// not an integer.
func (v Value) BigInt() *big.Int {
	if v.Kind != KindInt {
		return nil
	}
	if v.Big != nil {
		return new(big.Int).Set(v.Big)
	}
	return big.NewInt(v.I64)
}

// Text returns the text payload as a string. It returns "" for any other
// kind.
func (v Value) Text() string {
	if v.Kind != KindText {
		return ""
	}
	return string(v.Bytes)
}

// Len returns the element count of a composite value: items for sequences
// and sets, key/value pairs for maps. It returns 0 for scalars.
func (v Value) Len() int {
	switch v.Kind {
	case KindList, KindTuple, KindSet, KindFrozenSet:
		return len(v.Items)
	case KindMap:
		return len(v.Entries)
	default:
		return 0
	}
}

// Equal reports whether two values are semantically equal. Integers
// compare numerically regardless of storage. Floats compare by IEEE-754
// bit pattern, so negative zero differs from zero and a NaN equals an
// identical NaN. Lists and tuples compare elementwise in order; sets and
// maps compare as unordered collections. Kinds never cross-match: a list
// is not equal to a tuple with the same elements.
func (v Value) Equal(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == w.Bool
	case KindInt:
		return intEqual(v, w)
	case KindFloat:
		return math.Float64bits(v.F64) == math.Float64bits(w.F64)
	case KindBytes, KindText:
		return bytes.Equal(v.Bytes, w.Bytes)
	case KindList, KindTuple:
		if len(v.Items) != len(w.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(w.Items[i]) {
				return false
			}
		}
		return true
	case KindSet, KindFrozenSet:
		return itemsEqualUnordered(v.Items, w.Items)
	case KindMap:
		return entriesEqualUnordered(v.Entries, w.Entries)
	default:
		return false
	}
}

func intEqual(v, w Value) bool {
	switch {
	case v.Big == nil && w.Big == nil:
		return v.I64 == w.I64
	case v.Big != nil && w.Big != nil:
		return v.Big.Cmp(w.Big) == 0
	case v.Big != nil:
		return v.Big.IsInt64() && v.Big.Int64() == w.I64
	default:
		return w.Big.IsInt64() && w.Big.Int64() == v.I64
	}
}

// itemsEqualUnordered matches elements pairwise ignoring order. Repeated
// elements must appear the same number of times on both sides.
func itemsEqualUnordered(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
outer:
	for i := range a {
		for j := range b {
			if !matched[j] && a[i].Equal(b[j]) {
				matched[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func entriesEqualUnordered(a, b []MapEntry) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
outer:
	for i := range a {
		for j := range b {
			if !matched[j] && a[i].Key.Equal(b[j].Key) && a[i].Value.Equal(b[j].Value) {
				matched[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// tagOf classifies a value into its wire tag. Integer tags carry the
// value's own sign; word-sized and wider magnitudes use separate tags so
// bodies stay pure big-endian magnitudes. This is the only point where
// encoding can reject a value: a Kind outside the supported set reports
// ErrUnsupportedType with the kind's name.
func tagOf(v Value) (Tag, error) {
	switch v.Kind {
	case KindNull:
		return TagNull, nil
	case KindBool:
		if v.Bool {
			return TagTrue, nil
		}
		return TagFalse, nil
	case KindInt:
		if v.Big == nil || v.Big.IsInt64() {
			if v.intSign() < 0 {
				return TagNegInt, nil
			}
			return TagInt, nil
		}
		if v.Big.Sign() < 0 {
			return TagNegBigInt, nil
		}
		return TagBigInt, nil
	case KindFloat:
		return TagFloat64, nil
	case KindBytes:
		return TagBytes, nil
	case KindText:
		return TagText, nil
	case KindList:
		return TagList, nil
	case KindTuple:
		return TagTuple, nil
	case KindMap:
		return TagMap, nil
	case KindSet:
		return TagSet, nil
	case KindFrozenSet:
		return TagFrozenSet, nil
	default:
		return 0, unsupportedTypeError(v.Kind.String())
	}
}

func (v Value) intSign() int {
	if v.Big != nil {
		return v.Big.Sign()
	}
	switch {
	case v.I64 < 0:
		return -1
	case v.I64 > 0:
		return 1
	default:
		return 0
	}
}
