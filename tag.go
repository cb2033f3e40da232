// Package brine implements BRINE, a self-describing binary encoding for
// dynamically typed values: integers of arbitrary magnitude, float64, byte
// strings, text, ordered and fixed sequences, maps, mutable and frozen
// sets, booleans, and null.
//
// Every encoded value is a record: a fixed 9-byte header (1 tag byte plus
// an 8-byte big-endian body length) followed by the body. Composite bodies
// are concatenations of complete child records; the header carries the
// total body byte length, never an element count, so a decoder consumes
// child records until the declared budget is exactly spent.
package brine

// Tag is the single-byte discriminator at the start of every record.
//
// 0x00 is deliberately unassigned so a zero-filled buffer never parses as
// a record. Integer tags carry the sign so that bodies stay pure
// big-endian magnitudes. Tag values are wire constants; changing them
// breaks compatibility with existing encoded data.
type Tag byte

const (
	// TagInt is a non-negative integer whose magnitude fits a 64-bit word.
	TagInt Tag = 0x01
	// TagNegInt is a negative integer whose magnitude fits a 64-bit word.
	TagNegInt Tag = 0x02
	// TagBigInt is a non-negative integer wider than a 64-bit word.
	TagBigInt Tag = 0x03
	// TagNegBigInt is a negative integer wider than a 64-bit word.
	TagNegBigInt Tag = 0x04
	// TagFloat64 is an IEEE-754 binary64, 8 body bytes, big-endian.
	TagFloat64 Tag = 0x05
	// TagBytes is a raw byte string, body verbatim.
	TagBytes Tag = 0x06
	// TagText is UTF-8 text.
	TagText Tag = 0x07
	// TagList is an ordered sequence of child records.
	TagList Tag = 0x08
	// TagTuple is a fixed sequence of child records.
	TagTuple Tag = 0x09
	// TagMap is alternating key and value child records.
	TagMap Tag = 0x0A
	// TagSet is an unordered collection of child records.
	TagSet Tag = 0x0B
	// TagFrozenSet is an immutable unordered collection of child records.
	TagFrozenSet Tag = 0x0C
	// TagTrue is boolean true, empty body.
	TagTrue Tag = 0x0D
	// TagFalse is boolean false, empty body.
	TagFalse Tag = 0x0E
	// TagNull is the null value, empty body.
	TagNull Tag = 0x0F
)

const tagMax = TagNull

// Valid reports whether t is one of the assigned tag values.
func (t Tag) Valid() bool {
	return t >= TagInt && t <= tagMax
}

var tagNames = [tagMax + 1]string{
	TagInt:       "int",
	TagNegInt:    "-int",
	TagBigInt:    "bigint",
	TagNegBigInt: "-bigint",
	TagFloat64:   "float64",
	TagBytes:     "bytes",
	TagText:      "text",
	TagList:      "list",
	TagTuple:     "tuple",
	TagMap:       "map",
	TagSet:       "set",
	TagFrozenSet: "frozenset",
	TagTrue:      "true",
	TagFalse:     "false",
	TagNull:      "null",
}

// String returns a human-readable tag name for diagnostics.
func (t Tag) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return "unknown"
}

// Composite reports whether the tag's body is a concatenation of child
// records. Composite records are walked by reading child headers; scalar
// bodies are consumed whole.
func (t Tag) Composite() bool {
	switch t {
	case TagList, TagTuple, TagMap, TagSet, TagFrozenSet:
		return true
	default:
		return false
	}
}
