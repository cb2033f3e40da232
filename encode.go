package brine

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// Marshal encodes v as a single self-describing record: a 9-byte header (tag
// byte plus big-endian body length) followed by the body. Composite bodies
// are the concatenation of their child records, so the header length always
// counts bytes, never elements.
func Marshal(v Value) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := encodeValue(buf, v); err != nil {
		return nil, err
	}
	out := append([]byte{}, buf.Bytes()...)
	return out, nil
}

// MarshalAppend appends the encoding of v to dst and returns the extended
// slice. On error dst is returned unchanged.
func MarshalAppend(dst []byte, v Value) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := encodeValue(buf, v); err != nil {
		return dst, err
	}
	return append(dst, buf.Bytes()...), nil
}

// encodeValue appends one record for v to buf. The header window is reserved
// before the body is written and patched afterwards, so composite lengths
// never need a second measuring pass.
func encodeValue(buf *bytebufferpool.ByteBuffer, v Value) error {
	tag, err := tagOf(v)
	if err != nil {
		return err
	}
	start := len(buf.Bytes())
	var reserve [HeaderSize]byte
	buf.Write(reserve[:])

	switch tag {
	case TagNull, TagTrue, TagFalse:
		// empty body
	case TagInt, TagNegInt, TagBigInt, TagNegBigInt:
		writeMagnitude(buf, v)
	case TagFloat64:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v.F64))
		buf.Write(tmp[:])
	case TagBytes:
		buf.Write(v.Bytes)
	case TagText:
		if !utf8.Valid(v.Bytes) {
			return fmt.Errorf("%w: text payload is not valid UTF-8", ErrInvalidEncoding)
		}
		buf.Write(v.Bytes)
	case TagList, TagTuple, TagSet, TagFrozenSet:
		for i := range v.Items {
			if err := encodeValue(buf, v.Items[i]); err != nil {
				return err
			}
		}
	case TagMap:
		for i := range v.Entries {
			if err := encodeValue(buf, v.Entries[i].Key); err != nil {
				return err
			}
			if err := encodeValue(buf, v.Entries[i].Value); err != nil {
				return err
			}
		}
	}

	record := buf.Bytes()[start:]
	putHeader(record, tag, uint64(len(record)-HeaderSize))
	return nil
}

// writeMagnitude appends the integer body: minimal-width big-endian magnitude
// bytes, empty for zero. The sign travels in the tag, not the body.
func writeMagnitude(buf *bytebufferpool.ByteBuffer, v Value) {
	if v.Big != nil {
		buf.Write(v.Big.Bytes())
		return
	}
	if v.I64 == 0 {
		return
	}
	var mag uint64
	if v.I64 < 0 {
		// Negating through uint64 keeps math.MinInt64 exact.
		mag = -uint64(v.I64)
	} else {
		mag = uint64(v.I64)
	}
	var tmp [8]byte
	n := 0
	for shift := 56; shift >= 0; shift -= 8 {
		b := byte(mag >> uint(shift))
		if n == 0 && b == 0 {
			continue
		}
		tmp[n] = b
		n++
	}
	buf.Write(tmp[:n])
}
