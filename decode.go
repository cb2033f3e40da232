package brine

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"
)

// DefaultMaxDepth bounds composite nesting during decode. Every nested list,
// tuple, map or set level costs one stack frame, so a hostile input cannot
// recurse without bound.
const DefaultMaxDepth = 256

// Unmarshal decodes data as exactly one record. Leftover bytes after that
// record fail with ErrTrailingData.
func Unmarshal(data []byte) (Value, error) {
	d := decodeState{cur: cursor{buf: data}, maxDepth: DefaultMaxDepth}
	v, err := d.record(0)
	if err != nil {
		return Value{}, err
	}
	if n := d.cur.remaining(); n != 0 {
		return Value{}, fmt.Errorf("%w: %d bytes after record", ErrTrailingData, n)
	}
	return v, nil
}

// DecodeValue decodes the first record in data and returns the number of
// bytes it occupied, so callers can walk concatenated records.
func DecodeValue(data []byte) (Value, int, error) {
	d := decodeState{cur: cursor{buf: data}, maxDepth: DefaultMaxDepth}
	v, err := d.record(0)
	if err != nil {
		return Value{}, 0, err
	}
	return v, d.cur.off, nil
}

type decodeState struct {
	cur      cursor
	maxDepth int
}

func (d *decodeState) record(depth int) (Value, error) {
	h, err := readHeader(&d.cur)
	if err != nil {
		return Value{}, err
	}
	if h.Length > uint64(d.cur.remaining()) {
		return Value{}, fmt.Errorf("%w: %s body declares %d bytes, %d remain",
			ErrTruncatedBody, h.Tag, h.Length, d.cur.remaining())
	}
	return d.body(h, depth)
}

// body decodes the h.Length body bytes that follow a header. The caller has
// already checked that the cursor holds at least that many bytes.
func (d *decodeState) body(h Header, depth int) (Value, error) {
	switch h.Tag {
	case TagNull:
		if h.Length != 0 {
			return Value{}, emptyBodyError(h)
		}
		return Null(), nil
	case TagTrue:
		if h.Length != 0 {
			return Value{}, emptyBodyError(h)
		}
		return Bool(true), nil
	case TagFalse:
		if h.Length != 0 {
			return Value{}, emptyBodyError(h)
		}
		return Bool(false), nil
	case TagInt, TagNegInt, TagBigInt, TagNegBigInt:
		b, _ := d.cur.take(int(h.Length))
		return decodeInt(h.Tag, b), nil
	case TagFloat64:
		if h.Length < 8 {
			return Value{}, fmt.Errorf("%w: float64 body is %d bytes, need 8", ErrTruncatedBody, h.Length)
		}
		if h.Length > 8 {
			return Value{}, fmt.Errorf("%w: float64 body is %d bytes, need 8", ErrBodyOverrun, h.Length)
		}
		b, _ := d.cur.take(8)
		return Float(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case TagBytes:
		b, _ := d.cur.take(int(h.Length))
		return BytesValue(append([]byte(nil), b...)), nil
	case TagText:
		b, _ := d.cur.take(int(h.Length))
		if !utf8.Valid(b) {
			return Value{}, fmt.Errorf("%w: text body is not valid UTF-8", ErrInvalidEncoding)
		}
		return Value{Kind: KindText, Bytes: append([]byte(nil), b...)}, nil
	case TagList, TagTuple, TagSet, TagFrozenSet:
		return d.sequenceBody(h, depth)
	case TagMap:
		return d.mapBody(h, depth)
	}
	return Value{}, fmt.Errorf("%w 0x%02x", ErrUnknownTag, byte(h.Tag))
}

// sequenceBody decodes list, tuple, set and frozenset bodies: child records
// back to back until the byte budget is spent. Children land in pooled
// scratch first because the element count is unknown until the budget runs
// out.
func (d *decodeState) sequenceBody(h Header, depth int) (Value, error) {
	if depth >= d.maxDepth {
		return Value{}, fmt.Errorf("%w (%d)", ErrMaxDepth, d.maxDepth)
	}
	var kind Kind
	switch h.Tag {
	case TagList:
		kind = KindList
	case TagTuple:
		kind = KindTuple
	case TagSet:
		kind = KindSet
	default:
		kind = KindFrozenSet
	}
	budget := int(h.Length)
	start := d.cur.off
	scratch := getValueScratch()
	defer func() { putValueScratch(scratch) }()
	for d.cur.off-start < budget {
		if left := budget - (d.cur.off - start); left < HeaderSize {
			return Value{}, fmt.Errorf("%w: %d residual bytes in %s body cannot form a record",
				ErrBodyUnderrun, left, h.Tag)
		}
		child, err := d.record(depth + 1)
		if err != nil {
			return Value{}, err
		}
		if d.cur.off-start > budget {
			return Value{}, fmt.Errorf("%w: child record crosses %s body end", ErrBodyOverrun, h.Tag)
		}
		scratch = append(scratch, child)
	}
	items := make([]Value, len(scratch))
	copy(items, scratch)
	return Value{Kind: kind, Items: items}, nil
}

// mapBody decodes alternating key and value records. A key whose value
// record cannot fit in the remaining budget is a dangling key.
func (d *decodeState) mapBody(h Header, depth int) (Value, error) {
	if depth >= d.maxDepth {
		return Value{}, fmt.Errorf("%w (%d)", ErrMaxDepth, d.maxDepth)
	}
	budget := int(h.Length)
	start := d.cur.off
	scratch := getEntryScratch()
	defer func() { putEntryScratch(scratch) }()
	for d.cur.off-start < budget {
		if left := budget - (d.cur.off - start); left < HeaderSize {
			return Value{}, fmt.Errorf("%w: %d residual bytes in map body cannot form a record",
				ErrBodyUnderrun, left)
		}
		key, err := d.record(depth + 1)
		if err != nil {
			return Value{}, err
		}
		if d.cur.off-start > budget {
			return Value{}, fmt.Errorf("%w: child record crosses map body end", ErrBodyOverrun)
		}
		if left := budget - (d.cur.off - start); left < HeaderSize {
			return Value{}, fmt.Errorf("%w: map key without value", ErrBodyUnderrun)
		}
		val, err := d.record(depth + 1)
		if err != nil {
			return Value{}, err
		}
		if d.cur.off-start > budget {
			return Value{}, fmt.Errorf("%w: child record crosses map body end", ErrBodyOverrun)
		}
		scratch = append(scratch, MapEntry{Key: key, Value: val})
	}
	entries := make([]MapEntry, len(scratch))
	copy(entries, scratch)
	return Value{Kind: KindMap, Entries: entries}, nil
}

func emptyBodyError(h Header) error {
	return fmt.Errorf("%w: %s body must be empty, declared %d bytes", ErrBodyOverrun, h.Tag, h.Length)
}

// decodeInt rebuilds an integer from its sign tag and big-endian magnitude
// bytes. Magnitudes wider than the small tags normally carry still decode;
// the value simply lands in big storage.
func decodeInt(tag Tag, body []byte) Value {
	neg := tag == TagNegInt || tag == TagNegBigInt
	if len(body) <= 8 {
		var mag uint64
		for _, b := range body {
			mag = mag<<8 | uint64(b)
		}
		if !neg && mag <= math.MaxInt64 {
			return Int(int64(mag))
		}
		if neg && mag <= 1<<63 {
			if mag == 1<<63 {
				return Int(math.MinInt64)
			}
			return Int(-int64(mag))
		}
	}
	bi := new(big.Int).SetBytes(body)
	if neg {
		bi.Neg(bi)
	}
	if bi.IsInt64() {
		return Int(bi.Int64())
	}
	return Value{Kind: KindInt, Big: bi}
}
