package brine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// DefaultMaxRecordBytes caps the body size a stream Decoder will buffer for
// a single record. A hostile 8-byte length field should not be able to force
// a giant allocation.
const DefaultMaxRecordBytes = 1 << 30

// An Encoder writes records to a stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// Encode writes one record for v.
func (e *Encoder) Encode(v Value) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := encodeValue(buf, v); err != nil {
		return err
	}
	_, err := e.w.Write(buf.Bytes())
	return err
}

// A Decoder reads records from a stream. Records are framed by their own
// headers, so no separator bytes exist between them.
type Decoder struct {
	r              io.Reader
	maxDepth       int
	maxRecordBytes uint64
	body           []byte
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, maxDepth: DefaultMaxDepth, maxRecordBytes: DefaultMaxRecordBytes}
}

// SetMaxDepth overrides DefaultMaxDepth for records read by this decoder.
func (d *Decoder) SetMaxDepth(n int) { d.maxDepth = n }

// SetMaxRecordBytes overrides DefaultMaxRecordBytes. A header declaring a
// larger body fails with ErrRecordTooLarge before any body byte is read.
func (d *Decoder) SetMaxRecordBytes(n uint64) { d.maxRecordBytes = n }

// Decode reads the next record. It returns io.EOF when the stream ends
// cleanly at a record boundary; a stream cut mid-record fails with
// ErrMalformedHeader or ErrTruncatedBody instead.
func (d *Decoder) Decode() (Value, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Value{}, fmt.Errorf("%w: stream ended mid-header", ErrMalformedHeader)
		}
		return Value{}, err
	}
	tag := Tag(hdr[0])
	if !tag.Valid() {
		return Value{}, fmt.Errorf("%w 0x%02x", ErrUnknownTag, hdr[0])
	}
	length := binary.BigEndian.Uint64(hdr[1:])
	if length > d.maxRecordBytes {
		return Value{}, fmt.Errorf("%w: %d bytes declared, limit %d", ErrRecordTooLarge, length, d.maxRecordBytes)
	}
	n := int(length)
	if cap(d.body) < n {
		d.body = make([]byte, n)
	}
	buf := d.body[:n]
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Value{}, fmt.Errorf("%w: stream ended mid-body", ErrTruncatedBody)
		}
		return Value{}, err
	}
	// Decoded bytes and text are copied out of buf, so reusing it across
	// calls is safe.
	ds := decodeState{cur: cursor{buf: buf}, maxDepth: d.maxDepth}
	return ds.body(Header{Tag: tag, Length: length}, 0)
}
