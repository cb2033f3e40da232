package brine

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed width of a record header: one tag byte followed
// by an 8-byte big-endian body length.
const HeaderSize = 9

// Header is the decoded form of a record header. Length counts body bytes,
// never element count.
type Header struct {
	Tag    Tag
	Length uint64
}

// ReadHeader decodes the 9-byte header at the start of data without touching
// the body. It is the cheap way to walk record boundaries in an encoded
// buffer: seek HeaderSize+Length forward and read again.
func ReadHeader(data []byte) (Header, error) {
	c := cursor{buf: data}
	return readHeader(&c)
}

func readHeader(c *cursor) (Header, error) {
	b, ok := c.take(HeaderSize)
	if !ok {
		return Header{}, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedHeader, HeaderSize, c.remaining())
	}
	tag := Tag(b[0])
	if !tag.Valid() {
		return Header{}, fmt.Errorf("%w 0x%02x", ErrUnknownTag, b[0])
	}
	return Header{Tag: tag, Length: binary.BigEndian.Uint64(b[1:HeaderSize])}, nil
}

// putHeader writes a header into b, which must be at least HeaderSize bytes.
// The encoder reserves the window up front and patches it here once the body
// length is known.
func putHeader(b []byte, tag Tag, length uint64) {
	b[0] = byte(tag)
	binary.BigEndian.PutUint64(b[1:HeaderSize], length)
}
