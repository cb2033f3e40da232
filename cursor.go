package brine

// cursor is a bounds-checked read position over a byte buffer. Every read
// goes through take, which refuses to advance past the end, so decode code
// never indexes the buffer directly.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

// take returns the next n bytes and advances, or reports false without
// moving when fewer than n remain. The returned slice windows the cursor's
// buffer; callers copy when they keep it.
func (c *cursor) take(n int) ([]byte, bool) {
	if n < 0 || c.remaining() < n {
		return nil, false
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, true
}
