package wire

import (
	"encoding/binary"

	"httpbridge-core/internal/errors"
)

// Cursor reads through a marshalled blob. Every read is bounds-checked;
// running past the end of the data fails the operation without moving
// the cursor, so a decode is always all-or-nothing for its caller.
type Cursor struct {
	data []byte
}

// NewCursor wraps data for reading. The cursor does not copy.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data)
}

// Empty reports whether the cursor is fully consumed.
func (c *Cursor) Empty() bool {
	return len(c.data) == 0
}

// ReadBE32 consumes a 4-byte big-endian unsigned integer.
func (c *Cursor) ReadBE32() (uint32, error) {
	if len(c.data) < 4 {
		return 0, errors.Wrapf(errors.ErrInvalidArgument, "need 4 bytes, have %d", len(c.data))
	}
	v := binary.BigEndian.Uint32(c.data)
	c.data = c.data[4:]
	return v, nil
}

// Advance consumes n bytes and returns them. The returned slice aliases
// the underlying data.
func (c *Cursor) Advance(n int) ([]byte, error) {
	if n < 0 || n > len(c.data) {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "advance %d bytes, have %d", n, len(c.data))
	}
	out := c.data[:n]
	c.data = c.data[n:]
	return out, nil
}
