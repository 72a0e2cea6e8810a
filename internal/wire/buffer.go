// Package wire provides the byte-level primitives for the marshalling
// protocol: a growable write buffer, a bounds-checked read cursor, and a
// fixed-capacity window handed to foreign code.
package wire

import (
	"encoding/binary"

	"httpbridge-core/internal/errors"
)

// DefaultLimit caps buffer growth. A hostile length prefix must not be
// able to drive an allocation of arbitrary size.
const DefaultLimit = 64 << 20

// Buffer is a growable byte sequence with bounds-checked relative
// writes. The written region is Bytes(); the spare capacity between
// Len() and Cap() can be exposed to foreign code via Spare().
type Buffer struct {
	data  []byte
	limit int
}

// NewBuffer creates a buffer with the given initial capacity and the
// default growth limit.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{
		data:  make([]byte, 0, capacity),
		limit: DefaultLimit,
	}
}

// SetLimit overrides the growth limit. Values below the current length
// are ignored.
func (b *Buffer) SetLimit(n int) {
	if n >= len(b.data) {
		b.limit = n
	}
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the total capacity.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Bytes returns the written region. The slice is only valid until the
// next write or Reset.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Spare returns the unwritten capacity as a writable slice. Bytes placed
// there become part of the buffer after a matching Advance.
func (b *Buffer) Spare() []byte {
	return b.data[len(b.data):cap(b.data)]
}

// Reserve grows the buffer so that at least n more bytes can be written.
// Fails with ErrAllocation when growth would exceed the limit.
func (b *Buffer) Reserve(n int) error {
	if n < 0 {
		return errors.Wrap(errors.ErrInvalidArgument, "negative reservation")
	}
	need := len(b.data) + n
	if need > b.limit {
		return errors.Wrapf(errors.ErrAllocation, "reserve %d bytes exceeds limit %d", n, b.limit)
	}
	if need <= cap(b.data) {
		return nil
	}
	newCap := cap(b.data) * 2
	if newCap < need {
		newCap = need
	}
	if newCap > b.limit {
		newCap = b.limit
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// WriteBE32 appends a 4-byte big-endian unsigned integer.
func (b *Buffer) WriteBE32(v uint32) error {
	if err := b.Reserve(4); err != nil {
		return err
	}
	n := len(b.data)
	b.data = b.data[:n+4]
	binary.BigEndian.PutUint32(b.data[n:], v)
	return nil
}

// Write appends p in full.
func (b *Buffer) Write(p []byte) error {
	if err := b.Reserve(len(p)); err != nil {
		return err
	}
	b.data = append(b.data, p...)
	return nil
}

// Advance extends the written region by n bytes previously placed into
// Spare.
func (b *Buffer) Advance(n int) error {
	if n < 0 || len(b.data)+n > cap(b.data) {
		return errors.Wrapf(errors.ErrInvalidArgument, "advance %d outside capacity", n)
	}
	b.data = b.data[: len(b.data)+n]
	return nil
}

// Reset drops the written region, keeping capacity for reuse.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}
