package httpmsg

import "httpbridge-core/internal/errors"

// Header is one name/value pair. Names and values are raw byte strings;
// no uniqueness or casing rules are enforced at this layer.
type Header struct {
	Name  []byte
	Value []byte
}

// HeaderList is an ordered header collection. Insertion order is
// preserved and is significant for encoding.
type HeaderList struct {
	entries []Header
}

// NewHeaderList creates an empty header list.
func NewHeaderList() *HeaderList {
	return &HeaderList{}
}

// Add appends a header, copying both byte strings.
func (h *HeaderList) Add(name, value []byte) {
	h.entries = append(h.entries, Header{
		Name:  append([]byte(nil), name...),
		Value: append([]byte(nil), value...),
	})
}

// Len returns the number of headers.
func (h *HeaderList) Len() int {
	return len(h.entries)
}

// At returns the header at index i.
func (h *HeaderList) At(i int) (Header, error) {
	if i < 0 || i >= len(h.entries) {
		return Header{}, errors.Wrapf(errors.ErrInvalidArgument, "header index %d out of range", i)
	}
	return h.entries[i], nil
}

// Clear removes all headers, keeping capacity.
func (h *HeaderList) Clear() {
	h.entries = h.entries[:0]
}
