package httpmsg

import (
	"httpbridge-core/internal/core/dispose"
	"httpbridge-core/internal/errors"
)

// Message is the native, mutable request object: protocol version fixed
// at construction, method, path, header list and an optional body
// stream. A message is owned exclusively by its creator until handed to
// the engine; sharing goes through Retain/Release.
type Message struct {
	refs    *dispose.RefCount
	version Version
	method  []byte
	path    []byte
	headers *HeaderList
	body    BodyStream
}

// NewRequest creates an empty HTTP/1.x-family request message.
func NewRequest() *Message {
	return newMessage(VersionHTTP1)
}

// NewHTTP2Request creates an empty multiplexed-family request message.
func NewHTTP2Request() *Message {
	return newMessage(VersionHTTP2)
}

func newMessage(v Version) *Message {
	m := &Message{
		version: v,
		headers: NewHeaderList(),
	}
	m.refs = dispose.NewRefCount(m.destroy)
	return m
}

func (m *Message) destroy() {
	if m.body != nil {
		m.body.Release()
		m.body = nil
	}
}

// Retain acquires an additional reference to the message.
func (m *Message) Retain() *Message {
	m.refs.Ref()
	return m
}

// Release drops one reference. At zero the body stream reference is
// dropped as well.
func (m *Message) Release() {
	m.refs.Unref()
}

// Version returns the protocol family fixed at construction.
func (m *Message) Version() Version {
	return m.version
}

// SetMethod validates and stores the request method. HTTP method names
// are tokens; any non-token byte is rejected. Empty is allowed and
// means "not set".
func (m *Message) SetMethod(method []byte) error {
	for _, c := range method {
		if !isTokenChar(c) {
			return errors.Wrapf(errors.ErrInvalidArgument, "invalid method byte 0x%02x", c)
		}
	}
	m.method = append(m.method[:0], method...)
	return nil
}

// Method returns the request method, possibly empty.
func (m *Message) Method() []byte {
	return m.method
}

// SetPath validates and stores the request path. Whitespace and control
// bytes cannot appear in a request target.
func (m *Message) SetPath(path []byte) error {
	for _, c := range path {
		if c <= ' ' || c == 0x7f {
			return errors.Wrapf(errors.ErrInvalidArgument, "invalid path byte 0x%02x", c)
		}
	}
	m.path = append(m.path[:0], path...)
	return nil
}

// Path returns the request path, possibly empty.
func (m *Message) Path() []byte {
	return m.path
}

// Headers returns the mutable header list.
func (m *Message) Headers() *HeaderList {
	return m.headers
}

// SetBodyStream attaches a body source, retaining it and dropping the
// reference to any previously attached stream. Passing nil detaches.
func (m *Message) SetBodyStream(s BodyStream) {
	if m.body != nil {
		m.body.Release()
	}
	if s != nil {
		s.Retain()
	}
	m.body = s
}

// BodyStream returns the attached body source, or nil.
func (m *Message) BodyStream() BodyStream {
	return m.body
}

// isTokenChar reports whether c may appear in an HTTP token (RFC 7230
// tchar).
func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
