package wire

import "io"

// Window is a fixed-capacity writable view over a destination buffer,
// handed to foreign code so it can fill body bytes. The owner reads back
// how much was written through Position without inspecting the
// contents, mirroring a direct byte buffer with a position marker.
type Window struct {
	buf []byte
	pos int
}

// NewWindow wraps buf as a writable window starting at position zero.
func NewWindow(buf []byte) *Window {
	return &Window{buf: buf}
}

// Write copies p into the window at the current position. When p does
// not fit, the window is filled and io.ErrShortWrite is returned along
// with the number of bytes taken.
func (w *Window) Write(p []byte) (int, error) {
	n := copy(w.buf[w.pos:], p)
	w.pos += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Position returns the number of bytes written so far.
func (w *Window) Position() int {
	return w.pos
}

// Remaining returns the writable bytes left.
func (w *Window) Remaining() int {
	return len(w.buf) - w.pos
}

// Capacity returns the total size of the window.
func (w *Window) Capacity() int {
	return len(w.buf)
}
