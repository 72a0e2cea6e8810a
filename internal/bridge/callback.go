package bridge

import "httpbridge-core/internal/wire"

// BodyCallback is the capability surface a foreign body source exposes
// to the native side. Implementations run inside the foreign runtime;
// the adapter only talks to them through an acquired Env.
type BodyCallback interface {
	// ResetPosition rewinds the source to the start of the body.
	// Returns false when the source cannot rewind.
	ResetPosition() bool

	// SendOutgoingBody writes the next chunk of body bytes into win.
	// The window's position marker tells the native side how much was
	// written. Returns true when the body is complete.
	SendOutgoingBody(win *wire.Window) bool

	// GetLength returns the total body length in bytes.
	GetLength() int64
}
