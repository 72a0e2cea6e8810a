package mobile

// BodyProvider supplies request body bytes on demand. It is implemented
// by the embedding application (Android/iOS or any other host) and
// called back from the native side while a request body is streamed.
//
// Only plain types appear in the signatures so the interface stays
// binding-friendly.
type BodyProvider interface {
	// ResetPosition rewinds the body to its start. Return false when
	// the body cannot be replayed.
	ResetPosition() bool

	// FillBody writes the next chunk into buf and returns the number of
	// bytes written. Zero is allowed.
	FillBody(buf []byte) int

	// Exhausted reports whether the body is complete. Checked after
	// every FillBody call.
	Exhausted() bool

	// ContentLength returns the total body length in bytes.
	ContentLength() int64
}
