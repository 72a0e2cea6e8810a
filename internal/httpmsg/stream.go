package httpmsg

import "httpbridge-core/internal/wire"

// SeekBasis selects the reference point for a stream seek.
type SeekBasis int

const (
	// SeekBegin seeks relative to the start of the body.
	SeekBegin SeekBasis = iota
	// SeekEnd seeks relative to the end of the body.
	SeekEnd
)

// StreamStatus is a snapshot of a body stream's flags.
type StreamStatus struct {
	EndOfStream bool
	Valid       bool
}

// BodyStream is the input-stream contract the native engine pulls
// request bodies through. Implementations are refcounted; the owning
// message holds one reference and drops it when the message is
// released.
//
// The engine never issues concurrent calls on one stream instance.
type BodyStream interface {
	// Seek repositions the stream. Implementations may support only a
	// rewind to the start.
	Seek(offset int64, basis SeekBasis) error

	// ReadInto appends body bytes into the spare capacity of dst. A nil
	// return with no bytes appended and EndOfStream set means the body
	// is exhausted.
	ReadInto(dst *wire.Buffer) error

	// Status reports the current flags. It never fails.
	Status() StreamStatus

	// Length returns the total body length when the source can provide
	// one.
	Length() (int64, error)

	// Retain acquires an additional reference.
	Retain() BodyStream

	// Release drops one reference, destroying the stream at zero.
	Release()
}
