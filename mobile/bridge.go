// Package mobile is the embedding-runtime binding. It exposes the
// request marshalling bridge through plain types and int64 request ids
// so it can be consumed from a mobile or other foreign host.
package mobile

import (
	"sync"

	"httpbridge-core/internal/bridge"
	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/wire"
)

// RequestBridge decodes marshalled blobs into native request objects,
// keeps them addressable by id, and encodes them back.
type RequestBridge struct {
	mu       sync.Mutex
	rt       *bridge.LocalRuntime
	builder  *bridge.RequestBuilder
	nextID   int64
	requests map[int64]*httpmsg.Message
}

// NewRequestBridge creates a bridge with its own in-process runtime.
func NewRequestBridge() *RequestBridge {
	rt := bridge.NewLocalRuntime()
	return &RequestBridge{
		rt:       rt,
		builder:  bridge.NewRequestBuilder(rt),
		requests: make(map[int64]*httpmsg.Message),
	}
}

// DecodeRequest decodes a marshalled request blob into a native request
// and returns its id. provider may be nil for bodyless requests; when
// given, the request's body stream pulls from it on demand.
func (rb *RequestBridge) DecodeRequest(blob []byte, provider BodyProvider) (int64, error) {
	handle := bridge.NilHandle
	if provider != nil {
		h, err := rb.rt.Register(&providerCallback{provider: provider})
		if err != nil {
			return 0, err
		}
		handle = h
		// The adapter retains its own reference; drop the registration
		// one once decode is done, success or not.
		defer rb.releaseHandle(h)
	}

	msg, err := rb.builder.DecodeRequest(blob, handle)
	if err != nil {
		return 0, err
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.nextID++
	rb.requests[rb.nextID] = msg
	return rb.nextID, nil
}

// ApplyChanges re-decodes a blob into an existing request, replacing
// method, path and headers. The body stream is left untouched.
func (rb *RequestBridge) ApplyChanges(id int64, blob []byte) error {
	msg, err := rb.lookup(id)
	if err != nil {
		return err
	}
	return rb.builder.ApplyToRequest(blob, bridge.NilHandle, msg)
}

// EncodeRequest marshals the request back into a blob.
func (rb *RequestBridge) EncodeRequest(id int64) ([]byte, error) {
	msg, err := rb.lookup(id)
	if err != nil {
		return nil, err
	}
	val, err := rb.builder.EncodeRequest(msg, bridge.NilHandle)
	if err != nil {
		return nil, err
	}
	foreign, ok := val.(*bridge.ForeignRequest)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "unexpected foreign request value")
	}
	return foreign.Blob, nil
}

// RequestVersion returns the numeric protocol family tag.
func (rb *RequestBridge) RequestVersion(id int64) (int, error) {
	msg, err := rb.lookup(id)
	if err != nil {
		return 0, err
	}
	return int(msg.Version()), nil
}

// RequestMethod returns the request method, empty for multiplexed
// requests.
func (rb *RequestBridge) RequestMethod(id int64) (string, error) {
	msg, err := rb.lookup(id)
	if err != nil {
		return "", err
	}
	return string(msg.Method()), nil
}

// RequestPath returns the request path, empty for multiplexed requests.
func (rb *RequestBridge) RequestPath(id int64) (string, error) {
	msg, err := rb.lookup(id)
	if err != nil {
		return "", err
	}
	return string(msg.Path()), nil
}

// HeaderCount returns the number of headers.
func (rb *RequestBridge) HeaderCount(id int64) (int, error) {
	msg, err := rb.lookup(id)
	if err != nil {
		return 0, err
	}
	return msg.Headers().Len(), nil
}

// HeaderNameAt returns the name of the header at index i.
func (rb *RequestBridge) HeaderNameAt(id int64, i int) (string, error) {
	h, err := rb.headerAt(id, i)
	if err != nil {
		return "", err
	}
	return string(h.Name), nil
}

// HeaderValueAt returns the value of the header at index i.
func (rb *RequestBridge) HeaderValueAt(id int64, i int) (string, error) {
	h, err := rb.headerAt(id, i)
	if err != nil {
		return "", err
	}
	return string(h.Value), nil
}

// ReadBody pulls the next body chunk into buf and returns the number of
// bytes written. Zero with no error means end of stream.
func (rb *RequestBridge) ReadBody(id int64, buf []byte) (int, error) {
	stream, err := rb.bodyStream(id)
	if err != nil {
		return 0, err
	}
	dst := wire.NewBuffer(len(buf))
	if err := stream.ReadInto(dst); err != nil {
		return 0, err
	}
	return copy(buf, dst.Bytes()), nil
}

// RewindBody seeks the body stream back to its start.
func (rb *RequestBridge) RewindBody(id int64) error {
	stream, err := rb.bodyStream(id)
	if err != nil {
		return err
	}
	return stream.Seek(0, httpmsg.SeekBegin)
}

// BodyLength returns the total body length reported by the provider.
func (rb *RequestBridge) BodyLength(id int64) (int64, error) {
	stream, err := rb.bodyStream(id)
	if err != nil {
		return 0, err
	}
	return stream.Length()
}

// BodyDone reports whether the body stream reached end of stream.
func (rb *RequestBridge) BodyDone(id int64) (bool, error) {
	stream, err := rb.bodyStream(id)
	if err != nil {
		return false, err
	}
	return stream.Status().EndOfStream, nil
}

// ReleaseRequest drops the bridge's reference to a request.
func (rb *RequestBridge) ReleaseRequest(id int64) {
	rb.mu.Lock()
	msg, ok := rb.requests[id]
	if ok {
		delete(rb.requests, id)
	}
	rb.mu.Unlock()
	if ok {
		msg.Release()
	}
}

// Shutdown releases every held request and stops the runtime. Body
// stream teardown after this point skips the provider release, which is
// the intended best-effort behavior.
func (rb *RequestBridge) Shutdown() {
	rb.mu.Lock()
	requests := rb.requests
	rb.requests = make(map[int64]*httpmsg.Message)
	rb.mu.Unlock()

	for _, msg := range requests {
		msg.Release()
	}
	rb.rt.Shutdown()
}

func (rb *RequestBridge) lookup(id int64) (*httpmsg.Message, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	msg, ok := rb.requests[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidHandle, "unknown request id %d", id)
	}
	return msg, nil
}

func (rb *RequestBridge) headerAt(id int64, i int) (httpmsg.Header, error) {
	msg, err := rb.lookup(id)
	if err != nil {
		return httpmsg.Header{}, err
	}
	return msg.Headers().At(i)
}

func (rb *RequestBridge) bodyStream(id int64) (httpmsg.BodyStream, error) {
	msg, err := rb.lookup(id)
	if err != nil {
		return nil, err
	}
	stream := msg.BodyStream()
	if stream == nil {
		return nil, errors.Wrapf(errors.ErrInvalidBodyStream, "request %d has no body stream", id)
	}
	return stream, nil
}

func (rb *RequestBridge) releaseHandle(h bridge.Handle) {
	env, err := rb.rt.Acquire()
	if err != nil {
		return
	}
	env.ReleaseHandle(h)
	rb.rt.Release(env)
}

// providerCallback adapts a BodyProvider to the native callback
// contract.
type providerCallback struct {
	provider BodyProvider
}

func (c *providerCallback) ResetPosition() bool {
	return c.provider.ResetPosition()
}

func (c *providerCallback) SendOutgoingBody(win *wire.Window) bool {
	chunk := make([]byte, win.Remaining())
	n := c.provider.FillBody(chunk)
	if n < 0 {
		n = 0
	}
	if n > len(chunk) {
		n = len(chunk)
	}
	_, _ = win.Write(chunk[:n])
	return c.provider.Exhausted()
}

func (c *providerCallback) GetLength() int64 {
	return c.provider.ContentLength()
}
