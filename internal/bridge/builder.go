package bridge

import (
	"httpbridge-core/internal/core/log"
	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/marshal"
	"httpbridge-core/internal/wire"
)

// RequestBuilder marshals whole requests across the boundary in both
// directions: foreign blob to native message and native message to
// foreign request value.
type RequestBuilder struct {
	rt     Runtime
	logger log.Logger
}

// NewRequestBuilder creates a builder bound to the foreign runtime.
func NewRequestBuilder(rt Runtime) *RequestBuilder {
	return &RequestBuilder{
		rt:     rt,
		logger: log.Default().WithField("component", "request_builder"),
	}
}

// DecodeRequest constructs a native message from a marshalled blob and
// an optional body handle. The decoded version selects the message's
// protocol family; a mismatch between the decoded version and the
// constructed target is a hard decode error. On any failure the partly
// constructed message is released before returning.
//
// When a body handle is supplied the resulting adapter reference is
// handed to the message; the request controls the lifetime of the body
// stream fully.
func (b *RequestBuilder) DecodeRequest(blob []byte, body Handle) (*httpmsg.Message, error) {
	cur := wire.NewCursor(blob)
	version, err := marshal.DecodeVersion(cur)
	if err != nil {
		return nil, err
	}

	var msg *httpmsg.Message
	if version == httpmsg.VersionHTTP2 {
		msg = httpmsg.NewHTTP2Request()
	} else {
		msg = httpmsg.NewRequest()
	}

	if version != msg.Version() {
		msg.Release()
		return nil, errors.Wrapf(errors.ErrVersionMismatch, "blob version %d, target %s", uint32(version), msg.Version())
	}

	if err := marshal.DecodeFields(msg, cur); err != nil {
		msg.Release()
		return nil, err
	}

	if body != NilHandle {
		adapter, err := NewBodyStreamAdapter(b.rt, body)
		if err != nil {
			msg.Release()
			return nil, err
		}
		msg.SetBodyStream(adapter)
		adapter.Release()
	}

	b.logger.WithFields(map[string]interface{}{
		"version": msg.Version().String(),
		"headers": msg.Headers().Len(),
	}).Debug("decoded marshalled request")
	return msg, nil
}

// ApplyToRequest re-decodes a blob into an already-existing message:
// the version must match the message's fixed version, the header set is
// replaced, method and path are overwritten.
//
// The body handle is accepted but not attached; replacing the body
// stream of a live request is deferred until a caller needs it.
func (b *RequestBuilder) ApplyToRequest(blob []byte, body Handle, msg *httpmsg.Message) error {
	_ = body

	cur := wire.NewCursor(blob)
	version, err := marshal.DecodeVersion(cur)
	if err != nil {
		return err
	}
	if version != msg.Version() {
		return errors.Wrapf(errors.ErrVersionMismatch, "blob version %d, target %s", uint32(version), msg.Version())
	}

	msg.Headers().Clear()
	return marshal.DecodeFields(msg, cur)
}

// EncodeRequest marshals msg and constructs a foreign request value
// from the blob plus the given body handle. The intermediate buffer is
// pooled and returned on every path; the foreign constructor must copy
// what it keeps.
func (b *RequestBuilder) EncodeRequest(msg *httpmsg.Message, body Handle) (Value, error) {
	env, err := b.rt.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	defer b.rt.Release(env)

	buf := wire.GetBuffer()
	defer wire.PutBuffer(buf)

	if err := marshal.EncodeRequest(buf, msg); err != nil {
		return nil, err
	}

	val, err := env.NewRequestValue(buf.Bytes(), body)
	if err != nil {
		return nil, errors.Wrap(err, "foreign request constructor")
	}
	if perr := env.PendingError(); perr != nil {
		return nil, errors.Wrapf(errors.ErrCallbackFailure, "foreign request constructor: %v", perr)
	}
	return val, nil
}
