package bridge

import (
	"github.com/google/uuid"

	"httpbridge-core/internal/core/dispose"
	"httpbridge-core/internal/core/log"
	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/wire"
)

// BodyStreamAdapter implements httpmsg.BodyStream on top of a foreign
// callback handle. Every operation that re-enters the foreign side
// acquires an environment at entry and releases it on every exit path.
//
// A NilHandle adapter represents an empty body: reads succeed with zero
// bytes and immediately reach end-of-stream.
//
// The adapter is refcounted. The owning request holds the only
// long-lived reference and thereby controls teardown timing. The engine
// guarantees single-reader discipline, so the flags need no locking.
type BodyStreamAdapter struct {
	refs   *dispose.RefCount
	rt     Runtime
	handle Handle
	done   bool
	valid  bool
	logger log.Logger
}

// NewBodyStreamAdapter wraps handle as a body source, retaining it for
// the adapter's lifetime. A NilHandle yields an empty-body adapter that
// needs no foreign re-entry.
func NewBodyStreamAdapter(rt Runtime, handle Handle) (*BodyStreamAdapter, error) {
	a := &BodyStreamAdapter{
		rt:     rt,
		valid:  true,
		logger: log.Default().WithField("body_stream", uuid.NewString()),
	}
	a.refs = dispose.NewRefCount(a.destroy)

	if handle == NilHandle {
		a.done = true
		return a, nil
	}

	env, err := rt.Acquire()
	if err != nil {
		return nil, errors.NewStreamError("new", "runtime unavailable", err)
	}
	retained, err := env.RetainHandle(handle)
	rt.Release(env)
	if err != nil {
		return nil, errors.NewStreamError("new", "cannot retain callback handle", err)
	}
	a.handle = retained
	return a, nil
}

// Retain acquires an additional reference.
func (a *BodyStreamAdapter) Retain() httpmsg.BodyStream {
	a.refs.Ref()
	return a
}

// Release drops one reference; the last release frees the adapter and
// its hold on the foreign callback handle.
func (a *BodyStreamAdapter) Release() {
	a.refs.Unref()
}

// Invalidate marks the adapter unusable. Every subsequent operation
// except Status fails with ErrInvalidBodyStream. Terminal.
func (a *BodyStreamAdapter) Invalidate() {
	a.valid = false
}

// Seek repositions the stream. Only a rewind to the very start is
// supported; anything else fails before any foreign re-entry. A
// successful rewind clears the end-of-stream flag.
func (a *BodyStreamAdapter) Seek(offset int64, basis httpmsg.SeekBasis) error {
	if !a.valid {
		return errors.ErrInvalidBodyStream
	}
	if basis != httpmsg.SeekBegin || offset != 0 {
		return errors.Wrapf(errors.ErrUnsupportedSeek, "seek to %d", offset)
	}

	if a.handle != NilHandle {
		env, err := a.rt.Acquire()
		if err != nil {
			return errors.NewStreamError("seek", "runtime unavailable", err)
		}
		defer a.rt.Release(env)

		ok := env.Callback(a.handle).ResetPosition()
		if perr := env.PendingError(); perr != nil {
			a.logger.WithError(perr).Debug("reset callback raised an error")
			return errors.NewStreamError("seek", perr.Error(), errors.ErrCallbackFailure)
		}
		if !ok {
			return errors.NewStreamError("seek", "reset callback returned false", errors.ErrCallbackFailure)
		}
	}

	a.done = false
	return nil
}

// ReadInto appends the next body chunk into the spare capacity of dst.
// Exactly one foreign invocation happens per call; the foreign side
// reports how many bytes it wrote through the window position, and its
// boolean result becomes the new end-of-stream flag.
func (a *BodyStreamAdapter) ReadInto(dst *wire.Buffer) error {
	if !a.valid {
		return errors.ErrInvalidBodyStream
	}

	if a.handle == NilHandle {
		a.done = true
		return nil
	}
	if a.done {
		return nil
	}

	env, err := a.rt.Acquire()
	if err != nil {
		return errors.NewStreamError("read", "runtime unavailable", err)
	}
	defer a.rt.Release(env)

	win := wire.NewWindow(dst.Spare())
	a.done = env.Callback(a.handle).SendOutgoingBody(win)

	if perr := env.PendingError(); perr != nil {
		// The window position cannot be trusted after a failed call.
		a.logger.WithError(perr).Debug("send body callback raised an error")
		return errors.NewStreamError("read", perr.Error(), errors.ErrCallbackFailure)
	}

	return dst.Advance(win.Position())
}

// Status reports the current flags. It never fails and never re-enters
// the foreign side.
func (a *BodyStreamAdapter) Status() httpmsg.StreamStatus {
	return httpmsg.StreamStatus{
		EndOfStream: a.done,
		Valid:       a.valid,
	}
}

// Length asks the foreign source for the total body length. Without a
// callback handle there is no defined length and the call fails;
// callers must check for a body first.
func (a *BodyStreamAdapter) Length() (int64, error) {
	if !a.valid {
		return 0, errors.ErrInvalidBodyStream
	}
	if a.handle == NilHandle {
		return 0, errors.ErrLengthUnavailable
	}

	env, err := a.rt.Acquire()
	if err != nil {
		return 0, errors.NewStreamError("length", "runtime unavailable", err)
	}
	defer a.rt.Release(env)

	length := env.Callback(a.handle).GetLength()
	if perr := env.PendingError(); perr != nil {
		return 0, errors.NewStreamError("length", perr.Error(), errors.ErrCallbackFailure)
	}
	return length, nil
}

// destroy releases the retained callback handle best-effort and frees
// adapter state. When the runtime is already gone the handle release is
// skipped; nobody can observe a destroy failure.
func (a *BodyStreamAdapter) destroy() {
	if a.handle != NilHandle {
		env, err := a.rt.Acquire()
		if err != nil {
			a.logger.WithError(err).Debug("runtime unavailable, skipping handle release")
		} else {
			env.ReleaseHandle(a.handle)
			a.rt.Release(env)
		}
		a.handle = NilHandle
	}
}
