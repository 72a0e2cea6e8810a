package bridge

import (
	"fmt"
	"sync"

	"httpbridge-core/internal/core/log"
	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/wire"
)

// LocalRuntime is the in-process Runtime implementation used by the
// mobile binding and the test suite. Callback objects registered by the
// embedding application live in a refcounted handle table, mirroring
// the global-reference discipline of an out-of-process runtime.
type LocalRuntime struct {
	mu      sync.Mutex
	closed  bool
	next    Handle
	handles map[Handle]*handleEntry
	logger  log.Logger
}

type handleEntry struct {
	cb   BodyCallback
	refs int
}

// NewLocalRuntime creates an empty runtime.
func NewLocalRuntime() *LocalRuntime {
	return &LocalRuntime{
		handles: make(map[Handle]*handleEntry),
		logger:  log.Default().WithField("component", "local_runtime"),
	}
}

// Register adds a callback object to the handle table with one
// reference and returns its handle. Fails once the runtime is shut
// down.
func (rt *LocalRuntime) Register(cb BodyCallback) (Handle, error) {
	if cb == nil {
		return NilHandle, errors.Wrap(errors.ErrInvalidHandle, "nil callback")
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return NilHandle, errors.Wrap(errors.ErrRuntimeUnavailable, "register")
	}
	rt.next++
	rt.handles[rt.next] = &handleEntry{cb: cb, refs: 1}
	return rt.next, nil
}

// Shutdown makes every subsequent Acquire fail. Already-acquired
// environments keep working so in-flight operations can finish.
func (rt *LocalRuntime) Shutdown() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.closed = true
}

// Acquire attaches the calling goroutine to the runtime for one
// boundary call.
func (rt *LocalRuntime) Acquire() (Env, error) {
	rt.mu.Lock()
	closed := rt.closed
	rt.mu.Unlock()
	if closed {
		return nil, errors.Wrap(errors.ErrRuntimeUnavailable, "runtime is shut down")
	}
	return &localEnv{rt: rt}, nil
}

// Release detaches. Local environments hold no per-thread state.
func (rt *LocalRuntime) Release(env Env) {}

func (rt *LocalRuntime) lookup(h Handle) BodyCallback {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	entry, ok := rt.handles[h]
	if !ok {
		return nil
	}
	return entry.cb
}

// localEnv is a single-call environment. Pending errors model the
// pending-exception state of a managed runtime: recorded by a failing
// foreign invocation, observed and cleared by PendingError.
type localEnv struct {
	rt      *LocalRuntime
	pending error
}

func (e *localEnv) setPending(err error) {
	if e.pending == nil {
		e.pending = err
	}
}

func (e *localEnv) PendingError() error {
	err := e.pending
	e.pending = nil
	return err
}

func (e *localEnv) Callback(h Handle) BodyCallback {
	return &guardedCallback{env: e, handle: h}
}

func (e *localEnv) RetainHandle(h Handle) (Handle, error) {
	e.rt.mu.Lock()
	defer e.rt.mu.Unlock()
	entry, ok := e.rt.handles[h]
	if !ok {
		return NilHandle, errors.Wrapf(errors.ErrInvalidHandle, "retain %d", h)
	}
	entry.refs++
	return h, nil
}

func (e *localEnv) ReleaseHandle(h Handle) {
	e.rt.mu.Lock()
	defer e.rt.mu.Unlock()
	entry, ok := e.rt.handles[h]
	if !ok {
		e.rt.logger.Warnf("release of unknown handle %d", h)
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(e.rt.handles, h)
	}
}

func (e *localEnv) NewRequestValue(blob []byte, body Handle) (Value, error) {
	// The blob is only valid during this call; the foreign value keeps
	// its own copy.
	return &ForeignRequest{
		Blob: append([]byte(nil), blob...),
		Body: body,
	}, nil
}

// ForeignRequest is the request value LocalRuntime constructs for the
// foreign side: the marshalled blob plus an optional body handle.
type ForeignRequest struct {
	Blob []byte
	Body Handle
}

// guardedCallback invokes a registered callback on behalf of one env.
// A panic inside the foreign code, or an unknown handle, is recorded as
// the env's pending error instead of unwinding into native state.
type guardedCallback struct {
	env    *localEnv
	handle Handle
}

func (g *guardedCallback) resolve() BodyCallback {
	cb := g.env.rt.lookup(g.handle)
	if cb == nil {
		g.env.setPending(errors.Wrapf(errors.ErrInvalidHandle, "invoke %d", g.handle))
	}
	return cb
}

func (g *guardedCallback) trap() {
	if r := recover(); r != nil {
		g.env.setPending(fmt.Errorf("callback panic: %v", r))
	}
}

func (g *guardedCallback) ResetPosition() (ok bool) {
	cb := g.resolve()
	if cb == nil {
		return false
	}
	defer g.trap()
	return cb.ResetPosition()
}

func (g *guardedCallback) SendOutgoingBody(win *wire.Window) (done bool) {
	cb := g.resolve()
	if cb == nil {
		return false
	}
	defer g.trap()
	return cb.SendOutgoingBody(win)
}

func (g *guardedCallback) GetLength() (length int64) {
	cb := g.resolve()
	if cb == nil {
		return 0
	}
	defer g.trap()
	return cb.GetLength()
}
