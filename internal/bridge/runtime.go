// Package bridge crosses the boundary between the native request model
// and a foreign managed runtime. It provides the runtime/environment
// abstraction, the body stream adapter whose operations are fulfilled
// by foreign callbacks, and the request builder that marshals whole
// requests in both directions.
package bridge

// Handle is an opaque reference to an object living in the foreign
// runtime. NilHandle means "no object".
type Handle uint64

// NilHandle is the absent handle.
const NilHandle Handle = 0

// Value is an opaque foreign value produced for the foreign side, such
// as a constructed request object.
type Value interface{}

// Env is a per-call attachment to the foreign runtime. An Env is only
// valid between the Acquire that produced it and the matching Release;
// it must never be cached across calls.
type Env interface {
	// Callback resolves a handle to an invocable callback view. Errors
	// raised by the foreign side during an invocation (including an
	// unknown handle) become the env's pending error.
	Callback(h Handle) BodyCallback

	// PendingError returns the error raised by the last foreign
	// invocation, clearing it. Mirrors a check-and-clear of a pending
	// exception.
	PendingError() error

	// RetainHandle turns h into a retained reference the caller owns
	// and must release exactly once.
	RetainHandle(h Handle) (Handle, error)

	// ReleaseHandle drops a retained reference.
	ReleaseHandle(h Handle)

	// NewRequestValue invokes the foreign request constructor with a
	// marshalled blob and an optional body handle. The blob bytes are
	// only valid for the duration of the call; the foreign side copies
	// what it keeps.
	NewRequestValue(blob []byte, body Handle) (Value, error)
}

// Runtime is the foreign execution runtime. Every boundary-crossing
// operation acquires an environment at entry and releases it on every
// exit path. Acquisition fails when the runtime is shutting down; the
// failure is transient from the caller's point of view and must not
// corrupt any state.
type Runtime interface {
	Acquire() (Env, error)
	Release(env Env)
}
