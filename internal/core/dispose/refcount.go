// Package dispose provides lifecycle helpers for shared native resources.
package dispose

import "sync/atomic"

// RefCount tracks shared ownership of a resource and invokes the release
// function exactly once, when the last reference is dropped.
//
// The zero value is not usable; create with NewRefCount.
type RefCount struct {
	count   atomic.Int64
	release func()
}

// NewRefCount creates a counter holding one reference. release runs when
// the count reaches zero.
func NewRefCount(release func()) *RefCount {
	rc := &RefCount{release: release}
	rc.count.Store(1)
	return rc
}

// Ref acquires an additional reference.
func (rc *RefCount) Ref() {
	if rc.count.Add(1) <= 1 {
		panic("dispose: Ref on a released RefCount")
	}
}

// Unref drops one reference. The release function runs on the call that
// drops the last one.
func (rc *RefCount) Unref() {
	n := rc.count.Add(-1)
	switch {
	case n == 0:
		if rc.release != nil {
			rc.release()
		}
	case n < 0:
		panic("dispose: Unref below zero")
	}
}

// Count returns the current reference count. Intended for tests and
// diagnostics only.
func (rc *RefCount) Count() int64 {
	return rc.count.Load()
}
