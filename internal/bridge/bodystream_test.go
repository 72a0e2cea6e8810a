package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/wire"
)

func newStreamFixture(t *testing.T, cb BodyCallback) (*LocalRuntime, *BodyStreamAdapter) {
	t.Helper()
	rt := NewLocalRuntime()
	h, err := rt.Register(cb)
	require.NoError(t, err)

	adapter, err := NewBodyStreamAdapter(rt, h)
	require.NoError(t, err)

	// Drop the registration reference; the adapter holds its own.
	env, err := rt.Acquire()
	require.NoError(t, err)
	env.ReleaseHandle(h)
	rt.Release(env)

	return rt, adapter
}

func readAll(t *testing.T, s httpmsg.BodyStream, cap int) []byte {
	t.Helper()
	var out []byte
	for !s.Status().EndOfStream {
		buf := wire.NewBuffer(cap)
		require.NoError(t, s.ReadInto(buf))
		out = append(out, buf.Bytes()...)
	}
	return out
}

func TestBodyStreamAdapter_ReadToEnd(t *testing.T) {
	cb := newFakeCallback([]byte("hello body"))
	cb.chunk = 4
	rt, adapter := newStreamFixture(t, cb)
	defer adapter.Release()

	assert.Equal(t, 1, rt.handleCount())
	assert.False(t, adapter.Status().EndOfStream)
	assert.True(t, adapter.Status().Valid)

	got := readAll(t, adapter, 32)
	assert.Equal(t, "hello body", string(got))
	assert.True(t, adapter.Status().EndOfStream)

	// Reads after end of stream are cheap no-ops, no foreign re-entry.
	sends := cb.sends
	buf := wire.NewBuffer(8)
	require.NoError(t, adapter.ReadInto(buf))
	assert.Zero(t, buf.Len())
	assert.Equal(t, sends, cb.sends)
}

func TestBodyStreamAdapter_ReadHonorsSpareCapacity(t *testing.T) {
	cb := newFakeCallback([]byte("abcdef"))
	_, adapter := newStreamFixture(t, cb)
	defer adapter.Release()

	buf := wire.NewBuffer(4)
	require.NoError(t, adapter.ReadInto(buf))
	assert.Equal(t, "abcd", string(buf.Bytes()))
	assert.False(t, adapter.Status().EndOfStream)

	// A full buffer has no spare capacity to offer; the tail arrives
	// once the destination has room again.
	rest := wire.NewBuffer(4)
	require.NoError(t, adapter.ReadInto(rest))
	assert.Equal(t, "ef", string(rest.Bytes()))
	assert.True(t, adapter.Status().EndOfStream)
}

func TestBodyStreamAdapter_SeekRewinds(t *testing.T) {
	cb := newFakeCallback([]byte("again"))
	_, adapter := newStreamFixture(t, cb)
	defer adapter.Release()

	assert.Equal(t, "again", string(readAll(t, adapter, 16)))
	require.NoError(t, adapter.Seek(0, httpmsg.SeekBegin))
	assert.False(t, adapter.Status().EndOfStream)
	assert.Equal(t, "again", string(readAll(t, adapter, 16)))
	assert.Equal(t, 1, cb.resets)
}

func TestBodyStreamAdapter_SeekValidation(t *testing.T) {
	cb := newFakeCallback([]byte("x"))
	_, adapter := newStreamFixture(t, cb)
	defer adapter.Release()

	tests := []struct {
		name   string
		offset int64
		basis  httpmsg.SeekBasis
	}{
		{name: "nonzero offset", offset: 3, basis: httpmsg.SeekBegin},
		{name: "negative offset", offset: -1, basis: httpmsg.SeekBegin},
		{name: "from end", offset: 0, basis: httpmsg.SeekEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := adapter.Seek(tt.offset, tt.basis)
			assert.ErrorIs(t, err, errors.ErrUnsupportedSeek)
		})
	}
	// Argument validation happens before any foreign re-entry.
	assert.Zero(t, cb.resets)
}

func TestBodyStreamAdapter_SeekCallbackFailure(t *testing.T) {
	cb := newFakeCallback([]byte("x"))
	cb.resetOK = false
	_, adapter := newStreamFixture(t, cb)
	defer adapter.Release()

	err := adapter.Seek(0, httpmsg.SeekBegin)
	assert.ErrorIs(t, err, errors.ErrCallbackFailure)
}

func TestBodyStreamAdapter_ReadCallbackPanic(t *testing.T) {
	cb := newFakeCallback([]byte("x"))
	cb.panicOnSend = true
	_, adapter := newStreamFixture(t, cb)
	defer adapter.Release()

	buf := wire.NewBuffer(8)
	err := adapter.ReadInto(buf)
	assert.ErrorIs(t, err, errors.ErrCallbackFailure)
	// Nothing from the failed invocation may reach the destination.
	assert.Zero(t, buf.Len())
}

func TestBodyStreamAdapter_NilHandle(t *testing.T) {
	rt := NewLocalRuntime()
	adapter, err := NewBodyStreamAdapter(rt, NilHandle)
	require.NoError(t, err)
	defer adapter.Release()

	assert.True(t, adapter.Status().EndOfStream)

	buf := wire.NewBuffer(8)
	require.NoError(t, adapter.ReadInto(buf))
	assert.Zero(t, buf.Len())

	require.NoError(t, adapter.Seek(0, httpmsg.SeekBegin))
	assert.False(t, adapter.Status().EndOfStream)

	_, err = adapter.Length()
	assert.ErrorIs(t, err, errors.ErrLengthUnavailable)
}

func TestBodyStreamAdapter_Length(t *testing.T) {
	cb := newFakeCallback([]byte("12345"))
	_, adapter := newStreamFixture(t, cb)
	defer adapter.Release()

	n, err := adapter.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestBodyStreamAdapter_Invalidate(t *testing.T) {
	cb := newFakeCallback([]byte("x"))
	_, adapter := newStreamFixture(t, cb)
	defer adapter.Release()

	adapter.Invalidate()

	assert.ErrorIs(t, adapter.ReadInto(wire.NewBuffer(8)), errors.ErrInvalidBodyStream)
	assert.ErrorIs(t, adapter.Seek(0, httpmsg.SeekBegin), errors.ErrInvalidBodyStream)
	_, err := adapter.Length()
	assert.ErrorIs(t, err, errors.ErrInvalidBodyStream)

	// Status keeps reporting, now with the valid flag down.
	st := adapter.Status()
	assert.False(t, st.Valid)
}

func TestBodyStreamAdapter_ReleaseFreesHandle(t *testing.T) {
	cb := newFakeCallback([]byte("x"))
	rt, adapter := newStreamFixture(t, cb)

	second := adapter.Retain()
	adapter.Release()
	assert.Equal(t, 1, rt.handleCount())

	second.Release()
	assert.Equal(t, 0, rt.handleCount())
}

func TestBodyStreamAdapter_UnknownHandle(t *testing.T) {
	rt := NewLocalRuntime()
	_, err := NewBodyStreamAdapter(rt, Handle(99))
	assert.ErrorIs(t, err, errors.ErrInvalidHandle)
}

func TestBodyStreamAdapter_RuntimeShutDown(t *testing.T) {
	cb := newFakeCallback([]byte("x"))
	rt, adapter := newStreamFixture(t, cb)

	rt.Shutdown()

	err := adapter.ReadInto(wire.NewBuffer(8))
	assert.ErrorIs(t, err, errors.ErrRuntimeUnavailable)
	_, err = adapter.Length()
	assert.ErrorIs(t, err, errors.ErrRuntimeUnavailable)

	// Teardown with the runtime gone must not fail or panic.
	assert.NotPanics(t, adapter.Release)
}
