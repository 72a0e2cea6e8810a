package mobile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/marshal"
	"httpbridge-core/internal/wire"
)

// sliceProvider serves a byte slice through the BodyProvider surface.
type sliceProvider struct {
	data []byte
	pos  int
}

func (p *sliceProvider) ResetPosition() bool {
	p.pos = 0
	return true
}

func (p *sliceProvider) FillBody(buf []byte) int {
	n := copy(buf, p.data[p.pos:])
	p.pos += n
	return n
}

func (p *sliceProvider) Exhausted() bool {
	return p.pos == len(p.data)
}

func (p *sliceProvider) ContentLength() int64 {
	return int64(len(p.data))
}

func buildBlob(t *testing.T, version httpmsg.Version, method, path string, headers [][2]string) []byte {
	t.Helper()
	var msg *httpmsg.Message
	if version == httpmsg.VersionHTTP2 {
		msg = httpmsg.NewHTTP2Request()
	} else {
		msg = httpmsg.NewRequest()
	}
	defer msg.Release()
	require.NoError(t, msg.SetMethod([]byte(method)))
	require.NoError(t, msg.SetPath([]byte(path)))
	for _, h := range headers {
		msg.Headers().Add([]byte(h[0]), []byte(h[1]))
	}

	buf := wire.NewBuffer(128)
	require.NoError(t, marshal.EncodeRequest(buf, msg))
	return append([]byte(nil), buf.Bytes()...)
}

func TestRequestBridge_DecodeAndInspect(t *testing.T) {
	rb := NewRequestBridge()
	defer rb.Shutdown()

	blob := buildBlob(t, httpmsg.VersionHTTP1, "GET", "/items", [][2]string{{"Host", "x.com"}, {"Accept", "*/*"}})
	id, err := rb.DecodeRequest(blob, nil)
	require.NoError(t, err)

	version, err := rb.RequestVersion(id)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	method, err := rb.RequestMethod(id)
	require.NoError(t, err)
	assert.Equal(t, "GET", method)

	path, err := rb.RequestPath(id)
	require.NoError(t, err)
	assert.Equal(t, "/items", path)

	count, err := rb.HeaderCount(id)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	name, err := rb.HeaderNameAt(id, 1)
	require.NoError(t, err)
	value, err := rb.HeaderValueAt(id, 1)
	require.NoError(t, err)
	assert.Equal(t, "Accept", name)
	assert.Equal(t, "*/*", value)

	_, err = rb.HeaderNameAt(id, 5)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestRequestBridge_UnknownID(t *testing.T) {
	rb := NewRequestBridge()
	defer rb.Shutdown()

	_, err := rb.RequestMethod(77)
	assert.ErrorIs(t, err, errors.ErrInvalidHandle)
}

func TestRequestBridge_BodyStreaming(t *testing.T) {
	rb := NewRequestBridge()
	defer rb.Shutdown()

	body := []byte("the quick brown fox")
	blob := buildBlob(t, httpmsg.VersionHTTP1, "POST", "/upload", nil)
	id, err := rb.DecodeRequest(blob, &sliceProvider{data: body})
	require.NoError(t, err)

	length, err := rb.BodyLength(id)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), length)

	readAll := func() []byte {
		var out []byte
		chunk := make([]byte, 7)
		for {
			done, err := rb.BodyDone(id)
			require.NoError(t, err)
			if done {
				return out
			}
			n, err := rb.ReadBody(id, chunk)
			require.NoError(t, err)
			out = append(out, chunk[:n]...)
		}
	}

	assert.Equal(t, body, readAll())

	// A rewind makes the whole body readable again.
	require.NoError(t, rb.RewindBody(id))
	assert.Equal(t, body, readAll())
}

func TestRequestBridge_BodylessRequestHasNoStream(t *testing.T) {
	rb := NewRequestBridge()
	defer rb.Shutdown()

	blob := buildBlob(t, httpmsg.VersionHTTP1, "GET", "/", nil)
	id, err := rb.DecodeRequest(blob, nil)
	require.NoError(t, err)

	_, err = rb.ReadBody(id, make([]byte, 4))
	assert.ErrorIs(t, err, errors.ErrInvalidBodyStream)
	_, err = rb.BodyLength(id)
	assert.ErrorIs(t, err, errors.ErrInvalidBodyStream)
}

func TestRequestBridge_ApplyChanges(t *testing.T) {
	rb := NewRequestBridge()
	defer rb.Shutdown()

	id, err := rb.DecodeRequest(buildBlob(t, httpmsg.VersionHTTP1, "GET", "/old", [][2]string{{"Stale", "1"}}), nil)
	require.NoError(t, err)

	require.NoError(t, rb.ApplyChanges(id, buildBlob(t, httpmsg.VersionHTTP1, "PUT", "/new", [][2]string{{"Host", "x.com"}})))

	method, _ := rb.RequestMethod(id)
	path, _ := rb.RequestPath(id)
	count, _ := rb.HeaderCount(id)
	assert.Equal(t, "PUT", method)
	assert.Equal(t, "/new", path)
	assert.Equal(t, 1, count)

	// A family mismatch is rejected and changes nothing.
	err = rb.ApplyChanges(id, buildBlob(t, httpmsg.VersionHTTP2, "", "", nil))
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	method, _ = rb.RequestMethod(id)
	assert.Equal(t, "PUT", method)
}

func TestRequestBridge_EncodeRoundTrip(t *testing.T) {
	rb := NewRequestBridge()
	defer rb.Shutdown()

	blob := buildBlob(t, httpmsg.VersionHTTP1, "GET", "/", [][2]string{{"Host", "x.com"}})
	id, err := rb.DecodeRequest(blob, nil)
	require.NoError(t, err)

	out, err := rb.EncodeRequest(id)
	require.NoError(t, err)
	assert.Equal(t, blob, out)
}

func TestRequestBridge_ReleaseRequest(t *testing.T) {
	rb := NewRequestBridge()
	defer rb.Shutdown()

	id, err := rb.DecodeRequest(buildBlob(t, httpmsg.VersionHTTP1, "GET", "/", nil), nil)
	require.NoError(t, err)

	rb.ReleaseRequest(id)
	_, err = rb.RequestMethod(id)
	assert.ErrorIs(t, err, errors.ErrInvalidHandle)

	// Double release is harmless.
	rb.ReleaseRequest(id)
}

func TestRequestBridge_ShutdownStopsDecoding(t *testing.T) {
	rb := NewRequestBridge()
	rb.Shutdown()

	_, err := rb.DecodeRequest(buildBlob(t, httpmsg.VersionHTTP1, "POST", "/", nil), &sliceProvider{data: []byte("x")})
	assert.ErrorIs(t, err, errors.ErrRuntimeUnavailable)
}
