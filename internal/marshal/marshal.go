// Package marshal implements the flat binary encoding of HTTP requests
// exchanged across the runtime boundary.
//
// A marshalled request is, all integers 4-byte big-endian unsigned:
//
//	[version][method_len][method][path_len][path][header pairs...]
//
// where each header pair is [name_len][name][value_len][value]. For the
// multiplexed family the method and path lengths must be exactly zero.
// Header-only blobs are just the header pairs with no preamble.
package marshal

import (
	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/wire"
)

// EncodeHeader appends one name/value pair to buf.
func EncodeHeader(buf *wire.Buffer, name, value []byte) error {
	if err := buf.Reserve(8 + len(name) + len(value)); err != nil {
		return err
	}
	// Reserved above, the writes below cannot fail.
	_ = buf.WriteBE32(uint32(len(name)))
	_ = buf.Write(name)
	_ = buf.WriteBE32(uint32(len(value)))
	_ = buf.Write(value)
	return nil
}

// EncodeHeaders appends every header in order, stopping at the first
// failure. The buffer is left partially written on error and should be
// discarded by the caller.
func EncodeHeaders(buf *wire.Buffer, headers *httpmsg.HeaderList) error {
	for i := 0; i < headers.Len(); i++ {
		h, err := headers.At(i)
		if err != nil {
			return err
		}
		if err := EncodeHeader(buf, h.Name, h.Value); err != nil {
			return err
		}
	}
	return nil
}

// EncodeRequest marshals msg into buf: version, method, path, headers.
// Unset method and path encode as zero-length fields.
func EncodeRequest(buf *wire.Buffer, msg *httpmsg.Message) error {
	method := msg.Method()
	path := msg.Path()

	if err := buf.Reserve(12 + len(method) + len(path)); err != nil {
		return err
	}
	_ = buf.WriteBE32(uint32(msg.Version()))
	_ = buf.WriteBE32(uint32(len(method)))
	_ = buf.Write(method)
	_ = buf.WriteBE32(uint32(len(path)))
	_ = buf.Write(path)

	return EncodeHeaders(buf, msg.Headers())
}

// DecodeVersion consumes the leading version field.
func DecodeVersion(cur *wire.Cursor) (httpmsg.Version, error) {
	v, err := cur.ReadBE32()
	if err != nil {
		return 0, errors.NewDecodeError("version", "blob too short", err)
	}
	return httpmsg.Version(v), nil
}

// DecodeFields consumes everything after the version field, setting
// method, path and headers on msg. The caller has already matched the
// blob version against the message's fixed version.
//
// For multiplexed-family targets the method and path length prefixes
// must be present and exactly zero.
func DecodeFields(msg *httpmsg.Message, cur *wire.Cursor) error {
	if msg.Version() != httpmsg.VersionHTTP2 {
		method, err := readField(cur, "method")
		if err != nil {
			return err
		}
		if err := msg.SetMethod(method); err != nil {
			return err
		}

		path, err := readField(cur, "path")
		if err != nil {
			return err
		}
		if err := msg.SetPath(path); err != nil {
			return err
		}
	} else {
		// The multiplexed family carries no method or path; the blob
		// still encodes both as zero-length fields.
		for _, field := range []string{"method", "path"} {
			n, err := cur.ReadBE32()
			if err != nil {
				return errors.NewDecodeError(field, "blob too short", err)
			}
			if n != 0 {
				return errors.NewDecodeError(field, "must be empty for a multiplexed request", errors.ErrInvalidArgument)
			}
		}
	}

	return decodeHeaderPairs(cur, func(name, value []byte) {
		msg.Headers().Add(name, value)
	})
}

// DecodeHeaders consumes a header-only blob into headers.
func DecodeHeaders(headers *httpmsg.HeaderList, cur *wire.Cursor) error {
	return decodeHeaderPairs(cur, headers.Add)
}

// decodeHeaderPairs loops over [name_len][name][value_len][value] until
// the cursor is exactly empty. A truncated trailing field fails the
// whole decode.
func decodeHeaderPairs(cur *wire.Cursor, add func(name, value []byte)) error {
	for !cur.Empty() {
		name, err := readField(cur, "header name")
		if err != nil {
			return err
		}
		value, err := readField(cur, "header value")
		if err != nil {
			return err
		}
		add(name, value)
	}
	return nil
}

// readField consumes one length-prefixed byte string.
func readField(cur *wire.Cursor, field string) ([]byte, error) {
	n, err := cur.ReadBE32()
	if err != nil {
		return nil, errors.NewDecodeError(field, "missing length prefix", err)
	}
	data, err := cur.Advance(int(n))
	if err != nil {
		return nil, errors.NewDecodeError(field, "length prefix exceeds remaining data", err)
	}
	return data, nil
}
