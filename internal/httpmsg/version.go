// Package httpmsg models the native side of the boundary: protocol
// version, ordered header list, request message and the body stream
// contract the native engine pulls from.
package httpmsg

// Version tags the protocol family of a message. The numeric values are
// the ones carried in marshalled blobs and are fixed at message
// construction time.
type Version uint32

const (
	// VersionHTTP1 covers the HTTP/1.x family.
	VersionHTTP1 Version = 0
	// VersionHTTP2 is the multiplexed family. Marshalled requests of
	// this family carry empty method and path fields.
	VersionHTTP2 Version = 2
)

func (v Version) String() string {
	switch v {
	case VersionHTTP1:
		return "HTTP/1.x"
	case VersionHTTP2:
		return "HTTP/2"
	default:
		return "unknown"
	}
}
