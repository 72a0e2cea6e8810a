package wire

import "sync"

// Encode paths marshal into short-lived buffers; pooling them keeps the
// per-request allocation cost flat.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return NewBuffer(1024)
	},
}

// GetBuffer returns an empty pooled buffer.
func GetBuffer() *Buffer {
	b := bufferPool.Get().(*Buffer)
	b.Reset()
	return b
}

// PutBuffer returns a buffer to the pool. The caller must not use it
// afterwards.
func PutBuffer(b *Buffer) {
	if b == nil {
		return
	}
	bufferPool.Put(b)
}
