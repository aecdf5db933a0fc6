package pdf

import (
	"bytes"
	"sync"
)

// bufPool recycles the byte buffers backing generated documents. A buffer
// checked out for one invoice is never shared until Release returns it.
var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Buffer holds one generated PDF. It stays readable until Release is
// called; releasing while the bytes are still in use (e.g. mid-transmit)
// corrupts the attachment, so callers must defer Release until after the
// transport call has returned.
type Buffer struct {
	buf *bytes.Buffer
}

// Bytes returns the PDF content. Nil after Release.
func (b *Buffer) Bytes() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf.Bytes()
}

// Len returns the content length in bytes. Zero after Release.
func (b *Buffer) Len() int {
	if b.buf == nil {
		return 0
	}
	return b.buf.Len()
}

// Release resets the buffer and returns it to the pool. Safe to call more
// than once; only the first call has effect.
func (b *Buffer) Release() {
	if b.buf == nil {
		return
	}
	b.buf.Reset()
	bufPool.Put(b.buf)
	b.buf = nil
}

func newBuffer() *Buffer {
	return &Buffer{buf: bufPool.Get().(*bytes.Buffer)}
}
