package response

import (
	"io"
	"sync"
)

const copyBufferSize = 32 << 10

var copyBufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, copyBufferSize)
		return &buf
	},
}

type flusher interface {
	Flush() error
}

// Stream copies every byte of src to dst in order, then flushes dst if it
// buffers. The first read or write error aborts the copy and is returned
// with the count written so far.
func Stream(dst io.Writer, src io.Reader) (int64, error) {
	bufp := copyBufPool.Get().(*[]byte)
	defer copyBufPool.Put(bufp)

	// Plain wrappers keep io.CopyBuffer on the pooled buffer instead of
	// ReaderFrom/WriterTo fast paths that allocate their own.
	n, err := io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, *bufp)
	if err != nil {
		return n, err
	}

	if f, ok := dst.(flusher); ok {
		if err := f.Flush(); err != nil {
			return n, err
		}
	}
	return n, nil
}
