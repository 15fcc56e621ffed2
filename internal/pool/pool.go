package pool

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

// ReaderSize is the buffer size of pooled line readers
const ReaderSize = 64 * 1024

// ReaderPool is a pool of buffered readers reused across log files
var ReaderPool = sync.Pool{
	New: func() interface{} {
		return bufio.NewReaderSize(nil, ReaderSize)
	},
}

// GetReader retrieves a buffered reader from the pool, reset to read from r
func GetReader(r io.Reader) *bufio.Reader {
	br := ReaderPool.Get().(*bufio.Reader)
	br.Reset(r)
	return br
}

// PutReader returns a reader to the pool
func PutReader(br *bufio.Reader) {
	if br != nil {
		// Drop the reference to the underlying source
		br.Reset(nil)
		ReaderPool.Put(br)
	}
}

// ByteBufferPool is a pool of byte buffers for report rendering
var ByteBufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// GetByteBuffer retrieves a byte buffer from the pool
func GetByteBuffer() *bytes.Buffer {
	buf := ByteBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutByteBuffer returns a byte buffer to the pool
func PutByteBuffer(buf *bytes.Buffer) {
	if buf != nil {
		// Only pool buffers under 64KB to avoid holding too much memory
		if buf.Cap() < 64*1024 {
			buf.Reset()
			ByteBufferPool.Put(buf)
		}
	}
}
