// Package progress counts bytes moving through uploads and downloads.
package progress

import (
	"io"
	"sync/atomic"
)

// Callback is called with the cumulative byte count after each transfer.
type Callback func(transferred int64)

// Reader wraps an io.Reader and counts the bytes read through it.
// Count is safe to call from another goroutine while reads are in flight.
type Reader struct {
	reader   io.Reader
	callback Callback
	n        atomic.Int64
}

// NewReader creates a counting reader. The callback may be nil.
func NewReader(r io.Reader, callback Callback) *Reader {
	return &Reader{
		reader:   r,
		callback: callback,
	}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		total := r.n.Add(int64(n))
		if r.callback != nil {
			r.callback(total)
		}
	}
	return n, err
}

// Count returns the number of bytes read so far.
func (r *Reader) Count() int64 {
	return r.n.Load()
}

// Close closes the underlying reader if it implements io.Closer.
func (r *Reader) Close() error {
	if closer, ok := r.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
