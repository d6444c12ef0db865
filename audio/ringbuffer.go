// Package audio converts core audio to the output format: resampling to
// the device rate, buffering for a pull-model device and WAV capture.
package audio

import (
	"io"
	"sync"
)

// RingBuffer is a fixed size byte FIFO fed by the execution loop and drained
// by the audio device. When full, the oldest bytes are dropped so latency
// stays bounded.
type RingBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	r      int // read position
	n      int // bytes buffered
	closed bool
}

// NewRingBuffer creates a ring buffer holding at most capacity bytes.
func NewRingBuffer(capacity int) *RingBuffer {
	rb := &RingBuffer{buf: make([]byte, capacity)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write appends p, dropping the oldest bytes on overflow. Writes after
// Close are ignored.
func (rb *RingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.closed || len(p) == 0 {
		return
	}

	size := len(rb.buf)
	if len(p) >= size {
		copy(rb.buf, p[len(p)-size:])
		rb.r, rb.n = 0, size
		rb.cond.Broadcast()
		return
	}

	if over := rb.n + len(p) - size; over > 0 {
		rb.r = (rb.r + over) % size
		rb.n -= over
	}
	w := (rb.r + rb.n) % size
	c := copy(rb.buf[w:], p)
	copy(rb.buf, p[c:])
	rb.n += len(p)
	rb.cond.Broadcast()
}

// Read blocks until data is available, then copies up to len(p) bytes.
// Once closed and drained it returns io.EOF.
func (rb *RingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.n == 0 && !rb.closed {
		rb.cond.Wait()
	}
	if rb.n == 0 {
		return 0, io.EOF
	}

	count := min(len(p), rb.n)
	c := copy(p[:count], rb.buf[rb.r:])
	copy(p[c:count], rb.buf)
	rb.r = (rb.r + count) % len(rb.buf)
	rb.n -= count
	return count, nil
}

// Buffered returns the number of bytes waiting to be read.
func (rb *RingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.n
}

// Clear drops every buffered byte.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	rb.r, rb.n = 0, 0
	rb.mu.Unlock()
}

// Close unblocks readers. Buffered bytes can still be read.
func (rb *RingBuffer) Close() {
	rb.mu.Lock()
	rb.closed = true
	rb.cond.Broadcast()
	rb.mu.Unlock()
}
