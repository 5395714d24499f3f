// ABOUTME: Sample ring buffer shared by the audio backends
// ABOUTME: Thread-safe int16 FIFO that zero-fills reads on underrun
package output

import "sync"

// RingBuffer provides thread-safe circular buffer for audio samples
type RingBuffer struct {
	buffer   []int16
	readPos  int
	writePos int
	count    int // Number of samples currently in buffer
	mu       sync.Mutex
}

// NewRingBuffer creates a ring buffer with given capacity (in samples)
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		buffer: make([]int16, capacity),
	}
}

// Write adds samples to the ring buffer, returning how many fit
func (rb *RingBuffer) Write(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buffer)
	written := 0
	for written < len(samples) && rb.count < size {
		n := min(len(samples)-written, size-rb.count, size-rb.writePos)
		copy(rb.buffer[rb.writePos:rb.writePos+n], samples[written:written+n])
		rb.writePos = (rb.writePos + n) % size
		rb.count += n
		written += n
	}
	return written
}

// Read fills samples from the ring buffer and returns how many were real.
// The rest of samples is zeroed.
func (rb *RingBuffer) Read(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buffer)
	read := 0
	for read < len(samples) && rb.count > 0 {
		n := min(len(samples)-read, rb.count, size-rb.readPos)
		copy(samples[read:read+n], rb.buffer[rb.readPos:rb.readPos+n])
		rb.readPos = (rb.readPos + n) % size
		rb.count -= n
		read += n
	}

	clear(samples[read:])
	return read
}

// Available returns the number of samples available to read
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of free slots in the buffer
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return len(rb.buffer) - rb.count
}

// Cap returns the buffer capacity in samples
func (rb *RingBuffer) Cap() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return len(rb.buffer)
}

// Grow raises the capacity to at least capacity samples, keeping contents
func (rb *RingBuffer) Grow(capacity int) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if capacity <= len(rb.buffer) {
		return
	}
	grown := make([]int16, capacity)
	size := len(rb.buffer)
	for i := 0; i < rb.count; i++ {
		grown[i] = rb.buffer[(rb.readPos+i)%size]
	}
	rb.buffer = grown
	rb.readPos = 0
	rb.writePos = rb.count
}

// Reset drops all buffered samples
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos, rb.writePos, rb.count = 0, 0, 0
}
