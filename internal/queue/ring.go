// ABOUTME: Fixed-capacity ring buffer queue with mutex-protected indices
// ABOUTME: Single-producer/single-consumer handoff between pipeline stages
package queue

import "sync"

// Ring is a bounded FIFO of capacity N holding at most N-1 items, so that
// full ((write+1)%N == read) and empty (write == read) need no counter.
// The mutex guards index bookkeeping only.
type Ring[T any] struct {
	mu    sync.Mutex
	items []T
	read  int
	write int
}

// New creates a ring with the given capacity. Capacities below 2 are raised
// to 2 (one usable slot).
func New[T any](capacity int) *Ring[T] {
	if capacity < 2 {
		capacity = 2
	}
	return &Ring[T]{
		items: make([]T, capacity),
	}
}

// TryPush appends item. It returns false if the ring is full; the item is
// not taken and the caller keeps ownership.
func (q *Ring[T]) TryPush(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if n == 0 {
		return false
	}
	next := (q.write + 1) % n
	if next == q.read {
		return false
	}
	q.items[q.write] = item
	q.write = next
	return true
}

// TryPop removes and returns the oldest item
func (q *Ring[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.write == q.read {
		return zero, false
	}
	item := q.items[q.read]
	q.items[q.read] = zero
	q.read = (q.read + 1) % len(q.items)
	return item, true
}

// Peek returns the oldest item without removing it
func (q *Ring[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.write == q.read {
		var zero T
		return zero, false
	}
	return q.items[q.read], true
}

// Len returns the number of queued items
func (q *Ring[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if n == 0 {
		return 0
	}
	return (q.write - q.read + n) % n
}

// Cap returns the number of usable slots (capacity - 1)
func (q *Ring[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return 0
	}
	return len(q.items) - 1
}

// Full reports whether TryPush would fail
func (q *Ring[T]) Full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	return n == 0 || (q.write+1)%n == q.read
}

// Empty reports whether TryPop would fail
func (q *Ring[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.write == q.read
}

// Release drops the backing storage and any items still queued. The ring
// behaves as permanently full and empty afterwards.
func (q *Ring[T]) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = nil
	q.read = 0
	q.write = 0
}
