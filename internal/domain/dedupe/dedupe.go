// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen request IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	// This is the ONLY method for deduplication - thread-safe and atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set, allowing it to be retried.
	// This should only be used when a request was marked as seen but failed
	// to be accepted (e.g., queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a slot-indexed ring buffer.
// For bounded mode (capacity > 0): ids live in a fixed ring; when the
// write cursor laps a slot, its occupant is evicted (oldest first).
// For unbounded mode (capacity <= 0): ids live in the map alone.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]int // id -> ring slot; unboundedSlot when no ring
	ring     []string       // fixed-size insertion ring; "" marks a free slot
	next     int            // next ring slot the cursor will write
	capacity int
	size     atomic.Int64
}

// unboundedSlot marks entries that have no ring position.
const unboundedSlot = -1

// defaultCapacity bounds the deduper when no option overrides it.
const defaultCapacity = 50000

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.capacity > 0 {
		d.ring = make([]string, d.capacity)
	}

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
// Returns true if id was already seen, false if it was newly recorded.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.capacity > 0 {
		// Lap eviction: the slot under the cursor holds the oldest
		// surviving entry once the ring has wrapped.
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
			d.size.Add(-1)
		}

		d.ring[d.next] = id
		d.seen[id] = d.next
		d.next = (d.next + 1) % d.capacity
	} else {
		d.seen[id] = unboundedSlot
	}

	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen set, allowing it to be retried.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, exists := d.seen[id]
	if !exists {
		return
	}

	delete(d.seen, id)
	if slot != unboundedSlot {
		// Free the slot so the cursor lap does not double-evict.
		d.ring[slot] = ""
	}
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
