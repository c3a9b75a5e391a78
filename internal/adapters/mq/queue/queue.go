// Package queue defines the contract for enqueuing and consuming screenings.
//
// Implementations may use channels or more advanced structures. The
// service starts with an in-memory bounded queue.
package queue

import (
	"context"
	"sync"

	"github.com/arguswatch/argus/internal/domain/model"
	"github.com/arguswatch/argus/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 100000
)

// Screening represents the payload type flowing through the queue.
// Using the model.Screening type for type safety.
type Screening = model.Screening

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a screening to the queue.
	// Returns false if the queue is full and the screening was not enqueued.
	Enqueue(ctx context.Context, s Screening) bool

	// Dequeue returns a channel that receives screenings as they become
	// available. The channel is shared by all consumers and is closed
	// when the queue is closed.
	Dequeue(ctx context.Context) <-chan Screening

	// Len returns the current number of queued screenings.
	Len(ctx context.Context) int

	// Cap returns the maximum number of queued screenings.
	Cap(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new screenings can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Screening
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	// The channel buffer is the capacity bound; a full buffer makes
	// Enqueue fail fast instead of blocking.
	q.items = make(chan Screening, q.capacity)

	// Initialize metrics
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueDepth(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a screening to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Screening) bool {
	// The read lock keeps Close from closing the channel mid-send.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.items <- s:
		depth := len(q.items)
		metrics.UpdateQueueDepth(depth)
		metrics.UpdateQueueUtilization(float64(depth) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns the shared consumer channel. Consumers stop by
// observing the channel close or their own context, so an abandoned
// receive never drops a screening.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Screening {
	return q.items
}

// Len returns the current number of queued screenings.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	depth := len(q.items)
	metrics.UpdateQueueDepth(depth)
	metrics.UpdateQueueUtilization(float64(depth) / float64(q.capacity))
	return depth
}

// Cap returns the maximum number of queued screenings.
func (q *InMemoryQueue) Cap(ctx context.Context) int {
	return q.capacity
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	// Close the items channel to signal consumers to stop
	close(q.items)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
