// Package queue buffers analysis tickets between the upload handler and
// the worker pool.
package queue

import (
	"context"
	"sync"

	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/pkg/metrics"
)

const defaultQueueCapacity = 64

// Ticket is the payload flowing through the queue.
type Ticket = model.Ticket

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a ticket to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, t Ticket) bool

	// Dequeue blocks for the next ticket. It returns false when the queue
	// is closed and drained or ctx is done.
	Dequeue(ctx context.Context) (Ticket, bool)

	// Drain removes every buffered ticket without blocking.
	Drain() []Ticket

	// Len returns the current number of queued tickets.
	Len(ctx context.Context) int

	// Capacity returns the maximum number of queued tickets.
	Capacity() int

	// Close stops accepting tickets. Already queued tickets are still
	// delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tickets  chan Ticket
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.tickets = make(chan Ticket, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)
	return q
}

// Enqueue adds a ticket to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Ticket) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.tickets <- t:
		metrics.RecordQueueEnqueue()
		q.publishSize()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue blocks until a ticket is available. It returns false once the
// queue is closed and drained, or when ctx is done.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (Ticket, bool) {
	select {
	case t, ok := <-q.tickets:
		if !ok {
			return Ticket{}, false
		}
		metrics.RecordQueueDequeue()
		q.publishSize()
		return t, true
	case <-ctx.Done():
		return Ticket{}, false
	}
}

// Drain removes and returns every ticket still buffered without blocking.
func (q *InMemoryQueue) Drain() []Ticket {
	var out []Ticket
	for {
		select {
		case t, ok := <-q.tickets:
			if !ok {
				q.publishSize()
				return out
			}
			out = append(out, t)
		default:
			q.publishSize()
			return out
		}
	}
}

// Len returns the current number of queued tickets.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return q.publishSize()
}

// Capacity returns the maximum number of queued tickets.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops accepting tickets.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tickets)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishSize() int {
	size := len(q.tickets)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}
