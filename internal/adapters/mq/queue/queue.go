// Package queue defines the contract for enqueuing and consuming grouping jobs.
//
// The in-memory implementation is a bounded buffered channel; a full queue
// refuses new jobs instead of blocking the caller.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/radial/internal/domain/preference"
	"github.com/okian/radial/internal/domain/rounds"
	"github.com/okian/radial/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Rejection reasons reported to metrics.
const (
	reasonClosed    = "closed"
	reasonFull      = "full"
	reasonCancelled = "context_cancelled"
	reasonDropped   = "dropped"
)

// Job is one asynchronous grouping run.
type Job struct {
	ID       string
	Matrix   *preference.Matrix
	Request  rounds.Request
	Enqueued time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue.
	// Returns ErrFull or ErrClosed when the job was not enqueued.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel that will receive jobs as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new jobs can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	mu       sync.RWMutex
	closed   bool
	onDrop   func(Job)
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejection(reasonClosed)
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejection(reasonCancelled)
		return err
	}
	if j.Enqueued.IsZero() {
		j.Enqueued = time.Now()
	}

	select {
	case q.jobs <- j:
		metrics.UpdateQueueSize(len(q.jobs))
		return nil
	default:
		metrics.RecordQueueRejection(reasonFull)
		return ErrFull
	}
}

// Dequeue returns a channel that will receive jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case j, ok := <-q.jobs:
				if !ok {
					return
				}
				metrics.UpdateQueueSize(len(q.jobs))
				select {
				case out <- j:
					metrics.RecordQueueWait(float64(time.Since(j.Enqueued).Milliseconds()))
				case <-ctx.Done():
					q.drop(j)
					return
				}
			}
		}
	}()
	return out
}

// Drain removes and returns the jobs still buffered without blocking.
// Callers use it after Close to account for jobs no consumer will take.
func (q *InMemoryQueue) Drain() []Job {
	var out []Job
	for {
		select {
		case j, ok := <-q.jobs:
			if !ok {
				metrics.UpdateQueueSize(0)
				return out
			}
			out = append(out, j)
		default:
			metrics.UpdateQueueSize(len(q.jobs))
			return out
		}
	}
}

// drop hands a job that left the buffer but never reached a consumer to the
// drop handler.
func (q *InMemoryQueue) drop(j Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	metrics.RecordQueueRejection(reasonDropped)
	if q.onDrop != nil {
		q.onDrop(j)
	}
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
