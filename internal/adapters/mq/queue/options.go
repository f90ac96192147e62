package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of queued jobs.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithDropHandler registers fn for jobs taken off the buffer whose consumer
// context ended before delivery.
func WithDropHandler(fn func(Job)) Option {
	return func(q *InMemoryQueue) {
		q.onDrop = fn
	}
}
