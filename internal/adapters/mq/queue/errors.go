package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("job queue is full")
	ErrClosed = errors.New("job queue is closed")

	// ErrDropped marks a queued job that was never processed.
	ErrDropped = errors.New("job dropped before processing")
)
