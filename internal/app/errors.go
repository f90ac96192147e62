package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNilMatrix  = errors.New("preference matrix is required")
)
