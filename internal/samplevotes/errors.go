package samplevotes

import "errors"

// Error constants.
var (
	ErrInvalidConfig = errors.New("invalid sample config")
	ErrUnhealthy     = errors.New("service health check failed")
	ErrRequestFailed = errors.New("grouping request failed")
)
