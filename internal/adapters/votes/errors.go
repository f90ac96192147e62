package votes

import "errors"

// Sentinel error kinds for the vote loader.
var (
	ErrMissingHeader = errors.New("votes: missing header row")
	ErrBadHeader     = errors.New("votes: header must start with a participant id column")
)
