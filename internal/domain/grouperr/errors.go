// Package grouperr defines the error kinds raised by the grouping core.
//
// Every kind is non-retryable: it reports a data or configuration problem
// that the caller must fix before invoking again.
package grouperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds for grouping errors. These allow errors.Is from callers.
var (
	ErrDegenerateInput    = errors.New("degenerate input")
	ErrInfeasibleGrouping = errors.New("infeasible grouping")
	ErrInvalidInput       = errors.New("invalid input")
)

// DegenerateInputError reports a preference matrix with zero variance.
type DegenerateInputError struct {
	Participants int
	Projects     int
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: %dx%d preference matrix has zero variance", ErrDegenerateInput, e.Participants, e.Projects)
}

// Is matches ErrDegenerateInput.
func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerateInput }

// InfeasibleGroupingError reports a group count that the attending population
// cannot satisfy. MaxFeasible is the largest count that would succeed, or 0
// when no count can.
type InfeasibleGroupingError struct {
	Requested   int
	MaxFeasible int
	Attending   int
	MinSize     int
}

func (e *InfeasibleGroupingError) Error() string {
	return fmt.Sprintf("%s: %d groups requested for %d attending participants (min size %d); max feasible is %d",
		ErrInfeasibleGrouping, e.Requested, e.Attending, e.MinSize, e.MaxFeasible)
}

// Is matches ErrInfeasibleGrouping.
func (e *InfeasibleGroupingError) Is(target error) bool { return target == ErrInfeasibleGrouping }

// InvalidInputError reports malformed arguments such as mismatched dimensions
// or non-positive group counts.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

// Is matches ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid is a shorthand constructor for InvalidInputError.
func Invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
