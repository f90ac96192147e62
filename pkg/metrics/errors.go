package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrUnknownOutcome = errors.New("unknown run outcome")
)

// ValidOutcome reports whether outcome is one of the Outcome constants.
func ValidOutcome(outcome string) error {
	switch outcome {
	case OutcomeSuccess, OutcomeDegenerate, OutcomeInfeasible, OutcomeInvalid, OutcomeError:
		return nil
	default:
		return ErrUnknownOutcome
	}
}
