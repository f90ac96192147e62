// Package model contains domain models passed between layers.
package model

import (
	"strings"

	"github.com/okian/radial/internal/domain/grouperr"
)

// Vote is a single approval-ballot answer over one project.
type Vote int8

// Vote values. The zero value is Reject.
const (
	Reject Vote = iota
	Approve
	Abstain
)

// String returns the canonical spelling used by loaders and exporters.
func (v Vote) String() string {
	switch v {
	case Approve:
		return "approve"
	case Reject:
		return "reject"
	case Abstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// ParseVote maps a raw ballot cell to a Vote. Blank cells are abstentions.
func ParseVote(raw string) (Vote, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "approve", "1", "true":
		return Approve, nil
	case "no", "n", "reject", "0", "false":
		return Reject, nil
	case "", "abstain", "skip", "-":
		return Abstain, nil
	default:
		return Reject, grouperr.Invalid("vote", "unrecognized value %q", raw)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Vote) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Vote) UnmarshalText(b []byte) error {
	parsed, err := ParseVote(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Participant is one voter as loaded from external records.
type Participant struct {
	ID    string // stable across rounds
	Votes []Vote // one per project, in matrix column order
}
