// Package samplevotes generates synthetic approval ballots and submits them
// to a running radial service.
//
// Participants are drawn from a handful of opinion camps. Each camp has its
// own approval probability per project, so the principal axes of a generated
// matrix separate the camps and the radial sectors have something to find.
package samplevotes

import (
	"fmt"
	"time"
)

// Defaults used by DefaultConfig and the CLI flags.
const (
	DefaultParticipants = 60
	DefaultProjects     = 12
	DefaultCamps        = 3
	DefaultNoise        = 0.1
	DefaultAbstainRate  = 0.05
	DefaultSeed         = 42
	DefaultTimeout      = 30 * time.Second
)

// Config holds the shape of a generated ballot set.
type Config struct {
	Participants int     // rows
	Projects     int     // columns
	Camps        int     // opinion clusters
	Noise        float64 // probability a vote ignores the camp profile
	AbstainRate  float64 // probability a cell is left blank
	Seed         int64
	UUIDs        bool // participant ids are random UUIDs instead of p001...
}

// DefaultConfig returns a demo-sized configuration.
func DefaultConfig() Config {
	return Config{
		Participants: DefaultParticipants,
		Projects:     DefaultProjects,
		Camps:        DefaultCamps,
		Noise:        DefaultNoise,
		AbstainRate:  DefaultAbstainRate,
		Seed:         DefaultSeed,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.Participants < 2:
		return fmt.Errorf("%w: participants must be at least 2", ErrInvalidConfig)
	case c.Projects < 2:
		return fmt.Errorf("%w: projects must be at least 2", ErrInvalidConfig)
	case c.Camps < 1:
		return fmt.Errorf("%w: camps must be positive", ErrInvalidConfig)
	case c.Noise < 0 || c.Noise > 1:
		return fmt.Errorf("%w: noise must be within [0, 1]", ErrInvalidConfig)
	case c.AbstainRate < 0 || c.AbstainRate >= 1:
		return fmt.Errorf("%w: abstain rate must be within [0, 1)", ErrInvalidConfig)
	}
	return nil
}
