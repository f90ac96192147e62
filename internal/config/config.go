// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and the environment on top.
// - All loading functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// HomogeneousGroups is K, the number of first-round groups.
	HomogeneousGroups int `koanf:"homogeneous_groups"`

	// HeterogeneousGroups is H, the number of second-round groups.
	HeterogeneousGroups int `koanf:"heterogeneous_groups"`

	// MinGroupSize rejects groupings that would produce smaller groups.
	MinGroupSize int `koanf:"min_group_size"`

	// Seed drives every random choice of a run.
	Seed int64 `koanf:"seed"`

	// AbstainValue encodes an abstention between reject (0) and approve (1).
	AbstainValue float64 `koanf:"abstain_value"`

	// Standardize scales project columns to unit variance before PCA.
	Standardize bool `koanf:"standardize"`

	// DegenerateFallback groups identical voters by id instead of failing.
	DegenerateFallback bool `koanf:"degenerate_fallback"`

	// Labels overrides the homogeneous group labels (A, B, C... by default).
	Labels []string `koanf:"labels"`

	// MaxStoredRuns bounds the in-memory run store of the HTTP service.
	MaxStoredRuns int `koanf:"max_stored_runs"`

	// WorkerCount is the number of goroutines draining queued runs.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds pending queued runs; a full queue rejects new ones.
	QueueSize int `koanf:"queue_size"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		HomogeneousGroups:   6,
		HeterogeneousGroups: 7,
		MinGroupSize:        2,
		Seed:                42,
		AbstainValue:        0.5,
		MaxStoredRuns:       100,
		WorkerCount:         2,
		QueueSize:           64,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.HomogeneousGroups < 1:
		return fmt.Errorf("%w: homogeneous_groups must be positive", ErrInvalidConfig)
	case c.HeterogeneousGroups < 1:
		return fmt.Errorf("%w: heterogeneous_groups must be positive", ErrInvalidConfig)
	case c.MinGroupSize < 1:
		return fmt.Errorf("%w: min_group_size must be positive", ErrInvalidConfig)
	case c.AbstainValue < 0 || c.AbstainValue > 1:
		return fmt.Errorf("%w: abstain_value must be within [0, 1]", ErrInvalidConfig)
	case c.MaxStoredRuns < 1:
		return fmt.Errorf("%w: max_stored_runs must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
