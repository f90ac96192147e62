// Package repository defines the run store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/radial/internal/domain/rounds"
)

// Run statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Run is one grouping run. Synchronous runs are stored once done; queued runs
// are stored as pending and replaced when a worker finishes them.
type Run struct {
	ID                  string         `json:"id"`
	Status              string         `json:"status"`
	Error               string         `json:"error,omitempty"`
	ErrorKind           string         `json:"error_kind,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	CompletedAt         time.Time      `json:"completed_at,omitzero"`
	HomogeneousGroups   int            `json:"homogeneous_groups"`
	HeterogeneousGroups int            `json:"heterogeneous_groups"`
	Participants        int            `json:"participants"`
	Result              *rounds.Result `json:"result,omitempty"`
}

// Store provides read/write access to completed runs.
type Store interface {
	// Put stores a run. A run with an existing ID replaces the old one.
	Put(ctx context.Context, run Run) error

	// Get returns the run with the given ID.
	// Returns ErrNotFound if the run is unknown or was evicted.
	Get(ctx context.Context, id string) (Run, error)

	// Latest returns up to n runs, newest first.
	Latest(ctx context.Context, n int) ([]Run, error)

	// Count returns the number of runs held.
	Count(ctx context.Context) int
}
