// Package balance turns angular sectors into labeled deliberation groups
// under attendance and minimum-size constraints.
package balance

import (
	"math/rand"

	"github.com/okian/radial/internal/domain/model"
)

// Partitioner splits projections into k balanced sectors.
type Partitioner interface {
	Partition(projections []model.Projection, k int, rng *rand.Rand) ([]model.Sector, error)
}

// Option applies a configuration option to the Balancer.
type Option func(*Balancer)

// WithMinGroupSize sets the smallest acceptable group. Values below 1 are
// ignored.
func WithMinGroupSize(n int) Option {
	return func(b *Balancer) {
		if n > 0 {
			b.minSize = n
		}
	}
}

// WithLabels sets explicit group labels, used in canonical sector order.
func WithLabels(labels []string) Option {
	return func(b *Balancer) {
		if len(labels) > 0 {
			b.labels = append([]string(nil), labels...)
		}
	}
}

// WithPartitioner replaces the sector partitioner.
func WithPartitioner(p Partitioner) Option {
	return func(b *Balancer) {
		if p != nil {
			b.partitioner = p
		}
	}
}
