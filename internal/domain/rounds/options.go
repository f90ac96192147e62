// Package rounds runs the two deliberation rounds: homogeneous groups cut
// from the opinion plane, then heterogeneous groups mixed across them.
package rounds

import (
	"github.com/okian/radial/internal/domain/balance"
	"github.com/okian/radial/internal/domain/reduction"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithReducer sets the dimensionality reducer.
func WithReducer(r reduction.Reducer) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reducer = r
		}
	}
}

// WithBalancer sets the group balancer.
func WithBalancer(b *balance.Balancer) Option {
	return func(o *Orchestrator) {
		if b != nil {
			o.balancer = b
		}
	}
}

// WithDegenerateFallback makes a zero-variance matrix fall back to placing
// every attendee at the origin, so groups are cut in participant id order
// instead of failing.
func WithDegenerateFallback(enabled bool) Option {
	return func(o *Orchestrator) {
		o.fallback = enabled
	}
}
