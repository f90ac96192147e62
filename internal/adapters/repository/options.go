package repository

// DefaultMaxRuns bounds a MemoryStore created without WithMaxRuns.
const DefaultMaxRuns = 100

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxRuns sets how many runs are kept before the oldest is evicted.
func WithMaxRuns(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxRuns = n
		}
	}
}

// WithMetrics toggles publishing the store size to Prometheus.
func WithMetrics(enabled bool) Option {
	return func(s *MemoryStore) {
		s.metrics = enabled
	}
}
