package service

import (
	"github.com/okian/radial/internal/adapters/repository"
	"github.com/okian/radial/internal/domain/rounds"
	"github.com/okian/radial/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithOrchestrator sets the grouping pipeline.
func WithOrchestrator(o *rounds.Orchestrator) Option {
	return func(s *Service) {
		if o != nil {
			s.orchestrator = o
		}
	}
}

// WithStore sets the run store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults sets the group counts and seed used when a request leaves
// them unset.
func WithDefaults(homogeneous, heterogeneous int, seed int64) Option {
	return func(s *Service) {
		if homogeneous > 0 {
			s.defaultK = homogeneous
		}
		if heterogeneous > 0 {
			s.defaultH = heterogeneous
		}
		s.defaultSeed = seed
	}
}

// WithWorkerCount sets the number of goroutines running queued jobs.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}
