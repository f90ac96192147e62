// Package service wires the grouping pipeline to storage, logging and
// metrics, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/radial/internal/adapters/mq/queue"
	"github.com/okian/radial/internal/adapters/mq/worker"
	"github.com/okian/radial/internal/adapters/repository"
	"github.com/okian/radial/internal/config"
	"github.com/okian/radial/internal/domain/balance"
	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
	"github.com/okian/radial/internal/domain/reduction"
	"github.com/okian/radial/internal/domain/rounds"
	"github.com/okian/radial/pkg/logger"
	"github.com/okian/radial/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultHomogeneous   = 6
	defaultHeterogeneous = 7
	defaultWorkerCount   = 2
	defaultQueueSize     = 64
)

// Params are the per-run inputs. Nil group counts and a nil seed fall back
// to the service defaults; an explicit non-positive count is rejected as
// invalid input.
type Params struct {
	Attendance            []string
	SecondRoundAttendance []string
	HomogeneousGroups     *int
	HeterogeneousGroups   *int
	Seed                  *int64
}

// Service runs groupings synchronously or through a worker pool and keeps
// the results in a run store.
type Service struct {
	mu sync.RWMutex

	orchestrator *rounds.Orchestrator
	store        repository.Store
	jobs         *queue.InMemoryQueue
	pool         *worker.Pool

	defaultK    int
	defaultH    int
	defaultSeed int64
	workerCount int
	queueSize   int

	started bool
	logger  logger.Logger
}

// New constructs a Service. Without options it uses PCA with the default
// balancer and an in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		defaultK:    defaultHomogeneous,
		defaultH:    defaultHeterogeneous,
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.orchestrator == nil {
		s.orchestrator = rounds.New()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// NewFromConfig builds the pipeline and store described by cfg. Extra options
// are applied last.
func NewFromConfig(cfg *config.Config, opts ...Option) *Service {
	base := []Option{
		WithOrchestrator(Orchestrator(cfg)),
		WithStore(repository.NewMemoryStore(repository.WithMaxRuns(cfg.MaxStoredRuns))),
		WithDefaults(cfg.HomogeneousGroups, cfg.HeterogeneousGroups, cfg.Seed),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
	}
	return New(append(base, opts...)...)
}

// Orchestrator builds the grouping pipeline described by cfg.
func Orchestrator(cfg *config.Config) *rounds.Orchestrator {
	return rounds.New(
		rounds.WithReducer(reduction.NewPCA(
			reduction.WithAbstainValue(cfg.AbstainValue),
			reduction.WithStandardize(cfg.Standardize),
		)),
		rounds.WithBalancer(balance.New(
			balance.WithMinGroupSize(cfg.MinGroupSize),
			balance.WithLabels(cfg.Labels),
		)),
		rounds.WithDegenerateFallback(cfg.DegenerateFallback),
	)
}

// Start launches the worker pool for queued runs.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize), queue.WithDropHandler(s.abandon))
	s.pool = worker.NewPool(s.workerCount, s.jobs, s.orchestrator, s)
	s.pool.Start(ctx)
	s.started = true

	s.logger.Info(ctx, "grouping service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("defaultHomogeneous", s.defaultK),
		logger.Int("defaultHeterogeneous", s.defaultH),
	)
	return nil
}

// Stop stops the workers. Queued runs no worker picked up are stored as
// failed with queue.ErrDropped.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	err := s.pool.Shutdown(ctx)
	for _, job := range s.jobs.Drain() {
		s.abandon(job)
	}
	s.logger.Info(ctx, "grouping service stopped")
	return err
}

// abandon stores a queued run that no worker will process as failed. It uses
// a fresh context since the caller's has usually ended.
func (s *Service) abandon(job queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	ctx := context.Background()
	if err := s.Complete(ctx, job, nil, queue.ErrDropped, 0); err != nil {
		s.logger.Error(ctx, "failed to record dropped run", logger.String("run_id", job.ID), logger.Error(err))
	}
}

// Run computes a grouping synchronously and stores it. Grouping errors are
// returned unchanged so callers can match the grouperr kinds; the failed run
// is not stored.
func (s *Service) Run(ctx context.Context, m *preference.Matrix, p Params) (repository.Run, error) {
	if m == nil {
		return repository.Run{}, ErrNilMatrix
	}
	req := s.resolve(p)
	run := s.newRun(m, req)

	start := time.Now()
	res, err := s.orchestrator.Run(ctx, m, req)
	elapsed := time.Since(start)

	s.observe(ctx, run.ID, res, err, elapsed)
	if err != nil {
		return repository.Run{}, err
	}
	run = finish(run, res, nil)
	if err := s.store.Put(ctx, run); err != nil {
		return repository.Run{}, fmt.Errorf("store run %s: %w", run.ID, err)
	}
	return run, nil
}

// Submit queues a grouping and returns its pending run. The run is replaced
// in the store once a worker finishes it.
func (s *Service) Submit(ctx context.Context, m *preference.Matrix, p Params) (repository.Run, error) {
	if m == nil {
		return repository.Run{}, ErrNilMatrix
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return repository.Run{}, ErrNotStarted
	}

	req := s.resolve(p)
	run := s.newRun(m, req)
	if err := s.store.Put(ctx, run); err != nil {
		return repository.Run{}, fmt.Errorf("store run %s: %w", run.ID, err)
	}
	if err := s.jobs.Enqueue(ctx, queue.Job{ID: run.ID, Matrix: m, Request: req, Enqueued: run.CreatedAt}); err != nil {
		failed := finish(run, nil, err)
		_ = s.store.Put(ctx, failed)
		return repository.Run{}, err
	}
	s.logger.Debug(ctx, "grouping queued", logger.String("run_id", run.ID))
	return run, nil
}

// Complete records the outcome of a queued run. It implements
// worker.Recorder.
func (s *Service) Complete(ctx context.Context, job queue.Job, res *rounds.Result, runErr error, elapsed time.Duration) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	s.observe(ctx, job.ID, res, runErr, elapsed)

	run, err := s.store.Get(ctx, job.ID)
	if errors.Is(err, repository.ErrNotFound) {
		run = s.newRun(job.Matrix, job.Request)
		run.ID = job.ID
		run.CreatedAt = job.Enqueued
	} else if err != nil {
		return err
	}
	return s.store.Put(ctx, finish(run, res, runErr))
}

// Get returns a stored run.
func (s *Service) Get(ctx context.Context, id string) (repository.Run, error) {
	return s.store.Get(ctx, id)
}

// Latest returns up to n stored runs, newest first.
func (s *Service) Latest(ctx context.Context, n int) ([]repository.Run, error) {
	return s.store.Latest(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":              s.started,
		"workerCount":          s.workerCount,
		"queueSize":            s.queueSize,
		"defaultHomogeneous":   s.defaultK,
		"defaultHeterogeneous": s.defaultH,
		"defaultSeed":          s.defaultSeed,
		"storedRuns":           s.store.Count(ctx),
	}
	if s.started {
		stats["queueLength"] = s.jobs.Len(ctx)
	}
	return stats
}

func (s *Service) resolve(p Params) rounds.Request {
	req := rounds.Request{
		Attendance:            p.Attendance,
		SecondRoundAttendance: p.SecondRoundAttendance,
		HomogeneousGroups:     s.defaultK,
		HeterogeneousGroups:   s.defaultH,
		Seed:                  s.defaultSeed,
	}
	if p.HomogeneousGroups != nil {
		req.HomogeneousGroups = *p.HomogeneousGroups
	}
	if p.HeterogeneousGroups != nil {
		req.HeterogeneousGroups = *p.HeterogeneousGroups
	}
	if p.Seed != nil {
		req.Seed = *p.Seed
	}
	return req
}

func (s *Service) newRun(m *preference.Matrix, req rounds.Request) repository.Run {
	n := m.Rows()
	if req.Attendance != nil {
		n = len(req.Attendance)
	}
	return repository.Run{
		ID:                  uuid.NewString(),
		Status:              repository.StatusPending,
		CreatedAt:           time.Now().UTC(),
		HomogeneousGroups:   req.HomogeneousGroups,
		HeterogeneousGroups: req.HeterogeneousGroups,
		Participants:        n,
	}
}

// observe logs a finished run and records its metrics.
func (s *Service) observe(ctx context.Context, id string, res *rounds.Result, err error, elapsed time.Duration) {
	outcome := Outcome(err)
	metrics.RecordRun(outcome)
	metrics.RecordRunDuration(float64(elapsed.Microseconds()) / 1000)

	if err != nil {
		s.logger.Warn(ctx, "grouping failed",
			logger.String("run_id", id),
			logger.String("outcome", outcome),
			logger.Error(err),
		)
		return
	}

	metrics.UpdateParticipants(len(res.Projections))
	for c, ratio := range res.ExplainedVariance {
		metrics.UpdateExplainedVariance(c, ratio)
	}
	for _, g := range res.Homogeneous {
		metrics.ObserveGroupSize(string(model.Homogeneous), g.Size())
	}
	for _, g := range res.Heterogeneous {
		metrics.ObserveGroupSize(string(model.Heterogeneous), g.Size())
	}
	s.logger.Info(ctx, "grouping finished",
		logger.String("run_id", id),
		logger.Int("participants", len(res.Projections)),
		logger.Int("homogeneous", len(res.Homogeneous)),
		logger.Int("heterogeneous", len(res.Heterogeneous)),
		logger.Int64("seed", res.Seed),
		logger.Bool("degenerate", res.Degenerate),
		logger.Duration("took", elapsed),
	)
}

// Outcome maps a run error to its metrics outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, grouperr.ErrDegenerateInput):
		return metrics.OutcomeDegenerate
	case errors.Is(err, grouperr.ErrInfeasibleGrouping):
		return metrics.OutcomeInfeasible
	case errors.Is(err, grouperr.ErrInvalidInput):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

func finish(run repository.Run, res *rounds.Result, err error) repository.Run {
	run.CompletedAt = time.Now().UTC()
	if err != nil {
		run.Status = repository.StatusFailed
		run.Error = err.Error()
		run.ErrorKind = Outcome(err)
		run.Result = nil
		return run
	}
	run.Status = repository.StatusDone
	run.Error, run.ErrorKind = "", ""
	run.Result = res
	if res != nil {
		run.Participants = len(res.Projections)
	}
	return run
}
