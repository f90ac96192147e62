package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as the "outcome" label of runs_total.
const (
	OutcomeSuccess    = "success"
	OutcomeDegenerate = "degenerate_input"
	OutcomeInfeasible = "infeasible_grouping"
	OutcomeInvalid    = "invalid_input"
	OutcomeError      = "error"
)

// groupSizeBuckets covers deliberation-sized groups.
var groupSizeBuckets = []float64{2, 3, 4, 5, 6, 7, 8, 10, 12, 15, 20, 30} //nolint:gochecknoglobals // fixed bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Grouping runs
	runs              *prometheus.CounterVec
	runDuration       prometheus.Histogram
	participants      prometheus.Gauge
	groupSize         *prometheus.HistogramVec
	explainedVariance *prometheus.GaugeVec
	storedRuns        prometheus.Gauge

	// Async jobs
	queueSize       prometheus.Gauge
	queueRejections *prometheus.CounterVec
	queueWait       prometheus.Histogram
	workerCount     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "radial",
		subsystem:        "grouping",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // collector declarations
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of grouping runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_milliseconds",
		Help:        "Wall time of a grouping run in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.participants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "participants",
		Help:        "Attending participants in the most recent successful run",
		ConstLabels: m.constLabels,
	})

	m.groupSize = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "group_size",
		Help:        "Sizes of produced deliberation groups by round",
		Buckets:     groupSizeBuckets,
		ConstLabels: m.constLabels,
	}, []string{"round"})

	m.explainedVariance = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "explained_variance_ratio",
		Help:        "Variance ratio explained by each principal component in the most recent run",
		ConstLabels: m.constLabels,
	}, []string{"component"})

	m.storedRuns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stored_runs",
		Help:        "Completed runs held in the run store",
		ConstLabels: m.constLabels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "size",
		Help:        "Grouping jobs waiting for a worker",
		ConstLabels: m.constLabels,
	})

	m.queueRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "rejections_total",
		Help:        "Grouping jobs refused by the queue by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.queueWait = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "wait_milliseconds",
		Help:        "Time a grouping job spent queued before a worker picked it up",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "worker",
		Name:        "count",
		Help:        "Running grouping workers",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "HTTP errors by endpoint, method and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Current number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// RecordRun counts a run with the given outcome. Unknown outcomes are
// counted as OutcomeError.
func (m *Manager) RecordRun(outcome string) {
	if ValidOutcome(outcome) != nil {
		outcome = OutcomeError
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// RecordRunDuration observes a run's wall time.
func (m *Manager) RecordRunDuration(ms float64) { m.runDuration.Observe(ms) }

// UpdateParticipants sets the attending population of the latest run.
func (m *Manager) UpdateParticipants(n int) { m.participants.Set(float64(n)) }

// ObserveGroupSize records one produced group.
func (m *Manager) ObserveGroupSize(round string, size int) {
	m.groupSize.WithLabelValues(round).Observe(float64(size))
}

// UpdateExplainedVariance sets the ratio for component index c (0-based).
func (m *Manager) UpdateExplainedVariance(c int, ratio float64) {
	m.explainedVariance.WithLabelValues("pc" + strconv.Itoa(c+1)).Set(ratio)
}

// UpdateStoredRuns sets the size of the run store.
func (m *Manager) UpdateStoredRuns(n int) { m.storedRuns.Set(float64(n)) }

// UpdateQueueSize sets the number of queued jobs.
func (m *Manager) UpdateQueueSize(n int) { m.queueSize.Set(float64(n)) }

// RecordQueueRejection counts a job the queue refused.
func (m *Manager) RecordQueueRejection(reason string) {
	m.queueRejections.WithLabelValues(reason).Inc()
}

// RecordQueueWait observes how long a job waited in the queue.
func (m *Manager) RecordQueueWait(ms float64) { m.queueWait.Observe(ms) }

// UpdateWorkerCount sets the number of running workers.
func (m *Manager) UpdateWorkerCount(n int) { m.workerCount.Set(float64(n)) }

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordErrorByEndpoint records an HTTP error.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Global wrappers over the default manager.

// RecordRun counts a run with the given outcome.
func RecordRun(outcome string) { globalManager.RecordRun(outcome) }

// RecordRunDuration observes a run's wall time.
func RecordRunDuration(ms float64) { globalManager.RecordRunDuration(ms) }

// UpdateParticipants sets the attending population of the latest run.
func UpdateParticipants(n int) { globalManager.UpdateParticipants(n) }

// ObserveGroupSize records one produced group.
func ObserveGroupSize(round string, size int) { globalManager.ObserveGroupSize(round, size) }

// UpdateExplainedVariance sets the ratio for component index c (0-based).
func UpdateExplainedVariance(c int, ratio float64) { globalManager.UpdateExplainedVariance(c, ratio) }

// UpdateStoredRuns sets the size of the run store.
func UpdateStoredRuns(n int) { globalManager.UpdateStoredRuns(n) }

// UpdateQueueSize sets the number of queued jobs.
func UpdateQueueSize(n int) { globalManager.UpdateQueueSize(n) }

// RecordQueueRejection counts a job the queue refused.
func RecordQueueRejection(reason string) { globalManager.RecordQueueRejection(reason) }

// RecordQueueWait observes how long a job waited in the queue.
func RecordQueueWait(ms float64) { globalManager.RecordQueueWait(ms) }

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(n int) { globalManager.UpdateWorkerCount(n) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, ms)
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
