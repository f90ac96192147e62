package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should register its collectors on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.RecordRun(OutcomeSuccess)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_runs_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording runs", func() {
			m.RecordRun(OutcomeSuccess)
			m.RecordRun(OutcomeSuccess)
			m.RecordRun(OutcomeInfeasible)
			m.RecordRun("bogus")

			Convey("Then counts should be split by outcome", func() {
				So(testutil.ToFloat64(m.runs.WithLabelValues(OutcomeSuccess)), ShouldEqual, 2)
				So(testutil.ToFloat64(m.runs.WithLabelValues(OutcomeInfeasible)), ShouldEqual, 1)
				So(testutil.ToFloat64(m.runs.WithLabelValues(OutcomeError)), ShouldEqual, 1)
			})
		})

		Convey("When updating gauges", func() {
			m.UpdateParticipants(42)
			m.UpdateExplainedVariance(0, 0.61)
			m.UpdateStoredRuns(3)
			m.UpdateQueueSize(4)
			m.UpdateWorkerCount(2)

			Convey("Then they should hold the last value", func() {
				So(testutil.ToFloat64(m.participants), ShouldEqual, 42)
				So(testutil.ToFloat64(m.explainedVariance.WithLabelValues("pc1")), ShouldEqual, 0.61)
				So(testutil.ToFloat64(m.storedRuns), ShouldEqual, 3)
				So(testutil.ToFloat64(m.queueSize), ShouldEqual, 4)
				So(testutil.ToFloat64(m.workerCount), ShouldEqual, 2)
			})
		})

		Convey("When observing histograms", func() {
			Convey("Then it should not panic", func() {
				So(func() {
					m.RecordRunDuration(12.5)
					m.RecordQueueWait(1.5)
					m.RecordQueueRejection("full")
					m.ObserveGroupSize("homogeneous", 7)
					m.RecordHTTPRequest("groupings", "POST", "200")
					m.RecordHTTPRequestDuration("groupings", "POST", "200", 3)
					m.RecordErrorByEndpoint("groupings", "POST", "client_error")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGlobalMetrics(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("Then wrappers should record without panicking", func() {
			So(func() {
				RecordRun(OutcomeDegenerate)
				RecordRunDuration(1)
				UpdateParticipants(6)
				ObserveGroupSize("heterogeneous", 3)
				UpdateExplainedVariance(1, 0.2)
				UpdateStoredRuns(1)
				UpdateQueueSize(0)
				RecordQueueRejection("closed")
				RecordQueueWait(2)
				UpdateWorkerCount(1)
				RecordHTTPRequest("stats", "GET", "200")
				RecordHTTPRequestDuration("stats", "GET", "200", 1)
				RecordErrorByEndpoint("stats", "GET", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(4)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})

		Convey("Then outcomes should validate", func() {
			So(ValidOutcome(OutcomeInvalid), ShouldBeNil)
			So(ValidOutcome("nope"), ShouldEqual, ErrUnknownOutcome)
		})
	})
}
