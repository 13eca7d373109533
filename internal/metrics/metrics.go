// Package metrics turns the event log of a run into Prometheus metrics.
package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"specrun/internal/events"
	"specrun/pkg/logging"
)

const namespace = "specrun"

// Reporter counts outcomes into its own registry. Each run gets a fresh
// Reporter so that a textfile describes exactly one run.
type Reporter struct {
	registry *prometheus.Registry

	tests         *prometheus.CounterVec
	testDuration  *prometheus.HistogramVec
	suites        *prometheus.CounterVec
	informers     *prometheus.CounterVec
	runDuration   prometheus.Gauge
	runStatus     *prometheus.GaugeVec
	expectedTests prometheus.Gauge
}

// NewReporter creates a Reporter with a private registry.
func NewReporter() *Reporter {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Reporter{
		registry: registry,

		// tests counts terminal test events.
		// Labels: suite, outcome (succeeded, failed, pending, canceled, ignored)
		tests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tests",
			Name:      "total",
			Help:      "Tests by terminal outcome",
		}, []string{"suite", "outcome"}),

		testDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tests",
			Name:      "duration_seconds",
			Help:      "Test execution time in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"suite"}),

		// suites counts finished suites.
		// Labels: outcome (completed, aborted)
		suites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "suites",
			Name:      "total",
			Help:      "Suites by outcome",
		}, []string{"outcome"}),

		informers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "informers_total",
			Help:      "Informer events by kind, recorded ones included",
		}, []string{"kind"}),

		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of the run",
		}),

		// runStatus is 1 for the status the run ended with.
		// Labels: status (completed, stopped, aborted)
		runStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "status",
			Help:      "Terminal status of the run",
		}, []string{"status"}),

		expectedTests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "expected_tests",
			Help:      "Tests the run was expected to execute",
		}),
	}
}

// Registry returns the registry holding the run's metrics.
func (r *Reporter) Registry() *prometheus.Registry {
	return r.registry
}

// Apply implements reporting.Reporter.
func (r *Reporter) Apply(e events.Event) {
	switch ev := e.(type) {
	case *events.RunStarting:
		r.expectedTests.Set(float64(ev.ExpectedTests))
	case *events.RunCompleted:
		r.finishRun("completed", ev.RunEnded)
	case *events.RunStopped:
		r.finishRun("stopped", ev.RunEnded)
	case *events.RunAborted:
		r.finishRun("aborted", ev.RunEnded)
	case *events.SuiteCompleted:
		r.suites.WithLabelValues("completed").Inc()
	case *events.SuiteAborted:
		r.suites.WithLabelValues("aborted").Inc()
	case *events.TestIgnored:
		r.tests.WithLabelValues(ev.SuiteName(), "ignored").Inc()
	default:
		if events.IsTestTerminal(e.Type()) {
			r.testResult(e)
			return
		}
		if kind, ok := informerKind(e.Type()); ok {
			r.informers.WithLabelValues(kind).Inc()
		}
	}
}

func (r *Reporter) testResult(e events.Event) {
	outcome := strings.TrimPrefix(string(e.Type()), "test.")
	r.tests.WithLabelValues(e.SuiteName(), outcome).Inc()

	var result *events.TestResult
	switch ev := e.(type) {
	case *events.TestSucceeded:
		result = &ev.TestResult
	case *events.TestFailed:
		result = &ev.TestResult
	case *events.TestPending:
		result = &ev.TestResult
	case *events.TestCanceled:
		result = &ev.TestResult
	default:
		return
	}
	r.testDuration.WithLabelValues(e.SuiteName()).Observe(result.Duration.Seconds())
	for _, rec := range result.Recorded {
		if kind, ok := informerKind(rec.Type()); ok {
			r.informers.WithLabelValues(kind).Inc()
		}
	}
}

func (r *Reporter) finishRun(status string, ended events.RunEnded) {
	r.runDuration.Set(ended.Duration.Seconds())
	for _, s := range []string{"completed", "stopped", "aborted"} {
		v := 0.0
		if s == status {
			v = 1
		}
		r.runStatus.WithLabelValues(s).Set(v)
	}
}

func informerKind(t events.EventType) (string, bool) {
	switch t {
	case events.EventTypeInfoProvided:
		return "info", true
	case events.EventTypeNoteProvided:
		return "note", true
	case events.EventTypeAlertProvided:
		return "alert", true
	case events.EventTypeMarkupProvided:
		return "markup", true
	}
	return "", false
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (r *Reporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	logging.Info("Metrics", "Wrote run metrics to %s", path)
	return nil
}
