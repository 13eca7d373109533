package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specrun/internal/engine"
	"specrun/internal/reporting"
	"specrun/internal/runner"
)

func TestReporter_WriteTextfile(t *testing.T) {
	suite := engine.NewSuite("m", engine.FunSuite, func(s *engine.Scope) {
		s.Test("passes", func(ctx context.Context, f *engine.Fixture) error {
			f.Info("recorded")
			return nil
		})
		s.Test("fails", func(context.Context, *engine.Fixture) error { return errors.New("boom") })
		s.Test("pending", func(context.Context, *engine.Fixture) error { return engine.Pending() })
		s.Ignore("ignored", func(context.Context, *engine.Fixture) error { return nil })
	})

	metricsReporter := NewReporter()
	recorder := reporting.NewEventRecordingReporter()
	runner.New(runner.Config{}).Run(context.Background(), []*engine.Suite{suite},
		reporting.MultiReporter{recorder, metricsReporter})

	path := filepath.Join(t.TempDir(), "specrun.prom")
	require.NoError(t, metricsReporter.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `specrun_tests_total{outcome="succeeded",suite="m"} 1`)
	assert.Contains(t, text, `specrun_tests_total{outcome="failed",suite="m"} 1`)
	assert.Contains(t, text, `specrun_tests_total{outcome="pending",suite="m"} 1`)
	assert.Contains(t, text, `specrun_tests_total{outcome="ignored",suite="m"} 1`)
	assert.Contains(t, text, `specrun_suites_total{outcome="completed"} 1`)
	assert.Contains(t, text, `specrun_informers_total{kind="info"} 1`)
	assert.Contains(t, text, `specrun_run_status{status="completed"} 1`)
	assert.Contains(t, text, `specrun_run_status{status="aborted"} 0`)
	assert.Contains(t, text, `specrun_run_expected_tests 3`)
	assert.Contains(t, text, `specrun_tests_duration_seconds_count{suite="m"} 3`)
}

func TestReporter_AbortedRun(t *testing.T) {
	suite := engine.NewSuite("severe", engine.FunSuite, func(s *engine.Scope) {
		s.Test("explodes", func(context.Context, *engine.Fixture) error {
			return engine.Severe(errors.New("fatal"))
		})
	})

	metricsReporter := NewReporter()
	runner.New(runner.Config{}).Run(context.Background(), []*engine.Suite{suite}, metricsReporter)

	families, err := metricsReporter.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "/" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, values["specrun_suites_total/aborted"])
	assert.Equal(t, 1.0, values["specrun_run_status/aborted"])
	assert.Equal(t, 0.0, values["specrun_run_status/completed"])
}
