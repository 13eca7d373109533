package selftest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specrun/internal/reporting"
	"specrun/internal/runner"
	"specrun/internal/suites"
)

func TestSelfTestSuitesPass(t *testing.T) {
	for _, mode := range []runner.Mode{runner.Sequential, runner.Parallel} {
		t.Run(mode.String(), func(t *testing.T) {
			built := suites.Build()
			require.Len(t, built, 5)
			for _, s := range built {
				require.NoError(t, s.Err(), s.Name())
			}

			recorder := reporting.NewEventRecordingReporter()
			status := runner.New(runner.Config{Mode: mode, Workers: 4}).Run(context.Background(), built, recorder)

			assert.True(t, status.Succeeded(), "summary: %s", status.Summary)
			assert.Equal(t, 5, status.Summary.SuitesCompleted)
			assert.Equal(t, 1, status.Summary.TestsPending)
			assert.Equal(t, 1, status.Summary.TestsCanceled)
			assert.Equal(t, 1, status.Summary.TestsIgnored)
			assert.Empty(t, recorder.TestFailedEvents())
		})
	}
}

func TestSelfTestNames(t *testing.T) {
	assert.Equal(t, []string{
		"async/timers",
		"engine/lifecycle",
		"engine/outcomes",
		"engine/resolution",
		"props/arithmetic",
	}, suites.SortedNames())

	s, err := suites.Get("engine/resolution")
	require.NoError(t, err)
	assert.Contains(t, s.TestNames(), "The name resolver computes the child index path of a test")

	props, err := suites.Get("props/arithmetic")
	require.NoError(t, err)
	assert.Equal(t, "props.arithmetic", props.ID())
}
