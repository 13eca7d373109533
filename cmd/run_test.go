package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specrun/internal/engine"
	"specrun/internal/suites"
)

func init() {
	suites.Register("cmdtest/failing", func() *engine.Suite {
		return engine.NewSuite("cmdtest/failing", engine.FunSuite, func(s *engine.Scope) {
			s.Test("passes", func(context.Context, *engine.Fixture) error { return nil })
			s.Test("fails", func(context.Context, *engine.Fixture) error { return errors.New("expected failure") })
		})
	})
}

func execRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRunCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", emptyConfig(t)))
	err := cmd.Execute()
	return out.String(), err
}

// emptyConfig returns an explicit configuration file with no settings.
func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
	return path
}

func TestRunCommand_Passing(t *testing.T) {
	out, err := execRun(t, "--suites", "props/*", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "props/arithmetic:")
	assert.Contains(t, out, "addition is commutative")
	assert.Contains(t, out, "All tests passed.")
}

func TestRunCommand_FailingReturnsErrTestsFailed(t *testing.T) {
	out, err := execRun(t, "--suites", "cmdtest/*", "--no-color")
	assert.ErrorIs(t, err, errTestsFailed)
	assert.Contains(t, out, "fails *** FAILED ***")
	assert.Contains(t, out, "expected failure")
}

func TestRunCommand_JSONFormat(t *testing.T) {
	out, err := execRun(t, "--suites", "engine/resolution", "--format", "json", "--parallel", "--workers", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	var first, last map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "run.starting", first["type"])
	assert.Equal(t, "run.completed", last["type"])
}

func TestRunCommand_ReportAndMetrics(t *testing.T) {
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "specrun.prom")

	_, err := execRun(t, "--suites", "engine/outcomes", "--no-color",
		"--report", filepath.Join(dir, "reports"), "--metrics-file", metricsFile)
	require.NoError(t, err)

	reports, err := filepath.Glob(filepath.Join(dir, "reports", "specrun-report-*.json"))
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `specrun_tests_total{outcome="pending",suite="engine/outcomes"} 1`)
}

func TestRunCommand_SingleTestAndTags(t *testing.T) {
	out, err := execRun(t, "--test", "The name resolver joins branch texts with the leaf text", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "joins branch texts")
	assert.NotContains(t, out, "computes the child index path")

	out, err = execRun(t, "--suites", "engine/*", "--include-tags", "unit", "--exclude-tags", "ignore", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "rejects duplicate test names")
	assert.NotContains(t, out, "run before-all before the first test")
}

func TestRunCommand_InvalidSettings(t *testing.T) {
	_, err := execRun(t, "--names", "[unclosed")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errTestsFailed)

	_, err = execRun(t, "--format", "xml")
	assert.Error(t, err)
}

func TestListCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newListCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--suites", "engine/outcomes", "--tags", "--config", emptyConfig(t)})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "engine/outcomes (FunSuite, 5 tests)")
	assert.Contains(t, text, "  - is ignored by tag (ignored) [ignore]")
	assert.Contains(t, text, "1 suites, 5 tests")

	out.Reset()
	cmd = newListCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--suites", "props/*", "--format", "json", "--config", emptyConfig(t)})
	require.NoError(t, cmd.Execute())

	var listed []listedSuite
	require.NoError(t, json.Unmarshal(out.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "PropSpec", listed[0].Style)
	assert.Len(t, listed[0].Tests, 3)
}
