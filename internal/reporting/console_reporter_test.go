package reporting

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specrun/internal/engine"
	"specrun/internal/events"
)

func TestConsoleReporter_Output(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, ConsoleOptions{NoColor: true})

	note := events.NewInformer(engine.InformerNote, "stack", "stack", "A stack pops", "popped 3", 0, time.Time{})
	td := engine.TestData{Name: "A stack pops", Text: "pops"}
	failing := engine.TestData{Name: "A stack peeks", Text: "peeks"}

	r.Apply(events.NewSuiteStarting("stack", "stack", engine.FunSpec, 2))
	r.Apply(events.NewScopeOpened("stack", "stack", "A stack", 0))
	r.Apply(events.NewTestStarting("stack", "stack", td, 1))
	r.Apply(events.NewTestResult("stack", "stack", td, 1, engine.Succeeded(), 0, []events.Event{note}))
	r.Apply(events.NewTestResult("stack", "stack", failing, 1, engine.Failed(errors.New("expected 3\ngot 4")), 0, nil))
	r.Apply(events.NewTestIgnored("stack", "stack", engine.TestData{Name: "A stack later", Text: "later"}, 1))
	r.Apply(events.NewRunCompleted(events.Summary{TestsSucceeded: 1, TestsFailed: 1, TestsIgnored: 1, SuitesCompleted: 1}, time.Second))

	out := buf.String()
	assert.Equal(t, strings.Join([]string{
		"stack:",
		"A stack",
		"  - pops",
		"    + popped 3",
		"  - peeks *** FAILED ***",
		"      expected 3",
		"      got 4",
		"  - later !!! IGNORED !!!",
		"",
		"Run completed in 1s.",
		"Suites: completed 1, aborted 0",
		"Tests: succeeded 1, failed 1, canceled 0, ignored 1, pending 0",
		"*** 1 TEST FAILED ***",
		"",
	}, "\n"), out)
}

func TestConsoleReporter_TruncatesLongMessages(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, ConsoleOptions{NoColor: true, Width: 30})

	td := engine.TestData{Name: "t", Text: "t"}
	r.Apply(events.NewTestResult("s", "s", td, 0, engine.Failed(errors.New(strings.Repeat("x", 80))), 0, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "…"))
	assert.LessOrEqual(t, len([]rune(lines[1])), 30)
}

func TestConsoleReporter_Aborted(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, ConsoleOptions{NoColor: true})

	r.Apply(events.NewSuiteAborted("s", "s", "boom", 0, errors.New("severe: oom")))
	r.Apply(events.NewRunAborted(events.Summary{SuitesAborted: 1}, 0, errors.New("severe: oom")))

	out := buf.String()
	assert.Contains(t, out, `*** SUITE ABORTED in "boom" ***`)
	assert.Contains(t, out, "Run aborted in 0s.")
	assert.Contains(t, out, "*** 1 SUITE ABORTED ***")
}

func TestJSONLinesReporter(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(NewJSONLinesReporter(&buf), events.NewTracker("run-json"))

	sink.Emit(events.NewRunStarting(1, 2))
	sink.Emit(events.NewRunCompleted(events.Summary{}, 0))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "run.starting", first["type"])
	assert.Equal(t, "run-json", first["run_id"])
	assert.Equal(t, float64(1), first["ordinal"])
	assert.Equal(t, float64(2), first["expected_tests"])
}

func TestReportFileReporter(t *testing.T) {
	dir := t.TempDir()
	r := NewReportFileReporter(dir)
	sink := NewSink(r, events.NewTracker("run-file"))

	note := events.NewInformer(engine.InformerInfo, "s", "s", "t1", "inside", 0, time.Time{})
	sink.Emit(events.NewRunStarting(1, 2))
	sink.Emit(events.NewTestResult("s", "s", testData("t1"), 0, engine.Succeeded(), time.Millisecond, []events.Event{note}))
	sink.Emit(events.NewTestResult("s", "s", testData("t2"), 0, engine.Canceled(engine.Cancel("no network")), 0, nil))
	sink.Emit(events.NewRunCompleted(sink.Summary(), time.Second))

	require.NoError(t, r.Err())
	require.NotEmpty(t, r.Path())
	assert.Contains(t, r.Path(), "specrun-report-")

	data, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	var report RunReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "run-file", report.RunID)
	assert.Equal(t, "completed", report.Status)
	require.Len(t, report.Tests, 2)
	assert.Equal(t, "succeeded", report.Tests[0].Outcome)
	assert.Equal(t, []string{"inside"}, report.Tests[0].Recorded)
	assert.Equal(t, "canceled", report.Tests[1].Outcome)
	assert.Equal(t, "test canceled: no network", report.Tests[1].Message)
	assert.Equal(t, 1, report.Summary.TestsCanceled)
}
