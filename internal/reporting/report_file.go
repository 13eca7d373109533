package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"specrun/internal/events"
	"specrun/pkg/logging"
)

// RunReport is the document a ReportFileReporter writes when a run ends.
type RunReport struct {
	RunID    string         `json:"run_id"`
	Status   string         `json:"status"`
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
	Duration time.Duration  `json:"duration"`
	Summary  events.Summary `json:"summary"`
	Message  string         `json:"message,omitempty"`
	Tests    []TestRecord   `json:"tests"`
	Aborted  []SuiteRecord  `json:"aborted_suites,omitempty"`
}

// TestRecord is one test's entry in a RunReport.
type TestRecord struct {
	Suite    string        `json:"suite"`
	Name     string        `json:"name"`
	Outcome  string        `json:"outcome"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Recorded []string      `json:"recorded,omitempty"`
}

// SuiteRecord is one aborted suite's entry in a RunReport.
type SuiteRecord struct {
	Suite   string `json:"suite"`
	Test    string `json:"test,omitempty"`
	Message string `json:"message"`
}

// ReportFileReporter collects a run and saves it as a timestamped JSON
// file in dir once a run terminal event arrives.
type ReportFileReporter struct {
	dir string

	mu     sync.Mutex
	report RunReport
	path   string
	err    error
}

// NewReportFileReporter creates a reporter saving into dir
func NewReportFileReporter(dir string) *ReportFileReporter {
	return &ReportFileReporter{dir: dir}
}

// NewReportCollector creates a reporter that only builds the RunReport in
// memory.
func NewReportCollector() *ReportFileReporter {
	return &ReportFileReporter{}
}

// Apply implements Reporter
func (r *ReportFileReporter) Apply(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := event.(type) {
	case *events.RunStarting:
		r.report = RunReport{RunID: e.RunID(), Started: e.Timestamp()}
	case *events.TestIgnored:
		r.report.Tests = append(r.report.Tests, TestRecord{Suite: e.Suite, Name: e.Test, Outcome: "ignored"})
	case *events.SuiteAborted:
		r.report.Aborted = append(r.report.Aborted, SuiteRecord{Suite: e.Suite, Test: e.Test, Message: e.Message})
	case *events.RunCompleted:
		r.finish("completed", e.RunEnded)
	case *events.RunStopped:
		r.finish("stopped", e.RunEnded)
	case *events.RunAborted:
		r.finish("aborted", e.RunEnded)
	default:
		if events.IsTestTerminal(event.Type()) {
			r.addResult(event)
		}
	}
}

func (r *ReportFileReporter) addResult(event events.Event) {
	rec := TestRecord{
		Suite:   event.SuiteName(),
		Name:    event.TestName(),
		Outcome: outcomeName(event.Type()),
		Message: events.Message(event),
	}
	switch e := event.(type) {
	case *events.TestSucceeded:
		rec.Duration = e.Duration
	case *events.TestFailed:
		rec.Duration = e.Duration
	case *events.TestPending:
		rec.Duration = e.Duration
	case *events.TestCanceled:
		rec.Duration = e.Duration
	}
	for _, inner := range events.Recorded(event) {
		rec.Recorded = append(rec.Recorded, events.Message(inner))
	}
	r.report.Tests = append(r.report.Tests, rec)
}

func (r *ReportFileReporter) finish(status string, e events.RunEnded) {
	r.report.Status = status
	r.report.RunID = e.Run
	r.report.Finished = e.EventTime
	r.report.Duration = e.Duration
	r.report.Summary = e.Summary
	r.report.Message = e.Message

	if r.dir == "" {
		return
	}
	r.path, r.err = r.save()
	if r.err != nil {
		logging.Error("ReportFile", r.err, "Failed to save run report")
		return
	}
	logging.Info("ReportFile", "Run report saved to %s", r.path)
}

func (r *ReportFileReporter) save() (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := r.report.Finished.Format("20060102-150405")
	filename := fmt.Sprintf("specrun-report-%s.json", timestamp)
	fullPath := filepath.Join(r.dir, filename)

	jsonData, err := json.MarshalIndent(r.report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if err := os.WriteFile(fullPath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return fullPath, nil
}

// Path returns the file written for the last finished run, if any.
func (r *ReportFileReporter) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Report returns a copy of the collected report.
func (r *ReportFileReporter) Report() RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	report := r.report
	report.Tests = append([]TestRecord(nil), r.report.Tests...)
	report.Aborted = append([]SuiteRecord(nil), r.report.Aborted...)
	return report
}

// Failures returns the failed tests of the collected report.
func (r *ReportFileReporter) Failures() []TestRecord {
	var failed []TestRecord
	for _, t := range r.Report().Tests {
		if t.Outcome == "failed" {
			failed = append(failed, t)
		}
	}
	return failed
}

// Err returns the error of the last save attempt.
func (r *ReportFileReporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func outcomeName(t events.EventType) string {
	switch t {
	case events.EventTypeTestSucceeded:
		return "succeeded"
	case events.EventTypeTestFailed:
		return "failed"
	case events.EventTypeTestPending:
		return "pending"
	case events.EventTypeTestCanceled:
		return "canceled"
	case events.EventTypeTestIgnored:
		return "ignored"
	}
	return string(t)
}
