package events

import (
	"fmt"
	"strings"
	"time"
)

// EventType defines the type of event
type EventType string

const (
	// Run lifecycle events
	EventTypeRunStarting  EventType = "run.starting"
	EventTypeRunCompleted EventType = "run.completed"
	EventTypeRunStopped   EventType = "run.stopped"
	EventTypeRunAborted   EventType = "run.aborted"

	// Suite lifecycle events
	EventTypeSuiteStarting  EventType = "suite.starting"
	EventTypeSuiteCompleted EventType = "suite.completed"
	EventTypeSuiteAborted   EventType = "suite.aborted"

	// Scope events
	EventTypeScopeOpened EventType = "scope.opened"
	EventTypeScopeClosed EventType = "scope.closed"

	// Test events
	EventTypeTestStarting  EventType = "test.starting"
	EventTypeTestSucceeded EventType = "test.succeeded"
	EventTypeTestFailed    EventType = "test.failed"
	EventTypeTestPending   EventType = "test.pending"
	EventTypeTestCanceled  EventType = "test.canceled"
	EventTypeTestIgnored   EventType = "test.ignored"

	// Informer events
	EventTypeInfoProvided   EventType = "info.provided"
	EventTypeNoteProvided   EventType = "note.provided"
	EventTypeAlertProvided  EventType = "alert.provided"
	EventTypeMarkupProvided EventType = "markup.provided"
)

// IsTestTerminal reports whether t ends a test. Every leaf produces exactly
// one of these, or is cut short by a SuiteAborted event.
func IsTestTerminal(t EventType) bool {
	switch t {
	case EventTypeTestSucceeded, EventTypeTestFailed, EventTypeTestPending,
		EventTypeTestCanceled, EventTypeTestIgnored:
		return true
	}
	return false
}

// IsRunTerminal reports whether t ends a run.
func IsRunTerminal(t EventType) bool {
	return t == EventTypeRunCompleted || t == EventTypeRunStopped || t == EventTypeRunAborted
}

// EventSeverity indicates the importance of an event
type EventSeverity string

const (
	SeverityDebug EventSeverity = "debug"
	SeverityInfo  EventSeverity = "info"
	SeverityWarn  EventSeverity = "warn"
	SeverityError EventSeverity = "error"
	SeverityFatal EventSeverity = "fatal"
)

// SeverityOf maps an event type to its severity.
func SeverityOf(t EventType) EventSeverity {
	switch t {
	case EventTypeTestFailed:
		return SeverityError
	case EventTypeSuiteAborted, EventTypeRunAborted:
		return SeverityFatal
	case EventTypeTestCanceled, EventTypeAlertProvided, EventTypeRunStopped:
		return SeverityWarn
	case EventTypeScopeOpened, EventTypeScopeClosed, EventTypeTestStarting:
		return SeverityDebug
	default:
		return SeverityInfo
	}
}

// Event is the interface of every event a run produces
type Event interface {
	// Type returns the event type
	Type() EventType

	// Ordinal is the position of the event in the run's log, starting at 1.
	// Events attached to a terminal event as recorded informers have none.
	Ordinal() int64

	// RunID identifies the run that produced the event
	RunID() string

	// Timestamp returns when the event occurred
	Timestamp() time.Time

	// SuiteName returns the suite the event belongs to, if any
	SuiteName() string

	// TestName returns the resolved test name, if any
	TestName() string

	// Severity returns the event severity
	Severity() EventSeverity

	// Base gives the sink access to the shared header for stamping
	Base() *BaseEvent

	// String returns a human-readable description of the event
	String() string
}

// BaseEvent provides common event functionality
type BaseEvent struct {
	EventType EventType `json:"type"`
	Seq       int64     `json:"ordinal,omitempty"`
	Run       string    `json:"run_id,omitempty"`
	EventTime time.Time `json:"timestamp"`
	Suite     string    `json:"suite,omitempty"`
	SuiteKey  string    `json:"suite_id,omitempty"`
	Test      string    `json:"test,omitempty"`
}

func newBase(t EventType, suite, test string) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now(), Suite: suite, Test: test}
}

// Type implements Event interface
func (e *BaseEvent) Type() EventType { return e.EventType }

// Ordinal implements Event interface
func (e *BaseEvent) Ordinal() int64 { return e.Seq }

// RunID implements Event interface
func (e *BaseEvent) RunID() string { return e.Run }

// Timestamp implements Event interface
func (e *BaseEvent) Timestamp() time.Time { return e.EventTime }

// SuiteName implements Event interface
func (e *BaseEvent) SuiteName() string { return e.Suite }

// SuiteID returns the identifier of the suite, if any
func (e *BaseEvent) SuiteID() string { return e.SuiteKey }

// TestName implements Event interface
func (e *BaseEvent) TestName() string { return e.Test }

// Severity implements Event interface
func (e *BaseEvent) Severity() EventSeverity { return SeverityOf(e.EventType) }

// Base implements Event interface
func (e *BaseEvent) Base() *BaseEvent { return e }

// String implements Event interface
func (e *BaseEvent) String() string {
	if e.Test != "" {
		return string(e.EventType) + " " + e.Test
	}
	if e.Suite != "" {
		return string(e.EventType) + " " + e.Suite
	}
	return string(e.EventType)
}

// WithSuiteID sets the suite identifier
func (e *BaseEvent) WithSuiteID(id string) *BaseEvent {
	e.SuiteKey = id
	return e
}

// IndentedText is the display form of a scope, test or informer message.
type IndentedText struct {
	Formatted string `json:"formatted"`
	Raw       string `json:"raw"`
	Level     int    `json:"level"`
}

// Indent formats a scope description at level.
func Indent(raw string, level int) IndentedText {
	return IndentedText{Formatted: strings.Repeat("  ", level) + raw, Raw: raw, Level: level}
}

// IndentTest formats a test text at level with a leading dash.
func IndentTest(raw string, level int) IndentedText {
	return IndentedText{Formatted: strings.Repeat("  ", level) + "- " + raw, Raw: raw, Level: level}
}

// Summary counts the outcomes of a run.
type Summary struct {
	TestsStarted    int `json:"tests_started"`
	TestsSucceeded  int `json:"tests_succeeded"`
	TestsFailed     int `json:"tests_failed"`
	TestsPending    int `json:"tests_pending"`
	TestsCanceled   int `json:"tests_canceled"`
	TestsIgnored    int `json:"tests_ignored"`
	SuitesCompleted int `json:"suites_completed"`
	SuitesAborted   int `json:"suites_aborted"`
}

// TotalTests is the number of tests that reached a terminal event.
func (s Summary) TotalTests() int {
	return s.TestsSucceeded + s.TestsFailed + s.TestsPending + s.TestsCanceled + s.TestsIgnored
}

// AllPassed reports whether no test failed and no suite aborted.
func (s Summary) AllPassed() bool {
	return s.TestsFailed == 0 && s.SuitesAborted == 0
}

// Add counts e into the summary.
func (s *Summary) Add(e Event) {
	switch e.Type() {
	case EventTypeTestStarting:
		s.TestsStarted++
	case EventTypeTestSucceeded:
		s.TestsSucceeded++
	case EventTypeTestFailed:
		s.TestsFailed++
	case EventTypeTestPending:
		s.TestsPending++
	case EventTypeTestCanceled:
		s.TestsCanceled++
	case EventTypeTestIgnored:
		s.TestsIgnored++
	case EventTypeSuiteCompleted:
		s.SuitesCompleted++
	case EventTypeSuiteAborted:
		s.SuitesAborted++
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("succeeded %d, failed %d, canceled %d, ignored %d, pending %d",
		s.TestsSucceeded, s.TestsFailed, s.TestsCanceled, s.TestsIgnored, s.TestsPending)
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
