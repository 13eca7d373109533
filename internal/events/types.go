package events

import (
	"fmt"
	"time"

	"specrun/internal/engine"
)

// RunStarting opens the event log of a run
type RunStarting struct {
	BaseEvent
	ExpectedTests int `json:"expected_tests"`
	Suites        int `json:"suites"`
}

// String returns a human-readable description
func (e *RunStarting) String() string {
	return fmt.Sprintf("run starting: %d suites, %d expected tests", e.Suites, e.ExpectedTests)
}

// RunEnded carries the shared payload of the three run terminal events
type RunEnded struct {
	BaseEvent
	Summary  Summary       `json:"summary"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Err      error         `json:"-"`
}

// String returns a human-readable description
func (e *RunEnded) String() string {
	if e.Message != "" {
		return fmt.Sprintf("%s in %v (%s): %s", e.EventType, e.Duration, e.Summary, e.Message)
	}
	return fmt.Sprintf("%s in %v (%s)", e.EventType, e.Duration, e.Summary)
}

// RunCompleted is emitted when every selected suite was run
type RunCompleted struct{ RunEnded }

// RunStopped is emitted when a stop request ended the run early
type RunStopped struct{ RunEnded }

// RunAborted is emitted when a severe error ended the run
type RunAborted struct{ RunEnded }

// SuiteStarting is emitted before the first event of a suite
type SuiteStarting struct {
	BaseEvent
	Style         string `json:"style"`
	ExpectedTests int    `json:"expected_tests"`
}

// String returns a human-readable description
func (e *SuiteStarting) String() string {
	return fmt.Sprintf("suite %s starting (%s, %d tests)", e.Suite, e.Style, e.ExpectedTests)
}

// SuiteCompleted is emitted after every test of a suite reached a terminal event
type SuiteCompleted struct {
	BaseEvent
	Duration time.Duration `json:"duration"`
}

// String returns a human-readable description
func (e *SuiteCompleted) String() string {
	return fmt.Sprintf("suite %s completed in %v", e.Suite, e.Duration)
}

// SuiteAborted is emitted instead of SuiteCompleted when construction,
// a before-all or after-all hook, or a severe test error ended the suite.
// When a test caused the abort, TestName names it.
type SuiteAborted struct {
	BaseEvent
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message"`
	Err      error         `json:"-"`
}

// String returns a human-readable description
func (e *SuiteAborted) String() string {
	if e.Test != "" {
		return fmt.Sprintf("suite %s aborted by %s: %s", e.Suite, e.Test, e.Message)
	}
	return fmt.Sprintf("suite %s aborted: %s", e.Suite, e.Message)
}

// ScopeEvent carries the payload of scope open and close events
type ScopeEvent struct {
	BaseEvent
	Text IndentedText `json:"text"`
}

// String returns a human-readable description
func (e *ScopeEvent) String() string {
	return e.Text.Formatted
}

// ScopeOpened is emitted before the first test of a described scope
type ScopeOpened struct{ ScopeEvent }

// ScopeClosed is emitted after the last test of a described scope
type ScopeClosed struct{ ScopeEvent }

// TestStarting is emitted before a test body runs
type TestStarting struct {
	BaseEvent
	Text     IndentedText     `json:"text"`
	Location *engine.Location `json:"location,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
}

// String returns a human-readable description
func (e *TestStarting) String() string {
	return "starting " + e.Test
}

// TestResult is the shared payload of the terminal test events. Recorded
// holds the informer events made while the test ran, in emission order.
type TestResult struct {
	BaseEvent
	Text     IndentedText     `json:"text"`
	Location *engine.Location `json:"location,omitempty"`
	Duration time.Duration    `json:"duration"`
	Recorded []Event          `json:"recorded,omitempty"`
	Message  string           `json:"message,omitempty"`
	Err      error            `json:"-"`
}

// String returns a human-readable description
func (e *TestResult) String() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s", e.EventType, e.Test, e.Message)
	}
	return fmt.Sprintf("%s %s", e.EventType, e.Test)
}

type TestSucceeded struct{ TestResult }
type TestFailed struct{ TestResult }
type TestPending struct{ TestResult }
type TestCanceled struct{ TestResult }

// TestIgnored is the terminal event of a test that was not run
type TestIgnored struct {
	BaseEvent
	Text     IndentedText     `json:"text"`
	Location *engine.Location `json:"location,omitempty"`
}

// String returns a human-readable description
func (e *TestIgnored) String() string {
	return "ignored " + e.Test
}

// InformerEvent is the shared payload of info, note, alert and markup
// events. TestName is set when the message was made by a running test.
type InformerEvent struct {
	BaseEvent
	Message string       `json:"message"`
	Text    IndentedText `json:"text"`
}

// String returns a human-readable description
func (e *InformerEvent) String() string {
	return fmt.Sprintf("%s: %s", e.EventType, e.Message)
}

type InfoProvided struct{ InformerEvent }
type NoteProvided struct{ InformerEvent }
type AlertProvided struct{ InformerEvent }
type MarkupProvided struct{ InformerEvent }

// NewRunStarting creates a new run starting event
func NewRunStarting(suites, expectedTests int) *RunStarting {
	return &RunStarting{
		BaseEvent:     newBase(EventTypeRunStarting, "", ""),
		ExpectedTests: expectedTests,
		Suites:        suites,
	}
}

func newRunEnded(t EventType, summary Summary, d time.Duration, err error) RunEnded {
	return RunEnded{
		BaseEvent: newBase(t, "", ""),
		Summary:   summary,
		Duration:  d,
		Message:   errorMessage(err),
		Err:       err,
	}
}

// NewRunCompleted creates a new run completed event
func NewRunCompleted(summary Summary, d time.Duration) *RunCompleted {
	return &RunCompleted{newRunEnded(EventTypeRunCompleted, summary, d, nil)}
}

// NewRunStopped creates a new run stopped event
func NewRunStopped(summary Summary, d time.Duration) *RunStopped {
	return &RunStopped{newRunEnded(EventTypeRunStopped, summary, d, nil)}
}

// NewRunAborted creates a new run aborted event
func NewRunAborted(summary Summary, d time.Duration, err error) *RunAborted {
	return &RunAborted{newRunEnded(EventTypeRunAborted, summary, d, err)}
}

// NewSuiteStarting creates a new suite starting event
func NewSuiteStarting(suite, suiteID string, style engine.Style, expectedTests int) *SuiteStarting {
	e := &SuiteStarting{
		BaseEvent:     newBase(EventTypeSuiteStarting, suite, ""),
		Style:         style.String(),
		ExpectedTests: expectedTests,
	}
	e.WithSuiteID(suiteID)
	return e
}

// NewSuiteCompleted creates a new suite completed event
func NewSuiteCompleted(suite, suiteID string, d time.Duration) *SuiteCompleted {
	e := &SuiteCompleted{BaseEvent: newBase(EventTypeSuiteCompleted, suite, ""), Duration: d}
	e.WithSuiteID(suiteID)
	return e
}

// NewSuiteAborted creates a new suite aborted event. testName is empty when
// the abort did not come from a test.
func NewSuiteAborted(suite, suiteID, testName string, d time.Duration, err error) *SuiteAborted {
	e := &SuiteAborted{
		BaseEvent: newBase(EventTypeSuiteAborted, suite, testName),
		Duration:  d,
		Message:   errorMessage(err),
		Err:       err,
	}
	e.WithSuiteID(suiteID)
	return e
}

// NewScopeOpened creates a new scope opened event
func NewScopeOpened(suite, suiteID, description string, level int) *ScopeOpened {
	e := &ScopeOpened{ScopeEvent{BaseEvent: newBase(EventTypeScopeOpened, suite, ""), Text: Indent(description, level)}}
	e.WithSuiteID(suiteID)
	return e
}

// NewScopeClosed creates a new scope closed event
func NewScopeClosed(suite, suiteID, description string, level int) *ScopeClosed {
	e := &ScopeClosed{ScopeEvent{BaseEvent: newBase(EventTypeScopeClosed, suite, ""), Text: Indent(description, level)}}
	e.WithSuiteID(suiteID)
	return e
}

// NewTestStarting creates a new test starting event
func NewTestStarting(suite, suiteID string, td engine.TestData, level int) *TestStarting {
	e := &TestStarting{
		BaseEvent: newBase(EventTypeTestStarting, suite, td.Name),
		Text:      IndentTest(td.Text, level),
		Location:  td.Location,
		Tags:      td.Tags,
	}
	e.WithSuiteID(suiteID)
	return e
}

// NewTestResult creates the terminal event matching outcome.
func NewTestResult(suite, suiteID string, td engine.TestData, level int, outcome engine.Outcome, d time.Duration, recorded []Event) Event {
	result := TestResult{
		BaseEvent: newBase(EventTypeTestSucceeded, suite, td.Name),
		Text:      IndentTest(td.Text, level),
		Location:  td.Location,
		Duration:  d,
		Recorded:  recorded,
		Err:       outcome.Err,
	}
	result.WithSuiteID(suiteID)

	switch outcome.Kind {
	case engine.OutcomeFailed:
		result.EventType = EventTypeTestFailed
		result.Message = errorMessage(outcome.Err)
		return &TestFailed{result}
	case engine.OutcomePending:
		result.EventType = EventTypeTestPending
		return &TestPending{result}
	case engine.OutcomeCanceled:
		result.EventType = EventTypeTestCanceled
		result.Message = errorMessage(outcome.Err)
		return &TestCanceled{result}
	default:
		return &TestSucceeded{result}
	}
}

// NewTestIgnored creates a new test ignored event
func NewTestIgnored(suite, suiteID string, td engine.TestData, level int) *TestIgnored {
	e := &TestIgnored{
		BaseEvent: newBase(EventTypeTestIgnored, suite, td.Name),
		Text:      IndentTest(td.Text, level),
		Location:  td.Location,
	}
	e.WithSuiteID(suiteID)
	return e
}

// NewInformer creates the event for an informer record. testName is empty
// for construction-phase records.
func NewInformer(kind engine.InformerKind, suite, suiteID, testName, message string, level int, at time.Time) Event {
	ie := InformerEvent{
		BaseEvent: newBase(EventTypeInfoProvided, suite, testName),
		Message:   message,
		Text:      Indent("+ "+message, level),
	}
	if !at.IsZero() {
		ie.EventTime = at
	}
	ie.WithSuiteID(suiteID)

	switch kind {
	case engine.InformerNote:
		ie.EventType = EventTypeNoteProvided
		return &NoteProvided{ie}
	case engine.InformerAlert:
		ie.EventType = EventTypeAlertProvided
		return &AlertProvided{ie}
	case engine.InformerMarkup:
		ie.EventType = EventTypeMarkupProvided
		ie.Text = Indent(message, level)
		return &MarkupProvided{ie}
	default:
		return &InfoProvided{ie}
	}
}

// Recorded returns the informer events attached to a terminal test event.
func Recorded(e Event) []Event {
	switch ev := e.(type) {
	case *TestSucceeded:
		return ev.Recorded
	case *TestFailed:
		return ev.Recorded
	case *TestPending:
		return ev.Recorded
	case *TestCanceled:
		return ev.Recorded
	}
	return nil
}

// Message returns the error or informer message carried by e, if any.
func Message(e Event) string {
	switch ev := e.(type) {
	case *TestFailed:
		return ev.Message
	case *TestCanceled:
		return ev.Message
	case *SuiteAborted:
		return ev.Message
	case *RunAborted:
		return ev.Message
	case *InfoProvided:
		return ev.Message
	case *NoteProvided:
		return ev.Message
	case *AlertProvided:
		return ev.Message
	case *MarkupProvided:
		return ev.Message
	}
	return ""
}

// Text returns the display text of e, if it has one.
func Text(e Event) (IndentedText, bool) {
	switch ev := e.(type) {
	case *ScopeOpened:
		return ev.Text, true
	case *ScopeClosed:
		return ev.Text, true
	case *TestStarting:
		return ev.Text, true
	case *TestSucceeded:
		return ev.Text, true
	case *TestFailed:
		return ev.Text, true
	case *TestPending:
		return ev.Text, true
	case *TestCanceled:
		return ev.Text, true
	case *TestIgnored:
		return ev.Text, true
	case *InfoProvided:
		return ev.Text, true
	case *NoteProvided:
		return ev.Text, true
	case *AlertProvided:
		return ev.Text, true
	case *MarkupProvided:
		return ev.Text, true
	}
	return IndentedText{}, false
}
