package reporting

import (
	"sync"

	"specrun/internal/events"
)

// EventRecordingReporter keeps every event it is given, in order.
type EventRecordingReporter struct {
	mu     sync.RWMutex
	events []events.Event
}

// NewEventRecordingReporter creates an empty recorder
func NewEventRecordingReporter() *EventRecordingReporter {
	return &EventRecordingReporter{}
}

// Apply implements Reporter
func (r *EventRecordingReporter) Apply(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *EventRecordingReporter) Events() []events.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the type of every recorded event, in order
func (r *EventRecordingReporter) Types() []events.EventType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

// EventsOfType returns the recorded events matching any of types
func (r *EventRecordingReporter) EventsOfType(types ...events.EventType) []events.Event {
	match := FilterByType(types...)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []events.Event
	for _, e := range r.events {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops every recorded event
func (r *EventRecordingReporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *EventRecordingReporter) TestStartingEvents() []*events.TestStarting {
	return recordedOf[*events.TestStarting](r)
}

func (r *EventRecordingReporter) TestSucceededEvents() []*events.TestSucceeded {
	return recordedOf[*events.TestSucceeded](r)
}

func (r *EventRecordingReporter) TestFailedEvents() []*events.TestFailed {
	return recordedOf[*events.TestFailed](r)
}

func (r *EventRecordingReporter) TestPendingEvents() []*events.TestPending {
	return recordedOf[*events.TestPending](r)
}

func (r *EventRecordingReporter) TestCanceledEvents() []*events.TestCanceled {
	return recordedOf[*events.TestCanceled](r)
}

func (r *EventRecordingReporter) TestIgnoredEvents() []*events.TestIgnored {
	return recordedOf[*events.TestIgnored](r)
}

func (r *EventRecordingReporter) InfoProvidedEvents() []*events.InfoProvided {
	return recordedOf[*events.InfoProvided](r)
}

func (r *EventRecordingReporter) NoteProvidedEvents() []*events.NoteProvided {
	return recordedOf[*events.NoteProvided](r)
}

func (r *EventRecordingReporter) AlertProvidedEvents() []*events.AlertProvided {
	return recordedOf[*events.AlertProvided](r)
}

func (r *EventRecordingReporter) MarkupProvidedEvents() []*events.MarkupProvided {
	return recordedOf[*events.MarkupProvided](r)
}

func (r *EventRecordingReporter) ScopeOpenedEvents() []*events.ScopeOpened {
	return recordedOf[*events.ScopeOpened](r)
}

func (r *EventRecordingReporter) SuiteCompletedEvents() []*events.SuiteCompleted {
	return recordedOf[*events.SuiteCompleted](r)
}

func (r *EventRecordingReporter) SuiteAbortedEvents() []*events.SuiteAborted {
	return recordedOf[*events.SuiteAborted](r)
}

// TerminalEvents returns the terminal test events in log order
func (r *EventRecordingReporter) TerminalEvents() []events.Event {
	return r.EventsOfType(
		events.EventTypeTestSucceeded,
		events.EventTypeTestFailed,
		events.EventTypeTestPending,
		events.EventTypeTestCanceled,
		events.EventTypeTestIgnored,
	)
}

func recordedOf[T events.Event](r *EventRecordingReporter) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []T
	for _, e := range r.events {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}
