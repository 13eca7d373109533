package reporting

import (
	"fmt"
	"sync"
	"sync/atomic"

	"specrun/internal/events"
	"specrun/pkg/logging"
)

// Reporter consumes the ordered event log of a run. Apply is called by a
// single goroutine at a time, in ordinal order.
type Reporter interface {
	Apply(event events.Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(event events.Event)

// Apply implements Reporter.
func (f ReporterFunc) Apply(event events.Event) {
	f(event)
}

// MultiReporter forwards every event to each of its reporters. A reporter
// that panics is logged and does not keep the others from seeing the event.
type MultiReporter []Reporter

// Apply implements Reporter.
func (m MultiReporter) Apply(event events.Event) {
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := safeApply(r, event); err != nil {
			logging.Error("Reporter", err, "Reporter %T failed on %s", r, event.Type())
		}
	}
}

// safeApply delivers event to r and turns a panic into an error.
func safeApply(r Reporter, event events.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reporter panic: %v", rec)
		}
	}()
	r.Apply(event)
	return nil
}

// Sink is the scheduler-facing end of the reporting pipeline. It stamps
// each event with the next ordinal, counts it into the run summary and
// hands it to the reporter. Delivery is serialised, so reporters observe
// events in ordinal order even when tests run in parallel. Emit never
// panics; reporter failures are logged and counted.
type Sink struct {
	mu       sync.Mutex
	reporter Reporter
	tracker  *events.Tracker
	summary  events.Summary
	failures atomic.Int64
}

// NewSink creates a sink delivering to reporter. A nil tracker gets a
// fresh run id.
func NewSink(reporter Reporter, tracker *events.Tracker) *Sink {
	if tracker == nil {
		tracker = events.NewTracker("")
	}
	return &Sink{reporter: reporter, tracker: tracker}
}

// Emit appends event to the run's log.
func (s *Sink) Emit(event events.Event) {
	if event == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Stamp(event)
	s.summary.Add(event)

	if s.reporter == nil {
		return
	}
	if err := safeApply(s.reporter, event); err != nil {
		s.failures.Add(1)
		logging.Error("Sink", err, "Reporter failed on event %d (%s)", event.Ordinal(), event.Type())
	}
}

// Summary returns the counts of the events emitted so far.
func (s *Sink) Summary() events.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// RunID returns the run id stamped on every event.
func (s *Sink) RunID() string {
	return s.tracker.RunID()
}

// Failures returns how many deliveries the reporter failed.
func (s *Sink) Failures() int64 {
	return s.failures.Load()
}
