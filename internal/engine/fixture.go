package engine

import (
	"fmt"
	"sync"
	"time"
)

// TestData describes the test a body or hook is running for.
type TestData struct {
	Suite    string
	Name     string
	Text     string
	Tags     []string
	Location *Location
}

// Record is one informer message made while a test was running.
type Record struct {
	Kind    InformerKind
	Message string
	Time    time.Time
}

// Fixture is handed to every test body. Informer calls made while the
// test runs are recorded and later attached to its terminal event; calls
// made after the test completed go straight to the run's event log until
// the fixture is detached.
type Fixture struct {
	data TestData

	mu        sync.Mutex
	records   []Record
	completed bool
	direct    func(Record)
}

// NewFixture creates a fixture for data. direct receives informer records
// made after Complete; it may be nil.
func NewFixture(data TestData, direct func(Record)) *Fixture {
	return &Fixture{data: data, direct: direct}
}

// Data returns the description of the running test.
func (f *Fixture) Data() TestData {
	return f.data
}

// Name returns the resolved name of the running test.
func (f *Fixture) Name() string {
	return f.data.Name
}

// Info records an informational message.
func (f *Fixture) Info(format string, args ...interface{}) {
	f.record(InformerInfo, format, args...)
}

// Note records a note.
func (f *Fixture) Note(format string, args ...interface{}) {
	f.record(InformerNote, format, args...)
}

// Alert records a warning that reporters highlight.
func (f *Fixture) Alert(format string, args ...interface{}) {
	f.record(InformerAlert, format, args...)
}

// Markup records preformatted text.
func (f *Fixture) Markup(text string) {
	f.record(InformerMarkup, "%s", text)
}

func (f *Fixture) record(kind InformerKind, format string, args ...interface{}) {
	rec := Record{Kind: kind, Message: fmt.Sprintf(format, args...), Time: time.Now()}

	f.mu.Lock()
	if !f.completed {
		f.records = append(f.records, rec)
		f.mu.Unlock()
		return
	}
	direct := f.direct
	f.mu.Unlock()

	if direct != nil {
		direct(rec)
	}
}

// Complete freezes the fixture and returns the records made so far in
// emission order. Later informer calls are routed to direct.
func (f *Fixture) Complete() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true
	out := make([]Record, len(f.records))
	copy(out, f.records)
	return out
}

// Detach completes the fixture and drops every informer call made from now
// on.
func (f *Fixture) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true
	f.direct = nil
}
