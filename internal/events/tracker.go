package events

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Tracker hands out the ordinals of one run's event log.
type Tracker struct {
	runID string
	next  atomic.Int64
}

// NewTracker creates a tracker for runID. An empty runID gets a random one.
func NewTracker(runID string) *Tracker {
	if runID == "" {
		runID = NewRunID()
	}
	return &Tracker{runID: runID}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// RunID returns the run the tracker stamps events with.
func (t *Tracker) RunID() string {
	return t.runID
}

// Stamp assigns the next ordinal and the run id to e. Recorded informer
// events attached to e get the run id but no ordinal of their own.
func (t *Tracker) Stamp(e Event) Event {
	b := e.Base()
	b.Seq = t.next.Add(1)
	b.Run = t.runID
	if b.EventTime.IsZero() {
		b.EventTime = time.Now()
	}
	for _, r := range Recorded(e) {
		r.Base().Run = t.runID
	}
	return e
}

// Last returns the most recently assigned ordinal.
func (t *Tracker) Last() int64 {
	return t.next.Load()
}
