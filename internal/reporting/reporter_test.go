package reporting

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specrun/internal/engine"
	"specrun/internal/events"
)

func testData(name string) engine.TestData {
	return engine.TestData{Suite: "suite", Name: name, Text: name}
}

func TestSink_StampsOrdinalsInDeliveryOrder(t *testing.T) {
	recorder := NewEventRecordingReporter()
	sink := NewSink(recorder, events.NewTracker("run-1"))

	sink.Emit(events.NewRunStarting(1, 1))
	sink.Emit(events.NewTestStarting("suite", "suite", testData("t1"), 0))
	sink.Emit(events.NewTestResult("suite", "suite", testData("t1"), 0, engine.Succeeded(), 0, nil))

	recorded := recorder.Events()
	require.Len(t, recorded, 3)
	for i, e := range recorded {
		assert.Equal(t, int64(i+1), e.Ordinal())
		assert.Equal(t, "run-1", e.RunID())
	}
	assert.Equal(t, "run-1", sink.RunID())
	assert.Equal(t, 1, sink.Summary().TestsSucceeded)
}

func TestSink_ReporterPanicIsSwallowed(t *testing.T) {
	calls := 0
	sink := NewSink(ReporterFunc(func(e events.Event) {
		calls++
		panic("reporter exploded")
	}), nil)

	assert.NotPanics(t, func() {
		sink.Emit(events.NewRunStarting(0, 0))
		sink.Emit(events.NewRunCompleted(events.Summary{}, 0))
	})
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), sink.Failures())
	assert.NotEmpty(t, sink.RunID())
}

func TestSink_ConcurrentEmit(t *testing.T) {
	recorder := NewEventRecordingReporter()
	sink := NewSink(recorder, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Emit(events.NewRunStarting(0, 0))
		}()
	}
	wg.Wait()

	recorded := recorder.Events()
	require.Len(t, recorded, 20)
	for i, e := range recorded {
		assert.Equal(t, int64(i+1), e.Ordinal(), "delivery order must match ordinals")
	}
}

func TestMultiReporter_IsolatesFailures(t *testing.T) {
	recorder := NewEventRecordingReporter()
	multi := MultiReporter{
		ReporterFunc(func(events.Event) { panic("first reporter broken") }),
		nil,
		recorder,
	}

	assert.NotPanics(t, func() { multi.Apply(events.NewRunStarting(0, 0)) })
	assert.Len(t, recorder.Events(), 1)
}

func TestEventRecordingReporter_TypedAccessors(t *testing.T) {
	r := NewEventRecordingReporter()
	r.Apply(events.NewTestStarting("suite", "suite", testData("a"), 0))
	r.Apply(events.NewTestResult("suite", "suite", testData("a"), 0, engine.Failed(errors.New("boom")), 0, nil))
	r.Apply(events.NewTestIgnored("suite", "suite", testData("b"), 0))
	r.Apply(events.NewInformer(engine.InformerInfo, "suite", "suite", "", "hello", 0, time.Time{}))

	assert.Len(t, r.TestStartingEvents(), 1)
	require.Len(t, r.TestFailedEvents(), 1)
	assert.Equal(t, "boom", r.TestFailedEvents()[0].Message)
	assert.Len(t, r.TestIgnoredEvents(), 1)
	assert.Len(t, r.InfoProvidedEvents(), 1)
	assert.Empty(t, r.TestSucceededEvents())
	assert.Len(t, r.TerminalEvents(), 2)
	assert.Equal(t, []events.EventType{
		events.EventTypeTestStarting,
		events.EventTypeTestFailed,
		events.EventTypeTestIgnored,
		events.EventTypeInfoProvided,
	}, r.Types())

	r.Reset()
	assert.Empty(t, r.Events())
}
