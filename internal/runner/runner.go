package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"specrun/internal/engine"
	"specrun/internal/events"
	"specrun/internal/reporting"
	"specrun/pkg/logging"
)

// errNilChannel is the failure of an async body that returned no channel.
var errNilChannel = errors.New("async test body returned a nil channel")

// Status is the terminal status of a run.
type Status struct {
	RunID string
	// Completed is true when every selected suite was run to its end
	Completed bool
	// Stopped is true when a stop request or cancellation ended the run
	Stopped bool
	// Aborted is true when a severe error ended the run
	Aborted bool
	// Err carries the severe error of an aborted run
	Err      error
	Summary  events.Summary
	Duration time.Duration
}

// Succeeded reports whether the run completed with no failed test and no
// aborted suite.
func (s *Status) Succeeded() bool {
	return s.Completed && !s.Aborted && s.Summary.AllPassed()
}

// Runner executes suites and reports their events.
type Runner struct {
	cfg     Config
	stopper *Stopper
}

// New creates a runner for cfg
func New(cfg Config) *Runner {
	return &Runner{cfg: cfg, stopper: &Stopper{}}
}

// Config returns the runner's configuration
func (r *Runner) Config() Config {
	return r.cfg
}

// Stopper returns the stop flag of the runner
func (r *Runner) Stopper() *Stopper {
	return r.stopper
}

// Stop requests a cooperative stop of the current run
func (r *Runner) Stop() {
	r.stopper.RequestStop()
}

func (r *Runner) stopRequested(ctx context.Context) bool {
	return r.stopper.StopRequested() || ctx.Err() != nil
}

// Run closes registration on every suite, then executes the selected suites
// in order and reports to reporter. Reporter failures never reach the
// scheduler. Run blocks until the body of every dispatched test has
// returned, including bodies that outlived their time limit, and no event
// is reported after the run's terminal event.
func (r *Runner) Run(ctx context.Context, suites []*engine.Suite, reporter reporting.Reporter) *Status {
	start := time.Now()
	sink := reporting.NewSink(reporter, events.NewTracker(r.cfg.RunID))

	selected := make([]*engine.Suite, 0, len(suites))
	for _, s := range suites {
		s.Engine().Close()
		if r.cfg.Filter.MatchSuite(s.Name()) {
			selected = append(selected, s)
		}
	}

	logging.Info("Runner", "Starting run %s: %d suites, mode %s", sink.RunID(), len(selected), r.cfg.Mode)
	sink.Emit(events.NewRunStarting(len(selected), ExpectedTestCount(selected, r.cfg.Filter)))

	status := &Status{RunID: sink.RunID()}
	// left is true once a selected test was not dispatched because of a
	// stop request.
	left := false
	for _, s := range selected {
		if r.stopRequested(ctx) {
			left = true
			break
		}
		sr := newSuiteRun(r, s, sink)
		err := sr.run(ctx)
		if sr.undispatched() {
			left = true
		}
		if err != nil {
			status.Aborted = true
			status.Err = err
			break
		}
	}
	status.Stopped = !status.Aborted && (ctx.Err() != nil || (left && r.stopper.StopRequested()))
	status.Completed = !status.Aborted && !status.Stopped
	status.Duration = time.Since(start)
	status.Summary = sink.Summary()

	switch {
	case status.Aborted:
		logging.Error("Runner", status.Err, "Run %s aborted", status.RunID)
		sink.Emit(events.NewRunAborted(status.Summary, status.Duration, status.Err))
	case status.Stopped:
		logging.Warn("Runner", "Run %s stopped after %v", status.RunID, status.Duration)
		sink.Emit(events.NewRunStopped(status.Summary, status.Duration))
	default:
		logging.Info("Runner", "Run %s completed in %v: %s", status.RunID, status.Duration, status.Summary)
		sink.Emit(events.NewRunCompleted(status.Summary, status.Duration))
	}
	return status
}

// invoke runs the body of leaf and waits for its outcome, the test's time
// limit or the run's cancellation, whichever comes first. The body's
// goroutine is tracked in bodies so that the suite can wait for bodies that
// are still running after invoke returned.
func (r *Runner) invoke(ctx context.Context, leaf *engine.Node, fixture *engine.Fixture, bodies *sync.WaitGroup) error {
	timeout := leaf.Timeout()
	if timeout == 0 {
		timeout = r.cfg.TestTimeout
	}

	var (
		testCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		testCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		testCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan error, 1)
	bodies.Add(1)
	go func() {
		defer bodies.Done()
		done <- engine.SafeCall(func() error {
			result := leaf.Body()(testCtx, fixture)
			if result == nil {
				return errNilChannel
			}
			select {
			case err := <-result:
				return err
			case <-testCtx.Done():
				return nil
			}
		})
	}()

	select {
	case err := <-done:
		if testCtx.Err() != nil && (err == nil || errors.Is(err, testCtx.Err())) {
			return r.interrupted(ctx, testCtx, timeout)
		}
		return err
	case <-testCtx.Done():
		logging.Debug("Runner", "Body of %q still running after it was interrupted", fixture.Name())
		return r.interrupted(ctx, testCtx, timeout)
	}
}

func (r *Runner) interrupted(ctx, testCtx context.Context, timeout time.Duration) error {
	if ctx.Err() == nil && errors.Is(testCtx.Err(), context.DeadlineExceeded) {
		return &engine.TimeoutError{Limit: timeout}
	}
	return engine.Cancel("run canceled: %v", ctx.Err())
}
