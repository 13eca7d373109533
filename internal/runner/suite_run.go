package runner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"specrun/internal/engine"
	"specrun/internal/events"
	"specrun/internal/reporting"
	"specrun/pkg/logging"
)

// suiteRun executes one suite. Each leaf moves from not started to running
// to exactly one terminal state; a severe outcome ends the suite instead.
type suiteRun struct {
	r        *Runner
	suite    *engine.Suite
	sink     *reporting.Sink
	parallel bool

	decisions  map[*engine.Node]Decision
	scopes     map[*engine.Node]bool
	runnable   int
	dispatched int

	sem *semaphore.Weighted
	g   *errgroup.Group

	// bodies tracks test bodies, which may outlive their test's time limit
	bodies sync.WaitGroup

	mu         sync.Mutex
	fixtures   []*engine.Fixture
	severe     error
	severeTest string
}

func newSuiteRun(r *Runner, suite *engine.Suite, sink *reporting.Sink) *suiteRun {
	sr := &suiteRun{
		r:         r,
		suite:     suite,
		sink:      sink,
		parallel:  r.cfg.Mode == Parallel && !suite.Sequential(),
		decisions: make(map[*engine.Node]Decision),
		scopes:    make(map[*engine.Node]bool),
	}
	if sr.parallel {
		sr.sem = semaphore.NewWeighted(int64(r.cfg.workers()))
		sr.g = &errgroup.Group{}
	}
	return sr
}

// run returns a non-nil error only for severe errors, which end the run.
func (sr *suiteRun) run(ctx context.Context) error {
	start := time.Now()
	name, id := sr.suite.Name(), sr.suite.ID()

	if err := sr.suite.Err(); err != nil {
		logging.Warn("Runner", "Suite %s did not construct: %v", name, err)
		return sr.abort(start, "", err)
	}

	sr.runnable = sr.plan()
	sr.sink.Emit(events.NewSuiteStarting(name, id, sr.suite.Style(), sr.runnable))

	if sr.runnable > 0 {
		if err := sr.suite.RunBeforeAll(ctx); err != nil {
			return sr.abort(start, "", err)
		}
	}

	sr.walk(ctx, sr.suite.Engine().Trunk())
	if sr.g != nil {
		_ = sr.g.Wait()
	}
	sr.settle()

	if test, err := sr.severeError(); err != nil {
		return sr.abort(start, test, err)
	}

	if sr.runnable > 0 {
		if err := sr.suite.RunAfterAll(ctx); err != nil {
			return sr.abort(start, "", err)
		}
	}

	sr.sink.Emit(events.NewSuiteCompleted(name, id, time.Since(start)))
	return nil
}

// abort reports the suite as aborted. Only severe errors are returned.
func (sr *suiteRun) abort(start time.Time, test string, err error) error {
	sr.sink.Emit(events.NewSuiteAborted(sr.suite.Name(), sr.suite.ID(), test, time.Since(start), err))
	if engine.Classify(err).IsSevere() {
		return err
	}
	return nil
}

// settle waits for every test body to return, then detaches the fixtures
// so that informer calls from leftover goroutines are dropped instead of
// following the suite's last event.
func (sr *suiteRun) settle() {
	sr.bodies.Wait()

	sr.mu.Lock()
	defer sr.mu.Unlock()
	for _, f := range sr.fixtures {
		f.Detach()
	}
}

// undispatched reports whether a selected test of the suite was never
// started.
func (sr *suiteRun) undispatched() bool {
	return sr.dispatched < sr.runnable
}

// plan decides every leaf and marks the branches that hold selected leaves.
// It returns the number of leaves that will run.
func (sr *suiteRun) plan() int {
	e := sr.suite.Engine()
	runnable := 0
	for _, leaf := range e.Trunk().Leaves() {
		d := sr.r.cfg.Filter.Decide(e.ResolveName(leaf), leaf)
		sr.decisions[leaf] = d
		if d == DecisionSkip {
			continue
		}
		if d == DecisionRun {
			runnable++
		}
		for p := leaf.Parent(); p != nil && p.Kind() == engine.KindBranch; p = p.Parent() {
			sr.scopes[p] = true
		}
	}
	return runnable
}

func (sr *suiteRun) halted(ctx context.Context) bool {
	if _, err := sr.severeError(); err != nil {
		return true
	}
	return sr.r.stopRequested(ctx)
}

// walk visits the children of n in declaration order. It returns false
// once no further tests may be dispatched.
func (sr *suiteRun) walk(ctx context.Context, n *engine.Node) bool {
	name, id := sr.suite.Name(), sr.suite.ID()

	for _, child := range n.Children() {
		if sr.halted(ctx) {
			return false
		}

		switch child.Kind() {
		case engine.KindInfo:
			sr.sink.Emit(events.NewInformer(child.Informer(), name, id, "", child.Text(), child.IndentLevel(), time.Time{}))

		case engine.KindBranch:
			if !sr.scopes[child] {
				continue
			}
			level := child.IndentLevel()
			sr.sink.Emit(events.NewScopeOpened(name, id, child.Text(), level))
			more := sr.walk(ctx, child)
			if _, err := sr.severeError(); err == nil {
				sr.sink.Emit(events.NewScopeClosed(name, id, child.Text(), level))
			}
			if !more {
				return false
			}

		case engine.KindLeaf:
			switch sr.decisions[child] {
			case DecisionIgnore:
				td := sr.suite.TestData(child)
				sr.sink.Emit(events.NewTestIgnored(name, id, td, child.IndentLevel()))
			case DecisionRun:
				if !sr.dispatch(ctx, child) {
					return false
				}
			}
		}
	}
	return true
}

// dispatch starts leaf. TestStarting is emitted here so that start events
// follow declaration order in both modes.
func (sr *suiteRun) dispatch(ctx context.Context, leaf *engine.Node) bool {
	td := sr.suite.TestData(leaf)
	level := leaf.IndentLevel()

	if !sr.parallel {
		sr.dispatched++
		sr.sink.Emit(events.NewTestStarting(sr.suite.Name(), sr.suite.ID(), td, level))
		sr.execute(ctx, leaf, td, level)
		_, err := sr.severeError()
		return err == nil
	}

	if err := sr.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	if sr.halted(ctx) {
		sr.sem.Release(1)
		return false
	}

	logging.Debug("Runner", "Dispatching %q", td.Name)
	sr.dispatched++
	sr.sink.Emit(events.NewTestStarting(sr.suite.Name(), sr.suite.ID(), td, level))
	sr.g.Go(func() error {
		defer sr.sem.Release(1)
		sr.execute(ctx, leaf, td, level)
		return nil
	})
	return true
}

// execute runs the hooks and body of leaf and emits its terminal event.
func (sr *suiteRun) execute(ctx context.Context, leaf *engine.Node, td engine.TestData, level int) {
	name, id := sr.suite.Name(), sr.suite.ID()
	informer := func(rec engine.Record) events.Event {
		return events.NewInformer(rec.Kind, name, id, td.Name, rec.Message, level+1, rec.Time)
	}
	fixture := engine.NewFixture(td, func(rec engine.Record) {
		sr.sink.Emit(informer(rec))
	})
	sr.mu.Lock()
	sr.fixtures = append(sr.fixtures, fixture)
	sr.mu.Unlock()

	start := time.Now()
	err := sr.suite.RunBeforeEach(ctx, td)
	if err == nil {
		err = sr.r.invoke(ctx, leaf, fixture, &sr.bodies)
	}
	if afterErr := sr.suite.RunAfterEach(ctx, td); afterErr != nil && err == nil {
		err = afterErr
	}
	duration := time.Since(start)

	records := fixture.Complete()
	recorded := make([]events.Event, 0, len(records))
	for _, rec := range records {
		recorded = append(recorded, informer(rec))
	}

	outcome := engine.Classify(err)
	if outcome.IsSevere() {
		// The suite's SuiteAborted event ends this test; its informers go
		// to the top-level log first.
		for _, e := range recorded {
			sr.sink.Emit(e)
		}
		sr.setSevere(td.Name, err)
		return
	}

	logging.Debug("Runner", "Test %q %s in %v", td.Name, outcome.Kind, duration)
	sr.sink.Emit(events.NewTestResult(name, id, td, level, outcome, duration, recorded))

	if outcome.Kind == engine.OutcomeFailed && sr.r.cfg.FailFast {
		sr.r.stopper.RequestStop()
	}
}

func (sr *suiteRun) setSevere(test string, err error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if sr.severe == nil {
		sr.severe = err
		sr.severeTest = test
	}
}

func (sr *suiteRun) severeError() (string, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.severeTest, sr.severe
}
