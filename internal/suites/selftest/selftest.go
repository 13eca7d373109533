// Package selftest registers the built-in suites that exercise specrun
// against itself. Import it for its side effects:
//
//	import _ "specrun/internal/suites/selftest"
package selftest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"specrun/internal/engine"
	"specrun/internal/suites"
)

func init() {
	suites.Register("engine/resolution", resolutionSuite)
	suites.Register("engine/outcomes", outcomesSuite)
	suites.Register("engine/lifecycle", lifecycleSuite)
	suites.Register("async/timers", asyncSuite)
	suites.Register("props/arithmetic", propertiesSuite)
}

func noop(context.Context, *engine.Fixture) <-chan error { return nil }

// expect returns an error describing the mismatch when got differs from want.
func expect(what string, got, want interface{}) error {
	if reflect.DeepEqual(got, want) {
		return nil
	}
	return engine.Fail("%s: got %v, want %v", what, got, want)
}

// sampleTree builds the tree used by the resolution tests:
// A { t1, B { t2 } }
func sampleTree() (*engine.Engine, error) {
	e := engine.New(engine.FunSpec)
	a, err := e.RegisterBranch(nil, "A")
	if err != nil {
		return nil, err
	}
	if _, err := e.RegisterLeaf(a, "t1", noop); err != nil {
		return nil, err
	}
	b, err := e.RegisterBranch(a, "B")
	if err != nil {
		return nil, err
	}
	if _, err := e.RegisterLeaf(b, "t2", noop); err != nil {
		return nil, err
	}
	return e, nil
}

func resolutionSuite() *engine.Suite {
	return engine.NewSuite("engine/resolution", engine.FunSpec, func(s *engine.Scope) {
		s.Describe("The name resolver", func(s *engine.Scope) {
			s.It("joins branch texts with the leaf text", func(ctx context.Context, f *engine.Fixture) error {
				e, err := sampleTree()
				if err != nil {
					return err
				}
				return expect("test names", e.TestNames(), []string{"A t1", "A B t2"})
			}, engine.Tags("unit"))

			s.It("computes the child index path of a test", func(ctx context.Context, f *engine.Fixture) error {
				e, err := sampleTree()
				if err != nil {
					return err
				}
				path, err := e.ResolvePath("A B t2")
				if err != nil {
					return err
				}
				f.Info("path of %q is %v", "A B t2", path)
				return expect("path", path, []int{0, 1, 0})
			}, engine.Tags("unit"))

			s.It("reports unknown names as not found", func(ctx context.Context, f *engine.Fixture) error {
				e, err := sampleTree()
				if err != nil {
					return err
				}
				if _, err := e.ResolvePath("A t3"); !errors.Is(err, engine.ErrNotFound) {
					return fmt.Errorf("expected not found, got %v", err)
				}
				return nil
			}, engine.Tags("unit"))
		})

		s.Describe("Registration", func(s *engine.Scope) {
			s.It("rejects duplicate test names", func(ctx context.Context, f *engine.Fixture) error {
				e := engine.New(engine.FunSuite)
				if _, err := e.RegisterLeaf(nil, "same", noop); err != nil {
					return err
				}
				_, err := e.RegisterLeaf(nil, "same", noop)
				return expect("duplicate error", errors.Is(err, engine.ErrDuplicateTestName), true)
			}, engine.Tags("unit"))

			s.It("closes after the first run", func(ctx context.Context, f *engine.Fixture) error {
				e := engine.New(engine.FunSuite)
				e.Close()
				_, err := e.RegisterLeaf(nil, "late", noop)
				return expect("closed error", errors.Is(err, engine.ErrRegistrationClosed), true)
			}, engine.Tags("unit"))
		})
	})
}

func outcomesSuite() *engine.Suite {
	return engine.NewSuite("engine/outcomes", engine.FunSuite, func(s *engine.Scope) {
		s.Info("outcome suite constructed with %d planned tests", 5)

		s.Test("succeeds and records informers", func(ctx context.Context, f *engine.Fixture) error {
			f.Info("informers are attached to the terminal event")
			f.Note("notes are forwarded immediately")
			f.Markup("**markup** is passed through")
			return nil
		})
		s.Test("is pending until the feature exists", func(context.Context, *engine.Fixture) error {
			return engine.Pending()
		})
		s.Test("cancels when a precondition is missing", func(ctx context.Context, f *engine.Fixture) error {
			f.Alert("precondition not met")
			return engine.Cancel("precondition %q not met", "network")
		})
		s.Ignore("is ignored by tag", func(context.Context, *engine.Fixture) error {
			return errors.New("ignored tests never run")
		})
		s.Test("classifies outcomes", func(context.Context, *engine.Fixture) error {
			if err := expect("pending kind", engine.Classify(engine.Pending()).Kind, engine.OutcomePending); err != nil {
				return err
			}
			if err := expect("canceled kind", engine.Classify(engine.Cancel("x")).Kind, engine.OutcomeCanceled); err != nil {
				return err
			}
			return expect("severe kind", engine.Classify(engine.Severe(errors.New("x"))).Kind, engine.OutcomeAborted)
		}, engine.Tags("unit"))
	})
}

func lifecycleSuite() *engine.Suite {
	var (
		setUp    atomic.Bool
		perTest  atomic.Int32
		tornDown atomic.Int32
	)

	return engine.NewSuite("engine/lifecycle", engine.FunSpec, func(s *engine.Scope) {
		s.BeforeAll(func(context.Context) error {
			setUp.Store(true)
			return nil
		})
		s.BeforeEach(func(context.Context, engine.TestData) error {
			perTest.Add(1)
			return nil
		})
		s.AfterEach(func(context.Context, engine.TestData) error {
			tornDown.Add(1)
			return nil
		})

		s.Describe("Hooks", func(s *engine.Scope) {
			s.It("run before-all before the first test", func(context.Context, *engine.Fixture) error {
				return expect("set up", setUp.Load(), true)
			})
			s.It("run before-each before every test", func(context.Context, *engine.Fixture) error {
				return expect("before-each calls", perTest.Load(), int32(2))
			})
			s.It("run after-each after every test", func(context.Context, *engine.Fixture) error {
				return expect("after-each calls", tornDown.Load(), int32(2))
			})
		})
	}, engine.WithSequential(), engine.WithSuiteTags("hooks"))
}

func asyncSuite() *engine.Suite {
	return engine.NewSuite("async/timers", engine.FreeSpec, func(s *engine.Scope) {
		s.Describe("An async body", func(s *engine.Scope) {
			s.AsyncTest("completes from another goroutine", func(ctx context.Context, f *engine.Fixture) <-chan error {
				done := make(chan error, 1)
				go func() {
					timer := time.NewTimer(10 * time.Millisecond)
					defer timer.Stop()
					select {
					case <-timer.C:
						f.Info("timer fired")
						done <- nil
					case <-ctx.Done():
						done <- ctx.Err()
					}
				}()
				return done
			}, engine.Tags("async"))

			s.AsyncTest("observes its deadline", func(ctx context.Context, f *engine.Fixture) <-chan error {
				done := make(chan error, 1)
				go func() {
					deadline, ok := ctx.Deadline()
					if !ok {
						done <- errors.New("expected a deadline")
						return
					}
					f.Info("deadline in %v", time.Until(deadline).Round(time.Second))
					done <- nil
				}()
				return done
			}, engine.Tags("async"), engine.Timeout(5*time.Second))
		})
	})
}

func propertiesSuite() *engine.Suite {
	samples := []int{-7, -1, 0, 1, 2, 13, 1 << 20}

	return engine.NewSuite("props/arithmetic", engine.PropSpec, func(s *engine.Scope) {
		s.Property("addition is commutative", func(context.Context, *engine.Fixture) error {
			for _, a := range samples {
				for _, b := range samples {
					if a+b != b+a {
						return engine.Fail("%d + %d is not commutative", a, b)
					}
				}
			}
			return nil
		})
		s.Property("zero is the additive identity", func(context.Context, *engine.Fixture) error {
			for _, a := range samples {
				if a+0 != a {
					return engine.Fail("%d + 0 = %d", a, a+0)
				}
			}
			return nil
		})
		s.Property("negation is an involution", func(ctx context.Context, f *engine.Fixture) error {
			for _, a := range samples {
				if -(-a) != a {
					return engine.Fail("-(-%d) != %d", a, a)
				}
			}
			f.Info("checked %d samples", len(samples))
			return nil
		})
	}, engine.WithSuiteID("props.arithmetic"))
}
