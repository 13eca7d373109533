package runner

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// Mode selects how the leaves of a suite are scheduled
type Mode int

const (
	// Sequential runs leaves strictly in declaration order, one at a time
	Sequential Mode = iota
	// Parallel runs leaves on a bounded worker pool
	Parallel
)

// String makes Mode satisfy the fmt.Stringer interface
func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// ParseMode accepts "sequential" or "parallel"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential", "serial":
		return Sequential, nil
	case "parallel", "concurrent":
		return Parallel, nil
	default:
		return Sequential, fmt.Errorf("unknown execution mode %q", s)
	}
}

// MaxWorkers caps the worker pool of parallel runs
const MaxWorkers = 256

// Config holds the execution parameters of a run
type Config struct {
	Mode Mode
	// Workers bounds concurrent tests in parallel mode; 0 means GOMAXPROCS
	Workers int
	// FailFast requests a stop after the first failed test
	FailFast bool
	// TestTimeout applies to tests registered without their own timeout
	TestTimeout time.Duration
	Filter      Filter
	// RunID is stamped on every event; empty means a generated id
	RunID string
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Workers > MaxWorkers {
		return fmt.Errorf("workers must not exceed %d, got %d", MaxWorkers, c.Workers)
	}
	if c.TestTimeout < 0 {
		return fmt.Errorf("test timeout must not be negative, got %v", c.TestTimeout)
	}
	return c.Filter.Validate()
}

func (c Config) workers() int {
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return workers
}

// Stopper is the cooperative stop flag of a run. It is polled between
// leaves in sequential mode and before each dispatch in parallel mode;
// running tests are never interrupted.
type Stopper struct {
	requested atomic.Bool
}

// RequestStop asks the run to stop as soon as possible
func (s *Stopper) RequestStop() {
	s.requested.Store(true)
}

// StopRequested reports whether a stop was requested
func (s *Stopper) StopRequested() bool {
	return s.requested.Load()
}

// Reset clears a previous stop request
func (s *Stopper) Reset() {
	s.requested.Store(false)
}
