package runner

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"specrun/internal/engine"
)

// Decision is what a run does with one leaf
type Decision int

const (
	// DecisionSkip leaves the test out of the run without any event
	DecisionSkip Decision = iota
	// DecisionIgnore reports the test as ignored
	DecisionIgnore
	// DecisionRun executes the test
	DecisionRun
)

// String makes Decision satisfy the fmt.Stringer interface
func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionIgnore:
		return "ignore"
	case DecisionRun:
		return "run"
	default:
		return "unknown"
	}
}

// Filter selects suites and tests. Empty fields select everything.
type Filter struct {
	// Suites are glob patterns matched against suite names
	Suites []string `yaml:"suites,omitempty" json:"suites,omitempty"`
	// Names are glob patterns matched against resolved test names
	Names []string `yaml:"names,omitempty" json:"names,omitempty"`
	// TestName selects exactly one resolved test name
	TestName string `yaml:"test,omitempty" json:"test,omitempty"`
	// IncludeTags keeps only tests carrying at least one of the tags
	IncludeTags []string `yaml:"includeTags,omitempty" json:"include_tags,omitempty"`
	// ExcludeTags drops tests carrying any of the tags
	ExcludeTags []string `yaml:"excludeTags,omitempty" json:"exclude_tags,omitempty"`
}

// Validate checks every glob pattern
func (f Filter) Validate() error {
	for _, p := range append(append([]string(nil), f.Suites...), f.Names...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid name pattern %q", p)
		}
	}
	return nil
}

// MatchSuite reports whether the suite named name is selected
func (f Filter) MatchSuite(name string) bool {
	return matchAny(f.Suites, name)
}

// Decide returns what the run does with leaf, whose resolved name is name
func (f Filter) Decide(name string, leaf *engine.Node) Decision {
	if f.TestName != "" && name != f.TestName {
		return DecisionSkip
	}
	if !matchAny(f.Names, name) {
		return DecisionSkip
	}
	for _, tag := range f.ExcludeTags {
		if leaf.HasTag(tag) {
			return DecisionSkip
		}
	}
	if len(f.IncludeTags) > 0 {
		included := false
		for _, tag := range f.IncludeTags {
			if leaf.HasTag(tag) {
				included = true
				break
			}
		}
		if !included {
			return DecisionSkip
		}
	}
	if leaf.HasTag(engine.IgnoreTag) {
		return DecisionIgnore
	}
	return DecisionRun
}

// ExpectedTestCount returns how many tests a run with f would execute
func ExpectedTestCount(suites []*engine.Suite, f Filter) int {
	count := 0
	for _, s := range suites {
		if s.Err() != nil || !f.MatchSuite(s.Name()) {
			continue
		}
		e := s.Engine()
		for _, leaf := range e.Trunk().Leaves() {
			if f.Decide(e.ResolveName(leaf), leaf) == DecisionRun {
				count++
			}
		}
	}
	return count
}

func matchAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
