package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specrun/internal/engine"
)

func filterSuite(t *testing.T) *engine.Suite {
	t.Helper()
	s := engine.NewSuite("math", engine.FunSpec, func(s *engine.Scope) {
		s.Describe("Addition", func(s *engine.Scope) {
			s.It("handles zero", pass, engine.Tags("unit"))
			s.It("overflows", pass, engine.Tags("slow"))
		})
		s.Describe("Division", func(s *engine.Scope) {
			s.It("by zero", pass, engine.Tags("unit"))
			s.Ignore("by infinity", pass)
		})
	})
	require.NoError(t, s.Err())
	return s
}

func decisions(s *engine.Suite, f Filter) map[string]Decision {
	e := s.Engine()
	out := make(map[string]Decision)
	for _, leaf := range e.Trunk().Leaves() {
		name := e.ResolveName(leaf)
		out[name] = f.Decide(name, leaf)
	}
	return out
}

func TestFilter_Decide(t *testing.T) {
	suite := filterSuite(t)

	tests := []struct {
		name     string
		filter   Filter
		expected map[string]Decision
	}{
		{
			name:   "empty filter runs everything",
			filter: Filter{},
			expected: map[string]Decision{
				"Addition handles zero": DecisionRun,
				"Addition overflows":    DecisionRun,
				"Division by zero":      DecisionRun,
				"Division by infinity":  DecisionIgnore,
			},
		},
		{
			name:   "include tags",
			filter: Filter{IncludeTags: []string{"unit"}},
			expected: map[string]Decision{
				"Addition handles zero": DecisionRun,
				"Addition overflows":    DecisionSkip,
				"Division by zero":      DecisionRun,
				"Division by infinity":  DecisionSkip,
			},
		},
		{
			name:   "exclude tags",
			filter: Filter{ExcludeTags: []string{"slow", engine.IgnoreTag}},
			expected: map[string]Decision{
				"Addition handles zero": DecisionRun,
				"Addition overflows":    DecisionSkip,
				"Division by zero":      DecisionRun,
				"Division by infinity":  DecisionSkip,
			},
		},
		{
			name:   "name glob",
			filter: Filter{Names: []string{"Division *"}},
			expected: map[string]Decision{
				"Addition handles zero": DecisionSkip,
				"Addition overflows":    DecisionSkip,
				"Division by zero":      DecisionRun,
				"Division by infinity":  DecisionIgnore,
			},
		},
		{
			name:   "single test",
			filter: Filter{TestName: "Addition overflows"},
			expected: map[string]Decision{
				"Addition handles zero": DecisionSkip,
				"Addition overflows":    DecisionRun,
				"Division by zero":      DecisionSkip,
				"Division by infinity":  DecisionSkip,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decisions(suite, tt.filter))
		})
	}
}

func TestFilter_MatchSuite(t *testing.T) {
	f := Filter{Suites: []string{"api/*", "db"}}
	assert.True(t, f.MatchSuite("api/users"))
	assert.True(t, f.MatchSuite("db"))
	assert.False(t, f.MatchSuite("api/users/admin"))
	assert.False(t, f.MatchSuite("cache"))

	assert.True(t, Filter{}.MatchSuite("anything"))
	assert.True(t, Filter{Suites: []string{"api/**"}}.MatchSuite("api/users/admin"))
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, Filter{Suites: []string{"a*"}, Names: []string{"x ?"}}.Validate())
	assert.Error(t, Filter{Names: []string{"[unclosed"}}.Validate())
}

func TestExpectedTestCount(t *testing.T) {
	suite := filterSuite(t)
	broken := engine.NewSuite("broken", engine.PropSpec, func(s *engine.Scope) {
		s.Describe("not allowed", func(*engine.Scope) {})
	})
	require.Error(t, broken.Err())

	suites := []*engine.Suite{suite, broken}
	assert.Equal(t, 3, ExpectedTestCount(suites, Filter{}))
	assert.Equal(t, 2, ExpectedTestCount(suites, Filter{IncludeTags: []string{"unit"}}))
	assert.Equal(t, 0, ExpectedTestCount(suites, Filter{Suites: []string{"other"}}))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Mode: Parallel, Workers: 8}.Validate())
	assert.Error(t, Config{Workers: -1}.Validate())
	assert.Error(t, Config{Workers: MaxWorkers + 1}.Validate())
	assert.Error(t, Config{TestTimeout: -time.Second}.Validate())
	assert.Error(t, Config{Filter: Filter{Suites: []string{"["}}}.Validate())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("parallel")
	require.NoError(t, err)
	assert.Equal(t, Parallel, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Sequential, m)

	_, err = ParseMode("random")
	assert.Error(t, err)
}

func TestStopper(t *testing.T) {
	var s Stopper
	assert.False(t, s.StopRequested())
	s.RequestStop()
	s.RequestStop()
	assert.True(t, s.StopRequested())
	s.Reset()
	assert.False(t, s.StopRequested())
}
