package suites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specrun/internal/engine"
)

func simpleFactory(name string) Factory {
	return func() *engine.Suite {
		return engine.NewSuite(name, engine.FunSuite, func(s *engine.Scope) {
			s.Test("works", func(context.Context, *engine.Fixture) error { return nil })
		})
	}
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("zeta", simpleFactory("zeta"))
	Register("alpha", simpleFactory("alpha"))

	assert.Equal(t, []string{"zeta", "alpha"}, Names())
	assert.Equal(t, []string{"alpha", "zeta"}, SortedNames())

	built := Build()
	require.Len(t, built, 2)
	assert.Equal(t, "zeta", built[0].Name())
	assert.Equal(t, engine.StateOpen, built[0].Engine().State())

	again := Build()
	assert.NotSame(t, built[0], again[0], "every build creates fresh suites")

	s, err := Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"works"}, s.TestNames())

	_, err = Get("missing")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestRegister_Duplicate(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("dup", simpleFactory("dup"))
	assert.Panics(t, func() { Register("dup", simpleFactory("dup")) })
	assert.Panics(t, func() { Register("nil", nil) })
}
