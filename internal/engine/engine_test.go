package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, f *Fixture) <-chan error {
	done := make(chan error, 1)
	done <- nil
	return done
}

// buildExampleTree builds Root -> A -> [t1, B -> t2].
func buildExampleTree(t *testing.T) (*Engine, *Node, *Node) {
	t.Helper()
	e := New(FreeSpec)

	a, err := e.RegisterBranch(nil, "A")
	require.NoError(t, err)
	t1, err := e.RegisterLeaf(a, "t1", noop)
	require.NoError(t, err)
	b, err := e.RegisterBranch(a, "B")
	require.NoError(t, err)
	t2, err := e.RegisterLeaf(b, "t2", noop)
	require.NoError(t, err)

	return e, t1, t2
}

func TestResolveName(t *testing.T) {
	e, t1, t2 := buildExampleTree(t)

	assert.Equal(t, "A t1", e.ResolveName(t1))
	assert.Equal(t, "A B t2", e.ResolveName(t2))
	assert.Equal(t, "", e.ResolveName(e.Trunk()))
	assert.Equal(t, []string{"A t1", "A B t2"}, e.TestNames())
}

func TestResolvePath(t *testing.T) {
	e, _, _ := buildExampleTree(t)

	path, err := e.ResolvePath("A B t2")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0}, path)

	path, err = e.ResolvePath("A t1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, path)
}

func TestResolvePath_Idempotent(t *testing.T) {
	e, _, _ := buildExampleTree(t)

	first, err := e.ResolvePath("A B t2")
	require.NoError(t, err)
	second, err := e.ResolvePath("A B t2")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolvePath_NotFound(t *testing.T) {
	e, _, _ := buildExampleTree(t)

	_, err := e.ResolvePath("A B t3")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.Lookup("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePath_CountsInfoNodes(t *testing.T) {
	e := New(FunSpec)
	_, err := e.RegisterInfo(nil, InformerInfo, "setting up")
	require.NoError(t, err)
	_, err = e.RegisterLeaf(nil, "t1", noop)
	require.NoError(t, err)

	path, err := e.ResolvePath("t1")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, path)
}

func TestRegisterLeaf_Duplicate(t *testing.T) {
	e, _, _ := buildExampleTree(t)
	a := e.Trunk().Children()[0]

	_, err := e.RegisterLeaf(a, "t1", noop)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTestName)

	var regErr *RegistrationError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, "A t1", regErr.Name)
	assert.Equal(t, 2, e.TestCount())
	assert.Len(t, a.Children(), 2)
}

func TestRegisterLeaf_DuplicateAcrossBranches(t *testing.T) {
	// "A B" + "c" and "A" + "B c" resolve to the same name
	e := New(FreeSpec)
	a, err := e.RegisterBranch(nil, "A")
	require.NoError(t, err)
	b, err := e.RegisterBranch(a, "B")
	require.NoError(t, err)
	_, err = e.RegisterLeaf(b, "c", noop)
	require.NoError(t, err)

	_, err = e.RegisterLeaf(a, "B c", noop)
	assert.ErrorIs(t, err, ErrDuplicateTestName)
}

func TestRegistrationAfterClose(t *testing.T) {
	e, _, _ := buildExampleTree(t)
	before := e.TestNames()

	assert.Equal(t, StateOpen, e.State())
	assert.True(t, e.Close())
	assert.False(t, e.Close(), "second close must not transition again")
	assert.Equal(t, StateClosed, e.State())

	_, err := e.RegisterLeaf(nil, "late", noop)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
	_, err = e.RegisterBranch(nil, "late scope")
	assert.ErrorIs(t, err, ErrRegistrationClosed)
	_, err = e.RegisterInfo(nil, InformerNote, "late note")
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	assert.Equal(t, before, e.TestNames())
	assert.Len(t, e.Trunk().Children(), 1)
}

func TestRegister_NestedUnderLeaf(t *testing.T) {
	e, t1, _ := buildExampleTree(t)

	_, err := e.RegisterLeaf(t1, "inner", noop)
	assert.ErrorIs(t, err, ErrNestedTest)
	_, err = e.RegisterBranch(t1, "inner scope")
	assert.ErrorIs(t, err, ErrNestedTest)
	assert.Empty(t, t1.Children())
}

func TestRegisterBranch_FlatStyles(t *testing.T) {
	for _, style := range []Style{FunSuite, PropSpec} {
		t.Run(style.String(), func(t *testing.T) {
			e := New(style)
			_, err := e.RegisterBranch(nil, "scope")
			assert.ErrorIs(t, err, ErrStyleViolation)
		})
	}
}

func TestRegisterLeaf_Options(t *testing.T) {
	e := New(FunSuite)

	leaf, err := e.RegisterLeaf(nil, "tagged", noop,
		Tags("slow", "db", "slow"),
		At("store_test.go", 42),
		Timeout(time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"slow", "db"}, leaf.Tags())
	assert.Equal(t, &Location{File: "store_test.go", Line: 42}, leaf.Location())
	assert.Equal(t, time.Second, leaf.Timeout())

	_, err = e.RegisterLeaf(nil, "bad tag", noop, Tags(""))
	assert.ErrorIs(t, err, ErrInvalidTag)

	_, err = e.RegisterLeaf(nil, "no body", nil)
	assert.ErrorIs(t, err, ErrNilBody)

	assert.Equal(t, 1, e.TestCount())
}

func TestIndentLevel(t *testing.T) {
	e, t1, t2 := buildExampleTree(t)

	assert.Equal(t, 0, e.Trunk().IndentLevel())
	assert.Equal(t, 1, t1.IndentLevel())
	assert.Equal(t, 2, t2.IndentLevel())
}

func TestParseStyle(t *testing.T) {
	style, ok := ParseStyle("freespec")
	assert.True(t, ok)
	assert.Equal(t, FreeSpec, style)

	_, ok = ParseStyle("WordSpec")
	assert.False(t, ok)
}
