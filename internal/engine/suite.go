package engine

import (
	"context"
	"fmt"
	"sync"
)

// HookFunc runs once before or after all tests of a suite.
type HookFunc func(ctx context.Context) error

// EachHookFunc runs around every test of a suite.
type EachHookFunc func(ctx context.Context, td TestData) error

// SuiteOption configures a suite.
type SuiteOption func(*Suite)

// WithSuiteID overrides the suite id, which defaults to the suite name.
func WithSuiteID(id string) SuiteOption {
	return func(s *Suite) {
		s.id = id
	}
}

// WithSequential forces the suite's tests to run one after another even
// when the run uses parallel execution.
func WithSequential() SuiteOption {
	return func(s *Suite) {
		s.sequential = true
	}
}

// WithSuiteTags tags every test of the suite.
func WithSuiteTags(tags ...string) SuiteOption {
	return func(s *Suite) {
		s.tags = append(s.tags, tags...)
	}
}

// Suite is a named test tree plus its lifecycle hooks. Construction runs
// the build callback exactly once; the first registration error aborts
// construction and is kept in Err.
type Suite struct {
	name       string
	id         string
	engine     *Engine
	sequential bool
	tags       []string

	mu         sync.Mutex
	beforeAll  []HookFunc
	afterAll   []HookFunc
	beforeEach []EachHookFunc
	afterEach  []EachHookFunc
	err        error
}

// NewSuite builds a suite by calling build with the root scope.
func NewSuite(name string, style Style, build func(*Scope), opts ...SuiteOption) *Suite {
	s := &Suite{
		name:   name,
		id:     name,
		engine: New(style),
	}
	for _, opt := range opts {
		opt(s)
	}

	if build != nil {
		err := SafeCall(func() error {
			build(&Scope{suite: s, node: s.engine.Trunk()})
			return nil
		})
		if err != nil {
			s.fail(fmt.Errorf("constructing suite %s: %w", name, err))
		}
	}
	return s
}

func (s *Suite) Name() string { return s.name }
func (s *Suite) ID() string { return s.id }
func (s *Suite) Engine() *Engine { return s.engine }
func (s *Suite) Style() Style { return s.engine.Style() }
func (s *Suite) Sequential() bool { return s.sequential }
func (s *Suite) TestNames() []string { return s.engine.TestNames() }

// Err returns the construction error, if any.
func (s *Suite) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// fail keeps the first error made during construction and returns err.
func (s *Suite) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil && s.engine.State() == StateOpen {
		s.err = err
	}
	return err
}

func (s *Suite) constructionAborted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine.State() == StateOpen {
		return s.err
	}
	return nil
}

func (s *Suite) addHook(add func()) error {
	if err := s.constructionAborted(); err != nil {
		return err
	}
	if s.engine.State() == StateClosed {
		return &RegistrationError{Op: "register hook", Err: ErrRegistrationClosed}
	}
	s.mu.Lock()
	add()
	s.mu.Unlock()
	return nil
}

// BeforeAll registers a hook that runs before the first test. An error
// aborts the suite.
func (s *Suite) BeforeAll(fn HookFunc) error {
	return s.addHook(func() { s.beforeAll = append(s.beforeAll, fn) })
}

// AfterAll registers a hook that runs after the last test. An error
// aborts the suite.
func (s *Suite) AfterAll(fn HookFunc) error {
	return s.addHook(func() { s.afterAll = append(s.afterAll, fn) })
}

// BeforeEach registers a hook that runs before every test. An error fails
// that test without running its body.
func (s *Suite) BeforeEach(fn EachHookFunc) error {
	return s.addHook(func() { s.beforeEach = append(s.beforeEach, fn) })
}

// AfterEach registers a hook that runs after every test, also after
// failures. An error fails a test that otherwise succeeded.
func (s *Suite) AfterEach(fn EachHookFunc) error {
	return s.addHook(func() { s.afterEach = append(s.afterEach, fn) })
}

// RunBeforeAll runs the before-all hooks in registration order.
func (s *Suite) RunBeforeAll(ctx context.Context) error {
	for _, h := range s.hooks(func() []HookFunc { return s.beforeAll }) {
		h := h
		if err := SafeCall(func() error { return h(ctx) }); err != nil {
			return fmt.Errorf("before all: %w", err)
		}
	}
	return nil
}

// RunAfterAll runs the after-all hooks in reverse registration order.
func (s *Suite) RunAfterAll(ctx context.Context) error {
	hooks := s.hooks(func() []HookFunc { return s.afterAll })
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := SafeCall(func() error { return h(ctx) }); err != nil {
			return fmt.Errorf("after all: %w", err)
		}
	}
	return nil
}

// RunBeforeEach runs the before-each hooks for td.
func (s *Suite) RunBeforeEach(ctx context.Context, td TestData) error {
	s.mu.Lock()
	hooks := append([]EachHookFunc(nil), s.beforeEach...)
	s.mu.Unlock()
	for _, h := range hooks {
		h := h
		if err := SafeCall(func() error { return h(ctx, td) }); err != nil {
			return fmt.Errorf("before each: %w", err)
		}
	}
	return nil
}

// RunAfterEach runs the after-each hooks for td in reverse order. All
// hooks run; the first error is returned.
func (s *Suite) RunAfterEach(ctx context.Context, td TestData) error {
	s.mu.Lock()
	hooks := append([]EachHookFunc(nil), s.afterEach...)
	s.mu.Unlock()
	var first error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := SafeCall(func() error { return h(ctx, td) }); err != nil && first == nil {
			first = fmt.Errorf("after each: %w", err)
		}
	}
	return first
}

func (s *Suite) hooks(get func() []HookFunc) []HookFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HookFunc(nil), get()...)
}

// TestData describes leaf for hooks and fixtures.
func (s *Suite) TestData(leaf *Node) TestData {
	return TestData{
		Suite:    s.name,
		Name:     s.engine.ResolveName(leaf),
		Text:     leaf.Text(),
		Tags:     leaf.Tags(),
		Location: leaf.Location(),
	}
}

// Scope is the registration handle for one position of the tree.
type Scope struct {
	suite *Suite
	node  *Node
}

// Suite returns the suite the scope belongs to.
func (s *Scope) Suite() *Suite {
	return s.suite
}

// Describe registers a nested scope and builds it with fn.
func (s *Scope) Describe(text string, fn func(*Scope)) error {
	if err := s.suite.constructionAborted(); err != nil {
		return err
	}
	branch, err := s.suite.engine.RegisterBranch(s.node, text)
	if err != nil {
		return s.suite.fail(err)
	}
	if fn != nil {
		fn(&Scope{suite: s.suite, node: branch})
	}
	return nil
}

// Test registers a synchronous test.
func (s *Scope) Test(name string, body TestFunc, opts ...LeafOption) error {
	return s.register(name, wrapSync(body), opts)
}

// It registers a synchronous test; the FunSpec spelling of Test.
func (s *Scope) It(name string, body TestFunc, opts ...LeafOption) error {
	return s.Test(name, body, opts...)
}

// Property registers a synchronous test; the PropSpec spelling of Test.
func (s *Scope) Property(name string, body TestFunc, opts ...LeafOption) error {
	return s.Test(name, body, opts...)
}

// AsyncTest registers a test whose outcome arrives on a channel.
func (s *Scope) AsyncTest(name string, body AsyncTestFunc, opts ...LeafOption) error {
	return s.register(name, body, opts)
}

// Ignore registers a test that is reported as ignored and never run.
func (s *Scope) Ignore(name string, body TestFunc, opts ...LeafOption) error {
	return s.Test(name, body, append(opts, Tags(IgnoreTag))...)
}

// Info places an informational message in the tree at this point.
func (s *Scope) Info(format string, args ...interface{}) error {
	return s.inform(InformerInfo, fmt.Sprintf(format, args...))
}

// Note places a note in the tree at this point.
func (s *Scope) Note(format string, args ...interface{}) error {
	return s.inform(InformerNote, fmt.Sprintf(format, args...))
}

// Alert places a warning in the tree at this point.
func (s *Scope) Alert(format string, args ...interface{}) error {
	return s.inform(InformerAlert, fmt.Sprintf(format, args...))
}

// Markup places preformatted text in the tree at this point.
func (s *Scope) Markup(text string) error {
	return s.inform(InformerMarkup, text)
}

func (s *Scope) BeforeAll(fn HookFunc) error { return s.suite.BeforeAll(fn) }
func (s *Scope) AfterAll(fn HookFunc) error { return s.suite.AfterAll(fn) }
func (s *Scope) BeforeEach(fn EachHookFunc) error { return s.suite.BeforeEach(fn) }
func (s *Scope) AfterEach(fn EachHookFunc) error { return s.suite.AfterEach(fn) }

func (s *Scope) inform(kind InformerKind, message string) error {
	if err := s.suite.constructionAborted(); err != nil {
		return err
	}
	if _, err := s.suite.engine.RegisterInfo(s.node, kind, message); err != nil {
		return s.suite.fail(err)
	}
	return nil
}

func (s *Scope) register(name string, body AsyncTestFunc, opts []LeafOption) error {
	if err := s.suite.constructionAborted(); err != nil {
		return err
	}
	if len(s.suite.tags) > 0 {
		opts = append([]LeafOption{Tags(s.suite.tags...)}, opts...)
	}
	if _, err := s.suite.engine.RegisterLeaf(s.node, name, body, opts...); err != nil {
		return s.suite.fail(err)
	}
	return nil
}

func wrapSync(body TestFunc) AsyncTestFunc {
	if body == nil {
		return nil
	}
	return func(ctx context.Context, f *Fixture) <-chan error {
		done := make(chan error, 1)
		done <- SafeCall(func() error { return body(ctx, f) })
		return done
	}
}
