package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// RegistrationState tracks whether the tree still accepts registrations.
type RegistrationState int

const (
	StateOpen RegistrationState = iota
	StateClosed
)

// String makes RegistrationState satisfy the fmt.Stringer interface.
func (s RegistrationState) String() string {
	if s == StateClosed {
		return "closed"
	}
	return "open"
}

// IgnoreTag marks a leaf that is reported as ignored instead of running.
const IgnoreTag = "ignore"

// LeafOption configures a leaf at registration time.
type LeafOption func(*Node) error

// Tags adds tags to a test. Empty tag names are rejected.
func Tags(tags ...string) LeafOption {
	return func(n *Node) error {
		for _, t := range tags {
			if strings.TrimSpace(t) == "" {
				return ErrInvalidTag
			}
			if !n.HasTag(t) {
				n.tags = append(n.tags, t)
			}
		}
		return nil
	}
}

// At records the source position of a test.
func At(file string, line int) LeafOption {
	return func(n *Node) error {
		n.location = &Location{File: file, Line: line}
		return nil
	}
}

// Timeout limits how long a test may run.
func Timeout(d time.Duration) LeafOption {
	return func(n *Node) error {
		if d < 0 {
			return fmt.Errorf("negative timeout %v", d)
		}
		n.timeout = d
		return nil
	}
}

// Engine owns one test tree and its registration state. Each suite has
// its own engine; there is no package level registration state.
type Engine struct {
	mu     sync.RWMutex
	style  Style
	trunk  *Node
	state  RegistrationState
	nextID int
	names  map[string]*Node
	leaves int
}

// New creates an open engine with an empty trunk.
func New(style Style) *Engine {
	return &Engine{
		style: style,
		trunk: &Node{kind: KindTrunk},
		names: make(map[string]*Node),
	}
}

// Style returns the tree shape the engine enforces.
func (e *Engine) Style() Style {
	return e.style
}

// Trunk returns the root node.
func (e *Engine) Trunk() *Node {
	return e.trunk
}

// State returns the current registration state.
func (e *Engine) State() RegistrationState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Close moves the engine to StateClosed. It reports whether this call
// performed the transition; the state never goes back to open.
func (e *Engine) Close() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateClosed {
		return false
	}
	e.state = StateClosed
	return true
}

// TestCount returns the number of registered leaves.
func (e *Engine) TestCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.leaves
}

func (e *Engine) checkParent(op, name string, parent *Node) (*Node, error) {
	if e.state == StateClosed {
		return nil, &RegistrationError{Op: op, Name: name, Err: ErrRegistrationClosed}
	}
	if parent == nil {
		parent = e.trunk
	}
	if parent.kind == KindLeaf || parent.kind == KindInfo {
		return nil, &RegistrationError{Op: op, Name: name, Err: ErrNestedTest}
	}
	return parent, nil
}

// RegisterBranch appends a described scope below parent (the trunk when nil).
func (e *Engine) RegisterBranch(parent *Node, description string) (*Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	parent, err := e.checkParent("register branch", description, parent)
	if err != nil {
		return nil, err
	}
	if !e.style.AllowsBranches() {
		return nil, &RegistrationError{Op: "register branch", Name: description, Err: fmt.Errorf("%w: %s", ErrStyleViolation, e.style)}
	}

	branch := &Node{id: e.allocID(), parent: parent, kind: KindBranch, text: description}
	parent.children = append(parent.children, branch)
	return branch, nil
}

// RegisterLeaf appends a test below parent (the trunk when nil). The
// resolved name must be unique across the tree.
func (e *Engine) RegisterLeaf(parent *Node, name string, body AsyncTestFunc, opts ...LeafOption) (*Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	parent, err := e.checkParent("register test", name, parent)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, &RegistrationError{Op: "register test", Name: name, Err: ErrNilBody}
	}

	leaf := &Node{parent: parent, kind: KindLeaf, text: name, body: body}
	for _, opt := range opts {
		if err := opt(leaf); err != nil {
			return nil, &RegistrationError{Op: "register test", Name: name, Err: err}
		}
	}

	resolved := e.resolveName(leaf)
	if _, exists := e.names[resolved]; exists {
		return nil, &RegistrationError{Op: "register test", Name: resolved, Err: ErrDuplicateTestName}
	}

	leaf.id = e.allocID()
	parent.children = append(parent.children, leaf)
	e.names[resolved] = leaf
	e.leaves++
	return leaf, nil
}

// RegisterInfo records a construction-time informer message at the
// current position of the tree.
func (e *Engine) RegisterInfo(parent *Node, kind InformerKind, message string) (*Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	parent, err := e.checkParent("register "+kind.String(), "", parent)
	if err != nil {
		return nil, err
	}
	info := &Node{id: e.allocID(), parent: parent, kind: KindInfo, text: message, informer: kind}
	parent.children = append(parent.children, info)
	return info, nil
}

func (e *Engine) allocID() int {
	e.nextID++
	return e.nextID
}

// ResolveName returns the display name of a node: ancestor branch
// descriptions from the trunk down, followed by the node's own text.
func (e *Engine) ResolveName(n *Node) string {
	return e.resolveName(n)
}

func (e *Engine) resolveName(n *Node) string {
	if n == nil || n.kind == KindTrunk {
		return ""
	}
	var parts []string
	for c := n; c != nil && c.kind != KindTrunk; c = c.parent {
		if c.kind == KindInfo {
			continue
		}
		parts = append(parts, c.text)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return e.style.joinName(parts)
}

// Lookup returns the leaf registered under testName.
func (e *Engine) Lookup(testName string) (*Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	leaf, ok := e.names[testName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, testName)
	}
	return leaf, nil
}

// ResolvePath searches the tree for the leaf named testName and returns
// the child indices leading to it from the trunk.
func (e *Engine) ResolvePath(testName string) ([]int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var path []int
	if e.searchPath(e.trunk, testName, &path) {
		return path, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, testName)
}

func (e *Engine) searchPath(n *Node, testName string, path *[]int) bool {
	for i, c := range n.children {
		*path = append(*path, i)
		switch c.kind {
		case KindLeaf:
			if e.resolveName(c) == testName {
				return true
			}
		case KindBranch:
			if e.searchPath(c, testName, path) {
				return true
			}
		}
		*path = (*path)[:len(*path)-1]
	}
	return false
}

// TestNames returns every resolved test name in declaration order.
func (e *Engine) TestNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	leaves := e.trunk.Leaves()
	names := make([]string, 0, len(leaves))
	for _, l := range leaves {
		names = append(names, e.resolveName(l))
	}
	return names
}
