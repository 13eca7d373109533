package engine

import (
	"context"
	"time"
)

// NodeKind identifies the shape of a node in the test tree.
type NodeKind int

const (
	// KindTrunk is the single root of a tree.
	KindTrunk NodeKind = iota
	// KindBranch is a described scope grouping tests and further scopes.
	KindBranch
	// KindLeaf is one registered test.
	KindLeaf
	// KindInfo is an informer record made while the tree was constructed.
	KindInfo
)

// String makes NodeKind satisfy the fmt.Stringer interface.
func (k NodeKind) String() string {
	switch k {
	case KindTrunk:
		return "trunk"
	case KindBranch:
		return "branch"
	case KindLeaf:
		return "leaf"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// InformerKind selects the side-channel event an informer record produces.
type InformerKind int

const (
	InformerInfo InformerKind = iota
	InformerNote
	InformerAlert
	InformerMarkup
)

// String makes InformerKind satisfy the fmt.Stringer interface.
func (k InformerKind) String() string {
	switch k {
	case InformerInfo:
		return "info"
	case InformerNote:
		return "note"
	case InformerAlert:
		return "alert"
	case InformerMarkup:
		return "markup"
	default:
		return "unknown"
	}
}

// TestFunc is a synchronous test body.
type TestFunc func(ctx context.Context, f *Fixture) error

// AsyncTestFunc is an asynchronous test body. The returned channel yields
// exactly one value: nil on success or the error classifying the outcome.
type AsyncTestFunc func(ctx context.Context, f *Fixture) <-chan error

// Location is a caller supplied source position.
type Location struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// Node is one element of the test tree. The shape is fixed once
// construction finishes; nothing mutates a node while tests run.
type Node struct {
	id       int
	parent   *Node
	children []*Node
	kind     NodeKind
	text     string

	// Leaf fields
	body     AsyncTestFunc
	tags     []string
	location *Location
	timeout  time.Duration

	// Info fields
	informer InformerKind
}

func (n *Node) ID() int { return n.id }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Kind() NodeKind { return n.kind }
func (n *Node) Text() string { return n.text }
func (n *Node) Body() AsyncTestFunc { return n.body }
func (n *Node) Location() *Location { return n.location }
func (n *Node) Timeout() time.Duration { return n.timeout }
func (n *Node) Informer() InformerKind { return n.informer }

// Children returns a copy of the node's children in declaration order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Tags returns a copy of the leaf's tags.
func (n *Node) Tags() []string {
	out := make([]string, len(n.tags))
	copy(out, n.tags)
	return out
}

// HasTag reports whether the leaf carries tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IndentLevel is the number of branch ancestors of n.
func (n *Node) IndentLevel() int {
	level := 0
	for p := n.parent; p != nil; p = p.parent {
		if p.kind == KindBranch {
			level++
		}
	}
	return level
}

// Walk visits n and its descendants depth first in declaration order.
// Returning false from fn skips the subtree below the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Leaves returns all test leaves below n in declaration order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(c *Node) bool {
		if c.kind == KindLeaf {
			leaves = append(leaves, c)
		}
		return true
	})
	return leaves
}
