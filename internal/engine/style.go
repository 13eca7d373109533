package engine

import "strings"

// Style is the closed set of tree shapes a suite can take. All styles
// share the engine's register, resolve and execute paths; a style only
// decides which shapes are legal.
type Style int

const (
	// FunSuite is a flat list of named tests.
	FunSuite Style = iota
	// FunSpec nests described scopes with It-style tests.
	FunSpec
	// FreeSpec nests free-text scopes; names are the texts joined by spaces.
	FreeSpec
	// PropSpec is a flat list of named properties.
	PropSpec
)

// String makes Style satisfy the fmt.Stringer interface.
func (s Style) String() string {
	switch s {
	case FunSuite:
		return "FunSuite"
	case FunSpec:
		return "FunSpec"
	case FreeSpec:
		return "FreeSpec"
	case PropSpec:
		return "PropSpec"
	default:
		return "unknown"
	}
}

// ParseStyle accepts the names printed by String.
func ParseStyle(name string) (Style, bool) {
	for _, s := range []Style{FunSuite, FunSpec, FreeSpec, PropSpec} {
		if strings.EqualFold(s.String(), name) {
			return s, true
		}
	}
	return FunSuite, false
}

// AllowsBranches reports whether the style supports nested scopes.
func (s Style) AllowsBranches() bool {
	return s == FunSpec || s == FreeSpec
}

// joinName composes a resolved test name from branch texts and the leaf text.
func (s Style) joinName(parts []string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
