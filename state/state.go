// Package state is the user-managed parser state threaded through one
// parse (component D, spec.md §3/§4.D): the indentation stack and the
// handful of other mutable fields the grammar's semantic predicates
// inspect and mutate while matching.
package state

import "strings"

// suspended is the indent-stack sentinel that disables indent-equality
// checks, pushed by PreventIndent.
const suspended = -1

// tabWidth is how many columns a tab character counts for when measuring
// indentation (spec.md §4.D).
const tabWidth = 4

// State is the value installed as peg.Context.State for one MoonScript
// parse. It must not be shared between concurrent parses (spec.md §5).
type State struct {
	// IndentStack's top element is the currently required indent width.
	// Initialized with a single 0.
	IndentStack []int

	// DoStack: a false on top disables matching the standalone `do`
	// keyword, used to avoid ambiguity directly after with/while/for.
	DoStack []bool

	// HeredocOpenWidth is the `=`-count of the currently open long-bracket
	// string, for matching its close.
	HeredocOpenWidth int

	// StringBuffer is scratch space for keyword-exclusion user
	// predicates (identifiers that collide with reserved words).
	StringBuffer strings.Builder

	ModuleName    string
	ModuleFix     bool
	ExportCount   int
	ExportDefault bool
}

// New returns a freshly initialized State, per spec.md §3's "Initialized
// with [0]".
func New() *State {
	return &State{
		IndentStack: []int{0},
		DoStack:     []bool{true},
	}
}

// MeasureIndent returns the column width of a run of leading spaces/tabs,
// counting each tab as tabWidth columns (spec.md §4.D).
func MeasureIndent(whitespace string) int {
	width := 0
	for _, r := range whitespace {
		if r == '\t' {
			width += tabWidth
		} else {
			width++
		}
	}
	return width
}

// CheckIndent reports whether width equals the current required indent.
// A suspended top (PreventIndent) makes every width acceptable.
func (s *State) CheckIndent(width int) bool {
	top := s.IndentStack[len(s.IndentStack)-1]
	if top == suspended {
		return true
	}
	return width == top
}

// Advance reports whether width is strictly greater than the current
// required indent, and if so pushes it as the new required indent.
func (s *State) Advance(width int) bool {
	top := s.IndentStack[len(s.IndentStack)-1]
	if top != suspended && width <= top {
		return false
	}
	s.IndentStack = append(s.IndentStack, width)
	return true
}

// PreventIndent pushes the suspended sentinel, disabling indent-equality
// checks for the scope it guards (used inside parenthesized expressions
// that may span lines).
func (s *State) PreventIndent() {
	s.IndentStack = append(s.IndentStack, suspended)
}

// PopIndent always succeeds and pops the top of the indent stack.
func (s *State) PopIndent() {
	if len(s.IndentStack) > 1 {
		s.IndentStack = s.IndentStack[:len(s.IndentStack)-1]
	}
}

// PushDo pushes whether the standalone `do` keyword is currently
// matchable.
func (s *State) PushDo(allowed bool) {
	s.DoStack = append(s.DoStack, allowed)
}

// PopDo pops the do-stack.
func (s *State) PopDo() {
	if len(s.DoStack) > 1 {
		s.DoStack = s.DoStack[:len(s.DoStack)-1]
	}
}

// DoAllowed reports whether the standalone `do` keyword may currently
// match.
func (s *State) DoAllowed() bool {
	return s.DoStack[len(s.DoStack)-1]
}
