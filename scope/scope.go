// Package scope implements the lexical scope model the lowering engine
// uses to decide which identifiers need a Lua `local` declaration and
// which are exported from the module (component F, spec.md §3/§4.G).
package scope

import (
	"fmt"
	"sort"

	"github.com/dekarrin/moonp/internal/util"
)

// Mode is a scope's export mode (spec.md §3).
type Mode int

const (
	// None means the scope does not export anything.
	None Mode = iota

	// Capital exports every newly-defined name that starts with an
	// uppercase letter.
	Capital

	// Any exports every newly-defined name.
	Any
)

// Scope is one lexical level: a function body, `do`, `for`, `while`,
// destructuring if-branch, `with`-scope, comprehension, or class body.
type Scope struct {
	vars    util.StringSet
	allows  util.StringSet // nil means "no allow-list restriction"
	exports util.StringSet // nil means "no enumerated export restriction"
	mode    Mode
}

func newScope() *Scope {
	return &Scope{vars: util.NewStringSet()}
}

// Allow restricts this scope to act as a transparent barrier (spec.md §9):
// when a lookup walks past this scope, only names in the allow-list
// remain visible further out; any other name is treated as shadowed and
// the walk stops there.
func (s *Scope) Allow(names ...string) {
	if s.allows == nil {
		s.allows = util.NewStringSet()
	}
	for _, n := range names {
		s.allows.Add(n)
	}
}

// Stack is an ordered sequence of Scopes; the back is the innermost.
type Stack struct {
	scopes []*Scope
}

// NewStack returns a Stack with a single, outermost (module) scope
// already pushed.
func NewStack() *Stack {
	st := &Stack{}
	st.Push()
	return st
}

// Push opens a new lexical level.
func (st *Stack) Push() {
	st.scopes = append(st.scopes, newScope())
}

// Pop closes the innermost lexical level. Panics if called with only the
// module scope remaining, since that signals mismatched push/pop calls
// in the lowering engine.
func (st *Stack) Pop() {
	if len(st.scopes) <= 1 {
		panic("scope: pop would remove the module scope")
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
}

func (st *Stack) top() *Scope {
	return st.scopes[len(st.scopes)-1]
}

// AllowInTop marks names as visible through the current (innermost)
// scope's barrier once the caller pops past it.
func (st *Stack) AllowInTop(names ...string) {
	st.top().Allow(names...)
}

// IsDefined walks from innermost outward. When the walk passes a scope
// that carries an allow-list, a name not present in that list is treated
// as already shadowed and the search stops there, returning false (spec.md
// §9: "implement with an explicit walk, not a merged scope map").
func (st *Stack) IsDefined(name string) bool {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		sc := st.scopes[i]
		if sc.vars.Has(name) {
			return true
		}
		if sc.allows != nil && !sc.allows.Has(name) {
			return false
		}
	}
	return false
}

// AddToScope registers name as defined in the current (innermost) scope.
// It returns true iff the name was not already defined there — the
// caller should emit a Lua `local` declaration only in that case.
func (st *Stack) AddToScope(name string) bool {
	top := st.top()
	if top.vars.Has(name) {
		return false
	}
	top.vars.Add(name)
	st.maybeExport(name)
	return true
}

// ForceAdd registers name as defined in the current scope unconditionally
// — used for function-parameter slots, which are always fresh bindings
// regardless of any outer shadow.
func (st *Stack) ForceAdd(name string) {
	st.top().vars.Add(name)
}

// Fresh returns prefix + "_" + the smallest non-negative integer N such
// that the resulting name is not defined anywhere up the stack, and
// registers it in the current scope.
func (st *Stack) Fresh(prefix string) string {
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("_%s_%d", prefix, i)
		if !st.anyDefined(candidate) {
			st.ForceAdd(candidate)
			return candidate
		}
	}
}

func (st *Stack) anyDefined(name string) bool {
	for _, sc := range st.scopes {
		if sc.vars.Has(name) {
			return true
		}
	}
	return false
}

// MarkExported sets the current scope's export mode. If names is
// non-empty, export is further restricted to exactly that enumerated
// list regardless of mode.
func (st *Stack) MarkExported(mode Mode, names ...string) {
	top := st.top()
	top.mode = mode
	if len(names) > 0 {
		top.exports = util.NewStringSet()
		for _, n := range names {
			top.exports.Add(n)
		}
	}
}

// AddExported explicitly marks name as exported from the current scope,
// regardless of its export mode — used for `export a, b = ...`.
func (st *Stack) AddExported(name string) {
	top := st.top()
	if top.exports == nil {
		top.exports = util.NewStringSet()
	}
	top.exports.Add(name)
}

// maybeExport applies the current scope's export mode to a freshly
// defined name.
func (st *Stack) maybeExport(name string) {
	top := st.top()
	if top.exports != nil {
		return // an enumerated export list overrides automatic export
	}
	switch top.mode {
	case Any:
		st.AddExported(name)
	case Capital:
		if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
			st.AddExported(name)
		}
	}
}

// Exported returns the names exported from the current module scope,
// sorted for reproducible output. Intended to be called once, against the
// outermost scope, after lowering the whole file.
func (st *Stack) Exported() []string {
	top := st.top()
	if top.exports == nil {
		return nil
	}
	names := top.exports.Elements()
	sort.Strings(names)
	return names
}
