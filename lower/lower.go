// Package lower implements component G, spec.md §4.G: the pass that turns
// a parsed *ast.File into Lua source text. It is organized the way the
// grammar package is organized (one file per concern, wired together by
// a single entry point) rather than as one big recursive-descent
// function: statements.go, expressions.go, classes.go,
// comprehensions.go, control.go, strings.go and destructure.go each own
// one slice of the AST, and lower.go only holds the shared Lowerer
// state and the panic/recover boundary every other file raises into.
package lower

import (
	"fmt"

	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/diag"
	"github.com/dekarrin/moonp/scope"
)

// ExpUsage describes how the value of a node being lowered will be
// consumed by its surroundings. Control constructs (if/unless/switch/with
// /do, comprehensions, accumulating loops) thread a non-Common usage
// straight into their branches so that, e.g., `y = if a then 1 else 2`
// lowers to an if/else that assigns `y` in each branch rather than to an
// immediately-invoked function wrapping a generic if-expression.
type ExpUsage int

const (
	// Common discards the value; the node is lowered as a plain
	// statement.
	Common ExpUsage = iota

	// Return means the value becomes the return value of the enclosing
	// function or root chunk.
	Return

	// Assignment means the value is assigned to Targets.
	Assignment

	// Closure means the node is being lowered as a plain Lua expression
	// embedded in a larger one (a call argument, a table field, ...) and
	// must come out as a single value-producing expression, wrapping in
	// an immediately-invoked function if it can't be expressed inline.
	Closure
)

// Options mirrors spec.md §6's external compile options.
type Options struct {
	// LintGlobalVariable, when true, makes Lower collect every write to
	// an identifier that was never declared local/export/import in any
	// enclosing scope into the returned Global list.
	LintGlobalVariable bool

	// ImplicitReturnRoot, when true, rewrites the root file's trailing
	// expression statement into a Return the same way a function body
	// always does.
	ImplicitReturnRoot bool

	// ReserveLineNumber pads the emitted Lua with blank lines so source
	// and output line numbers agree wherever the lowering didn't need to
	// collapse multiple source lines into one.
	ReserveLineNumber bool

	// UseSpaceOverTab selects two-space indentation instead of tabs.
	UseSpaceOverTab bool

	// LineOffset is added to every line number reported in Global
	// entries and Logic diagnostics, for callers embedding a MoonScript
	// fragment inside a larger generated file.
	LineOffset int
}

// Global records one write to a name that resolved to nothing in any
// enclosing scope, and so will become (or already is) a Lua global.
type Global struct {
	Name string
	Line int
	Col  int
}

// LogicError wraps the diag.Error raised by fail; lowering never returns
// an ordinary Go error; it panics with one of these and Lower recovers
// it at the package boundary (spec.md §7: "no local recovery").
type LogicError struct {
	Err diag.Error
}

func (e *LogicError) Error() string { return e.Err.Error() }

// Lowerer carries the state threaded through lowering one file: options,
// the original source (for diagnostic source lines), the lexical scope
// stack, accumulated global references, and a handful of small stacks
// for constructs that need to remember an enclosing context (with-target,
// current class, loop nesting for continue rewriting).
type Lowerer struct {
	opts   Options
	source string
	scope  *scope.Stack

	globals []Global

	withVars  []string // with_vars stack (spec.md §4.G "with"); innermost last
	classVars []string // _class_N of each enclosing class, innermost last
	loopConts []string // _continue_N of each enclosing loop that uses continue, innermost last
	loopDepth int       // count of enclosing While/For/ForEach, for break/continue validation

	depth int // current builder indent depth, refreshed by statement lowering before any lowerExpr call
}

// New returns a Lowerer ready to lower one file's AST.
func New(source string, opts Options) *Lowerer {
	return &Lowerer{
		opts:   opts,
		source: source,
		scope:  scope.NewStack(),
	}
}

// Lower lowers file to Lua source text. On a Logic error, lua is empty
// and err is non-nil; globals is always whatever had accumulated before
// the error (possibly none).
func Lower(source string, file *ast.File, opts Options) (lua string, globals []Global, err *diag.Error) {
	lw := New(source, opts)
	return lw.run(file)
}

func (lw *Lowerer) run(file *ast.File) (lua string, globals []Global, err *diag.Error) {
	defer func() {
		if r := recover(); r != nil {
			if le, ok := r.(*LogicError); ok {
				lua = ""
				globals = lw.globals
				errCopy := le.Err
				err = &errCopy
				return
			}
			panic(r)
		}
	}()

	b := newBuilder(lw.opts)
	usage := Common
	if lw.opts.ImplicitReturnRoot {
		usage = Return
	}
	lw.lowerStmtList(b, file.Stmts, usage, nil)

	return b.String(), lw.globals, nil
}

// fail raises a Logic diagnostic anchored at n's start position (or at
// line 0 if n is nil, for errors with no sensible source anchor) and
// aborts the rest of lowering.
func (lw *Lowerer) fail(n ast.Node, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	var line, col int
	var srcLine string
	if n != nil {
		rng := n.Range()
		line = rng.Begin.Line + lw.opts.LineOffset
		col = rng.Begin.Col
		srcLine = diag.SourceLineAt(lw.source, rng.Begin.Line)
	}
	panic(&LogicError{Err: diag.Error{
		Kind:       diag.Logic,
		Line:       line,
		Col:        col,
		SourceLine: srcLine,
		Message:    msg,
	}})
}

// recordGlobal appends a Global reference if linting is enabled.
func (lw *Lowerer) recordGlobal(name string, n ast.Node) {
	if !lw.opts.LintGlobalVariable {
		return
	}
	rng := n.Range()
	lw.globals = append(lw.globals, Global{Name: name, Line: rng.Begin.Line + lw.opts.LineOffset, Col: rng.Begin.Col})
}

// luaKeywords are reserved words spec.md §4.G's "identifier reservations"
// calls out: a MoonScript identifier equal to one of these can only be
// emitted as a Lua table-key access (t["end"]), never as a bare name.
var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// luaSafeName returns name if it's safe to use as a bare Lua identifier,
// or quotes it for table-key use otherwise.
func luaSafeName(name string) string {
	if luaKeywords[name] {
		return ""
	}
	return name
}
