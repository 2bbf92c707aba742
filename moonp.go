// Package moonp is the MoonScript-to-Lua source compiler's public entry
// point: Compile wires the grammar (component E) and lowering engine
// (component G) together exactly as spec.md §2's pipeline describes,
// parse then lower, with no I/O and no retained state across calls.
package moonp

import (
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/dekarrin/moonp/diag"
	"github.com/dekarrin/moonp/grammar"
	"github.com/dekarrin/moonp/lower"
)

// Options mirrors spec.md §6's external compile options.
type Options struct {
	// LintGlobalVariable records every identifier reference that resolves
	// to no enclosing scope into the returned Globals list.
	LintGlobalVariable bool

	// ImplicitReturnRoot turns the root block's eligible trailing
	// statement into a `return`, the same rule a function body follows.
	ImplicitReturnRoot bool

	// ReserveLineNumber pads the emitted Lua with blank lines so its line
	// numbers track the source's wherever a construct didn't need to
	// collapse multiple source lines into one.
	ReserveLineNumber bool

	// UseSpaceOverTab emits two-space indentation instead of tabs.
	UseSpaceOverTab bool

	// LineOffset is added to every line number this compile reports, for
	// embedding a fragment inside a larger generated file.
	LineOffset int
}

// Global is one identifier write or read that resolved to no enclosing
// scope, reported only when Options.LintGlobalVariable is set.
type Global struct {
	Name string
	Line int
	Col  int
}

// Compile turns source, a UTF-8 MoonScript file, into Lua. On success
// errMessage is empty. On a parse or lowering failure, lua is empty and
// errMessage carries the formatted diagnostic spec.md §6 describes:
// "LINE: MESSAGE" followed by the offending source line and a caret.
// Globals is always whatever accumulated before a lowering failure,
// possibly none.
func Compile(source string, opts Options) (lua string, errMessage string, globals []Global) {
	if !utf8.ValidString(source) {
		err := diag.Error{Kind: diag.InvalidTextEncoding, Message: "source is not valid UTF-8"}
		return "", err.FullMessage(), nil
	}

	// Fold fullwidth/halfwidth ASCII punctuation variants down to their
	// ordinary forms before lexing, so a pasted fullwidth character in an
	// identifier or accessor position is rejected by the grammar as a
	// normal syntax error rather than silently mis-lexing as an unknown
	// byte.
	normalized := width.Fold.String(source)

	file, perr := grammar.Parse(normalized)
	if perr != nil {
		return "", perr.FullMessage(), nil
	}

	lowOpts := lower.Options{
		LintGlobalVariable: opts.LintGlobalVariable,
		ImplicitReturnRoot: opts.ImplicitReturnRoot,
		ReserveLineNumber:  opts.ReserveLineNumber,
		UseSpaceOverTab:    opts.UseSpaceOverTab,
		LineOffset:         opts.LineOffset,
	}

	luaText, lowGlobals, lerr := lower.Lower(normalized, file, lowOpts)
	if lerr != nil {
		return "", lerr.FullMessage(), nil
	}

	out := make([]Global, 0, len(lowGlobals))
	for _, g := range lowGlobals {
		out = append(out, Global{Name: g.Name, Line: g.Line, Col: g.Col})
	}
	return luaText, "", out
}
