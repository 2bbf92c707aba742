// Package grammar is the concrete MoonScript grammar (component E,
// spec.md §4.E): productions built from the peg, state, ast and scope
// packages, wired together into a single entry point, Parse.
package grammar

import (
	"strings"

	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/peg"
	"github.com/dekarrin/moonp/state"
)

// parseState is the value installed as peg.Context.State for a MoonScript
// parse: the indentation/do bookkeeping from component D plus the AST
// construction stack that semantic actions push onto.
type parseState struct {
	*state.State
	Stack *ast.Stack
	marks []int

	// ops/opMarks back variadic operator-chain productions (chained
	// comparisons) the same way marks/Stack back variadic node
	// productions.
	ops     []string
	opMarks []int

	lastOp      string
	lastUnaryOp string

	// bracketEq holds the `=`-run length of the long-bracket string
	// currently being matched, read back synchronously by the close
	// delimiter during the same matching pass. Unlike lastOp it is never
	// read from a deferred action, so it doesn't need to survive past
	// the end of this one production's match.
	bracketEq string
}

func (p *parseState) MarkOps() { p.opMarks = append(p.opMarks, len(p.ops)) }

func (p *parseState) PushOp(s string) { p.ops = append(p.ops, s) }

func (p *parseState) PopOpsToMark() []string {
	n := p.opMarks[len(p.opMarks)-1]
	p.opMarks = p.opMarks[:len(p.opMarks)-1]
	out := append([]string(nil), p.ops[n:]...)
	p.ops = p.ops[:n]
	return out
}

func ps(state any) *parseState { return state.(*parseState) }

// keywords are reserved and may never be used as a plain identifier.
var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"false": true, "for": true, "while": true, "if": true, "unless": true,
	"import": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "return": true, "switch": true, "then": true, "true": true,
	"when": true, "using": true, "class": true, "extends": true,
	"export": true, "from": true, "with": true, "super": true, "continue": true,
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// sp skips inline whitespace (spaces and tabs), never newlines.
var sp = peg.Star(peg.Set(" \t"))

// comment is a line comment, `--` through end of line, not consuming the
// newline itself.
var comment = peg.Seq(peg.Lit("--"), peg.Star(peg.Seq(peg.Not(peg.Set("\n")), peg.Any())))

// spc skips inline whitespace and an optional trailing comment.
var spc = peg.Seq(sp, peg.Opt(comment))

// nl matches one newline, advancing the user state's line counter.
var nl = peg.NL(peg.Lit("\n"))

// blank matches a blank (whitespace/comment-only) line, including its
// terminating newline.
var blank = peg.Seq(spc, nl)

// skipBlank consumes any number of fully blank lines.
var skipBlank = peg.Star(blank)

// identName matches a bare identifier's text (no keyword check).
var identName = peg.Seq(
	matchRuneClass(isIdentStart),
	peg.Star(matchRuneClass(isIdentCont)),
)

func matchRuneClass(pred func(rune) bool) peg.Matcher {
	return peg.User(peg.Any(), func(text string, _ any) bool {
		r := []rune(text)
		return len(r) == 1 && pred(r[0])
	})
}

// Name matches an identifier that is not a reserved keyword, and pushes
// the resulting *ast.Ident onto the current parse's AST stack — every
// grammar production that embeds Name in a larger sequence relies on this
// push to retrieve the identifier back via Stack.Pop.
var Name peg.Matcher = func() *peg.Rule {
	r := peg.NewRule("Name")
	r.Pattern = peg.User(identName, func(text string, _ any) bool { return !keywords[text] })
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).Stack.Push(&ast.Ident{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Name: text})
	}
	return r
}()

// Keyword matches an exact reserved word, not followed by another
// identifier character (so `import2` doesn't partially match `import`).
func Keyword(word string) peg.Matcher {
	return peg.Seq(peg.Lit(word), peg.Not(matchRuneClass(isIdentCont)))
}

// digits
var digit = peg.RuneRange('0', '9')
var hexDigit = peg.Choice(peg.RuneRange('0', '9'), peg.RuneRange('a', 'f'), peg.RuneRange('A', 'F'))

var intPart = peg.Plus(digit)
var fracPart = peg.Seq(peg.Lit("."), peg.Plus(digit))
var expPart = peg.Seq(peg.Set("eE"), peg.Opt(peg.Set("+-")), peg.Plus(digit))
var hexNumber = peg.Seq(peg.LitFold("0x"), peg.Plus(hexDigit))

// numberText matches the full text of a numeric literal: hex, or decimal
// with optional fractional and exponent parts.
var numberText = peg.Choice(
	hexNumber,
	peg.Seq(intPart, peg.Opt(fracPart), peg.Opt(expPart)),
	peg.Seq(fracPart, peg.Opt(expPart)),
)

// indentCheck succeeds without consuming if the run of leading space/tab
// just matched equals the block's currently required indent width.
func indentCheck() peg.Matcher {
	return peg.User(sp, func(text string, state any) bool {
		return ps(state).CheckIndent(measureIndent(text))
	})
}

// indentAdvance succeeds and pushes a new required indent level if the
// leading whitespace at the current position is wider than the current
// one. It is a lookahead, not a consumer: it only peeks at the width to
// decide whether to push, since the Star loop that follows it re-matches
// (and consumes) each member line's own leading whitespace via
// indentCheck.
func indentAdvance() peg.Matcher {
	return peg.And(peg.User(sp, func(text string, state any) bool {
		return ps(state).Advance(measureIndent(text))
	}))
}

func measureIndent(whitespace string) int {
	width := 0
	for _, r := range whitespace {
		if r == '\t' {
			width += 4
		} else {
			width++
		}
	}
	return width
}

var popIndent = peg.Effect(func(state any) { ps(state).PopIndent() })
var preventIndent = peg.Effect(func(state any) { ps(state).PreventIndent() })

func trimToLastLine(text string) string {
	idx := strings.LastIndexByte(text, '\n')
	if idx < 0 {
		return text
	}
	return text[idx+1:]
}
