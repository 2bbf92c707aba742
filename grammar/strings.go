package grammar

import (
	"strings"

	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/peg"
)

// unescapeDouble resolves the small set of backslash escapes MoonScript
// inherits from Lua double-quoted strings. Unrecognized escapes pass the
// escaped character through unchanged (`\z` and friends are not modeled;
// no example in the corpus exercised them).
func unescapeDouble(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i == len(raw)-1 {
			b.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"', '\\', '#', '\'':
			b.WriteByte(raw[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

func unescapeSingle(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i == len(raw)-1 {
			b.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case '\'', '\\':
			b.WriteByte(raw[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

func wireStrings(g *Grammar) {
	g.StringLiteral.Pattern = peg.Choice(
		doubleQuoted(g),
		singleQuoted(),
		longBracket(),
	)
}

func doubleQuoted(g *Grammar) peg.Matcher {
	escape := peg.Seq(peg.Lit("\\"), peg.Any())
	notInterpOrQuote := peg.Seq(peg.Not(peg.Lit("\"")), peg.Not(peg.Lit("#{")), peg.Not(peg.Lit("\\")), peg.Any())
	textRun := peg.NewRule("DQStringText")
	textRun.Pattern = peg.Plus(peg.Choice(escape, notInterpOrQuote))
	textRun.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).Stack.Push(&ast.StringText{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Text: unescapeDouble(text)})
	}

	interp := peg.Seq(peg.Lit("#{"), sp, g.Exp, sp, peg.Lit("}"))

	r := peg.NewRule("DQString")
	r.Pattern = peg.Seq(mark, peg.Lit("\""), peg.Star(peg.Choice(interp, peg.Matcher(textRun))), peg.Lit("\""))
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		segs := p.PopToMark()
		n := &ast.StringLiteral{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Quote: ast.StringQuoteDouble, Segments: segs}
		ast.SetParent(n, segs...)
		p.Stack.Push(n)
	}
	return r
}

func singleQuoted() peg.Matcher {
	escape := peg.Seq(peg.Lit("\\"), peg.Any())
	normal := peg.Seq(peg.Not(peg.Lit("'")), peg.Not(peg.Lit("\\")), peg.Any())
	body := peg.NewRule("SQStringText")
	body.Pattern = peg.Star(peg.Choice(escape, normal))
	body.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).Stack.Push(&ast.StringText{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Text: unescapeSingle(text)})
	}

	r := peg.NewRule("SQString")
	r.Pattern = peg.Seq(mark, peg.Lit("'"), peg.Matcher(body), peg.Lit("'"))
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		segs := p.PopToMark()
		n := &ast.StringLiteral{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Quote: ast.StringQuoteSingle, Segments: segs}
		ast.SetParent(n, segs...)
		p.Stack.Push(n)
	}
	return r
}

// longBracket matches Lua/MoonScript's `[==[ ... ]==]` long-string form,
// content passed through completely verbatim (no escape processing).
func longBracket() peg.Matcher {
	r := peg.NewRule("LongBracketString")
	r.Pattern = peg.Seq(
		mark,
		peg.User(peg.Seq(peg.Lit("["), peg.Star(peg.Lit("=")), peg.Lit("[")), func(text string, state any) bool {
			ps(state).bracketEq = text[1 : len(text)-1] // the `=`-run between the brackets
			return true
		}),
		peg.Opt(nl),
		longBracketBody(),
	)
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		segs := p.PopToMark()
		// EqCount comes from the matched text itself, not from
		// bracketEq: that field is scratch for the synchronous matching
		// pass and may have been overwritten by other long-bracket
		// strings elsewhere in the file by the time this deferred
		// action replays.
		eq := 0
		for i := 1; i < len(text) && text[i] == '='; i++ {
			eq++
		}
		n := &ast.StringLiteral{
			Base:     ast.Base{Rng: peg.Range{Begin: begin, End: end}},
			Quote:    ast.StringQuoteLongBrack,
			Segments: segs,
			EqCount:  eq,
		}
		ast.SetParent(n, segs...)
		p.Stack.Push(n)
	}
	return r
}

// longBracketBody consumes runes until it finds a close delimiter whose
// `=`-count matches the one recorded by the opening bracket. bracketEq is
// read here synchronously, during the same matching pass that wrote it,
// so it is never stale the way a deferred-action read would be.
func longBracketBody() peg.Matcher {
	body := peg.NewRule("LongBracketBody")
	closeAt := peg.User(peg.Seq(peg.Lit("]"), peg.Star(peg.Lit("=")), peg.Lit("]")), func(text string, state any) bool {
		return text[1:len(text)-1] == ps(state).bracketEq
	})
	oneRune := peg.Seq(peg.Not(closeAt), peg.Choice(nl, peg.Any()))
	body.Pattern = peg.Seq(peg.Star(oneRune), closeAt)
	body.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		// Trim the close delimiter back off the captured text using its
		// own matched length, not bracketEq (same staleness hazard as
		// the EqCount computation above).
		eq := 0
		for i := len(text) - 2; i >= 0 && text[i] == '='; i-- {
			eq++
		}
		content := text[:len(text)-2-eq]
		ps(ctx.State).Stack.Push(&ast.StringText{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Text: content})
	}
	return body
}
