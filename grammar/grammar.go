package grammar

import (
	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/diag"
	"github.com/dekarrin/moonp/peg"
	"github.com/dekarrin/moonp/state"
)

// Mark/PopToMark let a production remember how many AST nodes were on the
// stack before its children started pushing their own, so its own
// semantic action can pop exactly those children regardless of how many
// there turned out to be (list productions: ExpList, TableLiteral fields,
// InvocationArgs, comprehension clauses, string interpolation segments).
func (p *parseState) Mark() {
	p.marks = append(p.marks, p.Stack.Len())
}

func (p *parseState) PopToMark() []ast.Node {
	n := p.marks[len(p.marks)-1]
	p.marks = p.marks[:len(p.marks)-1]
	count := p.Stack.Len() - n
	if count == 0 {
		return nil
	}
	return p.Stack.PopN(count)
}

// mark must fire as a deferred action, not an immediate Effect: AST
// construction only happens during the final replay of the deferred
// action queue (peg.Context.runActions), at which point every node a
// production's children pushed has already landed on the stack. During
// the matching pass itself the stack is always empty, so recording
// Stack.Len() there would be meaningless.
var mark = markRule()

func markRule() peg.Matcher {
	r := peg.NewRule("_mark")
	r.Pattern = peg.True()
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).Mark()
	}
	return r
}

// push returns an Effect-style action wrapper that constructs a node from
// the matched text/range and pushes it onto the AST stack. Used for leaf
// rules with no children of their own.
func pushAction(build func(rng peg.Range, text string) ast.Node) peg.Action {
	return func(ctx *peg.Context, begin, end peg.Position, text string) {
		n := build(peg.Range{Begin: begin, End: end}, text)
		ps(ctx.State).Stack.Push(n)
	}
}

// Grammar holds every named rule of the MoonScript grammar, wired together
// by New. Fields are exported so tests in this package (and, via
// whitebox testing, future grammar extensions) can exercise a single
// production directly instead of only the whole File entry point.
type Grammar struct {
	File  *peg.Rule
	Block *peg.Rule
	Line  *peg.Rule

	Statement *peg.Rule
	ExpList   *peg.Rule
	Exp       *peg.Rule
	Value     *peg.Rule
	SimpleValue *peg.Rule
	ChainValue  *peg.Rule

	FunLit    *peg.Rule
	ClassDecl *peg.Rule

	IfExpr     *peg.Rule
	UnlessExpr *peg.Rule
	SwitchExpr *peg.Rule
	WithExpr   *peg.Rule
	DoBlock    *peg.Rule

	StringLiteral *peg.Rule
	TableLiteral  *peg.Rule

	ListComprehension  *peg.Rule
	TableComprehension *peg.Rule
}

// New wires up the complete grammar. Rules reference each other before
// every Pattern is assigned, which is why NewRule/Pattern are split: the
// grammar is mutually recursive throughout (spec.md §4.E).
func New() *Grammar {
	g := &Grammar{
		File:  peg.NewRule("File"),
		Block: peg.NewRule("Block"),
		Line:  peg.NewRule("Line"),

		Statement:   peg.NewRule("Statement"),
		ExpList:     peg.NewRule("ExpList"),
		Exp:         peg.NewRule("Exp"),
		Value:       peg.NewRule("Value"),
		SimpleValue: peg.NewRule("SimpleValue"),
		ChainValue:  peg.NewRule("ChainValue"),

		FunLit:    peg.NewRule("FunLit"),
		ClassDecl: peg.NewRule("ClassDecl"),

		IfExpr:     peg.NewRule("IfExpr"),
		UnlessExpr: peg.NewRule("UnlessExpr"),
		SwitchExpr: peg.NewRule("SwitchExpr"),
		WithExpr:   peg.NewRule("WithExpr"),
		DoBlock:    peg.NewRule("DoBlock"),

		StringLiteral: peg.NewRule("StringLiteral"),
		TableLiteral:  peg.NewRule("TableLiteral"),

		ListComprehension:  peg.NewRule("ListComprehension"),
		TableComprehension: peg.NewRule("TableComprehension"),
	}

	wireStrings(g)
	wireControl(g)
	wireClasses(g)
	wireValuesInto(g)
	wireExpressions(g)
	wireStatements(g)
	wireTop(g)

	return g
}

func wireTop(g *Grammar) {
	// File is its own top-level iteration over Lines at the root indent
	// (0), rather than going through Block/indentAdvance: the root level
	// has nothing to advance past (IndentStack already starts at [0]), so
	// Advance(0) against a top of 0 would never succeed.
	g.File.Pattern = peg.Seq(
		mark,
		skipBlank,
		peg.Star(peg.Seq(indentCheck(), g.Line, skipBlank)),
		peg.EOF(),
	)
	g.File.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		stmts := p.PopToMark()
		file := &ast.File{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Stmts: stmts}
		ast.SetParent(file, stmts...)
		p.Stack.Push(file)
	}

	// Block <- nl? skipBlank indentAdvance (indentCheck Line skipBlank)*
	// popIndent, collapsed into one Block node of however many statement
	// wrappers matched at this level. The caller always stops right
	// before the newline that follows its own header (the condition of
	// an if, the `with` target, ...), so Block itself consumes that
	// newline and any further blank lines before it can measure the
	// first member line's indentation.
	g.Block.Pattern = peg.Seq(
		mark,
		peg.Opt(nl), skipBlank,
		indentAdvance(),
		peg.Star(peg.Seq(indentCheck(), g.Line, skipBlank)),
		popIndent,
	)
	g.Block.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		stmts := p.PopToMark()
		blk := &ast.Block{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Stmts: stmts}
		ast.SetParent(blk, stmts...)
		p.Stack.Push(blk)
	}

	// Line <- Statement StatementAppendix? nl?
	// A block-bearing statement (if/while/for/class/...) will already
	// have consumed through its last member line's own trailing newline
	// internally by the time its Block finishes, so the newline here is
	// optional rather than required; EOF is accepted implicitly by simply
	// matching nothing.
	g.Line.Pattern = peg.Seq(
		mark,
		g.Statement,
		peg.Opt(statementAppendix(g)),
		peg.Opt(nl),
	)
	g.Line.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		if len(items) == 0 {
			return
		}
		stmt := items[0]
		var appendix ast.Node
		if len(items) > 1 {
			appendix = items[1]
		}
		w := &ast.StatementWrapper{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Stmt: stmt, Appendix: appendix}
		ast.SetParent(w, stmt, appendix)
		p.Stack.Push(w)
	}
}

func statementAppendix(g *Grammar) peg.Matcher {
	ifApp := peg.Seq(sp, Keyword("if"), sp, g.Exp)
	unlessApp := peg.Seq(sp, Keyword("unless"), sp, g.Exp)
	compApp := peg.Seq(mark, sp, comprehensionClauses(g))
	return peg.Choice(
		actionWrap(ifApp, func(p *parseState, begin, end peg.Position) {
			cond := p.Stack.Pop()
			n := &ast.IfAppendix{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Cond: cond}
			ast.SetParent(n, cond)
			p.Stack.Push(n)
		}),
		actionWrap(unlessApp, func(p *parseState, begin, end peg.Position) {
			cond := p.Stack.Pop()
			n := &ast.UnlessAppendix{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Cond: cond}
			ast.SetParent(n, cond)
			p.Stack.Push(n)
		}),
		actionWrap(compApp, func(p *parseState, begin, end peg.Position) {
			clauses := p.PopToMark()
			n := &ast.CompAppendix{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Clauses: clauses}
			ast.SetParent(n, clauses...)
			p.Stack.Push(n)
		}),
	)
}

// actionWrap runs m and, only if it succeeds, defers fn against the final
// range once the whole parse is accepted — a convenience for small
// one-off productions that don't warrant a standalone *peg.Rule.
func actionWrap(m peg.Matcher, fn func(p *parseState, begin, end peg.Position)) peg.Matcher {
	rule := peg.NewRule("_anon")
	rule.Pattern = m
	rule.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		fn(ps(ctx.State), begin, end)
	}
	return rule
}

// Parse runs the grammar over source and returns the resulting File, or a
// diagnostic describing the first (furthest) syntax error.
func Parse(source string) (*ast.File, *diag.Error) {
	g := New()
	p := &parseState{State: state.New(), Stack: ast.NewStack()}

	_, pos, msg, kind, ok := peg.Parse(g.File, source, p)
	if !ok {
		k := diag.Syntax
		if kind == peg.FailureInvalidEOF {
			k = diag.InvalidEOF
		}
		return nil, &diag.Error{
			Kind:       k,
			Line:       pos.Line,
			Col:        pos.Col,
			SourceLine: diag.SourceLineAt(source, pos.Line),
			Message:    msg,
		}
	}

	root := p.Stack.Root()
	file, ok := ast.As[*ast.File](root)
	if !ok {
		return nil, &diag.Error{Kind: diag.Logic, Message: "parse did not produce a File node"}
	}
	return file, nil
}
