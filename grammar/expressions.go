package grammar

import (
	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/peg"
)

// captureOp matches m and, once the whole parse is accepted, records the
// matched text as the pending operator for the binary-operator tier that
// owns it.
func captureOp(m peg.Matcher) peg.Matcher {
	r := peg.NewRule("_op")
	r.Pattern = m
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).lastOp = text
	}
	return r
}

func captureUnaryOp(m peg.Matcher) peg.Matcher {
	r := peg.NewRule("_unaryOp")
	r.Pattern = m
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).lastUnaryOp = text
	}
	return r
}

// litOps builds an ordered-choice matcher over literal operator spellings.
// Order matters: longer spellings must be tried first so `==` isn't
// swallowed by a hypothetical `=` alternative appearing earlier.
func litOps(ops ...string) peg.Matcher {
	ms := make([]peg.Matcher, len(ops))
	for i, o := range ops {
		ms[i] = peg.Lit(o)
	}
	return peg.Choice(ms...)
}

// binOpTier builds a left-associative binary-operator precedence level
// over a lower-precedence matcher.
func binOpTier(lower peg.Matcher, ops ...string) peg.Matcher {
	opMatch := litOps(ops...)
	iter := actionWrap(
		peg.Seq(sp, captureOp(opMatch), sp, lower),
		func(p *parseState, begin, end peg.Position) {
			right := p.Stack.Pop()
			left := p.Stack.Pop()
			n := &ast.BinaryOp{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Op: p.lastOp, Left: left, Right: right}
			ast.SetParent(n, left, right)
			p.Stack.Push(n)
		},
	)
	return peg.Seq(lower, peg.Star(iter))
}

// keywordOpTier is binOpTier for word operators (`and`, `or`), which need
// a trailing word-boundary check so `android` doesn't match `and`.
func keywordOpTier(lower peg.Matcher, words ...string) peg.Matcher {
	ms := make([]peg.Matcher, len(words))
	for i, w := range words {
		ms[i] = Keyword(w)
	}
	opMatch := peg.Choice(ms...)
	iter := actionWrap(
		peg.Seq(sp, captureOp(opMatch), sp, lower),
		func(p *parseState, begin, end peg.Position) {
			right := p.Stack.Pop()
			left := p.Stack.Pop()
			n := &ast.BinaryOp{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Op: p.lastOp, Left: left, Right: right}
			ast.SetParent(n, left, right)
			p.Stack.Push(n)
		},
	)
	return peg.Seq(lower, peg.Star(iter))
}

func wireExpressions(g *Grammar) {
	// ChainValue: SimpleValue followed by zero or more accessors.
	accessor := peg.Choice(
		actionWrap(peg.Seq(peg.Lit("."), Name), func(p *parseState, begin, end peg.Position) {
			name := p.Stack.Pop().(*ast.Ident).Name
			p.Stack.Push(&ast.DotAccessor{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Name: name})
		}),
		actionWrap(peg.Seq(peg.Lit("\\"), Name), func(p *parseState, begin, end peg.Position) {
			name := p.Stack.Pop().(*ast.Ident).Name
			p.Stack.Push(&ast.ColonAccessor{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Name: name})
		}),
		actionWrap(peg.Seq(peg.Lit("["), sp, g.Exp, sp, peg.Lit("]")), func(p *parseState, begin, end peg.Position) {
			idx := p.Stack.Pop()
			n := &ast.IndexAccessor{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Index: idx}
			ast.SetParent(n, idx)
			p.Stack.Push(n)
		}),
		actionWrap(peg.Lit("?"), func(p *parseState, begin, end peg.Position) {
			p.Stack.Push(&ast.Existential{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}})
		}),
		actionWrap(peg.Lit("!"), func(p *parseState, begin, end peg.Position) {
			args := &ast.InvocationArgs{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}}
			p.Stack.Push(&ast.Invocation{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Args: args})
		}),
		actionWrap(peg.Seq(peg.Lit("("), mark, sp, peg.Opt(peg.Seq(g.Exp, peg.Star(peg.Seq(sp, peg.Lit(","), sp, g.Exp)))), sp, peg.Lit(")")),
			func(p *parseState, begin, end peg.Position) {
				items := p.PopToMark()
				args := &ast.InvocationArgs{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Items: items}
				ast.SetParent(args, items...)
				p.Stack.Push(&ast.Invocation{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Args: args})
			},
		),
	)

	g.ChainValue.Pattern = peg.Seq(mark, g.SimpleValue, peg.Star(accessor))
	g.ChainValue.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		if len(items) == 1 {
			p.Stack.Push(items[0])
			return
		}
		n := &ast.ChainValue{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Target: items[0], Accessors: items[1:]}
		ast.SetParent(n, items...)
		p.Stack.Push(n)
	}

	// PowerExp: ChainValue ('^' PowerExp-or-ChainValue)*, approximated
	// left-associatively; true right-associativity would need a buffered
	// fold instead of the immediate push/pop model every other tier uses.
	power := binOpTier(peg.Matcher(g.ChainValue), "^")

	// UnaryExp: at most one prefix operator directly on a PowerExp.
	unaryOp := peg.Choice(peg.Lit("-"), peg.Lit("#"), peg.Lit("~"), Keyword("not"))
	unary := peg.NewRule("UnaryExp")
	unary.Pattern = peg.Seq(peg.Opt(peg.Seq(captureUnaryOp(unaryOp), sp)), power)
	unary.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		operand := p.Stack.Pop()
		if p.lastUnaryOp != "" {
			n := &ast.UnaryOp{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Op: p.lastUnaryOp, Operand: operand}
			ast.SetParent(n, operand)
			p.Stack.Push(n)
			p.lastUnaryOp = ""
			return
		}
		p.Stack.Push(operand)
	}

	mul := binOpTier(unary, "*", "//", "/", "%")
	add := binOpTier(mul, "+", "-")
	concat := binOpTier(add, "..")
	bitwise := binOpTier(concat, "<<", ">>", "&", "|", "~")

	// Compare: a chain of comparisons is a single ChainedCompare node
	// (`1 < x < 10`), a single comparison stays a plain BinaryOp.
	cmpOp := litOps("==", "!=", "<=", ">=", "<", ">")
	cmpIter := actionWrap(
		peg.Seq(sp, captureOp(cmpOp), sp, bitwise),
		func(p *parseState, begin, end peg.Position) {
			p.PushOp(p.lastOp)
		},
	)
	compareRule := peg.NewRule("Compare")
	compareRule.Pattern = peg.Seq(markBoth, bitwise, peg.Star(cmpIter))
	compareRule.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		ops := p.PopOpsToMark()
		operands := p.PopToMark()
		if len(ops) == 0 {
			p.Stack.Push(operands[0])
			return
		}
		if len(ops) == 1 {
			n := &ast.BinaryOp{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Op: ops[0], Left: operands[0], Right: operands[1]}
			ast.SetParent(n, operands[0], operands[1])
			p.Stack.Push(n)
			return
		}
		n := &ast.ChainedCompare{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Operands: operands, Ops: ops}
		ast.SetParent(n, operands...)
		p.Stack.Push(n)
	}

	and := keywordOpTier(peg.Matcher(compareRule), "and")
	or := keywordOpTier(and, "or")

	// Exp itself performs no extra folding: every precedence tier above
	// leaves exactly one fully-built node on the stack.
	g.Exp.Pattern = or

	// ExpList: comma-separated Exp.
	g.ExpList.Pattern = peg.Seq(mark, g.Exp, peg.Star(peg.Seq(sp, peg.Lit(","), sp, g.Exp)))
	g.ExpList.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		n := &ast.ExpList{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Items: items}
		ast.SetParent(n, items...)
		p.Stack.Push(n)
	}
}

var markOps = markOpsRule()

func markOpsRule() peg.Matcher {
	r := peg.NewRule("_markOps")
	r.Pattern = peg.True()
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).MarkOps()
	}
	return r
}

var markBoth = peg.Seq(mark, markOps)
