package grammar

import (
	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/peg"
)

func wireControl(g *Grammar) {
	wireIfUnless(g)
	wireSwitch(g)
	wireWith(g)
	wireDo(g)
	wireComprehensions(g)
}

func wireIfUnless(g *Grammar) {
	branch := actionWrap(
		peg.Seq(sp, g.Exp, sp, peg.Opt(Keyword("then")), peg.Choice(peg.Seq(sp, g.Block), skipBlank)),
		func(p *parseState, begin, end peg.Position) {
			var body ast.Node
			top := p.Stack.Pop()
			if blk, ok := ast.As[*ast.Block](top); ok {
				body = blk
			} else {
				// no block matched at all; top is actually the condition
				cond := top
				n := &ast.IfBranch{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Cond: cond}
				ast.SetParent(n, cond)
				p.Stack.Push(n)
				return
			}
			cond := p.Stack.Pop()
			n := &ast.IfBranch{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Cond: cond, Body: body}
			ast.SetParent(n, cond, body)
			p.Stack.Push(n)
		},
	)

	elseBranch := peg.Seq(skipBlank, sp, indentCheck(), Keyword("else"), peg.Choice(peg.Seq(sp, g.Block), skipBlank))

	g.IfExpr.Pattern = peg.Seq(
		mark,
		Keyword("if"), branch,
		peg.Star(peg.Seq(skipBlank, sp, indentCheck(), Keyword("elseif"), branch)),
		peg.Opt(elseBranch),
	)
	g.IfExpr.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		var elseBlk ast.Node
		branches := items
		if n := len(items); n > 0 {
			if _, ok := ast.As[*ast.IfBranch](items[n-1]); !ok {
				elseBlk = items[n-1]
				branches = items[:n-1]
			}
		}
		n := &ast.IfExpr{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Branches: branches, Else: elseBlk}
		ast.SetParent(n, append(append([]ast.Node{}, branches...), elseBlk)...)
		p.Stack.Push(n)
	}

	g.UnlessExpr.Pattern = peg.Seq(
		mark,
		Keyword("unless"), sp, g.Exp, sp, peg.Choice(peg.Seq(sp, g.Block), skipBlank),
		peg.Opt(elseBranch),
	)
	g.UnlessExpr.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		cond := items[0]
		var body, elseBlk ast.Node
		if len(items) > 1 {
			body = items[1]
		}
		if len(items) > 2 {
			elseBlk = items[2]
		}
		n := &ast.UnlessExpr{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Cond: cond, Body: body, Else: elseBlk}
		ast.SetParent(n, cond, body, elseBlk)
		p.Stack.Push(n)
	}
}

func wireSwitch(g *Grammar) {
	caseClause := actionWrap(
		peg.Seq(sp, indentCheck(), Keyword("when"), sp, g.ExpList, sp, peg.Opt(Keyword("then")), peg.Choice(peg.Seq(sp, g.Block), skipBlank)),
		func(p *parseState, begin, end peg.Position) {
			var body ast.Node
			top := p.Stack.Pop()
			if blk, ok := ast.As[*ast.Block](top); ok {
				body = blk
			}
			var values ast.Node
			if body != nil {
				values = p.Stack.Pop()
			} else {
				values = top
			}
			expList, _ := ast.As[*ast.ExpList](values)
			var vals []ast.Node
			if expList != nil {
				vals = expList.Items
			}
			n := &ast.SwitchCase{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Values: vals, Body: body}
			ast.SetParent(n, append(append([]ast.Node{}, vals...), body)...)
			p.Stack.Push(n)
		},
	)
	elseClause := peg.Seq(skipBlank, sp, indentCheck(), Keyword("else"), peg.Choice(peg.Seq(sp, g.Block), skipBlank))

	g.SwitchExpr.Pattern = peg.Seq(
		mark,
		Keyword("switch"), sp, g.Exp, skipBlank,
		peg.Plus(caseClause),
		peg.Opt(elseClause),
	)
	g.SwitchExpr.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		subject := items[0]
		rest := items[1:]
		var elseBlk ast.Node
		cases := rest
		if n := len(rest); n > 0 {
			if _, ok := ast.As[*ast.SwitchCase](rest[n-1]); !ok {
				elseBlk = rest[n-1]
				cases = rest[:n-1]
			}
		}
		n := &ast.SwitchExpr{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Subject: subject, Cases: cases, Else: elseBlk}
		ast.SetParent(n, append(append([]ast.Node{subject}, cases...), elseBlk)...)
		p.Stack.Push(n)
	}
}

func wireWith(g *Grammar) {
	g.WithExpr.Pattern = peg.Seq(mark, Keyword("with"), sp, g.Exp, sp, peg.Choice(peg.Seq(sp, g.Block), skipBlank))
	g.WithExpr.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		target := items[0]
		var body ast.Node
		if len(items) > 1 {
			body = items[1]
		}
		n := &ast.WithExpr{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Target: target, Body: body}
		ast.SetParent(n, target, body)
		p.Stack.Push(n)
	}
}

func wireDo(g *Grammar) {
	g.DoBlock.Pattern = peg.Seq(mark, Keyword("do"), sp, peg.Choice(peg.Seq(sp, g.Block), skipBlank))
	g.DoBlock.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		var body ast.Node
		if len(items) > 0 {
			body = items[0]
		}
		n := &ast.DoBlock{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Body: body}
		ast.SetParent(n, body)
		p.Stack.Push(n)
	}
}

// comprehensionClauses builds the `for num` / `for .. in [*]` / `when`
// clause set shared by ListComprehension and TableComprehension. Each
// call mints fresh *peg.Rule instances, since a rule belongs to exactly
// one place in the grammar.
func comprehensionClauses(g *Grammar) peg.Matcher {
	// Numeric and for-in comprehension clauses each use their own mark so
	// the optional step expression doesn't need special-case popping.
	forNumClause := peg.NewRule("CompForNum")
	forNumClause.Pattern = peg.Seq(mark, Keyword("for"), sp, Name, sp, peg.Lit("="), sp, g.Exp, sp, peg.Lit(","), sp, g.Exp, peg.Opt(peg.Seq(sp, peg.Lit(","), sp, g.Exp)))
	forNumClause.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		name := items[0].(*ast.Ident).Name
		start := items[1]
		stop := items[2]
		var step ast.Node
		if len(items) > 3 {
			step = items[3]
		}
		n := &ast.CompClauseForNum{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Var: name, Start: start, Stop: stop, Step: step}
		ast.SetParent(n, start, stop, step)
		p.Stack.Push(n)
	}

	nameList := peg.Seq(mark, Name, peg.Star(peg.Seq(sp, peg.Lit(","), sp, Name)))

	forInClause := peg.NewRule("CompForIn")
	forInClause.Pattern = peg.Seq(
		markBoth,
		Keyword("for"), sp, nameList, sp, Keyword("in"), sp,
		peg.Opt(actionWrap(peg.Lit("*"), func(p *parseState, begin, end peg.Position) { p.PushOp("slice") })),
		g.Exp,
	)
	forInClause.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		slice := len(p.PopOpsToMark()) > 0
		items := p.PopToMark()
		iterable := items[len(items)-1]
		vars := make([]string, 0, len(items)-1)
		for _, it := range items[:len(items)-1] {
			vars = append(vars, it.(*ast.Ident).Name)
		}
		n := &ast.CompClauseForIn{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Vars: vars, Iterable: iterable, Slice: slice}
		ast.SetParent(n, iterable)
		p.Stack.Push(n)
	}

	whenClause := peg.NewRule("CompWhen")
	whenClause.Pattern = peg.Seq(Keyword("when"), sp, g.Exp)
	whenClause.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		cond := p.Stack.Pop()
		n := &ast.CompClauseWhen{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Cond: cond}
		ast.SetParent(n, cond)
		p.Stack.Push(n)
	}

	clause := peg.Choice(peg.Matcher(forNumClause), peg.Matcher(forInClause), peg.Matcher(whenClause))
	return peg.Seq(clause, peg.Star(peg.Seq(sp, clause)))
}

func wireComprehensions(g *Grammar) {
	clauses := comprehensionClauses(g)

	g.ListComprehension.Pattern = peg.Seq(mark, peg.Lit("["), preventIndent, sp, g.Exp, sp, clauses, sp, popIndent, peg.Lit("]"))
	g.ListComprehension.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		expr := items[0]
		rest := items[1:]
		n := &ast.ListComprehension{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Expr: expr, Clauses: rest}
		ast.SetParent(n, append([]ast.Node{expr}, rest...)...)
		p.Stack.Push(n)
	}

	g.TableComprehension.Pattern = tableComprehensionPattern(g)
	g.TableComprehension.Action = tableComprehensionAction
}

func tableComprehensionPattern(g *Grammar) peg.Matcher {
	entry := peg.NewRule("CompTableEntry")
	entry.Pattern = peg.Seq(mark, peg.Choice(
		peg.Seq(peg.Lit("["), sp, g.Exp, sp, peg.Lit("]"), sp, peg.Lit(":"), sp, g.Exp),
		g.Exp,
	))
	entry.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		if len(items) == 2 {
			p.Stack.Push(items[0])
			p.Stack.Push(items[1])
		} else {
			p.Stack.Push(nil)
			p.Stack.Push(items[0])
		}
	}

	clauses := comprehensionClauses(g)

	return peg.Seq(mark, peg.Lit("{"), preventIndent, sp, entry, sp, clauses, sp, popIndent, peg.Lit("}"))
}

func tableComprehensionAction(ctx *peg.Context, begin, end peg.Position, text string) {
	p := ps(ctx.State)
	items := p.PopToMark()
	key := items[0]
	value := items[1]
	clauses := items[2:]
	n := &ast.TableComprehension{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Key: key, Value: value, Clauses: clauses}
	ast.SetParent(n, append([]ast.Node{key, value}, clauses...)...)
	p.Stack.Push(n)
}
