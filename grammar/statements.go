package grammar

import (
	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/peg"
)

func nameListPattern() peg.Matcher {
	return peg.Seq(mark, Name, peg.Star(peg.Seq(sp, peg.Lit(","), sp, Name)))
}

func namesFromMarked(p *parseState) []string {
	items := p.PopToMark()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.(*ast.Ident).Name)
	}
	return out
}

func wireStatements(g *Grammar) {
	destructure := wireDestructure(g)

	assignTarget := peg.Choice(peg.Matcher(destructure), peg.Matcher(g.ChainValue))
	targetList := peg.NewRule("TargetList")
	targetList.Pattern = peg.Seq(mark, assignTarget, peg.Star(peg.Seq(sp, peg.Lit(","), sp, assignTarget)))
	targetList.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		n := &ast.ExpList{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Items: items}
		ast.SetParent(n, items...)
		p.Stack.Push(n)
	}

	imp := peg.NewRule("Import")
	imp.Pattern = peg.Seq(Keyword("import"), sp, nameListPattern(), sp, peg.Opt(peg.Seq(Keyword("from"), sp, g.Exp)))
	imp.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		// the optional `from` expression, if present, was pushed after
		// the name idents; peel it off first if the last stack entry
		// isn't an Ident belonging to this name list.
		names := namesFromMarked(p)
		var from ast.Node
		if p.Stack.Len() > 0 {
			if _, isIdent := ast.As[*ast.Ident](p.Stack.Peek()); !isIdent {
				from = p.Stack.Pop()
			}
		}
		n := &ast.Import{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Names: names, From: from}
		ast.SetParent(n, from)
		p.Stack.Push(n)
	}

	whileStmt := peg.NewRule("While")
	whileStmt.Pattern = peg.Seq(Keyword("while"), sp, g.Exp, sp, peg.Choice(peg.Seq(sp, g.Block), skipBlank))
	whileStmt.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		top := p.Stack.Pop()
		var body, cond ast.Node
		if _, ok := ast.As[*ast.Block](top); ok {
			body = top
			cond = p.Stack.Pop()
		} else {
			cond = top
		}
		n := &ast.While{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Cond: cond, Body: body}
		ast.SetParent(n, cond, body)
		p.Stack.Push(n)
	}

	forNum := peg.NewRule("ForStatement")
	forNum.Pattern = peg.Seq(
		mark,
		Keyword("for"), sp, Name, sp, peg.Lit("="), sp, g.Exp, sp, peg.Lit(","), sp, g.Exp,
		peg.Opt(peg.Seq(sp, peg.Lit(","), sp, g.Exp)),
		sp, peg.Choice(peg.Seq(sp, g.Block), skipBlank),
	)
	forNum.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		name := items[0].(*ast.Ident).Name
		start := items[1]
		stop := items[2]
		rest := items[3:]
		var step, body ast.Node
		if len(rest) == 2 {
			step, body = rest[0], rest[1]
		} else if len(rest) == 1 {
			if _, ok := ast.As[*ast.Block](rest[0]); ok {
				body = rest[0]
			} else {
				step = rest[0]
			}
		}
		n := &ast.For{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Var: name, Start: start, Stop: stop, Step: step, Body: body}
		ast.SetParent(n, start, stop, step, body)
		p.Stack.Push(n)
	}

	forEach := peg.NewRule("ForEachStatement")
	forEach.Pattern = peg.Seq(
		markBoth,
		Keyword("for"), sp, nameListPattern(), sp, Keyword("in"), sp,
		peg.Opt(actionWrap(peg.Lit("*"), func(p *parseState, begin, end peg.Position) { p.PushOp("slice") })),
		g.Exp, sp,
		peg.Choice(peg.Seq(sp, g.Block), skipBlank),
	)
	forEach.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		slice := len(p.PopOpsToMark()) > 0
		items := p.PopToMark()
		var body ast.Node
		rest := items
		if n := len(items); n > 0 {
			if _, ok := ast.As[*ast.Block](items[n-1]); ok {
				body = items[n-1]
				rest = items[:n-1]
			}
		}
		iterable := rest[len(rest)-1]
		vars := make([]string, 0, len(rest)-1)
		for _, it := range rest[:len(rest)-1] {
			vars = append(vars, it.(*ast.Ident).Name)
		}
		n := &ast.ForEach{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Vars: vars, Iterable: iterable, Slice: slice, Body: body}
		ast.SetParent(n, iterable, body)
		p.Stack.Push(n)
	}

	ret := peg.NewRule("Return")
	ret.Pattern = peg.Seq(Keyword("return"), peg.Opt(peg.Seq(sp, g.ExpList)))
	ret.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		var val ast.Node
		if p.Stack.Len() > 0 {
			if _, ok := ast.As[*ast.ExpList](p.Stack.Peek()); ok {
				val = p.Stack.Pop()
			}
		}
		n := &ast.Return{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Value: val}
		ast.SetParent(n, val)
		p.Stack.Push(n)
	}

	local := peg.NewRule("Local")
	local.Pattern = peg.Seq(
		mark,
		Keyword("local"),
		peg.Opt(peg.Seq(sp, captureOp(peg.Choice(peg.Lit("*"), peg.Lit("^"))))),
		peg.Opt(peg.Seq(sp, nameListPattern(), peg.Opt(peg.Seq(sp, peg.Lit("="), sp, g.ExpList)))),
	)
	local.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		mode := ast.LocalModeNone
		switch p.lastOp {
		case "*":
			mode = ast.LocalModeAny
		case "^":
			mode = ast.LocalModeCapital
		}
		p.lastOp = ""
		var names []string
		var values ast.Node
		rest := items
		if n := len(items); n > 0 {
			if _, ok := ast.As[*ast.ExpList](items[n-1]); ok {
				values = items[n-1]
				rest = items[:n-1]
			}
		}
		for _, it := range rest {
			names = append(names, it.(*ast.Ident).Name)
		}
		n := &ast.Local{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Names: names, Mode: mode, Values: values}
		ast.SetParent(n, values)
		p.Stack.Push(n)
	}

	export := peg.NewRule("Export")
	export.Pattern = peg.Seq(
		markBoth,
		Keyword("export"),
		peg.Choice(
			peg.Seq(sp, Keyword("default"), sp, actionWrap(g.Exp, func(p *parseState, begin, end peg.Position) { p.PushOp("default") })),
			peg.Seq(
				peg.Opt(peg.Seq(sp, captureOp(peg.Choice(peg.Lit("*"), peg.Lit("^"))))),
				peg.Opt(peg.Seq(sp, nameListPattern(), peg.Opt(peg.Seq(sp, peg.Lit("="), sp, g.ExpList)))),
			),
		),
	)
	export.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		isDefault := len(p.PopOpsToMark()) > 0
		items := p.PopToMark()
		if isDefault {
			val := items[0]
			n := &ast.Export{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Default: true, Values: val}
			ast.SetParent(n, val)
			p.Stack.Push(n)
			return
		}
		mode := ast.LocalModeNone
		switch p.lastOp {
		case "*":
			mode = ast.LocalModeAny
		case "^":
			mode = ast.LocalModeCapital
		}
		p.lastOp = ""
		var names []string
		var values ast.Node
		rest := items
		if n := len(items); n > 0 {
			if _, ok := ast.As[*ast.ExpList](items[n-1]); ok {
				values = items[n-1]
				rest = items[:n-1]
			}
		}
		for _, it := range rest {
			names = append(names, it.(*ast.Ident).Name)
		}
		n := &ast.Export{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Mode: mode, Names: names, Values: values}
		ast.SetParent(n, values)
		p.Stack.Push(n)
	}

	breakLoop := peg.NewRule("BreakLoop")
	breakLoop.Pattern = peg.Choice(Keyword("break"), Keyword("continue"))
	breakLoop.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).Stack.Push(&ast.BreakLoop{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Continue: text == "continue"})
	}

	backcall := peg.NewRule("Backcall")
	backcall.Pattern = peg.Seq(mark, g.ExpList, sp, peg.Lit("<-"), sp, g.Exp)
	backcall.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		args, call := items[0], items[1]
		n := &ast.Backcall{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Args: args, Call: call}
		ast.SetParent(n, args, call)
		p.Stack.Push(n)
	}

	assignOp := litOps("+=", "-=", "*=", "//=", "/=", "%=", "..=", "or=", "and=", "=")
	expAssign := peg.NewRule("ExpListAssign")
	expAssign.Pattern = peg.Seq(mark, targetList, peg.Opt(peg.Seq(sp, captureOp(assignOp), sp, g.ExpList)))
	expAssign.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		targets := items[0]
		var values ast.Node
		op := p.lastOp
		if len(items) > 1 {
			values = items[1]
		}
		p.lastOp = ""
		n := &ast.ExpListAssign{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Targets: targets, Op: op, Values: values}
		ast.SetParent(n, targets, values)
		p.Stack.Push(n)
	}

	g.Statement.Pattern = peg.Choice(
		peg.Matcher(imp),
		peg.Matcher(whileStmt),
		peg.Matcher(forNum),
		peg.Matcher(forEach),
		peg.Matcher(ret),
		peg.Matcher(local),
		peg.Matcher(export),
		peg.Matcher(breakLoop),
		peg.Matcher(backcall),
		peg.Matcher(expAssign),
		g.Exp,
	)
}

func wireDestructure(g *Grammar) *peg.Rule {
	destructure := peg.NewRule("TableDestructure")

	pairKey := peg.Choice(
		peg.Seq(peg.Lit("["), sp, g.Exp, sp, peg.Lit("]")),
		Name,
	)
	pairValue := peg.Choice(peg.Matcher(destructure), Name)

	pair := peg.NewRule("PairDestructure")
	pair.Pattern = peg.Seq(mark, peg.Choice(
		peg.Seq(pairKey, sp, peg.Lit(":"), sp, pairValue),
		pairValue,
	))
	pair.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		var key, value ast.Node
		if len(items) == 2 {
			key, value = items[0], items[1]
		} else {
			value = items[0]
		}
		n := &ast.PairDestructure{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Key: key, Value: value}
		ast.SetParent(n, key, value)
		p.Stack.Push(n)
	}

	destructure.Pattern = peg.Seq(
		mark,
		peg.Lit("{"), preventIndent, sp,
		peg.Opt(peg.Seq(peg.Matcher(pair), peg.Star(peg.Seq(sp, peg.Lit(","), sp, peg.Matcher(pair))))),
		sp, popIndent, peg.Lit("}"),
	)
	destructure.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		fields := p.PopToMark()
		n := &ast.TableDestructure{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Fields: fields}
		ast.SetParent(n, fields...)
		p.Stack.Push(n)
	}

	return destructure
}
