package grammar

import (
	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/peg"
)

func wireValuesInto(g *Grammar) {
	number := peg.NewRule("Number")
	number.Pattern = numberText
	number.Action = pushAction(func(rng peg.Range, text string) ast.Node {
		return &ast.NumberLiteral{Base: ast.Base{Rng: rng}, Text: text}
	})

	boolLit := peg.NewRule("Bool")
	boolLit.Pattern = peg.Choice(Keyword("true"), Keyword("false"))
	boolLit.Action = pushAction(func(rng peg.Range, text string) ast.Node {
		return &ast.BoolLiteral{Base: ast.Base{Rng: rng}, Value: text == "true"}
	})

	nilLit := peg.NewRule("Nil")
	nilLit.Pattern = Keyword("nil")
	nilLit.Action = pushAction(func(rng peg.Range, text string) ast.Node {
		return &ast.NilLiteral{Base: ast.Base{Rng: rng}}
	})

	vararg := peg.NewRule("Vararg")
	vararg.Pattern = peg.Lit("...")
	vararg.Action = pushAction(func(rng peg.Range, text string) ast.Node {
		return &ast.VarargLiteral{Base: ast.Base{Rng: rng}}
	})

	selfPlain := peg.NewRule("Self")
	selfPlain.Pattern = peg.Seq(peg.Lit("@"), peg.Not(peg.Choice(matchRuneClass(isIdentCont), peg.Lit("@"))))
	selfPlain.Action = pushAction(func(rng peg.Range, text string) ast.Node {
		return &ast.Self{Base: ast.Base{Rng: rng}}
	})

	selfProp := peg.NewRule("SelfProperty")
	selfProp.Pattern = peg.Seq(peg.Lit("@"), peg.And(matchRuneClass(isIdentStart)), identName)
	selfProp.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).Stack.Push(&ast.SelfProperty{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Name: text[1:]})
	}

	selfClass := peg.NewRule("SelfClass")
	selfClass.Pattern = peg.Seq(peg.Lit("@@"), identName)
	selfClass.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).Stack.Push(&ast.SelfClass{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Name: text[2:]})
	}

	paren := peg.Seq(peg.Lit("("), preventIndent, sp, skipBlank, g.Exp, skipBlank, sp, popIndent, peg.Lit(")"))

	g.TableLiteral.Pattern = tableLiteralPattern(g)
	g.TableLiteral.Action = tableLiteralAction

	g.FunLit.Pattern = funLitPattern(g)
	g.FunLit.Action = funLitAction

	g.SimpleValue.Pattern = peg.Choice(
		peg.Matcher(g.FunLit),
		peg.Matcher(g.ClassDecl),
		peg.Matcher(g.IfExpr),
		peg.Matcher(g.UnlessExpr),
		peg.Matcher(g.SwitchExpr),
		peg.Matcher(g.WithExpr),
		peg.Matcher(g.DoBlock),
		peg.Matcher(g.ListComprehension),
		peg.Matcher(g.TableComprehension),
		peg.Matcher(g.StringLiteral),
		peg.Matcher(g.TableLiteral),
		number,
		boolLit,
		nilLit,
		vararg,
		selfClass,
		selfProp,
		selfPlain,
		paren,
		Name,
	)
}

func tableLiteralPattern(g *Grammar) peg.Matcher {
	field := peg.Choice(
		actionWrap(
			peg.Seq(peg.Lit("["), sp, g.Exp, sp, peg.Lit("]"), sp, peg.Lit(":"), sp, g.Exp),
			func(p *parseState, begin, end peg.Position) {
				val := p.Stack.Pop()
				key := p.Stack.Pop()
				n := &ast.TableField{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Key: key, Value: val}
				ast.SetParent(n, key, val)
				p.Stack.Push(n)
			},
		),
		actionWrap(
			peg.Seq(peg.Lit("@"), Name, sp, peg.Lit(":"), sp, g.Exp),
			func(p *parseState, begin, end peg.Position) {
				val := p.Stack.Pop()
				key := p.Stack.Pop()
				n := &ast.TableField{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Key: key, Value: val, PropertyTyped: true}
				ast.SetParent(n, key, val)
				p.Stack.Push(n)
			},
		),
		actionWrap(
			peg.Seq(Name, sp, peg.Lit(":"), peg.Not(peg.Lit(":")), sp, g.Exp),
			func(p *parseState, begin, end peg.Position) {
				val := p.Stack.Pop()
				key := p.Stack.Pop()
				n := &ast.TableField{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Key: key, Value: val}
				ast.SetParent(n, key, val)
				p.Stack.Push(n)
			},
		),
		actionWrap(
			g.Exp,
			func(p *parseState, begin, end peg.Position) {
				val := p.Stack.Pop()
				n := &ast.TableField{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Value: val}
				ast.SetParent(n, val)
				p.Stack.Push(n)
			},
		),
	)
	sep := peg.Choice(peg.Seq(sp, peg.Lit(","), sp), peg.Seq(skipBlank, sp))
	braceBody := peg.Seq(
		peg.Lit("{"), preventIndent, skipBlank, sp,
		peg.Opt(peg.Seq(field, peg.Star(peg.Seq(sep, field)), peg.Opt(peg.Seq(sp, peg.Lit(","))))),
		skipBlank, sp, popIndent, peg.Lit("}"),
	)
	return peg.Seq(mark, braceBody)
}

func tableLiteralAction(ctx *peg.Context, begin, end peg.Position, text string) {
	p := ps(ctx.State)
	fields := p.PopToMark()
	n := &ast.TableLiteral{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Fields: fields}
	ast.SetParent(n, fields...)
	p.Stack.Push(n)
}

func funLitPattern(g *Grammar) peg.Matcher {
	arg := peg.Choice(
		actionWrap(peg.Lit("..."), func(p *parseState, begin, end peg.Position) {
			p.Stack.Push(&ast.FunArg{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Vararg: true})
		}),
		actionWrap(
			peg.Seq(Name, peg.Opt(peg.Seq(sp, peg.Lit("="), sp, g.Exp))),
			func(p *parseState, begin, end peg.Position) {
				// Name alone pushed an *ast.Ident; an optional default
				// pushed the default Exp after it.
				var def ast.Node
				top := p.Stack.Pop()
				if _, ok := top.(*ast.Ident); !ok {
					def = top
					top = p.Stack.Pop()
				}
				name := top.(*ast.Ident).Name
				n := &ast.FunArg{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Name: name, Default: def}
				ast.SetParent(n, def)
				p.Stack.Push(n)
			},
		),
	)
	argList := peg.Opt(peg.Seq(arg, peg.Star(peg.Seq(sp, peg.Lit(","), sp, arg))))
	params := peg.Opt(peg.Seq(peg.Lit("("), sp, argList, sp, peg.Lit(")"), sp))
	arrow := peg.Choice(peg.Lit("=>"), peg.Lit("->"))
	return peg.Seq(mark, params, captureArrow(arrow), sp, funBody(g))
}

// captureArrow records whether the fat (=>, implicit self) or thin (->)
// arrow was used, without pushing an AST node of its own.
func captureArrow(m peg.Matcher) peg.Matcher {
	r := peg.NewRule("_arrow")
	r.Pattern = m
	r.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		ps(ctx.State).lastOp = text
	}
	return r
}

func funBody(g *Grammar) peg.Matcher {
	return peg.Choice(peg.Matcher(g.Block), peg.Seq(skipBlank))
}

func funLitAction(ctx *peg.Context, begin, end peg.Position, text string) {
	p := ps(ctx.State)
	items := p.PopToMark()
	var body ast.Node
	var funArgs []ast.Node
	if n := len(items); n > 0 {
		if blk, ok := ast.As[*ast.Block](items[n-1]); ok {
			body = blk
			funArgs = items[:n-1]
		} else {
			funArgs = items
		}
	}
	n := &ast.FunLit{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Args: funArgs, FatArrow: p.lastOp == "=>", Body: body}
	ast.SetParent(n, append(append([]ast.Node{}, funArgs...), body)...)
	p.Stack.Push(n)
}
