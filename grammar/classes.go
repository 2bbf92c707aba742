package grammar

import (
	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/peg"
)

func wireClasses(g *Grammar) {
	member := peg.Choice(
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
	)

	body := peg.NewRule("ClassBody")
	body.Pattern = peg.Seq(
		mark,
		peg.Opt(nl), skipBlank,
		indentAdvance(),
		peg.Seq(indentCheck(), member, skipBlank),
		peg.Star(peg.Seq(indentCheck(), member, skipBlank)),
		popIndent,
	)
	body.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		fields := p.PopToMark()
		n := &ast.Block{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Stmts: fields}
		ast.SetParent(n, fields...)
		p.Stack.Push(n)
	}

	g.ClassDecl.Pattern = peg.Seq(
		mark,
		Keyword("class"), sp,
		peg.Opt(peg.Seq(g.ChainValue, sp)),
		peg.Opt(peg.Seq(Keyword("extends"), sp, g.Exp, sp)),
		skipBlank,
		peg.Opt(peg.Matcher(body)),
	)
	g.ClassDecl.Action = func(ctx *peg.Context, begin, end peg.Position, text string) {
		p := ps(ctx.State)
		items := p.PopToMark()
		var name, extends, classBody ast.Node
		for _, it := range items {
			switch it.(type) {
			case *ast.Block:
				classBody = it
			default:
				if name == nil {
					name = it
				} else {
					extends = it
				}
			}
		}
		n := &ast.ClassDecl{Base: ast.Base{Rng: peg.Range{Begin: begin, End: end}}, Name: name, Extends: extends, Body: classBody}
		ast.SetParent(n, name, extends, classBody)
		p.Stack.Push(n)
	}
}
