package lower

import (
	"fmt"

	"github.com/dekarrin/moonp/ast"
)

func (lw *Lowerer) emitListComprehension(b *builder, usage ExpUsage, targets []string, lc *ast.ListComprehension) {
	if usage == Closure {
		b.Line(lw.exprForClosure(lc))
		return
	}
	accum := lw.scope.Fresh("accum")
	length := lw.scope.Fresh("len")
	b.Line(fmt.Sprintf("local %s = { }", accum))
	b.Line(fmt.Sprintf("local %s = 1", length))
	lw.scope.Push()
	lw.emitCompClauses(b, lc.Clauses, func(inner *builder) {
		val := lw.lowerExpr(lc.Expr)
		inner.Line(fmt.Sprintf("%s[%s] = %s", accum, length, val))
		inner.Line(fmt.Sprintf("%s = %s + 1", length, length))
	})
	lw.scope.Pop()
	if usage != Common {
		lw.emitPlainValue(b, usage, targets, accum)
	}
}

func (lw *Lowerer) emitTableComprehension(b *builder, usage ExpUsage, targets []string, tc *ast.TableComprehension) {
	if usage == Closure {
		b.Line(lw.exprForClosure(tc))
		return
	}
	accum := lw.scope.Fresh("tbl")
	b.Line(fmt.Sprintf("local %s = { }", accum))
	lw.scope.Push()
	lw.emitCompClauses(b, tc.Clauses, func(inner *builder) {
		val := lw.lowerExpr(tc.Value)
		if tc.Key != nil {
			key := lw.lowerExpr(tc.Key)
			inner.Line(fmt.Sprintf("%s[%s] = %s", accum, key, val))
		} else {
			inner.Line(fmt.Sprintf("%s[#%s + 1] = %s", accum, accum, val))
		}
	})
	lw.scope.Pop()
	if usage != Common {
		lw.emitPlainValue(b, usage, targets, accum)
	}
}

// emitCompClauses recursively nests the for/for-in/when clauses of a
// comprehension (or a statement-level CompAppendix), invoking body at the
// innermost point once every clause's loop/guard is open.
func (lw *Lowerer) emitCompClauses(b *builder, clauses []ast.Node, body func(*builder)) {
	if len(clauses) == 0 {
		body(b)
		return
	}
	head, rest := clauses[0], clauses[1:]
	switch c := head.(type) {
	case *ast.CompClauseForNum:
		start := lw.lowerExpr(c.Start)
		stop := lw.lowerExpr(c.Stop)
		header := fmt.Sprintf("for %s = %s, %s", c.Var, start, stop)
		if c.Step != nil {
			header += ", " + lw.lowerExpr(c.Step)
		}
		lw.scope.ForceAdd(c.Var)
		b.Line(header + " do")
		b.Indent()
		lw.emitCompClauses(b, rest, body)
		b.Dedent()
		b.Line("end")

	case *ast.CompClauseForIn:
		for _, v := range c.Vars {
			lw.scope.ForceAdd(v)
		}
		if c.Slice {
			lw.emitSliceForIn(b, c, rest, body)
			return
		}
		iterable := lw.lowerExpr(c.Iterable)
		b.Line(fmt.Sprintf("for %s in %s do", joinComma(c.Vars), iterable))
		b.Indent()
		lw.emitCompClauses(b, rest, body)
		b.Dedent()
		b.Line("end")

	case *ast.CompClauseWhen:
		cond := lw.lowerExpr(c.Cond)
		b.Line(fmt.Sprintf("if %s then", cond))
		b.Indent()
		lw.emitCompClauses(b, rest, body)
		b.Dedent()
		b.Line("end")

	default:
		lw.fail(head, "unsupported comprehension clause of kind %v", head.Kind())
	}
}

func (lw *Lowerer) emitSliceForIn(b *builder, c *ast.CompClauseForIn, rest []ast.Node, body func(*builder)) {
	obj := lw.scope.Fresh("obj")
	idx := lw.scope.Fresh("idx")
	b.Line(fmt.Sprintf("local %s = %s", obj, lw.lowerExpr(c.Iterable)))
	from := "1"
	if c.SliceFrom != nil {
		from = lw.normalizeSliceBound(obj, c.SliceFrom)
	}
	to := fmt.Sprintf("#%s", obj)
	if c.SliceTo != nil {
		to = lw.normalizeSliceBound(obj, c.SliceTo)
	}
	step := "1"
	if c.SliceStep != nil {
		step = lw.lowerExpr(c.SliceStep)
	}
	b.Line(fmt.Sprintf("for %s = %s, %s, %s do", idx, from, to, step))
	b.Indent()
	if len(c.Vars) > 0 {
		b.Line(fmt.Sprintf("local %s = %s[%s]", c.Vars[0], obj, idx))
	}
	lw.emitCompClauses(b, rest, body)
	b.Dedent()
	b.Line("end")
}
