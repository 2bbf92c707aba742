package lower

import (
	"fmt"
	"strings"

	"github.com/dekarrin/moonp/ast"
)

// emitValue lowers n, which may be any statement-or-expression node, under
// usage/targets. This is the single dispatch point exprForClosure and the
// trailing-statement handling in statements.go both funnel through, so that
// a construct's "as a value" lowering is defined exactly once regardless of
// whether it's reached as a plain statement, an implicit return, an
// assignment RHS, or an embedded sub-expression.
func (lw *Lowerer) emitValue(b *builder, usage ExpUsage, targets []string, n ast.Node) {
	switch t := n.(type) {
	case *ast.IfExpr:
		lw.emitIfExpr(b, usage, targets, t)
	case *ast.UnlessExpr:
		lw.emitUnlessExpr(b, usage, targets, t)
	case *ast.SwitchExpr:
		lw.emitSwitchExpr(b, usage, targets, t)
	case *ast.WithExpr:
		lw.emitWithExpr(b, usage, targets, t)
	case *ast.DoBlock:
		lw.emitDoBlock(b, usage, targets, t)
	case *ast.ClassDecl:
		lw.emitClassValue(b, usage, targets, t)
	case *ast.ListComprehension:
		lw.emitListComprehension(b, usage, targets, t)
	case *ast.TableComprehension:
		lw.emitTableComprehension(b, usage, targets, t)
	default:
		lw.emitPlainValue(b, usage, targets, lw.lowerExpr(n))
	}
}

// emitPlainValue wraps an already-lowered single Lua expression per usage.
func (lw *Lowerer) emitPlainValue(b *builder, usage ExpUsage, targets []string, expr string) {
	switch usage {
	case Common:
		b.Line(expr)
	case Return:
		b.Line("return " + expr)
	case Assignment:
		if len(targets) == 0 {
			b.Line(expr)
			return
		}
		b.Line(targets[0] + " = " + expr)
		for _, t := range targets[1:] {
			b.Line(t + " = nil")
		}
	case Closure:
		b.Line(expr)
	}
}

// lowerBranchBody lowers a Block (or single-statement body) under the given
// usage, threading it into the body's own trailing statement exactly like a
// function body or the root file does, so `y = if a then 1 else 2` assigns
// `y` in each branch instead of wrapping the whole if in a closure.
func (lw *Lowerer) lowerBranchBody(b *builder, body ast.Node, usage ExpUsage, targets []string) {
	lw.scope.Push()
	lw.lowerStmtList(b, bodyStmts(body), usage, targets)
	lw.scope.Pop()
}

func bodyStmts(body ast.Node) []ast.Node {
	if body == nil {
		return nil
	}
	if blk, ok := body.(*ast.Block); ok {
		return blk.Stmts
	}
	return []ast.Node{body}
}

func (lw *Lowerer) needsElseBranch(usage ExpUsage) bool {
	return usage == Return || usage == Assignment
}

func (lw *Lowerer) emitIfExpr(b *builder, usage ExpUsage, targets []string, ie *ast.IfExpr) {
	if usage == Closure {
		b.Line(lw.exprForClosure(ie))
		return
	}
	for i, brn := range ie.Branches {
		branch := brn.(*ast.IfBranch)
		cond := lw.lowerExpr(branch.Cond)
		kw := "if"
		if i > 0 {
			kw = "elseif"
		}
		b.Line(fmt.Sprintf("%s %s then", kw, cond))
		b.Indent()
		lw.lowerBranchBody(b, branch.Body, usage, targets)
		b.Dedent()
	}
	if ie.Else != nil {
		b.Line("else")
		b.Indent()
		lw.lowerBranchBody(b, ie.Else, usage, targets)
		b.Dedent()
	} else if lw.needsElseBranch(usage) {
		b.Line("else")
		b.Indent()
		lw.emitPlainValue(b, usage, targets, "nil")
		b.Dedent()
	}
	b.Line("end")
}

func (lw *Lowerer) emitUnlessExpr(b *builder, usage ExpUsage, targets []string, ue *ast.UnlessExpr) {
	if usage == Closure {
		b.Line(lw.exprForClosure(ue))
		return
	}
	cond := lw.lowerExpr(ue.Cond)
	b.Line(fmt.Sprintf("if not (%s) then", cond))
	b.Indent()
	lw.lowerBranchBody(b, ue.Body, usage, targets)
	b.Dedent()
	if ue.Else != nil {
		b.Line("else")
		b.Indent()
		lw.lowerBranchBody(b, ue.Else, usage, targets)
		b.Dedent()
	} else if lw.needsElseBranch(usage) {
		b.Line("else")
		b.Indent()
		lw.emitPlainValue(b, usage, targets, "nil")
		b.Dedent()
	}
	b.Line("end")
}

func (lw *Lowerer) emitSwitchExpr(b *builder, usage ExpUsage, targets []string, se *ast.SwitchExpr) {
	if usage == Closure {
		b.Line(lw.exprForClosure(se))
		return
	}
	subjVar := lw.scope.Fresh("switch")
	subj := lw.lowerExpr(se.Subject)
	b.Line(fmt.Sprintf("local %s = %s", subjVar, subj))
	for i, cn := range se.Cases {
		c := cn.(*ast.SwitchCase)
		kw := "if"
		if i > 0 {
			kw = "elseif"
		}
		parts := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			parts = append(parts, fmt.Sprintf("%s == %s", subjVar, lw.lowerExpr(v)))
		}
		b.Line(fmt.Sprintf("%s %s then", kw, strings.Join(parts, " or ")))
		b.Indent()
		lw.lowerBranchBody(b, c.Body, usage, targets)
		b.Dedent()
	}
	if se.Else != nil {
		b.Line("else")
		b.Indent()
		lw.lowerBranchBody(b, se.Else, usage, targets)
		b.Dedent()
	} else if lw.needsElseBranch(usage) {
		b.Line("else")
		b.Indent()
		lw.emitPlainValue(b, usage, targets, "nil")
		b.Dedent()
	}
	b.Line("end")
}

// emitWithExpr binds Target to a fresh local and lowers Body in its own
// scope. The grammar this lowers from never produces a bare leading-dot
// accessor node for the with-target (ChainValue always carries an explicit
// base), so there is nothing for this to rewrite inside Body beyond the
// scoping itself; `with` still evaluates to the target, as in real
// MoonScript.
func (lw *Lowerer) emitWithExpr(b *builder, usage ExpUsage, targets []string, we *ast.WithExpr) {
	if usage == Closure {
		b.Line(lw.exprForClosure(we))
		return
	}
	wv := lw.scope.Fresh("with")
	target := lw.lowerExpr(we.Target)
	b.Line(fmt.Sprintf("local %s = %s", wv, target))
	lw.withVars = append(lw.withVars, wv)
	lw.scope.Push()
	lw.lowerStmtList(b, bodyStmts(we.Body), Common, nil)
	lw.scope.Pop()
	lw.withVars = lw.withVars[:len(lw.withVars)-1]
	if usage != Common {
		lw.emitPlainValue(b, usage, targets, wv)
	}
}

func (lw *Lowerer) emitDoBlock(b *builder, usage ExpUsage, targets []string, db *ast.DoBlock) {
	if usage == Closure {
		b.Line(lw.exprForClosure(db))
		return
	}
	b.Line("do")
	b.Indent()
	lw.lowerBranchBody(b, db.Body, usage, targets)
	b.Dedent()
	b.Line("end")
}

// exprForClosure lowers n into a single Lua expression, wrapping it in an
// immediately-invoked function literal when it can't be written inline.
// This is the fallback every control-construct case in lowerExpr reaches
// for: a construct embedded as a plain sub-expression (a call argument, a
// table field, the RHS of `or`) has nowhere to emit intermediate statements
// except inside a closure of its own.
func (lw *Lowerer) exprForClosure(n ast.Node) string {
	savedDepth := lw.depth
	sub := newBuilder(lw.opts)
	sub.depth = savedDepth + 1
	lw.depth = sub.depth

	switch t := n.(type) {
	case *ast.ClassDecl:
		cv := lw.scope.Fresh("class")
		lw.lowerClassDecl(sub, t, cv)
		sub.Line("return " + cv)
	default:
		lw.emitValue(sub, Return, nil, n)
	}

	lw.depth = savedDepth
	indent := strings.Repeat(sub.indentUnit(), savedDepth)
	return "(function()\n" + sub.String() + indent + "end)()"
}
