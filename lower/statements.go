package lower

import (
	"fmt"

	"github.com/dekarrin/moonp/ast"
	"github.com/dekarrin/moonp/scope"
)

func exportMode(m ast.LocalMode) scope.Mode {
	switch m {
	case ast.LocalModeAny:
		return scope.Any
	case ast.LocalModeCapital:
		return scope.Capital
	default:
		return scope.None
	}
}

// lowerStmtList lowers a sequence of statement wrappers. Every statement
// but the last is lowered for effect only (Common usage); the last is
// threaded usage/targets if it's eligible (spec.md §4.G implicit return) -
// a bare trailing expression or target-list with no appendix. Everything
// else (declarations, loops, explicit return, …) still ends the sequence
// but never implicitly produces a value, so an empty or ineligible tail
// under a non-Common usage gets an explicit nil.
func (lw *Lowerer) lowerStmtList(b *builder, stmts []ast.Node, usage ExpUsage, targets []string) {
	if len(stmts) == 0 {
		if usage != Common {
			lw.emitPlainValue(b, usage, targets, "nil")
		}
		return
	}
	for _, s := range stmts[:len(stmts)-1] {
		lw.lowerWrapperCommon(b, s.(*ast.StatementWrapper))
	}
	last := stmts[len(stmts)-1].(*ast.StatementWrapper)
	if usage != Common && isTrailingCandidate(last) {
		lw.lowerWrapper(b, last, usage, targets)
		return
	}
	lw.lowerWrapperCommon(b, last)
	if usage != Common {
		lw.emitPlainValue(b, usage, targets, "nil")
	}
}

func (lw *Lowerer) lowerWrapperCommon(b *builder, w *ast.StatementWrapper) {
	lw.lowerWrapper(b, w, Common, nil)
}

// isTrailingCandidate reports whether w's statement is eligible for
// implicit-return/assignment threading: a bare expression (every
// non-designated statement kind funnels through the grammar's final `Exp`
// alternative) or a no-op target list (`a.b.c` with no `=`), and only when
// it has no if/unless/comprehension appendix of its own.
func isTrailingCandidate(w *ast.StatementWrapper) bool {
	if w.Appendix != nil {
		return false
	}
	switch t := w.Stmt.(type) {
	case *ast.Import, *ast.While, *ast.For, *ast.ForEach, *ast.Return,
		*ast.Local, *ast.Export, *ast.BreakLoop, *ast.Backcall:
		return false
	case *ast.ExpListAssign:
		return t.Op == "" && t.Values == nil
	default:
		return true
	}
}

// lowerWrapper lowers one statement, applying its appendix (if present) as
// an outer if/unless/comprehension wrapper around the statement itself.
// usage/targets only apply to the innermost statement; an appendix always
// surrounds it, so a trailing `x = 1 if cond` is never itself an implicit
// return candidate (isTrailingCandidate already excludes it).
func (lw *Lowerer) lowerWrapper(b *builder, w *ast.StatementWrapper, usage ExpUsage, targets []string) {
	b.SyncLine(w.Range().Begin.Line + lw.opts.LineOffset)
	switch app := w.Appendix.(type) {
	case *ast.IfAppendix:
		cond := lw.lowerExpr(app.Cond)
		b.Line(fmt.Sprintf("if %s then", cond))
		b.Indent()
		lw.scope.Push()
		lw.lowerStatement(b, w.Stmt, usage, targets)
		lw.scope.Pop()
		b.Dedent()
		b.Line("end")
	case *ast.UnlessAppendix:
		cond := lw.lowerExpr(app.Cond)
		b.Line(fmt.Sprintf("if not (%s) then", cond))
		b.Indent()
		lw.scope.Push()
		lw.lowerStatement(b, w.Stmt, usage, targets)
		lw.scope.Pop()
		b.Dedent()
		b.Line("end")
	case *ast.CompAppendix:
		lw.scope.Push()
		lw.emitCompClauses(b, app.Clauses, func(inner *builder) {
			lw.lowerStatement(inner, w.Stmt, usage, targets)
		})
		lw.scope.Pop()
	default:
		lw.lowerStatement(b, w.Stmt, usage, targets)
	}
}

func (lw *Lowerer) lowerStatement(b *builder, stmt ast.Node, usage ExpUsage, targets []string) {
	switch t := stmt.(type) {
	case *ast.Import:
		lw.lowerImport(b, t)
	case *ast.While:
		lw.lowerWhile(b, t)
	case *ast.For:
		lw.lowerFor(b, t)
	case *ast.ForEach:
		lw.lowerForEach(b, t)
	case *ast.Return:
		lw.lowerReturn(b, t)
	case *ast.Local:
		lw.lowerLocal(b, t)
	case *ast.Export:
		lw.lowerExport(b, t)
	case *ast.BreakLoop:
		lw.lowerBreakLoop(b, t)
	case *ast.Backcall:
		lw.lowerBackcall(b, t, usage, targets)
	case *ast.ExpListAssign:
		lw.lowerExpListAssign(b, t)
	default:
		lw.emitValue(b, usage, targets, stmt)
	}
}

func (lw *Lowerer) lowerImport(b *builder, imp *ast.Import) {
	from := "nil"
	if imp.From != nil {
		from = lw.lowerExpr(imp.From)
	}
	tmp := lw.scope.Fresh("import")
	b.Line(fmt.Sprintf("local %s = %s", tmp, from))
	for _, name := range imp.Names {
		lw.scope.ForceAdd(name)
		b.Line(fmt.Sprintf("local %s = %s", name, lw.member(tmp, name)))
	}
}

func (lw *Lowerer) lowerReturn(b *builder, r *ast.Return) {
	if r.Value == nil {
		b.Line("return")
		return
	}
	values := valueList(r.Value)
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, lw.lowerExpr(v))
	}
	b.Line("return " + joinComma(parts))
}

func (lw *Lowerer) lowerLocal(b *builder, l *ast.Local) {
	for _, name := range l.Names {
		lw.scope.ForceAdd(name)
	}
	if l.Values == nil {
		if len(l.Names) == 0 {
			return // bare `local *`/`local ^` mode directive; no Lua effect
		}
		b.Line("local " + joinComma(l.Names))
		return
	}
	values := valueList(l.Values)
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, lw.lowerExpr(v))
	}
	b.Line("local " + joinComma(l.Names) + " = " + joinComma(parts))
}

func (lw *Lowerer) lowerExport(b *builder, e *ast.Export) {
	if e.Default {
		lw.fail(e, "export default is not supported by this lowering")
		return
	}
	if e.Mode != ast.LocalModeNone || len(e.Names) > 0 {
		lw.scope.MarkExported(exportMode(e.Mode), e.Names...)
	}
	if e.Values == nil {
		return
	}
	values := valueList(e.Values)
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, lw.lowerExpr(v))
	}
	targets := make([]string, 0, len(e.Names))
	for _, name := range e.Names {
		if lw.scope.AddToScope(name) {
			b.Line("local " + name)
		}
		targets = append(targets, name)
	}
	b.Line(joinComma(targets) + " = " + joinComma(parts))
}

func (lw *Lowerer) lowerBreakLoop(b *builder, bl *ast.BreakLoop) {
	if lw.loopDepth == 0 {
		word := "break"
		if bl.Continue {
			word = "continue"
		}
		lw.fail(bl, "%s used outside of a loop", word)
	}
	if bl.Continue {
		b.Line("break")
		return
	}
	if len(lw.loopConts) > 0 {
		if flag := lw.loopConts[len(lw.loopConts)-1]; flag != "" {
			b.Line(flag + " = false")
		}
	}
	b.Line("break")
}

func (lw *Lowerer) lowerBackcall(b *builder, bc *ast.Backcall, usage ExpUsage, targets []string) {
	args := valueList(bc.Args)
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, lw.lowerExpr(a))
	}
	call := lw.lowerExpr(bc.Call)
	expr := fmt.Sprintf("%s(%s)", call, joinComma(parts))
	lw.emitPlainValue(b, usage, targets, expr)
}

// lowerWhile/lowerFor/lowerForEach are statement-position loops; none of
// them produce a value (MoonScript loops never participate in implicit
// return the way if/switch/with do), so their body always lowers under
// Common usage.

func (lw *Lowerer) lowerWhile(b *builder, w *ast.While) {
	cond := lw.lowerExpr(w.Cond)
	b.Line(fmt.Sprintf("while %s do", cond))
	b.Indent()
	lw.scope.Push()
	lw.lowerLoopBody(b, bodyStmts(w.Body))
	lw.scope.Pop()
	b.Dedent()
	b.Line("end")
}

func (lw *Lowerer) lowerFor(b *builder, f *ast.For) {
	start := lw.lowerExpr(f.Start)
	stop := lw.lowerExpr(f.Stop)
	header := fmt.Sprintf("for %s = %s, %s", f.Var, start, stop)
	if f.Step != nil {
		header += ", " + lw.lowerExpr(f.Step)
	}
	b.Line(header + " do")
	b.Indent()
	lw.scope.Push()
	lw.scope.ForceAdd(f.Var)
	lw.lowerLoopBody(b, bodyStmts(f.Body))
	lw.scope.Pop()
	b.Dedent()
	b.Line("end")
}

func (lw *Lowerer) lowerForEach(b *builder, fe *ast.ForEach) {
	lw.scope.Push()
	if fe.Slice {
		obj := lw.scope.Fresh("obj")
		idx := lw.scope.Fresh("idx")
		b.Line(fmt.Sprintf("local %s = %s", obj, lw.lowerExpr(fe.Iterable)))
		from := "1"
		if fe.SliceFrom != nil {
			from = lw.normalizeSliceBound(obj, fe.SliceFrom)
		}
		to := fmt.Sprintf("#%s", obj)
		if fe.SliceTo != nil {
			to = lw.normalizeSliceBound(obj, fe.SliceTo)
		}
		step := "1"
		if fe.SliceStep != nil {
			step = lw.lowerExpr(fe.SliceStep)
		}
		b.Line(fmt.Sprintf("for %s = %s, %s, %s do", idx, from, to, step))
		b.Indent()
		if len(fe.Vars) > 0 {
			lw.scope.ForceAdd(fe.Vars[0])
			b.Line(fmt.Sprintf("local %s = %s[%s]", fe.Vars[0], obj, idx))
		}
		lw.lowerLoopBody(b, bodyStmts(fe.Body))
		b.Dedent()
		b.Line("end")
	} else {
		for _, v := range fe.Vars {
			lw.scope.ForceAdd(v)
		}
		iterable := lw.lowerExpr(fe.Iterable)
		b.Line(fmt.Sprintf("for %s in %s do", joinComma(fe.Vars), iterable))
		b.Indent()
		lw.lowerLoopBody(b, bodyStmts(fe.Body))
		b.Dedent()
		b.Line("end")
	}
	lw.scope.Pop()
}

// normalizeSliceBound evaluates a slice bound expression once, adjusting
// it to a 1-based Lua index from the end of obj if it comes out negative
// (MoonScript's `[-1]` meaning "last element").
func (lw *Lowerer) normalizeSliceBound(obj string, n ast.Node) string {
	expr := lw.lowerExpr(n)
	return fmt.Sprintf("(function() local _v = %s if _v < 0 then return #%s + _v + 1 else return _v end end)()", expr, obj)
}

// hasContinue reports whether body contains a `continue` reachable without
// crossing into a nested loop, function, or class body of its own.
func hasContinue(n ast.Node) bool {
	if n == nil {
		return false
	}
	if bl, ok := n.(*ast.BreakLoop); ok {
		return bl.Continue
	}
	switch n.(type) {
	case *ast.While, *ast.For, *ast.ForEach, *ast.FunLit, *ast.ClassDecl:
		return false
	}
	for _, c := range n.Children() {
		if hasContinue(c) {
			return true
		}
	}
	return false
}

// lowerLoopBody lowers a loop body, wrapping it in a one-shot `repeat
// ... until true` when it contains a `continue` so that `continue` can
// compile to a bare Lua `break` (which only exits the repeat, letting the
// enclosing loop proceed) while a real `break` clears a flag first so the
// check after `until true` can break the outer loop too.
func (lw *Lowerer) lowerLoopBody(b *builder, stmts []ast.Node) {
	lw.loopDepth++
	defer func() { lw.loopDepth-- }()

	if !anyHasContinue(stmts) {
		lw.loopConts = append(lw.loopConts, "")
		lw.lowerStmtList(b, stmts, Common, nil)
		lw.loopConts = lw.loopConts[:len(lw.loopConts)-1]
		return
	}
	flag := lw.scope.Fresh("continue")
	b.Line(fmt.Sprintf("local %s = true", flag))
	b.Line("repeat")
	b.Indent()
	lw.loopConts = append(lw.loopConts, flag)
	lw.lowerStmtList(b, stmts, Common, nil)
	lw.loopConts = lw.loopConts[:len(lw.loopConts)-1]
	b.Dedent()
	b.Line("until true")
	b.Line(fmt.Sprintf("if not %s then", flag))
	b.Indent()
	b.Line("break")
	b.Dedent()
	b.Line("end")
}

func anyHasContinue(stmts []ast.Node) bool {
	for _, s := range stmts {
		if hasContinue(s) {
			return true
		}
	}
	return false
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// valueList unwraps an ExpList node (as used by Local/Return/Export/
// ExpListAssign.Values) into its items, or treats a bare single-expression
// node as a one-item list.
func valueList(n ast.Node) []ast.Node {
	if n == nil {
		return nil
	}
	if el, ok := n.(*ast.ExpList); ok {
		return el.Items
	}
	return []ast.Node{n}
}
