package lower

import (
	"fmt"
	"strings"

	"github.com/dekarrin/moonp/ast"
)

// compoundOps maps a compound-assignment operator spelling to the binary
// operator used in its expansion (`x += 1` -> `x = x + 1`).
var compoundOps = map[string]string{
	"+=":  "+",
	"-=":  "-",
	"*=":  "*",
	"/=":  "/",
	"//=": "//",
	"%=":  "%",
	"..=": "..",
	"or=": "or",
	"and=": "and",
}

// simpleIdentName reports whether n is a bare, accessor-free identifier
// reference - either because the grammar pushed an *ast.Ident directly (a
// single-item ChainValue collapses to its own Target, with no wrapper) or
// a zero-accessor *ast.ChainValue wrapping one.
func (lw *Lowerer) simpleIdentName(n ast.Node) (string, bool) {
	switch t := n.(type) {
	case *ast.Ident:
		return t.Name, true
	case *ast.ChainValue:
		if len(t.Accessors) != 0 {
			return "", false
		}
		if id, ok := t.Target.(*ast.Ident); ok {
			return id.Name, true
		}
	}
	return "", false
}

// checkAssignable rejects a target ending in a call - `f() = 1` parses
// as a ChainValue like any other chain, but a call result isn't an
// lvalue in Lua any more than it is in MoonScript.
func (lw *Lowerer) checkAssignable(t ast.Node) {
	cv, ok := t.(*ast.ChainValue)
	if !ok || len(cv.Accessors) == 0 {
		return
	}
	if _, ok := cv.Accessors[len(cv.Accessors)-1].(*ast.Invocation); ok {
		lw.fail(t, "cannot assign to a call result")
	}
}

func (lw *Lowerer) lowerExpListAssign(b *builder, ela *ast.ExpListAssign) {
	targetList := ela.Targets.(*ast.ExpList)
	targets := targetList.Items

	if ela.Op == "" && ela.Values == nil {
		// No assignment operator: targets is just a bare expression list
		// used as a statement (e.g. a standalone call), not an lvalue list.
		parts := make([]string, 0, len(targets))
		for _, t := range targets {
			parts = append(parts, lw.lowerExpr(t))
		}
		b.Line(joinComma(parts))
		return
	}

	for _, t := range targets {
		lw.checkAssignable(t)
	}

	if ela.Op != "=" && ela.Op != "" {
		if len(targets) != 1 {
			lw.fail(ela, "compound assignment requires exactly one target")
			return
		}
		lhs := lw.lowerExpr(targets[0])
		op, ok := compoundOps[ela.Op]
		if !ok {
			lw.fail(ela, "unknown compound assignment operator %q", ela.Op)
			return
		}
		rhs := lw.lowerExpr(valueList(ela.Values)[0])
		b.Line(fmt.Sprintf("%s = %s %s %s", lhs, lhs, op, rhs))
		return
	}

	values := valueList(ela.Values)

	if len(targets) == 1 {
		if td, ok := targets[0].(*ast.TableDestructure); ok {
			src := lw.lowerExpr(values[0])
			lw.lowerDestructureAssign(b, td, src)
			return
		}
	}

	anyDestructure := false
	for _, t := range targets {
		if _, ok := t.(*ast.TableDestructure); ok {
			anyDestructure = true
			break
		}
	}

	if anyDestructure {
		tmp := lw.scope.Fresh("dest")
		rhsParts := make([]string, 0, len(values))
		for _, v := range values {
			rhsParts = append(rhsParts, lw.lowerExpr(v))
		}
		b.Line(fmt.Sprintf("local %s = { %s }", tmp, strings.Join(rhsParts, ", ")))
		for i, t := range targets {
			src := fmt.Sprintf("%s[%d]", tmp, i+1)
			if td, ok := t.(*ast.TableDestructure); ok {
				lw.lowerDestructureAssign(b, td, src)
			} else if name, ok := lw.simpleIdentName(t); ok {
				lw.scope.AddToScope(name)
				b.Line(fmt.Sprintf("local %s = %s", name, src))
			} else {
				b.Line(fmt.Sprintf("%s = %s", lw.lowerExpr(t), src))
			}
		}
		return
	}

	type resolved struct {
		lhs   string
		isNew bool
	}
	resolveds := make([]resolved, 0, len(targets))
	for _, t := range targets {
		if name, ok := lw.simpleIdentName(t); ok {
			isNew := lw.scope.AddToScope(name)
			resolveds = append(resolveds, resolved{lhs: name, isNew: isNew})
		} else {
			resolveds = append(resolveds, resolved{lhs: lw.lowerExpr(t)})
		}
	}

	rhsParts := make([]string, 0, len(values))
	for _, v := range values {
		rhsParts = append(rhsParts, lw.lowerExpr(v))
	}

	lhsParts := make([]string, 0, len(resolveds))
	newNames := make([]string, 0)
	for _, r := range resolveds {
		lhsParts = append(lhsParts, r.lhs)
		if r.isNew {
			newNames = append(newNames, r.lhs)
		}
	}

	if len(newNames) == len(lhsParts) {
		b.Line(fmt.Sprintf("local %s = %s", joinComma(lhsParts), joinComma(rhsParts)))
		return
	}
	for _, nn := range newNames {
		b.Line("local " + nn)
	}
	b.Line(joinComma(lhsParts) + " = " + joinComma(rhsParts))
}

// lowerDestructureAssign binds td's fields out of an already-lowered
// source expression src, recursing into nested TableDestructure patterns.
func (lw *Lowerer) lowerDestructureAssign(b *builder, td *ast.TableDestructure, src string) {
	for i, fn := range td.Fields {
		pd := fn.(*ast.PairDestructure)
		var access string
		if pd.Key != nil {
			if id, ok := pd.Key.(*ast.Ident); ok {
				access = lw.member(src, id.Name)
			} else {
				access = fmt.Sprintf("%s[%s]", src, lw.lowerExpr(pd.Key))
			}
		} else {
			access = fmt.Sprintf("%s[%d]", src, i+1)
		}
		switch v := pd.Value.(type) {
		case *ast.TableDestructure:
			lw.lowerDestructureAssign(b, v, access)
		case *ast.Ident:
			lw.scope.AddToScope(v.Name)
			b.Line(fmt.Sprintf("local %s = %s", v.Name, access))
		default:
			lw.fail(pd, "unsupported destructure bind target")
		}
	}
}
