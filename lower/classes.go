package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/moonp/ast"
)

// emitClassValue is the statement-position entry point for a ClassDecl:
// it resolves what Lua name the finished class table gets assigned to,
// then delegates the actual construction to lowerClassDecl.
func (lw *Lowerer) emitClassValue(b *builder, usage ExpUsage, targets []string, cd *ast.ClassDecl) {
	if usage == Closure {
		b.Line(lw.exprForClosure(cd))
		return
	}

	var assignTo string
	switch {
	case usage == Assignment && len(targets) >= 1:
		assignTo = targets[0]
	case cd.Name != nil:
		if simple, ok := lw.simpleIdentName(cd.Name); ok {
			if lw.scope.AddToScope(simple) {
				b.Line("local " + simple)
			}
			assignTo = simple
		} else {
			assignTo = lw.lowerExpr(cd.Name)
		}
	default:
		assignTo = lw.scope.Fresh("anon")
		b.Line("local " + assignTo)
	}

	lw.lowerClassDecl(b, cd, assignTo)

	switch usage {
	case Return:
		b.Line("return " + assignTo)
	case Assignment:
		for _, t := range targets[1:] {
			b.Line(t + " = nil")
		}
	}
}

func (lw *Lowerer) fieldKeyName(key ast.Node) (string, bool) {
	if id, ok := key.(*ast.Ident); ok {
		if safe := luaSafeName(id.Name); safe != "" {
			return safe, false
		}
		return id.Name, true
	}
	return lw.lowerExpr(key), true
}

// lowerClassDecl emits the canonical MoonScript class idiom: a base table
// of instance members (`__index` of every instance), a class table
// (callable via `__call`, carrying static members and `__init`), and -
// when Extends is present - a metatable link so unimplemented lookups
// fall through to the parent's base, plus an `__inherited` hook call.
func (lw *Lowerer) lowerClassDecl(b *builder, cd *ast.ClassDecl, assignTo string) {
	classVar := lw.scope.Fresh("class")
	baseVar := lw.scope.Fresh("base")
	var parentVar string

	b.Line("do")
	b.Indent()
	b.Line("local " + classVar)

	var instanceFields, staticFields []*ast.TableField
	var initFn *ast.FunLit
	if blk, ok := cd.Body.(*ast.Block); ok {
		for _, m := range blk.Stmts {
			tf, ok := m.(*ast.TableField)
			if !ok {
				continue
			}
			name, _ := lw.fieldKeyName(tf.Key)
			if !tf.PropertyTyped && name == "new" {
				if fn, ok := tf.Value.(*ast.FunLit); ok {
					initFn = fn
					continue
				}
			}
			if tf.PropertyTyped {
				staticFields = append(staticFields, tf)
			} else {
				instanceFields = append(instanceFields, tf)
			}
		}
	}

	lw.scope.Push()
	lw.classVars = append(lw.classVars, classVar)

	baseFieldParts := make([]string, 0, len(instanceFields))
	for _, tf := range instanceFields {
		key, quoted := lw.fieldKeyName(tf.Key)
		val := lw.lowerExpr(tf.Value)
		if quoted {
			baseFieldParts = append(baseFieldParts, fmt.Sprintf("[%s] = %s", strconv.Quote(key), val))
		} else {
			baseFieldParts = append(baseFieldParts, fmt.Sprintf("%s = %s", key, val))
		}
	}
	if len(baseFieldParts) == 0 {
		b.Line(fmt.Sprintf("local %s = { }", baseVar))
	} else {
		b.Line(fmt.Sprintf("local %s = { %s }", baseVar, strings.Join(baseFieldParts, ", ")))
	}
	b.Line(fmt.Sprintf("%s.__index = %s", baseVar, baseVar))

	if cd.Extends != nil {
		parentVar = lw.scope.Fresh("parent")
		b.Line(fmt.Sprintf("local %s = %s", parentVar, lw.lowerExpr(cd.Extends)))
		b.Line(fmt.Sprintf("if %s then", parentVar))
		b.Indent()
		b.Line(fmt.Sprintf("setmetatable(%s, %s.__base)", baseVar, parentVar))
		b.Dedent()
		b.Line("end")
	}

	var initExpr string
	switch {
	case initFn != nil:
		initExpr = lw.lowerFunLit(initFn)
	case parentVar != "":
		unit := b.indentUnit()
		inner := strings.Repeat(unit, b.depth+1)
		outer := strings.Repeat(unit, b.depth)
		initExpr = fmt.Sprintf("function(self, ...)\n%sreturn %s.__parent.__init(self, ...)\n%send", inner, classVar, outer)
	default:
		initExpr = "function() end"
	}

	name := ""
	if nm, ok := lw.simpleIdentName(cd.Name); ok {
		name = nm
	}

	b.Line(classVar + " = setmetatable({")
	b.Indent()
	b.Line(fmt.Sprintf("__init = %s,", initExpr))
	b.Line(fmt.Sprintf("__base = %s,", baseVar))
	b.Line(fmt.Sprintf("__name = %s,", strconv.Quote(name)))
	if parentVar != "" {
		b.Line(fmt.Sprintf("__parent = %s,", parentVar))
	}
	b.Dedent()
	b.Line("}, {")
	b.Indent()
	if parentVar != "" {
		b.Line("__index = function(cls, name)")
		b.Indent()
		b.Line(fmt.Sprintf("local val = rawget(%s, name)", baseVar))
		b.Line("if val == nil then")
		b.Indent()
		b.Line("local parent = rawget(cls, \"__parent\")")
		b.Line("if parent then return parent[name] end")
		b.Dedent()
		b.Line("else")
		b.Indent()
		b.Line("return val")
		b.Dedent()
		b.Line("end")
		b.Dedent()
		b.Line("end,")
	} else {
		b.Line(fmt.Sprintf("__index = %s,", baseVar))
	}
	b.Line("__call = function(cls, ...)")
	b.Indent()
	b.Line(fmt.Sprintf("local self = setmetatable({ }, %s)", baseVar))
	b.Line("cls.__init(self, ...)")
	b.Line("return self")
	b.Dedent()
	b.Line("end,")
	b.Dedent()
	b.Line("})")

	for _, tf := range staticFields {
		key, quoted := lw.fieldKeyName(tf.Key)
		val := lw.lowerExpr(tf.Value)
		if quoted {
			b.Line(fmt.Sprintf("%s[%s] = %s", classVar, strconv.Quote(key), val))
		} else {
			b.Line(fmt.Sprintf("%s.%s = %s", classVar, key, val))
		}
	}
	b.Line(fmt.Sprintf("%s.__class = %s", baseVar, classVar))
	if parentVar != "" {
		b.Line(fmt.Sprintf("if %s.__inherited then", parentVar))
		b.Indent()
		b.Line(fmt.Sprintf("%s.__inherited(%s, %s)", parentVar, parentVar, classVar))
		b.Dedent()
		b.Line("end")
	}

	lw.classVars = lw.classVars[:len(lw.classVars)-1]
	lw.scope.Pop()

	b.Line(fmt.Sprintf("%s = %s", assignTo, classVar))
	b.Dedent()
	b.Line("end")
}
