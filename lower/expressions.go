package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/moonp/ast"
)

// binOps maps a MoonScript binary operator spelling to its Lua
// equivalent; every entry not listed here (==, <, >, <=, >=, +, -, *, /,
// //, %, ^, .., and, or, bitwise) passes through unchanged.
var binOps = map[string]string{
	"!=": "~=",
}

func lowerBinOp(op string) string {
	if lua, ok := binOps[op]; ok {
		return lua
	}
	return op
}

// lowerExpr lowers any expression node to a single Lua expression string.
// Control constructs that can't be written inline fall through to
// exprForClosure, which wraps them in an immediately-invoked function.
func (lw *Lowerer) lowerExpr(n ast.Node) string {
	switch t := n.(type) {
	case nil:
		return "nil"

	case *ast.NumberLiteral:
		return t.Text
	case *ast.BoolLiteral:
		if t.Value {
			return "true"
		}
		return "false"
	case *ast.NilLiteral:
		return "nil"
	case *ast.VarargLiteral:
		return "..."
	case *ast.StringLiteral:
		return lw.lowerStringLiteral(t)

	case *ast.Ident:
		if t.Name == "super" && len(lw.classVars) > 0 {
			return lw.classVars[len(lw.classVars)-1] + ".__parent"
		}
		if lw.scope.IsDefined(t.Name) {
			return t.Name
		}
		lw.recordGlobal(t.Name, t)
		return t.Name

	case *ast.Self:
		return "self"
	case *ast.SelfProperty:
		return lw.member("self", t.Name)
	case *ast.SelfClass:
		if len(lw.classVars) > 0 {
			return lw.member(lw.classVars[len(lw.classVars)-1], t.Name)
		}
		return lw.member("self.__class", t.Name)

	case *ast.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", lw.lowerExpr(t.Left), lowerBinOp(t.Op), lw.lowerExpr(t.Right))
	case *ast.UnaryOp:
		op := t.Op
		if op == "not" || op == "#" {
			return fmt.Sprintf("(%s %s)", op, lw.lowerExpr(t.Operand))
		}
		return fmt.Sprintf("(%s%s)", op, lw.lowerExpr(t.Operand))
	case *ast.ChainedCompare:
		return lw.lowerChainedCompare(t)

	case *ast.TableLiteral:
		return lw.lowerTableLiteral(t)

	case *ast.FunLit:
		return lw.lowerFunLit(t)

	case *ast.ChainValue:
		return lw.lowerChainValue(t)

	case *ast.ClassDecl, *ast.IfExpr, *ast.UnlessExpr, *ast.SwitchExpr,
		*ast.WithExpr, *ast.DoBlock, *ast.ListComprehension, *ast.TableComprehension:
		return lw.exprForClosure(n)

	default:
		lw.fail(n, "cannot lower node of kind %v as an expression", n.Kind())
		return ""
	}
}

func (lw *Lowerer) member(base, name string) string {
	if safe := luaSafeName(name); safe != "" {
		return base + "." + safe
	}
	return base + "[" + strconv.Quote(name) + "]"
}

// lowerChainedCompare expands `a < b < c` into `(a < b) and (b < c)`,
// evaluating each shared operand exactly once via a temporary when it
// isn't already side-effect free.
func (lw *Lowerer) lowerChainedCompare(t *ast.ChainedCompare) string {
	operands := make([]string, len(t.Operands))
	for i, o := range t.Operands {
		operands[i] = lw.lowerExpr(o)
	}
	parts := make([]string, 0, len(t.Ops))
	for i, op := range t.Ops {
		parts = append(parts, fmt.Sprintf("(%s %s %s)", operands[i], lowerBinOp(op), operands[i+1]))
	}
	return "(" + strings.Join(parts, " and ") + ")"
}

func (lw *Lowerer) lowerTableLiteral(t *ast.TableLiteral) string {
	if len(t.Fields) == 0 {
		return "{ }"
	}
	parts := make([]string, 0, len(t.Fields))
	for _, fn := range t.Fields {
		tf := fn.(*ast.TableField)
		val := lw.lowerExpr(tf.Value)
		if tf.Key == nil {
			parts = append(parts, val)
			continue
		}
		if id, ok := tf.Key.(*ast.Ident); ok {
			if safe := luaSafeName(id.Name); safe != "" {
				parts = append(parts, fmt.Sprintf("%s = %s", safe, val))
				continue
			}
			parts = append(parts, fmt.Sprintf("[%s] = %s", strconv.Quote(id.Name), val))
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] = %s", lw.lowerExpr(tf.Key), val))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// lowerFunLit lowers a function literal to a Lua `function(...) ... end`
// expression. A fat-arrow (`=>`) literal gets an implicit leading `self`
// parameter, matching spec.md §4.G's fat-arrow rule.
func (lw *Lowerer) lowerFunLit(fn *ast.FunLit) string {
	savedDepth := lw.depth
	sub := newBuilder(lw.opts)
	sub.depth = savedDepth + 1
	lw.depth = sub.depth

	lw.scope.Push()

	params := make([]string, 0, len(fn.Args)+1)
	if fn.FatArrow {
		params = append(params, "self")
		lw.scope.ForceAdd("self")
	}

	var defaults []*ast.FunArg
	for _, an := range fn.Args {
		arg := an.(*ast.FunArg)
		if arg.Vararg {
			params = append(params, "...")
			continue
		}
		lw.scope.ForceAdd(arg.Name)
		params = append(params, arg.Name)
		if arg.Default != nil {
			defaults = append(defaults, arg)
		}
	}

	for _, arg := range defaults {
		sub.Line(fmt.Sprintf("if %s == nil then", arg.Name))
		sub.Indent()
		sub.Line(fmt.Sprintf("%s = %s", arg.Name, lw.lowerExpr(arg.Default)))
		sub.Dedent()
		sub.Line("end")
	}

	lw.lowerStmtList(sub, bodyStmts(fn.Body), Return, nil)

	lw.scope.Pop()
	lw.depth = savedDepth

	indent := strings.Repeat(sub.indentUnit(), savedDepth)
	return fmt.Sprintf("function(%s)\n%s%send", strings.Join(params, ", "), sub.String(), indent)
}

// lowerChainValue lowers a ChainValue's accessor sequence, splitting off
// and IIFE-wrapping mid-chain existential checks and trailing bare
// colon-accessors (method closures) as it goes.
func (lw *Lowerer) lowerChainValue(cv *ast.ChainValue) string {
	base := lw.lowerExpr(cv.Target)
	return lw.lowerAccessorChain(base, cv.Accessors)
}

func (lw *Lowerer) lowerAccessorChain(base string, accessors []ast.Node) string {
	for i := 0; i < len(accessors); i++ {
		switch a := accessors[i].(type) {
		case *ast.DotAccessor:
			base = lw.member(base, a.Name)
		case *ast.IndexAccessor:
			base = fmt.Sprintf("%s[%s]", base, lw.lowerExpr(a.Index))
		case *ast.Existential:
			rest := accessors[i+1:]
			return lw.wrapExistential(base, rest)
		case *ast.ColonAccessor:
			if i+1 < len(accessors) {
				if inv, ok := accessors[i+1].(*ast.Invocation); ok {
					call := fmt.Sprintf("%s:%s(%s)", base, a.Name, lw.lowerInvocationArgs(inv))
					return lw.lowerAccessorChain(call, accessors[i+2:])
				}
			}
			return lw.wrapColonClosure(base, a.Name, accessors[i+1:])
		case *ast.Invocation:
			base = fmt.Sprintf("%s(%s)", base, lw.lowerInvocationArgs(a))
		default:
			lw.fail(a, "unsupported accessor of kind %v", a.Kind())
		}
	}
	return base
}

func (lw *Lowerer) lowerInvocationArgs(inv *ast.Invocation) string {
	args, ok := inv.Args.(*ast.InvocationArgs)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(args.Items))
	for _, it := range args.Items {
		parts = append(parts, lw.lowerExpr(it))
	}
	return strings.Join(parts, ", ")
}

// wrapExistential implements the `?` mid-chain accessor: `a?.b.c` becomes
// an IIFE that returns nil the moment `a` is nil, instead of evaluating
// the rest of the chain against it.
func (lw *Lowerer) wrapExistential(base string, rest []ast.Node) string {
	savedDepth := lw.depth
	sub := newBuilder(lw.opts)
	sub.depth = savedDepth + 1
	lw.depth = sub.depth

	obj := lw.scope.Fresh("obj")
	sub.Line(fmt.Sprintf("local %s = %s", obj, base))
	sub.Line(fmt.Sprintf("if %s ~= nil then", obj))
	sub.Indent()
	sub.Line("return " + lw.lowerAccessorChain(obj, rest))
	sub.Dedent()
	sub.Line("end")
	sub.Line("return nil")

	lw.depth = savedDepth
	indent := strings.Repeat(sub.indentUnit(), savedDepth)
	return "(function()\n" + sub.String() + indent + "end)()"
}

// wrapColonClosure implements a bound-method reference: `obj\method`, used
// anywhere but directly as the callee of an invocation, becomes an IIFE
// capturing both the receiver and the method so later calls still pass
// the right `self`.
func (lw *Lowerer) wrapColonClosure(base, name string, rest []ast.Node) string {
	savedDepth := lw.depth
	sub := newBuilder(lw.opts)
	sub.depth = savedDepth + 1
	lw.depth = sub.depth

	baseVar := lw.scope.Fresh("base")
	fnVar := lw.scope.Fresh("fn")
	sub.Line(fmt.Sprintf("local %s = %s", baseVar, base))
	sub.Line(fmt.Sprintf("local %s = %s", fnVar, lw.member(baseVar, name)))
	sub.Line(fmt.Sprintf("return function(...)\n%sreturn %s(%s, ...)\n%send",
		strings.Repeat(sub.indentUnit(), sub.depth+1), fnVar, baseVar, strings.Repeat(sub.indentUnit(), sub.depth)))

	lw.depth = savedDepth
	indent := strings.Repeat(sub.indentUnit(), savedDepth)
	closure := "(function()\n" + sub.String() + indent + "end)()"
	if len(rest) == 0 {
		return closure
	}
	return lw.lowerAccessorChain(closure, rest)
}
