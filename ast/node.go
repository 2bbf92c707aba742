// Package ast defines the typed MoonScript syntax tree (component C,
// spec.md §4.C). Every node kind is a concrete Go struct implementing
// Node; downcasting is a Go type assertion rather than an integer
// type-id compare, and the "first-use assigns an int" RTTI pattern from
// the original implementation collapses into the closed Kind enum below
// (spec.md §9 design note).
package ast

import "github.com/dekarrin/moonp/peg"

// Kind is the closed tagged union of every node kind the grammar
// produces. It is what spec.md §3 calls the node's "syntactic id": a
// stable, pre-assigned constant equal to the kind's name, used for fast
// switching during lowering.
type Kind int

const (
	KindFile Kind = iota
	KindBlock
	KindStatementWrapper // wraps a statement with an "if"/"unless"/comprehension appendix
	KindCompAppendix     // trailing `for`/`when` clauses modifying a statement line

	KindImport
	KindWhile
	KindFor
	KindForEach
	KindReturn
	KindLocal
	KindExport
	KindBreakLoop
	KindBackcall
	KindExpListAssign

	KindExpList
	KindBinaryOp
	KindUnaryOp
	KindChainedCompare

	KindNumberLiteral
	KindBoolLiteral
	KindNilLiteral
	KindVarargLiteral
	KindStringLiteral
	KindStringText
	KindIdent
	KindSelf
	KindSelfProperty // @name
	KindSelfClass    // @@name
	KindTableLiteral
	KindTableField

	KindChainValue
	KindDotAccessor
	KindColonAccessor // \name — method-closure accessor
	KindIndexAccessor
	KindSliceAccessor
	KindInvocation
	KindExistential
	KindInvocationArgs

	KindClassDecl
	KindFunLit
	KindFunArg

	KindIfExpr
	KindIfBranch
	KindUnlessExpr
	KindSwitchExpr
	KindSwitchCase
	KindWithExpr
	KindDoBlock

	KindListComprehension
	KindTableComprehension
	KindCompClauseForNum
	KindCompClauseForIn
	KindCompClauseWhen

	KindTableDestructure
	KindPairDestructure
	KindAssignment
)

var kindNames = map[Kind]string{
	KindFile:              "File",
	KindBlock:              "Block",
	KindStatementWrapper:   "StatementWrapper",
	KindCompAppendix:       "CompAppendix",
	KindImport:             "Import",
	KindWhile:              "While",
	KindFor:                "For",
	KindForEach:            "ForEach",
	KindReturn:             "Return",
	KindLocal:              "Local",
	KindExport:             "Export",
	KindBreakLoop:          "BreakLoop",
	KindBackcall:           "Backcall",
	KindExpListAssign:      "ExpListAssign",
	KindExpList:            "ExpList",
	KindBinaryOp:           "BinaryOp",
	KindUnaryOp:            "UnaryOp",
	KindChainedCompare:     "ChainedCompare",
	KindNumberLiteral:      "NumberLiteral",
	KindBoolLiteral:        "BoolLiteral",
	KindNilLiteral:         "NilLiteral",
	KindVarargLiteral:      "VarargLiteral",
	KindStringLiteral:      "StringLiteral",
	KindStringText:         "StringText",
	KindIdent:              "Ident",
	KindSelf:               "Self",
	KindSelfProperty:       "SelfProperty",
	KindSelfClass:          "SelfClass",
	KindTableLiteral:       "TableLiteral",
	KindTableField:         "TableField",
	KindChainValue:         "ChainValue",
	KindDotAccessor:        "DotAccessor",
	KindColonAccessor:      "ColonAccessor",
	KindIndexAccessor:      "IndexAccessor",
	KindSliceAccessor:      "SliceAccessor",
	KindInvocation:         "Invocation",
	KindExistential:        "Existential",
	KindInvocationArgs:     "InvocationArgs",
	KindClassDecl:          "ClassDecl",
	KindFunLit:             "FunLit",
	KindFunArg:             "FunArg",
	KindIfExpr:             "IfExpr",
	KindIfBranch:           "IfBranch",
	KindUnlessExpr:         "UnlessExpr",
	KindSwitchExpr:         "SwitchExpr",
	KindSwitchCase:         "SwitchCase",
	KindWithExpr:           "WithExpr",
	KindDoBlock:            "DoBlock",
	KindListComprehension:  "ListComprehension",
	KindTableComprehension: "TableComprehension",
	KindCompClauseForNum:   "CompClauseForNum",
	KindCompClauseForIn:    "CompClauseForIn",
	KindCompClauseWhen:     "CompClauseWhen",
	KindTableDestructure:   "TableDestructure",
	KindPairDestructure:    "PairDestructure",
	KindAssignment:         "Assignment",
}

// String returns the syntactic id: the kind's textual name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is implemented by every concrete AST node type. Parent is a
// non-owning back-reference set once, at construction time, by the
// container that holds the node in one of its child slots; a node's
// owning reference always lives in exactly one parent's child slot, so
// there are no reference cycles (spec.md §3).
type Node interface {
	Kind() Kind
	Range() peg.Range
	Parent() Node
	Children() []Node

	setParent(Node)
}

// Base is embedded by every concrete node type to provide Range/Parent
// plumbing so individual node types only need to implement Kind and
// Children.
type Base struct {
	Rng    peg.Range
	parent Node
}

// Range returns the node's input range.
func (b *Base) Range() peg.Range { return b.Rng }

// Parent returns the non-owning back-reference to the node's container,
// or nil for the root.
func (b *Base) Parent() Node { return b.parent }

func (b *Base) setParent(p Node) { b.parent = p }

// SetParent attaches child to parent's non-owning back-reference. Called
// by each node's construct() once its child slots are populated.
func SetParent(parent Node, children ...Node) {
	for _, c := range children {
		if c != nil {
			c.setParent(parent)
		}
	}
}

// VisitResult is returned by a Traverse visitor function.
type VisitResult int

const (
	// Continue descends into the node's children, then continues with
	// its siblings.
	Continue VisitResult = iota

	// SkipChildren continues with siblings without descending into this
	// node's children.
	SkipChildren

	// Stop aborts the entire walk immediately, propagating up through
	// every enclosing Traverse call.
	Stop
)

// Traverse performs a pre-order walk of n and its descendants, calling
// visit on each node. It returns Stop if any visit call returned Stop,
// so that recursive use of Traverse in calling code still halts the
// walk at every level.
func Traverse(n Node, visit func(Node) VisitResult) VisitResult {
	if n == nil {
		return Continue
	}
	switch visit(n) {
	case Stop:
		return Stop
	case SkipChildren:
		return Continue
	}
	for _, c := range n.Children() {
		if Traverse(c, visit) == Stop {
			return Stop
		}
	}
	return Continue
}

// As performs a checked downcast, the Go equivalent of the source
// model's is<T>/cast<T>/as<T> family (spec.md §4.C, §9): ok is false if n
// does not hold a T.
func As[T Node](n Node) (t T, ok bool) {
	t, ok = n.(T)
	return
}

// Is reports whether n holds a T.
func Is[T Node](n Node) bool {
	_, ok := n.(T)
	return ok
}

// FindChild returns the first direct child of n that holds a T. Chaining
// calls to FindChild implements the source model's get_by_path<T1,...,Tn>
// (spec.md §4.C; design note §9: "a chain of pattern matches returning an
// option").
func FindChild[T Node](n Node) (result T, ok bool) {
	if n == nil {
		return result, false
	}
	for _, c := range n.Children() {
		if t, match := c.(T); match {
			return t, true
		}
	}
	return result, false
}
