package ast

// collect filters out nil child slots (optional slots that were absent)
// so Children() never returns holes a visitor would have to nil-check.
func collect(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func collectSlices(slices ...[]Node) []Node {
	var total int
	for _, s := range slices {
		total += len(s)
	}
	out := make([]Node, 0, total)
	for _, s := range slices {
		for _, n := range s {
			if n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// File is the root node: a top-level sequence of statement wrappers.
type File struct {
	Base
	Stmts []Node
}

func (n *File) Kind() Kind        { return KindFile }
func (n *File) Children() []Node  { return collectSlices(n.Stmts) }

// Block is the body of any construct that introduces a nested statement
// sequence (function body, do, for, while, if-branch, with, class body,
// comprehension body).
type Block struct {
	Base
	Stmts []Node
}

func (n *Block) Kind() Kind       { return KindBlock }
func (n *Block) Children() []Node { return collectSlices(n.Stmts) }

// StatementWrapper pairs a statement with its optional trailing
// if/unless/comprehension appendix (spec.md §4.E "statement_appendix").
type StatementWrapper struct {
	Base
	Stmt     Node
	Appendix Node // *IfAppendix | *UnlessAppendix | *CompAppendix, or nil
}

func (n *StatementWrapper) Kind() Kind       { return KindStatementWrapper }
func (n *StatementWrapper) Children() []Node { return collect(n.Stmt, n.Appendix) }

type IfAppendix struct {
	Base
	Cond Node
}

func (n *IfAppendix) Kind() Kind       { return KindIfBranch }
func (n *IfAppendix) Children() []Node { return collect(n.Cond) }

type UnlessAppendix struct {
	Base
	Cond Node
}

func (n *UnlessAppendix) Kind() Kind       { return KindUnlessExpr }
func (n *UnlessAppendix) Children() []Node { return collect(n.Cond) }

type CompAppendix struct {
	Base
	Clauses []Node
}

func (n *CompAppendix) Kind() Kind       { return KindCompAppendix }
func (n *CompAppendix) Children() []Node { return collectSlices(n.Clauses) }

// Import is `import a, b from mod`.
type Import struct {
	Base
	Names []string
	From  Node // optional expression
}

func (n *Import) Kind() Kind       { return KindImport }
func (n *Import) Children() []Node { return collect(n.From) }

// While is a `while cond ... ` loop, used both as a statement and (via
// ExpUsage) as an expression that accumulates its body's trailing value.
type While struct {
	Base
	Cond Node
	Body Node
}

func (n *While) Kind() Kind       { return KindWhile }
func (n *While) Children() []Node { return collect(n.Cond, n.Body) }

// For is the numeric `for i = start, stop[, step]` loop.
type For struct {
	Base
	Var   string
	Start Node
	Stop  Node
	Step  Node // optional
	Body  Node
}

func (n *For) Kind() Kind       { return KindFor }
func (n *For) Children() []Node { return collect(n.Start, n.Stop, n.Step, n.Body) }

// ForEach is `for a, b in iterable` (optionally `for a in *slice`).
type ForEach struct {
	Base
	Vars       []string
	Iterable   Node
	Slice      bool
	SliceFrom  Node
	SliceTo    Node
	SliceStep  Node
	Body       Node
}

func (n *ForEach) Kind() Kind { return KindForEach }
func (n *ForEach) Children() []Node {
	return collect(n.Iterable, n.SliceFrom, n.SliceTo, n.SliceStep, n.Body)
}

// Return is an explicit `return` statement.
type Return struct {
	Base
	Value Node // optional ExpList
}

func (n *Return) Kind() Kind       { return KindReturn }
func (n *Return) Children() []Node { return collect(n.Value) }

// LocalMode is the `*`/`^` suffix on `local`/`export`.
type LocalMode byte

const (
	LocalModeNone    LocalMode = 0
	LocalModeAny     LocalMode = '*'
	LocalModeCapital LocalMode = '^'
)

// Local is a `local a, b = ...` statement, or a bare `local *`/`local ^`
// pre-declaration directive.
type Local struct {
	Base
	Names  []string
	Mode   LocalMode
	Values Node // optional ExpList
}

func (n *Local) Kind() Kind       { return KindLocal }
func (n *Local) Children() []Node { return collect(n.Values) }

// Export marks the enclosing scope's export mode, optionally performing
// an enumerated assignment (`export a, b = ...`) or `export default expr`.
type Export struct {
	Base
	Mode    LocalMode
	Names   []string
	Default bool
	Values  Node // optional ExpList
}

func (n *Export) Kind() Kind       { return KindExport }
func (n *Export) Children() []Node { return collect(n.Values) }

// BreakLoop is `break` or `continue`.
type BreakLoop struct {
	Base
	Continue bool
}

func (n *BreakLoop) Kind() Kind       { return KindBreakLoop }
func (n *BreakLoop) Children() []Node { return nil }

// Backcall is `args <- call`.
type Backcall struct {
	Base
	Args Node
	Call Node
}

func (n *Backcall) Kind() Kind       { return KindBackcall }
func (n *Backcall) Children() []Node { return collect(n.Args, n.Call) }

// ExpListAssign is an expression-list statement, optionally an assignment
// or compound-update assignment (`a, b = 1, 2`, `a += 1`).
type ExpListAssign struct {
	Base
	Targets Node // ExpList
	Op      string
	Values  Node // optional ExpList
}

func (n *ExpListAssign) Kind() Kind       { return KindExpListAssign }
func (n *ExpListAssign) Children() []Node { return collect(n.Targets, n.Values) }

// ExpList is a comma-separated list of expressions.
type ExpList struct {
	Base
	Items []Node
}

func (n *ExpList) Kind() Kind       { return KindExpList }
func (n *ExpList) Children() []Node { return collectSlices(n.Items) }

// BinaryOp is a left-associative binary operator application.
type BinaryOp struct {
	Base
	Op    string
	Left  Node
	Right Node
}

func (n *BinaryOp) Kind() Kind       { return KindBinaryOp }
func (n *BinaryOp) Children() []Node { return collect(n.Left, n.Right) }

// UnaryOp is a prefix unary operator application (`-`, `not`, `#`).
type UnaryOp struct {
	Base
	Op      string
	Operand Node
}

func (n *UnaryOp) Kind() Kind       { return KindUnaryOp }
func (n *UnaryOp) Children() []Node { return collect(n.Operand) }

// ChainedCompare is a chained relational expression (`1 < x < 10`),
// carried through as a dedicated node per SPEC_FULL.md's supplemented
// features rather than desugared during parsing.
type ChainedCompare struct {
	Base
	Operands []Node
	Ops      []string // len(Ops) == len(Operands)-1
}

func (n *ChainedCompare) Kind() Kind       { return KindChainedCompare }
func (n *ChainedCompare) Children() []Node { return collectSlices(n.Operands) }

// NumberLiteral holds the literal source text verbatim; Lua's number
// syntax is a superset of MoonScript's so no reformatting is needed.
type NumberLiteral struct {
	Base
	Text string
}

func (n *NumberLiteral) Kind() Kind       { return KindNumberLiteral }
func (n *NumberLiteral) Children() []Node { return nil }

type BoolLiteral struct {
	Base
	Value bool
}

func (n *BoolLiteral) Kind() Kind       { return KindBoolLiteral }
func (n *BoolLiteral) Children() []Node { return nil }

type NilLiteral struct{ Base }

func (n *NilLiteral) Kind() Kind       { return KindNilLiteral }
func (n *NilLiteral) Children() []Node { return nil }

// VarargLiteral is the bare `...` expression.
type VarargLiteral struct{ Base }

func (n *VarargLiteral) Kind() Kind       { return KindVarargLiteral }
func (n *VarargLiteral) Children() []Node { return nil }

// StringQuote distinguishes the literal's original delimiter, which
// determines escaping rules during lowering.
type StringQuote byte

const (
	StringQuoteSingle    StringQuote = '\''
	StringQuoteDouble    StringQuote = '"'
	StringQuoteLongBrack StringQuote = '['
)

// StringLiteral is a single-quoted, double-quoted, or long-bracket string.
// Segments alternate (in principle) between *StringText and interpolated
// expressions; single-quoted and long-bracket strings always have exactly
// one StringText segment since they do not support interpolation.
type StringLiteral struct {
	Base
	Quote    StringQuote
	Segments []Node
	// EqCount is the long-bracket `=` count, meaningful only when
	// Quote == StringQuoteLongBrack.
	EqCount int
}

func (n *StringLiteral) Kind() Kind       { return KindStringLiteral }
func (n *StringLiteral) Children() []Node { return collectSlices(n.Segments) }

// StringText is a literal run of text within a StringLiteral.
type StringText struct {
	Base
	Text string
}

func (n *StringText) Kind() Kind       { return KindStringText }
func (n *StringText) Children() []Node { return nil }

type Ident struct {
	Base
	Name string
}

func (n *Ident) Kind() Kind       { return KindIdent }
func (n *Ident) Children() []Node { return nil }

// Self is the bare `@` expression.
type Self struct{ Base }

func (n *Self) Kind() Kind       { return KindSelf }
func (n *Self) Children() []Node { return nil }

// SelfProperty is `@name`.
type SelfProperty struct {
	Base
	Name string
}

func (n *SelfProperty) Kind() Kind       { return KindSelfProperty }
func (n *SelfProperty) Children() []Node { return nil }

// SelfClass is `@@name`.
type SelfClass struct {
	Base
	Name string
}

func (n *SelfClass) Kind() Kind       { return KindSelfClass }
func (n *SelfClass) Children() []Node { return nil }

// TableLiteral is `{ ... }` (simple_table).
type TableLiteral struct {
	Base
	Fields []Node
}

func (n *TableLiteral) Kind() Kind       { return KindTableLiteral }
func (n *TableLiteral) Children() []Node { return collectSlices(n.Fields) }

// TableField is one `key: value` or positional entry of a TableLiteral.
// Key is nil for a positional entry. PropertyTyped marks a `@name:` class
// member key (spec.md §4.G "Classes" step 5).
type TableField struct {
	Base
	Key           Node // optional
	Value         Node
	PropertyTyped bool
}

func (n *TableField) Kind() Kind       { return KindTableField }
func (n *TableField) Children() []Node { return collect(n.Key, n.Value) }

// ChainValue is a base value followed by a sequence of accessors
// (spec.md §4.E "ChainValue").
type ChainValue struct {
	Base
	Target    Node
	Accessors []Node
}

func (n *ChainValue) Kind() Kind       { return KindChainValue }
func (n *ChainValue) Children() []Node { return collectSlices([]Node{n.Target}, n.Accessors) }

type DotAccessor struct {
	Base
	Name string
}

func (n *DotAccessor) Kind() Kind       { return KindDotAccessor }
func (n *DotAccessor) Children() []Node { return nil }

// ColonAccessor is `\name`: a method-closure reference when not followed
// by an Invocation, or the callee half of a colon call when it is.
type ColonAccessor struct {
	Base
	Name string
}

func (n *ColonAccessor) Kind() Kind       { return KindColonAccessor }
func (n *ColonAccessor) Children() []Node { return nil }

type IndexAccessor struct {
	Base
	Index Node
}

func (n *IndexAccessor) Kind() Kind       { return KindIndexAccessor }
func (n *IndexAccessor) Children() []Node { return collect(n.Index) }

// SliceAccessor is the `[a, b, c]` bare-slice accessor used in
// comprehension iteration (spec.md §4.G "Comprehensions").
type SliceAccessor struct {
	Base
	From Node // optional
	To   Node // optional
	Step Node // optional
}

func (n *SliceAccessor) Kind() Kind       { return KindSliceAccessor }
func (n *SliceAccessor) Children() []Node { return collect(n.From, n.To, n.Step) }

type Invocation struct {
	Base
	Args Node // InvocationArgs
}

func (n *Invocation) Kind() Kind       { return KindInvocation }
func (n *Invocation) Children() []Node { return collect(n.Args) }

type InvocationArgs struct {
	Base
	Items []Node
}

func (n *InvocationArgs) Kind() Kind       { return KindInvocationArgs }
func (n *InvocationArgs) Children() []Node { return collectSlices(n.Items) }

// Existential is a `?` accessor, mid-chain or trailing.
type Existential struct{ Base }

func (n *Existential) Kind() Kind       { return KindExistential }
func (n *Existential) Children() []Node { return nil }

// ClassDecl is `class Name extends Exp \n ...`.
type ClassDecl struct {
	Base
	Name    Node // optional assignable target
	Extends Node // optional expression
	Body    Node // optional Block of TableField / method statements
}

func (n *ClassDecl) Kind() Kind       { return KindClassDecl }
func (n *ClassDecl) Children() []Node { return collect(n.Name, n.Extends, n.Body) }

// FunLit is a function literal; FatArrow marks `=>` (implicit self).
type FunLit struct {
	Base
	Args     []Node
	FatArrow bool
	Body     Node
}

func (n *FunLit) Kind() Kind       { return KindFunLit }
func (n *FunLit) Children() []Node { return collectSlices(n.Args, []Node{n.Body}) }

// FunArg is one parameter slot; Vararg marks the trailing `...`.
type FunArg struct {
	Base
	Name    string
	Default Node // optional
	Vararg  bool
}

func (n *FunArg) Kind() Kind       { return KindFunArg }
func (n *FunArg) Children() []Node { return collect(n.Default) }

// IfExpr is `if cond then ... elseif cond then ... else ...` used in
// either statement or expression position.
type IfExpr struct {
	Base
	Branches []Node // []*IfBranch
	Else     Node   // optional Block
}

func (n *IfExpr) Kind() Kind       { return KindIfExpr }
func (n *IfExpr) Children() []Node { return collectSlices(n.Branches, []Node{n.Else}) }

type IfBranch struct {
	Base
	Cond Node
	Body Node
}

func (n *IfBranch) Kind() Kind       { return KindIfBranch }
func (n *IfBranch) Children() []Node { return collect(n.Cond, n.Body) }

// UnlessExpr is `unless cond ... [else ...]`.
type UnlessExpr struct {
	Base
	Cond Node
	Body Node
	Else Node // optional
}

func (n *UnlessExpr) Kind() Kind       { return KindUnlessExpr }
func (n *UnlessExpr) Children() []Node { return collect(n.Cond, n.Body, n.Else) }

// SwitchExpr is `switch subject \n when v1, v2 then ... \n else ...`.
type SwitchExpr struct {
	Base
	Subject Node
	Cases   []Node // []*SwitchCase
	Else    Node   // optional Block
}

func (n *SwitchExpr) Kind() Kind { return KindSwitchExpr }
func (n *SwitchExpr) Children() []Node {
	return collectSlices([]Node{n.Subject}, n.Cases, []Node{n.Else})
}

type SwitchCase struct {
	Base
	Values []Node
	Body   Node
}

func (n *SwitchCase) Kind() Kind       { return KindSwitchCase }
func (n *SwitchCase) Children() []Node { return collectSlices(n.Values, []Node{n.Body}) }

// WithExpr is `with target ... .field`.
type WithExpr struct {
	Base
	Target Node
	Body   Node
}

func (n *WithExpr) Kind() Kind       { return KindWithExpr }
func (n *WithExpr) Children() []Node { return collect(n.Target, n.Body) }

// DoBlock is a standalone `do ... end` used as a statement or expression.
type DoBlock struct {
	Base
	Body Node
}

func (n *DoBlock) Kind() Kind       { return KindDoBlock }
func (n *DoBlock) Children() []Node { return collect(n.Body) }

// ListComprehension is `[expr for ... when ...]`.
type ListComprehension struct {
	Base
	Expr    Node
	Clauses []Node
}

func (n *ListComprehension) Kind() Kind { return KindListComprehension }
func (n *ListComprehension) Children() []Node {
	return collectSlices([]Node{n.Expr}, n.Clauses)
}

// TableComprehension is `{ [key]: value for ... when ... }` or
// `{ value for ... when ... }` when Key is nil.
type TableComprehension struct {
	Base
	Key     Node // optional
	Value   Node
	Clauses []Node
}

func (n *TableComprehension) Kind() Kind { return KindTableComprehension }
func (n *TableComprehension) Children() []Node {
	return collectSlices([]Node{n.Key, n.Value}, n.Clauses)
}

// CompClauseForNum is a numeric `for i = a, b[, step]` comprehension
// clause.
type CompClauseForNum struct {
	Base
	Var   string
	Start Node
	Stop  Node
	Step  Node // optional
}

func (n *CompClauseForNum) Kind() Kind       { return KindCompClauseForNum }
func (n *CompClauseForNum) Children() []Node { return collect(n.Start, n.Stop, n.Step) }

// CompClauseForIn is `for a, b in iterable` (optionally over a bare
// slice, `for x in *lst[a,b,c]`).
type CompClauseForIn struct {
	Base
	Vars      []string
	Iterable  Node
	Slice     bool
	SliceFrom Node
	SliceTo   Node
	SliceStep Node
}

func (n *CompClauseForIn) Kind() Kind { return KindCompClauseForIn }
func (n *CompClauseForIn) Children() []Node {
	return collect(n.Iterable, n.SliceFrom, n.SliceTo, n.SliceStep)
}

// CompClauseWhen is a comprehension guard clause.
type CompClauseWhen struct {
	Base
	Cond Node
}

func (n *CompClauseWhen) Kind() Kind       { return KindCompClauseWhen }
func (n *CompClauseWhen) Children() []Node { return collect(n.Cond) }

// TableDestructure is a `{a, b: c}` destructuring pattern appearing on
// the left-hand side of an assignment.
type TableDestructure struct {
	Base
	Fields []Node // []*PairDestructure
}

func (n *TableDestructure) Kind() Kind       { return KindTableDestructure }
func (n *TableDestructure) Children() []Node { return collectSlices(n.Fields) }

// PairDestructure is one entry of a TableDestructure. Key is nil for a
// positional entry (bound by ascending integer index); Value is either an
// *Ident (bind site) or a nested *TableDestructure.
type PairDestructure struct {
	Base
	Key   Node // optional
	Value Node
}

func (n *PairDestructure) Kind() Kind       { return KindPairDestructure }
func (n *PairDestructure) Children() []Node { return collect(n.Key, n.Value) }

// Assignment is a simple `target = value`, used internally for the
// `if x = expr` inline-assignment condition rewrite (spec.md §4.G).
type Assignment struct {
	Base
	Target Node
	Value  Node
}

func (n *Assignment) Kind() Kind       { return KindAssignment }
func (n *Assignment) Children() []Node { return collect(n.Target, n.Value) }
