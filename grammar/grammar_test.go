package grammar

import (
	"testing"

	"github.com/dekarrin/moonp/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, source string) *ast.File {
	t.Helper()
	file, diagErr := Parse(source)
	require.Nil(t, diagErr, "expected %q to parse cleanly", source)
	require.NotNil(t, file)
	return file
}

func singleStmt(t *testing.T, file *ast.File) ast.Node {
	t.Helper()
	require.Len(t, file.Stmts, 1)
	w, ok := ast.As[*ast.StatementWrapper](file.Stmts[0])
	require.True(t, ok)
	return w.Stmt
}

func Test_Parse_local_assignment(t *testing.T) {
	file := parseOK(t, "local x = 1\n")
	local, ok := ast.As[*ast.Local](singleStmt(t, file))
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, local.Names)
	assert.Equal(t, ast.LocalModeNone, local.Mode)

	values, ok := ast.As[*ast.ExpList](local.Values)
	require.True(t, ok)
	require.Len(t, values.Items, 1)
	num, ok := ast.As[*ast.NumberLiteral](values.Items[0])
	require.True(t, ok)
	assert.Equal(t, "1", num.Text)
}

func Test_Parse_local_star_mode_with_no_names(t *testing.T) {
	file := parseOK(t, "local *\n")
	local, ok := ast.As[*ast.Local](singleStmt(t, file))
	require.True(t, ok)
	assert.Equal(t, ast.LocalModeAny, local.Mode)
	assert.Empty(t, local.Names)
	assert.Nil(t, local.Values)
}

func Test_Parse_export_default(t *testing.T) {
	file := parseOK(t, "export default 5\n")
	export, ok := ast.As[*ast.Export](singleStmt(t, file))
	require.True(t, ok)
	assert.True(t, export.Default)
	num, ok := ast.As[*ast.NumberLiteral](export.Values)
	require.True(t, ok)
	assert.Equal(t, "5", num.Text)
}

func Test_Parse_export_named_with_mode(t *testing.T) {
	file := parseOK(t, "export ^ A, B\n")
	export, ok := ast.As[*ast.Export](singleStmt(t, file))
	require.True(t, ok)
	assert.False(t, export.Default)
	assert.Equal(t, ast.LocalModeCapital, export.Mode)
	assert.Equal(t, []string{"A", "B"}, export.Names)
}

func Test_Parse_compound_assignment(t *testing.T) {
	file := parseOK(t, "x += 1\n")
	assign, ok := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	require.True(t, ok)
	assert.Equal(t, "+=", assign.Op)
}

func Test_Parse_binary_operator_precedence(t *testing.T) {
	file := parseOK(t, "x = 1 + 2 * 3\n")
	assign, ok := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	require.True(t, ok)
	values, ok := ast.As[*ast.ExpList](assign.Values)
	require.True(t, ok)
	top, ok := ast.As[*ast.BinaryOp](values.Items[0])
	require.True(t, ok)
	assert.Equal(t, "+", top.Op)

	right, ok := ast.As[*ast.BinaryOp](top.Right)
	require.True(t, ok, "2 * 3 should bind tighter than +")
	assert.Equal(t, "*", right.Op)
}

func Test_Parse_left_associative_addition(t *testing.T) {
	file := parseOK(t, "x = 1 - 2 - 3\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	top, ok := ast.As[*ast.BinaryOp](values.Items[0])
	require.True(t, ok)
	assert.Equal(t, "-", top.Op)

	left, ok := ast.As[*ast.BinaryOp](top.Left)
	require.True(t, ok, "(1 - 2) - 3 should nest on the left")
	assert.Equal(t, "-", left.Op)
}

func Test_Parse_unary_operator(t *testing.T) {
	file := parseOK(t, "x = -1\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	un, ok := ast.As[*ast.UnaryOp](values.Items[0])
	require.True(t, ok)
	assert.Equal(t, "-", un.Op)
}

func Test_Parse_chained_compare(t *testing.T) {
	file := parseOK(t, "x = 1 < y < 10\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	chain, ok := ast.As[*ast.ChainedCompare](values.Items[0])
	require.True(t, ok)
	require.Len(t, chain.Operands, 3)
	assert.Equal(t, []string{"<", "<"}, chain.Ops)
}

func Test_Parse_single_compare_is_plain_BinaryOp(t *testing.T) {
	file := parseOK(t, "x = 1 < y\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	_, isBinOp := ast.As[*ast.BinaryOp](values.Items[0])
	assert.True(t, isBinOp, "a single comparison should not become a ChainedCompare")
}

func Test_Parse_and_or_keyword_operators(t *testing.T) {
	file := parseOK(t, "x = a and b or c\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	top, ok := ast.As[*ast.BinaryOp](values.Items[0])
	require.True(t, ok)
	assert.Equal(t, "or", top.Op)
	left, ok := ast.As[*ast.BinaryOp](top.Left)
	require.True(t, ok)
	assert.Equal(t, "and", left.Op)
}

func Test_Parse_chain_value_accessors(t *testing.T) {
	file := parseOK(t, "x = a.b\\c[1]()\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	chain, ok := ast.As[*ast.ChainValue](values.Items[0])
	require.True(t, ok)
	require.Len(t, chain.Accessors, 4)
	_, ok = ast.As[*ast.DotAccessor](chain.Accessors[0])
	assert.True(t, ok)
	_, ok = ast.As[*ast.ColonAccessor](chain.Accessors[1])
	assert.True(t, ok)
	_, ok = ast.As[*ast.IndexAccessor](chain.Accessors[2])
	assert.True(t, ok)
	_, ok = ast.As[*ast.Invocation](chain.Accessors[3])
	assert.True(t, ok)
}

func Test_Parse_function_literal_with_default_arg(t *testing.T) {
	file := parseOK(t, "f = (x, y = 2) -> x + y\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	fn, ok := ast.As[*ast.FunLit](values.Items[0])
	require.True(t, ok)
	assert.False(t, fn.FatArrow)
	require.Len(t, fn.Args, 2)
	assert.Equal(t, "x", fn.Args[0].(*ast.FunArg).Name)
	assert.Equal(t, "y", fn.Args[1].(*ast.FunArg).Name)
	assert.NotNil(t, fn.Args[1].(*ast.FunArg).Default)
}

func Test_Parse_fat_arrow_function(t *testing.T) {
	file := parseOK(t, "f = => @x\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	fn, ok := ast.As[*ast.FunLit](values.Items[0])
	require.True(t, ok)
	assert.True(t, fn.FatArrow)
}

func Test_Parse_if_elseif_else(t *testing.T) {
	source := "if a\n  1\nelseif b\n  2\nelse\n  3\n"
	file := parseOK(t, source)
	ifExpr, ok := ast.As[*ast.IfExpr](singleStmt(t, file))
	require.True(t, ok)
	require.Len(t, ifExpr.Branches, 2)
	assert.NotNil(t, ifExpr.Else)
}

func Test_Parse_unless(t *testing.T) {
	file := parseOK(t, "unless a\n  1\n")
	_, ok := ast.As[*ast.UnlessExpr](singleStmt(t, file))
	assert.True(t, ok)
}

func Test_Parse_statement_if_appendix(t *testing.T) {
	file := parseOK(t, "print 1 if a\n")
	require.Len(t, file.Stmts, 1)
	w, ok := ast.As[*ast.StatementWrapper](file.Stmts[0])
	require.True(t, ok)
	appendix, ok := ast.As[*ast.IfAppendix](w.Appendix)
	require.True(t, ok)
	assert.NotNil(t, appendix.Cond)
}

func Test_Parse_statement_comprehension_appendix(t *testing.T) {
	file := parseOK(t, "print x for x in list\n")
	w, ok := ast.As[*ast.StatementWrapper](file.Stmts[0])
	require.True(t, ok)
	appendix, ok := ast.As[*ast.CompAppendix](w.Appendix)
	require.True(t, ok)
	require.Len(t, appendix.Clauses, 1)
	clause, ok := ast.As[*ast.CompClauseForIn](appendix.Clauses[0])
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, clause.Vars)
}

func Test_Parse_class_decl(t *testing.T) {
	source := "class Foo extends Bar\n  x: 1\n  @y: 2\n"
	file := parseOK(t, source)
	class, ok := ast.As[*ast.ClassDecl](singleStmt(t, file))
	require.True(t, ok)
	require.NotNil(t, class.Name)
	require.NotNil(t, class.Extends)
	require.NotNil(t, class.Body)
	body, ok := ast.As[*ast.Block](class.Body)
	require.True(t, ok)
	require.Len(t, body.Stmts, 2)
	f0, ok := ast.As[*ast.TableField](body.Stmts[0])
	require.True(t, ok)
	assert.False(t, f0.PropertyTyped)
	f1, ok := ast.As[*ast.TableField](body.Stmts[1])
	require.True(t, ok)
	assert.True(t, f1.PropertyTyped)
}

func Test_Parse_table_literal_forms(t *testing.T) {
	source := "t = {[k]: 1, @prop: 2, name: 3, 4}\n"
	file := parseOK(t, source)
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	tbl, ok := ast.As[*ast.TableLiteral](values.Items[0])
	require.True(t, ok)
	require.Len(t, tbl.Fields, 4)

	f0 := tbl.Fields[0].(*ast.TableField)
	assert.NotNil(t, f0.Key)
	assert.False(t, f0.PropertyTyped)

	f1 := tbl.Fields[1].(*ast.TableField)
	assert.True(t, f1.PropertyTyped)

	f3 := tbl.Fields[3].(*ast.TableField)
	assert.Nil(t, f3.Key)
}

func Test_Parse_list_comprehension(t *testing.T) {
	file := parseOK(t, "y = [x for x in list when x > 1]\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	comp, ok := ast.As[*ast.ListComprehension](values.Items[0])
	require.True(t, ok)
	require.Len(t, comp.Clauses, 2)
	_, ok = ast.As[*ast.CompClauseForIn](comp.Clauses[0])
	assert.True(t, ok)
	_, ok = ast.As[*ast.CompClauseWhen](comp.Clauses[1])
	assert.True(t, ok)
}

func Test_Parse_list_comprehension_slice_iteration(t *testing.T) {
	file := parseOK(t, "y = [x for x in *list]\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	comp, _ := ast.As[*ast.ListComprehension](values.Items[0])
	clause, ok := ast.As[*ast.CompClauseForIn](comp.Clauses[0])
	require.True(t, ok)
	assert.True(t, clause.Slice)
}

func Test_Parse_for_each_statement_slice(t *testing.T) {
	file := parseOK(t, "for x in *list\n  print x\n")
	forEach, ok := ast.As[*ast.ForEach](singleStmt(t, file))
	require.True(t, ok)
	assert.True(t, forEach.Slice)
	assert.Equal(t, []string{"x"}, forEach.Vars)
}

func Test_Parse_numeric_for(t *testing.T) {
	file := parseOK(t, "for i = 1, 10, 2\n  print i\n")
	forStmt, ok := ast.As[*ast.For](singleStmt(t, file))
	require.True(t, ok)
	assert.Equal(t, "i", forStmt.Var)
	assert.NotNil(t, forStmt.Step)
}

func Test_Parse_table_destructure(t *testing.T) {
	file := parseOK(t, "{a, b: c} = t\n")
	assign, ok := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	require.True(t, ok)
	targets, ok := ast.As[*ast.ExpList](assign.Targets)
	require.True(t, ok)
	destructure, ok := ast.As[*ast.TableDestructure](targets.Items[0])
	require.True(t, ok)
	require.Len(t, destructure.Fields, 2)
	f0, ok := ast.As[*ast.PairDestructure](destructure.Fields[0])
	require.True(t, ok)
	assert.Nil(t, f0.Key)
	f1, ok := ast.As[*ast.PairDestructure](destructure.Fields[1])
	require.True(t, ok)
	assert.NotNil(t, f1.Key)
}

func Test_Parse_double_quoted_string_with_interpolation(t *testing.T) {
	file := parseOK(t, `x = "a#{b}c"` + "\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	str, ok := ast.As[*ast.StringLiteral](values.Items[0])
	require.True(t, ok)
	assert.Equal(t, ast.StringQuoteDouble, str.Quote)
	require.Len(t, str.Segments, 3)
	_, isText := ast.As[*ast.StringText](str.Segments[0])
	assert.True(t, isText)
	_, isIdent := ast.As[*ast.Ident](str.Segments[1])
	assert.True(t, isIdent)
}

func Test_Parse_single_quoted_string_has_no_interpolation(t *testing.T) {
	file := parseOK(t, `x = 'a#{b}c'` + "\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	str, ok := ast.As[*ast.StringLiteral](values.Items[0])
	require.True(t, ok)
	require.Len(t, str.Segments, 1)
	text := str.Segments[0].(*ast.StringText)
	assert.Equal(t, "a#{b}c", text.Text)
}

func Test_Parse_long_bracket_string_eq_count(t *testing.T) {
	file := parseOK(t, "x = [==[hello]==]\n")
	assign, _ := ast.As[*ast.ExpListAssign](singleStmt(t, file))
	values, _ := ast.As[*ast.ExpList](assign.Values)
	str, ok := ast.As[*ast.StringLiteral](values.Items[0])
	require.True(t, ok)
	assert.Equal(t, ast.StringQuoteLongBrack, str.Quote)
	assert.Equal(t, 2, str.EqCount)
	text := str.Segments[0].(*ast.StringText)
	assert.Equal(t, "hello", text.Text)
}

func Test_Parse_multiple_long_bracket_strings_keep_independent_eq_counts(t *testing.T) {
	// Regression test: EqCount must not leak between sibling long-bracket
	// strings parsed later in the same file.
	file := parseOK(t, "a = [==[one]==]\nb = [[two]]\n")
	require.Len(t, file.Stmts, 2)

	first := singleStmtAt(t, file, 0)
	firstAssign, _ := ast.As[*ast.ExpListAssign](first)
	firstValues, _ := ast.As[*ast.ExpList](firstAssign.Values)
	firstStr := firstValues.Items[0].(*ast.StringLiteral)
	assert.Equal(t, 2, firstStr.EqCount)

	second := singleStmtAt(t, file, 1)
	secondAssign, _ := ast.As[*ast.ExpListAssign](second)
	secondValues, _ := ast.As[*ast.ExpList](secondAssign.Values)
	secondStr := secondValues.Items[0].(*ast.StringLiteral)
	assert.Equal(t, 0, secondStr.EqCount)
}

func singleStmtAt(t *testing.T, file *ast.File, i int) ast.Node {
	t.Helper()
	w, ok := ast.As[*ast.StatementWrapper](file.Stmts[i])
	require.True(t, ok)
	return w.Stmt
}

func Test_Parse_import(t *testing.T) {
	file := parseOK(t, "import a, b from c\n")
	imp, ok := ast.As[*ast.Import](singleStmt(t, file))
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, imp.Names)
	assert.NotNil(t, imp.From)
}

func Test_Parse_while_and_with(t *testing.T) {
	file := parseOK(t, "while true\n  break\n")
	whileStmt, ok := ast.As[*ast.While](singleStmt(t, file))
	require.True(t, ok)
	assert.NotNil(t, whileStmt.Body)

	file2 := parseOK(t, "with a\n  print @b\n")
	withExpr, ok := ast.As[*ast.WithExpr](singleStmt(t, file2))
	require.True(t, ok)
	assert.NotNil(t, withExpr.Body)
}

func Test_Parse_switch(t *testing.T) {
	source := "switch a\n  when 1\n    2\n  else\n    3\n"
	file := parseOK(t, source)
	sw, ok := ast.As[*ast.SwitchExpr](singleStmt(t, file))
	require.True(t, ok)
	require.Len(t, sw.Cases, 1)
	assert.NotNil(t, sw.Else)
}

func Test_Parse_backcall(t *testing.T) {
	file := parseOK(t, "a <- callback\n")
	bc, ok := ast.As[*ast.Backcall](singleStmt(t, file))
	require.True(t, ok)
	assert.NotNil(t, bc.Args)
	assert.NotNil(t, bc.Call)
}

func Test_Parse_syntax_error_reports_position(t *testing.T) {
	_, diagErr := Parse("local = \n")
	require.NotNil(t, diagErr)
	assert.Equal(t, 1, diagErr.Line)
}

func Test_Parse_keyword_is_not_a_valid_name(t *testing.T) {
	_, diagErr := Parse("local and = 1\n")
	assert.NotNil(t, diagErr, "a reserved word must not parse as an identifier")
}
