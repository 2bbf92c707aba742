package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_Rule_LeftRecursion exercises the classic left-recursive arithmetic
// grammar E = E '+' N | N, N = digit+, against "1+2+3" and confirms the
// seed-and-grow algorithm consumes the entire input rather than stopping
// after the first number.
func Test_Rule_LeftRecursion(t *testing.T) {
	num := NewRule("num")
	num.Pattern = Plus(RuneRange('0', '9'))

	var sums []string
	expr := NewRule("expr")
	expr.Pattern = Choice(
		Seq(expr, Lit("+"), num),
		num,
	)
	expr.Action = func(ctx *Context, begin, end Position, text string) {
		sums = append(sums, text)
	}

	ctx, pos, msg, kind, ok := Parse(expr, "1+2+3", nil)
	require.True(t, ok, "pos=%v msg=%q kind=%v", pos, msg, kind)
	assert.True(t, ctx.AtEOF())
	require.NotEmpty(t, sums)
	assert.Equal(t, "1+2+3", sums[len(sums)-1])
}

func Test_Rule_no_recursion_still_matches(t *testing.T) {
	digit := NewRule("digit")
	digit.Pattern = RuneRange('0', '9')

	ctx, _, _, _, ok := Parse(digit, "5", nil)
	require.True(t, ok)
	assert.True(t, ctx.AtEOF())
}

func Test_Parse_reports_invalid_eof(t *testing.T) {
	lit := NewRule("lit")
	lit.Pattern = Lit("a")

	_, pos, msg, kind, ok := Parse(lit, "ab", nil)
	assert.False(t, ok)
	assert.Equal(t, FailureInvalidEOF, kind)
	assert.NotEmpty(t, msg)
	assert.Equal(t, 1, pos.Offset)
}

func Test_Parse_reports_syntax_error_at_furthest(t *testing.T) {
	p := Choice(Lit("foo"), Lit("fob"))

	_, pos, msg, kind, ok := Parse(p, "foz", nil)
	assert.False(t, ok)
	assert.Equal(t, FailureSyntax, kind)
	assert.NotEmpty(t, msg)
	assert.Equal(t, 2, pos.Offset)
}
