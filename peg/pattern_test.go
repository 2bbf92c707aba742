package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lit(t *testing.T) {
	ctx := NewContext("hello world", nil)
	require.True(t, Lit("hello").Match(ctx))
	assert.Equal(t, 5, ctx.pos)

	require.True(t, Lit(" world").Match(ctx))
	assert.True(t, ctx.AtEOF())
}

func Test_Lit_failure_restores_position(t *testing.T) {
	ctx := NewContext("abc", nil)
	ok := Lit("abx").Match(ctx)
	assert.False(t, ok)
	assert.Equal(t, 0, ctx.pos)
}

func Test_Choice_backtracks(t *testing.T) {
	ctx := NewContext("bar", nil)
	p := Choice(Lit("foo"), Lit("bar"))
	require.True(t, p.Match(ctx))
	assert.True(t, ctx.AtEOF())
}

func Test_Star_greedy_stop(t *testing.T) {
	ctx := NewContext("aaab", nil)
	p := Star(Lit("a"))
	require.True(t, p.Match(ctx))
	assert.Equal(t, 3, ctx.pos)
}

func Test_Plus_requires_one(t *testing.T) {
	ctx := NewContext("b", nil)
	p := Plus(Lit("a"))
	assert.False(t, p.Match(ctx))
	assert.Equal(t, 0, ctx.pos)
}

func Test_Not_and_And(t *testing.T) {
	ctx := NewContext("abc", nil)
	require.True(t, And(Lit("a")).Match(ctx))
	assert.Equal(t, 0, ctx.pos, "positive predicate must not consume")

	require.True(t, Not(Lit("x")).Match(ctx))
	assert.Equal(t, 0, ctx.pos, "negative predicate must not consume")

	assert.False(t, Not(Lit("a")).Match(ctx))
}

func Test_NL_tracks_line(t *testing.T) {
	ctx := NewContext("\nabc", nil)
	require.True(t, NL(Lit("\n")).Match(ctx))
	assert.Equal(t, 2, ctx.line)
	assert.Equal(t, 1, ctx.col)
}

func Test_User_predicate_can_veto(t *testing.T) {
	ctx := NewContext("42", nil)
	p := User(Plus(RuneRange('0', '9')), func(text string, _ any) bool {
		return text != "42"
	})
	assert.False(t, p.Match(ctx))
	assert.Equal(t, 0, ctx.pos)
}

func Test_Seq_actions_truncated_on_backtrack(t *testing.T) {
	var fired []string
	act := func(name string) Action {
		return func(ctx *Context, begin, end Position, text string) {
			fired = append(fired, name)
		}
	}

	succeed := NewRule("succeed")
	succeed.Pattern = Lit("a")
	succeed.Action = act("succeed")

	fail := NewRule("fail")
	fail.Pattern = Lit("z")
	fail.Action = act("fail")

	ctx := NewContext("ab", nil)
	p := Choice(Seq(fail, Lit("never")), Seq(succeed, Lit("b")))
	require.True(t, p.Match(ctx))

	ctx.runActions()
	assert.Equal(t, []string{"succeed"}, fired)
}
