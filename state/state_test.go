package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MeasureIndent_tabs_count_as_four(t *testing.T) {
	assert.Equal(t, 4, MeasureIndent("\t"))
	assert.Equal(t, 4, MeasureIndent("    "))
	assert.Equal(t, 6, MeasureIndent("\t  "))
}

func Test_IndentStack_advance_and_pop(t *testing.T) {
	s := New()
	assert.True(t, s.CheckIndent(0))

	assert.True(t, s.Advance(2))
	assert.True(t, s.CheckIndent(2))
	assert.False(t, s.CheckIndent(0))

	assert.False(t, s.Advance(2), "advance requires strictly greater width")

	s.PopIndent()
	assert.True(t, s.CheckIndent(0))
}

func Test_PreventIndent_suspends_checks(t *testing.T) {
	s := New()
	s.PreventIndent()
	assert.True(t, s.CheckIndent(0))
	assert.True(t, s.CheckIndent(17))
	s.PopIndent()
	assert.False(t, s.CheckIndent(17))
}

func Test_DoStack(t *testing.T) {
	s := New()
	assert.True(t, s.DoAllowed())
	s.PushDo(false)
	assert.False(t, s.DoAllowed())
	s.PopDo()
	assert.True(t, s.DoAllowed())
}
