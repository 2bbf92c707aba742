package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AddToScope_and_IsDefined(t *testing.T) {
	st := NewStack()
	assert.False(t, st.IsDefined("x"))

	assert.True(t, st.AddToScope("x"), "first definition should report fresh")
	assert.True(t, st.IsDefined("x"))
	assert.False(t, st.AddToScope("x"), "redefinition in same scope is not fresh")
}

func Test_inner_scope_shadows_but_does_not_leak(t *testing.T) {
	st := NewStack()
	st.AddToScope("x")

	st.Push()
	assert.True(t, st.IsDefined("x"), "outer definitions remain visible")
	st.AddToScope("y")
	st.Pop()

	assert.False(t, st.IsDefined("y"), "inner definitions are invisible once popped")
}

func Test_allow_list_is_a_transparent_barrier(t *testing.T) {
	st := NewStack()
	st.AddToScope("outer")

	st.Push()
	st.AllowInTop("outer")
	assert.True(t, st.IsDefined("outer"), "listed name remains visible through the barrier")
	st.Pop()

	st.Push()
	st.AllowInTop("onlyThis")
	assert.False(t, st.IsDefined("outer"), "unlisted name is shadowed at the barrier")
	st.Pop()
}

func Test_Fresh_names_do_not_collide(t *testing.T) {
	st := NewStack()
	a := st.Fresh("accum")
	b := st.Fresh("accum")
	require.NotEqual(t, a, b)
	assert.Equal(t, "_accum_0", a)
	assert.Equal(t, "_accum_1", b)
}

func Test_export_modes(t *testing.T) {
	st := NewStack()
	st.MarkExported(Capital)
	st.AddToScope("Foo")
	st.AddToScope("bar")
	assert.Equal(t, []string{"Foo"}, st.Exported())
}

func Test_export_any_mode(t *testing.T) {
	st := NewStack()
	st.MarkExported(Any)
	st.AddToScope("a")
	st.AddToScope("b")
	assert.Equal(t, []string{"a", "b"}, st.Exported())
}

func Test_Pop_module_scope_panics(t *testing.T) {
	st := NewStack()
	assert.Panics(t, func() { st.Pop() })
}
