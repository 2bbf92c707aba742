package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Stack_construction(t *testing.T) {
	s := NewStack()
	a := &Ident{Name: "a"}
	b := &Ident{Name: "b"}
	s.Push(a)
	s.Push(b)

	popped := s.PopN(2)
	require.Len(t, popped, 2)
	assert.Same(t, Node(a), popped[0])
	assert.Same(t, Node(b), popped[1])
	assert.Equal(t, 0, s.Len())
}

func Test_Stack_Root_panics_unless_single(t *testing.T) {
	s := NewStack()
	assert.Panics(t, func() { s.Root() })

	s.Push(&Ident{Name: "x"})
	s.Push(&Ident{Name: "y"})
	assert.Panics(t, func() { s.Root() })
}

func Test_Traverse_preorder_and_stop(t *testing.T) {
	left := &Ident{Name: "left"}
	right := &Ident{Name: "right"}
	bin := &BinaryOp{Op: "+", Left: left, Right: right}
	SetParent(bin, left, right)

	var visited []string
	Traverse(bin, func(n Node) VisitResult {
		if id, ok := As[*Ident](n); ok {
			visited = append(visited, id.Name)
			return Continue
		}
		visited = append(visited, "BinaryOp")
		return Continue
	})

	assert.Equal(t, []string{"BinaryOp", "left", "right"}, visited)
	assert.Same(t, Node(bin), left.Parent())

	var stoppedAt []string
	Traverse(bin, func(n Node) VisitResult {
		if id, ok := As[*Ident](n); ok {
			stoppedAt = append(stoppedAt, id.Name)
			return Stop
		}
		return Continue
	})
	assert.Equal(t, []string{"left"}, stoppedAt)
}

func Test_FindChild(t *testing.T) {
	block := &Block{Stmts: []Node{
		&Return{Value: &Ident{Name: "x"}},
	}}

	ret, ok := FindChild[*Return](block)
	require.True(t, ok)
	id, ok := FindChild[*Ident](ret)
	require.True(t, ok)
	assert.Equal(t, "x", id.Name)

	_, ok = FindChild[*ClassDecl](block)
	assert.False(t, ok)
}

func Test_Kind_String(t *testing.T) {
	assert.Equal(t, "BinaryOp", KindBinaryOp.String())
	assert.Equal(t, "Unknown", Kind(9999).String())
}
