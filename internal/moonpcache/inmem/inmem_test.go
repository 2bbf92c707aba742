package inmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/moonp/internal/moonpcache"
)

func Test_Store_GetMiss(t *testing.T) {
	assert := assert.New(t)
	st := New()

	_, err := st.Get(context.Background(), "nonexistent")
	assert.ErrorIs(err, moonpcache.ErrNotFound)
}

func Test_Store_PutThenGet(t *testing.T) {
	assert := assert.New(t)
	st := New()

	put, err := st.Put(context.Background(), moonpcache.Entry{
		Key: "abc123",
		Lua: "print(\"hi\")",
		Globals: []moonpcache.Global{
			{Name: "x", Line: 1, Col: 1},
		},
	})
	assert.NoError(err)
	assert.NotZero(put.ID)
	assert.NotZero(put.Created)

	got, err := st.Get(context.Background(), "abc123")
	assert.NoError(err)
	assert.Equal("print(\"hi\")", got.Lua)
	assert.Equal(put.ID, got.ID)
	assert.Equal([]moonpcache.Global{{Name: "x", Line: 1, Col: 1}}, got.Globals)
}

func Test_Store_PutOverwritesSameKey(t *testing.T) {
	assert := assert.New(t)
	st := New()

	_, err := st.Put(context.Background(), moonpcache.Entry{Key: "k", Lua: "first"})
	assert.NoError(err)
	_, err = st.Put(context.Background(), moonpcache.Entry{Key: "k", Lua: "second"})
	assert.NoError(err)

	got, err := st.Get(context.Background(), "k")
	assert.NoError(err)
	assert.Equal("second", got.Lua)
}
