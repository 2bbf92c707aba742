package moonpcache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/moonp"
)

func Test_Key_SameInputsSameKey(t *testing.T) {
	assert := assert.New(t)
	opts := moonp.Options{LintGlobalVariable: true}

	a := Key("x = 1", opts)
	b := Key("x = 1", opts)
	assert.Equal(a, b)
}

func Test_Key_DifferentOptionsDifferentKey(t *testing.T) {
	assert := assert.New(t)

	a := Key("x = 1", moonp.Options{LintGlobalVariable: true})
	b := Key("x = 1", moonp.Options{LintGlobalVariable: false})
	assert.NotEqual(a, b)
}

func Test_Key_DifferentSourceDifferentKey(t *testing.T) {
	assert := assert.New(t)
	opts := moonp.Options{}

	a := Key("x = 1", opts)
	b := Key("x = 2", opts)
	assert.NotEqual(a, b)
}
