package moonp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Compile_simpleAssignment(t *testing.T) {
	assert := assert.New(t)

	lua, errMsg, globals := Compile("x = 1\n", Options{})
	require.Empty(t, errMsg)
	assert.Contains(lua, "x = 1")
	assert.Empty(globals)
}

func Test_Compile_invalidUTF8(t *testing.T) {
	assert := assert.New(t)

	lua, errMsg, globals := Compile(string([]byte{0xff, 0xfe}), Options{})
	assert.Empty(lua)
	assert.NotEmpty(errMsg)
	assert.Nil(globals)
}

func Test_Compile_syntaxError(t *testing.T) {
	assert := assert.New(t)

	lua, errMsg, _ := Compile("x = \n", Options{})
	assert.Empty(lua)
	assert.NotEmpty(errMsg)
}

func Test_Compile_lintGlobalVariable(t *testing.T) {
	assert := assert.New(t)

	_, errMsg, globals := Compile("print undeclared\n", Options{LintGlobalVariable: true})
	require.Empty(t, errMsg)
	found := false
	for _, g := range globals {
		if g.Name == "undeclared" {
			found = true
		}
	}
	assert.True(found, "expected 'undeclared' to be reported as a global, got %v", globals)
}

func Test_Compile_implicitReturnRoot(t *testing.T) {
	assert := assert.New(t)

	lua, errMsg, _ := Compile("1 + 1\n", Options{ImplicitReturnRoot: true})
	require.Empty(t, errMsg)
	assert.True(strings.Contains(lua, "return"), "expected implicit return in output, got %q", lua)
}

func Test_Compile_fullwidthNormalization(t *testing.T) {
	assert := assert.New(t)

	lua, errMsg, _ := Compile("x ＝ 1\n", Options{})
	_ = lua
	assert.Empty(errMsg, "fullwidth '=' should fold to a normal assignment, not a syntax error")
}
