package lower

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/moonp/grammar"
)

func lowerSource(t *testing.T, source string, opts Options) string {
	t.Helper()
	file, perr := grammar.Parse(source)
	require.Nil(t, perr, "expected %q to parse cleanly", source)

	lua, _, lerr := Lower(source, file, opts)
	require.Nil(t, lerr, "expected %q to lower cleanly", source)
	return lua
}

func Test_Lower_localAssignment(t *testing.T) {
	assert := assert.New(t)
	lua := lowerSource(t, "local x = 1\n", Options{})
	assert.Contains(lua, "local x = 1")
}

func Test_Lower_ifAsExpression(t *testing.T) {
	assert := assert.New(t)
	lua := lowerSource(t, "y = if x then 1 else 2\n", Options{})
	assert.Contains(lua, "if x")
	assert.Contains(lua, "y = 1")
	assert.Contains(lua, "y = 2")
}

func Test_Lower_classWithExtends(t *testing.T) {
	assert := assert.New(t)
	lua := lowerSource(t, "class Animal\n  speak: => print 1\n\nclass Dog extends Animal\n  speak: => print 2\n", Options{})
	assert.Contains(lua, "__index")
	assert.Contains(lua, "__base")
	assert.Contains(lua, "__parent")
}

func Test_Lower_continueInsideWhile(t *testing.T) {
	assert := assert.New(t)
	lua := lowerSource(t, "while x\n  if y\n    continue\n  print x\n", Options{})
	assert.Contains(lua, "break")
}

func Test_Lower_listComprehension(t *testing.T) {
	assert := assert.New(t)
	lua := lowerSource(t, "ys = [x for x in *xs when x > 0]\n", Options{})
	assert.Contains(lua, "for x in")
	assert.Contains(lua, "if x > 0")
}

func Test_Lower_stringInterpolation(t *testing.T) {
	assert := assert.New(t)
	lua := lowerSource(t, "s = \"hi #{name}\"\n", Options{})
	assert.True(strings.Contains(lua, "tostring(name)"))
}

func Test_Lower_lintGlobalVariable(t *testing.T) {
	assert := assert.New(t)
	file, perr := grammar.Parse("print unknownVar\n")
	require.Nil(t, perr)

	_, globals, lerr := Lower("print unknownVar\n", file, Options{LintGlobalVariable: true})
	require.Nil(t, lerr)

	found := false
	for _, g := range globals {
		if g.Name == "unknownVar" {
			found = true
		}
	}
	assert.True(found)
}

func Test_Lower_breakOutsideLoopIsLogicError(t *testing.T) {
	require := require.New(t)
	file, perr := grammar.Parse("break\n")
	require.Nil(perr)

	_, _, lerr := Lower("break\n", file, Options{})
	require.NotNil(lerr, "expected a Logic error for break outside any loop")
}

func Test_Lower_continueOutsideLoopIsLogicError(t *testing.T) {
	require := require.New(t)
	file, perr := grammar.Parse("continue\n")
	require.Nil(perr)

	_, _, lerr := Lower("continue\n", file, Options{})
	require.NotNil(lerr, "expected a Logic error for continue outside any loop")
}

func Test_Lower_assignToCallResultIsLogicError(t *testing.T) {
	require := require.New(t)
	file, perr := grammar.Parse("f() = 1\n")
	require.Nil(perr)

	_, _, lerr := Lower("f() = 1\n", file, Options{})
	require.NotNil(lerr, "expected a Logic error for assigning to a call result")
}

func Test_Lower_bareCallStatementStillLowers(t *testing.T) {
	assert := assert.New(t)
	lua := lowerSource(t, "f()\n", Options{})
	assert.Contains(lua, "f()")
}

func Test_Lower_reserveLineNumberPadsBlankLines(t *testing.T) {
	assert := assert.New(t)
	source := "x = 1\n\n\ny = 2\n"
	lua := lowerSource(t, source, Options{ReserveLineNumber: true})
	lines := strings.Split(strings.TrimRight(lua, "\n"), "\n")
	assert.GreaterOrEqual(len(lines), 4)
}
