package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_FullMessage(t *testing.T) {
	testCases := []struct {
		name   string
		input  Error
		expect string
	}{
		{
			name: "with position and source line",
			input: Error{
				Kind:       Syntax,
				Line:       3,
				Col:        5,
				SourceLine: "    x = ",
				Message:    "expected expression",
			},
			expect: "3: expected expression\n    x = \n    ^",
		},
		{
			name: "no position",
			input: Error{
				Kind:    InvalidTextEncoding,
				Message: "input is not valid UTF-8",
			},
			expect: "input is not valid UTF-8",
		},
		{
			name: "position but no source line",
			input: Error{
				Kind:    InvalidEOF,
				Line:    9,
				Message: "unexpected trailing input",
			},
			expect: "9: unexpected trailing input",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.input.FullMessage())
		})
	}
}

func Test_List_Error(t *testing.T) {
	l := List{
		{Kind: Syntax, Line: 1, Col: 1, Message: "bad"},
		{Kind: Syntax, Line: 2, Col: 1, Message: "also bad"},
	}

	assert.Equal(t, "1: syntax error: bad\n\n2: syntax error: also bad", l.Error())
	assert.False(t, l.Empty())
	assert.True(t, List{}.Empty())
}

func Test_SourceLineAt(t *testing.T) {
	src := "a = 1\nb = 2\nc = 3"

	assert.Equal(t, "b = 2", SourceLineAt(src, 2))
	assert.Equal(t, "", SourceLineAt(src, 0))
	assert.Equal(t, "", SourceLineAt(src, 4))
}
