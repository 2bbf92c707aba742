package lower

import (
	"strconv"
	"strings"

	"github.com/dekarrin/moonp/ast"
)

// lowerStringLiteral turns a MoonScript string literal into a Lua
// expression. A long-bracket string passes its content through verbatim,
// reusing the same `=`-run so its quoting can never prematurely close
// early. Single- and double-quoted strings with no interpolated segments
// become a single Lua-quoted literal; with interpolation they become a
// `..`-concatenation of literal runs and `tostring(...)`-wrapped
// expressions.
func (lw *Lowerer) lowerStringLiteral(t *ast.StringLiteral) string {
	if t.Quote == ast.StringQuoteLongBrack {
		eq := strings.Repeat("=", t.EqCount)
		content := ""
		if len(t.Segments) > 0 {
			if st, ok := t.Segments[0].(*ast.StringText); ok {
				content = st.Text
			}
		}
		return "[" + eq + "[" + content + "]" + eq + "]"
	}

	if len(t.Segments) == 0 {
		return `""`
	}

	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if st, ok := seg.(*ast.StringText); ok {
			parts = append(parts, strconv.Quote(st.Text))
			continue
		}
		parts = append(parts, "tostring("+lw.lowerExpr(seg)+")")
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " .. ") + ")"
}
