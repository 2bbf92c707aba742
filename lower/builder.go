package lower

import "strings"

// builder accumulates lowered Lua source line by line. It tracks an indent
// level the way the grammar's parseState tracks an indent stack, except
// here indentation is purely cosmetic output formatting rather than a
// syntactic signal.
type builder struct {
	opts  Options
	buf   strings.Builder
	depth int
	line  int // number of newline-terminated lines written so far
}

func newBuilder(opts Options) *builder {
	return &builder{opts: opts}
}

func (b *builder) indentUnit() string {
	if b.opts.UseSpaceOverTab {
		return "  "
	}
	return "\t"
}

func (b *builder) prefix() string {
	if b.depth <= 0 {
		return ""
	}
	return strings.Repeat(b.indentUnit(), b.depth)
}

// Indent increases the indent level for subsequent Line calls.
func (b *builder) Indent() { b.depth++ }

// Dedent decreases the indent level. No-op if already at zero, since a
// mismatched dedent is a lowering bug, not a user-facing error.
func (b *builder) Dedent() {
	if b.depth > 0 {
		b.depth--
	}
}

// Line writes one line of Lua, indented to the current depth.
func (b *builder) Line(text string) {
	if text == "" {
		b.Blank()
		return
	}
	b.buf.WriteString(b.prefix())
	b.buf.WriteString(text)
	b.buf.WriteByte('\n')
	b.line++
}

// Blank writes an empty line, used by SyncLine to pad output so that
// source and lowered line numbers agree when ReserveLineNumber is set.
func (b *builder) Blank() {
	b.buf.WriteByte('\n')
	b.line++
}

// SyncLine pads the output with blank lines until it is at least at
// srcLine, when the caller asked for line numbers to be preserved. It
// never removes lines, since the lowered form is sometimes more compact
// than the source (e.g. a collapsed destructure) and catching back up is
// impossible without deleting already-emitted statements.
func (b *builder) SyncLine(srcLine int) {
	if !b.opts.ReserveLineNumber || srcLine <= 0 {
		return
	}
	for b.line < srcLine-1 {
		b.Blank()
	}
}

// String returns the accumulated Lua source.
func (b *builder) String() string {
	return b.buf.String()
}

// sub returns a fresh builder one indent level deeper than b, for use
// when a control construct must be lowered into its own nested function
// body (the existential/closure IIFE wrapping in control.go and
// expressions.go).
func (b *builder) sub() *builder {
	nb := newBuilder(b.opts)
	nb.depth = b.depth + 1
	nb.line = b.line
	return nb
}
