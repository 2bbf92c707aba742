// Package diag contains the structured diagnostics produced by the moonp
// parser and lowering engine.
//
// A diagnostic is never recovered from internally; any Error aborts the
// current compile. The package only concerns itself with building the
// message a caller can show a user, not with retrying or repairing source.
package diag

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// Kind distinguishes the taxonomy of error spec.md §7 describes.
type Kind int

const (
	// Syntax is a parse failure reported at the furthest position the
	// parser reached before giving up.
	Syntax Kind = iota

	// InvalidEOF means the start rule matched but did not consume the
	// entire input.
	InvalidEOF

	// InvalidTextEncoding means the source was not valid UTF-8.
	InvalidTextEncoding

	// Logic is raised during lowering: non-assignable LHS, continue
	// outside a loop, short-dot outside with, and the other structural
	// errors spec.md §4.G/§7 enumerates.
	Logic
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax error"
	case InvalidEOF:
		return "unexpected trailing input"
	case InvalidTextEncoding:
		return "invalid encoding"
	case Logic:
		return "compile error"
	default:
		return "error"
	}
}

// Error is a single diagnostic, carrying enough of the source to reproduce
// a one-line caret marker without re-reading the original input.
type Error struct {
	Kind Kind

	// Line and Col are 1-based. Col counts code points, not bytes. Both
	// are 0 when the error has no associated position (InvalidTextEncoding,
	// or an InvalidEOF with no further detail).
	Line int
	Col  int

	// SourceLine is the exact text of the offending line, not including its
	// terminating newline. Empty if no particular line caused the error.
	SourceLine string

	Message string
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%d: %s: %s", e.Line, e.Kind, e.Message)
}

// FullMessage formats the diagnostic as spec.md §6 requires: "LINE: MESSAGE"
// followed by the source line and a caret under the offending column.
func (e Error) FullMessage() string {
	var sb strings.Builder

	if e.Line == 0 {
		sb.WriteString(wrap(e.Message))
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d: %s", e.Line, wrap(e.Message))
	if e.SourceLine != "" {
		sb.WriteRune('\n')
		sb.WriteString(e.SourceLine)
		sb.WriteRune('\n')
		sb.WriteString(cursorTo(e.Col))
	}
	return sb.String()
}

// cursorTo builds a string of spaces of length col-1 followed by a caret, so
// that printed under SourceLine it points at the 1-based column col.
func cursorTo(col int) string {
	if col < 1 {
		col = 1
	}
	return strings.Repeat(" ", col-1) + "^"
}

// wrap folds long diagnostic messages at a readable width the same way the
// lowering engine wraps over-long string literal contents.
func wrap(msg string) string {
	if len(msg) <= 78 {
		return msg
	}
	return rosed.Edit(msg).Wrap(78).String()
}

// List is an ordered collection of diagnostics. Parser failures may
// accumulate more than one furthest-error candidate; a Logic error list is
// always singular because lowering halts on the first structural error it
// raises.
type List []Error

// Error joins every diagnostic's FullMessage with a blank line between them,
// matching spec.md §6's "one entry per furthest-error position" output.
func (l List) Error() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.FullMessage()
	}
	return strings.Join(parts, "\n\n")
}

// Empty reports whether the list has no diagnostics.
func (l List) Empty() bool {
	return len(l) == 0
}

// SourceLineAt reconstructs the 1-based line n out of source, or "" if n is
// out of range. Used to fill Error.SourceLine when a diagnostic is raised
// from a position rather than from a token that already carries its line.
func SourceLineAt(source string, n int) string {
	if n < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}
