package peg

import "unicode/utf8"

// Action is a semantic action attached to a Rule. It is invoked with the
// range the rule matched and the exact source text it consumed, after the
// entire start rule has succeeded and the input has been fully consumed.
// Actions never run on a backtracked branch.
type Action func(ctx *Context, begin, end Position, text string)

// recursionMode tracks where a Rule is in the left-recursion
// seed-and-grow algorithm (spec.md §4.B) for one particular start
// position within one Context.
type recursionMode int

const (
	modeReject recursionMode = iota
	modeAccept
)

type lrState struct {
	pos      int // byte offset this entry was opened at
	mode     recursionMode
	detected bool // set true if a nested re-entrant call was observed

	seedEnd     int
	seedLine    int
	seedCol     int
}

type actionEntry struct {
	fn    Action
	begin Position
	end   Position
	text  string
}

// Context is the mutable state threaded through one parse. It is not
// reentrant: a Context must never be shared between concurrent parses
// (spec.md §5).
type Context struct {
	input string
	pos   int
	line  int
	col   int

	furthest    Position
	furthestMsg string

	// State is the user-managed parser state (indent stack, do-stack,
	// heredoc width, module bookkeeping — component D). It is opaque to
	// the engine; combinators reach it only through User predicates.
	State any

	actions  []actionEntry
	lrStates map[*Rule]*lrState
}

// NewContext creates a Context over the given UTF-8 source, with the given
// user state attached.
func NewContext(input string, state any) *Context {
	return &Context{
		input:    input,
		pos:      0,
		line:     1,
		col:      1,
		furthest: Position{Offset: 0, Line: 1, Col: 1},
		State:    state,
		lrStates: make(map[*Rule]*lrState),
	}
}

// Pos returns the current position.
func (ctx *Context) Pos() Position {
	return Position{Offset: ctx.pos, Line: ctx.line, Col: ctx.col}
}

// Furthest returns the furthest position any primitive failed to match at,
// along with the message recorded for it (if any).
func (ctx *Context) Furthest() (Position, string) {
	return ctx.furthest, ctx.furthestMsg
}

// AtEOF reports whether the context has consumed the entire input.
func (ctx *Context) AtEOF() bool {
	return ctx.pos >= len(ctx.input)
}

// Remaining returns the unconsumed suffix of the input.
func (ctx *Context) Remaining() string {
	return ctx.input[ctx.pos:]
}

// snapshot captures everything needed to backtrack: position plus the
// length of the deferred-action queue (ordered choice restores both).
type snapshot struct {
	pos    int
	line   int
	col    int
	nActs  int
}

func (ctx *Context) save() snapshot {
	return snapshot{pos: ctx.pos, line: ctx.line, col: ctx.col, nActs: len(ctx.actions)}
}

func (ctx *Context) restore(s snapshot) {
	ctx.pos = s.pos
	ctx.line = s.line
	ctx.col = s.col
	ctx.actions = ctx.actions[:s.nActs]
}

// advance moves the context forward past the given already-matched text,
// updating column (rune count) but never line: only the NL combinator
// increments the line counter (spec.md §4.A).
func (ctx *Context) advance(text string) {
	ctx.pos += len(text)
	ctx.col += utf8.RuneCountInString(text)
}

// fail records a furthest-error candidate if at is past the previously
// recorded furthest position.
func (ctx *Context) fail(at Position, msg string) {
	if ctx.furthest.Less(at) {
		ctx.furthest = at
		ctx.furthestMsg = msg
	}
}

// deferAction appends an action to the end of the queue. It is only ever
// called on a path that is currently "in progress"; if the enclosing choice
// later backtracks past this point, restore() truncates it back out.
func (ctx *Context) deferAction(fn Action, begin, end Position, text string) {
	if fn == nil {
		return
	}
	ctx.actions = append(ctx.actions, actionEntry{fn: fn, begin: begin, end: end, text: text})
}

// runActions fires every queued action in source order. Called once, after
// the start rule has succeeded and EOF has been reached.
func (ctx *Context) runActions() {
	for _, a := range ctx.actions {
		a.fn(ctx, a.begin, a.end, a.text)
	}
}

// FailureKind distinguishes the two ways a top-level Parse can fail, per
// spec.md §4.B.
type FailureKind int

const (
	// FailureSyntax means the start rule itself did not match.
	FailureSyntax FailureKind = iota

	// FailureInvalidEOF means the start rule matched but left unconsumed
	// input.
	FailureInvalidEOF
)

// Parse runs the given start rule against a fresh Context, firing all
// queued semantic actions in source order on success. It returns the
// furthest-error position and a descriptive message on failure.
func Parse(start Matcher, input string, state any) (ctx *Context, pos Position, msg string, kind FailureKind, ok bool) {
	ctx = NewContext(input, state)

	if !start.Match(ctx) {
		p, m := ctx.Furthest()
		if m == "" {
			m = "syntax error"
		}
		return ctx, p, m, FailureSyntax, false
	}

	if !ctx.AtEOF() {
		p := ctx.Pos()
		if ctx.furthest.Less(p) {
			p = ctx.furthest
		}
		return ctx, p, "unexpected trailing input", FailureInvalidEOF, false
	}

	ctx.runActions()
	return ctx, Position{}, "", 0, true
}
