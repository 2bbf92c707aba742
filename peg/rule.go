package peg

// Rule is a named, possibly-recursive grammar handle (component A/B). A
// Rule's Pattern field is typically assigned after construction so that
// mutually- and self-recursive grammars can reference each other before
// every rule's body exists; by the time Match is first called, every rule
// reachable from the start rule must have Pattern set.
type Rule struct {
	Name    string
	Pattern Matcher
	Action  Action
}

// NewRule creates a named rule with no pattern yet assigned. Assign
// r.Pattern before the grammar's start rule is first parsed.
func NewRule(name string) *Rule {
	return &Rule{Name: name}
}

// Match implements left-recursion detection and resolution per spec.md
// §4.B: a rule re-entered at the same input position it previously started
// at is recognized as left-recursive. The first re-entry is rejected,
// forcing an alternative (non-recursive) branch of the rule's own Pattern
// to match a seed; once a seed is found, the rule is re-entered repeatedly
// at the new, advanced position, each iteration trying to extend the
// match, until an iteration fails to grow it.
func (r *Rule) Match(ctx *Context) bool {
	startOffset := ctx.pos
	startPos := ctx.Pos()

	if st, ok := ctx.lrStates[r]; ok && st.pos == startOffset {
		// Re-entrant call at the same position this rule is already
		// trying to match at.
		if st.mode == modeAccept {
			ctx.pos = st.seedEnd
			ctx.line = st.seedLine
			ctx.col = st.seedCol
			return true
		}
		st.detected = true
		return false
	}

	st := &lrState{pos: startOffset, mode: modeReject}
	ctx.lrStates[r] = st
	defer delete(ctx.lrStates, r)

	savedActions := len(ctx.actions)

	if !r.Pattern.Match(ctx) {
		ctx.actions = ctx.actions[:savedActions]
		return false
	}

	if !st.detected {
		// Ordinary (non-left-recursive) match.
		r.fire(ctx, startPos, ctx.Pos())
		return true
	}

	// A seed was found on the first pass. Grow it by re-entering the rule
	// at the now-advanced position, each time starting fresh from the
	// rule's own Pattern (so that the recursive reference resolves via the
	// Accept-mode memo to the current best seed) and keeping the result
	// only if it advanced further than the last.
	st.mode = modeAccept
	st.seedEnd = ctx.pos
	st.seedLine = ctx.line
	st.seedCol = ctx.col
	bestActions := len(ctx.actions)

	for {
		ctx.pos = startOffset
		ctx.line = startPos.Line
		ctx.col = startPos.Col
		ctx.actions = ctx.actions[:savedActions]

		st.detected = false
		if !r.Pattern.Match(ctx) || ctx.pos <= st.seedEnd {
			break
		}

		st.seedEnd = ctx.pos
		st.seedLine = ctx.line
		st.seedCol = ctx.col
		bestActions = len(ctx.actions)
	}

	ctx.pos = st.seedEnd
	ctx.line = st.seedLine
	ctx.col = st.seedCol
	ctx.actions = ctx.actions[:bestActions]

	r.fire(ctx, startPos, ctx.Pos())
	return true
}

func (r *Rule) fire(ctx *Context, begin, end Position) {
	if r.Action == nil {
		return
	}
	text := ctx.input[begin.Offset:end.Offset]
	ctx.deferAction(r.Action, begin, end, text)
}
