package peg

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Matcher is the single interface every grammar combinator and Rule
// implements (component A, spec.md §4.A). Match attempts to consume input
// at the Context's current position; on failure it must leave the Context
// exactly as it found it other than recording a furthest-error candidate.
type Matcher interface {
	Match(ctx *Context) bool
}

// matcherFunc adapts a plain function to Matcher.
type matcherFunc func(ctx *Context) bool

func (f matcherFunc) Match(ctx *Context) bool { return f(ctx) }

// Lit matches the given literal string exactly. On a partial match it
// reports the furthest-error position at the exact rune that diverged,
// rather than at the start of the attempt, so diagnostics point at the
// useful spot.
func Lit(s string) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		if strings.HasPrefix(ctx.Remaining(), s) {
			ctx.advance(s)
			return true
		}

		rem := ctx.Remaining()
		si, ri := 0, 0
		line, col := ctx.line, ctx.col
		for si < len(s) {
			sr, ssize := utf8.DecodeRuneInString(s[si:])
			rr, rsize := utf8.DecodeRuneInString(rem[ri:])
			if rsize == 0 || sr != rr {
				break
			}
			si += ssize
			ri += rsize
			col++
		}
		ctx.fail(Position{Offset: ctx.pos + ri, Line: line, Col: col}, fmt.Sprintf("expected %q", s))
		return false
	})
}

// LitFold matches s case-insensitively (used for MoonScript's
// case-insensitive boolean-ish keyword spellings inherited from the host
// grammar's keyword table).
func LitFold(s string) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		start := ctx.Pos()
		rem := ctx.Remaining()
		if len(rem) < len(s) {
			ctx.fail(start, fmt.Sprintf("expected %q", s))
			return false
		}
		if !strings.EqualFold(rem[:len(s)], s) {
			ctx.fail(start, fmt.Sprintf("expected %q", s))
			return false
		}
		ctx.advance(rem[:len(s)])
		return true
	})
}

// Set matches a single rune that is one of the runes in chars.
func Set(chars string) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		start := ctx.Pos()
		r, size := utf8.DecodeRuneInString(ctx.Remaining())
		if size == 0 || !strings.ContainsRune(chars, r) {
			ctx.fail(start, fmt.Sprintf("expected one of %q", chars))
			return false
		}
		ctx.advance(ctx.Remaining()[:size])
		return true
	})
}

// RuneRange matches a single rune r such that lo <= r <= hi.
func RuneRange(lo, hi rune) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		start := ctx.Pos()
		r, size := utf8.DecodeRuneInString(ctx.Remaining())
		if size == 0 || r < lo || r > hi {
			ctx.fail(start, fmt.Sprintf("expected rune in range %c-%c", lo, hi))
			return false
		}
		ctx.advance(ctx.Remaining()[:size])
		return true
	})
}

// Any matches exactly one rune, failing only at EOF.
func Any() Matcher {
	return matcherFunc(func(ctx *Context) bool {
		start := ctx.Pos()
		r, size := utf8.DecodeRuneInString(ctx.Remaining())
		if size == 0 {
			ctx.fail(start, "unexpected end of input")
			return false
		}
		_ = r
		ctx.advance(ctx.Remaining()[:size])
		return true
	})
}

// EOF matches only at the end of input, consuming nothing.
func EOF() Matcher {
	return matcherFunc(func(ctx *Context) bool {
		if ctx.AtEOF() {
			return true
		}
		ctx.fail(ctx.Pos(), "expected end of input")
		return false
	})
}

// True always succeeds without consuming input.
func True() Matcher {
	return matcherFunc(func(ctx *Context) bool { return true })
}

// False always fails without consuming input.
func False() Matcher {
	return matcherFunc(func(ctx *Context) bool {
		ctx.fail(ctx.Pos(), "unconditional failure")
		return false
	})
}

// Seq matches each pattern in order; if any fails, the whole sequence
// backtracks to where it started.
func Seq(ps ...Matcher) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		snap := ctx.save()
		for _, p := range ps {
			if !p.Match(ctx) {
				ctx.restore(snap)
				return false
			}
		}
		return true
	})
}

// Choice tries each alternative in order, restoring position and the
// deferred-action queue length between attempts (ordered choice, spec.md
// §4.B).
func Choice(ps ...Matcher) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		for _, p := range ps {
			snap := ctx.save()
			if p.Match(ctx) {
				return true
			}
			ctx.restore(snap)
		}
		return false
	})
}

// Star matches p zero or more times, greedily. Repetition is
// non-backtracking between iterations: once an iteration fails, state is
// restored to just after the last successful iteration and the loop stops
// (spec.md §4.B).
func Star(p Matcher) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		for {
			snap := ctx.save()
			if !p.Match(ctx) {
				ctx.restore(snap)
				return true
			}
			if ctx.pos == snap.pos {
				// zero-width match: stop to avoid an infinite loop.
				return true
			}
		}
	})
}

// Plus matches p one or more times.
func Plus(p Matcher) Matcher {
	star := Star(p)
	return matcherFunc(func(ctx *Context) bool {
		snap := ctx.save()
		if !p.Match(ctx) {
			ctx.restore(snap)
			return false
		}
		return star.Match(ctx)
	})
}

// Opt matches p if possible, and always succeeds.
func Opt(p Matcher) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		snap := ctx.save()
		if !p.Match(ctx) {
			ctx.restore(snap)
		}
		return true
	})
}

// And is the positive syntactic predicate &a: succeeds iff p matches, but
// consumes no input and fires no actions either way.
func And(p Matcher) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		snap := ctx.save()
		ok := p.Match(ctx)
		ctx.restore(snap)
		return ok
	})
}

// Not is the negative syntactic predicate !a: succeeds iff p fails to
// match, consuming no input.
func Not(p Matcher) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		snap := ctx.save()
		ok := p.Match(ctx)
		ctx.restore(snap)
		if ok {
			ctx.fail(snap.pos2(ctx), "unexpected match of negative predicate")
			return false
		}
		return true
	})
}

// pos2 is a tiny helper so Not can report a Position from a snapshot
// without exposing snapshot's fields outside the package.
func (s snapshot) pos2(ctx *Context) Position {
	return Position{Offset: s.pos, Line: s.line, Col: s.col}
}

// NL wraps p: on success, the line counter is incremented and the column
// reset to 1. Used for the grammar's explicit line-break rule; ordinary
// text consumption never advances the line counter on its own (spec.md
// §4.A, §3).
func NL(p Matcher) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		if !p.Match(ctx) {
			return false
		}
		ctx.line++
		ctx.col = 1
		return true
	})
}

// User runs p, then invokes pred over the exact text p consumed plus the
// current user State. The whole match fails if pred returns false, with
// the Context restored as if p had never matched.
func User(p Matcher, pred func(text string, state any) bool) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		snap := ctx.save()
		if !p.Match(ctx) {
			return false
		}
		text := ctx.input[snap.pos:ctx.pos]
		if !pred(text, ctx.State) {
			ctx.restore(snap)
			ctx.fail(snap.pos2(ctx), "semantic predicate failed")
			return false
		}
		return true
	})
}

// Predicate is a zero-width semantic gate: it consumes no input of its own
// and succeeds iff pred(state) returns true. Used for indentation checks
// (component D) that inspect State but do not themselves match text.
func Predicate(pred func(state any) bool) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		if pred(ctx.State) {
			return true
		}
		ctx.fail(ctx.Pos(), "predicate failed")
		return false
	})
}

// Effect is a zero-width action on State that always succeeds, used for
// combinators like pop_indent that unconditionally mutate state.
func Effect(fn func(state any)) Matcher {
	return matcherFunc(func(ctx *Context) bool {
		fn(ctx.State)
		return true
	})
}
