// Package moonpcache memoizes moonp.Compile results by source content, so a
// server or CLI that recompiles the same MoonScript repeatedly does not pay
// the parse/lower cost twice. Entries are keyed by a hash of the exact
// input that produced them: source text plus every Options field that can
// change the output.
package moonpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/moonp"
)

// ErrNotFound is returned by Get when no entry matches the given key.
var ErrNotFound = errors.New("no cache entry with that key")

// Global mirrors moonp.Global in a form that is stable to encode; it exists
// so the cache's on-disk layout does not change if moonp.Global grows new
// unrelated fields.
type Global struct {
	Name string
	Line int
	Col  int
}

// Entry is one memoized compile result.
type Entry struct {
	ID         uuid.UUID
	Key        string
	Lua        string
	ErrMessage string
	Globals    []Global
	Created    time.Time
}

// Store persists Entry values keyed by Key. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the entry for key, or ErrNotFound if none exists.
	Get(ctx context.Context, key string) (Entry, error)

	// Put inserts or replaces the entry for e.Key. e.ID and e.Created are
	// assigned by the store and need not be set by the caller.
	Put(ctx context.Context, e Entry) (Entry, error)

	Close() error
}

// Key hashes everything that affects moonp.Compile's output for source:
// the source text itself and every Options field. Two calls with
// equivalent source and options always produce the same Key.
func Key(source string, opts moonp.Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "v1\n%d\n%s\n", len(source), source)
	fmt.Fprintf(h, "lint=%t implicit=%t reserve=%t space=%t offset=%d\n",
		opts.LintGlobalVariable, opts.ImplicitReturnRoot, opts.ReserveLineNumber,
		opts.UseSpaceOverTab, opts.LineOffset)
	return hex.EncodeToString(h.Sum(nil))
}

// FromCompile builds the Globals a cache Entry stores out of moonp.Compile's
// return value.
func FromCompile(globals []moonp.Global) []Global {
	out := make([]Global, len(globals))
	for i, g := range globals {
		out[i] = Global{Name: g.Name, Line: g.Line, Col: g.Col}
	}
	return out
}
