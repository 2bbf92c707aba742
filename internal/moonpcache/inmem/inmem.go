// Package inmem is a map-backed moonpcache.Store, the same role the
// teacher's server/dao/inmem package plays for its DAO interfaces: a
// dependency-free stand-in for tests and for callers with no durable
// storage requirement.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/moonp/internal/moonpcache"
)

type Store struct {
	mu      sync.RWMutex
	entries map[string]moonpcache.Entry
}

func New() *Store {
	return &Store{entries: make(map[string]moonpcache.Entry)}
}

func (st *Store) Get(ctx context.Context, key string) (moonpcache.Entry, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	e, ok := st.entries[key]
	if !ok {
		return moonpcache.Entry{}, moonpcache.ErrNotFound
	}
	return e, nil
}

func (st *Store) Put(ctx context.Context, e moonpcache.Entry) (moonpcache.Entry, error) {
	newID, err := uuid.NewRandom()
	if err != nil {
		return moonpcache.Entry{}, err
	}
	e.ID = newID
	e.Created = time.Now()

	st.mu.Lock()
	st.entries[e.Key] = e
	st.mu.Unlock()

	return e, nil
}

func (st *Store) Close() error {
	return nil
}
