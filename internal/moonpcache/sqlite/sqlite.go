// Package sqlite is a modernc.org/sqlite-backed moonpcache.Store, the same
// shape as the teacher's server/dao/sqlite package: a single table, REZI
// encoding for anything beyond a plain scalar, and UUID row identities.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dekarrin/moonp/internal/moonpcache"
)

type Store struct {
	db *sql.DB
}

// New opens (creating if absent) a sqlite database at file and ensures its
// schema exists.
func New(file string) (*Store, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}
	st := &Store{db: db}
	if err := st.init(); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func (st *Store) init() error {
	_, err := st.db.Exec(`CREATE TABLE IF NOT EXISTS compile_cache (
		id TEXT NOT NULL PRIMARY KEY,
		cache_key TEXT NOT NULL UNIQUE,
		lua TEXT NOT NULL,
		err_message TEXT NOT NULL,
		globals TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (st *Store) Get(ctx context.Context, key string) (moonpcache.Entry, error) {
	var e moonpcache.Entry
	var id, encGlobals string
	var created int64

	row := st.db.QueryRowContext(ctx,
		`SELECT id, lua, err_message, globals, created FROM compile_cache WHERE cache_key = ?;`, key)
	err := row.Scan(&id, &e.Lua, &e.ErrMessage, &encGlobals, &created)
	if err != nil {
		return e, wrapDBError(err)
	}

	e.Key = key
	e.Created = time.Unix(created, 0)
	e.ID, err = uuid.Parse(id)
	if err != nil {
		return e, fmt.Errorf("stored cache row %q has an invalid id: %w", key, err)
	}
	if err := decodeGlobals(encGlobals, &e.Globals); err != nil {
		return e, err
	}
	return e, nil
}

func (st *Store) Put(ctx context.Context, e moonpcache.Entry) (moonpcache.Entry, error) {
	newID, err := uuid.NewRandom()
	if err != nil {
		return moonpcache.Entry{}, fmt.Errorf("could not generate cache row ID: %w", err)
	}
	e.ID = newID
	e.Created = time.Now()

	encGlobals := encodeGlobals(e.Globals)

	_, err = st.db.ExecContext(ctx,
		`INSERT INTO compile_cache (id, cache_key, lua, err_message, globals, created)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			id=excluded.id, lua=excluded.lua, err_message=excluded.err_message,
			globals=excluded.globals, created=excluded.created;`,
		e.ID.String(), e.Key, e.Lua, e.ErrMessage, encGlobals, e.Created.Unix(),
	)
	if err != nil {
		return moonpcache.Entry{}, wrapDBError(err)
	}
	return e, nil
}

func (st *Store) Close() error {
	return st.db.Close()
}

func encodeGlobals(globals []moonpcache.Global) string {
	data := rezi.EncBinary(globals)
	return base64.StdEncoding.EncodeToString(data)
}

func decodeGlobals(s string, target *[]moonpcache.Global) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("stored globals are not valid base64: %w", err)
	}
	var globals []moonpcache.Global
	n, err := rezi.DecBinary(raw, &globals)
	if err != nil {
		return fmt.Errorf("REZI decode of stored globals: %w", err)
	}
	if n != len(raw) {
		return fmt.Errorf("REZI decoded byte count mismatch for stored globals; consumed %d/%d bytes", n, len(raw))
	}
	*target = globals
	return nil
}

func wrapDBError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return moonpcache.ErrNotFound
	}
	return err
}
