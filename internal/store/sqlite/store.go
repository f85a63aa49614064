// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kinship-dev/kinship/internal/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store implements store.Store backed by SQLite. Entities are stored as JSON
// payloads keyed by (kind, handle); a reference table powers backlinks.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at dbPath and initialises the
// objects, refs, and meta tables.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite db: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS objects (
	kind      TEXT NOT NULL,
	handle    TEXT NOT NULL,
	gramps_id TEXT NOT NULL DEFAULT '',
	surname   TEXT NOT NULL DEFAULT '',
	payload   TEXT NOT NULL,
	PRIMARY KEY (kind, handle)
);

CREATE INDEX IF NOT EXISTS idx_objects_gramps_id ON objects(kind, gramps_id);
CREATE INDEX IF NOT EXISTS idx_objects_surname ON objects(surname) WHERE surname != '';

CREATE TABLE IF NOT EXISTS refs (
	source_kind   TEXT NOT NULL,
	source_handle TEXT NOT NULL,
	target_handle TEXT NOT NULL,
	PRIMARY KEY (source_kind, source_handle, target_handle)
);

CREATE INDEX IF NOT EXISTS idx_refs_target ON refs(target_handle);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, kind store.Kind, handle string) (store.Object, error) {
	const q = `SELECT payload FROM objects WHERE kind = ? AND handle = ?`

	var payload []byte
	err := s.db.QueryRowContext(ctx, q, string(kind), handle).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s %s: %w", kind, handle, err)
	}

	obj, err := store.DecodeObject(kind, payload)
	if err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", kind, handle, err)
	}
	return obj, nil
}

func (s *Store) List(ctx context.Context, kind store.Kind) ([]store.Object, error) {
	const q = `SELECT handle, payload FROM objects WHERE kind = ? ORDER BY handle ASC`

	rows, err := s.db.QueryContext(ctx, q, string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	defer rows.Close()

	var objs []store.Object
	for rows.Next() {
		var handle string
		var payload []byte
		if err := rows.Scan(&handle, &payload); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", kind, err)
		}
		obj, err := store.DecodeObject(kind, payload)
		if err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", kind, handle, err)
		}
		objs = append(objs, obj)
	}
	return objs, rows.Err()
}

func (s *Store) Backlinks(ctx context.Context, handle string) (map[store.Kind][]string, error) {
	const q = `SELECT source_kind, source_handle FROM refs WHERE target_handle = ? ORDER BY source_kind, source_handle`

	rows, err := s.db.QueryContext(ctx, q, handle)
	if err != nil {
		return nil, fmt.Errorf("reading backlinks of %s: %w", handle, err)
	}
	defer rows.Close()

	links := map[store.Kind][]string{}
	for rows.Next() {
		var kind, source string
		if err := rows.Scan(&kind, &source); err != nil {
			return nil, fmt.Errorf("scanning backlink row: %w", err)
		}
		links[store.Kind(kind)] = append(links[store.Kind(kind)], source)
	}
	return links, rows.Err()
}

func (s *Store) Summary(ctx context.Context) (*store.TreeSummary, error) {
	const q = `SELECT kind, COUNT(*) FROM objects GROUP BY kind`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("counting objects: %w", err)
	}
	defer rows.Close()

	counts := map[store.Kind]int{}
	for _, k := range store.Kinds() {
		counts[k] = 0
	}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[store.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var defaultPerson string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'default_person'`).Scan(&defaultPerson)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading default person: %w", err)
	}

	return &store.TreeSummary{DefaultPerson: defaultPerson, Counts: counts}, nil
}

func (s *Store) Surnames(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT surname FROM objects WHERE kind = 'person' AND surname != '' ORDER BY surname`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing surnames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning surname row: %w", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, rows.Err()
}

func (s *Store) Put(ctx context.Context, obj store.Object) error {
	handle := obj.ObjectHandle()
	if handle == "" {
		return store.ErrInvalidInput
	}

	payload, err := store.EncodeObject(obj)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", obj.ObjectKind(), handle, err)
	}

	var surname string
	if p, ok := obj.(*store.Person); ok {
		surname = p.PrimaryName.PrimarySurname()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO objects (kind, handle, gramps_id, surname, payload) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (kind, handle) DO UPDATE SET gramps_id = excluded.gramps_id, surname = excluded.surname, payload = excluded.payload`
	if _, err := tx.ExecContext(ctx, upsert, string(obj.ObjectKind()), handle, obj.ObjectID(), surname, payload); err != nil {
		return fmt.Errorf("writing %s %s: %w", obj.ObjectKind(), handle, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM refs WHERE source_handle = ?`, handle); err != nil {
		return fmt.Errorf("clearing refs of %s: %w", handle, err)
	}
	seen := map[string]bool{}
	for _, targets := range store.References(obj) {
		for _, target := range targets {
			if seen[target] {
				continue
			}
			seen[target] = true
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO refs (source_kind, source_handle, target_handle) VALUES (?, ?, ?)`,
				string(obj.ObjectKind()), handle, target); err != nil {
				return fmt.Errorf("writing ref %s -> %s: %w", handle, target, err)
			}
		}
	}

	return tx.Commit()
}

func (s *Store) Bookmarks(ctx context.Context, kind store.Kind) ([]string, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, "bookmarks."+string(kind)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s bookmarks: %w", kind, err)
	}

	var handles []string
	if err := json.Unmarshal(payload, &handles); err != nil {
		return nil, fmt.Errorf("decoding %s bookmarks: %w", kind, err)
	}
	return handles, nil
}

func (s *Store) SetBookmarks(ctx context.Context, kind store.Kind, handles []string) error {
	payload, err := json.Marshal(handles)
	if err != nil {
		return fmt.Errorf("encoding %s bookmarks: %w", kind, err)
	}
	const q = `INSERT INTO meta (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, q, "bookmarks."+string(kind), payload); err != nil {
		return fmt.Errorf("writing %s bookmarks: %w", kind, err)
	}
	return nil
}

func (s *Store) SetDefaultPerson(ctx context.Context, handle string) error {
	if handle != "" {
		if _, err := s.Get(ctx, store.KindPerson, handle); err != nil {
			return err
		}
	}
	const q = `INSERT INTO meta (key, value) VALUES ('default_person', ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, q, handle); err != nil {
		return fmt.Errorf("writing default person: %w", err)
	}
	return nil
}
