// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists external lookup payloads in a content-addressed,
// TTL-bound SQLite store.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "lookups.db"

// Clock supplies the current time. The store takes it as a dependency so
// tests can control entry ages deterministically.
type Clock func() time.Time

// Store is the lookup cache. Entries are immutable once written; a new
// fetch for the same key overwrites rather than merges, since external
// sources may correct data over time. Reads are concurrent; writes per key
// are last-writer-wins.
type Store struct {
	db    *sql.DB
	clock Clock
}

// Open opens or creates the cache database at dir/lookups.db. A nil clock
// defaults to time.Now. A corrupt database surfaces here as a fatal error
// rather than during processing.
func Open(dir string, clock Clock) (*Store, error) {
	if clock == nil {
		clock = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, clock: clock}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		stored_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Key returns the content-addressed cache key for a normalized lookup
// query. Keys hash the normalized form, never the raw user text, so
// textual variants of the same query share an entry.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached value and its age. ok is false on a miss. Callers
// decide whether the age is acceptable; Get itself never expires entries.
func (s *Store) Get(key string) (value []byte, age time.Duration, ok bool, err error) {
	var storedAt string
	err = s.db.QueryRow(
		`SELECT value, stored_at FROM entries WHERE key = ?`, key,
	).Scan(&value, &storedAt)
	if err == sql.ErrNoRows {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("reading cache entry: %w", err)
	}

	t, err := time.Parse(time.RFC3339, storedAt)
	if err != nil {
		return nil, 0, false, fmt.Errorf("parsing cache timestamp %q: %w", storedAt, err)
	}
	return value, s.clock().Sub(t), true, nil
}

// Put stores value under key, overwriting any existing entry.
func (s *Store) Put(key string, value []byte) error {
	// RFC3339 in UTC is fixed-width, so stored_at orders correctly as text.
	storedAt := s.clock().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO entries (key, value, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, stored_at=excluded.stored_at`,
		key, value, storedAt,
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Prune removes entries older than olderThan and returns the removed count.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := s.clock().Add(-olderThan).UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM entries WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned entries: %w", err)
	}
	return n, nil
}

// Info returns the entry count and the age of the oldest entry.
func (s *Store) Info() (count int, oldest time.Duration, err error) {
	var minStored sql.NullString
	err = s.db.QueryRow(`SELECT count(*), min(stored_at) FROM entries`).Scan(&count, &minStored)
	if err != nil {
		return 0, 0, fmt.Errorf("reading cache info: %w", err)
	}
	if !minStored.Valid {
		return count, 0, nil
	}
	t, err := time.Parse(time.RFC3339, minStored.String)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing cache timestamp %q: %w", minStored.String, err)
	}
	return count, s.clock().Sub(t), nil
}
