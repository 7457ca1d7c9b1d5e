// Package store provides the SQLite-backed key/value state store.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// Store persists JSON state values by key.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the state database at the given path and applies
// pending migrations.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the state database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw value stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM state_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put replaces the value stored under key.
func (s *Store) Put(key string, value []byte) error {
	return s.PutMany(map[string][]byte{key: value})
}

// PutMany replaces several values in one transaction.
func (s *Store) PutMany(values map[string][]byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC().Format(time.RFC3339)
	for key, value := range values {
		_, err = tx.Exec(`INSERT INTO state_entries (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(value), now)
		if err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Delete removes keys. Missing keys are ignored.
func (s *Store) Delete(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range keys {
		if _, err := tx.Exec("DELETE FROM state_entries WHERE key = ?", key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Keys returns every stored key in sorted order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM state_entries ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(key string) (time.Time, error) {
	var ts string
	err := s.db.QueryRow("SELECT updated_at FROM state_entries WHERE key = ?", key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, ts)
}
