// Package credstore persists session credentials in a small SQLite
// key-value table so they survive process restarts.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the durable key-value slot backing the session store.
type Store struct {
	sql *sql.DB
}

// Open creates or opens the credential database at path, creating parent
// directories and tightening file permissions.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("credentials path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	// modernc SQLite uses a URI-like DSN; plain file paths are ok.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(1)
	s.SetMaxIdleConns(1)
	s.SetConnMaxLifetime(0)

	st := &Store{sql: s}
	if err := st.ping(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := st.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0o600)
	return st, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.sql.Close()
}

func (s *Store) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.sql.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.sql.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS credentials (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`)
	return err
}

// Get fetches a single key. The boolean indicates whether the key exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.sql.QueryRowContext(ctx,
		"SELECT value FROM credentials WHERE key = ?", key).Scan(&v)
	if err == nil {
		return v, true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	return "", false, err
}

// Set upserts a key/value pair and updates its timestamp.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("credential key is required")
	}
	_, err := s.sql.ExecContext(ctx, `
INSERT INTO credentials(key, value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value, time.Now().Unix())
	return err
}

// Remove deletes a key. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.sql.ExecContext(ctx, "DELETE FROM credentials WHERE key = ?", key)
	return err
}
