package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLite stores keys in a single kv table. The upsert is one statement, so
// Set keeps its all-or-nothing contract.
type SQLite struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewSQLite(dataSourceName string) (*SQLite, error) {
	db, err := sql.Open("sqlite", strings.TrimSpace(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("kvstore: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kvstore: ping sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
)`)
	})
	return s.schemaErr
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.ensureSchema(); err != nil {
		return "", false, err
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		// SQLITE_FULL surfaces as a plain error string from the driver.
		if strings.Contains(err.Error(), "database or disk is full") {
			return ErrOutOfSpace
		}
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}
