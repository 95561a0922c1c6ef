package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres stores keys in a studio_kv table via the pgx stdlib driver.
type Postgres struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("kvstore: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kvstore: ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) ensureSchema() error {
	p.schemaOnce.Do(func() {
		_, p.schemaErr = p.db.Exec(`
CREATE TABLE IF NOT EXISTS studio_kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
)`)
	})
	return p.schemaErr
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	if err := p.ensureSchema(); err != nil {
		return "", false, err
	}
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM studio_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if err := p.ensureSchema(); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx, `
INSERT INTO studio_kv (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		var pgErr *pgconn.PgError
		// 53100 = disk_full
		if errors.As(err, &pgErr) && pgErr.Code == "53100" {
			return ErrOutOfSpace
		}
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}
