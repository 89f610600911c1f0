// Package store persists run history for the bridge in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Client wraps the database connection pool and provides run-history access.
type Client struct {
	db *sql.DB
}

// NewClient connects to the given PostgreSQL URL and ensures the schema exists.
func NewClient(ctx context.Context, databaseURL string) (*Client, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Client{db: db}, nil
}

// DB returns the underlying *sql.DB for custom queries.
func (c *Client) DB() *sql.DB { return c.db }

// Close closes the database connection.
func (c *Client) Close() error { return c.db.Close() }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS bridge_runs (
    run_id      TEXT PRIMARY KEY,
    selection   TEXT[] NOT NULL DEFAULT '{}',
    status      TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS bridge_run_results (
    run_id     TEXT NOT NULL REFERENCES bridge_runs(run_id) ON DELETE CASCADE,
    asset_key  TEXT NOT NULL,
    model_id   TEXT NOT NULL,
    status     TEXT NOT NULL,
    version    TEXT,
    position   INT NOT NULL,
    PRIMARY KEY (run_id, asset_key)
);
CREATE TABLE IF NOT EXISTS bridge_check_results (
    run_id     TEXT NOT NULL REFERENCES bridge_runs(run_id) ON DELETE CASCADE,
    asset_key  TEXT NOT NULL,
    check_name TEXT NOT NULL,
    state      TEXT NOT NULL,
    row_count  BIGINT,
    message    TEXT,
    PRIMARY KEY (run_id, asset_key, check_name)
);
CREATE INDEX IF NOT EXISTS idx_bridge_runs_created_at ON bridge_runs(created_at DESC);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure run-history schema: %w", err)
	}
	return nil
}
