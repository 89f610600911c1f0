package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/nucleus/mesh-bridge/internal/bridge"
)

// RunRecord is one persisted run.
type RunRecord struct {
	RunID     string
	Selection []string
	Status    string
	CreatedAt time.Time
}

// SaveReport persists a run report transactionally.
func (c *Client) SaveReport(ctx context.Context, selection []bridge.AssetKey, report *bridge.RunReport) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := string(bridge.MaterializeSucceeded)
	for _, res := range report.Results {
		if res.Status == bridge.MaterializeFailed {
			status = string(bridge.MaterializeFailed)
			break
		}
	}

	keys := make([]string, 0, len(selection))
	for _, k := range selection {
		keys = append(keys, k.String())
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bridge_runs (run_id, selection, status)
		VALUES ($1, $2, $3)
	`, report.RunID, pq.Array(keys), status); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, res := range report.Results {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bridge_run_results (run_id, asset_key, model_id, status, version, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, report.RunID, res.Key.String(), res.ModelID, string(res.Status), nullString(res.Version), i); err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", res.Key, err)
		}
	}

	for _, chk := range report.Checks {
		var count sql.NullInt64
		if chk.Count != nil {
			count = sql.NullInt64{Int64: *chk.Count, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bridge_check_results (run_id, asset_key, check_name, state, row_count, message)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, report.RunID, chk.Asset.String(), chk.Name, string(chk.State), count, nullString(chk.Message)); err != nil {
			return fmt.Errorf("failed to insert check %s for %s: %w", chk.Name, chk.Asset, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns the most recent runs, newest first.
func (c *Client) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT run_id, selection, status, created_at
		FROM bridge_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, pq.Array(&rec.Selection), &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
