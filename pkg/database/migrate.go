package database

import (
	"context"
	"fmt"
)

// Schema lives in its own namespace so the tool can share a database.
// 테이블 추가 시 여기에만 추가
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS extremes`,

	`CREATE TABLE IF NOT EXISTS extremes.download_ledger (
		exchange    TEXT NOT NULL,
		trade_date  CHAR(8) NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (exchange, trade_date)
	)`,

	`CREATE TABLE IF NOT EXISTS extremes.snapshot_cache (
		exchange   TEXT NOT NULL,
		trade_date CHAR(8) NOT NULL,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (exchange, trade_date)
	)`,

	`CREATE TABLE IF NOT EXISTS extremes.breach_events (
		run_id       UUID NOT NULL,
		exchange     TEXT NOT NULL,
		mode         TEXT NOT NULL,
		trade_date   CHAR(8) NOT NULL,
		code         TEXT NOT NULL,
		name         TEXT NOT NULL,
		close        NUMERIC(14,2) NOT NULL,
		base_extreme NUMERIC(14,2) NOT NULL,
		new_extreme  NUMERIC(14,2) NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (run_id, trade_date, code)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_breach_events_latest
		ON extremes.breach_events (exchange, mode, created_at DESC)`,
}

// Migrate creates the schema and tables if they are missing.
// Safe to call on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
