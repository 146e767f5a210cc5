package snapshotcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

// PostgresCache stores snapshots as JSONB in extremes.snapshot_cache
type PostgresCache struct {
	pool     *pgxpool.Pool
	exchange string
	logger   *logger.Logger
}

// NewPostgresCache creates a PostgreSQL-backed snapshot cache
func NewPostgresCache(pool *pgxpool.Pool, exchange string, log *logger.Logger) *PostgresCache {
	return &PostgresCache{
		pool:     pool,
		exchange: exchange,
		logger:   log.WithFields(map[string]interface{}{"module": "snapshot_cache", "exchange": exchange}),
	}
}

// Store implements contracts.SnapshotCache
func (c *PostgresCache) Store(ctx context.Context, date contracts.TradingDate, snap contracts.Snapshot) error {
	payload, err := Encode(snap)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO extremes.snapshot_cache (exchange, trade_date, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (exchange, trade_date) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`
	if _, err := c.pool.Exec(ctx, query, c.exchange, date.String(), payload); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", date, err)
	}
	return nil
}

// Load implements contracts.SnapshotCache
func (c *PostgresCache) Load(ctx context.Context, date contracts.TradingDate) (contracts.Snapshot, bool) {
	query := `
		SELECT payload
		FROM extremes.snapshot_cache
		WHERE exchange = $1 AND trade_date = $2
	`

	var payload []byte
	err := c.pool.QueryRow(ctx, query, c.exchange, date.String()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("date", date.String()).Warn("Cache entry unreadable")
		return nil, false
	}

	snap, err := Decode(payload)
	if err != nil {
		c.logger.WithError(err).WithField("date", date.String()).Warn("Cache entry corrupt")
		return nil, false
	}
	return snap, true
}
