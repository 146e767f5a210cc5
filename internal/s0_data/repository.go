package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/extremes/internal/contracts"
)

// BreachRepository persists breach events per run in extremes.breach_events
type BreachRepository struct {
	db *pgxpool.Pool
}

// NewBreachRepository creates a new BreachRepository instance
func NewBreachRepository(db *pgxpool.Pool) *BreachRepository {
	return &BreachRepository{db: db}
}

// Pool returns the underlying database pool
func (r *BreachRepository) Pool() *pgxpool.Pool {
	return r.db
}

// SaveBreaches stores every event under the run ID
func (r *BreachRepository) SaveBreaches(ctx context.Context, run contracts.RunInfo, events []contracts.BreachEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO extremes.breach_events (
			run_id, exchange, mode, trade_date, code, name,
			close, base_extreme, new_extreme, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, trade_date, code) DO UPDATE SET
			name = EXCLUDED.name,
			close = EXCLUDED.close,
			base_extreme = EXCLUDED.base_extreme,
			new_extreme = EXCLUDED.new_extreme
	`

	// Batch insert (500 records per batch)
	batchSize := 500
	for i := 0; i < len(events); i += batchSize {
		end := i + batchSize
		if end > len(events) {
			end = len(events)
		}
		batch := events[i:end]

		tx, err := r.db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction (batch %d): %w", i/batchSize, err)
		}

		for _, e := range batch {
			_, err := tx.Exec(ctx, query,
				run.ID,
				run.Exchange,
				run.Mode.String(),
				e.Date.String(),
				e.Code,
				e.Name,
				e.Close,
				e.BaseExtreme,
				e.NewExtreme,
				run.StartedAt,
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return fmt.Errorf("insert breach %s/%s: %w", e.Date, e.Code, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction (batch %d): %w", i/batchSize, err)
		}
	}

	return nil
}

// LatestBreaches returns the events of the most recent run that stored any.
// Events come back in date order, codes ascending within a date.
func (r *BreachRepository) LatestBreaches(ctx context.Context, exchange string, mode contracts.Mode) ([]contracts.BreachEvent, error) {
	query := `
		SELECT trade_date, code, name, close, base_extreme, new_extreme
		FROM extremes.breach_events
		WHERE run_id = (
			SELECT run_id
			FROM extremes.breach_events
			WHERE exchange = $1 AND mode = $2
			ORDER BY created_at DESC
			LIMIT 1
		)
		ORDER BY trade_date, code
	`

	rows, err := r.db.Query(ctx, query, exchange, mode.String())
	if err != nil {
		return nil, fmt.Errorf("query latest breaches: %w", err)
	}
	defer rows.Close()

	events := []contracts.BreachEvent{}
	for rows.Next() {
		var (
			e    contracts.BreachEvent
			date string
		)
		if err := rows.Scan(&date, &e.Code, &e.Name, &e.Close, &e.BaseExtreme, &e.NewExtreme); err != nil {
			return nil, fmt.Errorf("scan breach: %w", err)
		}
		e.Date = contracts.TradingDate(date)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}
