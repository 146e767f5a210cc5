package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

// PostgresLedger keeps ledgered dates in extremes.download_ledger
type PostgresLedger struct {
	dateSet
	pool     *pgxpool.Pool
	exchange string
	logger   *logger.Logger
}

// NewPostgresLedger loads the exchange's rows once
func NewPostgresLedger(ctx context.Context, pool *pgxpool.Pool, exchange string, log *logger.Logger) *PostgresLedger {
	l := &PostgresLedger{
		dateSet:  newDateSet(),
		pool:     pool,
		exchange: exchange,
		logger:   log.WithFields(map[string]interface{}{"module": "ledger", "exchange": exchange}),
	}

	if err := l.load(ctx); err != nil {
		l.logger.WithError(err).Warn("Ledger unreadable, treating as empty")
	}
	return l
}

func (l *PostgresLedger) load(ctx context.Context) error {
	query := `
		SELECT trade_date
		FROM extremes.download_ledger
		WHERE exchange = $1
	`

	rows, err := l.pool.Query(ctx, query, l.exchange)
	if err != nil {
		return fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return fmt.Errorf("scan ledger: %w", err)
		}
		if d, err := contracts.ParseTradingDate(s); err == nil {
			l.seed(d)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	l.logger.WithField("dates", l.Len()).Info("Ledger loaded")
	return nil
}

// Record implements contracts.Ledger
func (l *PostgresLedger) Record(ctx context.Context, date contracts.TradingDate) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.dates[date]; ok {
		return nil
	}

	query := `
		INSERT INTO extremes.download_ledger (exchange, trade_date)
		VALUES ($1, $2)
		ON CONFLICT (exchange, trade_date) DO NOTHING
	`
	if _, err := l.pool.Exec(ctx, query, l.exchange, date.String()); err != nil {
		return fmt.Errorf("insert ledger: %w", err)
	}

	l.dates[date] = struct{}{}
	return nil
}
