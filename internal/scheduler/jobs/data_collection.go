package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/s0_data/collector"
	"github.com/wonny/extremes/pkg/logger"
)

// SnapshotCollectionJob keeps the ledger and cache current for recent dates
// ⭐ SSOT: 스냅샷 사전 수집 스케줄은 이 Job에서만
//
// Dates already ledgered are served from cache, so only new or previously
// failed dates reach the exchange.
type SnapshotCollectionJob struct {
	collector *collector.Collector
	dates     contracts.DateGenerator
	lookback  int
	workers   int
	now       func() time.Time
	logger    *logger.Logger
}

// NewSnapshotCollectionJob creates a new snapshot collection job
func NewSnapshotCollectionJob(col *collector.Collector, dates contracts.DateGenerator, lookbackDays, workers int, log *logger.Logger) *SnapshotCollectionJob {
	if lookbackDays < 1 {
		lookbackDays = 5
	}
	return &SnapshotCollectionJob{
		collector: col,
		dates:     dates,
		lookback:  lookbackDays,
		workers:   workers,
		now:       time.Now,
		logger:    log.WithField("job", "snapshot_collection"),
	}
}

// Name returns the job name
func (j *SnapshotCollectionJob) Name() string {
	return "snapshot_collection"
}

// Schedule returns the cron schedule (weekdays at 2:30 PM Taipei, after the close)
func (j *SnapshotCollectionJob) Schedule() string {
	return "0 30 14 * * MON-FRI"
}

// Run resolves every trading date in the lookback window
func (j *SnapshotCollectionJob) Run(ctx context.Context) error {
	to := contracts.NewTradingDate(j.now().In(taipei))
	from := to.AddDays(-j.lookback)

	dates, err := j.dates.Generate(ctx, from, to)
	if err != nil {
		return fmt.Errorf("generate dates: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"from":  from.String(),
		"to":    to.String(),
		"dates": len(dates),
	}).Info("Starting scheduled snapshot collection")

	_, stats := j.collector.ResolveRange(ctx, dates, collector.Config{Workers: j.workers})
	if stats.Cached+stats.Fetched == 0 && len(dates) > 0 {
		return fmt.Errorf("no snapshot resolved for %s..%s", from, to)
	}

	j.logger.WithFields(map[string]interface{}{
		"cached":  stats.Cached,
		"fetched": stats.Fetched,
		"empty":   stats.Empty,
	}).Info("Scheduled snapshot collection completed successfully")
	return nil
}
