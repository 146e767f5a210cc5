package jobs

import (
	"context"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

// CacheAuditJob finds ledgered dates whose cached snapshot is gone or empty.
// The collector refetches those dates on the next run.
type CacheAuditJob struct {
	ledger contracts.Ledger
	cache  contracts.SnapshotCache
	logger *logger.Logger

	lastOrphans []contracts.TradingDate
}

// NewCacheAuditJob creates a new cache audit job
func NewCacheAuditJob(l contracts.Ledger, c contracts.SnapshotCache, log *logger.Logger) *CacheAuditJob {
	return &CacheAuditJob{
		ledger: l,
		cache:  c,
		logger: log.WithField("job", "cache_audit"),
	}
}

// Name returns the job name
func (j *CacheAuditJob) Name() string {
	return "cache_audit"
}

// Schedule returns the cron schedule (daily at 6 AM)
func (j *CacheAuditJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run executes the cache audit
func (j *CacheAuditJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled cache audit")

	var orphans []contracts.TradingDate
	for _, d := range j.ledger.Dates() {
		if err := ctx.Err(); err != nil {
			return err
		}
		// 빈 스냅샷도 collector가 재수집하므로 누락으로 취급
		if snap, ok := j.cache.Load(ctx, d); !ok || len(snap) == 0 {
			orphans = append(orphans, d)
		}
	}
	j.lastOrphans = orphans

	if len(orphans) > 0 {
		j.logger.WithFields(map[string]interface{}{
			"orphans": len(orphans),
			"dates":   orphans,
		}).Warn("Ledgered dates missing from cache, will be refetched")
	}

	return nil
}

// Orphans returns the dates found by the last run
func (j *CacheAuditJob) Orphans() []contracts.TradingDate {
	return j.lastOrphans
}
