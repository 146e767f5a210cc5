package collector

import (
	"context"
	"sync"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
	"github.com/wonny/extremes/pkg/metrics"
)

// Collector resolves daily snapshots through the ledger and cache
// ⭐ SSOT: 날짜별 스냅샷 수집 오케스트레이션은 이 패키지에서만
//
// A date already in the ledger is served from the cache. Anything else is
// fetched, and only non-empty results are cached and ledgered, so a failed
// date is retried on the next run.
type Collector struct {
	source  contracts.SnapshotSource
	ledger  contracts.Ledger
	cache   contracts.SnapshotCache
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent fetch workers
}

// Origin says where a resolved snapshot came from
type Origin string

const (
	OriginCache   Origin = "cache"
	OriginFetched Origin = "fetched"
	OriginEmpty   Origin = "empty"
)

// Stats summarizes a ResolveRange call
type Stats struct {
	Requested int `json:"requested"`
	Cached    int `json:"cached"`
	Fetched   int `json:"fetched"`
	Empty     int `json:"empty"`
	Repaired  int `json:"repaired"` // ledgered dates whose cache entry was missing
	Skipped   int `json:"skipped"`  // not dispatched after cancellation
}

// Resolved is one date's outcome
type Resolved struct {
	Date      contracts.TradingDate
	Snapshot  contracts.Snapshot
	Origin    Origin
	Repaired  bool
	Cancelled bool // fetch aborted by ctx; not an empty date
}

// NewCollector creates a new Collector instance
func NewCollector(
	source contracts.SnapshotSource,
	ledger contracts.Ledger,
	cache contracts.SnapshotCache,
	m *metrics.Metrics,
	log *logger.Logger,
) *Collector {
	return &Collector{
		source:  source,
		ledger:  ledger,
		cache:   cache,
		metrics: m,
		logger:  log.WithFields(map[string]interface{}{"module": "collector", "exchange": source.Name()}),
	}
}

// ResolveSnapshot returns the snapshot for date, fetching and persisting it if needed.
// The result may be empty; it is never nil.
func (c *Collector) ResolveSnapshot(ctx context.Context, date contracts.TradingDate) contracts.Snapshot {
	res := c.lookup(ctx, date)
	c.persist(ctx, res)
	return res.Snapshot
}

// lookup serves date from the cache or the source without writing anything
func (c *Collector) lookup(ctx context.Context, date contracts.TradingDate) Resolved {
	log := c.logger.WithField("date", date.String())
	repaired := false

	if c.ledger.IsLedgered(date) {
		if snap, ok := c.cache.Load(ctx, date); ok && len(snap) > 0 {
			log.WithField("count", len(snap)).Debug("Already downloaded, using cache")
			c.metrics.ObserveCache(c.source.Name(), "cache_hit")
			return Resolved{Date: date, Snapshot: snap, Origin: OriginCache}
		}
		// 캐시 손상/삭제: 빈 목록으로 취급하지 않고 다시 받음
		log.Warn("Cache entry missing for downloaded date, fetching again")
		c.metrics.ObserveCache(c.source.Name(), "cache_miss")
		repaired = true
	}

	snap, err := c.source.Fetch(ctx, date)
	if err != nil && ctx.Err() != nil {
		log.Debug("Fetch cancelled")
		return Resolved{Date: date, Snapshot: contracts.Snapshot{}, Origin: OriginEmpty, Repaired: repaired, Cancelled: true}
	}
	if err != nil {
		log.WithError(err).Warn("Fetch failed, date will be retried next run")
		return Resolved{Date: date, Snapshot: contracts.Snapshot{}, Origin: OriginEmpty, Repaired: repaired}
	}
	if len(snap) == 0 {
		log.Info("No records for date")
		return Resolved{Date: date, Snapshot: contracts.Snapshot{}, Origin: OriginEmpty, Repaired: repaired}
	}

	c.metrics.ObserveCache(c.source.Name(), "fetched")
	return Resolved{Date: date, Snapshot: snap, Origin: OriginFetched, Repaired: repaired}
}

// persist writes a freshly fetched snapshot. Callers serialize persist calls.
// The cache entry is written before the ledger line so the ledger never
// points at a snapshot that was not stored.
func (c *Collector) persist(ctx context.Context, res Resolved) {
	if res.Origin != OriginFetched {
		return
	}
	log := c.logger.WithField("date", res.Date.String())

	if err := c.cache.Store(ctx, res.Date, res.Snapshot); err != nil {
		log.WithError(err).Error("Failed to cache snapshot, date stays unledgered")
		return
	}
	if err := c.ledger.Record(ctx, res.Date); err != nil {
		log.WithError(err).Error("Failed to record date in ledger")
		return
	}
	c.metrics.ObserveLedgerRecord(c.source.Name())
}

// ResolveRange resolves every date and returns a snapshot per date (empty on failure).
// With more than one worker, fetches run concurrently while ledger and cache
// writes stay on the calling goroutine.
func (c *Collector) ResolveRange(ctx context.Context, dates []contracts.TradingDate, cfg Config) (map[contracts.TradingDate]contracts.Snapshot, Stats) {
	snapshots := make(map[contracts.TradingDate]contracts.Snapshot, len(dates))
	stats := Stats{Requested: len(dates)}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(dates) {
		workers = len(dates)
	}

	c.logger.WithFields(map[string]interface{}{
		"dates":   len(dates),
		"workers": workers,
	}).Info("Starting snapshot resolution")

	collect := func(res Resolved) {
		// 취소된 조회는 빈 날짜가 아니라 미해결(Skipped)로 집계
		if res.Cancelled {
			return
		}
		c.persist(ctx, res)
		snapshots[res.Date] = res.Snapshot
		stats.add(res)
	}

	if workers <= 1 {
		for _, date := range dates {
			if ctx.Err() != nil {
				break
			}
			collect(c.lookup(ctx, date))
		}
	} else {
		dateCh := make(chan contracts.TradingDate, len(dates))
		resultCh := make(chan Resolved, len(dates))

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for date := range dateCh {
					// 취소 후에는 남은 날짜를 건너뜀
					if ctx.Err() != nil {
						continue
					}
					resultCh <- c.lookup(ctx, date)
				}
			}()
		}

		for _, date := range dates {
			dateCh <- date
		}
		close(dateCh)

		go func() {
			wg.Wait()
			close(resultCh)
		}()

		// Single writer: only this loop touches the ledger and cache
		for res := range resultCh {
			collect(res)
		}
	}

	stats.Skipped = stats.Requested - len(snapshots)
	if stats.Skipped > 0 {
		c.logger.WithField("skipped", stats.Skipped).Warn("Resolution cancelled, returning partial results")
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": stats.Requested,
		"cached":    stats.Cached,
		"fetched":   stats.Fetched,
		"empty":     stats.Empty,
		"repaired":  stats.Repaired,
	}).Info("Snapshot resolution completed")

	return snapshots, stats
}

func (s *Stats) add(res Resolved) {
	switch res.Origin {
	case OriginCache:
		s.Cached++
	case OriginFetched:
		s.Fetched++
	default:
		s.Empty++
	}
	if res.Repaired {
		s.Repaired++
	}
}
