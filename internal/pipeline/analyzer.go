package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/export"
	"github.com/wonny/extremes/internal/extremes"
	"github.com/wonny/extremes/internal/s0_data/collector"
	"github.com/wonny/extremes/internal/s0_data/quality"
	"github.com/wonny/extremes/internal/tradingdate"
	"github.com/wonny/extremes/pkg/logger"
	"github.com/wonny/extremes/pkg/metrics"
)

// ErrNoData means no date in the range produced any record.
// The run aborts before any artifact is written.
var ErrNoData = errors.New("no snapshot data for the requested range")

// Config is one run's parameters
type Config struct {
	Mode    contracts.Mode
	Policy  extremes.Policy // empty = mode default
	Base    contracts.Period
	Compare contracts.Period
	Workers int
}

// Result summarizes a completed run
type Result struct {
	RunID      uuid.UUID               `json:"run_id"`
	Exchange   string                  `json:"exchange"`
	Mode       contracts.Mode          `json:"mode"`
	Policy     extremes.Policy         `json:"policy"`
	Base       contracts.Period        `json:"base"`
	Compare    contracts.Period        `json:"compare"`
	Stats      collector.Stats         `json:"stats"`
	WithData   int                     `json:"dates_with_data"`
	LowQuality []contracts.TradingDate `json:"low_quality_dates"`
	Extremes   int                     `json:"extremes"`
	Events     []contracts.BreachEvent `json:"events"`
	Artifacts  *export.Artifacts       `json:"artifacts,omitempty"`
	StartedAt  time.Time               `json:"started_at"`
	Duration   time.Duration           `json:"duration"`
}

// Analyzer runs the resolve, track, detect and export stages for one exchange
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Analyzer struct {
	exchange  string
	collector *collector.Collector
	dates     contracts.DateGenerator
	sink      *export.Sink
	store     contracts.BreachStore
	gate      *quality.Gate
	metrics   *metrics.Metrics
	logger    *logger.Logger

	mu   sync.RWMutex
	last *Result
}

// NewAnalyzer creates a new Analyzer. sink may be nil to skip file output.
func NewAnalyzer(
	exchange string,
	col *collector.Collector,
	dates contracts.DateGenerator,
	sink *export.Sink,
	m *metrics.Metrics,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		exchange:  exchange,
		collector: col,
		dates:     dates,
		sink:      sink,
		gate:      quality.NewGate(quality.DefaultConfig()),
		metrics:   m,
		logger:    log.WithFields(map[string]interface{}{"module": "pipeline", "exchange": exchange}),
	}
}

// WithBreachStore persists each run's events
func (a *Analyzer) WithBreachStore(store contracts.BreachStore) *Analyzer {
	a.store = store
	return a
}

// Exchange returns the exchange this analyzer serves
func (a *Analyzer) Exchange() string {
	return a.exchange
}

// Last returns the most recent successful result, or nil
func (a *Analyzer) Last() *Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Run executes one analysis
func (a *Analyzer) Run(ctx context.Context, cfg Config) (*Result, error) {
	started := time.Now()
	result, err := a.run(ctx, cfg, started)
	a.metrics.ObserveRun(a.exchange, cfg.Mode.String(), time.Since(started), err)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.last = result
	a.mu.Unlock()
	return result, nil
}

func (a *Analyzer) run(ctx context.Context, cfg Config, started time.Time) (*Result, error) {
	if cfg.Mode == "" {
		return nil, fmt.Errorf("mode is required")
	}
	policy := cfg.Policy
	if policy == "" {
		policy = extremes.DefaultPolicy(cfg.Mode)
	}

	result := &Result{
		RunID:     uuid.New(),
		Exchange:  a.exchange,
		Mode:      cfg.Mode,
		Policy:    policy,
		Base:      cfg.Base,
		Compare:   cfg.Compare,
		StartedAt: started,
	}
	log := a.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID.String(),
		"mode":   cfg.Mode.String(),
		"policy": string(policy),
	})

	ranges, err := tradingdate.Resolve(ctx, a.dates, cfg.Base, cfg.Compare)
	if err != nil {
		return nil, fmt.Errorf("resolve dates: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"all":     len(ranges.All),
		"base":    len(ranges.Base),
		"compare": len(ranges.Compare),
	}).Info("Date ranges resolved")

	// Stage 1: snapshots
	snapshots, stats := a.collector.ResolveRange(ctx, ranges.All, collector.Config{Workers: cfg.Workers})
	result.Stats = stats
	for _, snap := range snapshots {
		if len(snap) > 0 {
			result.WithData++
		}
	}
	if result.WithData == 0 {
		log.Warn("No data in any requested date")
		return nil, ErrNoData
	}

	// 부분 다운로드 의심 날짜는 경고만 (결과는 그대로 사용)
	report := a.gate.Check(snapshots)
	result.LowQuality = report.Failed
	if len(report.Failed) > 0 {
		log.WithFields(map[string]interface{}{
			"dates":       report.Failed,
			"median_rows": report.MedianRows,
		}).Warn("Low coverage snapshots")
	}

	// Stage 2: base-period extremes
	ext := extremes.ComputeExtremes(snapshots, ranges.Base, cfg.Mode)
	result.Extremes = len(ext)

	// Stage 3: compare-period breaches
	events := extremes.DetectBreachesWithPolicy(ext, snapshots, ranges.Compare, cfg.Mode, policy)
	extremes.SortEvents(events)
	result.Events = events
	a.metrics.ObserveBreaches(a.exchange, cfg.Mode.String(), len(events))

	// Stage 4: output
	if a.sink != nil {
		artifacts, err := a.sink.Export(snapshots, ranges.Compare, events, cfg.Mode)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		result.Artifacts = artifacts
	}

	if a.store != nil {
		run := contracts.RunInfo{ID: result.RunID, Exchange: a.exchange, Mode: cfg.Mode, StartedAt: started}
		if err := a.store.SaveBreaches(ctx, run, events); err != nil {
			// 파일 출력은 이미 완료, 저장 실패는 실행을 실패시키지 않음
			log.WithError(err).Error("Failed to persist breach events")
		}
	}

	result.Duration = time.Since(started)
	log.WithFields(map[string]interface{}{
		"dates_with_data": result.WithData,
		"extremes":        result.Extremes,
		"events":          len(events),
		"duration":        result.Duration.String(),
	}).Info("Analysis completed")

	return result, nil
}
