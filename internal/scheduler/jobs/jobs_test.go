package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/pipeline"
	"github.com/wonny/extremes/internal/s0_data/collector"
	"github.com/wonny/extremes/internal/s0_data/ledger"
	"github.com/wonny/extremes/internal/s0_data/snapshotcache"
	"github.com/wonny/extremes/internal/tradingdate"
	"github.com/wonny/extremes/pkg/logger"
)

type recordingRunner struct {
	got []pipeline.Config
	err error
}

func (r *recordingRunner) Run(_ context.Context, cfg pipeline.Config) (*pipeline.Result, error) {
	r.got = append(r.got, cfg)
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.Result{RunID: uuid.New()}, nil
}

func baseConfig() pipeline.Config {
	return pipeline.Config{
		Mode:    contracts.ModeMin,
		Base:    contracts.Period{Start: "20250407", End: "20250525"},
		Compare: contracts.Period{Start: "20250526", End: "20250620"},
	}
}

func TestDailyAnalysisJob_Fixed(t *testing.T) {
	runner := &recordingRunner{}
	job := NewDailyAnalysisJob(runner, baseConfig(), "0 0 15 * * MON-FRI", false, logger.Nop())

	assert.Equal(t, "daily_analysis", job.Name())
	assert.Equal(t, "0 0 15 * * MON-FRI", job.Schedule())
	require.NoError(t, job.Run(context.Background()))
	require.Len(t, runner.got, 1)
	assert.Equal(t, baseConfig(), runner.got[0])
}

func TestDailyAnalysisJob_RollingUsesTaipeiDate(t *testing.T) {
	runner := &recordingRunner{}
	job := NewDailyAnalysisJob(runner, baseConfig(), "@daily", true, logger.Nop())
	// 2025-07-01 17:00 UTC is already 2025-07-02 in Taipei
	job.now = func() time.Time { return time.Date(2025, 7, 1, 17, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, contracts.TradingDate("20250702"), runner.got[0].Compare.End)
	assert.Equal(t, contracts.TradingDate("20250526"), runner.got[0].Compare.Start)

	// before the compare period starts the configured end is kept
	job.now = func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, taipei) }
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, contracts.TradingDate("20250620"), runner.got[1].Compare.End)
}

func TestDailyAnalysisJob_NoDataFails(t *testing.T) {
	runner := &recordingRunner{err: pipeline.ErrNoData}
	job := NewDailyAnalysisJob(runner, baseConfig(), "@daily", false, logger.Nop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrNoData)
}

type mapSource map[contracts.TradingDate]contracts.Snapshot

func (m mapSource) Name() string { return "tpex" }

func (m mapSource) Fetch(_ context.Context, date contracts.TradingDate) (contracts.Snapshot, error) {
	return m[date], nil
}

func TestSnapshotCollectionJob(t *testing.T) {
	src := mapSource{
		"20250630": {{Code: "6488", Name: "環球晶", Low: 300, High: 310, Close: 305}},
		"20250701": {{Code: "6488", Name: "環球晶", Low: 298, High: 309, Close: 301}},
	}
	dir := t.TempDir()
	l := ledger.NewFileLedger(filepath.Join(dir, "ledger.txt"), logger.Nop())
	c := snapshotcache.NewFileCache(filepath.Join(dir, "cache"), logger.Nop())
	col := collector.NewCollector(src, l, c, nil, logger.Nop())

	job := NewSnapshotCollectionJob(col, tradingdate.WeekdayGenerator{}, 3, 2, logger.Nop())
	job.now = func() time.Time { return time.Date(2025, 7, 1, 10, 0, 0, 0, taipei) }

	assert.Equal(t, "snapshot_collection", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []contracts.TradingDate{"20250630", "20250701"}, l.Dates())

	// nothing resolvable in the window
	job.now = func() time.Time { return time.Date(2025, 8, 1, 10, 0, 0, 0, taipei) }
	assert.Error(t, job.Run(context.Background()))
}

func TestCacheAuditJob(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l := ledger.NewFileLedger(filepath.Join(dir, "ledger.txt"), logger.Nop())
	c := snapshotcache.NewFileCache(filepath.Join(dir, "cache"), logger.Nop())

	require.NoError(t, c.Store(ctx, "20250526", contracts.Snapshot{{Code: "2330", Low: 1, High: 2, Close: 1.5}}))
	require.NoError(t, l.Record(ctx, "20250526"))
	require.NoError(t, l.Record(ctx, "20250527"))
	// decodable but empty entry is refetched by the collector too
	require.NoError(t, c.Store(ctx, "20250528", contracts.Snapshot{}))
	require.NoError(t, l.Record(ctx, "20250528"))

	job := NewCacheAuditJob(l, c, logger.Nop())
	assert.Equal(t, "cache_audit", job.Name())
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, []contracts.TradingDate{"20250527", "20250528"}, job.Orphans())
}
