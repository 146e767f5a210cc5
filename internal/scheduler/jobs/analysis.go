package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/pipeline"
	"github.com/wonny/extremes/pkg/logger"
)

// taipei is the exchanges' local time (UTC+8, no DST)
var taipei = time.FixedZone("CST", 8*60*60)

// Runner is the part of pipeline.Analyzer the job needs
type Runner interface {
	Run(ctx context.Context, cfg pipeline.Config) (*pipeline.Result, error)
}

// DailyAnalysisJob runs the extremum analysis after the close
// ⭐ SSOT: 정기 분석 스케줄은 이 Job에서만
type DailyAnalysisJob struct {
	runner   Runner
	config   pipeline.Config
	schedule string
	rolling  bool
	now      func() time.Time
	logger   *logger.Logger
}

// NewDailyAnalysisJob creates the daily_analysis job.
// With rolling set, the compare period is extended to today on every run.
func NewDailyAnalysisJob(runner Runner, cfg pipeline.Config, schedule string, rolling bool, log *logger.Logger) *DailyAnalysisJob {
	return &DailyAnalysisJob{
		runner:   runner,
		config:   cfg,
		schedule: schedule,
		rolling:  rolling,
		now:      time.Now,
		logger:   log.WithField("job", "daily_analysis"),
	}
}

// Name returns the job name
func (j *DailyAnalysisJob) Name() string {
	return "daily_analysis"
}

// Schedule returns the cron schedule (default: weekdays at 3 PM Taipei)
func (j *DailyAnalysisJob) Schedule() string {
	return j.schedule
}

// Run executes one analysis. pipeline.ErrNoData counts as a failed attempt.
func (j *DailyAnalysisJob) Run(ctx context.Context) error {
	cfg := j.runConfig()

	j.logger.WithFields(map[string]interface{}{
		"mode":          cfg.Mode.String(),
		"compare_start": cfg.Compare.Start.String(),
		"compare_end":   cfg.Compare.End.String(),
	}).Info("Starting scheduled analysis")

	result, err := j.runner.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID.String(),
		"events": len(result.Events),
	}).Info("Scheduled analysis completed successfully")
	return nil
}

func (j *DailyAnalysisJob) runConfig() pipeline.Config {
	cfg := j.config
	if !j.rolling {
		return cfg
	}

	today := contracts.NewTradingDate(j.now().In(taipei))
	if today > cfg.Compare.Start {
		cfg.Compare.End = today
	}
	return cfg
}
