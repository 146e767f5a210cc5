package commands

import (
	"context"
	"fmt"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/export"
	"github.com/wonny/extremes/internal/external/tpex"
	"github.com/wonny/extremes/internal/external/twse"
	"github.com/wonny/extremes/internal/extremes"
	"github.com/wonny/extremes/internal/marketdata"
	"github.com/wonny/extremes/internal/pipeline"
	"github.com/wonny/extremes/internal/s0_data"
	"github.com/wonny/extremes/internal/s0_data/collector"
	"github.com/wonny/extremes/internal/s0_data/ledger"
	"github.com/wonny/extremes/internal/s0_data/snapshotcache"
	"github.com/wonny/extremes/internal/tradingdate"
	"github.com/wonny/extremes/pkg/config"
	"github.com/wonny/extremes/pkg/database"
	"github.com/wonny/extremes/pkg/httputil"
	"github.com/wonny/extremes/pkg/logger"
	"github.com/wonny/extremes/pkg/metrics"
	"github.com/wonny/extremes/pkg/redis"
)

// keyPrefix namespaces every Redis key the tool writes
const keyPrefix = "extremes"

// deps holds the wired components for one exchange
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	metrics  *metrics.Metrics
	source   *marketdata.Guarded
	ledger   contracts.Ledger
	cache    contracts.SnapshotCache
	dates    contracts.DateGenerator
	col      *collector.Collector
	analyzer *pipeline.Analyzer
	store    contracts.BreachStore
}

// buildDeps wires storage, the exchange source and the analyzer from cfg.
// With withSink unset the analyzer writes no files.
func buildDeps(ctx context.Context, cfg *config.Config, log *logger.Logger, withSink bool) (*deps, error) {
	d := &deps{cfg: cfg, log: log, metrics: metrics.New()}
	ex := cfg.Exchange.Name

	// 1. Optional backends
	if cfg.Redis.Enabled {
		rc, err := redis.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		d.redis = rc
	}
	if cfg.Database.URL != "" || cfg.Storage.Backend == "postgres" {
		db, err := database.New(cfg)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		if err := db.Migrate(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		d.store = s0_data.NewBreachRepository(db.Pool)
		log.Info("Connected to database")
	}

	// 2. Ledger and snapshot cache
	switch cfg.Storage.Backend {
	case "file":
		d.ledger = ledger.NewFileLedger(cfg.LedgerPath(ex), log)
		d.cache = snapshotcache.NewFileCache(cfg.CacheDir(ex), log)
	case "redis":
		if d.redis == nil {
			d.Close()
			return nil, fmt.Errorf("STORAGE=redis requires REDIS_ENABLED=true")
		}
		d.ledger = ledger.NewRedisLedger(ctx, d.redis, keyPrefix, ex, log)
		d.cache = snapshotcache.NewRedisCache(redis.NewCache(d.redis, keyPrefix), ex, log)
	case "postgres":
		d.ledger = ledger.NewPostgresLedger(ctx, d.db.Pool, ex, log)
		d.cache = snapshotcache.NewPostgresCache(d.db.Pool, ex, log)
	default:
		d.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	// 3. Exchange source behind the circuit breaker
	src, err := newSource(cfg, log, d.redis)
	if err != nil {
		d.Close()
		return nil, err
	}
	var breaker *marketdata.BreakerSettings
	if cfg.Exchange.BreakerEnabled {
		settings := marketdata.DefaultBreakerSettings()
		breaker = &settings
	}
	d.source = marketdata.NewGuarded(src, breaker, d.metrics, log)

	// 4. Date generator
	d.dates = newDateGenerator(cfg, log)

	// 5. Collector and analyzer
	d.col = collector.NewCollector(d.source, d.ledger, d.cache, d.metrics, log)

	var sink *export.Sink
	if withSink {
		sink, err = export.NewSink(cfg.Analysis.OutputDir, ex, cfg.Analysis.OutputFormats, log)
		if err != nil {
			d.Close()
			return nil, err
		}
	}
	d.analyzer = pipeline.NewAnalyzer(ex, d.col, d.dates, sink, d.metrics, log)
	if d.store != nil {
		d.analyzer.WithBreachStore(d.store)
	}

	return d, nil
}

// Close releases database and Redis connections
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		d.redis.Close()
	}
}

// newSource builds the exchange client. Exchange fetches are never retried
// in-process: a failed date stays unledgered and is retried next run.
func newSource(cfg *config.Config, log *logger.Logger, rc *redis.Client) (contracts.SnapshotSource, error) {
	httpClient := httputil.New(cfg, log).
		DisableRetry().
		WithLocalRateLimit(cfg.Exchange.RateLimit)
	if rc != nil && rc.Enabled() {
		httpClient.WithRateLimiter(redis.NewRateLimiter(rc, keyPrefix), redis.RateLimitFor(cfg.Exchange.Name))
	}

	switch cfg.Exchange.Name {
	case "twse":
		return twse.NewClient(httpClient, log,
			twse.WithBaseURL(cfg.Exchange.TWSEBaseURL),
			twse.WithFormat(cfg.Exchange.TWSEFormat),
		), nil
	case "tpex":
		return tpex.NewClient(httpClient, log, cfg.Exchange.TPExBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown exchange %q (use twse or tpex)", cfg.Exchange.Name)
	}
}

// newDateGenerator returns the weekday generator or the TPEx closure calendar
func newDateGenerator(cfg *config.Config, log *logger.Logger) contracts.DateGenerator {
	if cfg.Analysis.Calendar != "exchange" {
		return tradingdate.WeekdayGenerator{}
	}
	// 휴장일 조회는 재시도 허용 (단일 요청)
	calendar := tpex.NewClient(httputil.New(cfg, log), log, cfg.Exchange.TPExBaseURL)
	return tradingdate.NewCalendarGenerator(calendar, log)
}

// pipelineConfig converts the analysis section into a run config
func pipelineConfig(cfg *config.Config) (pipeline.Config, error) {
	m, err := contracts.ParseMode(cfg.Analysis.Mode)
	if err != nil {
		return pipeline.Config{}, err
	}

	raw := cfg.Analysis.LowPolicy
	if m == contracts.ModeMax {
		raw = cfg.Analysis.HighPolicy
	}
	p, err := extremes.ParsePolicy(raw, m)
	if err != nil {
		return pipeline.Config{}, err
	}

	base, err := period(cfg.Analysis.BaseStart, cfg.Analysis.BaseEnd)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("base period: %w", err)
	}
	compare, err := period(cfg.Analysis.CompareStart, cfg.Analysis.CompareEnd)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("compare period: %w", err)
	}

	return pipeline.Config{
		Mode:    m,
		Policy:  p,
		Base:    base,
		Compare: compare,
		Workers: cfg.Analysis.Workers,
	}, nil
}

func period(start, end string) (contracts.Period, error) {
	p := contracts.Period{Start: contracts.TradingDate(start), End: contracts.TradingDate(end)}
	return p, p.Validate()
}
