package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/profile"
	"github.com/wonny/extremes/pkg/config"
)

var (
	// Global flags
	profilePath  string
	exchange     string
	mode         string
	policy       string
	calendar     string
	storage      string
	baseStart    string
	baseEnd      string
	compareStart string
	compareEnd   string
	outputDir    string
	formats      []string
	workers      int
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "extremes",
	Short: "TWSE/TPEx 신저가·신고가 추적기",
	Long: `Extremes CLI

대만 상장(TWSE)·장외(TPEx) 종목의 기준 기간 최저/최고가를 계산하고
비교 기간에 이를 돌파한 종목을 찾습니다.
이미 받은 날짜는 ledger와 캐시에서 읽어 재실행 시 다시 받지 않습니다.

Usage:
  go run ./cmd/extremes [command]

Examples:
  go run ./cmd/extremes analyze
  go run ./cmd/extremes analyze --exchange tpex --mode high
  go run ./cmd/extremes analyze --profile profiles/may_low.yaml
  go run ./cmd/extremes ledger
  go run ./cmd/extremes convert breaches.xlsx breaches.json`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&profilePath, "profile", "", "run profile YAML (overrides env, flags override profile)")
	flags.StringVar(&exchange, "exchange", "", "exchange (twse|tpex)")
	flags.StringVar(&mode, "mode", "", "tracked extreme (low|high)")
	flags.StringVar(&policy, "policy", "", "threshold policy for the mode (fixed|ratchet)")
	flags.StringVar(&calendar, "calendar", "", "date generator (weekday|exchange)")
	flags.StringVar(&storage, "storage", "", "ledger and cache backend (file|redis|postgres)")
	flags.StringVar(&baseStart, "base-start", "", "base period start (YYYYMMDD)")
	flags.StringVar(&baseEnd, "base-end", "", "base period end (YYYYMMDD)")
	flags.StringVar(&compareStart, "compare-start", "", "compare period start (YYYYMMDD)")
	flags.StringVar(&compareEnd, "compare-end", "", "compare period end (YYYYMMDD)")
	flags.StringVar(&outputDir, "output", "", "output directory")
	flags.StringSliceVar(&formats, "formats", nil, "output formats (xlsx,csv,json,parquet)")
	flags.IntVar(&workers, "workers", 0, "concurrent fetch workers")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig layers env (.env), the run profile and command-line flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	path := profilePath
	if path == "" {
		path = cfg.Analysis.ProfilePath
	}
	if path != "" {
		p, _, err := profile.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", path, err)
		}
		for _, w := range profile.Warn(p) {
			PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
		}
		p.Apply(cfg)
	}

	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = strings.ToLower(v)
		}
	}
	set(&cfg.Exchange.Name, exchange)
	set(&cfg.Analysis.Mode, mode)
	set(&cfg.Analysis.Calendar, calendar)
	set(&cfg.Storage.Backend, storage)
	set(&cfg.Analysis.BaseStart, baseStart)
	set(&cfg.Analysis.BaseEnd, baseEnd)
	set(&cfg.Analysis.CompareStart, compareStart)
	set(&cfg.Analysis.CompareEnd, compareEnd)

	if policy != "" {
		if m, err := contracts.ParseMode(cfg.Analysis.Mode); err == nil && m == contracts.ModeMax {
			cfg.Analysis.HighPolicy = strings.ToLower(policy)
		} else {
			cfg.Analysis.LowPolicy = strings.ToLower(policy)
		}
	}
	if outputDir != "" {
		cfg.Analysis.OutputDir = outputDir
	}
	if len(formats) > 0 {
		cfg.Analysis.OutputFormats = formats
	}
	if workers > 0 {
		cfg.Analysis.Workers = workers
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
}
