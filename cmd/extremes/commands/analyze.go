package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/extremes/internal/marketdata"
	"github.com/wonny/extremes/internal/pipeline"
	"github.com/wonny/extremes/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "기준/비교 기간 분석 실행",
	Long: `기준 기간의 종목별 최저가(또는 최고가)를 계산하고
비교 기간에 이를 돌파한 날짜를 출력합니다.

이 명령어는:
- 기준·비교 기간의 거래일 생성
- ledger에 없는 날짜만 거래소에서 다운로드 (나머지는 캐시)
- 원시 데이터 및 돌파 이벤트 파일 저장

Example:
  go run ./cmd/extremes analyze
  go run ./cmd/extremes analyze --mode high --policy fixed
  go run ./cmd/extremes analyze --exchange tpex --formats xlsx,csv --workers 4`,
	RunE: runAnalyze,
}

var analyzeShowEvents int

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&analyzeShowEvents, "show", 20, "number of events to print (0 = none)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)
	defer log.Close()

	runCfg, err := pipelineConfig(cfg)
	if err != nil {
		return err
	}

	// Ctrl+C stops dispatching new dates
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer d.Close()

	PrintJobHeader(JobMetadata{
		JobType:   fmt.Sprintf("%s %s extremes (%s)", strings.ToUpper(cfg.Exchange.Name), runCfg.Mode, runCfg.Policy),
		Tag:       "Analyze",
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		Period:    &Period{StartDate: runCfg.Base.Start.String(), EndDate: runCfg.Base.End.String()},
		Compare:   &Period{StartDate: runCfg.Compare.Start.String(), EndDate: runCfg.Compare.End.String()},
	})

	result, err := d.analyzer.Run(ctx, runCfg)
	if errors.Is(err, pipeline.ErrNoData) {
		PrintError("No data for the requested range, nothing written")
		return err
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	printResult(result, d.source)
	return nil
}

func printResult(r *pipeline.Result, source *marketdata.Guarded) {
	fmt.Println()
	fmt.Println("Summary:")
	PrintKeyValue("Dates", strconv.Itoa(r.Stats.Requested), 14)
	PrintKeyValue("With data", strconv.Itoa(r.WithData), 14)
	PrintKeyValue("From cache", strconv.Itoa(r.Stats.Cached), 14)
	PrintKeyValue("Downloaded", strconv.Itoa(r.Stats.Fetched), 14)
	PrintKeyValue("Empty", strconv.Itoa(r.Stats.Empty), 14)
	if r.Stats.Repaired > 0 {
		PrintKeyValue("Cache repaired", strconv.Itoa(r.Stats.Repaired), 14)
	}
	PrintKeyValue("Tracked codes", strconv.Itoa(r.Extremes), 14)
	PrintKeyValue("Breaches", strconv.Itoa(len(r.Events)), 14)
	PrintKeyValue("Breaker", source.State(), 14)

	if len(r.LowQuality) > 0 {
		PrintWarning(fmt.Sprintf("Low coverage snapshots (possible partial download): %v", r.LowQuality))
	}
	if r.Stats.Skipped > 0 {
		PrintWarning(fmt.Sprintf("Cancelled: %d dates not resolved, output is partial", r.Stats.Skipped))
	}

	if n := min(analyzeShowEvents, len(r.Events)); n > 0 {
		fmt.Println()
		widths := []int{10, 6, 12, 10, 12, 12}
		PrintTableHeader([]string{"date", "code", "name", "close", "base_" + r.Mode.String(), "new_" + r.Mode.String()}, widths)
		for _, e := range r.Events[:n] {
			PrintTableRow([]string{
				e.Date.ISO(),
				e.Code,
				e.Name,
				marketdata.FormatPrice(e.Close),
				marketdata.FormatPrice(e.BaseExtreme),
				marketdata.FormatPrice(e.NewExtreme),
			}, widths)
		}
		if n < len(r.Events) {
			fmt.Printf("   ... %d more\n", len(r.Events)-n)
		}
	}

	if r.Artifacts != nil {
		fmt.Println()
		fmt.Println("Saved:")
		PrintList(append(append([]string{}, r.Artifacts.Records...), r.Artifacts.Breaches...))
	}

	PrintJobCompletion(r.RunID.String(), r.Duration)
}
