package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/extremes/internal/tradingdate"
	"github.com/wonny/extremes/pkg/logger"
)

// datesCmd prints the candidate trading dates of the configured run
var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "기준/비교 기간 거래일 출력",
	Long: `설정된 기준·비교 기간의 후보 거래일을 출력합니다.
네트워크 요청 없이 달력 설정(weekday|exchange)을 확인할 때 사용합니다.

Example:
  go run ./cmd/extremes dates
  go run ./cmd/extremes dates --calendar exchange`,
	RunE: runDates,
}

func init() {
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
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

	ranges, err := tradingdate.Resolve(context.Background(), newDateGenerator(cfg, log), runCfg.Base, runCfg.Compare)
	if err != nil {
		return err
	}

	fmt.Printf("Base %s ~ %s (%d dates)\n", runCfg.Base.Start, runCfg.Base.End, len(ranges.Base))
	PrintDates(ranges.Base, 8)
	fmt.Println()
	fmt.Printf("Compare %s ~ %s (%d dates)\n", runCfg.Compare.Start, runCfg.Compare.End, len(ranges.Compare))
	PrintDates(ranges.Compare, 8)
	fmt.Println()
	PrintKeyValue("Calendar", cfg.Analysis.Calendar, 10)
	PrintKeyValue("All", strconv.Itoa(len(ranges.All)), 10)
	return nil
}
