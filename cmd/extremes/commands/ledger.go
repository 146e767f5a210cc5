package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/extremes/internal/s0_data/ledger"
	"github.com/wonny/extremes/internal/tradingdate"
	"github.com/wonny/extremes/pkg/logger"
)

// ledgerCmd reports which dates of the run are already downloaded
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "다운로드 완료 날짜 조회",
	Long: `ledger에 기록된 날짜와 아직 받지 않은 날짜를 비교합니다.
analyze 실행 전 몇 개의 날짜를 새로 받을지 확인할 때 사용합니다.

Example:
  go run ./cmd/extremes ledger
  go run ./cmd/extremes ledger --exchange tpex --storage redis`,
	RunE: runLedger,
}

var ledgerShowMissing bool

func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.Flags().BoolVar(&ledgerShowMissing, "missing", true, "list dates not yet ledgered")
}

func runLedger(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()
	d, err := buildDeps(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer d.Close()

	ranges, err := tradingdate.Resolve(ctx, d.dates, runCfg.Base, runCfg.Compare)
	if err != nil {
		return err
	}
	missing := ledger.Missing(d.ledger, ranges.All)

	fmt.Printf("%s ledger (%s)\n", cfg.Exchange.Name, cfg.Storage.Backend)
	PrintSeparator()
	PrintKeyValue("Ledgered total", strconv.Itoa(len(d.ledger.Dates())), 16)
	PrintKeyValue("Run dates", strconv.Itoa(len(ranges.All)), 16)
	PrintKeyValue("Already ledgered", strconv.Itoa(len(ranges.All)-len(missing)), 16)
	PrintKeyValue("To fetch", strconv.Itoa(len(missing)), 16)

	if ledgerShowMissing && len(missing) > 0 {
		fmt.Println()
		PrintDates(missing, 8)
	}
	return nil
}
