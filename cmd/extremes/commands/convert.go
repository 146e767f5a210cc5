package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/extremes/internal/export"
)

// convertCmd turns an exported workbook into JSON
var convertCmd = &cobra.Command{
	Use:   "convert <in.xlsx> <out.json>",
	Short: "xlsx 결과 파일을 JSON으로 변환",
	Long: `첫 시트의 헤더 순서를 유지한 채 JSON 배열로 변환합니다.
엑셀 날짜 셀은 YYYY-MM-DD 문자열로 바뀝니다.

Example:
  go run ./cmd/extremes convert output/TWSE_low_breaches.xlsx breaches.json`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	n, err := export.ConvertXLSXToJSON(args[0], args[1])
	if err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Converted %d rows: %s -> %s", n, args[0], args[1]))
	return nil
}
