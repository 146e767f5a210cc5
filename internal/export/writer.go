package export

import (
	"strings"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/marketdata"
)

// Writer persists export rows in one file format
// ⭐ SSOT: 출력 포맷 추상화 (xlsx, csv, json, parquet)
type Writer interface {
	Extension() string
	SaveRecords(path string, rows []RecordRow) error
	SaveBreaches(path string, mode contracts.Mode, rows []BreachRow) error
}

// NewWriter returns the writer for format, or nil if unsupported
func NewWriter(format string) Writer {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "xlsx", "excel":
		return XLSXWriter{}
	case "csv":
		return CSVWriter{}
	case "json":
		return JSONWriter{}
	case "parquet":
		return ParquetWriter{}
	default:
		return nil
	}
}

// SupportedFormats lists accepted format names
func SupportedFormats() []string {
	return []string{"xlsx", "csv", "json", "parquet"}
}

func recordCells(r RecordRow) []string {
	return []string{r.Date, r.Code, r.Name, marketdata.FormatPrice(r.Close)}
}

func breachCells(r BreachRow) []string {
	return []string{
		r.Code,
		r.Name,
		r.Date,
		marketdata.FormatPrice(r.Close),
		marketdata.FormatPrice(r.BaseExtreme),
		marketdata.FormatPrice(r.NewExtreme),
	}
}
