package export

import (
	"github.com/parquet-go/parquet-go"

	"github.com/wonny/extremes/internal/contracts"
)

// ParquetWriter writes typed columns; prices stay float64.
// Breach files carry generic base_extreme/new_extreme columns for both modes.
type ParquetWriter struct{}

func (ParquetWriter) Extension() string { return "parquet" }

func (ParquetWriter) SaveRecords(path string, rows []RecordRow) error {
	return parquet.WriteFile(path, rows)
}

func (ParquetWriter) SaveBreaches(path string, _ contracts.Mode, rows []BreachRow) error {
	return parquet.WriteFile(path, rows)
}
