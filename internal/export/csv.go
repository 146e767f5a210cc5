package export

import (
	"encoding/csv"
	"os"

	"github.com/wonny/extremes/internal/contracts"
)

// CSVWriter writes UTF-8 CSV with a header row
type CSVWriter struct{}

func (CSVWriter) Extension() string { return "csv" }

func (CSVWriter) SaveRecords(path string, rows []RecordRow) error {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, recordCells(r))
	}
	return writeCSV(path, RecordHeaders, cells)
}

func (CSVWriter) SaveBreaches(path string, mode contracts.Mode, rows []BreachRow) error {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, breachCells(r))
	}
	return writeCSV(path, BreachHeaders(mode), cells)
}

func writeCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}
