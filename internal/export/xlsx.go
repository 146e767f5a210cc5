package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/extremes/internal/contracts"
)

const sheetName = "Sheet1"

// XLSXWriter writes a single-sheet workbook. Prices are two-decimal text;
// breach dates are real Excel dates.
type XLSXWriter struct{}

func (XLSXWriter) Extension() string { return "xlsx" }

func (XLSXWriter) SaveRecords(path string, rows []RecordRow) error {
	return writeXLSX(path, RecordHeaders, len(rows), func(i int, _ int) []interface{} {
		return toInterfaces(recordCells(rows[i]))
	})
}

func (XLSXWriter) SaveBreaches(path string, mode contracts.Mode, rows []BreachRow) error {
	return writeXLSX(path, BreachHeaders(mode), len(rows), func(i int, dateStyle int) []interface{} {
		cells := toInterfaces(breachCells(rows[i]))
		if t, err := time.Parse("2006-01-02", rows[i].Date); err == nil {
			cells[2] = excelize.Cell{StyleID: dateStyle, Value: t}
		}
		return cells
	})
}

func writeXLSX(path string, headers []string, n int, row func(i int, dateStyle int) []interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("create date style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}

	if err := sw.SetRow("A1", toInterfaces(headers)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(i, dateStyle)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	return f.SaveAs(path)
}

func toInterfaces(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
