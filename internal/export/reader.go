package export

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// excelEpoch is day zero of the 1900 date system (with the 1900 leap bug folded in)
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ReadSheet reads the first sheet with the header row as keys.
// A numeric "date" column is converted from an Excel serial to YYYY-MM-DD.
func ReadSheet(path string) ([]OrderedRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []OrderedRow{}, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []OrderedRow{}, nil
	}

	header := rows[0]
	dateCol := -1
	for i, h := range header {
		if h == "date" {
			dateCol = i
		}
	}

	out := make([]OrderedRow, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if len(r) == 0 {
			continue
		}
		// Short rows only cover the leading columns
		n := len(r)
		if n > len(header) {
			n = len(header)
		}
		values := make([]string, n)
		copy(values, r[:n])
		if dateCol >= 0 && dateCol < n {
			values[dateCol] = SerialToISO(values[dateCol])
		}
		out = append(out, NewOrderedRow(header[:n], values))
	}
	return out, nil
}

// maxSerial is 9999-12-31, the last date Excel can represent
const maxSerial = 2958465

// SerialToISO converts an Excel date serial; other values pass through
func SerialToISO(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > maxSerial {
		return v
	}
	return excelEpoch.AddDate(0, 0, int(f)).Format("2006-01-02")
}

// ConvertXLSXToJSON writes the first sheet of in as an indented JSON array to out
func ConvertXLSXToJSON(in, out string) (int, error) {
	rows, err := ReadSheet(in)
	if err != nil {
		return 0, err
	}
	if err := writeJSON(out, rows); err != nil {
		os.Remove(out)
		return 0, fmt.Errorf("write json: %w", err)
	}
	return len(rows), nil
}
