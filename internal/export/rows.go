package export

import (
	"sort"

	"github.com/wonny/extremes/internal/contracts"
)

// RecordRow is one raw-record export row
type RecordRow struct {
	Date  string  `json:"date" parquet:"date"`
	Code  string  `json:"code" parquet:"code"`
	Name  string  `json:"name" parquet:"name"`
	Close float64 `json:"close" parquet:"close"`
}

// BreachRow is one breach-event export row
type BreachRow struct {
	Code        string  `json:"code" parquet:"code"`
	Name        string  `json:"name" parquet:"name"`
	Date        string  `json:"date" parquet:"date"`
	Close       float64 `json:"close" parquet:"close"`
	BaseExtreme float64 `json:"base_extreme" parquet:"base_extreme"`
	NewExtreme  float64 `json:"new_extreme" parquet:"new_extreme"`
}

// RecordHeaders are the raw-record columns
var RecordHeaders = []string{"date", "code", "name", "close"}

// BreachHeaders names the extreme columns after the mode (base_low/new_low)
func BreachHeaders(mode contracts.Mode) []string {
	return []string{"code", "name", "date", "close", "base_" + mode.String(), "new_" + mode.String()}
}

// FlattenSnapshots lists every record in ascending date order, file order within a date.
// It also returns the dates that contributed rows.
func FlattenSnapshots(snapshots map[contracts.TradingDate]contracts.Snapshot) ([]RecordRow, []contracts.TradingDate) {
	dates := make([]contracts.TradingDate, 0, len(snapshots))
	total := 0
	for d, snap := range snapshots {
		if len(snap) == 0 {
			continue
		}
		dates = append(dates, d)
		total += len(snap)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	rows := make([]RecordRow, 0, total)
	for _, d := range dates {
		for _, rec := range snapshots[d] {
			rows = append(rows, RecordRow{
				Date:  d.String(),
				Code:  rec.Code,
				Name:  rec.Name,
				Close: rec.Close,
			})
		}
	}
	return rows, dates
}

// BreachRows converts events, which must already be date ordered
func BreachRows(events []contracts.BreachEvent) []BreachRow {
	rows := make([]BreachRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, BreachRow{
			Code:        e.Code,
			Name:        e.Name,
			Date:        e.Date.ISO(),
			Close:       e.Close,
			BaseExtreme: e.BaseExtreme,
			NewExtreme:  e.NewExtreme,
		})
	}
	return rows
}
