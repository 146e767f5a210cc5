package extremes

import (
	"github.com/wonny/extremes/internal/contracts"
)

// ComputeExtremes scans baseDates in order and keeps, per code, the most
// extreme value for mode. Only a strictly more extreme value replaces the
// current one, so ties keep the earliest date.
// ⭐ SSOT: 기준 기간 최저/최고가 계산은 여기서만
func ComputeExtremes(
	snapshots map[contracts.TradingDate]contracts.Snapshot,
	baseDates []contracts.TradingDate,
	mode contracts.Mode,
) map[string]contracts.ExtremeRecord {
	out := make(map[string]contracts.ExtremeRecord)

	for _, date := range baseDates {
		for _, rec := range snapshots[date] {
			value := mode.Value(rec)
			current, seen := out[rec.Code]
			if seen && !mode.MoreExtreme(value, current.Value) {
				continue
			}
			out[rec.Code] = contracts.ExtremeRecord{
				Value: value,
				Date:  date,
				Name:  rec.Name,
			}
		}
	}

	return out
}
