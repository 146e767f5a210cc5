package extremes

import (
	"sort"

	"github.com/wonny/extremes/internal/contracts"
)

// DetectBreaches walks compareDates with the mode's default policy
func DetectBreaches(
	extremes map[string]contracts.ExtremeRecord,
	snapshots map[contracts.TradingDate]contracts.Snapshot,
	compareDates []contracts.TradingDate,
	mode contracts.Mode,
) []contracts.BreachEvent {
	return DetectBreachesWithPolicy(extremes, snapshots, compareDates, mode, DefaultPolicy(mode))
}

// DetectBreachesWithPolicy emits one event per compare date where a tracked
// code is strictly past its threshold. BaseExtreme always reports the
// base-period value; under PolicyRatchet the threshold follows each breach.
// Codes missing on a date are skipped for that date.
// ⭐ SSOT: 비교 기간 신고가/신저가 판정은 여기서만
func DetectBreachesWithPolicy(
	extremes map[string]contracts.ExtremeRecord,
	snapshots map[contracts.TradingDate]contracts.Snapshot,
	compareDates []contracts.TradingDate,
	mode contracts.Mode,
	policy Policy,
) []contracts.BreachEvent {
	thresholds := make(map[string]float64, len(extremes))
	for code, ext := range extremes {
		thresholds[code] = ext.Value
	}

	// Codes in a stable order so events on one date are deterministic
	codes := make([]string, 0, len(extremes))
	for code := range extremes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	events := make([]contracts.BreachEvent, 0)
	for _, date := range compareDates {
		today := snapshots[date].Index()
		for _, code := range codes {
			rec, ok := today[code]
			if !ok {
				continue
			}

			value := mode.Value(rec)
			if !mode.MoreExtreme(value, thresholds[code]) {
				continue
			}

			base := extremes[code]
			events = append(events, contracts.BreachEvent{
				Date:        date,
				Code:        code,
				Name:        base.Name,
				Close:       rec.Close,
				BaseExtreme: base.Value,
				NewExtreme:  value,
			})

			if policy == PolicyRatchet {
				thresholds[code] = value
			}
		}
	}

	SortEvents(events)
	return events
}

// SortEvents orders events by date, keeping insertion order within a date
func SortEvents(events []contracts.BreachEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
}
