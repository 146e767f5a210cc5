package contracts

import (
	"fmt"
	"strings"
)

// Mode selects which extreme is tracked
type Mode string

const (
	ModeMin Mode = "low"  // 신저가
	ModeMax Mode = "high" // 신고가
)

// ParseMode accepts low/min and high/max (case-insensitive)
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "min":
		return ModeMin, nil
	case "high", "max":
		return ModeMax, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want low or high)", s)
	}
}

// Value picks the field the mode tracks
func (m Mode) Value(rec SecurityRecord) float64 {
	if m == ModeMax {
		return rec.High
	}
	return rec.Low
}

// MoreExtreme reports whether candidate strictly beats current.
// Ties are not more extreme.
func (m Mode) MoreExtreme(candidate, current float64) bool {
	if m == ModeMax {
		return candidate > current
	}
	return candidate < current
}

func (m Mode) String() string {
	return string(m)
}

// ExtremeRecord is a code's most extreme base-period value
type ExtremeRecord struct {
	Value float64     `json:"value"`
	Date  TradingDate `json:"date"`
	Name  string      `json:"name"`
}

// BreachEvent is one compare-period observation past the threshold
type BreachEvent struct {
	Date        TradingDate `json:"date"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Close       float64     `json:"close"`
	BaseExtreme float64     `json:"base_extreme"`
	NewExtreme  float64     `json:"new_extreme"`
}
