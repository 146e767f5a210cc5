package marketdata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/extremes/internal/contracts"
)

// ErrNegativePrice is returned for prices below zero
var ErrNegativePrice = errors.New("negative price")

// ParsePrice parses an exchange price cell.
// Thousands separators and surrounding spaces are removed. Placeholders
// such as "--" or "X" fail to parse and the row is dropped by the caller.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegativePrice, s)
	}

	f, _ := d.Float64()
	return f, nil
}

// NormalizeCode strips the ="..." and quote wrappers the TWSE CSV uses
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "=")
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// ValidCode reports exactly four ASCII digits
func ValidCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// RawRow is an unparsed exchange row
type RawRow struct {
	Code  string
	Name  string
	Low   string
	High  string
	Close string
}

// BuildRecord validates a raw row. ok is false when any field fails.
// ⭐ SSOT: 행 유효성 검증은 여기서만 (두 거래소 공통)
func BuildRecord(raw RawRow) (contracts.SecurityRecord, bool) {
	code := NormalizeCode(raw.Code)
	if !ValidCode(code) {
		return contracts.SecurityRecord{}, false
	}

	low, err := ParsePrice(raw.Low)
	if err != nil {
		return contracts.SecurityRecord{}, false
	}
	high, err := ParsePrice(raw.High)
	if err != nil {
		return contracts.SecurityRecord{}, false
	}
	closePrice, err := ParsePrice(raw.Close)
	if err != nil {
		return contracts.SecurityRecord{}, false
	}

	return contracts.SecurityRecord{
		Code:  code,
		Name:  strings.TrimSpace(raw.Name),
		Low:   low,
		High:  high,
		Close: closePrice,
	}, true
}

// FormatPrice renders a price with two decimals
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
