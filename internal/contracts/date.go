package contracts

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the canonical 8-digit form of a TradingDate
const DateLayout = "20060102"

// ErrInvalidDate is returned for strings that are not a YYYYMMDD calendar date
var ErrInvalidDate = errors.New("invalid trading date")

// TradingDate is a calendar date in YYYYMMDD form
// ⭐ SSOT: 날짜 키는 항상 이 타입 (ledger, cache, 출력 파일명 공통)
//
// The zero value is not a valid date. Lexical order equals chronological order.
type TradingDate string

// ParseTradingDate validates s as YYYYMMDD
func ParseTradingDate(s string) (TradingDate, error) {
	if len(s) != len(DateLayout) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return TradingDate(s), nil
}

// MustTradingDate is ParseTradingDate for constants and tests
func MustTradingDate(s string) TradingDate {
	d, err := ParseTradingDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewTradingDate formats t's calendar date
func NewTradingDate(t time.Time) TradingDate {
	return TradingDate(t.Format(DateLayout))
}

// Time returns midnight UTC of the date
func (d TradingDate) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// IsWeekday reports Monday through Friday
func (d TradingDate) IsWeekday() bool {
	wd := d.Time().Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Before reports whether d is strictly earlier than other
func (d TradingDate) Before(other TradingDate) bool {
	return d < other
}

// AddDays returns the date n calendar days later (n may be negative)
func (d TradingDate) AddDays(n int) TradingDate {
	return NewTradingDate(d.Time().AddDate(0, 0, n))
}

// ISO returns YYYY-MM-DD
func (d TradingDate) ISO() string {
	return d.Time().Format("2006-01-02")
}

// ROC returns the Minguo calendar form used by TPEx (e.g. 114/05/26)
func (d TradingDate) ROC() string {
	t := d.Time()
	return fmt.Sprintf("%03d/%02d/%02d", t.Year()-1911, int(t.Month()), t.Day())
}

func (d TradingDate) String() string {
	return string(d)
}
