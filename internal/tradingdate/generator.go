package tradingdate

import (
	"context"
	"fmt"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

// Generate returns every weekday in [start, end], ascending.
// start after end yields an empty slice.
func Generate(start, end contracts.TradingDate) []contracts.TradingDate {
	if end < start {
		return []contracts.TradingDate{}
	}

	dates := make([]contracts.TradingDate, 0, 32)
	for d := start; d <= end; d = d.AddDays(1) {
		if d.IsWeekday() {
			dates = append(dates, d)
		}
	}
	return dates
}

// WeekdayGenerator treats every weekday as a trading date.
// Holidays resolve to empty snapshots downstream.
type WeekdayGenerator struct{}

// Generate implements contracts.DateGenerator
func (WeekdayGenerator) Generate(_ context.Context, start, end contracts.TradingDate) ([]contracts.TradingDate, error) {
	return Generate(start, end), nil
}

// CalendarSource lists exchange closures that fall on weekdays
type CalendarSource interface {
	FetchHolidays(ctx context.Context) (map[contracts.TradingDate]string, error)
}

// CalendarGenerator drops weekdays the exchange calendar marks as closed
// ⭐ 휴장일 캘린더 조회 실패 시 평일 목록으로 대체 (다음 실행에서 빈 날짜는 재시도됨)
type CalendarGenerator struct {
	source CalendarSource
	logger *logger.Logger
}

// NewCalendarGenerator creates a calendar-backed generator
func NewCalendarGenerator(source CalendarSource, log *logger.Logger) *CalendarGenerator {
	return &CalendarGenerator{source: source, logger: log}
}

// Generate implements contracts.DateGenerator
func (g *CalendarGenerator) Generate(ctx context.Context, start, end contracts.TradingDate) ([]contracts.TradingDate, error) {
	weekdays := Generate(start, end)
	if len(weekdays) == 0 {
		return weekdays, nil
	}

	holidays, err := g.source.FetchHolidays(ctx)
	if err != nil {
		g.logger.WithError(err).Warn("Exchange calendar unavailable, falling back to weekdays")
		return weekdays, nil
	}

	dates := make([]contracts.TradingDate, 0, len(weekdays))
	skipped := 0
	for _, d := range weekdays {
		if _, closed := holidays[d]; closed {
			skipped++
			continue
		}
		dates = append(dates, d)
	}

	g.logger.WithFields(map[string]interface{}{
		"start":    start,
		"end":      end,
		"dates":    len(dates),
		"holidays": skipped,
	}).Debug("Trading dates generated from exchange calendar")

	return dates, nil
}

// Window returns the dates of all that fall inside p, keeping order
func Window(all []contracts.TradingDate, p contracts.Period) []contracts.TradingDate {
	out := make([]contracts.TradingDate, 0, len(all))
	for _, d := range all {
		if p.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// Span is the smallest period covering both base and compare
func Span(base, compare contracts.Period) contracts.Period {
	span := base
	if compare.Start < span.Start {
		span.Start = compare.Start
	}
	if compare.End > span.End {
		span.End = compare.End
	}
	return span
}

// Ranges is the resolved date sequence for one run
type Ranges struct {
	All     []contracts.TradingDate
	Base    []contracts.TradingDate
	Compare []contracts.TradingDate
}

// Resolve generates the all range once and cuts base and compare from it
func Resolve(ctx context.Context, gen contracts.DateGenerator, base, compare contracts.Period) (*Ranges, error) {
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("base period: %w", err)
	}
	if err := compare.Validate(); err != nil {
		return nil, fmt.Errorf("compare period: %w", err)
	}

	span := Span(base, compare)
	all, err := gen.Generate(ctx, span.Start, span.End)
	if err != nil {
		return nil, fmt.Errorf("generate dates: %w", err)
	}

	return &Ranges{
		All:     all,
		Base:    Window(all, base),
		Compare: Window(all, compare),
	}, nil
}
