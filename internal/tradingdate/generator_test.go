package tradingdate

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

func d(s string) contracts.TradingDate {
	return contracts.MustTradingDate(s)
}

func TestGenerate_InclusiveWeekdays(t *testing.T) {
	// 2025-05-23 Fri .. 2025-05-27 Tue
	got := Generate(d("20250523"), d("20250527"))
	assert.Equal(t, []contracts.TradingDate{"20250523", "20250526", "20250527"}, got)
}

func TestGenerate_StartAfterEnd(t *testing.T) {
	got := Generate(d("20250527"), d("20250526"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerate_WeekendOnly(t *testing.T) {
	assert.Empty(t, Generate(d("20250524"), d("20250525")))
}

func TestGenerate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	origin := d("20200101")

	for i := 0; i < 200; i++ {
		start := origin.AddDays(rng.Intn(2000))
		end := start.AddDays(rng.Intn(120) - 10)

		dates := Generate(start, end)
		for j, dt := range dates {
			require.True(t, dt.IsWeekday(), "weekend date %s", dt)
			require.False(t, dt.Before(start))
			require.False(t, end.Before(dt))
			if j > 0 {
				require.True(t, dates[j-1].Before(dt), "not strictly increasing at %d", j)
			}
		}
	}
}

func TestGenerate_CrossesMonthAndYear(t *testing.T) {
	got := Generate(d("20241230"), d("20250102"))
	assert.Equal(t, []contracts.TradingDate{"20241230", "20241231", "20250101", "20250102"}, got)
}

type fakeCalendar struct {
	holidays map[contracts.TradingDate]string
	err      error
}

func (f fakeCalendar) FetchHolidays(context.Context) (map[contracts.TradingDate]string, error) {
	return f.holidays, f.err
}

func TestCalendarGenerator_ExcludesHolidays(t *testing.T) {
	gen := NewCalendarGenerator(fakeCalendar{
		holidays: map[contracts.TradingDate]string{
			"20250530": "端午節",
			"20250531": "weekend entry is harmless",
		},
	}, logger.Nop())

	got, err := gen.Generate(context.Background(), d("20250529"), d("20250602"))
	require.NoError(t, err)
	assert.Equal(t, []contracts.TradingDate{"20250529", "20250602"}, got)
}

func TestCalendarGenerator_FallsBackToWeekdays(t *testing.T) {
	gen := NewCalendarGenerator(fakeCalendar{err: errors.New("tpex down")}, logger.Nop())

	got, err := gen.Generate(context.Background(), d("20250529"), d("20250602"))
	require.NoError(t, err)
	assert.Equal(t, []contracts.TradingDate{"20250529", "20250530", "20250602"}, got)
}

func TestResolve(t *testing.T) {
	base := contracts.Period{Start: "20250407", End: "20250408"}
	compare := contracts.Period{Start: "20250526", End: "20250527"}

	r, err := Resolve(context.Background(), WeekdayGenerator{}, base, compare)
	require.NoError(t, err)

	assert.Equal(t, []contracts.TradingDate{"20250407", "20250408"}, r.Base)
	assert.Equal(t, []contracts.TradingDate{"20250526", "20250527"}, r.Compare)
	assert.Equal(t, d("20250407"), r.All[0])
	assert.Equal(t, d("20250527"), r.All[len(r.All)-1])
}

func TestResolve_InvalidPeriod(t *testing.T) {
	_, err := Resolve(context.Background(), WeekdayGenerator{},
		contracts.Period{Start: "20250408", End: "20250407"},
		contracts.Period{Start: "20250526", End: "20250527"})
	assert.Error(t, err)
}

func TestSpan(t *testing.T) {
	span := Span(
		contracts.Period{Start: "20250407", End: "20250525"},
		contracts.Period{Start: "20250301", End: "20250620"},
	)
	assert.Equal(t, contracts.Period{Start: "20250301", End: "20250620"}, span)
}
