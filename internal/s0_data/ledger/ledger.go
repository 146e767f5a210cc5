package ledger

import (
	"sort"
	"sync"

	"github.com/wonny/extremes/internal/contracts"
)

// dateSet is the in-memory view every backend shares.
// It is seeded once at construction and is authoritative for the run.
type dateSet struct {
	mu    sync.RWMutex
	dates map[contracts.TradingDate]struct{}
}

func newDateSet() dateSet {
	return dateSet{dates: make(map[contracts.TradingDate]struct{})}
}

// IsLedgered implements contracts.Ledger
func (s *dateSet) IsLedgered(date contracts.TradingDate) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dates[date]
	return ok
}

// Dates implements contracts.Ledger, ascending
func (s *dateSet) Dates() []contracts.TradingDate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contracts.TradingDate, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of ledgered dates
func (s *dateSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dates)
}

// seed adds without persisting; used while loading
func (s *dateSet) seed(date contracts.TradingDate) {
	s.dates[date] = struct{}{}
}

// Missing returns the dates of want that are not ledgered, keeping order
func Missing(l contracts.Ledger, want []contracts.TradingDate) []contracts.TradingDate {
	out := make([]contracts.TradingDate, 0, len(want))
	for _, d := range want {
		if !l.IsLedgered(d) {
			out = append(out, d)
		}
	}
	return out
}
