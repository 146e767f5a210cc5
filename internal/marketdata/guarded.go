package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
	"github.com/wonny/extremes/pkg/metrics"
)

// Fetch results reported to metrics
const (
	ResultOK          = "ok"
	ResultEmpty       = "empty"
	ResultError       = "error"
	ResultBreakerOpen = "breaker_open"
)

// BreakerSettings tunes the circuit breaker around a source
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultBreakerSettings trips after 5 straight failures and probes again after a minute
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		OpenTimeout:         time.Minute,
	}
}

// Guarded decorates a SnapshotSource with a circuit breaker and fetch metrics.
// An empty snapshot is a success: holidays legitimately publish nothing.
type Guarded struct {
	source  contracts.SnapshotSource
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewGuarded wraps source. A nil breaker setting disables the breaker.
func NewGuarded(source contracts.SnapshotSource, settings *BreakerSettings, m *metrics.Metrics, log *logger.Logger) *Guarded {
	g := &Guarded{
		source:  source,
		metrics: m,
		logger:  log.WithField("exchange", source.Name()),
	}

	if settings != nil {
		st := gobreaker.Settings{Name: source.Name()}
		st.Timeout = settings.OpenTimeout
		st.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		}
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			g.logger.WithFields(map[string]interface{}{
				"from": from.String(),
				"to":   to.String(),
			}).Warn("Exchange circuit breaker state changed")
		}
		g.breaker = gobreaker.NewCircuitBreaker(st)
	}

	return g
}

// Name implements contracts.SnapshotSource
func (g *Guarded) Name() string {
	return g.source.Name()
}

// Fetch implements contracts.SnapshotSource
func (g *Guarded) Fetch(ctx context.Context, date contracts.TradingDate) (contracts.Snapshot, error) {
	if g.breaker == nil {
		snap, err := g.source.Fetch(ctx, date)
		g.observe(snap, err)
		return snap, err
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.source.Fetch(ctx, date)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.metrics.ObserveFetch(g.Name(), ResultBreakerOpen)
			return nil, fmt.Errorf("%s fetch skipped for %s: %w", g.Name(), date, err)
		}
		g.observe(nil, err)
		return nil, err
	}

	snap, _ := out.(contracts.Snapshot)
	g.observe(snap, nil)
	return snap, nil
}

// State reports the breaker state, "disabled" without one
func (g *Guarded) State() string {
	if g.breaker == nil {
		return "disabled"
	}
	return g.breaker.State().String()
}

func (g *Guarded) observe(snap contracts.Snapshot, err error) {
	switch {
	case err != nil:
		g.metrics.ObserveFetch(g.Name(), ResultError)
	case len(snap) == 0:
		g.metrics.ObserveFetch(g.Name(), ResultEmpty)
	default:
		g.metrics.ObserveFetch(g.Name(), ResultOK)
	}
}
