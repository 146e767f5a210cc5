package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the pipeline
// ⭐ SSOT: 메트릭 정의는 여기서만
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	CacheTotal    *prometheus.CounterVec
	LedgerRecords *prometheus.CounterVec
	BreachEvents  *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	LastRunTime   *prometheus.GaugeVec
}

// New creates a registry with all pipeline metrics registered
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extremes_fetch_total",
				Help: "Exchange fetches by result (ok, empty, error, breaker_open)",
			},
			[]string{"exchange", "result"},
		),

		CacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extremes_snapshot_cache_total",
				Help: "Snapshot resolutions by source (cache_hit, cache_miss, fetched)",
			},
			[]string{"exchange", "result"},
		),

		LedgerRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extremes_ledger_records_total",
				Help: "Dates newly appended to the download ledger",
			},
			[]string{"exchange"},
		),

		BreachEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extremes_breach_events_total",
				Help: "Breach events detected by mode",
			},
			[]string{"exchange", "mode"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "extremes_run_duration_seconds",
				Help:    "Duration of a full analysis run",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"exchange", "mode", "status"},
		),

		LastRunTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "extremes_last_run_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
			[]string{"exchange", "mode"},
		),
	}

	m.registry.MustRegister(
		m.FetchTotal,
		m.CacheTotal,
		m.LedgerRecords,
		m.BreachEvents,
		m.RunDuration,
		m.LastRunTime,
		collectors.NewGoCollector(),
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one exchange fetch
func (m *Metrics) ObserveFetch(exchange, result string) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(exchange, result).Inc()
}

// ObserveCache records how a snapshot was resolved
func (m *Metrics) ObserveCache(exchange, result string) {
	if m == nil {
		return
	}
	m.CacheTotal.WithLabelValues(exchange, result).Inc()
}

// ObserveLedgerRecord counts a date appended to the ledger
func (m *Metrics) ObserveLedgerRecord(exchange string) {
	if m == nil {
		return
	}
	m.LedgerRecords.WithLabelValues(exchange).Inc()
}

// ObserveBreaches adds n events for a run
func (m *Metrics) ObserveBreaches(exchange, mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BreachEvents.WithLabelValues(exchange, mode).Add(float64(n))
}

// ObserveRun records run duration and, on success, its completion time
func (m *Metrics) ObserveRun(exchange, mode string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.RunDuration.WithLabelValues(exchange, mode, status).Observe(d.Seconds())
	if err == nil {
		m.LastRunTime.WithLabelValues(exchange, mode).SetToCurrentTime()
	}
}
