package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metricLoop:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metricLoop
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch("twse", "ok")
	m.ObserveFetch("twse", "ok")
	m.ObserveFetch("twse", "empty")

	assert.Equal(t, 2.0, counterValue(t, m, "extremes_fetch_total", map[string]string{"exchange": "twse", "result": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, m, "extremes_fetch_total", map[string]string{"exchange": "twse", "result": "empty"}))
}

func TestObserveBreaches_IgnoresZero(t *testing.T) {
	m := New()
	m.ObserveBreaches("tpex", "low", 0)
	m.ObserveBreaches("tpex", "low", 3)

	assert.Equal(t, 3.0, counterValue(t, m, "extremes_breach_events_total", map[string]string{"mode": "low"}))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// None of these may panic
	m.ObserveFetch("twse", "ok")
	m.ObserveCache("twse", "cache_hit")
	m.ObserveLedgerRecord("twse")
	m.ObserveBreaches("twse", "high", 2)
	m.ObserveRun("twse", "high", time.Second, nil)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveLedgerRecord("twse")
	m.ObserveRun("twse", "low", 2*time.Second, nil)
	m.ObserveRun("twse", "low", time.Second, errors.New("no data"))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `extremes_ledger_records_total{exchange="twse"} 1`)
	assert.Contains(t, string(body), `status="failed"`)
	assert.Contains(t, string(body), "extremes_last_run_timestamp_seconds")
}
