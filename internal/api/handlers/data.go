package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

// DataHandler serves download ledger status
// ⭐ SSOT: 데이터 API 핸들러는 이 구조체에서만
type DataHandler struct {
	exchange string
	ledger   contracts.Ledger
	logger   *logger.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(exchange string, ledger contracts.Ledger, log *logger.Logger) *DataHandler {
	return &DataHandler{
		exchange: exchange,
		ledger:   ledger,
		logger:   log,
	}
}

// LedgerResponse lists ledgered dates
type LedgerResponse struct {
	Exchange string                  `json:"exchange"`
	Count    int                     `json:"count"`
	Dates    []contracts.TradingDate `json:"dates"`
}

// GetLedger returns every ledgered date, ascending
// GET /api/ledger?from=YYYYMMDD&to=YYYYMMDD
func (h *DataHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r, "to")
	if !ok {
		return
	}

	dates := make([]contracts.TradingDate, 0)
	for _, d := range h.ledger.Dates() {
		if from != "" && d < from {
			continue
		}
		if to != "" && d > to {
			continue
		}
		dates = append(dates, d)
	}

	respondJSON(w, http.StatusOK, LedgerResponse{
		Exchange: h.exchange,
		Count:    len(dates),
		Dates:    dates,
	})
}

// Helper functions

// parseDateParam accepts YYYYMMDD or YYYY-MM-DD; an absent param is ""
func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (contracts.TradingDate, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", true
	}
	d, err := parseDate(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid '"+name+"' date format (expected YYYYMMDD)")
		return "", false
	}
	return d, true
}

func parseDate(raw string) (contracts.TradingDate, error) {
	if len(raw) == 10 && raw[4] == '-' && raw[7] == '-' {
		raw = raw[:4] + raw[5:7] + raw[8:]
	}
	return contracts.ParseTradingDate(raw)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
