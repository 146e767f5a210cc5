package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/extremes"
	"github.com/wonny/extremes/internal/pipeline"
	"github.com/wonny/extremes/pkg/logger"
)

// AnalysisHandler triggers runs and serves breach events
type AnalysisHandler struct {
	analyzer *pipeline.Analyzer
	store    contracts.BreachStore // optional
	defaults pipeline.Config
	logger   *logger.Logger

	running sync.Mutex
}

// NewAnalysisHandler creates a new analysis handler. store may be nil.
func NewAnalysisHandler(
	analyzer *pipeline.Analyzer,
	store contracts.BreachStore,
	defaults pipeline.Config,
	log *logger.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		store:    store,
		defaults: defaults,
		logger:   log,
	}
}

// BreachesResponse represents a breach listing
type BreachesResponse struct {
	Exchange string                  `json:"exchange"`
	Mode     contracts.Mode          `json:"mode"`
	Source   string                  `json:"source"` // repository, memory
	Count    int                     `json:"count"`
	Events   []contracts.BreachEvent `json:"events"`
}

// GetBreaches returns the latest run's events, optionally filtered
// GET /api/breaches?mode=low&date=YYYYMMDD&code=2330
func (h *AnalysisHandler) GetBreaches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	mode := h.defaults.Mode
	if raw := query.Get("mode"); raw != "" {
		m, err := contracts.ParseMode(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid mode (valid: low, high)")
			return
		}
		mode = m
	}
	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}
	code := query.Get("code")

	var (
		events []contracts.BreachEvent
		source string
	)
	if h.store != nil {
		stored, err := h.store.LatestBreaches(ctx, h.analyzer.Exchange(), mode)
		if err != nil {
			h.logger.WithError(err).Error("Failed to get breaches")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve breach events")
			return
		}
		events, source = stored, "repository"
	} else {
		source = "memory"
		if last := h.analyzer.Last(); last != nil && last.Mode == mode {
			events = last.Events
		}
	}

	filtered := make([]contracts.BreachEvent, 0, len(events))
	for _, e := range events {
		if date != "" && e.Date != date {
			continue
		}
		if code != "" && e.Code != code {
			continue
		}
		filtered = append(filtered, e)
	}

	respondJSON(w, http.StatusOK, BreachesResponse{
		Exchange: h.analyzer.Exchange(),
		Mode:     mode,
		Source:   source,
		Count:    len(filtered),
		Events:   filtered,
	})
}

// RunRequest overrides the default run parameters; every field is optional
type RunRequest struct {
	Mode         string `json:"mode"`
	Policy       string `json:"policy"`
	BaseStart    string `json:"base_start"`
	BaseEnd      string `json:"base_end"`
	CompareStart string `json:"compare_start"`
	CompareEnd   string `json:"compare_end"`
	Workers      int    `json:"workers"`
}

// RunResponse summarizes a triggered run
type RunResponse struct {
	Status string           `json:"status"`
	Result *pipeline.Result `json:"result"`
}

// Run triggers an analysis and waits for it
// POST /api/runs
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := h.runConfig(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// 동시 실행 방지
	if !h.running.TryLock() {
		respondError(w, http.StatusConflict, "An analysis run is already in progress")
		return
	}
	defer h.running.Unlock()

	h.logger.WithFields(map[string]interface{}{
		"mode":    cfg.Mode.String(),
		"base":    cfg.Base,
		"compare": cfg.Compare,
	}).Info("Analysis run triggered")

	result, err := h.analyzer.Run(r.Context(), cfg)
	if errors.Is(err, pipeline.ErrNoData) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Analysis run failed")
		respondError(w, http.StatusInternalServerError, "Analysis run failed")
		return
	}

	respondJSON(w, http.StatusOK, RunResponse{Status: "success", Result: result})
}

func (h *AnalysisHandler) runConfig(req RunRequest) (pipeline.Config, error) {
	cfg := h.defaults

	if req.Mode != "" {
		m, err := contracts.ParseMode(req.Mode)
		if err != nil {
			return cfg, err
		}
		if m != cfg.Mode {
			// 모드가 바뀌면 기본 정책도 그 모드를 따름
			cfg.Policy = ""
		}
		cfg.Mode = m
	}
	if req.Policy != "" {
		p, err := extremes.ParsePolicy(req.Policy, cfg.Mode)
		if err != nil {
			return cfg, err
		}
		cfg.Policy = p
	}

	dates := []struct {
		raw string
		dst *contracts.TradingDate
	}{
		{req.BaseStart, &cfg.Base.Start},
		{req.BaseEnd, &cfg.Base.End},
		{req.CompareStart, &cfg.Compare.Start},
		{req.CompareEnd, &cfg.Compare.End},
	}
	for _, d := range dates {
		if d.raw == "" {
			continue
		}
		parsed, err := parseDate(d.raw)
		if err != nil {
			return cfg, err
		}
		*d.dst = parsed
	}

	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}
	return cfg, nil
}
