package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// StatusInfo is the static runtime description served by the status
// endpoint.
type StatusInfo struct {
	Mode                 string
	UnitElasticTolerance float64
	DefaultCostRatio     float64
	Currency             string
	PctRange             domain.PctRange
	Sources              map[domain.DatasetSource]bool
	StartedAt            time.Time
}

// StatusHandler serves the backend status for the dashboard.
type StatusHandler struct {
	info StatusInfo
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(info StatusInfo) *StatusHandler {
	return &StatusHandler{info: info}
}

// GetStatus responds with the mode, engine settings, slider bounds and the
// dataset sources that are available.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           h.info.Mode,
		"uptime_seconds": int64(max(0, time.Since(h.info.StartedAt).Seconds())),
		"engine": map[string]any{
			"unit_elastic_tolerance": h.info.UnitElasticTolerance,
			"default_cost_ratio":     h.info.DefaultCostRatio,
			"currency":               h.info.Currency,
		},
		"pct_change": h.info.PctRange,
		"sources":    h.info.Sources,
	})
}
