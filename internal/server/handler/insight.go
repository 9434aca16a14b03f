package handler

import (
	"net/http"

	"github.com/alanyoungcy/pedsim/internal/insight"
)

// InsightHandler serves the ERP vs AI/ML comparison table.
type InsightHandler struct{}

// NewInsightHandler creates an InsightHandler.
func NewInsightHandler() *InsightHandler {
	return &InsightHandler{}
}

// GetComparison returns the comparison columns and rows.
// GET /api/insights/comparison
func (h *InsightHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": insight.Columns,
		"rows":    insight.Comparison(),
	})
}
