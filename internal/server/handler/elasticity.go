package handler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/pedsim/internal/dataset"
	"github.com/alanyoungcy/pedsim/internal/domain"
)

// ElasticityService is the subset of service.ElasticityService used by the
// handler.
type ElasticityService interface {
	LoadDataset(ctx context.Context, ref domain.DatasetRef) ([]domain.Observation, error)
	Analyze(ctx context.Context, obs []domain.Observation, params domain.AnalyzeParams) (domain.Analysis, error)
	Curve(ctx context.Context, obs []domain.Observation, params domain.AnalyzeParams) (domain.Curve, error)
}

// ElasticityHandler serves the estimation and simulation endpoints.
type ElasticityHandler struct {
	svc    ElasticityService
	pct    domain.PctRange
	logger *slog.Logger
}

// NewElasticityHandler creates an ElasticityHandler. pct bounds the price
// change a caller may request.
func NewElasticityHandler(svc ElasticityService, pct domain.PctRange, logger *slog.Logger) *ElasticityHandler {
	return &ElasticityHandler{svc: svc, pct: pct, logger: logger}
}

// analyzeRequest is the body of the analyze and curve endpoints.
type analyzeRequest struct {
	Dataset   domain.DatasetRef `json:"dataset"`
	PctChange *int              `json:"pct_change"`
	UnitCost  *float64          `json:"unit_cost"`
}

// analyzeResponse pairs the analysis with a look at the data it came from.
type analyzeResponse struct {
	Analysis domain.Analysis      `json:"analysis"`
	Rows     int                  `json:"rows"`
	Preview  []domain.Observation `json:"preview"`
}

// params validates the slider inputs. A nil pct uses the range default.
func (h *ElasticityHandler) params(pct *int, unitCost *float64) (domain.AnalyzeParams, error) {
	p := h.pct.Default
	if pct != nil {
		p = *pct
	}
	if !h.pct.Contains(p) {
		return domain.AnalyzeParams{}, fmt.Errorf("pct_change %d outside [%d, %d]", p, h.pct.Min, h.pct.Max)
	}
	if unitCost != nil && (math.IsNaN(*unitCost) || math.IsInf(*unitCost, 0)) {
		return domain.AnalyzeParams{}, fmt.Errorf("unit_cost %v is not a finite number", *unitCost)
	}
	return domain.AnalyzeParams{PctChange: float64(p), UnitCost: unitCost}, nil
}

// Demo runs the analysis on the built-in synthetic dataset.
// GET /api/elasticity/demo?pct_change=&unit_cost=
func (h *ElasticityHandler) Demo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var pct *int
	if v := q.Get("pct_change"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pct_change")
			return
		}
		pct = &n
	}
	var unitCost *float64
	if v := q.Get("unit_cost"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			writeError(w, http.StatusBadRequest, "invalid unit_cost")
			return
		}
		unitCost = &f
	}

	params, err := h.params(pct, unitCost)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.analyze(w, r, domain.DatasetRef{Source: domain.SourceDemo}, params)
}

// Analyze runs the analysis on the dataset named in the body.
// POST /api/elasticity/analyze
func (h *ElasticityHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, params, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.analyze(w, r, req.Dataset, params)
}

// Curve returns the chart data for the dataset named in the body.
// POST /api/elasticity/curve
func (h *ElasticityHandler) Curve(w http.ResponseWriter, r *http.Request) {
	req, params, ok := h.decode(w, r)
	if !ok {
		return
	}
	obs, err := h.svc.LoadDataset(r.Context(), req.Dataset)
	if err != nil {
		writeServiceError(w, r, h.logger, "load dataset", err)
		return
	}
	curve, err := h.svc.Curve(r.Context(), obs, params)
	if err != nil {
		writeServiceError(w, r, h.logger, "build curve", err)
		return
	}
	writeJSON(w, http.StatusOK, curve)
}

func (h *ElasticityHandler) decode(w http.ResponseWriter, r *http.Request) (analyzeRequest, domain.AnalyzeParams, bool) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return req, domain.AnalyzeParams{}, false
	}
	params, err := h.params(req.PctChange, req.UnitCost)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, domain.AnalyzeParams{}, false
	}
	return req, params, true
}

func (h *ElasticityHandler) analyze(w http.ResponseWriter, r *http.Request, ref domain.DatasetRef, params domain.AnalyzeParams) {
	obs, err := h.svc.LoadDataset(r.Context(), ref)
	if err != nil {
		writeServiceError(w, r, h.logger, "load dataset", err)
		return
	}
	a, err := h.svc.Analyze(r.Context(), obs, params)
	if err != nil {
		writeServiceError(w, r, h.logger, "analyze", err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis: a,
		Rows:     len(obs),
		Preview:  dataset.Preview(obs, dataset.PreviewRows),
	})
}
