package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/singleflight"

	"github.com/alanyoungcy/pedsim/internal/dataset"
	"github.com/alanyoungcy/pedsim/internal/domain"
	"github.com/alanyoungcy/pedsim/internal/elasticity"
	"github.com/alanyoungcy/pedsim/internal/report"
)

// Notes attached to an analysis when a derived value cannot be produced.
const (
	NoteScenarioInvalid    = "The proposed change gives a price that is not positive. Choose a smaller cut."
	NoteProfitMaxInelastic = "For |PED| ≤ 1, the constant-elasticity model does not yield a finite P*. " +
		"In practice, apply business constraints (caps, competition, budget)."
	NoteProfitMaxDegenerate = "Computed P* is not positive with current inputs. Adjust unit cost or review data."
	NoteUnitCostInvalid     = "Unit cost must be zero or more."
)

// Chart marker labels.
const (
	LabelBasePrice = "Base price"
	LabelNewPrice  = "New price"
	LabelProfitMax = "Profit-max price (P*)"
)

// EngineConfig holds the engine tunables the service applies to every
// analysis.
type EngineConfig struct {
	UnitElasticTolerance float64
	DefaultCostRatio     float64
	CurvePoints          int
	CurveLowFactor       float64
	CurveHighFactor      float64
	Currency             string
	Demo                 elasticity.DemoConfig
}

// ElasticityService resolves datasets, fits them (memoized by fingerprint),
// and derives the scenario and profit-max results for the dashboard. Any of
// the backing stores may be nil, in which case the matching dataset source
// reports domain.ErrSourceUnavailable.
type ElasticityService struct {
	cfg      EngineConfig
	models   domain.ModelCache
	datasets domain.DatasetCache
	erp      domain.ObservationStore
	blobs    domain.BlobReader
	fits     singleflight.Group
	logger   *slog.Logger
}

// NewElasticityService creates an ElasticityService. Pass nil for any store
// that is not configured.
func NewElasticityService(
	cfg EngineConfig,
	models domain.ModelCache,
	datasets domain.DatasetCache,
	erp domain.ObservationStore,
	blobs domain.BlobReader,
	logger *slog.Logger,
) *ElasticityService {
	return &ElasticityService{
		cfg:      cfg,
		models:   models,
		datasets: datasets,
		erp:      erp,
		blobs:    blobs,
		logger:   logger,
	}
}

// Config returns the engine settings in effect.
func (s *ElasticityService) Config() EngineConfig {
	return s.cfg
}

// Sources reports which dataset sources are backed by a configured store.
func (s *ElasticityService) Sources() map[domain.DatasetSource]bool {
	return map[domain.DatasetSource]bool{
		domain.SourceDemo:   true,
		domain.SourceInline: true,
		domain.SourceUpload: s.datasets != nil,
		domain.SourceS3:     s.blobs != nil,
		domain.SourceERP:    s.erp != nil,
	}
}

// LoadDataset resolves ref to its observations. An empty source means demo.
func (s *ElasticityService) LoadDataset(ctx context.Context, ref domain.DatasetRef) ([]domain.Observation, error) {
	switch ref.Source {
	case "", domain.SourceDemo:
		return elasticity.Demo(s.cfg.Demo), nil

	case domain.SourceInline:
		if len(ref.Observations) == 0 {
			return nil, fmt.Errorf("elasticity_service: inline dataset has no observations: %w", domain.ErrInvalidInput)
		}
		return ref.Observations, nil

	case domain.SourceUpload:
		if s.datasets == nil {
			return nil, fmt.Errorf("elasticity_service: uploads: %w", domain.ErrSourceUnavailable)
		}
		if ref.ID == "" {
			return nil, fmt.Errorf("elasticity_service: upload source needs an id: %w", domain.ErrInvalidInput)
		}
		ds, err := s.datasets.Get(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("elasticity_service: load upload %q: %w", ref.ID, err)
		}
		return ds.Observations, nil

	case domain.SourceS3:
		if s.blobs == nil {
			return nil, fmt.Errorf("elasticity_service: s3: %w", domain.ErrSourceUnavailable)
		}
		if ref.Key == "" {
			return nil, fmt.Errorf("elasticity_service: s3 source needs a key: %w", domain.ErrInvalidInput)
		}
		data, err := s.blobs.Download(ctx, ref.Key)
		if err != nil {
			return nil, fmt.Errorf("elasticity_service: load s3 %q: %w", ref.Key, err)
		}
		obs, err := dataset.ParseCSV(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("elasticity_service: parse s3 %q: %w", ref.Key, err)
		}
		return obs, nil

	case domain.SourceERP:
		if s.erp == nil {
			return nil, fmt.Errorf("elasticity_service: erp: %w", domain.ErrSourceUnavailable)
		}
		if ref.SKU == "" {
			return nil, fmt.Errorf("elasticity_service: erp source needs a sku: %w", domain.ErrInvalidInput)
		}
		obs, err := s.erp.ListBySKU(ctx, ref.SKU, domain.ListOpts{})
		if err != nil {
			return nil, fmt.Errorf("elasticity_service: load erp sku %q: %w", ref.SKU, err)
		}
		return obs, nil

	default:
		return nil, fmt.Errorf("elasticity_service: unknown source %q: %w", ref.Source, domain.ErrInvalidInput)
	}
}

// Fit returns the fitted model for obs and the dataset fingerprint it is
// memoized under. Concurrent fits of the same dataset share one computation,
// and the model cache is consulted when configured. Cache failures are
// logged and never fail the fit.
func (s *ElasticityService) Fit(ctx context.Context, obs []domain.Observation) (domain.FittedModel, string, error) {
	fp := dataset.Fingerprint(obs)

	v, err, _ := s.fits.Do(fp, func() (any, error) {
		if s.models != nil {
			m, err := s.models.Get(ctx, fp)
			if err == nil {
				return m, nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.WarnContext(ctx, "elasticity_service: model cache get failed",
					slog.String("fingerprint", fp),
					slog.String("error", err.Error()),
				)
			}
		}

		m, err := elasticity.Fit(obs)
		if err != nil {
			return domain.FittedModel{}, err
		}

		if s.models != nil {
			if err := s.models.Set(ctx, fp, m); err != nil {
				s.logger.WarnContext(ctx, "elasticity_service: model cache set failed",
					slog.String("fingerprint", fp),
					slog.String("error", err.Error()),
				)
			}
		}
		return m, nil
	})
	if err != nil {
		return domain.FittedModel{}, fp, fmt.Errorf("elasticity_service: fit: %w", err)
	}
	return v.(domain.FittedModel), fp, nil
}

// Analyze fits obs and derives the full analysis. Only a failed fit is an
// error; a scenario or profit maximum that cannot be computed is left nil
// with an explanatory note.
func (s *ElasticityService) Analyze(ctx context.Context, obs []domain.Observation, params domain.AnalyzeParams) (domain.Analysis, error) {
	m, fp, err := s.Fit(ctx, obs)
	if err != nil {
		return domain.Analysis{}, err
	}
	return s.AnalyzeFitted(obs, m, fp, params), nil
}

// AnalyzeFitted derives the analysis from an already fitted model. obs must
// be the dataset m was fitted on.
func (s *ElasticityService) AnalyzeFitted(obs []domain.Observation, m domain.FittedModel, fingerprint string, params domain.AnalyzeParams) domain.Analysis {
	cat := elasticity.Classify(m.Elasticity, s.cfg.UnitElasticTolerance)
	a := domain.Analysis{
		Fingerprint:   fingerprint,
		Model:         m,
		Category:      cat,
		CategoryLabel: cat.Description(),
	}

	base, err := elasticity.BasePrice(obs)
	if err == nil {
		a.BasePrice = base
		if scn, err := elasticity.Simulate(m, base, params.PctChange); err == nil {
			a.Scenario = &scn
		} else {
			a.ScenarioNote = NoteScenarioInvalid
		}
	} else {
		a.ScenarioNote = NoteScenarioInvalid
	}

	a.UnitCost = elasticity.DefaultUnitCost(a.BasePrice, s.cfg.DefaultCostRatio)
	if params.UnitCost != nil {
		a.UnitCost = *params.UnitCost
	}
	pm, err := elasticity.SolveProfitMax(m, a.UnitCost, s.cfg.UnitElasticTolerance)
	switch {
	case math.IsNaN(a.UnitCost) || math.IsInf(a.UnitCost, 0):
		// Keep the analysis encodable; the rejected cost is reported in the note.
		a.UnitCost = elasticity.DefaultUnitCost(a.BasePrice, s.cfg.DefaultCostRatio)
		a.ProfitMaxNote = NoteUnitCostInvalid
	case err == nil:
		a.ProfitMax = &pm
	case errors.Is(err, domain.ErrNotApplicable):
		a.ProfitMaxNote = NoteProfitMaxInelastic
	case errors.Is(err, domain.ErrDegenerateSolution):
		a.ProfitMaxNote = NoteProfitMaxDegenerate
	default:
		a.ProfitMaxNote = NoteUnitCostInvalid
	}

	a.Metrics = report.Metrics(a, s.cfg.Currency)
	return a
}

// Curve returns the chart data for obs under params: the observed points,
// the fitted curve, and the base, new and P* price markers.
func (s *ElasticityService) Curve(ctx context.Context, obs []domain.Observation, params domain.AnalyzeParams) (domain.Curve, error) {
	a, err := s.Analyze(ctx, obs, params)
	if err != nil {
		return domain.Curve{}, err
	}
	return s.CurveFor(obs, a)
}

// CurveFor builds the chart data for an analysis already computed over obs.
func (s *ElasticityService) CurveFor(obs []domain.Observation, a domain.Analysis) (domain.Curve, error) {
	pts, err := elasticity.Curve(a.Model, obs, s.cfg.CurvePoints, s.cfg.CurveLowFactor, s.cfg.CurveHighFactor)
	if err != nil {
		return domain.Curve{}, fmt.Errorf("elasticity_service: curve: %w", err)
	}

	markers := []domain.Marker{
		{Kind: domain.MarkerBasePrice, Label: LabelBasePrice, Price: a.BasePrice},
	}
	if a.Scenario != nil {
		markers = append(markers, domain.Marker{Kind: domain.MarkerNewPrice, Label: LabelNewPrice, Price: a.Scenario.New.Price})
	}
	if a.ProfitMax != nil && a.ProfitMax.Price > 0 {
		markers = append(markers, domain.Marker{Kind: domain.MarkerProfitMax, Label: LabelProfitMax, Price: a.ProfitMax.Price})
	}

	return domain.Curve{Observed: obs, Fitted: pts, Markers: markers}, nil
}
