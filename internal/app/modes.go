package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/pedsim/internal/config"
	"github.com/alanyoungcy/pedsim/internal/dataset"
	"github.com/alanyoungcy/pedsim/internal/domain"
	"github.com/alanyoungcy/pedsim/internal/elasticity"
	"github.com/alanyoungcy/pedsim/internal/server"
	"github.com/alanyoungcy/pedsim/internal/server/handler"
	"github.com/alanyoungcy/pedsim/internal/server/ws"
	"github.com/alanyoungcy/pedsim/internal/service"
)

// EstimateOptions are the inputs of a one-shot estimate. With no CSVPath the
// dataset comes from Ref, which defaults to the demo data.
type EstimateOptions struct {
	CSVPath   string
	Ref       domain.DatasetRef
	PctChange *int
	UnitCost  *float64
	// ExportPath, when set, receives the resolved dataset as a price,qty CSV.
	ExportPath string
}

// estimateReport is what EstimateMode prints.
type estimateReport struct {
	Rows     int                  `json:"rows"`
	Preview  []domain.Observation `json:"preview"`
	Analysis domain.Analysis      `json:"analysis"`
}

func engineConfig(cfg *config.Config) service.EngineConfig {
	return service.EngineConfig{
		UnitElasticTolerance: cfg.Engine.UnitElasticTolerance,
		DefaultCostRatio:     cfg.Engine.DefaultCostRatio,
		CurvePoints:          cfg.Engine.CurvePoints,
		CurveLowFactor:       cfg.Engine.CurveLowFactor,
		CurveHighFactor:      cfg.Engine.CurveHighFactor,
		Currency:             cfg.Report.Currency,
		Demo: elasticity.DemoConfig{
			Seed:        uint64(cfg.Demo.Seed),
			Points:      cfg.Demo.Points,
			MinPrice:    cfg.Demo.MinPrice,
			MaxPrice:    cfg.Demo.MaxPrice,
			Intercept:   cfg.Demo.Intercept,
			Slope:       cfg.Demo.Slope,
			NoiseStdDev: cfg.Demo.NoiseStdDev,
			MinQty:      cfg.Demo.MinQty,
		},
	}
}

func pctRange(cfg *config.Config) domain.PctRange {
	return domain.PctRange{
		Min:     cfg.Simulator.MinPctChange,
		Max:     cfg.Simulator.MaxPctChange,
		Default: cfg.Simulator.DefaultPctChange,
	}
}

func (a *App) newElasticityService(deps *Dependencies) *service.ElasticityService {
	return service.NewElasticityService(
		engineConfig(a.cfg),
		deps.ModelCache,
		deps.DatasetCache,
		deps.Observations,
		deps.BlobReader,
		a.logger.With(slog.String("component", "elasticity_service")),
	)
}

// ServerMode runs the HTTP API and the WebSocket simulator until ctx is
// cancelled, then shuts the server down gracefully.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode", slog.Int("port", a.cfg.Server.Port))

	g, ctx := errgroup.WithContext(ctx)

	elasticitySvc := a.newElasticityService(deps)
	datasetSvc := service.NewDatasetService(
		deps.DatasetCache,
		deps.BlobReader,
		deps.Observations,
		a.cfg.S3.Prefix,
		a.logger.With(slog.String("component", "dataset_service")),
	)
	pct := pctRange(a.cfg)
	httpLogger := a.logger.With(slog.String("component", "http"))

	sim := ws.NewSimulator(elasticitySvc, pct, a.logger.With(slog.String("component", "ws")))
	g.Go(func() error {
		return sim.Run(ctx)
	})

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(deps.Checks, httpLogger),
		Status: handler.NewStatusHandler(handler.StatusInfo{
			Mode:                 a.cfg.Mode,
			UnitElasticTolerance: a.cfg.Engine.UnitElasticTolerance,
			DefaultCostRatio:     a.cfg.Engine.DefaultCostRatio,
			Currency:             a.cfg.Report.Currency,
			PctRange:             pct,
			Sources:              elasticitySvc.Sources(),
			StartedAt:            time.Now().UTC(),
		}),
		Insights:   handler.NewInsightHandler(),
		Datasets:   handler.NewDatasetHandler(datasetSvc, httpLogger),
		Elasticity: handler.NewElasticityHandler(elasticitySvc, pct, httpLogger),
	}

	srv := server.NewServer(server.Config{
		Port:               a.cfg.Server.Port,
		CORSOrigins:        a.cfg.Server.CORSOrigins,
		RateLimitPerMinute: a.cfg.Server.RateLimitPerMinute,
		MaxUploadBytes:     a.cfg.Server.MaxUploadBytes,
	}, handlers, sim, deps.RateLimiter, httpLogger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// EstimateMode runs one analysis and writes it as indented JSON to the
// app's output.
func (a *App) EstimateMode(ctx context.Context, deps *Dependencies, opts EstimateOptions) error {
	svc := a.newElasticityService(deps)

	ref := opts.Ref
	if opts.CSVPath != "" {
		f, err := os.Open(opts.CSVPath)
		if err != nil {
			return fmt.Errorf("app: open csv: %w", err)
		}
		defer f.Close()
		obs, err := dataset.ParseCSV(f)
		if err != nil {
			return fmt.Errorf("app: read %s: %w", opts.CSVPath, err)
		}
		ref = domain.DatasetRef{Source: domain.SourceInline, Observations: obs}
	}

	pct := pctRange(a.cfg)
	p := pct.Default
	if opts.PctChange != nil {
		p = *opts.PctChange
	}
	if !pct.Contains(p) {
		return fmt.Errorf("app: pct_change %d outside [%d, %d]: %w", p, pct.Min, pct.Max, domain.ErrInvalidInput)
	}

	if c := opts.UnitCost; c != nil && (math.IsNaN(*c) || math.IsInf(*c, 0)) {
		return fmt.Errorf("app: unit_cost %v is not a finite number: %w", *c, domain.ErrInvalidInput)
	}

	obs, err := svc.LoadDataset(ctx, ref)
	if err != nil {
		return fmt.Errorf("app: load dataset: %w", err)
	}
	if opts.ExportPath != "" {
		if err := exportCSV(opts.ExportPath, obs); err != nil {
			return err
		}
		a.logger.InfoContext(ctx, "app: dataset exported",
			slog.String("path", opts.ExportPath),
			slog.Int("rows", len(obs)),
		)
	}

	analysis, err := svc.Analyze(ctx, obs, domain.AnalyzeParams{PctChange: float64(p), UnitCost: opts.UnitCost})
	if err != nil {
		return fmt.Errorf("app: analyze: %w", err)
	}

	out, err := json.MarshalIndent(estimateReport{
		Rows:     len(obs),
		Preview:  dataset.Preview(obs, dataset.PreviewRows),
		Analysis: analysis,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("app: encode report: %w", err)
	}
	if _, err := fmt.Fprintln(a.out, string(out)); err != nil {
		return fmt.Errorf("app: write report: %w", err)
	}
	return nil
}

func exportCSV(path string, obs []domain.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("app: create export: %w", err)
	}
	if err := dataset.WriteCSV(f, obs); err != nil {
		f.Close()
		return fmt.Errorf("app: write export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("app: close export %s: %w", path, err)
	}
	return nil
}
