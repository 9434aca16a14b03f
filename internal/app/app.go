// Package app provides the top-level application lifecycle for the
// elasticity simulator. It wires the optional Redis, ERP and S3 backings,
// builds the services, and runs the configured mode.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alanyoungcy/pedsim/internal/config"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	estimate EstimateOptions
	out      io.Writer
	closers  []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
		out:    os.Stdout,
	}
}

// WithEstimate sets the inputs of a one-shot estimate run.
func (a *App) WithEstimate(opts EstimateOptions) *App {
	a.estimate = opts
	return a
}

// WithOutput redirects the estimate report, which goes to stdout by default.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// Run is the main entry point. It wires all dependencies, selects the
// operating mode, and blocks until the mode finishes or ctx is cancelled.
// On return it runs all registered cleanup functions.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch strings.ToLower(a.cfg.Mode) {
	case config.ModeServer:
		return a.ServerMode(ctx, deps)
	case config.ModeEstimate:
		return a.EstimateMode(ctx, deps, a.estimate)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
