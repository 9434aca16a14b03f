// Command pedsim is the entry point for the price elasticity simulator. It
// loads configuration, validates it, wires dependencies, sets up signal
// handling, and either serves the API or runs a one-shot estimate.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/alanyoungcy/pedsim/internal/app"
	"github.com/alanyoungcy/pedsim/internal/config"
	"github.com/alanyoungcy/pedsim/internal/domain"
)

func main() {
	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.toml",
		Usage:   "path to configuration file (empty for defaults and env only)",
		EnvVars: []string{"PEDSIM_CONFIG"},
	}

	cliApp := &cli.App{
		Name:  "pedsim",
		Usage: "price elasticity of demand estimator and what-if simulator",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP and WebSocket API",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					return run(c, config.ModeServer, app.EstimateOptions{})
				},
			},
			{
				Name:  "estimate",
				Usage: "fit one dataset and print the analysis as JSON",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "csv", Usage: "CSV file with price and qty columns"},
					&cli.StringFlag{Name: "source", Usage: "dataset source when --csv is not given (demo, s3, erp)"},
					&cli.StringFlag{Name: "key", Usage: "object key for --source s3"},
					&cli.StringFlag{Name: "sku", Usage: "SKU for --source erp"},
					&cli.IntFlag{Name: "pct", Usage: "proposed price change in percent"},
					&cli.Float64Flag{Name: "cost", Usage: "unit cost for the profit-max price"},
					&cli.StringFlag{Name: "export", Usage: "also write the resolved dataset to this CSV file"},
				},
				Action: func(c *cli.Context) error {
					opts := app.EstimateOptions{
						CSVPath:    c.String("csv"),
						ExportPath: c.String("export"),
						Ref: domain.DatasetRef{
							Source: domain.DatasetSource(c.String("source")),
							Key:    c.String("key"),
							SKU:    c.String("sku"),
						},
					}
					if c.IsSet("pct") {
						pct := c.Int("pct")
						opts.PctChange = &pct
					}
					if c.IsSet("cost") {
						cost := c.Float64("cost")
						opts.UnitCost = &cost
					}
					return run(c, config.ModeEstimate, opts)
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context, mode string, opts app.EstimateOptions) error {
	configPath := c.String("config")
	if !c.IsSet("config") {
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			configPath = ""
		}
	}

	// Load configuration.
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	cfg.Mode = mode

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("pedsim starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", configPath),
		slog.Any("settings", config.RedactedConfig(cfg)),
	)

	application := app.New(cfg, logger).WithEstimate(opts)
	defer application.Close()

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if errors.Is(err, context.Canceled) {
			logger.Info("application shut down gracefully")
			return nil
		}
		return err
	}

	logger.Info("pedsim stopped")
	return nil
}

// newLogger builds the JSON logger at the configured level. The estimate
// report owns stdout, so logs go to stderr.
func newLogger(levelName string) *slog.Logger {
	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
