// Package config defines the top-level configuration for the elasticity
// simulator and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PEDSIM_* environment variables.
type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Simulator SimulatorConfig `toml:"simulator"`
	Demo      DemoConfig      `toml:"demo"`
	Redis     RedisConfig     `toml:"redis"`
	ERP       ERPConfig       `toml:"erp"`
	S3        S3Config        `toml:"s3"`
	Server    ServerConfig    `toml:"server"`
	Report    ReportConfig    `toml:"report"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// EngineConfig tunes the elasticity engine.
type EngineConfig struct {
	// UnitElasticTolerance is how close |b| must be to 1 to count as unit
	// elastic. Zero means exact comparison.
	UnitElasticTolerance float64 `toml:"unit_elastic_tolerance"`
	DefaultCostRatio     float64 `toml:"default_cost_ratio"`
	CurvePoints          int     `toml:"curve_points"`
	CurveLowFactor       float64 `toml:"curve_low_factor"`
	CurveHighFactor      float64 `toml:"curve_high_factor"`
}

// SimulatorConfig bounds the price-change slider.
type SimulatorConfig struct {
	MinPctChange     int `toml:"min_pct_change"`
	MaxPctChange     int `toml:"max_pct_change"`
	DefaultPctChange int `toml:"default_pct_change"`
}

// DemoConfig describes the synthetic dataset served when no data is given.
type DemoConfig struct {
	Seed        int64   `toml:"seed"`
	Points      int     `toml:"points"`
	MinPrice    float64 `toml:"min_price"`
	MaxPrice    float64 `toml:"max_price"`
	Intercept   float64 `toml:"intercept"`
	Slope       float64 `toml:"slope"`
	NoiseStdDev float64 `toml:"noise_std_dev"`
	MinQty      float64 `toml:"min_qty"`
}

// RedisConfig holds Redis connection parameters and cache lifetimes.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	KeyPrefix  string   `toml:"key_prefix"`
	ModelTTL   duration `toml:"model_ttl"`
	DatasetTTL duration `toml:"dataset_ttl"`
}

// ERPConfig holds the PostgreSQL connection to the ERP sales history.
type ERPConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
	// MaxRows caps how many sales rows are read for one SKU.
	MaxRows int `toml:"max_rows"`
}

// S3Config holds S3-compatible object storage parameters for CSV datasets.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port               int      `toml:"port"`
	CORSOrigins        []string `toml:"cors_origins"`
	RateLimitPerMinute int      `toml:"rate_limit_per_minute"`
	MaxUploadBytes     int64    `toml:"max_upload_bytes"`
	ShutdownTimeout    duration `toml:"shutdown_timeout"`
}

// ReportConfig controls how metric cards are formatted.
type ReportConfig struct {
	Currency string `toml:"currency"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Engine: EngineConfig{
			UnitElasticTolerance: 1e-9,
			DefaultCostRatio:     0.6,
			CurvePoints:          100,
			CurveLowFactor:       0.8,
			CurveHighFactor:      1.2,
		},
		Simulator: SimulatorConfig{
			MinPctChange:     -30,
			MaxPctChange:     30,
			DefaultPctChange: 5,
		},
		Demo: DemoConfig{
			Seed:        42,
			Points:      20,
			MinPrice:    10,
			MaxPrice:    40,
			Intercept:   1200,
			Slope:       -20,
			NoiseStdDev: 30,
			MinQty:      1,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			KeyPrefix:  "pedsim",
			ModelTTL:   duration{30 * time.Minute},
			DatasetTTL: duration{2 * time.Hour},
		},
		ERP: ERPConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "erp",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  1,
			RunMigrations: false,
			MaxRows:       10_000,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "pedsim-datasets",
			ForcePathStyle: true,
			Prefix:         "datasets/",
		},
		Server: ServerConfig{
			Port:               8000,
			CORSOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimitPerMinute: 120,
			MaxUploadBytes:     5 << 20,
			ShutdownTimeout:    duration{10 * time.Second},
		},
		Report: ReportConfig{
			Currency: "R",
		},
		Mode:     ModeServer,
		LogLevel: "info",
	}
}

// Operating modes.
const (
	ModeServer   = "server"
	ModeEstimate = "estimate"
)

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	ModeServer:   true,
	ModeEstimate: true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, estimate)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Engine
	if c.Engine.UnitElasticTolerance < 0 || c.Engine.UnitElasticTolerance >= 1 {
		errs = append(errs, "engine: unit_elastic_tolerance must be in [0, 1)")
	}
	if c.Engine.DefaultCostRatio < 0 {
		errs = append(errs, "engine: default_cost_ratio must be >= 0")
	}
	if c.Engine.CurvePoints < 2 {
		errs = append(errs, "engine: curve_points must be >= 2")
	}
	if c.Engine.CurveLowFactor <= 0 {
		errs = append(errs, "engine: curve_low_factor must be > 0")
	}
	if c.Engine.CurveHighFactor < c.Engine.CurveLowFactor {
		errs = append(errs, "engine: curve_high_factor must not be below curve_low_factor")
	}

	// Simulator
	if c.Simulator.MinPctChange <= -100 {
		errs = append(errs, "simulator: min_pct_change must be > -100")
	}
	if c.Simulator.MinPctChange > c.Simulator.MaxPctChange {
		errs = append(errs, "simulator: min_pct_change must not exceed max_pct_change")
	}
	if c.Simulator.DefaultPctChange < c.Simulator.MinPctChange || c.Simulator.DefaultPctChange > c.Simulator.MaxPctChange {
		errs = append(errs, fmt.Sprintf("simulator: default_pct_change %d is outside [%d, %d]",
			c.Simulator.DefaultPctChange, c.Simulator.MinPctChange, c.Simulator.MaxPctChange))
	}

	// Demo
	if c.Demo.Points < 2 {
		errs = append(errs, "demo: points must be >= 2")
	}
	if c.Demo.MinPrice <= 0 || c.Demo.MaxPrice <= c.Demo.MinPrice {
		errs = append(errs, "demo: need 0 < min_price < max_price")
	}
	if c.Demo.MinQty <= 0 {
		errs = append(errs, "demo: min_qty must be > 0")
	}
	if c.Demo.NoiseStdDev < 0 {
		errs = append(errs, "demo: noise_std_dev must be >= 0")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.ModelTTL.Duration <= 0 || c.Redis.DatasetTTL.Duration <= 0 {
			errs = append(errs, "redis: model_ttl and dataset_ttl must be > 0")
		}
	}

	// ERP
	if c.ERP.Enabled {
		if strings.TrimSpace(c.ERP.DSN) == "" {
			if c.ERP.Host == "" {
				errs = append(errs, "erp: host must not be empty (or set erp.dsn)")
			}
			if c.ERP.Port <= 0 || c.ERP.Port > 65535 {
				errs = append(errs, fmt.Sprintf("erp: port must be 1-65535, got %d", c.ERP.Port))
			}
			if c.ERP.Database == "" {
				errs = append(errs, "erp: database must not be empty")
			}
		}
		if c.ERP.PoolMaxConns < 1 {
			errs = append(errs, "erp: pool_max_conns must be >= 1")
		}
		if c.ERP.PoolMinConns < 0 || c.ERP.PoolMinConns > c.ERP.PoolMaxConns {
			errs = append(errs, "erp: pool_min_conns must be in [0, pool_max_conns]")
		}
		if c.ERP.MaxRows < 2 {
			errs = append(errs, "erp: max_rows must be >= 2")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
	}

	// Server
	if strings.ToLower(c.Mode) == ModeServer {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.MaxUploadBytes <= 0 {
			errs = append(errs, "server: max_upload_bytes must be > 0")
		}
		if c.Server.RateLimitPerMinute < 0 {
			errs = append(errs, "server: rate_limit_per_minute must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
