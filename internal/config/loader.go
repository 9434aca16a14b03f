package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PEDSIM_* environment variable overrides, and
// returns the final Config. An empty path skips the file. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after
// Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PEDSIM_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty).
func applyEnvOverrides(cfg *Config) {
	// ── Engine ──
	setFloat64(&cfg.Engine.UnitElasticTolerance, "PEDSIM_ENGINE_UNIT_ELASTIC_TOLERANCE")
	setFloat64(&cfg.Engine.DefaultCostRatio, "PEDSIM_ENGINE_DEFAULT_COST_RATIO")
	setInt(&cfg.Engine.CurvePoints, "PEDSIM_ENGINE_CURVE_POINTS")

	// ── Simulator ──
	setInt(&cfg.Simulator.MinPctChange, "PEDSIM_SIMULATOR_MIN_PCT_CHANGE")
	setInt(&cfg.Simulator.MaxPctChange, "PEDSIM_SIMULATOR_MAX_PCT_CHANGE")
	setInt(&cfg.Simulator.DefaultPctChange, "PEDSIM_SIMULATOR_DEFAULT_PCT_CHANGE")

	// ── Demo ──
	setInt64(&cfg.Demo.Seed, "PEDSIM_DEMO_SEED")
	setInt(&cfg.Demo.Points, "PEDSIM_DEMO_POINTS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PEDSIM_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PEDSIM_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PEDSIM_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PEDSIM_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PEDSIM_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PEDSIM_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PEDSIM_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.KeyPrefix, "PEDSIM_REDIS_KEY_PREFIX")
	setDuration(&cfg.Redis.ModelTTL, "PEDSIM_REDIS_MODEL_TTL")
	setDuration(&cfg.Redis.DatasetTTL, "PEDSIM_REDIS_DATASET_TTL")

	// ── ERP ──
	setBool(&cfg.ERP.Enabled, "PEDSIM_ERP_ENABLED")
	setStr(&cfg.ERP.DSN, "PEDSIM_ERP_DSN")
	setStr(&cfg.ERP.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.ERP.Host, "PEDSIM_ERP_HOST")
	setInt(&cfg.ERP.Port, "PEDSIM_ERP_PORT")
	setStr(&cfg.ERP.Database, "PEDSIM_ERP_DATABASE")
	setStr(&cfg.ERP.User, "PEDSIM_ERP_USER")
	setStr(&cfg.ERP.Password, "PEDSIM_ERP_PASSWORD")
	setStr(&cfg.ERP.SSLMode, "PEDSIM_ERP_SSL_MODE")
	setInt(&cfg.ERP.PoolMaxConns, "PEDSIM_ERP_POOL_MAX_CONNS")
	setInt(&cfg.ERP.PoolMinConns, "PEDSIM_ERP_POOL_MIN_CONNS")
	setBool(&cfg.ERP.RunMigrations, "PEDSIM_ERP_RUN_MIGRATIONS")
	setInt(&cfg.ERP.MaxRows, "PEDSIM_ERP_MAX_ROWS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PEDSIM_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PEDSIM_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PEDSIM_S3_REGION")
	setStr(&cfg.S3.Bucket, "PEDSIM_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PEDSIM_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PEDSIM_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PEDSIM_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PEDSIM_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "PEDSIM_S3_PREFIX")

	// ── Server ──
	setInt(&cfg.Server.Port, "PEDSIM_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PEDSIM_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitPerMinute, "PEDSIM_SERVER_RATE_LIMIT_PER_MINUTE")
	setInt64(&cfg.Server.MaxUploadBytes, "PEDSIM_SERVER_MAX_UPLOAD_BYTES")
	setDuration(&cfg.Server.ShutdownTimeout, "PEDSIM_SERVER_SHUTDOWN_TIMEOUT")

	// ── Report ──
	setStr(&cfg.Report.Currency, "PEDSIM_REPORT_CURRENCY")

	// ── Top-level ──
	setStr(&cfg.Mode, "PEDSIM_MODE")
	setStr(&cfg.LogLevel, "PEDSIM_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
