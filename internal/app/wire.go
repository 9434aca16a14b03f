package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/pedsim/internal/blob/s3"
	"github.com/alanyoungcy/pedsim/internal/cache/redis"
	"github.com/alanyoungcy/pedsim/internal/config"
	"github.com/alanyoungcy/pedsim/internal/domain"
	"github.com/alanyoungcy/pedsim/internal/server/handler"
	"github.com/alanyoungcy/pedsim/internal/store/postgres"
)

// Dependencies bundles the optional backings the services run on. A nil
// field means the backing is disabled in the configuration. Wire constructs
// it and the returned cleanup function tears it down.
type Dependencies struct {
	// Caches (Redis)
	ModelCache   domain.ModelCache
	DatasetCache domain.DatasetCache
	RateLimiter  domain.RateLimiter

	// ERP sales history (Postgres)
	Observations domain.ObservationStore

	// CSV datasets (S3)
	BlobReader domain.BlobReader

	// Health checks per enabled backing, keyed by name.
	Checks map[string]handler.Check
}

// Wire constructs the enabled backings from the given configuration and
// returns them together with a cleanup function that should be called on
// shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{Checks: make(map[string]handler.Check)}

	// --- Redis ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
			KeyPrefix:  cfg.Redis.KeyPrefix,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.ModelCache = redis.NewModelCache(redisClient, cfg.Redis.ModelTTL.Duration)
		deps.DatasetCache = redis.NewDatasetCache(redisClient, cfg.Redis.DatasetTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.Checks["redis"] = redisClient.Ping
		logger.InfoContext(ctx, "wire: redis connected", slog.String("addr", cfg.Redis.Addr))
	}

	// --- ERP PostgreSQL ---
	if cfg.ERP.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.ERP.DSN,
			Host:     cfg.ERP.Host,
			Port:     cfg.ERP.Port,
			Database: cfg.ERP.Database,
			User:     cfg.ERP.User,
			Password: cfg.ERP.Password,
			SSLMode:  cfg.ERP.SSLMode,
			MaxConns: cfg.ERP.PoolMaxConns,
			MinConns: cfg.ERP.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.ERP.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.Observations = postgres.NewObservationStore(pool, cfg.ERP.MaxRows)
		deps.Checks["erp"] = pool.Ping
		logger.InfoContext(ctx, "wire: erp connected", slog.String("database", cfg.ERP.Database))
	}

	// --- S3 CSV datasets ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.BlobReader = s3blob.NewReader(s3Client, cfg.Server.MaxUploadBytes)
		deps.Checks["s3"] = s3Client.Health
		logger.InfoContext(ctx, "wire: s3 configured", slog.String("bucket", cfg.S3.Bucket))
	}

	return deps, cleanup, nil
}
