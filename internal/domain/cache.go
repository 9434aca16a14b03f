package domain

import (
	"context"
	"time"
)

// ModelCache memoizes fitted models by dataset fingerprint.
type ModelCache interface {
	Get(ctx context.Context, fingerprint string) (FittedModel, error)
	Set(ctx context.Context, fingerprint string, model FittedModel) error
}

// DatasetCache holds uploaded datasets for the lifetime of a session.
type DatasetCache interface {
	Put(ctx context.Context, ds Dataset) error
	Get(ctx context.Context, id string) (Dataset, error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
