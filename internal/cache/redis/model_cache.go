package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// ModelCache implements domain.ModelCache with one Redis hash per dataset
// fingerprint:
//
//	{prefix}model:{fingerprint} - fields "intercept", "elasticity", "n"
//
// Entries expire after the configured TTL.
type ModelCache struct {
	c   *Client
	rdb *redis.Client
	ttl time.Duration
}

// NewModelCache creates a ModelCache backed by the given Client.
func NewModelCache(c *Client, ttl time.Duration) *ModelCache {
	return &ModelCache{c: c, rdb: c.rdb, ttl: ttl}
}

func (mc *ModelCache) key(fingerprint string) string {
	return mc.c.Key("model", fingerprint)
}

// Set stores a fitted model under its dataset fingerprint.
func (mc *ModelCache) Set(ctx context.Context, fingerprint string, m domain.FittedModel) error {
	key := mc.key(fingerprint)
	fields := map[string]interface{}{
		"intercept":  strconv.FormatFloat(m.Intercept, 'g', -1, 64),
		"elasticity": strconv.FormatFloat(m.Elasticity, 'g', -1, 64),
		"n":          strconv.Itoa(m.N),
	}

	pipe := mc.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, mc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set model %s: %w", fingerprint, err)
	}
	return nil
}

// Get returns the model cached for fingerprint, or domain.ErrNotFound.
func (mc *ModelCache) Get(ctx context.Context, fingerprint string) (domain.FittedModel, error) {
	vals, err := mc.rdb.HGetAll(ctx, mc.key(fingerprint)).Result()
	if err != nil {
		return domain.FittedModel{}, fmt.Errorf("redis: get model %s: %w", fingerprint, err)
	}
	if len(vals) == 0 {
		return domain.FittedModel{}, domain.ErrNotFound
	}

	var m domain.FittedModel
	if m.Intercept, err = strconv.ParseFloat(vals["intercept"], 64); err != nil {
		return domain.FittedModel{}, fmt.Errorf("redis: parse model %s intercept: %w", fingerprint, err)
	}
	if m.Elasticity, err = strconv.ParseFloat(vals["elasticity"], 64); err != nil {
		return domain.FittedModel{}, fmt.Errorf("redis: parse model %s elasticity: %w", fingerprint, err)
	}
	if m.N, err = strconv.Atoi(vals["n"]); err != nil {
		return domain.FittedModel{}, fmt.Errorf("redis: parse model %s n: %w", fingerprint, err)
	}
	return m, nil
}

// Compile-time interface check.
var _ domain.ModelCache = (*ModelCache)(nil)
