package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// DatasetCache implements domain.DatasetCache. Uploaded datasets are stored
// as JSON and expire with the session:
//
//	{prefix}dataset:{id} - hash with field "data" containing JSON
type DatasetCache struct {
	c   *Client
	rdb *redis.Client
	ttl time.Duration
}

// NewDatasetCache creates a DatasetCache backed by the given Client.
func NewDatasetCache(c *Client, ttl time.Duration) *DatasetCache {
	return &DatasetCache{c: c, rdb: c.rdb, ttl: ttl}
}

func (dc *DatasetCache) key(id string) string { return dc.c.Key("dataset", id) }

// Put stores ds, replacing any dataset with the same ID and resetting its TTL.
func (dc *DatasetCache) Put(ctx context.Context, ds domain.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("redis: marshal dataset %s: %w", ds.ID, err)
	}

	key := dc.key(ds.ID)
	pipe := dc.rdb.TxPipeline()
	pipe.HSet(ctx, key, "data", data)
	pipe.Expire(ctx, key, dc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: put dataset %s: %w", ds.ID, err)
	}
	return nil
}

// Get returns the dataset stored under id, or domain.ErrNotFound when it was
// never uploaded or has expired.
func (dc *DatasetCache) Get(ctx context.Context, id string) (domain.Dataset, error) {
	data, err := dc.rdb.HGet(ctx, dc.key(id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Dataset{}, domain.ErrNotFound
		}
		return domain.Dataset{}, fmt.Errorf("redis: get dataset %s: %w", id, err)
	}

	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("redis: unmarshal dataset %s: %w", id, err)
	}
	return ds, nil
}

// Compile-time interface check.
var _ domain.DatasetCache = (*DatasetCache)(nil)
