package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/alanyoungcy/pedsim/internal/domain"
	"github.com/alanyoungcy/pedsim/internal/elasticity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testEngineConfig() EngineConfig {
	return EngineConfig{
		UnitElasticTolerance: elasticity.DefaultUnitElasticTolerance,
		DefaultCostRatio:     0.6,
		CurvePoints:          100,
		CurveLowFactor:       0.8,
		CurveHighFactor:      1.2,
		Currency:             "R",
		Demo:                 elasticity.DefaultDemoConfig(),
	}
}

type fakeModelCache struct {
	mu     sync.Mutex
	models map[string]domain.FittedModel
	getErr error
	sets   int
}

func newFakeModelCache() *fakeModelCache {
	return &fakeModelCache{models: map[string]domain.FittedModel{}}
}

func (f *fakeModelCache) Get(_ context.Context, fp string) (domain.FittedModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.FittedModel{}, f.getErr
	}
	m, ok := f.models[fp]
	if !ok {
		return domain.FittedModel{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeModelCache) Set(_ context.Context, fp string, m domain.FittedModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.models[fp] = m
	return nil
}

type fakeDatasetCache struct {
	mu       sync.Mutex
	datasets map[string]domain.Dataset
}

func newFakeDatasetCache() *fakeDatasetCache {
	return &fakeDatasetCache{datasets: map[string]domain.Dataset{}}
}

func (f *fakeDatasetCache) Put(_ context.Context, ds domain.Dataset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.datasets[ds.ID] = ds
	return nil
}

func (f *fakeDatasetCache) Get(_ context.Context, id string) (domain.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ds, ok := f.datasets[id]
	if !ok {
		return domain.Dataset{}, domain.ErrNotFound
	}
	return ds, nil
}

type fakeObservationStore struct {
	bySKU map[string][]domain.Observation
	skus  []domain.SKUSummary
}

func (f *fakeObservationStore) ListBySKU(_ context.Context, sku string, _ domain.ListOpts) ([]domain.Observation, error) {
	obs, ok := f.bySKU[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return obs, nil
}

func (f *fakeObservationStore) ListSKUs(_ context.Context, _ domain.ListOpts) ([]domain.SKUSummary, error) {
	return f.skus, nil
}

type fakeBlobReader struct {
	objects map[string][]byte
	listErr error
}

func (f *fakeBlobReader) Download(_ context.Context, path string) ([]byte, error) {
	data, ok := f.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlobReader) List(_ context.Context, prefix string) ([]domain.BlobInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.BlobInfo
	for path, data := range f.objects {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			out = append(out, domain.BlobInfo{Path: path, Size: int64(len(data))})
		}
	}
	return out, nil
}

var errCacheDown = errors.New("cache down")
