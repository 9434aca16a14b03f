package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/pedsim/internal/dataset"
	"github.com/alanyoungcy/pedsim/internal/domain"
)

// DatasetService manages uploaded datasets and lists the remote ones that
// can be analysed. Nil stores disable the matching operations.
type DatasetService struct {
	cache         domain.DatasetCache
	blobs         domain.BlobReader
	erp           domain.ObservationStore
	defaultPrefix string
	logger        *slog.Logger
}

// NewDatasetService creates a DatasetService. defaultPrefix is the S3 key
// prefix listed when the caller gives none.
func NewDatasetService(
	cache domain.DatasetCache,
	blobs domain.BlobReader,
	erp domain.ObservationStore,
	defaultPrefix string,
	logger *slog.Logger,
) *DatasetService {
	return &DatasetService{
		cache:         cache,
		blobs:         blobs,
		erp:           erp,
		defaultPrefix: defaultPrefix,
		logger:        logger,
	}
}

// Upload parses a CSV upload and stores it under a fresh id.
func (s *DatasetService) Upload(ctx context.Context, name string, r io.Reader) (domain.Dataset, error) {
	if s.cache == nil {
		return domain.Dataset{}, fmt.Errorf("dataset_service: uploads: %w", domain.ErrSourceUnavailable)
	}

	obs, err := dataset.ParseCSV(r)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset_service: upload %q: %w", name, err)
	}

	ds := domain.Dataset{
		ID:           uuid.NewString(),
		Name:         name,
		Fingerprint:  dataset.Fingerprint(obs),
		Observations: obs,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.cache.Put(ctx, ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset_service: store upload %q: %w", name, err)
	}

	s.logger.InfoContext(ctx, "dataset_service: dataset uploaded",
		slog.String("id", ds.ID),
		slog.String("name", name),
		slog.Int("rows", len(obs)),
	)
	return ds, nil
}

// Get returns a previously uploaded dataset.
func (s *DatasetService) Get(ctx context.Context, id string) (domain.Dataset, error) {
	if s.cache == nil {
		return domain.Dataset{}, fmt.Errorf("dataset_service: uploads: %w", domain.ErrSourceUnavailable)
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset_service: dataset id %q: %w", id, domain.ErrNotFound)
	}
	ds, err := s.cache.Get(ctx, id)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset_service: get %q: %w", id, err)
	}
	return ds, nil
}

// ListRemote lists the CSV objects under prefix, or under the default prefix
// when prefix is empty.
func (s *DatasetService) ListRemote(ctx context.Context, prefix string) ([]domain.BlobInfo, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("dataset_service: s3: %w", domain.ErrSourceUnavailable)
	}
	if prefix == "" {
		prefix = s.defaultPrefix
	}

	infos, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("dataset_service: list %q: %w", prefix, err)
	}
	out := make([]domain.BlobInfo, 0, len(infos))
	for _, info := range infos {
		if strings.HasSuffix(strings.ToLower(info.Path), ".csv") {
			out = append(out, info)
		}
	}
	return out, nil
}

// ListSKUs lists the SKUs with sales history in the ERP.
func (s *DatasetService) ListSKUs(ctx context.Context, opts domain.ListOpts) ([]domain.SKUSummary, error) {
	if s.erp == nil {
		return nil, fmt.Errorf("dataset_service: erp: %w", domain.ErrSourceUnavailable)
	}
	skus, err := s.erp.ListSKUs(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dataset_service: list skus: %w", err)
	}
	return skus, nil
}
