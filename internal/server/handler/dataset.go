package handler

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/alanyoungcy/pedsim/internal/dataset"
	"github.com/alanyoungcy/pedsim/internal/domain"
)

// DatasetService is the subset of service.DatasetService used by the
// handler.
type DatasetService interface {
	Upload(ctx context.Context, name string, r io.Reader) (domain.Dataset, error)
	Get(ctx context.Context, id string) (domain.Dataset, error)
	ListRemote(ctx context.Context, prefix string) ([]domain.BlobInfo, error)
	ListSKUs(ctx context.Context, opts domain.ListOpts) ([]domain.SKUSummary, error)
}

// defaultUploadName names raw-body uploads that carry no ?name= parameter.
const defaultUploadName = "upload.csv"

// DatasetHandler serves dataset upload and listing endpoints.
type DatasetHandler struct {
	svc    DatasetService
	logger *slog.Logger
}

// NewDatasetHandler creates a DatasetHandler.
func NewDatasetHandler(svc DatasetService, logger *slog.Logger) *DatasetHandler {
	return &DatasetHandler{svc: svc, logger: logger}
}

// datasetSummary is the upload response: the dataset without its full
// observation list.
type datasetSummary struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Fingerprint string               `json:"fingerprint"`
	Rows        int                  `json:"rows"`
	Preview     []domain.Observation `json:"preview"`
	CreatedAt   time.Time            `json:"created_at"`
}

func summarize(ds domain.Dataset) datasetSummary {
	return datasetSummary{
		ID:          ds.ID,
		Name:        ds.Name,
		Fingerprint: ds.Fingerprint,
		Rows:        len(ds.Observations),
		Preview:     dataset.Preview(ds.Observations, dataset.PreviewRows),
		CreatedAt:   ds.CreatedAt,
	}
}

// Upload accepts a CSV either as the multipart field "file" or as a raw
// text/csv request body.
// POST /api/datasets
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	var body io.Reader = r.Body

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeDecodeError(w, err)
			return
		}
		defer file.Close()
		body = file
		if name == "" {
			name = header.Filename
		}
	}
	if name = strings.TrimSpace(name); name == "" {
		name = defaultUploadName
	}

	ds, err := h.svc.Upload(r.Context(), name, body)
	if err != nil {
		writeServiceError(w, r, h.logger, "upload dataset", err)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(ds))
}

// GetDataset returns an uploaded dataset with all of its observations.
// GET /api/datasets/{id}
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	ds, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, "get dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// ListRemote lists the CSV objects available in the dataset bucket.
// GET /api/datasets/remote?prefix=
func (h *DatasetHandler) ListRemote(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	objects, err := h.svc.ListRemote(r.Context(), prefix)
	if err != nil {
		writeServiceError(w, r, h.logger, "list remote datasets", err)
		return
	}
	if objects == nil {
		objects = []domain.BlobInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"prefix":  prefix,
		"objects": objects,
	})
}

// ListSKUs lists the SKUs with sales history in the ERP.
// GET /api/datasets/skus?limit=&offset=
func (h *DatasetHandler) ListSKUs(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	skus, err := h.svc.ListSKUs(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, h.logger, "list skus", err)
		return
	}
	if skus == nil {
		skus = []domain.SKUSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"skus":   skus,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}
