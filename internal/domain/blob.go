package domain

import (
	"context"
	"time"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// BlobReader retrieves data from object storage.
type BlobReader interface {
	Download(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}
