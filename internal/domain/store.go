package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// SKUSummary describes one SKU available in the ERP sales history.
type SKUSummary struct {
	SKU          string    `json:"sku"`
	Observations int64     `json:"observations"`
	FirstSoldAt  time.Time `json:"first_sold_at"`
	LastSoldAt   time.Time `json:"last_sold_at"`
}

// ObservationStore reads historical price/quantity pairs from the ERP.
type ObservationStore interface {
	ListBySKU(ctx context.Context, sku string, opts ListOpts) ([]Observation, error)
	ListSKUs(ctx context.Context, opts ListOpts) ([]SKUSummary, error)
}
