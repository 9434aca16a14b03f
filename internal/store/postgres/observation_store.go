package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// ObservationStore implements domain.ObservationStore over the ERP's
// sku_sales table. It only reads.
type ObservationStore struct {
	pool    *pgxpool.Pool
	maxRows int
}

// NewObservationStore creates an ObservationStore backed by the given pool.
// maxRows caps the rows returned when the caller sets no limit.
func NewObservationStore(pool *pgxpool.Pool, maxRows int) *ObservationStore {
	return &ObservationStore{pool: pool, maxRows: maxRows}
}

// ListBySKU returns the (price, qty) history of one SKU, oldest first. It
// returns domain.ErrNotFound when the SKU has no sales in range.
func (s *ObservationStore) ListBySKU(ctx context.Context, sku string, opts domain.ListOpts) ([]domain.Observation, error) {
	query := `SELECT price::float8, qty::float8 FROM sku_sales WHERE sku = $1`
	args := []any{sku}
	argIdx := 2

	if opts.Since != nil {
		query += fmt.Sprintf(" AND sold_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND sold_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY sold_at ASC, id ASC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, s.limit(opts))
	argIdx++
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sales for sku %s: %w", sku, err)
	}
	obs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Observation, error) {
		var o domain.Observation
		err := row.Scan(&o.Price, &o.Qty)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan sales for sku %s: %w", sku, err)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("postgres: sku %s: %w", sku, domain.ErrNotFound)
	}
	return obs, nil
}

// ListSKUs summarizes the SKUs that have sales history, ordered by SKU.
func (s *ObservationStore) ListSKUs(ctx context.Context, opts domain.ListOpts) ([]domain.SKUSummary, error) {
	const query = `
		SELECT sku, COUNT(*), MIN(sold_at), MAX(sold_at)
		FROM sku_sales
		GROUP BY sku
		ORDER BY sku
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, s.limit(opts), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list skus: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SKUSummary, error) {
		var sum domain.SKUSummary
		err := row.Scan(&sum.SKU, &sum.Observations, &sum.FirstSoldAt, &sum.LastSoldAt)
		return sum, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan skus: %w", err)
	}
	return out, nil
}

func (s *ObservationStore) limit(opts domain.ListOpts) int {
	if opts.Limit > 0 && (s.maxRows <= 0 || opts.Limit < s.maxRows) {
		return opts.Limit
	}
	if s.maxRows > 0 {
		return s.maxRows
	}
	return 1000
}

// Compile-time interface check.
var _ domain.ObservationStore = (*ObservationStore)(nil)
