// Package dataset turns raw price/quantity sources into observations and
// gives each dataset a stable identity.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// Column names looked up in the header row, compared case-insensitively.
const (
	PriceColumn = "price"
	QtyColumn   = "qty"
)

// ParseCSV reads a header row followed by one observation per row. The price
// and qty columns may appear in any order; other columns are ignored. Values
// are returned as written, without clamping.
func ParseCSV(r io.Reader) ([]domain.Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset: empty csv: %w", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, readError("read header", err)
	}

	priceIdx, qtyIdx := -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case PriceColumn:
			priceIdx = i
		case QtyColumn:
			qtyIdx = i
		}
	}
	if priceIdx < 0 || qtyIdx < 0 {
		return nil, fmt.Errorf("dataset: header must name %q and %q columns: %w",
			PriceColumn, QtyColumn, domain.ErrInvalidInput)
	}

	var obs []domain.Observation
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError("read row", err)
		}
		line, _ := cr.FieldPos(0)

		price, err := parseCell(rec, priceIdx, PriceColumn, line)
		if err != nil {
			return nil, err
		}
		qty, err := parseCell(rec, qtyIdx, QtyColumn, line)
		if err != nil {
			return nil, err
		}
		obs = append(obs, domain.Observation{Price: price, Qty: qty})
	}

	if len(obs) == 0 {
		return nil, fmt.Errorf("dataset: csv has a header but no rows: %w", domain.ErrInvalidInput)
	}
	return obs, nil
}

// readError marks malformed CSV as invalid input and passes I/O failures,
// such as an exceeded body limit, through unchanged.
func readError(op string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("dataset: %s: %v: %w", op, err, domain.ErrInvalidInput)
	}
	return fmt.Errorf("dataset: %s: %w", op, err)
}

func parseCell(rec []string, idx int, column string, line int) (float64, error) {
	if idx >= len(rec) || strings.TrimSpace(rec[idx]) == "" {
		return 0, fmt.Errorf("dataset: line %d: blank %s: %w", line, column, domain.ErrInvalidInput)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("dataset: line %d: %s %q is not a number: %w",
			line, column, rec[idx], domain.ErrInvalidInput)
	}
	return v, nil
}

// WriteCSV writes obs with a price,qty header.
func WriteCSV(w io.Writer, obs []domain.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{PriceColumn, QtyColumn}); err != nil {
		return fmt.Errorf("dataset: write header: %w", err)
	}
	for _, o := range obs {
		rec := []string{
			strconv.FormatFloat(o.Price, 'f', -1, 64),
			strconv.FormatFloat(o.Qty, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("dataset: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
