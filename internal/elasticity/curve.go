package elasticity

import (
	"fmt"
	"slices"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// Curve samples the fitted demand curve at points prices spread evenly from
// lowFactor*min(price) to highFactor*max(price), both ends included. Points
// whose demand is not finite are dropped.
func Curve(m domain.FittedModel, obs []domain.Observation, points int, lowFactor, highFactor float64) ([]domain.CurvePoint, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("elasticity: curve of empty dataset: %w", domain.ErrInvalidInput)
	}
	if points < 2 {
		return nil, fmt.Errorf("elasticity: curve needs at least 2 points, got %d: %w", points, domain.ErrInvalidInput)
	}

	prices := make([]float64, len(obs))
	for i, o := range obs {
		prices[i] = o.Price
	}
	lo := slices.Min(prices) * lowFactor
	hi := slices.Max(prices) * highFactor
	if !isFinite(lo) || !isFinite(hi) || lo <= 0 || hi < lo {
		return nil, fmt.Errorf("elasticity: curve range [%v, %v] is invalid: %w", lo, hi, domain.ErrInvalidInput)
	}

	grid := linspace(lo, hi, points)
	out := make([]domain.CurvePoint, 0, len(grid))
	for _, p := range grid {
		// Prices where demand overflows float64 are left off the chart.
		if q := predict(m, p); isFinite(q) {
			out = append(out, domain.CurvePoint{Price: p, Qty: q})
		}
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("elasticity: curve: demand over [%v, %v] is out of range: %w", lo, hi, domain.ErrInvalidInput)
	}
	return out, nil
}

// linspace returns n evenly spaced values over [start, stop]. The last value
// is exactly stop.
func linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range n {
		out[i] = start + step*float64(i)
	}
	out[n-1] = stop
	return out
}
