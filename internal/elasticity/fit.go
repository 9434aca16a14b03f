package elasticity

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// MinObservations is the smallest dataset Fit accepts.
const MinObservations = 2

// Fit estimates the log-log model ln(qty) = a + b*ln(price) by ordinary
// least squares and returns the intercept a and the elasticity b.
//
// Sums are taken around the means of ln(price) and ln(qty), which keeps the
// normal equations well conditioned for prices far from 1. All prices and
// quantities must be strictly positive; callers that synthesise quantities
// should clamp them first (see ClampQuantities).
func Fit(obs []domain.Observation) (domain.FittedModel, error) {
	n := len(obs)
	if n < MinObservations {
		return domain.FittedModel{}, fmt.Errorf("elasticity: fit needs at least %d observations, got %d: %w",
			MinObservations, n, domain.ErrInvalidInput)
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	var sumX, sumY float64
	for i, o := range obs {
		if err := validateObservation(i, o); err != nil {
			return domain.FittedModel{}, err
		}
		xs[i] = math.Log(o.Price)
		ys[i] = math.Log(o.Qty)
		sumX += xs[i]
		sumY += ys[i]
	}

	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy float64
	for i := range n {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return domain.FittedModel{}, fmt.Errorf("elasticity: all %d prices are identical, slope is undefined: %w",
			n, domain.ErrInvalidInput)
	}

	b := sxy / sxx
	a := meanY - b*meanX
	if !isFinite(a) || !isFinite(b) {
		return domain.FittedModel{}, fmt.Errorf("elasticity: fit produced non-finite coefficients (a=%v, b=%v): %w",
			a, b, domain.ErrInvalidInput)
	}

	return domain.FittedModel{Intercept: a, Elasticity: b, N: n}, nil
}

// ClampQuantities returns a copy of obs with every quantity raised to at
// least minQty. It is meant for synthetic data where noise can push a
// quantity to zero or below.
func ClampQuantities(obs []domain.Observation, minQty float64) []domain.Observation {
	out := make([]domain.Observation, len(obs))
	for i, o := range obs {
		out[i] = domain.Observation{Price: o.Price, Qty: math.Max(o.Qty, minQty)}
	}
	return out
}

func validateObservation(i int, o domain.Observation) error {
	if !isFinite(o.Price) || o.Price <= 0 {
		return fmt.Errorf("elasticity: observation %d: price must be > 0, got %v: %w", i, o.Price, domain.ErrInvalidInput)
	}
	if !isFinite(o.Qty) || o.Qty <= 0 {
		return fmt.Errorf("elasticity: observation %d: qty must be > 0, got %v: %w", i, o.Qty, domain.ErrInvalidInput)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
