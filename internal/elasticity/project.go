package elasticity

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// Project evaluates the fitted curve at price.
func Project(m domain.FittedModel, price float64) (domain.Projection, error) {
	if !isFinite(price) || price <= 0 {
		return domain.Projection{}, fmt.Errorf("elasticity: project: price must be > 0, got %v: %w",
			price, domain.ErrInvalidInput)
	}
	qty := predict(m, price)
	revenue := price * qty
	if !isFinite(qty) || !isFinite(revenue) {
		return domain.Projection{}, fmt.Errorf("elasticity: project: demand at price %v is out of range (qty %v, revenue %v): %w",
			price, qty, revenue, domain.ErrInvalidInput)
	}
	return domain.Projection{Price: price, Qty: qty, Revenue: revenue}, nil
}

// BasePrice returns the arithmetic mean of the observed prices, which is the
// baseline every scenario is measured against.
func BasePrice(obs []domain.Observation) (float64, error) {
	if len(obs) == 0 {
		return 0, fmt.Errorf("elasticity: base price of empty dataset: %w", domain.ErrInvalidInput)
	}
	var sum float64
	for _, o := range obs {
		sum += o.Price
	}
	mean := sum / float64(len(obs))
	if !isFinite(mean) {
		return 0, fmt.Errorf("elasticity: base price overflows: %w", domain.ErrInvalidInput)
	}
	return mean, nil
}

// Simulate projects demand at basePrice and at basePrice moved by pctChange
// percent, and reports the quantity and revenue deltas between them.
func Simulate(m domain.FittedModel, basePrice, pctChange float64) (domain.Scenario, error) {
	base, err := Project(m, basePrice)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("elasticity: simulate base: %w", err)
	}

	newPrice := basePrice * (1 + pctChange/100)
	if !isFinite(newPrice) || newPrice <= 0 {
		return domain.Scenario{}, fmt.Errorf("elasticity: simulate: a %v%% change gives price %v: %w",
			pctChange, newPrice, domain.ErrInvalidInput)
	}
	next, err := Project(m, newPrice)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("elasticity: simulate new: %w", err)
	}

	scn := domain.Scenario{
		PctChange:    pctChange,
		Base:         base,
		New:          next,
		QtyDelta:     next.Qty - base.Qty,
		RevenueDelta: next.Revenue - base.Revenue,
	}
	if !isFinite(scn.QtyDelta) || !isFinite(scn.RevenueDelta) {
		return domain.Scenario{}, fmt.Errorf("elasticity: simulate: deltas out of range: %w", domain.ErrInvalidInput)
	}
	return scn, nil
}

// predict assumes price > 0.
func predict(m domain.FittedModel, price float64) float64 {
	return math.Exp(m.Intercept + m.Elasticity*math.Log(price))
}
