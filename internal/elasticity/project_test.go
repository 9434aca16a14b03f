package elasticity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

func TestProject(t *testing.T) {
	m := domain.FittedModel{Intercept: math.Log(1000), Elasticity: -1}

	p, err := Project(m, 20)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, p.Qty, 1e-9)
	assert.InDelta(t, 1000.0, p.Revenue, 1e-9)
	assert.Equal(t, 20.0, p.Price)
}

func TestProject_RejectsNonPositivePrice(t *testing.T) {
	m := domain.FittedModel{Intercept: 5, Elasticity: -1.2}
	for _, price := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		_, err := Project(m, price)
		require.ErrorIs(t, err, domain.ErrInvalidInput, "price=%v", price)
	}
}

func TestProject_MonotoneForNormalGoods(t *testing.T) {
	m := domain.FittedModel{Intercept: 6.5, Elasticity: -0.4}

	prev := math.Inf(1)
	for price := 1.0; price <= 100; price += 0.5 {
		p, err := Project(m, price)
		require.NoError(t, err)
		require.Less(t, p.Qty, prev, "qty must fall as price rises (price=%v)", price)
		prev = p.Qty
	}
}

func TestBasePrice(t *testing.T) {
	base, err := BasePrice([]domain.Observation{{Price: 10}, {Price: 20}, {Price: 30}, {Price: 40}})
	require.NoError(t, err)
	require.Equal(t, 25.0, base)

	_, err = BasePrice(nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = BasePrice([]domain.Observation{{Price: math.MaxFloat64}, {Price: math.MaxFloat64}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSimulate_ZeroChangeIsIdentity(t *testing.T) {
	m := domain.FittedModel{Intercept: 7.1, Elasticity: -1.3}

	s, err := Simulate(m, 23.7, 0)
	require.NoError(t, err)
	require.Equal(t, s.Base.Price, s.New.Price)
	require.Equal(t, 0.0, s.RevenueDelta)
	require.Equal(t, 0.0, s.QtyDelta)
}

func TestSimulate_PriceIncreaseOnLinearDemand(t *testing.T) {
	obs := []domain.Observation{
		{Price: 10, Qty: 1000},
		{Price: 20, Qty: 800},
		{Price: 30, Qty: 600},
		{Price: 40, Qty: 400},
	}
	m, err := Fit(obs)
	require.NoError(t, err)
	base, err := BasePrice(obs)
	require.NoError(t, err)

	s, err := Simulate(m, base, 10)
	require.NoError(t, err)

	assert.InDelta(t, 1.1*base, s.New.Price, 1e-9)
	assert.Less(t, s.New.Qty, s.Base.Qty)
	assert.Less(t, s.QtyDelta, 0.0)
	assert.InDelta(t, s.New.Revenue-s.Base.Revenue, s.RevenueDelta, 1e-9)
}

func TestSimulate_RejectsNonPositiveNewPrice(t *testing.T) {
	m := domain.FittedModel{Intercept: 7, Elasticity: -1.3}

	for _, pct := range []float64{-100, -120} {
		_, err := Simulate(m, 25, pct)
		require.ErrorIs(t, err, domain.ErrInvalidInput, "pct=%v", pct)
	}

	_, err := Simulate(m, 0, 5)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// steepModel is what a two-point dataset like {10, 1e100}, {20, 1} fits to:
// demand explodes past float64 range just below the observed prices.
var steepModel = domain.FittedModel{Intercept: 995, Elasticity: -332}

func TestProject_RejectsOverflowingDemand(t *testing.T) {
	p, err := Project(steepModel, 10)
	require.NoError(t, err)
	assert.False(t, math.IsInf(p.Revenue, 0))

	_, err = Project(steepModel, 1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSimulate_RejectsOverflowingScenario(t *testing.T) {
	_, err := Simulate(steepModel, 10, -50)
	require.NoError(t, err)

	_, err = Simulate(steepModel, 10, -90)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Simulate(steepModel, math.MaxFloat64, 50)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
