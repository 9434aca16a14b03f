package elasticity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

func TestCurve(t *testing.T) {
	obs := []domain.Observation{{Price: 10, Qty: 900}, {Price: 25, Qty: 700}, {Price: 40, Qty: 420}}
	m, err := Fit(obs)
	require.NoError(t, err)

	pts, err := Curve(m, obs, 100, 0.8, 1.2)
	require.NoError(t, err)
	require.Len(t, pts, 100)
	assert.InDelta(t, 8.0, pts[0].Price, 1e-12)
	assert.InDelta(t, 48.0, pts[99].Price, 1e-12)

	for i := 1; i < len(pts); i++ {
		require.Greater(t, pts[i].Price, pts[i-1].Price)
		require.Less(t, pts[i].Qty, pts[i-1].Qty)
	}
}

func TestCurve_InvalidInput(t *testing.T) {
	m := domain.FittedModel{Intercept: 5, Elasticity: -1}
	obs := []domain.Observation{{Price: 10, Qty: 1}}

	_, err := Curve(m, nil, 10, 0.8, 1.2)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Curve(m, obs, 1, 0.8, 1.2)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Curve(m, obs, 10, 0, 1.2)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// Every price in [0.8, 1.44] overflows the steep model.
	low := []domain.Observation{{Price: 1, Qty: 1}, {Price: 1.2, Qty: 1}}
	_, err = Curve(steepModel, low, 10, 0.8, 1.2)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCurve_DropsOverflowingPoints(t *testing.T) {
	obs := []domain.Observation{{Price: 10, Qty: 1e100}, {Price: 20, Qty: 1}}

	pts, err := Curve(steepModel, obs, 10, 0.1, 1.2)
	require.NoError(t, err)
	assert.Less(t, len(pts), 10)
	assert.GreaterOrEqual(t, len(pts), 2)
	for _, p := range pts {
		assert.False(t, math.IsInf(p.Qty, 0) || math.IsNaN(p.Qty), "price %v", p.Price)
	}
	assert.InDelta(t, 24.0, pts[len(pts)-1].Price, 1e-9)
}

func TestLinspace(t *testing.T) {
	require.Equal(t, []float64{10, 20, 30, 40}, linspace(10, 40, 4))
	require.Equal(t, []float64{3}, linspace(3, 9, 1))
	require.Nil(t, linspace(3, 9, 0))
}
