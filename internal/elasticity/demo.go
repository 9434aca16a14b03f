package elasticity

import (
	"math/rand/v2"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// DemoConfig describes the synthetic dataset used when no data is supplied:
// Points prices evenly spaced over [MinPrice, MaxPrice] with a linear demand
// Intercept + Slope*price plus Gaussian noise, clamped to MinQty.
type DemoConfig struct {
	Seed        uint64
	Points      int
	MinPrice    float64
	MaxPrice    float64
	Intercept   float64
	Slope       float64
	NoiseStdDev float64
	MinQty      float64
}

// DefaultDemoConfig returns the stock demo: 20 prices in [10, 40],
// qty = 1200 - 20*price + N(0, 30), never below 1.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		Seed:        42,
		Points:      20,
		MinPrice:    10,
		MaxPrice:    40,
		Intercept:   1200,
		Slope:       -20,
		NoiseStdDev: 30,
		MinQty:      1,
	}
}

// Demo generates the synthetic dataset. The same config always yields the
// same observations.
func Demo(cfg DemoConfig) []domain.Observation {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	prices := linspace(cfg.MinPrice, cfg.MaxPrice, cfg.Points)

	obs := make([]domain.Observation, len(prices))
	for i, p := range prices {
		qty := cfg.Intercept + cfg.Slope*p + rng.NormFloat64()*cfg.NoiseStdDev
		obs[i] = domain.Observation{Price: p, Qty: qty}
	}
	return ClampQuantities(obs, cfg.MinQty)
}
