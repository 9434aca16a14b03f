package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

func TestMetrics_Full(t *testing.T) {
	a := domain.Analysis{
		BasePrice: 24.555,
		Scenario: &domain.Scenario{
			PctChange:    5,
			Base:         domain.Projection{Price: 24.555, Qty: 612.4, Revenue: 15037.482},
			New:          domain.Projection{Price: 25.78275, Qty: 598.6, Revenue: 15433.2},
			QtyDelta:     -13.8,
			RevenueDelta: 396.7,
		},
		ProfitMax: &domain.ProfitMax{UnitCost: 10, Price: 20, Qty: 1234.5, Profit: 1234567.4},
	}

	got := Metrics(a, "R")

	want := []domain.Metric{
		{Label: LabelBasePrice, Value: "R24.56"},
		{Label: LabelProjectedPrice, Value: "R25.78", Delta: "5%"},
		{Label: LabelProjectedQty, Value: "599", Delta: "Δ -14"},
		{Label: LabelRevenueImpact, Value: "R15433", Delta: "R397"},
		{Label: LabelProfitMaxPrice, Value: "R20.00"},
		{Label: LabelProfitMaxQty, Value: "1235"},
		{Label: LabelProfitMaxValue, Value: "R1,234,567"},
	}
	require.Equal(t, want, got)
}

func TestMetrics_OnlyBaseWhenDerivedValuesMissing(t *testing.T) {
	got := Metrics(domain.Analysis{BasePrice: 10}, "$")
	require.Equal(t, []domain.Metric{{Label: LabelBasePrice, Value: "$10.00"}}, got)
}

func TestMetrics_NegativeChange(t *testing.T) {
	a := domain.Analysis{
		BasePrice: 20,
		Scenario: &domain.Scenario{
			PctChange:    -12.5,
			New:          domain.Projection{Price: 17.5, Qty: 100, Revenue: 1750},
			QtyDelta:     10,
			RevenueDelta: -250,
		},
	}

	got := Metrics(a, "R")
	require.Len(t, got, 4)
	assert.Equal(t, "-12.5%", got[1].Delta)
	assert.Equal(t, "R-250", got[3].Delta)
}

func TestGrouped(t *testing.T) {
	tests := map[string]string{
		"0":           "0",
		"999":         "999",
		"1000":        "1,000",
		"-1234567":    "-1,234,567",
		"123456.75":   "123,456.75",
		"12345678901": "12,345,678,901",
	}
	for in, want := range tests {
		assert.Equal(t, want, grouped(in), in)
	}
}

func TestMetrics_NonFiniteValuesDoNotPanic(t *testing.T) {
	a := domain.Analysis{
		BasePrice: math.Inf(1),
		ProfitMax: &domain.ProfitMax{Price: 1.003, Qty: math.Inf(1), Profit: math.NaN()},
	}

	var got []domain.Metric
	require.NotPanics(t, func() { got = Metrics(a, "R") })
	assert.Equal(t, []domain.Metric{
		{Label: LabelBasePrice, Value: "Rn/a"},
		{Label: LabelProfitMaxPrice, Value: "R1.00"},
		{Label: LabelProfitMaxQty, Value: "n/a"},
		{Label: LabelProfitMaxValue, Value: "Rn/a"},
	}, got)
}
