// Package report formats analysis results as dashboard metric cards.
package report

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// Card labels.
const (
	LabelBasePrice      = "Base Price"
	LabelProjectedPrice = "Projected Price"
	LabelProjectedQty   = "Projected Qty"
	LabelRevenueImpact  = "Revenue Impact"
	LabelProfitMaxPrice = "Profit-maximising price (P*)"
	LabelProfitMaxQty   = "Qty at P*"
	LabelProfitMaxValue = "Profit at P*"
)

// Metrics builds the metric cards for an analysis. Scenario and profit-max
// cards are included only when those results are present.
func Metrics(a domain.Analysis, currency string) []domain.Metric {
	out := []domain.Metric{
		{Label: LabelBasePrice, Value: money(currency, a.BasePrice, 2)},
	}

	if s := a.Scenario; s != nil {
		out = append(out,
			domain.Metric{
				Label: LabelProjectedPrice,
				Value: money(currency, s.New.Price, 2),
				Delta: pct(s.PctChange),
			},
			domain.Metric{
				Label: LabelProjectedQty,
				Value: fixed(s.New.Qty, 0),
				Delta: "Δ " + fixed(s.QtyDelta, 0),
			},
			domain.Metric{
				Label: LabelRevenueImpact,
				Value: money(currency, s.New.Revenue, 0),
				Delta: money(currency, s.RevenueDelta, 0),
			},
		)
	}

	if pm := a.ProfitMax; pm != nil {
		out = append(out,
			domain.Metric{Label: LabelProfitMaxPrice, Value: money(currency, pm.Price, 2)},
			domain.Metric{Label: LabelProfitMaxQty, Value: fixed(pm.Qty, 0)},
			domain.Metric{Label: LabelProfitMaxValue, Value: currency + grouped(fixed(pm.Profit, 0))},
		)
	}
	return out
}

func pct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).String() + "%"
}

func money(currency string, v float64, places int32) string {
	return currency + fixed(v, places)
}

// notAvailable stands in for values decimal cannot represent.
const notAvailable = "n/a"

func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// grouped inserts thousands separators into the integer part of a decimal
// string such as "-1234567.89".
func grouped(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
