package domain

// Observation is a single (price, quantity) sample for one SKU.
type Observation struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// FittedModel is the result of a log-log least squares fit:
//
//	ln(qty) = Intercept + Elasticity * ln(price)
//
// It is immutable once produced.
type FittedModel struct {
	Intercept  float64 `json:"intercept"`
	Elasticity float64 `json:"elasticity"`
	N          int     `json:"n"`
}

// Category classifies |elasticity| relative to 1.
type Category string

const (
	CategoryElastic     Category = "elastic"
	CategoryInelastic   Category = "inelastic"
	CategoryUnitElastic Category = "unit_elastic"
)

// categoryDescriptions holds the badge copy shown next to the estimate.
var categoryDescriptions = map[Category]string{
	CategoryElastic:     "Elastic: demand changes a lot when price moves.",
	CategoryInelastic:   "Inelastic: demand changes little when price moves.",
	CategoryUnitElastic: "Unit Elastic: demand changes proportionally to price.",
}

// Description returns the human-readable badge text for the category.
func (c Category) Description() string {
	if d, ok := categoryDescriptions[c]; ok {
		return d
	}
	return string(c)
}

// Projection is the fitted demand at a single price.
type Projection struct {
	Price   float64 `json:"price"`
	Qty     float64 `json:"qty"`
	Revenue float64 `json:"revenue"`
}

// Scenario compares the projection at a baseline price against a
// counterfactual price PctChange percent away from it.
type Scenario struct {
	PctChange    float64    `json:"pct_change"`
	Base         Projection `json:"base"`
	New          Projection `json:"new"`
	QtyDelta     float64    `json:"qty_delta"`
	RevenueDelta float64    `json:"revenue_delta"`
}

// ProfitMax is the constant-elasticity (Lerner rule) optimum for a unit cost.
type ProfitMax struct {
	UnitCost float64 `json:"unit_cost"`
	Price    float64 `json:"price"`
	Qty      float64 `json:"qty"`
	Profit   float64 `json:"profit"`
}

// CurvePoint is one point on the fitted demand curve.
type CurvePoint struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// MarkerKind identifies a labelled vertical reference line on the chart.
type MarkerKind string

const (
	MarkerBasePrice MarkerKind = "base_price"
	MarkerNewPrice  MarkerKind = "new_price"
	MarkerProfitMax MarkerKind = "profit_max_price"
)

// Marker is a labelled reference price on the demand chart.
type Marker struct {
	Kind  MarkerKind `json:"kind"`
	Label string     `json:"label"`
	Price float64    `json:"price"`
}

// Curve bundles everything needed to draw the demand chart.
type Curve struct {
	Observed []Observation `json:"observed"`
	Fitted   []CurvePoint  `json:"fitted"`
	Markers  []Marker      `json:"markers"`
}

// Metric is a single dashboard card: a label, its formatted value, and an
// optional formatted delta.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
}

// Analysis is the full result of one recomputation over a dataset. Only the
// fit is mandatory; Scenario and ProfitMax are nil when they could not be
// derived, with the reason recorded in the matching note.
type Analysis struct {
	Fingerprint   string      `json:"fingerprint"`
	Model         FittedModel `json:"model"`
	Category      Category    `json:"category"`
	CategoryLabel string      `json:"category_label"`
	BasePrice     float64     `json:"base_price"`
	Scenario      *Scenario   `json:"scenario,omitempty"`
	ScenarioNote  string      `json:"scenario_note,omitempty"`
	UnitCost      float64     `json:"unit_cost"`
	ProfitMax     *ProfitMax  `json:"profit_max,omitempty"`
	ProfitMaxNote string      `json:"profit_max_note,omitempty"`
	Metrics       []Metric    `json:"metrics"`
}

// AnalyzeParams are the user inputs of one recomputation.
type AnalyzeParams struct {
	PctChange float64
	// UnitCost is the cost per unit for the profit-max solver; nil uses the
	// default share of the base price.
	UnitCost *float64
}

// PctRange bounds the proposed price change, in whole percent.
type PctRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// Contains reports whether pct lies within [Min, Max].
func (r PctRange) Contains(pct int) bool {
	return pct >= r.Min && pct <= r.Max
}
