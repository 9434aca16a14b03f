package domain

import "time"

// DatasetSource selects where the observations for an analysis come from.
type DatasetSource string

const (
	SourceDemo   DatasetSource = "demo"
	SourceInline DatasetSource = "inline"
	SourceUpload DatasetSource = "upload"
	SourceS3     DatasetSource = "s3"
	SourceERP    DatasetSource = "erp"
)

// DatasetRef names a dataset without carrying it, except for inline data.
type DatasetRef struct {
	Source       DatasetSource `json:"source"`
	ID           string        `json:"id,omitempty"`
	Key          string        `json:"key,omitempty"`
	SKU          string        `json:"sku,omitempty"`
	Observations []Observation `json:"observations,omitempty"`
}

// Dataset is an uploaded CSV after parsing.
type Dataset struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Fingerprint  string        `json:"fingerprint"`
	Observations []Observation `json:"observations"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ComparisonRow is one line of the ERP vs AI/ML comparison table.
type ComparisonRow struct {
	Area      string `json:"area"`
	ERPOutput string `json:"erp_output"`
	AIInsight string `json:"ai_insight"`
}
