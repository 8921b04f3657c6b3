package models

import "time"

// Result kinds a custom metric query can produce.
const (
	KindScalar = "single_value"
	KindTable  = "table"
)

// CustomMetricDefinition is one saved dashboard metric. ID is derived from
// the name (lowercased, spaces to underscores) and is the storage key.
type CustomMetricDefinition struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Icon          string    `json:"icon"`
	ColorTag      string    `json:"color"`
	Description   string    `json:"description"`
	QueryTemplate string    `json:"query"`
	ResultKind    string    `json:"type"`
	CreatedAt     time.Time `json:"created_date"`
}

// ScalarResult is a single-value metric outcome.
type ScalarResult struct {
	Value interface{} `json:"value"`
}

// TableResult is a multi-row or multi-column metric outcome.
type TableResult struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// MetricResult is the tagged union returned by metric execution: exactly
// one of Scalar or Table is set, indicated by Kind.
type MetricResult struct {
	Kind   string        `json:"kind"`
	Scalar *ScalarResult `json:"scalar,omitempty"`
	Table  *TableResult  `json:"table,omitempty"`
}
