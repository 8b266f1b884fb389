package models

import "time"

// Dashboard rows are returned as the warehouse shaped them (upper-case column
// names); only the derived views below have their own types.

// ModelPerformance is the scored-model confusion matrix with derived rates,
// all rates in percent.
type ModelPerformance struct {
	TruePositives  int64   `json:"TRUE_POSITIVES"`
	FalsePositives int64   `json:"FALSE_POSITIVES"`
	FalseNegatives int64   `json:"FALSE_NEGATIVES"`
	TrueNegatives  int64   `json:"TRUE_NEGATIVES"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
	Accuracy       float64 `json:"accuracy"`
}

// MapPoint is one city marker on the fraud map.
type MapPoint struct {
	City      string  `json:"city"`
	Count     int64   `json:"count"`
	FraudRate float64 `json:"fraudRate"`
}

// MapData is the body of GET /map-data.
type MapData struct {
	Data []MapPoint `json:"data"`
}

// CustomerList is the body of GET /customers for search and top-risk listings.
type CustomerList struct {
	Customers []map[string]any `json:"customers"`
}

// CustomerTransactions is the body of GET /customers?id=.
type CustomerTransactions struct {
	Transactions []map[string]any `json:"transactions"`
}

// ExecuteSQLRequest is the body of POST /execute-sql.
type ExecuteSQLRequest struct {
	SQL string `json:"sql"`
}

// ExecuteSQLResponse is the body returned by POST /execute-sql.
type ExecuteSQLResponse struct {
	Results []map[string]any `json:"results"`
}

// AlertFilter selects fraud alerts.
type AlertFilter struct {
	PendingOnly bool
	Limit       int
}

// PeriodRange is an inclusive date range.
type PeriodRange struct {
	Start string
	End   string
}

// FraudReport is the exported fraud summary.
type FraudReport struct {
	GeneratedAt     time.Time        `json:"generatedAt"`
	Summary         map[string]any   `json:"summary"`
	FraudByCategory []map[string]any `json:"fraudByCategory"`
	FraudByCity     []map[string]any `json:"fraudByCity"`
}
