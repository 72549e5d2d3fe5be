package models

import "time"

// Usage is the token metering reported by an upstream model.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Tariff prices upstream calls in USD.
type Tariff struct {
	InputPer1K   float64 `json:"input_per_1k" yaml:"input_per_1k" validate:"gte=0"`
	OutputPer1K  float64 `json:"output_per_1k" yaml:"output_per_1k" validate:"gte=0"`
	MinCharge    float64 `json:"min_charge" yaml:"min_charge" validate:"gte=0"`
	FlatEstimate float64 `json:"flat_estimate" yaml:"flat_estimate" validate:"gte=0"`
}

// SpendRecord is one paid call persisted by the spend tracker.
type SpendRecord struct {
	ID        int64     `json:"id"`
	Scope     string    `json:"scope"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// SpendSummary aggregates spend per scope.
type SpendSummary struct {
	Scope        string    `json:"scope"`
	RequestCount int       `json:"request_count"`
	TotalSpent   float64   `json:"total_spent"`
	LastAt       time.Time `json:"last_at"`
}
