package models

// BudgetPeriod names a budget window.
type BudgetPeriod string

const (
	BudgetDaily   BudgetPeriod = "daily"
	BudgetMonthly BudgetPeriod = "monthly"
)

// BudgetLimits are the spend ceilings in USD applied to every caller scope.
type BudgetLimits struct {
	Daily   float64 `json:"daily" yaml:"daily" validate:"gt=0"`
	Monthly float64 `json:"monthly" yaml:"monthly" validate:"gt=0"`
}

// BudgetWindow is the accounting state of one scope for the current day and month.
type BudgetWindow struct {
	Day          string  `json:"day"`
	Month        string  `json:"month"`
	DailySpent   float64 `json:"dailySpent"`
	MonthlySpent float64 `json:"monthlySpent"`
	RequestCount int64   `json:"requestCount"`
}

// BudgetStats shows current spend against the ceilings.
type BudgetStats struct {
	Scope            string  `json:"scope"`
	DailySpent       float64 `json:"dailySpent"`
	MonthlySpent     float64 `json:"monthlySpent"`
	DailyRemaining   float64 `json:"dailyRemaining"`
	MonthlyRemaining float64 `json:"monthlyRemaining"`
	RequestCount     int64   `json:"requestCount"`
	DailyLimit       float64 `json:"dailyLimit"`
	MonthlyLimit     float64 `json:"monthlyLimit"`
}
