package models

import "time"

// Outcome classifies how a generation call ended.
type Outcome string

const (
	OutcomeGenerated Outcome = "generated"
	OutcomeDegraded  Outcome = "degraded"
	OutcomeRejected  Outcome = "rejected"
)

// GenerationEvent records one orchestrator call for the event log.
// Scope is the raw caller scope; the event log stores only its hash and prefix.
type GenerationEvent struct {
	RequestID    string    `json:"request_id"`
	Scope        string    `json:"-"`
	ScopeHash    string    `json:"scope_hash"`
	ScopePrefix  string    `json:"scope_prefix"`
	Outcome      Outcome   `json:"outcome"`
	Cause        string    `json:"cause,omitempty"`
	Model        string    `json:"model,omitempty"`
	Style        Style     `json:"style"`
	NameCount    int       `json:"name_count"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost"`
	LatencyMs    int64     `json:"latency_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditConfig controls the generation event log.
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DBPath        string `yaml:"db_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// EventQueryOpts specifies filters for querying generation events.
type EventQueryOpts struct {
	Outcome     Outcome
	Since       time.Time
	ScopePrefix string
	RequestID   string
	Limit       int
}

// EventStat holds aggregate event counts for an outcome/day combination.
type EventStat struct {
	Outcome Outcome
	Day     string
	Count   int
}
