package models

// Name is one generated name candidate.
type Name struct {
	Name               string `json:"name"`
	Romanization       string `json:"romanization"`
	Meaning            string `json:"meaning"`
	Pronunciation      string `json:"pronunciation,omitempty"`
	CulturalBackground string `json:"culturalBackground,omitempty"`
	Score              int    `json:"score"`
}

// Envelope is the result of one generation call.
type Envelope struct {
	Names          []Name  `json:"names"`
	TotalCost      float64 `json:"totalCost"`
	GenerationTime int64   `json:"generationTime"`
	RequestID      string  `json:"requestId"`

	// Degraded is set when Names came from the fallback catalog.
	Degraded bool   `json:"-"`
	Cause    string `json:"-"`
}
