// Package costs prices upstream model calls.
package costs

import "github.com/pario-ai/namegen/pkg/models"

// Default tariff, in USD.
const (
	DefaultInputPer1K   = 0.00015
	DefaultOutputPer1K  = 0.0006
	DefaultMinCharge    = 0.001
	DefaultFlatEstimate = 0.05
)

// DefaultTariff returns the built-in pricing.
func DefaultTariff() models.Tariff {
	return models.Tariff{
		InputPer1K:   DefaultInputPer1K,
		OutputPer1K:  DefaultOutputPer1K,
		MinCharge:    DefaultMinCharge,
		FlatEstimate: DefaultFlatEstimate,
	}
}

// Calculator computes the charge for one upstream call.
type Calculator struct {
	tariff models.Tariff
}

// NewCalculator creates a Calculator for the given tariff.
func NewCalculator(t models.Tariff) *Calculator {
	return &Calculator{tariff: t}
}

// Tariff returns the configured pricing.
func (c *Calculator) Tariff() models.Tariff { return c.tariff }

// Cost returns the charge for a call. A nil usage means the upstream did not
// report metering and the flat estimate applies.
func (c *Calculator) Cost(u *models.Usage) float64 {
	if u == nil {
		return c.tariff.FlatEstimate
	}
	cost := float64(u.InputTokens)/1000*c.tariff.InputPer1K +
		float64(u.OutputTokens)/1000*c.tariff.OutputPer1K
	if cost < c.tariff.MinCharge {
		return c.tariff.MinCharge
	}
	return cost
}
