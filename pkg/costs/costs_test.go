package costs

import (
	"math"
	"testing"

	"github.com/pario-ai/namegen/pkg/models"
)

func TestCost(t *testing.T) {
	c := NewCalculator(DefaultTariff())

	tests := []struct {
		name  string
		usage *models.Usage
		want  float64
	}{
		{"no metering", nil, 0.05},
		{"zero usage hits floor", &models.Usage{}, 0.001},
		{"small call hits floor", &models.Usage{InputTokens: 300, OutputTokens: 400}, 0.001},
		{"linear above floor", &models.Usage{InputTokens: 10000, OutputTokens: 5000}, 0.0015 + 0.003},
		{"output only", &models.Usage{OutputTokens: 2000}, 0.0012},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Cost(tt.usage)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Cost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCostCustomTariff(t *testing.T) {
	c := NewCalculator(models.Tariff{InputPer1K: 1, OutputPer1K: 2, MinCharge: 0, FlatEstimate: 0.5})

	if got := c.Cost(&models.Usage{InputTokens: 500, OutputTokens: 500}); got != 1.5 {
		t.Errorf("expected 1.5, got %v", got)
	}
	if got := c.Cost(nil); got != 0.5 {
		t.Errorf("expected flat 0.5, got %v", got)
	}
	if c.Tariff().OutputPer1K != 2 {
		t.Error("tariff not retained")
	}
}
