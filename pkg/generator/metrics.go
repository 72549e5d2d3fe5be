package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus collectors for the orchestrator.
type Metrics struct {
	generations      *prometheus.CounterVec
	degradations     *prometheus.CounterVec
	budgetRejections *prometheus.CounterVec
	spend            prometheus.Counter
	duration         *prometheus.HistogramVec
}

// NewMetrics registers the orchestrator collectors with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "namegen_generations_total",
				Help: "Total number of generation calls by outcome",
			},
			[]string{"outcome"},
		),
		degradations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "namegen_degradations_total",
				Help: "Total number of calls served from the fallback set, by cause",
			},
			[]string{"cause"},
		),
		budgetRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "namegen_budget_rejections_total",
				Help: "Total number of calls rejected by the budget ledger",
			},
			[]string{"period"},
		),
		spend: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "namegen_spend_usd_total",
				Help: "Total upstream spend recorded, in USD",
			},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "namegen_generation_duration_seconds",
				Help:    "Duration of generation calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) observe(outcome string, seconds float64) {
	m.generations.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(seconds)
}
