package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the quality check module.
type Metrics struct {
	Checks      *prometheus.CounterVec
	SuccessRate prometheus.Histogram
}

// New creates a Metrics instance with all quality check metrics registered.
func New() *Metrics {
	return &Metrics{
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shopfloor_quality_checks_total",
			Help: "Quality checks recorded by verdict",
		}, []string{"result"}),
		SuccessRate: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopfloor_quality_check_success_rate",
			Help:    "Distribution of quality check success rates (integer percent)",
			Buckets: []float64{0, 10, 25, 50, 75, 85, 90, 95, 100},
		}),
	}
}

// ObserveCheck records a completed quality check.
func (m *Metrics) ObserveCheck(result string, successRate int) {
	if m == nil {
		return
	}
	m.Checks.WithLabelValues(result).Inc()
	m.SuccessRate.Observe(float64(successRate))
}
