package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the work order module.
type Metrics struct {
	Created            prometheus.Counter
	Allocations        *prometheus.CounterVec
	Completed          prometheus.Counter
	AllocationDuration prometheus.Histogram
}

// New creates a Metrics instance with all work order metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopfloor_work_orders_created_total",
			Help: "Total number of work orders created",
		}),
		Allocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shopfloor_work_order_allocations_total",
			Help: "Material allocation attempts by outcome",
		}, []string{"outcome"}),
		Completed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopfloor_work_orders_completed_total",
			Help: "Total number of work orders completed",
		}),
		AllocationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopfloor_work_order_allocation_duration_seconds",
			Help:    "Duration of AllocateMaterials operations (validate + deduct path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a successful work order creation.
func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.Created.Inc()
}

// ObserveAllocation records an allocation attempt's outcome and duration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAllocation(start time.Time, outcome string) {
	if m == nil {
		return
	}
	m.Allocations.WithLabelValues(outcome).Inc()
	m.AllocationDuration.Observe(time.Since(start).Seconds())
}

// IncrementCompleted records a successful work order completion.
func (m *Metrics) IncrementCompleted() {
	if m == nil {
		return
	}
	m.Completed.Inc()
}
