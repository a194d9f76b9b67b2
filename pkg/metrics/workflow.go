package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records the stock-mutating operations of the two
// warehouse workflows.
type WorkflowMetrics struct {
	duration          *prometheus.HistogramVec
	putaways          prometheus.Counter
	submissions       *prometheus.CounterVec
	insufficientStock prometheus.Counter
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workflow_operation_duration_seconds",
		Help:    "Duration of workflow operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	putaways := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inbound_putaways_total",
		Help: "Inbound items put away into bins.",
	})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_order_submissions_total",
		Help: "Delivery order submissions by outcome.",
	}, []string{"outcome"})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "insufficient_stock_rejections_total",
		Help: "Delivery order submissions rejected for insufficient stock.",
	})
	reg.MustRegister(duration, putaways, submissions, insufficientStock)
	return &WorkflowMetrics{
		duration:          duration,
		putaways:          putaways,
		submissions:       submissions,
		insufficientStock: insufficientStock,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *WorkflowMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncPutaway increments the putaway counter.
func (m *WorkflowMetrics) IncPutaway() {
	if m == nil || m.putaways == nil {
		return
	}
	m.putaways.Inc()
}

// IncSubmission increments the submission counter for the given outcome.
func (m *WorkflowMetrics) IncSubmission(outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncInsufficientStock increments the insufficient-stock rejection counter.
func (m *WorkflowMetrics) IncInsufficientStock() {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
