package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records approval workflow decisions and their latencies.
type WorkflowMetrics struct {
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_decisions_total",
		Help: "Approval decisions applied to pending requests.",
	}, []string{"kind", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workflow_decision_duration_seconds",
		Help:    "Duration of decision transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	reg.MustRegister(decisions, duration)
	return &WorkflowMetrics{
		decisions: decisions,
		duration:  duration,
	}
}

// IncDecision increments the decision counter for the request kind and outcome.
func (w *WorkflowMetrics) IncDecision(kind, outcome string) {
	if w == nil || w.decisions == nil {
		return
	}
	w.decisions.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// ObserveDecision records how long a decision transaction took.
func (w *WorkflowMetrics) ObserveDecision(kind string, elapsed time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(kind)).Observe(elapsed.Seconds())
}
