// Package metrics exposes Prometheus counters for the claim desk.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the claim desk collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	// Claims submitted by claim type
	ClaimsSubmitted *prometheus.CounterVec

	// Status changes by target status
	StatusTransitions *prometheus.CounterVec

	// Approvals refused because mandatory documents were missing
	ApprovalsBlocked prometheus.Counter

	// Checklist exports by format
	ChecklistExports *prometheus.CounterVec

	EvaluateLatency prometheus.Histogram
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ClaimsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_desk_claims_submitted_total",
			Help: "Total claims submitted by claim type",
		}, []string{"claim_type"}),

		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_desk_status_transitions_total",
			Help: "Total claim status transitions by target status",
		}, []string{"status"}),

		ApprovalsBlocked: factory.NewCounter(prometheus.CounterOpts{
			Name: "claims_desk_approvals_blocked_total",
			Help: "Total approvals refused because mandatory documents were missing",
		}),

		ChecklistExports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_desk_checklist_exports_total",
			Help: "Total checklist exports by format",
		}, []string{"format"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "claims_desk_completeness_evaluate_duration_seconds",
			Help:    "Duration of claim load plus completeness evaluation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncrementSubmitted records a submitted claim
func (m *Metrics) IncrementSubmitted(claimType string) {
	if m != nil {
		m.ClaimsSubmitted.WithLabelValues(claimType).Inc()
	}
}

// IncrementTransition records a status change
func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(status).Inc()
	}
}

// IncrementApprovalBlocked records an approval refused for missing documents
func (m *Metrics) IncrementApprovalBlocked() {
	if m != nil {
		m.ApprovalsBlocked.Inc()
	}
}

// IncrementExport records a checklist export
func (m *Metrics) IncrementExport(format string) {
	if m != nil {
		m.ChecklistExports.WithLabelValues(format).Inc()
	}
}

// ObserveEvaluateLatency records one completeness evaluation
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
