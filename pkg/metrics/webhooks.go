package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records reconciliation outcomes for inbound payment events.
type WebhookMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// Webhook outcome labels.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeMalformed = "malformed"
	OutcomeOrphan    = "orphan"
	OutcomeError     = "error"
)

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_reconcile_duration_seconds",
		Help:    "Duration of webhook reconciliation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Inbound payment webhook events by outcome.",
	}, []string{"provider", "outcome"})
	reg.MustRegister(duration, outcomes)
	return &WebhookMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// ObserveDuration records the reconcile duration for the named provider.
func (m *WebhookMetrics) ObserveDuration(provider string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
}

// IncOutcome increments the event counter for the provider/outcome pair.
func (m *WebhookMetrics) IncOutcome(provider, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
