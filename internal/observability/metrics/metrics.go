// Package metrics exposes application-level Prometheus instruments.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the counters the services record into.
type Metrics struct {
	activations    *prometheus.CounterVec
	invites        *prometheus.CounterVec
	licensesIssued *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
}

// NewRegistry builds the process registry with the standard collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// New registers the application counters on the given registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keygate_activations_total",
			Help: "License activation attempts by result.",
		}, []string{"result"}),
		invites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keygate_team_invites_total",
			Help: "Team invite attempts by outcome.",
		}, []string{"outcome"}),
		licensesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keygate_licenses_issued_total",
			Help: "Licenses issued by plan.",
		}, []string{"plan"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keygate_webhook_events_total",
			Help: "Payment webhook events by type and result.",
		}, []string{"event_type", "result"}),
	}
	registry.MustRegister(m.activations, m.invites, m.licensesIssued, m.webhookEvents)
	return m
}

// RecordActivation increments activation counts. Result is one of
// "activated", "existing", "limit_exceeded", "rejected" or "error".
func (m *Metrics) RecordActivation(result string) {
	if m == nil {
		return
	}
	m.activations.WithLabelValues(normalize(result)).Inc()
}

// RecordInvite increments invite counts by outcome.
func (m *Metrics) RecordInvite(outcome string) {
	if m == nil {
		return
	}
	m.invites.WithLabelValues(normalize(outcome)).Inc()
}

// RecordLicenseIssued increments issued-license counts by plan.
func (m *Metrics) RecordLicenseIssued(planType string) {
	if m == nil {
		return
	}
	m.licensesIssued.WithLabelValues(normalize(planType)).Inc()
}

// RecordWebhookEvent increments webhook event counts.
func (m *Metrics) RecordWebhookEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalize(eventType), normalize(result)).Inc()
}

func normalize(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "unknown"
	}
	return v
}
