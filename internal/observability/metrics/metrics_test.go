package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCounters(t *testing.T) {
	registry := NewRegistry()
	m := New(registry)

	m.RecordActivation("activated")
	m.RecordActivation("activated")
	m.RecordActivation("limit_exceeded")
	m.RecordInvite("invited")
	m.RecordLicenseIssued("Pro")
	m.RecordWebhookEvent("payment.completed", "fulfilled")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.activations.WithLabelValues("activated")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.activations.WithLabelValues("limit_exceeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invites.WithLabelValues("invited")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.licensesIssued.WithLabelValues("pro")), "labels are lowercased")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.webhookEvents.WithLabelValues("payment.completed", "fulfilled")))
}

func TestRecordOnNilMetrics(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.RecordActivation("activated")
		m.RecordInvite("invited")
		m.RecordLicenseIssued("pro")
		m.RecordWebhookEvent("payment.completed", "fulfilled")
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "activated", normalize("  Activated "))
	assert.Equal(t, "unknown", normalize(""))
	assert.Equal(t, "unknown", normalize("   "))
}
