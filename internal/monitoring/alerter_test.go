package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydub-ai/reporter-cli/internal/config"
)

func TestEvaluate_FailureRate(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.25})

	snap := &MetricsSnapshot{RunsTotal: 10, RunsFailed: 4, FailureRate: 0.4, LookbackHours: 24}
	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFailureRate, alerts[0].Type)
	assert.Equal(t, "high", alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "40.0%")

	// Below threshold.
	snap = &MetricsSnapshot{RunsTotal: 10, RunsFailed: 1, FailureRate: 0.1}
	assert.Empty(t, a.Evaluate(snap))

	// Too few runs to judge even with a high rate.
	snap = &MetricsSnapshot{RunsTotal: 2, RunsFailed: 2, FailureRate: 1.0}
	assert.Empty(t, a.Evaluate(snap))
}

func TestEvaluate_CostOverrun(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{CostThresholdUSD: 5})

	snap := &MetricsSnapshot{TotalCostUSD: 7.5, LookbackHours: 24}
	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertCostOverrun, alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "$7.50")

	snap = &MetricsSnapshot{TotalCostUSD: 2.0}
	assert.Empty(t, a.Evaluate(snap))
}

func TestEvaluate_ZeroThresholdsDisabled(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{})
	snap := &MetricsSnapshot{RunsTotal: 20, RunsFailed: 20, FailureRate: 1.0, TotalCostUSD: 100}
	assert.Empty(t, a.Evaluate(snap))
}

func TestSendAlerts_PostsWebhook(t *testing.T) {
	var received []Alert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var alert Alert
		require.NoError(t, json.NewDecoder(r.Body).Decode(&alert))
		received = append(received, alert)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: srv.URL})
	alerts := []Alert{
		{Type: AlertCostOverrun, Severity: "high", Message: "cost", Timestamp: time.Now().UTC()},
		{Type: AlertFailureRate, Severity: "high", Message: "failures", Timestamp: time.Now().UTC()},
	}

	sent := a.SendAlerts(context.Background(), alerts)
	assert.Equal(t, 2, sent)
	require.Len(t, received, 2)
	assert.Equal(t, AlertCostOverrun, received[0].Type)
}

func TestSendAlerts_WebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: srv.URL})
	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertCostOverrun, Message: "cost"}})
	assert.Equal(t, 0, sent)
}

func TestSendAlerts_NoWebhookConfigured(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{})
	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertCostOverrun}})
	assert.Equal(t, 0, sent)
}
