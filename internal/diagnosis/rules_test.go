package diagnosis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/terrapulse/vitals-cli/internal/model"
)

func lungsSnap(alerts int) model.MetricSnapshot {
	return model.MetricSnapshot{
		Organ:   model.OrganLungs,
		Metrics: model.LungsMetrics{AlertCount: alerts},
		Locator: "Amazon Basin",
		Source:  "nasa_firms",
	}
}

func TestRuleBased_LungsThresholds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		alerts       int
		wantStatus   model.Status
		wantSeverity model.Severity
	}{
		{1500, model.StatusInflamed, model.SeverityCritical},
		{1001, model.StatusInflamed, model.SeverityCritical},
		{1000, model.StatusInflamed, model.SeverityHigh},
		{501, model.StatusInflamed, model.SeverityHigh},
		{500, model.StatusInflamed, model.SeverityModerate},
		{201, model.StatusInflamed, model.SeverityModerate},
		{200, model.StatusHealthy, model.SeverityNone},
		{50, model.StatusHealthy, model.SeverityNone},
		{0, model.StatusHealthy, model.SeverityNone},
	}
	for _, tc := range cases {
		got := RuleBased(lungsSnap(tc.alerts), now)
		assert.Equal(t, tc.wantStatus, got.Status, "alerts=%d", tc.alerts)
		assert.Equal(t, tc.wantSeverity, got.Severity, "alerts=%d", tc.alerts)
		assert.NotEmpty(t, got.Diagnosis, "alerts=%d", tc.alerts)
		assert.Equal(t, model.ProvenanceRules, got.Provenance)
		assert.Equal(t, now, got.GeneratedAt)
	}
}

func TestRuleBased_HeartThresholds(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := func(ph float64) model.MetricSnapshot {
		return model.MetricSnapshot{Organ: model.OrganHeart, Metrics: model.HeartMetrics{PH: ph}}
	}

	assert.Equal(t, model.SeverityCritical, RuleBased(snap(7.85), now).Severity)
	assert.Equal(t, model.SeverityHigh, RuleBased(snap(7.95), now).Severity)
	assert.Equal(t, model.SeverityModerate, RuleBased(snap(8.02), now).Severity)
	assert.Equal(t, model.StatusHealthy, RuleBased(snap(8.10), now).Status)
}

func TestRuleBased_SkinThresholds(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := func(aqi int) model.MetricSnapshot {
		return model.MetricSnapshot{Organ: model.OrganSkin, Metrics: model.SkinMetrics{AQI: aqi}}
	}

	assert.Equal(t, model.SeverityCritical, RuleBased(snap(310), now).Severity)
	assert.Equal(t, model.SeverityHigh, RuleBased(snap(250), now).Severity)
	assert.Equal(t, model.SeverityModerate, RuleBased(snap(180), now).Severity)
	assert.Equal(t, model.StatusHealthy, RuleBased(snap(95), now).Status)
}

func TestRuleBased_DiagnosisInterpolatesValue(t *testing.T) {
	t.Parallel()

	got := RuleBased(lungsSnap(1500), time.Now())
	assert.Contains(t, got.Diagnosis, "1500")

	heart := RuleBased(model.MetricSnapshot{
		Organ:   model.OrganHeart,
		Metrics: model.HeartMetrics{PH: 7.85},
	}, time.Now())
	assert.Contains(t, heart.Diagnosis, "7.85")
}

func TestRuleBased_Deterministic(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := RuleBased(lungsSnap(700), now)
	b := RuleBased(lungsSnap(700), now)
	assert.Equal(t, a.Diagnosis, b.Diagnosis)
	assert.Equal(t, a.Status, b.Status)
	assert.Equal(t, a.Severity, b.Severity)
}
