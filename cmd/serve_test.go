package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/vitals-cli/internal/diagcache"
	"github.com/terrapulse/vitals-cli/internal/diagnosis"
	"github.com/terrapulse/vitals-cli/internal/history"
	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/internal/quota"
	"github.com/terrapulse/vitals-cli/internal/resilience"
	"github.com/terrapulse/vitals-cli/internal/source"
)

// stubDiagnoser returns a fixed healthy diagnosis for any snapshot.
type stubDiagnoser struct{}

func (stubDiagnoser) Diagnose(_ context.Context, snapshot model.MetricSnapshot) (model.DiagnosisResult, error) {
	return model.DiagnosisResult{
		ID:          "diag-test",
		Organ:       snapshot.Organ,
		Diagnosis:   "Within normal limits.",
		Status:      model.StatusHealthy,
		Provenance:  model.ProvenanceAI,
		GeneratedAt: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
	}, nil
}

// testOrchestrator builds an orchestrator backed entirely by synthetic
// sources so router tests touch no network.
func newTestOrchestrator() *diagnosis.Orchestrator {
	chains := map[model.Organ][]source.Adapter{
		model.OrganLungs: {source.NewSyntheticAdapter(model.OrganLungs)},
		model.OrganHeart: {source.NewSyntheticAdapter(model.OrganHeart)},
		model.OrganSkin:  {source.NewSyntheticAdapter(model.OrganSkin)},
	}
	runner := source.NewRunner(chains, time.Second, resilience.NewBreakerSet(3, time.Minute))
	return diagnosis.NewOrchestrator(runner, quota.NewGovernor(time.Minute, 50), diagcache.New(time.Hour), stubDiagnoser{}, nil)
}

func TestBuildRouter_Health(t *testing.T) {
	router := buildRouter(newTestOrchestrator(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_Diagnosis(t *testing.T) {
	router := buildRouter(newTestOrchestrator(), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/diagnosis/lungs?site=Amazon+Basin", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var result model.DiagnosisResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, model.OrganLungs, result.Organ)
	assert.NotEmpty(t, result.Diagnosis)
}

func TestBuildRouter_DiagnosisUnknownOrgan(t *testing.T) {
	router := buildRouter(newTestOrchestrator(), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/diagnosis/spleen", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBuildRouter_Scan(t *testing.T) {
	router := buildRouter(newTestOrchestrator(), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/scan", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var results []model.DiagnosisResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	assert.Len(t, results, 3)
}

func TestBuildRouter_Quota(t *testing.T) {
	router := buildRouter(newTestOrchestrator(), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/quota", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var status diagnosis.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, 50, status.Quota.DailyCeiling)
}

func TestBuildRouter_HistoryDisabled(t *testing.T) {
	router := buildRouter(newTestOrchestrator(), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestBuildRouter_HistoryEmpty(t *testing.T) {
	st, err := history.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	router := buildRouter(newTestOrchestrator(), st)

	req := httptest.NewRequest(http.MethodGet, "/v1/history?organ=lungs&limit=5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestBuildRouter_HistoryUnknownOrgan(t *testing.T) {
	st, err := history.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	router := buildRouter(newTestOrchestrator(), st)

	req := httptest.NewRequest(http.MethodGet, "/v1/history?organ=gallbladder", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
