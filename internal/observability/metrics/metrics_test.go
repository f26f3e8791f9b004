package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

func TestHTTPMiddlewareLabelsByRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewHTTPServerMetrics(registry, "api")

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/v1/submissions/{id}/runs/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/submissions/"+id+"/runs/latest", nil))
	}

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodGet, "/v1/submissions/{id}/runs/latest", "404"))
	if got != 2 {
		t.Fatalf("expected 2 requests under one route label, got %v", got)
	}
}

func TestOrchestratorMetricsRecordsRun(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewOrchestratorMetrics(registry, "worker")

	m.RunStarted()
	if got := testutil.ToFloat64(m.runsInFlight); got != 1 {
		t.Fatalf("expected 1 run in flight, got %v", got)
	}
	m.StepFinished(domain.StepExtract, 0.2, nil)
	m.StepFinished(domain.StepGrade, 1.5, errors.New("boom"))
	m.RunFinished(domain.RunStatusFailed, domain.PhaseGradingFailed, 1.7)

	if got := testutil.ToFloat64(m.runsInFlight); got != 0 {
		t.Fatalf("expected no runs in flight, got %v", got)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues("worker", "failed", "GradingFailed")); got != 1 {
		t.Fatalf("expected one failed run, got %v", got)
	}
	if count := testutil.CollectAndCount(m.stepDuration); count != 2 {
		t.Fatalf("expected 2 step series, got %d", count)
	}
}

func TestOutboundMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewOutboundMetrics(registry)

	m.ObserveRetry("grading.submission_extract")
	m.ObserveRetry("grading.submission_extract")
	m.ObserveBreakerState("grading.submission_extract", gobreaker.StateOpen)

	if got := testutil.ToFloat64(m.retriesTotal.WithLabelValues("grading.submission_extract")); got != 2 {
		t.Fatalf("expected 2 retries, got %v", got)
	}
	if got := testutil.ToFloat64(m.breakerState.WithLabelValues("grading.submission_extract")); got != 2 {
		t.Fatalf("expected open state, got %v", got)
	}
}
