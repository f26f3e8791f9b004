package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

// OrchestratorMetrics records saga runs and their steps.
type OrchestratorMetrics struct {
	service string

	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	stepDuration *prometheus.HistogramVec
	runsInFlight prometheus.Gauge
}

func NewOrchestratorMetrics(registry prometheus.Registerer, service string) *OrchestratorMetrics {
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "runs_total",
			Help:      "Finished submission runs by status and failed phase.",
		},
		[]string{"service", "status", "phase"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "run_duration_seconds",
			Help:      "Submission run duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	stepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "step_duration_seconds",
			Help:      "Saga step duration in seconds by step and outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "step", "outcome"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "runs_in_flight",
			Help:      "Number of submission runs currently executing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(runsTotal, runDuration, stepDuration, runsInFlight)

	return &OrchestratorMetrics{
		service:      service,
		runsTotal:    runsTotal,
		runDuration:  runDuration,
		stepDuration: stepDuration,
		runsInFlight: runsInFlight,
	}
}

func (m *OrchestratorMetrics) RunStarted() {
	m.runsInFlight.Inc()
}

func (m *OrchestratorMetrics) StepFinished(step domain.SagaStep, seconds float64, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.stepDuration.WithLabelValues(m.service, string(step), outcome).Observe(seconds)
}

func (m *OrchestratorMetrics) RunFinished(status domain.RunStatus, phase domain.Phase, seconds float64) {
	m.runsInFlight.Dec()

	phaseLabel := string(phase)
	if phaseLabel == "" {
		phaseLabel = "none"
	}
	m.runsTotal.WithLabelValues(m.service, string(status), phaseLabel).Inc()
	m.runDuration.WithLabelValues(m.service, string(status)).Observe(seconds)
}
