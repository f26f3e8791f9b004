package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// OutboundMetrics tracks retries and breaker state of calls to backend services.
type OutboundMetrics struct {
	retriesTotal *prometheus.CounterVec
	breakerState *prometheus.GaugeVec
}

func NewOutboundMetrics(registry prometheus.Registerer) *OutboundMetrics {
	retriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbound",
			Name:      "retries_total",
			Help:      "Retried outbound calls by operation.",
		},
		[]string{"operation"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "outbound",
			Name:      "circuit_state",
			Help:      "Circuit breaker state by operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"operation"},
	)

	registry.MustRegister(retriesTotal, breakerState)

	return &OutboundMetrics{
		retriesTotal: retriesTotal,
		breakerState: breakerState,
	}
}

func (m *OutboundMetrics) ObserveRetry(operation string) {
	m.retriesTotal.WithLabelValues(operation).Inc()
}

func (m *OutboundMetrics) ObserveBreakerState(operation string, state gobreaker.State) {
	value := 0.0
	switch state {
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	m.breakerState.WithLabelValues(operation).Set(value)
}
