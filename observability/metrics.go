package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"ashforge/core/events"
)

// ClaimMetrics records claim and accrual activity for the gateway.
type ClaimMetrics struct {
	Claims  *prometheus.CounterVec
	Latency *prometheus.HistogramVec
	Ash     *prometheus.CounterVec
	Events  *prometheus.CounterVec
}

var (
	claimMetricsOnce sync.Once
	claimRegistry    *ClaimMetrics
)

// Metrics returns the lazily-initialised metrics registry.
func Metrics() *ClaimMetrics {
	claimMetricsOnce.Do(func() {
		claimRegistry = &ClaimMetrics{
			Claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ashforge",
				Subsystem: "claims",
				Name:      "attempts_total",
				Help:      "Claim attempts segmented by variant and outcome.",
			}, []string{"variant", "outcome"}),
			Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "ashforge",
				Subsystem: "claims",
				Name:      "attempt_duration_seconds",
				Help:      "Latency distribution for claim attempts.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"variant"}),
			Ash: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ashforge",
				Subsystem: "ember",
				Name:      "ash_operations_total",
				Help:      "Ember operations segmented by kind and outcome.",
			}, []string{"kind", "outcome"}),
			Events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ashforge",
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Engine events segmented by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(claimRegistry.Claims, claimRegistry.Latency, claimRegistry.Ash, claimRegistry.Events)
	})
	return claimRegistry
}

// EventEmitter counts engine events by type. It is fanned out alongside the
// slog emitter in the daemon so the /metrics endpoint reflects on-ledger
// activity, not just HTTP traffic.
type EventEmitter struct{}

// Emit implements events.Emitter.
func (EventEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	Metrics().Events.WithLabelValues(evt.EventType()).Inc()
}
