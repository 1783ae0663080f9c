package source

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the selector.
type Metrics struct {
	Attempts            *prometheus.CounterVec
	FallbackTransitions prometheus.Counter
	ConsecutiveFailures prometheus.Gauge
}

// NewMetrics registers the selector metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Attempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "retailpulse",
			Subsystem: "source",
			Name:      "attempts_total",
			Help:      "Fetch attempts per source tier and outcome.",
		}, []string{"source", "outcome"}),
		FallbackTransitions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "retailpulse",
			Subsystem: "source",
			Name:      "fallback_transitions_total",
			Help:      "Times the selector flipped into fallback mode.",
		}),
		ConsecutiveFailures: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "retailpulse",
			Subsystem: "source",
			Name:      "consecutive_failures",
			Help:      "Current consecutive primary-source failure count.",
		}),
	}
}
