package fetch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	transportPrimary  = "primary"
	transportFallback = "fallback"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

type metrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "painel",
			Subsystem: "fetch",
			Name:      "attempts_total",
			Help:      "Dashboard fetch attempts by transport and outcome.",
		}, []string{"transport", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "painel",
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Dashboard fetch latency by transport.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport"}),
	}
	if reg == nil {
		return m
	}
	m.attempts = register(reg, m.attempts)
	m.duration = register(reg, m.duration)
	return m
}

// register adds c to reg, reusing an identical collector registered by
// another client.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) observe(transport string, err error, seconds float64) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	m.attempts.WithLabelValues(transport, outcome).Inc()
	m.duration.WithLabelValues(transport).Observe(seconds)
}
