package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahrav/go-grader/internal/healthcheck"
)

const namespace = "grader"

// Metrics exposes Prometheus collectors for invocations and self-test cases.
type Metrics struct {
	invocations      *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	healthcheckCases *prometheus.CounterVec
}

// MustNewMetrics registers the collectors with reg, or the default
// registerer when reg is nil. Collectors already registered under the same
// name are reused; any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Invocations handled, by command and outcome.",
		}, []string{"command", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Wall time of an invocation, by command.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"command"}),
		healthcheckCases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "healthcheck_cases_total",
			Help:      "Self-test cases run, by outcome.",
		}, []string{"outcome"}),
	}

	m.invocations = register(reg, m.invocations)
	m.duration = register(reg, m.duration)
	m.healthcheckCases = register(reg, m.healthcheckCases)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// RecordInvocation implements dispatch.Metrics.
func (m *Metrics) RecordInvocation(command, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(command, outcome).Inc()
	m.duration.WithLabelValues(command).Observe(d.Seconds())
}

// ObserveCase counts one self-test case. It is a healthcheck.Observer.
func (m *Metrics) ObserveCase(res healthcheck.CaseResult) {
	if m == nil {
		return
	}
	m.healthcheckCases.WithLabelValues(string(res.Outcome)).Inc()
}
