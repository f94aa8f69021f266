package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/remnawizard/pkg/domain"
)

const namespace = "remnawizard"

// Metrics holds the collectors fed by the wizard hooks.
type Metrics struct {
	registry *prometheus.Registry

	transitions *prometheus.CounterVec
	submissions *prometheus.CounterVec
	denials     prometheus.Counter
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a fresh registry that also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Handled wizard actions by step and result.",
			},
			[]string{"from", "result"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Provisioning attempts by outcome.",
			},
			[]string{"outcome"},
		),
		denials: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "denials_total",
				Help:      "Actions refused by the allow-list.",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submission_duration_seconds",
				Help:      "Latency of the provisioning call.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		m.transitions,
		m.submissions,
		m.denials,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is the gatherer to expose over HTTP.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns callbacks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(string(e.From), e.Result).Inc()
		},
		OnSubmit: func(_ context.Context, e *domain.SubmitEvent) {
			m.submissions.WithLabelValues(e.Outcome).Inc()
			m.duration.WithLabelValues(e.Outcome).Observe(e.Duration.Seconds())
		},
		OnDenied: func(context.Context, *domain.EventBase) {
			m.denials.Inc()
		},
	}
}
