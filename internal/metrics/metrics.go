package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "trader"

// Service holds the engine's collectors. All methods are safe on a nil receiver so components
// can be used without metrics in tests and CLI commands.
type Service struct {
	Registry *prometheus.Registry

	relayRequests      *prometheus.CounterVec
	relayDuration      *prometheus.HistogramVec
	confirmTransitions *prometheus.CounterVec
	confirmResolution  *prometheus.HistogramVec
	setupRuns          *prometheus.CounterVec
	authorizationsSent prometheus.Counter
}

func New() (*Service, error) {
	s := &Service{
		Registry: prometheus.NewRegistry(),
		relayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Relayed trades by provider and outcome.",
		}, []string{"provider", "outcome"}),
		relayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "duration_seconds",
			Help:      "Time from nonce read until the relay reported an execution hash.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider"}),
		confirmTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "confirmation",
			Name:      "transitions_total",
			Help:      "Confirmation stage transitions by stage and source.",
		}, []string{"stage", "source"}),
		confirmResolution: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "confirmation",
			Name:      "resolution_seconds",
			Help:      "Time until a confirmation session reached a terminal stage.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"stage", "source"}),
		setupRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "setup",
			Name:      "runs_total",
			Help:      "Batched setup runs by outcome.",
		}, []string{"outcome"}),
		authorizationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "authorizations_total",
			Help:      "Relayed trades which carried a one-time delegation authorization.",
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.relayRequests,
		s.relayDuration,
		s.confirmTransitions,
		s.confirmResolution,
		s.setupRuns,
		s.authorizationsSent,
	} {
		if err := s.Registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register collector")
		}
	}

	return s, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}

	return "success"
}

func (s *Service) ObserveRelay(provider string, took time.Duration, withAuthorization bool, err error) {
	if s == nil {
		return
	}

	s.relayRequests.WithLabelValues(provider, outcome(err)).Inc()
	if err == nil {
		s.relayDuration.WithLabelValues(provider).Observe(took.Seconds())
		if withAuthorization {
			s.authorizationsSent.Inc()
		}
	}
}

func (s *Service) ObserveTransition(stage string, source string) {
	if s == nil {
		return
	}

	s.confirmTransitions.WithLabelValues(stage, source).Inc()
}

func (s *Service) ObserveResolution(stage string, source string, took time.Duration) {
	if s == nil {
		return
	}

	s.confirmResolution.WithLabelValues(stage, source).Observe(took.Seconds())
}

func (s *Service) ObserveSetup(optimistic bool, err error) {
	if s == nil {
		return
	}

	label := outcome(err)
	if err == nil && optimistic {
		label = "optimistic"
	}

	s.setupRuns.WithLabelValues(label).Inc()
}
