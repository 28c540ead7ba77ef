package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// Metrics holds the engine collectors.
type Metrics struct {
	Commands     *prometheus.CounterVec
	Propagations prometheus.Counter
	Verdicts     *prometheus.CounterVec
	Duration     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodecalc_commands_total",
				Help: "Total number of edit commands by outcome",
			},
			[]string{"command", "result"},
		),
		Propagations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nodecalc_propagations_total",
				Help: "Total number of propagation passes",
			},
		),
		Verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodecalc_verdicts_total",
				Help: "Verdicts produced by propagation passes, by severity",
			},
			[]string{"state"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nodecalc_propagation_duration_seconds",
				Help:    "Duration of propagation passes including validation",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}
	if reg == nil {
		return m, nil
	}

	// A second engine on the same registry shares the first one's collectors.
	if err := register(reg, &m.Commands); err != nil {
		return nil, err
	}
	if err := register(reg, &m.Propagations); err != nil {
		return nil, err
	}
	if err := register(reg, &m.Verdicts); err != nil {
		return nil, err
	}
	if err := register(reg, &m.Duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		return err
	}
	existing, ok := already.ExistingCollector.(C)
	if !ok {
		return err
	}
	*c = existing
	return nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(_ context.Context, e *domain.CommandEvent) {
			result := "ok"
			if e.Err != nil {
				result = "rejected"
			}
			m.Commands.WithLabelValues(e.Command, result).Inc()
		},
		OnPropagate: func(_ context.Context, e *domain.PropagationEvent) {
			m.Propagations.Inc()
			m.Duration.Observe(e.Duration.Seconds())
		},
		OnVerdict: func(_ context.Context, e *domain.VerdictEvent) {
			m.Verdicts.WithLabelValues(string(e.Verdict.Severity())).Inc()
		},
	}
}
