// Package runtime owns a calculation graph and keeps its values, verdict and
// sink display consistent after every edit command.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/nodecalc/internal/logging"
	"github.com/aretw0/nodecalc/internal/validator"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/graph"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// Engine is the propagation core. Each command mutates the graph, runs a
// propagation pass, validates, projects the sink display and notifies
// observers before it returns.
//
// Engine is not safe for concurrent use.
type Engine struct {
	graph     *graph.Graph
	validator *validator.Validator
	hooks     domain.LifecycleHooks
	observers []ports.Observer
	logger    *slog.Logger
	now       func() time.Time

	revision uint64
	verdict  domain.Verdict
	display  domain.Display
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithObservers appends observers notified after every completed command.
func WithObservers(observers ...ports.Observer) EngineOption {
	return func(e *Engine) {
		e.observers = append(e.observers, observers...)
	}
}

// WithValidator replaces the default validator.
func WithValidator(v *validator.Validator) EngineOption {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over a fresh graph holding only the output sink.
// The sink display stays Unset until the first command completes.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		graph:     graph.New(),
		validator: validator.New(),
		logger:    logging.NewNop(),
		now:       time.Now,
		verdict:   domain.Valid(),
		display:   domain.Display{State: domain.DisplayUnset},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a copy of the current observable state.
func (e *Engine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Revision:    e.revision,
		Verdict:     e.verdict,
		Display:     e.display,
		Nodes:       e.graph.Nodes(),
		Connections: e.graph.Connections(),
	}.Clone()
}

// Verdict returns the verdict of the last pass.
func (e *Engine) Verdict() domain.Verdict { return e.verdict }

// Display returns the sink display of the last pass.
func (e *Engine) Display() domain.Display { return e.display }

// Revision counts completed passes.
func (e *Engine) Revision() uint64 { return e.revision }

// Subscribe adds an observer after construction.
func (e *Engine) Subscribe(o ports.Observer) {
	e.observers = append(e.observers, o)
}

func (e *Engine) notify(ctx context.Context, obs domain.Observation) {
	for _, o := range e.observers {
		if err := o.Observe(ctx, obs); err != nil {
			e.logger.Error("observer failed", "command", obs.Command, "revision", obs.Snapshot.Revision, "error", err)
		}
	}
}
