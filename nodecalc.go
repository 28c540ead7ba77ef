package nodecalc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/nodecalc/internal/logging"
	"github.com/aretw0/nodecalc/internal/runtime"
	"github.com/aretw0/nodecalc/internal/validator"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/observability"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// Rule is a pluggable validation policy evaluated after the loop check.
type Rule = validator.Rule

// DefaultRules returns the value rules used when WithRules is not given.
func DefaultRules() []Rule { return validator.DefaultRules() }

// Engine is the high-level entry point for the nodecalc library.
// It wraps the internal runtime and provides a simplified API for consumers.
//
// Engine is not safe for concurrent use; wrap it with NewSerial for that.
type Engine struct {
	runtime   *runtime.Engine
	hooks     []domain.LifecycleHooks
	observers []ports.Observer
	rules     []Rule
	registry  prometheus.Registerer
	metrics   *observability.Metrics
	logger    *slog.Logger
	Name      string
}

var _ ports.Engine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks. It may be given more than once.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver subscribes an observer to every completed command.
func WithObserver(o ports.Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// WithRules replaces the default value rules. The loop check always runs first.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithMetrics registers the engine's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithName labels the engine in logs.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes an engine over an empty graph holding only the output sink.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("graph", eng.Name)
	}

	hooks := eng.hooks
	if eng.registry != nil {
		m, err := observability.NewMetrics(eng.registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		eng.metrics = m
		hooks = append(hooks, m.Hooks())
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithObservers(eng.observers...),
		runtime.WithValidator(validator.New(eng.rules...)),
	}
	if len(hooks) > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithLifecycleHooks(domain.ChainHooks(hooks...)))
	}

	eng.runtime = runtime.NewEngine(runtimeOpts...)
	return eng, nil
}

// MustNew is New for callers that pass no fallible options.
func MustNew(opts ...Option) *Engine {
	eng, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return eng
}

// Metrics returns the collectors registered by WithMetrics, or nil.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Subscribe adds an observer after construction.
func (e *Engine) Subscribe(o ports.Observer) {
	e.runtime.Subscribe(o)
}

// AddNode creates a node of the given kind. cfg keys: name, literal,
// defaults, no_default.
func (e *Engine) AddNode(ctx context.Context, kind domain.NodeKind, cfg map[string]any) (domain.NodeID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.runtime.AddNode(ctx, kind, cfg)
}

// RemoveNode deletes a node and every connection touching it.
func (e *Engine) RemoveNode(ctx context.Context, id domain.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.runtime.RemoveNode(ctx, id)
}

// Connect links an output port to a free input port.
func (e *Engine) Connect(ctx context.Context, from, to domain.PortID) (domain.ConnectionID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.runtime.Connect(ctx, from, to)
}

// Disconnect removes a connection.
func (e *Engine) Disconnect(ctx context.Context, id domain.ConnectionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.runtime.Disconnect(ctx, id)
}

// SetLiteral edits the literal of a constant or of the sink's input.
func (e *Engine) SetLiteral(ctx context.Context, id domain.NodeID, v domain.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.runtime.SetLiteral(ctx, id, v)
}

// SetInputLiteral edits the editable default of one input port.
func (e *Engine) SetInputLiteral(ctx context.Context, id domain.PortID, v domain.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.runtime.SetInputLiteral(ctx, id, v)
}

// Recompute runs a propagation pass without editing the graph.
func (e *Engine) Recompute(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	return e.runtime.Recompute(ctx), nil
}

// Snapshot returns a copy of the current observable state.
func (e *Engine) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	return e.runtime.Snapshot(), nil
}

// Apply runs fn against e and returns the resulting snapshot.
// A failing fn still yields the snapshot, since rejected commands leave the
// graph unchanged.
func (e *Engine) Apply(ctx context.Context, fn func(ports.Engine) error) (domain.Snapshot, error) {
	err := fn(e)
	snap, serr := e.Snapshot(ctx)
	if err != nil {
		return snap, err
	}
	return snap, serr
}

// Verdict returns the verdict of the last completed command.
func (e *Engine) Verdict() domain.Verdict {
	return e.runtime.Verdict()
}

// Display returns the sink display of the last completed command.
func (e *Engine) Display() domain.Display {
	return e.runtime.Display()
}
