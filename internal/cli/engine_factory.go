package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/pkg/observability"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// createEngine initializes an engine with standard CLI conventions.
func createEngine(opts Options, logger *slog.Logger, reg prometheus.Registerer, observers ...ports.Observer) (*nodecalc.Engine, error) {
	engineOpts := []nodecalc.Option{
		nodecalc.WithLogger(logger),
	}

	if opts.Name != "" {
		engineOpts = append(engineOpts, nodecalc.WithName(opts.Name))
	}

	// Debug mode traces every command and pass.
	if opts.Debug {
		engineOpts = append(engineOpts, nodecalc.WithLifecycleHooks(observability.LogHooks(logger)))
	}

	if reg != nil {
		engineOpts = append(engineOpts, nodecalc.WithMetrics(reg))
	}

	for _, o := range observers {
		engineOpts = append(engineOpts, nodecalc.WithObserver(o))
	}

	engine, err := nodecalc.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
