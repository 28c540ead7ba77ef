package ports

import (
	"context"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// Observer receives the result of every completed command.
// Errors are reported to the engine's logger; they never fail the command.
type Observer interface {
	Observe(ctx context.Context, obs domain.Observation) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, obs domain.Observation) error

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, obs domain.Observation) error {
	return f(ctx, obs)
}
