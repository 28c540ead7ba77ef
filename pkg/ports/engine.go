package ports

import (
	"context"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// Engine is the command and observation surface of a calculation graph.
// Every command runs validation and propagation before it returns, so the
// snapshot read afterwards always reflects that command.
type Engine interface {
	// AddNode creates a node of the given kind. cfg may be nil.
	AddNode(ctx context.Context, kind domain.NodeKind, cfg map[string]any) (domain.NodeID, error)

	// RemoveNode deletes a node and its connections. The output sink is protected.
	RemoveNode(ctx context.Context, id domain.NodeID) error

	// Connect links an output port to a free input port.
	Connect(ctx context.Context, from, to domain.PortID) (domain.ConnectionID, error)

	// Disconnect removes a connection.
	Disconnect(ctx context.Context, id domain.ConnectionID) error

	// SetLiteral edits the literal of a constant or of the sink's editable input.
	SetLiteral(ctx context.Context, id domain.NodeID, v domain.Value) error

	// SetInputLiteral edits the editable default of a single input port.
	SetInputLiteral(ctx context.Context, id domain.PortID, v domain.Value) error

	// Recompute runs a propagation pass without editing the graph.
	Recompute(ctx context.Context) (domain.Snapshot, error)

	// Snapshot returns a copy of the current observable state.
	Snapshot(ctx context.Context) (domain.Snapshot, error)

	// Apply runs fn and returns the snapshot it left behind, with no other
	// command interleaved. fn must only use the engine it is given.
	Apply(ctx context.Context, fn func(Engine) error) (domain.Snapshot, error)
}
