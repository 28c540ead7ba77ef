package runtime

import (
	"context"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/graph"
)

// Command names reported in events, logs and observations.
const (
	CmdAddNode         = "add_node"
	CmdRemoveNode      = "remove_node"
	CmdConnect         = "connect"
	CmdDisconnect      = "disconnect"
	CmdSetLiteral      = "set_literal"
	CmdSetInputLiteral = "set_input_literal"
	CmdRecompute       = "recompute"
)

// AddNode creates a node. cfg is decoded into a graph.NodeConfig.
func (e *Engine) AddNode(ctx context.Context, kind domain.NodeKind, cfg map[string]any) (domain.NodeID, error) {
	c, err := graph.DecodeConfig(cfg)
	if err != nil {
		err = domain.Structural(CmdAddNode, string(kind), domain.ErrInvalidConfig, err.Error())
		e.reject(ctx, CmdAddNode, string(kind), err)
		return "", err
	}

	id, err := e.graph.AddNode(kind, c)
	if err != nil {
		e.reject(ctx, CmdAddNode, string(kind), err)
		return "", err
	}
	e.commit(ctx, CmdAddNode, string(id))
	return id, nil
}

// RemoveNode deletes a node and its connections.
func (e *Engine) RemoveNode(ctx context.Context, id domain.NodeID) error {
	if err := e.graph.RemoveNode(id); err != nil {
		e.reject(ctx, CmdRemoveNode, string(id), err)
		return err
	}
	e.commit(ctx, CmdRemoveNode, string(id))
	return nil
}

// Connect links an output port to a free input port. Cycles are accepted
// here and surface as a fatal verdict.
func (e *Engine) Connect(ctx context.Context, from, to domain.PortID) (domain.ConnectionID, error) {
	subject := from.String() + "->" + to.String()
	id, err := e.graph.Connect(from, to)
	if err != nil {
		e.reject(ctx, CmdConnect, subject, err)
		return "", err
	}
	e.commit(ctx, CmdConnect, string(id))
	return id, nil
}

// Disconnect removes a connection.
func (e *Engine) Disconnect(ctx context.Context, id domain.ConnectionID) error {
	if err := e.graph.Disconnect(id); err != nil {
		e.reject(ctx, CmdDisconnect, string(id), err)
		return err
	}
	e.commit(ctx, CmdDisconnect, string(id))
	return nil
}

// SetLiteral edits the literal of a constant or of the sink's input.
func (e *Engine) SetLiteral(ctx context.Context, id domain.NodeID, v domain.Value) error {
	if err := e.graph.SetLiteral(id, v); err != nil {
		e.reject(ctx, CmdSetLiteral, string(id), err)
		return err
	}
	e.commit(ctx, CmdSetLiteral, string(id))
	return nil
}

// SetInputLiteral edits the editable default of one input port.
func (e *Engine) SetInputLiteral(ctx context.Context, id domain.PortID, v domain.Value) error {
	if err := e.graph.SetInputLiteral(id, v); err != nil {
		e.reject(ctx, CmdSetInputLiteral, id.String(), err)
		return err
	}
	e.commit(ctx, CmdSetInputLiteral, id.String())
	return nil
}

// Recompute runs a pass without editing the graph and returns the result.
// Running it twice in a row yields the same values, verdict and display.
func (e *Engine) Recompute(ctx context.Context) domain.Snapshot {
	return e.commit(ctx, CmdRecompute, "")
}

func (e *Engine) reject(ctx context.Context, cmd, subject string, err error) {
	e.logger.Warn("command rejected", "command", cmd, "subject", subject, "error", err)
	e.emitCommand(ctx, cmd, subject, err)
}

// commit finishes an accepted command: pass, revision, events, observers.
func (e *Engine) commit(ctx context.Context, cmd, subject string) domain.Snapshot {
	prevVerdict, prevDisplay := e.verdict, e.display

	start := e.now()
	visited, suspended := e.propagate()
	e.verdict = e.validator.Validate(e.graph)
	e.display = domain.Project(e.graph.Output().Inputs[0].Value, e.verdict)
	elapsed := e.now().Sub(start)

	e.revision++
	e.logger.Debug("command applied", "command", cmd, "subject", subject, "revision", e.revision, "visited", visited)

	verdictChanged := !prevVerdict.Equal(e.verdict)
	if verdictChanged {
		e.logger.Info("verdict changed",
			"revision", e.revision,
			"severity", e.verdict.Severity(),
			"message", e.verdict.Message,
			"offenders", e.verdict.Offenders)
	}

	e.emitCommand(ctx, cmd, subject, nil)
	e.emitPropagate(ctx, visited, suspended, elapsed)
	e.emitVerdict(ctx, verdictChanged)
	e.emitDisplay(ctx, prevDisplay != e.display)

	snap := e.Snapshot()
	e.notify(ctx, domain.Observation{Command: cmd, Snapshot: snap})
	return snap
}
