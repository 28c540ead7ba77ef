package script

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// Session applies commands to an engine and remembers the aliases they
// introduce. The output sink is always reachable as "output".
type Session struct {
	engine ports.Engine
	nodes  map[string]domain.NodeID
	conns  map[string]domain.ConnectionID
}

// Result is the outcome of one applied command.
type Result struct {
	Command    Command
	Node       domain.NodeID       // set by add
	Connection domain.ConnectionID // set by connect
	Snapshot   domain.Snapshot
}

// NewSession creates a session over engine.
func NewSession(engine ports.Engine) *Session {
	return &Session{
		engine: engine,
		nodes:  map[string]domain.NodeID{"output": "output"},
		conns:  map[string]domain.ConnectionID{},
	}
}

// Node resolves a node alias. Unknown aliases are taken as node ids.
func (s *Session) Node(ref string) domain.NodeID {
	if id, ok := s.nodes[ref]; ok {
		return id
	}
	return domain.NodeID(ref)
}

// Connection resolves a connection alias. Unknown aliases are taken as ids.
func (s *Session) Connection(ref string) domain.ConnectionID {
	if id, ok := s.conns[ref]; ok {
		return id
	}
	return domain.ConnectionID(ref)
}

// Aliases returns the node aliases defined so far, excluding "output".
func (s *Session) Aliases() map[string]domain.NodeID {
	out := make(map[string]domain.NodeID, len(s.nodes))
	for k, v := range s.nodes {
		if k != "output" {
			out[k] = v
		}
	}
	return out
}

// Port resolves a port reference in one of three forms: "node:in:0" (the
// raw id, node part may be an alias), "node.name" or "node.index", and a bare
// "node" meaning its first port of the given kind. An empty kind accepts
// either direction, outputs first.
func (s *Session) Port(snap domain.Snapshot, ref string, kind domain.PortKind) (domain.PortID, error) {
	if strings.Contains(ref, ":") {
		id, err := domain.ParsePortID(ref)
		if err != nil {
			return domain.PortID{}, err
		}
		id.Node = s.Node(string(id.Node))
		return id, nil
	}

	nodeRef, portRef, hasPort := strings.Cut(ref, ".")
	nodeID := s.Node(nodeRef)
	n, ok := snap.Node(nodeID)
	if !ok {
		return domain.PortID{}, domain.Structural("resolve", ref, domain.ErrUnknownNode, "")
	}

	kinds := []domain.PortKind{kind}
	if kind == "" {
		kinds = []domain.PortKind{domain.PortOutput, domain.PortInput}
	}
	for _, k := range kinds {
		switch {
		case !hasPort:
			id := domain.PortID{Node: nodeID, Kind: k, Index: 0}
			if _, ok := n.Port(id); ok {
				return id, nil
			}
		default:
			if i, err := strconv.Atoi(portRef); err == nil {
				id := domain.PortID{Node: nodeID, Kind: k, Index: i}
				if _, ok := n.Port(id); ok {
					return id, nil
				}
				continue
			}
			if id, ok := n.PortByName(k, portRef); ok {
				return id, nil
			}
		}
	}
	return domain.PortID{}, domain.Structural("resolve", ref, domain.ErrUnknownPort, "")
}

// Apply runs one command. Commands with Fails set succeed only when the
// engine rejects them with that error kind.
func (s *Session) Apply(ctx context.Context, cmd Command) (Result, error) {
	res, err := s.apply(ctx, cmd)
	if cmd.Fails != "" {
		want, _ := ErrorKind(cmd.Fails)
		if err == nil {
			return res, fmt.Errorf("%w: %s should fail with %s", ErrExpectation, cmd.Op, cmd.Fails)
		}
		if !errors.Is(err, want) {
			return res, fmt.Errorf("%w: %s failed with %v, want %s", ErrExpectation, cmd.Op, err, cmd.Fails)
		}
		err = nil
	}
	if err != nil {
		return res, err
	}

	res.Snapshot, err = s.engine.Snapshot(ctx)
	if err != nil {
		return res, err
	}
	if cmd.Op == OpExpect {
		resolve := func(ref string) (domain.PortID, error) { return s.Port(res.Snapshot, ref, "") }
		if err := cmd.Expect.Check(res.Snapshot, resolve); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Session) apply(ctx context.Context, cmd Command) (Result, error) {
	res := Result{Command: cmd}

	switch cmd.Op {
	case OpAdd:
		id, err := s.engine.AddNode(ctx, cmd.Kind, cmd.Config)
		if err != nil {
			return res, err
		}
		if cmd.Alias != "" {
			s.nodes[cmd.Alias] = id
		}
		res.Node = id

	case OpRemove:
		return res, s.engine.RemoveNode(ctx, s.Node(cmd.Target))

	case OpConnect:
		snap, err := s.engine.Snapshot(ctx)
		if err != nil {
			return res, err
		}
		from, err := s.Port(snap, cmd.From, domain.PortOutput)
		if err != nil {
			return res, err
		}
		to, err := s.Port(snap, cmd.To, domain.PortInput)
		if err != nil {
			return res, err
		}
		id, err := s.engine.Connect(ctx, from, to)
		if err != nil {
			return res, err
		}
		if cmd.Alias != "" {
			s.conns[cmd.Alias] = id
		}
		res.Connection = id

	case OpDisconnect:
		return res, s.engine.Disconnect(ctx, s.Connection(cmd.Target))

	case OpSet:
		if !strings.ContainsAny(cmd.Target, ".:") {
			return res, s.engine.SetLiteral(ctx, s.Node(cmd.Target), cmd.Value)
		}
		snap, err := s.engine.Snapshot(ctx)
		if err != nil {
			return res, err
		}
		port, err := s.Port(snap, cmd.Target, domain.PortInput)
		if err != nil {
			return res, err
		}
		return res, s.engine.SetInputLiteral(ctx, port, cmd.Value)

	case OpRecompute:
		_, err := s.engine.Recompute(ctx)
		return res, err

	case OpExpect, OpShow, "":

	default:
		return res, fmt.Errorf("unknown command %q", cmd.Op)
	}
	return res, nil
}

// Run applies every step of a script and returns the final snapshot.
func (s *Session) Run(ctx context.Context, sc *Script) (domain.Snapshot, error) {
	cmds, err := sc.Commands()
	if err != nil {
		return domain.Snapshot{}, err
	}
	var last Result
	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return last.Snapshot, err
		}
		last, err = s.Apply(ctx, cmd)
		if err != nil {
			return last.Snapshot, fmt.Errorf("step %d (%s): %w", i+1, cmd.Op, err)
		}
	}
	return last.Snapshot, nil
}
