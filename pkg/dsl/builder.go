package dsl

import (
	"context"
	"fmt"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/graph"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// OutputAlias refers to the sink, which every graph already has.
const OutputAlias = "output"

// Builder manages the graph construction.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add declares a node of the given kind under alias.
// If the alias already exists, it returns the existing builder.
func (b *Builder) Add(alias string, kind domain.NodeKind) *NodeBuilder {
	if nb, ok := b.nodes[alias]; ok {
		return nb
	}
	nb := &NodeBuilder{alias: alias, kind: kind, builder: b}
	b.nodes[alias] = nb
	b.order = append(b.order, alias)
	return nb
}

// Constant declares a constant node.
func (b *Builder) Constant(alias string) *NodeBuilder { return b.Add(alias, domain.KindConstant) }

// Sum declares a sum node.
func (b *Builder) Sum(alias string) *NodeBuilder { return b.Add(alias, domain.KindSum) }

// Division declares a division node.
func (b *Builder) Division(alias string) *NodeBuilder { return b.Add(alias, domain.KindDivision) }

// Output returns the builder of the sink.
func (b *Builder) Output() *NodeBuilder { return b.Add(OutputAlias, domain.KindOutput) }

// Refs maps builder aliases to the ids the engine assigned.
type Refs struct {
	Nodes       map[string]domain.NodeID
	Connections []domain.ConnectionID
}

// Node returns the id of alias, or "" if it was not built.
func (r Refs) Node(alias string) domain.NodeID {
	return r.Nodes[alias]
}

// Build issues the declared graph as commands: nodes in declaration order,
// then literals of the sink, then connections. It stops at the first
// rejected command and returns what was built so far.
func (b *Builder) Build(ctx context.Context, engine ports.Engine) (Refs, error) {
	refs := Refs{Nodes: map[string]domain.NodeID{OutputAlias: graph.OutputID}}

	for _, alias := range b.order {
		nb := b.nodes[alias]
		if nb.kind == domain.KindOutput {
			continue
		}
		id, err := engine.AddNode(ctx, nb.kind, nb.config())
		if err != nil {
			return refs, fmt.Errorf("dsl: node %q: %w", alias, err)
		}
		refs.Nodes[alias] = id
	}

	if out, ok := b.nodes[OutputAlias]; ok && out.literal != nil {
		if err := engine.SetLiteral(ctx, graph.OutputID, domain.Of(*out.literal)); err != nil {
			return refs, fmt.Errorf("dsl: node %q: %w", OutputAlias, err)
		}
	}

	for _, alias := range b.order {
		nb := b.nodes[alias]
		for _, w := range nb.wires {
			src, ok := refs.Nodes[w.source]
			if !ok {
				return refs, fmt.Errorf("dsl: node %q: unknown source %q", alias, w.source)
			}
			id, err := engine.Connect(ctx, domain.Out(src, 0), domain.In(refs.Nodes[alias], w.input))
			if err != nil {
				return refs, fmt.Errorf("dsl: node %q input %d: %w", alias, w.input, err)
			}
			refs.Connections = append(refs.Connections, id)
		}
	}
	return refs, nil
}
