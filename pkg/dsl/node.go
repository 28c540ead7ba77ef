package dsl

import "github.com/aretw0/nodecalc/pkg/domain"

type wire struct {
	input  int
	source string
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	alias     string
	kind      domain.NodeKind
	name      string
	literal   *int64
	defaults  []int64
	noDefault bool
	wires     []wire
	builder   *Builder
}

// Name sets the display label.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.name = name
	return n
}

// Literal sets the value of a constant, or the sink's editable default.
func (n *NodeBuilder) Literal(v int64) *NodeBuilder {
	n.literal = &v
	return n
}

// Defaults sets the editable defaults of the inputs, in port order.
func (n *NodeBuilder) Defaults(values ...int64) *NodeBuilder {
	n.defaults = values
	return n
}

// NoDefault leaves unconnected inputs absent.
func (n *NodeBuilder) NoDefault() *NodeBuilder {
	n.noDefault = true
	return n
}

// From feeds the next unwired input from the output of source.
func (n *NodeBuilder) From(source string) *NodeBuilder {
	return n.In(len(n.wires), source)
}

// In feeds input index from the output of source.
func (n *NodeBuilder) In(index int, source string) *NodeBuilder {
	n.wires = append(n.wires, wire{input: index, source: source})
	return n
}

// Then declares the next node and returns its builder, for chains.
func (n *NodeBuilder) Then(alias string, kind domain.NodeKind) *NodeBuilder {
	return n.builder.Add(alias, kind).From(n.alias)
}

func (n *NodeBuilder) config() map[string]any {
	cfg := map[string]any{}
	if n.name != "" {
		cfg["name"] = n.name
	}
	if n.literal != nil {
		cfg["literal"] = *n.literal
	}
	if len(n.defaults) > 0 {
		cfg["defaults"] = n.defaults
	}
	if n.noDefault {
		cfg["no_default"] = true
	}
	return cfg
}
