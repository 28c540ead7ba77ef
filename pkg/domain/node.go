package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeKind identifies the operator a node applies.
type NodeKind string

const (
	// KindConstant emits its user-editable literal.
	KindConstant NodeKind = "constant"
	// KindSum adds its two inputs.
	KindSum NodeKind = "sum"
	// KindDivision divides its first input by its second.
	KindDivision NodeKind = "division"
	// KindOutput is the sink. Exactly one exists per graph.
	KindOutput NodeKind = "output"
)

// Kinds lists every operator kind in a stable order.
var Kinds = []NodeKind{KindConstant, KindSum, KindDivision, KindOutput}

// ParseNodeKind maps a case-insensitive name to a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	k := NodeKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown node kind %q", s)
}

// Layout returns the port names of the kind, inputs then outputs.
func (k NodeKind) Layout() (inputs, outputs []string) {
	switch k {
	case KindConstant:
		return nil, []string{"value"}
	case KindSum:
		return []string{"a", "b"}, []string{"result"}
	case KindDivision:
		return []string{"dividend", "divisor"}, []string{"result"}
	case KindOutput:
		return []string{"value"}, nil
	}
	return nil, nil
}

// PortKind is the direction of a port.
type PortKind string

const (
	PortInput  PortKind = "in"
	PortOutput PortKind = "out"
)

// NodeID identifies a node within a graph.
type NodeID string

// PortID addresses a port by owning node, direction and position.
type PortID struct {
	Node  NodeID   `json:"node"`
	Kind  PortKind `json:"kind"`
	Index int      `json:"index"`
}

// In addresses the i-th input of node.
func In(node NodeID, i int) PortID { return PortID{Node: node, Kind: PortInput, Index: i} }

// Out addresses the i-th output of node.
func Out(node NodeID, i int) PortID { return PortID{Node: node, Kind: PortOutput, Index: i} }

// String renders the port as "node:kind:index".
func (p PortID) String() string {
	return fmt.Sprintf("%s:%s:%d", p.Node, p.Kind, p.Index)
}

// ParsePortID parses the "node:kind:index" form produced by PortID.String.
// The index may be omitted, meaning 0.
func ParsePortID(s string) (PortID, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return PortID{}, fmt.Errorf("invalid port %q: want node:in|out[:index]", s)
	}
	p := PortID{Node: NodeID(parts[0]), Kind: PortKind(parts[1])}
	if p.Kind != PortInput && p.Kind != PortOutput {
		return PortID{}, fmt.Errorf("invalid port %q: kind must be in or out", s)
	}
	if len(parts) == 3 {
		i, err := strconv.Atoi(parts[2])
		if err != nil || i < 0 {
			return PortID{}, fmt.Errorf("invalid port %q: bad index", s)
		}
		p.Index = i
	}
	return p, nil
}

// Port is a typed slot owned by a node.
type Port struct {
	ID   PortID    `json:"id"`
	Name string    `json:"name"`
	Type ValueType `json:"type"`

	// HasLiteralDefault marks ports with an editable literal. For inputs the
	// literal is used while the port is unconnected; for Constant outputs it
	// is the emitted value.
	HasLiteralDefault bool  `json:"has_literal_default"`
	Literal           Value `json:"literal"`

	// Value is the resolved value after the last propagation pass.
	Value Value `json:"value"`
}

// Node is an operator instance in the graph.
type Node struct {
	ID        NodeID   `json:"id"`
	Kind      NodeKind `json:"kind"`
	Name      string   `json:"name,omitempty"`
	Inputs    []Port   `json:"inputs"`
	Outputs   []Port   `json:"outputs"`
	Removable bool     `json:"removable"`
}

// Port returns the port addressed by id if it belongs to n.
func (n *Node) Port(id PortID) (*Port, bool) {
	if id.Node != n.ID || id.Index < 0 {
		return nil, false
	}
	var ports []Port
	switch id.Kind {
	case PortInput:
		ports = n.Inputs
	case PortOutput:
		ports = n.Outputs
	}
	if id.Index >= len(ports) {
		return nil, false
	}
	return &ports[id.Index], true
}

// PortByName finds a port by direction and name.
func (n *Node) PortByName(kind PortKind, name string) (PortID, bool) {
	ports := n.Inputs
	if kind == PortOutput {
		ports = n.Outputs
	}
	for _, p := range ports {
		if p.Name == name {
			return p.ID, true
		}
	}
	return PortID{}, false
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	c := n
	c.Inputs = append([]Port(nil), n.Inputs...)
	c.Outputs = append([]Port(nil), n.Outputs...)
	return c
}

// ConnectionID identifies a connection within a graph.
type ConnectionID string

// Connection is a directed edge from an output port to an input port.
type Connection struct {
	ID   ConnectionID `json:"id"`
	From PortID       `json:"from"`
	To   PortID       `json:"to"`
}
