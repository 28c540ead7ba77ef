package graph

import (
	"fmt"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// OutputID is the id of the sink created with every graph.
const OutputID domain.NodeID = "output"

// Graph holds the nodes and connections of one calculation.
//
// Mutations return a *domain.StructuralError and leave the graph unchanged on
// failure. Graph is not safe for concurrent use; the engine owns it.
type Graph struct {
	nodes     map[domain.NodeID]*domain.Node
	order     []domain.NodeID
	conns     map[domain.ConnectionID]*domain.Connection
	connOrder []domain.ConnectionID
	incoming  map[domain.PortID]domain.ConnectionID

	nodeSeq int
	connSeq int
}

// New creates a graph containing only the protected Output sink.
func New() *Graph {
	g := &Graph{
		nodes:    make(map[domain.NodeID]*domain.Node),
		conns:    make(map[domain.ConnectionID]*domain.Connection),
		incoming: make(map[domain.PortID]domain.ConnectionID),
	}
	g.insert(newNode(OutputID, domain.KindOutput, NodeConfig{}))
	g.nodes[OutputID].Removable = false
	return g
}

func newNode(id domain.NodeID, kind domain.NodeKind, cfg NodeConfig) *domain.Node {
	inputs, outputs := kind.Layout()
	n := &domain.Node{
		ID:        id,
		Kind:      kind,
		Name:      cfg.Name,
		Removable: true,
	}
	if n.Name == "" {
		n.Name = string(kind)
	}

	for i, name := range inputs {
		p := domain.Port{
			ID:                domain.In(id, i),
			Name:              name,
			Type:              domain.TypeInt,
			HasLiteralDefault: !cfg.NoDefault,
		}
		if p.HasLiteralDefault {
			p.Literal = domain.Of(0)
			if i < len(cfg.Defaults) {
				p.Literal = domain.Of(cfg.Defaults[i])
			}
		}
		n.Inputs = append(n.Inputs, p)
	}

	for i, name := range outputs {
		p := domain.Port{
			ID:   domain.Out(id, i),
			Name: name,
			Type: domain.TypeInt,
		}
		if kind == domain.KindConstant {
			p.HasLiteralDefault = true
			p.Literal = domain.Of(0)
			if cfg.Literal != nil {
				p.Literal = domain.Of(*cfg.Literal)
			}
		}
		n.Outputs = append(n.Outputs, p)
	}
	return n
}

func (g *Graph) insert(n *domain.Node) {
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
}

// AddNode creates a node of the given kind and returns its id.
func (g *Graph) AddNode(kind domain.NodeKind, cfg NodeConfig) (domain.NodeID, error) {
	const op = "add_node"

	parsed, err := domain.ParseNodeKind(string(kind))
	if err != nil {
		return "", domain.Structural(op, string(kind), domain.ErrInvalidOperation, err.Error())
	}
	kind = parsed
	if kind == domain.KindOutput {
		return "", domain.Structural(op, string(kind), domain.ErrInvalidOperation, "graph already has its output node")
	}
	if err := cfg.Validate(); err != nil {
		return "", domain.Structural(op, string(kind), domain.ErrInvalidConfig, err.Error())
	}
	if err := cfg.check(kind); err != nil {
		return "", domain.Structural(op, string(kind), domain.ErrInvalidConfig, err.Error())
	}

	var id domain.NodeID
	for {
		g.nodeSeq++
		id = domain.NodeID(fmt.Sprintf("%s-%d", kind, g.nodeSeq))
		if _, taken := g.nodes[id]; !taken {
			break
		}
	}
	g.insert(newNode(id, kind, cfg))
	return id, nil
}

// RemoveNode deletes a node and every connection touching its ports.
func (g *Graph) RemoveNode(id domain.NodeID) error {
	const op = "remove_node"

	n, ok := g.nodes[id]
	if !ok {
		return domain.Structural(op, string(id), domain.ErrUnknownNode, "")
	}
	if !n.Removable {
		return domain.Structural(op, string(id), domain.ErrInvalidOperation, "node is protected")
	}

	for _, cid := range append([]domain.ConnectionID(nil), g.connOrder...) {
		c := g.conns[cid]
		if c.From.Node == id || c.To.Node == id {
			g.dropConnection(cid)
		}
	}

	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// Connect links an output port to an input port.
func (g *Graph) Connect(from, to domain.PortID) (domain.ConnectionID, error) {
	const op = "connect"
	subject := from.String() + "->" + to.String()

	if from.Kind != domain.PortOutput || to.Kind != domain.PortInput {
		return "", domain.Structural(op, subject, domain.ErrInvalidOperation, "connections run from an output to an input")
	}
	src, ok := g.Port(from)
	if !ok {
		return "", domain.Structural(op, from.String(), domain.ErrUnknownPort, "")
	}
	dst, ok := g.Port(to)
	if !ok {
		return "", domain.Structural(op, to.String(), domain.ErrUnknownPort, "")
	}
	if src.Type != dst.Type {
		return "", domain.Structural(op, subject, domain.ErrTypeMismatch,
			fmt.Sprintf("%s vs %s", src.Type, dst.Type))
	}
	if existing, occupied := g.incoming[to]; occupied {
		return "", domain.Structural(op, to.String(), domain.ErrPortOccupied, "connected by "+string(existing))
	}

	g.connSeq++
	id := domain.ConnectionID(fmt.Sprintf("conn-%d", g.connSeq))
	g.conns[id] = &domain.Connection{ID: id, From: from, To: to}
	g.connOrder = append(g.connOrder, id)
	g.incoming[to] = id
	return id, nil
}

// Disconnect removes a connection.
func (g *Graph) Disconnect(id domain.ConnectionID) error {
	if _, ok := g.conns[id]; !ok {
		return domain.Structural("disconnect", string(id), domain.ErrUnknownConnection, "")
	}
	g.dropConnection(id)
	return nil
}

func (g *Graph) dropConnection(id domain.ConnectionID) {
	c := g.conns[id]
	delete(g.incoming, c.To)
	delete(g.conns, id)
	for i, cid := range g.connOrder {
		if cid == id {
			g.connOrder = append(g.connOrder[:i], g.connOrder[i+1:]...)
			break
		}
	}
}

// SetLiteral edits the literal of a node. Constants take the value on their
// output; nodes with exactly one editable input (the sink) take it there.
func (g *Graph) SetLiteral(id domain.NodeID, v domain.Value) error {
	const op = "set_literal"

	n, ok := g.nodes[id]
	if !ok {
		return domain.Structural(op, string(id), domain.ErrUnknownNode, "")
	}
	if n.Kind == domain.KindConstant {
		n.Outputs[0].Literal = v
		return nil
	}
	if len(n.Inputs) == 1 && n.Inputs[0].HasLiteralDefault {
		n.Inputs[0].Literal = v
		return nil
	}
	return domain.Structural(op, string(id), domain.ErrInvalidOperation,
		"node has no single literal; address an input port instead")
}

// SetInputLiteral edits the editable default of an input port.
func (g *Graph) SetInputLiteral(id domain.PortID, v domain.Value) error {
	const op = "set_input_literal"

	if id.Kind != domain.PortInput {
		return domain.Structural(op, id.String(), domain.ErrInvalidOperation, "not an input port")
	}
	p, ok := g.Port(id)
	if !ok {
		return domain.Structural(op, id.String(), domain.ErrUnknownPort, "")
	}
	if !p.HasLiteralDefault {
		return domain.Structural(op, id.String(), domain.ErrInvalidOperation, "port has no editable default")
	}
	p.Literal = v
	return nil
}

// Resolve returns the value an input port currently sees: the connected
// upstream output's value, else the port's literal default, else absent.
func (g *Graph) Resolve(id domain.PortID) domain.Value {
	if c, ok := g.Incoming(id); ok {
		if src, ok := g.Port(c.From); ok {
			return src.Value
		}
		return domain.Absent()
	}
	p, ok := g.Port(id)
	if !ok || !p.HasLiteralDefault {
		return domain.Absent()
	}
	return p.Literal
}

// Node returns the live node. Callers other than the engine must not mutate it.
func (g *Graph) Node(id domain.NodeID) (*domain.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Port returns the live port addressed by id.
func (g *Graph) Port(id domain.PortID) (*domain.Port, bool) {
	n, ok := g.nodes[id.Node]
	if !ok {
		return nil, false
	}
	return n.Port(id)
}

// Output returns the sink.
func (g *Graph) Output() *domain.Node {
	return g.nodes[OutputID]
}

// NodeIDs returns node ids in insertion order.
func (g *Graph) NodeIDs() []domain.NodeID {
	return append([]domain.NodeID(nil), g.order...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Connections returns the connections in creation order.
func (g *Graph) Connections() []domain.Connection {
	out := make([]domain.Connection, 0, len(g.connOrder))
	for _, id := range g.connOrder {
		out = append(out, *g.conns[id])
	}
	return out
}

// Connection looks up a connection by id.
func (g *Graph) Connection(id domain.ConnectionID) (domain.Connection, bool) {
	c, ok := g.conns[id]
	if !ok {
		return domain.Connection{}, false
	}
	return *c, true
}

// Incoming returns the connection feeding an input port, if any.
func (g *Graph) Incoming(to domain.PortID) (domain.Connection, bool) {
	id, ok := g.incoming[to]
	if !ok {
		return domain.Connection{}, false
	}
	return *g.conns[id], true
}

// Upstream returns the distinct nodes feeding id, in input port order.
func (g *Graph) Upstream(id domain.NodeID) []domain.NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	var out []domain.NodeID
	seen := make(map[domain.NodeID]bool)
	for _, p := range n.Inputs {
		if c, ok := g.Incoming(p.ID); ok && !seen[c.From.Node] {
			seen[c.From.Node] = true
			out = append(out, c.From.Node)
		}
	}
	return out
}

// Downstream returns the distinct nodes fed by id, in connection order.
func (g *Graph) Downstream(id domain.NodeID) []domain.NodeID {
	var out []domain.NodeID
	seen := make(map[domain.NodeID]bool)
	for _, cid := range g.connOrder {
		c := g.conns[cid]
		if c.From.Node == id && !seen[c.To.Node] {
			seen[c.To.Node] = true
			out = append(out, c.To.Node)
		}
	}
	return out
}

// Nodes returns deep copies of all nodes in insertion order.
func (g *Graph) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Clone())
	}
	return out
}
