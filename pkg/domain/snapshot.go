package domain

// Snapshot is an immutable copy of the engine's observable state.
type Snapshot struct {
	// Revision counts completed propagation passes.
	Revision    uint64       `json:"revision"`
	Verdict     Verdict      `json:"verdict"`
	Display     Display      `json:"display"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Node looks up a node by id.
func (s Snapshot) Node(id NodeID) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Value returns the current value of a port, Absent if it does not exist.
func (s Snapshot) Value(id PortID) Value {
	n, ok := s.Node(id.Node)
	if !ok {
		return Absent()
	}
	p, ok := n.Port(id)
	if !ok {
		return Absent()
	}
	return p.Value
}

// Result returns the value arriving at the sink.
func (s Snapshot) Result() Value {
	for _, n := range s.Nodes {
		if n.Kind == KindOutput && len(n.Inputs) > 0 {
			return n.Inputs[0].Value
		}
	}
	return Absent()
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Verdict.Offenders = append([]NodeID(nil), s.Verdict.Offenders...)
	c.Nodes = make([]Node, len(s.Nodes))
	for i, n := range s.Nodes {
		c.Nodes[i] = n.Clone()
	}
	c.Connections = append([]Connection(nil), s.Connections...)
	return c
}

// Observation is published to observers after every completed command.
type Observation struct {
	Command  string   `json:"command"`
	Snapshot Snapshot `json:"snapshot"`
}
