package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// Revision is always present to identify the target.
	Revision uint64 `json:"revision"`

	Verdict *Verdict `json:"verdict,omitempty"`
	Display *Display `json:"display,omitempty"`

	// Values contains only ports whose value changed, keyed by PortID.String().
	// Ports that disappeared are present with a null value.
	Values map[string]Value `json:"values,omitempty"`

	// Structure is set when nodes or connections were added or removed.
	Structure bool `json:"structure,omitempty"`
}

// Diff calculates the difference between old and new.
// If old is nil, it returns a diff representing the entire new snapshot (initial load).
// It returns nil when nothing observable changed.
func Diff(old, new *Snapshot) *SnapshotDiff {
	if new == nil {
		return nil
	}

	diff := &SnapshotDiff{Revision: new.Revision}

	if old == nil || !old.Verdict.Equal(new.Verdict) {
		v := new.Verdict
		diff.Verdict = &v
	}
	if old == nil || old.Display != new.Display {
		d := new.Display
		diff.Display = &d
	}

	diff.Values = diffValues(old, new)
	diff.Structure = old == nil || structureChanged(old, new)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func portValues(s *Snapshot) map[string]Value {
	values := make(map[string]Value)
	if s == nil {
		return values
	}
	for _, n := range s.Nodes {
		for _, p := range n.Inputs {
			values[p.ID.String()] = p.Value
		}
		for _, p := range n.Outputs {
			values[p.ID.String()] = p.Value
		}
	}
	return values
}

func diffValues(old, new *Snapshot) map[string]Value {
	before := portValues(old)
	after := portValues(new)
	delta := make(map[string]Value)

	for k, v := range after {
		if prev, ok := before[k]; !ok || prev != v {
			delta[k] = v
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			delta[k] = Absent()
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func structureChanged(old, new *Snapshot) bool {
	if len(old.Nodes) != len(new.Nodes) || len(old.Connections) != len(new.Connections) {
		return true
	}
	for i := range old.Nodes {
		if old.Nodes[i].ID != new.Nodes[i].ID {
			return true
		}
	}
	for i := range old.Connections {
		if old.Connections[i] != new.Connections[i] {
			return true
		}
	}
	return false
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Verdict == nil &&
		d.Display == nil &&
		len(d.Values) == 0 &&
		!d.Structure
}
