package runtime

import (
	"github.com/aretw0/nodecalc/internal/algo"
	"github.com/aretw0/nodecalc/pkg/domain"
)

// propagate recomputes every port value. With a cycle anywhere in the graph
// no evaluation order exists: every value is forced absent and the pass is
// suspended.
func (e *Engine) propagate() (visited int, suspended bool) {
	if len(algo.FindLoops(e.graph)) > 0 {
		e.clearValues()
		return 0, true
	}

	order, _ := algo.TopologicalOrder(e.graph)
	for _, id := range order {
		n, ok := e.graph.Node(id)
		if !ok {
			continue
		}
		for i := range n.Inputs {
			n.Inputs[i].Value = e.graph.Resolve(n.Inputs[i].ID)
		}
		results := domain.Evaluate(n)
		for i := range n.Outputs {
			n.Outputs[i].Value = domain.Absent()
			if i < len(results) {
				n.Outputs[i].Value = results[i]
			}
		}
	}
	return len(order), false
}

func (e *Engine) clearValues() {
	for _, id := range e.graph.NodeIDs() {
		n, _ := e.graph.Node(id)
		for i := range n.Inputs {
			n.Inputs[i].Value = domain.Absent()
		}
		for i := range n.Outputs {
			n.Outputs[i].Value = domain.Absent()
		}
	}
}
