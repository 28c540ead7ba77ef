package algo

import (
	"slices"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// tarjanState holds per-node state during Tarjan's DFS.
type tarjanState struct {
	index   int
	lowlink int
	onStack bool
}

// StronglyConnected returns the strongly connected components of g using
// Tarjan's algorithm in O(V+E). Components are emitted in reverse topological
// order; members keep discovery order.
func StronglyConnected(g Graph) [][]domain.NodeID {
	state := make(map[domain.NodeID]*tarjanState)
	var stack []domain.NodeID
	var components [][]domain.NodeID
	index := 0

	var strongconnect func(u domain.NodeID)
	strongconnect = func(u domain.NodeID) {
		state[u] = &tarjanState{index: index, lowlink: index, onStack: true}
		index++
		stack = append(stack, u)

		for _, v := range g.Downstream(u) {
			if _, seen := state[v]; !seen {
				strongconnect(v)
				state[u].lowlink = min(state[u].lowlink, state[v].lowlink)
			} else if state[v].onStack {
				state[u].lowlink = min(state[u].lowlink, state[v].index)
			}
		}

		// u is the root of a component: pop it off the stack.
		if state[u].lowlink == state[u].index {
			var component []domain.NodeID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				state[w].onStack = false
				component = append(component, w)
				if w == u {
					break
				}
			}
			slices.Reverse(component)
			components = append(components, component)
		}
	}

	for _, id := range g.NodeIDs() {
		if _, seen := state[id]; !seen {
			strongconnect(id)
		}
	}
	return components
}

// FindLoops returns every node that lies on at least one directed cycle:
// members of components with more than one node, and nodes feeding
// themselves. The result is sorted. Graphs with zero or one node and no
// self edge have no loops.
func FindLoops(g Graph) []domain.NodeID {
	var loops []domain.NodeID
	for _, component := range StronglyConnected(g) {
		if len(component) > 1 {
			loops = append(loops, component...)
			continue
		}
		id := component[0]
		if slices.Contains(g.Downstream(id), id) {
			loops = append(loops, id)
		}
	}
	slices.Sort(loops)
	return loops
}
