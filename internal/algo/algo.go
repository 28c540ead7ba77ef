// Package algo holds the graph algorithms the validator and the propagation
// engine run over a calculation graph. Ports are collapsed to their owning
// node, so every algorithm sees a plain directed graph of node ids.
package algo

import "github.com/aretw0/nodecalc/pkg/domain"

// Graph is the read-only view the algorithms need.
// Edges point from a feeding node to the node it feeds.
type Graph interface {
	NodeIDs() []domain.NodeID
	Upstream(domain.NodeID) []domain.NodeID
	Downstream(domain.NodeID) []domain.NodeID
}

// DependencyClosure returns every node that transitively feeds start,
// including start itself, in breadth-first order.
func DependencyClosure(g Graph, start domain.NodeID) []domain.NodeID {
	visited := map[domain.NodeID]bool{start: true}
	order := []domain.NodeID{start}
	queue := []domain.NodeID{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, up := range g.Upstream(current) {
			if visited[up] {
				continue
			}
			visited[up] = true
			order = append(order, up)
			queue = append(queue, up)
		}
	}
	return order
}

// TopologicalOrder orders nodes with Kahn's algorithm so that every node comes
// after the nodes feeding it. Ties keep insertion order. Nodes on a cycle, and
// nodes fed by one, cannot be ordered and are returned as blocked.
func TopologicalOrder(g Graph) (order, blocked []domain.NodeID) {
	ids := g.NodeIDs()
	inDegree := make(map[domain.NodeID]int, len(ids))
	for _, id := range ids {
		inDegree[id] = len(g.Upstream(id))
	}

	var ready []domain.NodeID
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	done := make(map[domain.NodeID]bool, len(ids))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)
		done[current] = true

		for _, next := range g.Downstream(current) {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	for _, id := range ids {
		if !done[id] {
			blocked = append(blocked, id)
		}
	}
	return order, blocked
}
