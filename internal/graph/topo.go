package graph

import "sort"

// TopologicalSort computes an ordering of the nodes such that for every
// edge (u, v), u appears before v.
//
// Cycles through Iterate, Recurse, or Fixpoint nodes are allowed: when
// Kahn's algorithm gets stuck on such a cycle, the exempt node with the
// smallest id is forced through, treating its remaining incoming edges
// as back-edges. Cycles that pass through no exempt node are reported
// as CYCLE_DETECTED. The ready queue is kept sorted, so the ordering is
// reproducible for a given graph.
func (g *Graph) TopologicalSort() ([]NodeID, error) {
	inDegree := make(map[NodeID]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = 0
	}
	for _, edge := range g.edges {
		inDegree[edge.Target.Node]++
	}

	var queue []NodeID
	for _, id := range g.nodeOrder {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sortNodeIDs(queue)

	result := make([]NodeID, 0, len(g.nodes))

	for {
		for len(queue) > 0 {
			nodeID := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			result = append(result, nodeID)
			for _, eid := range g.outgoing[nodeID] {
				edge, ok := g.edges[eid]
				if !ok {
					continue
				}
				target := edge.Target.Node
				if deg := inDegree[target]; deg > 0 {
					inDegree[target] = deg - 1
					if deg == 1 {
						queue = append(queue, target)
					}
				}
			}
			sortNodeIDs(queue)
		}

		if len(result) == len(g.nodes) {
			break
		}

		// Stuck on a cycle. Force one cycle-exempt node through.
		var exemptRemaining []NodeID
		for _, id := range g.nodeOrder {
			if inDegree[id] > 0 && g.nodes[id].Kind.CycleExempt() {
				exemptRemaining = append(exemptRemaining, id)
			}
		}
		sortNodeIDs(exemptRemaining)

		if len(exemptRemaining) > 0 {
			exempt := exemptRemaining[0]
			inDegree[exempt] = 0
			queue = append(queue, exempt)
			sortNodeIDs(queue)
			continue
		}

		// No exempt node available, a genuine cycle.
		var stuck []NodeID
		for _, id := range g.nodeOrder {
			if inDegree[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		sortNodeIDs(stuck)
		return nil, NewCycleError(stuck[0])
	}

	return result, nil
}

func sortNodeIDs(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
