// Package materialize turns a verified graph into a deployable
// artifact plan: canonicalization, the verification gate, transform
// passes, scheduling, memory layout, and resource fitting.
package materialize

import (
	"fmt"

	"github.com/torclang/torc/internal/graph"
)

// CanonicalizationStats counts the rewrites applied while
// canonicalizing a graph.
type CanonicalizationStats struct {
	// Duplicate nodes removed.
	NodesDeduplicated int
	// Nested same-kind regions merged into their parent.
	RegionsFlattened int
	// Single-node regions inlined.
	RegionsInlined int
	// Node count before canonicalization.
	InitialNodeCount int
	// Node count after canonicalization.
	FinalNodeCount int
}

// Canonicalize rewrites the graph into canonical form: duplicate nodes
// are merged, trivial regions inlined, and same-kind region nesting
// flattened. The graph is modified in place.
func Canonicalize(g *graph.Graph) (CanonicalizationStats, error) {
	stats := CanonicalizationStats{InitialNodeCount: g.NodeCount()}

	dedup, err := deduplicateNodes(g)
	if err != nil {
		return stats, err
	}
	stats.NodesDeduplicated = dedup

	inlined, err := inlineTrivialRegions(g)
	if err != nil {
		return stats, err
	}
	stats.RegionsInlined = inlined

	flattened, err := flattenRegions(g)
	if err != nil {
		return stats, err
	}
	stats.RegionsFlattened = flattened

	stats.FinalNodeCount = g.NodeCount()
	return stats, nil
}

type dedupKey struct {
	region graph.RegionID
	hash   string
}

// findDuplicateGroups groups nodes with identical content hashes
// within the same region. Region membership is semantic, so nodes in
// different regions never merge. Groups preserve insertion order, so
// the earliest-inserted node is the canonical member.
func findDuplicateGroups(g *graph.Graph) [][]graph.NodeID {
	byKey := map[dedupKey][]graph.NodeID{}
	var keyOrder []dedupKey

	for _, id := range g.NodeIDs() {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		region, _ := g.ContainingRegion(id)
		key := dedupKey{region: region, hash: node.ContentHash().Hex()}
		if _, seen := byKey[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		byKey[key] = append(byKey[key], id)
	}

	var groups [][]graph.NodeID
	for _, key := range keyOrder {
		if group := byKey[key]; len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}

// deduplicateNodes merges nodes with identical content, rewiring edges
// from each duplicate to the canonical member. Content hashes cover
// the type signature, so port counts are guaranteed to match.
func deduplicateNodes(g *graph.Graph) (int, error) {
	count := 0

	for _, group := range findDuplicateGroups(g) {
		canonical := group[0]
		for _, dup := range group[1:] {
			incoming := append([]graph.EdgeID(nil), g.IncomingEdges(dup)...)
			for _, eid := range incoming {
				edge, ok := g.Edge(eid)
				if !ok {
					continue
				}
				rewired := edge.Clone()
				rewired.ID = graph.NewEdgeID()
				rewired.Target.Node = canonical
				if err := g.RemoveEdge(eid); err != nil {
					return count, NewCanonicalizationError(err.Error())
				}
				if _, err := g.AddEdge(rewired); err != nil {
					return count, NewCanonicalizationError(err.Error())
				}
			}

			outgoing := append([]graph.EdgeID(nil), g.OutgoingEdges(dup)...)
			for _, eid := range outgoing {
				edge, ok := g.Edge(eid)
				if !ok {
					continue
				}
				rewired := edge.Clone()
				rewired.ID = graph.NewEdgeID()
				rewired.Source.Node = canonical
				if err := g.RemoveEdge(eid); err != nil {
					return count, NewCanonicalizationError(err.Error())
				}
				if _, err := g.AddEdge(rewired); err != nil {
					return count, NewCanonicalizationError(err.Error())
				}
			}

			if err := g.RemoveNode(dup); err != nil {
				return count, NewCanonicalizationError(err.Error())
			}
			count++
		}
	}

	return count, nil
}

// inlineTrivialRegions removes regions containing a single node with
// no constraints.
func inlineTrivialRegions(g *graph.Graph) (int, error) {
	var trivial []graph.RegionID
	for _, region := range g.Regions() {
		if len(region.Children) == 1 && len(region.Constraints) == 0 {
			trivial = append(trivial, region.ID)
		}
	}

	for _, rid := range trivial {
		if err := g.RemoveRegion(rid); err != nil {
			return 0, NewCanonicalizationError(err.Error())
		}
	}
	return len(trivial), nil
}

// flattenRegions merges constraint-free regions into a same-kind
// parent (Sequential into Sequential, Parallel into Parallel),
// repeating until no candidate remains. Each inline removes one
// region, so the worklist is bounded by the starting region count; a
// pass beyond that bound means a candidate survived its own inlining.
func flattenRegions(g *graph.Graph) (int, error) {
	count := 0
	maxPasses := g.RegionCount()

	for {
		candidate := findFlattenable(g)
		if candidate == "" {
			return count, nil
		}
		if count >= maxPasses {
			return count, NewCanonicalizationError(
				fmt.Sprintf("region flattening did not converge after %d passes", count))
		}
		if err := g.InlineRegion(candidate); err != nil {
			return count, NewCanonicalizationError(err.Error())
		}
		count++
	}
}

func findFlattenable(g *graph.Graph) graph.RegionID {
	for _, child := range g.Regions() {
		if len(child.Constraints) != 0 {
			continue
		}
		parentID, ok := g.ParentRegion(child.ID)
		if !ok {
			continue
		}
		parent, ok := g.Region(parentID)
		if !ok {
			continue
		}
		sameKind := (parent.Kind == graph.RegionSequential && child.Kind == graph.RegionSequential) ||
			(parent.Kind == graph.RegionParallel && child.Kind == graph.RegionParallel)
		if sameKind {
			return child.ID
		}
	}
	return ""
}
