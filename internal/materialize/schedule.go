package materialize

import (
	"sort"

	"github.com/torclang/torc/internal/graph"
)

// ScheduleStep is one step of an execution schedule. A step with more
// than one node runs its nodes concurrently; they have no dependencies
// among each other.
type ScheduleStep struct {
	Nodes []graph.NodeID
}

// IsParallel reports whether the step executes multiple nodes
// concurrently.
func (s ScheduleStep) IsParallel() bool { return len(s.Nodes) > 1 }

// ExecutionSchedule is a complete execution plan for a graph.
type ExecutionSchedule struct {
	// Ordered steps to execute.
	Steps []ScheduleStep
	// Longest sequential chain length.
	SequentialDepth int
	// Maximum number of nodes executable in parallel at any step.
	MaxParallelism int
}

// ComputeSchedule derives an execution schedule from the graph's data
// dependencies. Nodes at the same dependency depth form a parallel
// step, sorted by id for reproducible output. Region ordering is
// subsumed by data dependencies, so regions need no separate wrapping
// pass.
func ComputeSchedule(g *graph.Graph) (*ExecutionSchedule, error) {
	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, NewSchedulingError("topological sort failed: " + err.Error())
	}

	if len(sorted) == 0 {
		return &ExecutionSchedule{}, nil
	}

	levels := computeLevels(g, sorted)

	maxLevel := 0
	for _, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
	}

	groups := make([][]graph.NodeID, maxLevel+1)
	for _, id := range sorted {
		level := levels[id]
		groups[level] = append(groups[level], id)
	}

	schedule := &ExecutionSchedule{}
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		if len(group) > schedule.MaxParallelism {
			schedule.MaxParallelism = len(group)
		}
		schedule.Steps = append(schedule.Steps, ScheduleStep{Nodes: group})
	}
	schedule.SequentialDepth = len(schedule.Steps)

	return schedule, nil
}

// computeLevels assigns each node its longest-path depth from the
// roots: level = max(predecessor levels) + 1, roots at 0.
func computeLevels(g *graph.Graph, sorted []graph.NodeID) map[graph.NodeID]int {
	levels := make(map[graph.NodeID]int, len(sorted))

	for _, id := range sorted {
		level := 0
		for _, eid := range g.IncomingEdges(id) {
			edge, ok := g.Edge(eid)
			if !ok {
				continue
			}
			if predLevel, ok := levels[edge.Source.Node]; ok && predLevel+1 > level {
				level = predLevel + 1
			}
		}
		levels[id] = level
	}

	return levels
}

// CriticalPathLength is the longest chain of dependent nodes.
func CriticalPathLength(g *graph.Graph) (int, error) {
	sorted, err := g.TopologicalSort()
	if err != nil {
		return 0, NewSchedulingError("topological sort failed: " + err.Error())
	}
	if len(sorted) == 0 {
		return 0, nil
	}

	maxLevel := 0
	for _, level := range computeLevels(g, sorted) {
		if level > maxLevel {
			maxLevel = level
		}
	}
	return maxLevel + 1, nil
}
