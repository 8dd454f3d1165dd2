package materialize

import (
	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/platform"
)

// LoweringResult is the replacement subgraph produced by lowering a
// single node, with a mapping from the original node's port indices to
// replacement ports.
type LoweringResult struct {
	Replacement *graph.Graph
	PortMap     map[int]graph.PortRef
}

// NodeLowering lowers specific node kinds to target-specific
// subgraphs.
type NodeLowering interface {
	// SupportedKinds lists the node kinds this lowering can handle.
	SupportedKinds() []graph.NodeKind

	// AppliesTo reports whether this lowering applies to a node kind on
	// the given platform.
	AppliesTo(kind graph.NodeKind, target platform.Platform) bool

	// Lower produces a replacement subgraph for the node.
	Lower(id graph.NodeID, g *graph.Graph, target platform.Platform) (LoweringResult, error)
}

// TransformStats counts graph mutations made by one transform pass.
type TransformStats struct {
	NodesAdded   int
	NodesRemoved int
	EdgesAdded   int
	EdgesRemoved int
}

// GraphTransform is a whole-graph transformation pass.
type GraphTransform interface {
	// Name identifies the transform in reports.
	Name() string

	// Apply mutates the graph, returning statistics.
	Apply(g *graph.Graph, target platform.Platform) TransformStats
}

// TransformRegistry holds lowerings and transforms in registration
// order.
type TransformRegistry struct {
	lowerings  []NodeLowering
	transforms []GraphTransform
}

// NewTransformRegistry creates an empty registry.
func NewTransformRegistry() *TransformRegistry {
	return &TransformRegistry{}
}

// RegisterLowering adds a node lowering.
func (r *TransformRegistry) RegisterLowering(l NodeLowering) {
	r.lowerings = append(r.lowerings, l)
}

// RegisterTransform adds a graph transform.
func (r *TransformRegistry) RegisterTransform(t GraphTransform) {
	r.transforms = append(r.transforms, t)
}

// Lowerings returns the registered lowerings.
func (r *TransformRegistry) Lowerings() []NodeLowering { return r.lowerings }

// Transforms returns the registered transforms.
func (r *TransformRegistry) Transforms() []GraphTransform { return r.transforms }

// ApplyAll runs every registered transform in registration order.
func (r *TransformRegistry) ApplyAll(g *graph.Graph, target platform.Platform) []TransformStats {
	stats := make([]TransformStats, 0, len(r.transforms))
	for _, t := range r.transforms {
		stats = append(stats, t.Apply(g, target))
	}
	return stats
}

// IdentityTransform leaves the graph unchanged.
type IdentityTransform struct{}

func (IdentityTransform) Name() string { return "identity" }

func (IdentityTransform) Apply(_ *graph.Graph, _ platform.Platform) TransformStats {
	return TransformStats{}
}
