package graph

import "github.com/torclang/torc/internal/ir"

// Graph is the core container for a torc program.
//
// Stores nodes, edges, and regions with lookup by id, plus adjacency
// and region-membership indexes. Iteration follows insertion order, so
// traversals and content-addressed rewrites are reproducible across
// runs.
type Graph struct {
	nodes   map[NodeID]*Node
	edges   map[EdgeID]*Edge
	regions map[RegionID]*Region

	// Insertion order, kept in sync on add/remove.
	nodeOrder   []NodeID
	edgeOrder   []EdgeID
	regionOrder []RegionID

	// outgoing indexes node -> edges where the node is the source.
	outgoing map[NodeID][]EdgeID
	// incoming indexes node -> edges where the node is the target.
	incoming map[NodeID][]EdgeID
	// regionChildren indexes region -> child nodes.
	regionChildren map[RegionID][]NodeID
	// nodeRegion indexes node -> containing region.
	nodeRegion map[NodeID]RegionID
	// regionParent indexes child region -> parent region.
	regionParent map[RegionID]RegionID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:          map[NodeID]*Node{},
		edges:          map[EdgeID]*Edge{},
		regions:        map[RegionID]*Region{},
		outgoing:       map[NodeID][]EdgeID{},
		incoming:       map[NodeID][]EdgeID{},
		regionChildren: map[RegionID][]NodeID{},
		nodeRegion:     map[NodeID]RegionID{},
		regionParent:   map[RegionID]RegionID{},
	}
}

// AddNode inserts a node into the graph.
func (g *Graph) AddNode(node *Node) (NodeID, error) {
	id := node.ID
	if _, ok := g.nodes[id]; ok {
		return "", NewDuplicateNodeError(id)
	}
	g.nodes[id] = node
	g.nodeOrder = append(g.nodeOrder, id)
	if _, ok := g.outgoing[id]; !ok {
		g.outgoing[id] = nil
	}
	if _, ok := g.incoming[id]; !ok {
		g.incoming[id] = nil
	}
	return id, nil
}

// AddEdge inserts an edge. Both source and target nodes must exist.
func (g *Graph) AddEdge(edge *Edge) (EdgeID, error) {
	id := edge.ID
	if _, ok := g.edges[id]; ok {
		return "", NewDuplicateEdgeError(id)
	}
	src, dst := edge.Source.Node, edge.Target.Node
	if _, ok := g.nodes[src]; !ok {
		return "", NewDanglingEdgeError(src, dst)
	}
	if _, ok := g.nodes[dst]; !ok {
		return "", NewDanglingEdgeError(src, dst)
	}
	g.edges[id] = edge
	g.edgeOrder = append(g.edgeOrder, id)
	g.outgoing[src] = append(g.outgoing[src], id)
	g.incoming[dst] = append(g.incoming[dst], id)
	return id, nil
}

// AddRegion inserts a region. All child nodes must exist and be unique.
func (g *Graph) AddRegion(region *Region) (RegionID, error) {
	id := region.ID
	seen := make(map[NodeID]struct{}, len(region.Children))
	for _, child := range region.Children {
		if _, ok := g.nodes[child]; !ok {
			return "", NewNodeNotFoundError(child)
		}
		if _, dup := seen[child]; dup {
			return "", NewDuplicateRegionChildError(child, id)
		}
		seen[child] = struct{}{}
	}
	for _, child := range region.Children {
		g.nodeRegion[child] = id
	}
	g.regionChildren[id] = append([]NodeID(nil), region.Children...)
	if region.Parent != "" {
		g.regionParent[id] = region.Parent
	}
	g.regions[id] = region
	g.regionOrder = append(g.regionOrder, id)
	return id, nil
}

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge looks up an edge by id.
func (g *Graph) Edge(id EdgeID) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Region looks up a region by id.
func (g *Graph) Region(id RegionID) (*Region, bool) {
	r, ok := g.regions[id]
	return r, ok
}

// OutgoingEdges returns the edges where the node is the source.
func (g *Graph) OutgoingEdges(id NodeID) []EdgeID {
	return g.outgoing[id]
}

// IncomingEdges returns the edges where the node is the target.
func (g *Graph) IncomingEdges(id NodeID) []EdgeID {
	return g.incoming[id]
}

// ContainingRegion returns the region containing a node, if any.
func (g *Graph) ContainingRegion(id NodeID) (RegionID, bool) {
	r, ok := g.nodeRegion[id]
	return r, ok
}

// SetRegionParent sets the parent of a child region, updating both the
// region and the index. The parent relation must stay a forest: the
// assignment is rejected when child is already an ancestor of parent.
func (g *Graph) SetRegionParent(child, parent RegionID) error {
	if _, ok := g.regions[child]; !ok {
		return NewRegionNotFoundError(child)
	}
	if _, ok := g.regions[parent]; !ok {
		return NewRegionNotFoundError(parent)
	}
	for id := parent; ; {
		if id == child {
			return NewRegionCycleError(child, parent)
		}
		next, ok := g.regionParent[id]
		if !ok {
			break
		}
		id = next
	}
	g.regionParent[child] = parent
	g.regions[child].Parent = parent
	return nil
}

// ParentRegion returns the parent region of a region, if any.
func (g *Graph) ParentRegion(id RegionID) (RegionID, bool) {
	p, ok := g.regionParent[id]
	return p, ok
}

// ChildRegions returns the regions whose parent is the given region,
// in insertion order.
func (g *Graph) ChildRegions(id RegionID) []RegionID {
	var out []RegionID
	for _, rid := range g.regionOrder {
		if g.regionParent[rid] == id {
			out = append(out, rid)
		}
	}
	return out
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the total number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// RegionCount returns the total number of regions.
func (g *Graph) RegionCount() int { return len(g.regions) }

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// Regions returns all regions in insertion order.
func (g *Graph) Regions() []*Region {
	out := make([]*Region, 0, len(g.regionOrder))
	for _, id := range g.regionOrder {
		out = append(out, g.regions[id])
	}
	return out
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []NodeID {
	return append([]NodeID(nil), g.nodeOrder...)
}

// ExtractSubgraph returns a new graph containing the given nodes, their
// internal edges, and any nonempty regions fully contained in the node
// set. Parent references to excluded regions are dropped.
func (g *Graph) ExtractSubgraph(nodeIDs map[NodeID]struct{}) *Graph {
	sub := New()

	for _, id := range g.nodeOrder {
		if _, want := nodeIDs[id]; !want {
			continue
		}
		sub.nodes[id] = g.nodes[id].Clone()
		sub.nodeOrder = append(sub.nodeOrder, id)
		sub.outgoing[id] = nil
		sub.incoming[id] = nil
	}

	for _, eid := range g.edgeOrder {
		edge := g.edges[eid]
		_, srcIn := nodeIDs[edge.Source.Node]
		_, tgtIn := nodeIDs[edge.Target.Node]
		if srcIn && tgtIn {
			sub.edges[eid] = edge.Clone()
			sub.edgeOrder = append(sub.edgeOrder, eid)
			sub.outgoing[edge.Source.Node] = append(sub.outgoing[edge.Source.Node], eid)
			sub.incoming[edge.Target.Node] = append(sub.incoming[edge.Target.Node], eid)
		}
	}

	included := map[RegionID]struct{}{}
	for _, rid := range g.regionOrder {
		region := g.regions[rid]
		if len(region.Children) == 0 {
			continue
		}
		all := true
		for _, child := range region.Children {
			if _, ok := nodeIDs[child]; !ok {
				all = false
				break
			}
		}
		if all {
			included[rid] = struct{}{}
		}
	}

	for _, rid := range g.regionOrder {
		if _, ok := included[rid]; !ok {
			continue
		}
		cloned := g.regions[rid].Clone()
		if cloned.Parent != "" {
			if _, ok := included[cloned.Parent]; !ok {
				cloned.Parent = ""
			}
		}
		sub.regionChildren[rid] = append([]NodeID(nil), cloned.Children...)
		for _, child := range cloned.Children {
			sub.nodeRegion[child] = rid
		}
		if cloned.Parent != "" {
			sub.regionParent[rid] = cloned.Parent
		}
		sub.regions[rid] = cloned
		sub.regionOrder = append(sub.regionOrder, rid)
	}

	return sub
}

// Merge copies another graph into this one.
//
// All node, edge, and region ids in other must be disjoint from g; the
// id sets are scanned before any mutation, so a conflict leaves g
// untouched.
func (g *Graph) Merge(other *Graph) error {
	for _, id := range other.nodeOrder {
		if _, ok := g.nodes[id]; ok {
			return NewMergeConflictError("node", string(id))
		}
	}
	for _, id := range other.edgeOrder {
		if _, ok := g.edges[id]; ok {
			return NewMergeConflictError("edge", string(id))
		}
	}
	for _, id := range other.regionOrder {
		if _, ok := g.regions[id]; ok {
			return NewMergeConflictError("region", string(id))
		}
	}

	for _, id := range other.nodeOrder {
		g.nodes[id] = other.nodes[id].Clone()
		g.nodeOrder = append(g.nodeOrder, id)
	}
	for _, id := range other.edgeOrder {
		g.edges[id] = other.edges[id].Clone()
		g.edgeOrder = append(g.edgeOrder, id)
	}
	for _, id := range other.regionOrder {
		g.regions[id] = other.regions[id].Clone()
		g.regionOrder = append(g.regionOrder, id)
	}

	for id, edges := range other.outgoing {
		g.outgoing[id] = append(g.outgoing[id], edges...)
	}
	for id, edges := range other.incoming {
		g.incoming[id] = append(g.incoming[id], edges...)
	}
	for id, children := range other.regionChildren {
		g.regionChildren[id] = append(g.regionChildren[id], children...)
	}
	for nodeID, regionID := range other.nodeRegion {
		g.nodeRegion[nodeID] = regionID
	}
	for childID, parentID := range other.regionParent {
		g.regionParent[childID] = parentID
	}
	return nil
}

// RemoveEdge removes an edge and its index entries.
func (g *Graph) RemoveEdge(id EdgeID) error {
	edge, ok := g.edges[id]
	if !ok {
		return NewEdgeNotFoundError(id)
	}
	delete(g.edges, id)
	g.edgeOrder = removeEdgeID(g.edgeOrder, id)
	g.outgoing[edge.Source.Node] = removeEdgeID(g.outgoing[edge.Source.Node], id)
	g.incoming[edge.Target.Node] = removeEdgeID(g.incoming[edge.Target.Node], id)
	return nil
}

// RemoveNode removes a node, all its connected edges, and its region
// membership.
func (g *Graph) RemoveNode(id NodeID) error {
	if _, ok := g.nodes[id]; !ok {
		return NewNodeNotFoundError(id)
	}

	for _, eid := range append([]EdgeID(nil), g.outgoing[id]...) {
		if edge, ok := g.edges[eid]; ok {
			delete(g.edges, eid)
			g.edgeOrder = removeEdgeID(g.edgeOrder, eid)
			g.incoming[edge.Target.Node] = removeEdgeID(g.incoming[edge.Target.Node], eid)
		}
	}
	for _, eid := range append([]EdgeID(nil), g.incoming[id]...) {
		if edge, ok := g.edges[eid]; ok {
			delete(g.edges, eid)
			g.edgeOrder = removeEdgeID(g.edgeOrder, eid)
			g.outgoing[edge.Source.Node] = removeEdgeID(g.outgoing[edge.Source.Node], eid)
		}
	}

	delete(g.outgoing, id)
	delete(g.incoming, id)

	if regionID, ok := g.nodeRegion[id]; ok {
		delete(g.nodeRegion, id)
		g.regionChildren[regionID] = removeNodeID(g.regionChildren[regionID], id)
		if region, ok := g.regions[regionID]; ok {
			region.Children = removeNodeID(region.Children, id)
		}
	}

	delete(g.nodes, id)
	g.nodeOrder = removeNodeID(g.nodeOrder, id)
	return nil
}

// RemoveRegion removes a region. Child nodes become regionless; child
// sub-regions lose their parent.
func (g *Graph) RemoveRegion(id RegionID) error {
	if _, ok := g.regions[id]; !ok {
		return NewRegionNotFoundError(id)
	}

	for _, child := range g.regionChildren[id] {
		delete(g.nodeRegion, child)
	}
	delete(g.regionChildren, id)

	for _, childRID := range g.regionOrder {
		if g.regionParent[childRID] == id {
			delete(g.regionParent, childRID)
			if region, ok := g.regions[childRID]; ok {
				region.Parent = ""
			}
		}
	}
	delete(g.regionParent, id)

	delete(g.regions, id)
	g.regionOrder = removeRegionID(g.regionOrder, id)
	return nil
}

// InlineRegion flattens a region into its parent.
//
// Child nodes and sub-regions are promoted to the parent region if
// there is one, otherwise they become regionless. Edges between inlined
// nodes are preserved.
func (g *Graph) InlineRegion(id RegionID) error {
	region, ok := g.regions[id]
	if !ok {
		return NewRegionNotFoundError(id)
	}
	children := append([]NodeID(nil), region.Children...)
	parent := region.Parent

	var childSubRegions []RegionID
	for _, rid := range g.regionOrder {
		if g.regionParent[rid] == id {
			childSubRegions = append(childSubRegions, rid)
		}
	}

	if parent != "" {
		for _, child := range children {
			g.nodeRegion[child] = parent
			g.regionChildren[parent] = append(g.regionChildren[parent], child)
			if parentRegion, ok := g.regions[parent]; ok {
				parentRegion.Children = append(parentRegion.Children, child)
			}
		}
		for _, rid := range childSubRegions {
			g.regionParent[rid] = parent
			if sub, ok := g.regions[rid]; ok {
				sub.Parent = parent
			}
		}
	} else {
		for _, child := range children {
			delete(g.nodeRegion, child)
		}
		for _, rid := range childSubRegions {
			delete(g.regionParent, rid)
			if sub, ok := g.regions[rid]; ok {
				sub.Parent = ""
			}
		}
	}

	delete(g.regionChildren, id)
	delete(g.regionParent, id)
	delete(g.regions, id)
	g.regionOrder = removeRegionID(g.regionOrder, id)
	return nil
}

// Compose merges another graph into this one and creates edges between
// the given port pairs. Each connection's endpoints may come from
// either graph.
func (g *Graph) Compose(other *Graph, connections [][2]PortRef) error {
	if err := g.Merge(other); err != nil {
		return err
	}
	for _, conn := range connections {
		if _, err := g.AddEdge(NewEdge(conn[0], conn[1])); err != nil {
			return err
		}
	}
	return nil
}

// BoundaryDirection orients a boundary edge relative to a module.
type BoundaryDirection string

const (
	// BoundaryIn flows into the module.
	BoundaryIn BoundaryDirection = "in"
	// BoundaryOut flows out of the module.
	BoundaryOut BoundaryDirection = "out"
)

// BoundaryEdge is an edge crossing a module boundary.
type BoundaryEdge struct {
	InternalNode NodeID
	InternalPort int
	ExternalNode NodeID
	ExternalPort int
	// DataType flowing on this edge, if declared.
	DataType  ir.Type
	Direction BoundaryDirection
}

// ModuleInterface is a module extracted from a graph with boundary
// information.
type ModuleInterface struct {
	// Graph is the internal subgraph.
	Graph *Graph
	// Inputs are edges flowing into the module.
	Inputs []BoundaryEdge
	// Outputs are edges flowing out of the module.
	Outputs []BoundaryEdge
}

// ExtractModule extracts a subgraph with boundary information for the
// given nodes.
func (g *Graph) ExtractModule(nodeIDs map[NodeID]struct{}) *ModuleInterface {
	sub := g.ExtractSubgraph(nodeIDs)

	var inputs, outputs []BoundaryEdge
	for _, eid := range g.edgeOrder {
		edge := g.edges[eid]
		_, srcIn := nodeIDs[edge.Source.Node]
		_, tgtIn := nodeIDs[edge.Target.Node]

		switch {
		case srcIn && !tgtIn:
			outputs = append(outputs, BoundaryEdge{
				InternalNode: edge.Source.Node,
				InternalPort: edge.Source.Port,
				ExternalNode: edge.Target.Node,
				ExternalPort: edge.Target.Port,
				DataType:     edge.DataType,
				Direction:    BoundaryOut,
			})
		case !srcIn && tgtIn:
			inputs = append(inputs, BoundaryEdge{
				InternalNode: edge.Target.Node,
				InternalPort: edge.Target.Port,
				ExternalNode: edge.Source.Node,
				ExternalPort: edge.Source.Port,
				DataType:     edge.DataType,
				Direction:    BoundaryIn,
			})
		}
	}

	return &ModuleInterface{Graph: sub, Inputs: inputs, Outputs: outputs}
}

// ReplaceSubgraph replaces a set of nodes with a replacement graph,
// reconnecting boundary edges through portMap, which maps each old
// boundary endpoint to its replacement endpoint. Every boundary
// endpoint inside oldNodes must be mapped.
func (g *Graph) ReplaceSubgraph(oldNodes map[NodeID]struct{}, replacement *Graph, portMap map[PortRef]PortRef) error {
	type boundary struct {
		external         PortRef
		internalIsSource bool
		newEndpoint      PortRef
		edge             *Edge
	}

	var descriptors []boundary
	for _, eid := range g.edgeOrder {
		edge := g.edges[eid]
		_, srcIn := oldNodes[edge.Source.Node]
		_, tgtIn := oldNodes[edge.Target.Node]

		switch {
		case srcIn && !tgtIn:
			newEP, ok := portMap[edge.Source]
			if !ok {
				return NewUnmappedBoundaryPortError(edge.Source.Node, edge.Source.Port)
			}
			descriptors = append(descriptors, boundary{
				external:         edge.Target,
				internalIsSource: true,
				newEndpoint:      newEP,
				edge:             edge,
			})
		case !srcIn && tgtIn:
			newEP, ok := portMap[edge.Target]
			if !ok {
				return NewUnmappedBoundaryPortError(edge.Target.Node, edge.Target.Port)
			}
			descriptors = append(descriptors, boundary{
				external:         edge.Source,
				internalIsSource: false,
				newEndpoint:      newEP,
				edge:             edge,
			})
		}
	}

	for _, desc := range descriptors {
		if _, ok := replacement.nodes[desc.newEndpoint.Node]; !ok {
			return NewNodeNotFoundError(desc.newEndpoint.Node)
		}
	}

	// Everything below mutates; validation is done.
	for id := range oldNodes {
		if err := g.RemoveNode(id); err != nil {
			return err
		}
	}
	if err := g.Merge(replacement); err != nil {
		return err
	}
	for _, desc := range descriptors {
		var newEdge *Edge
		if desc.internalIsSource {
			newEdge = NewEdge(desc.newEndpoint, desc.external)
		} else {
			newEdge = NewEdge(desc.external, desc.newEndpoint)
		}
		newEdge.DataType = desc.edge.DataType
		newEdge.Lifetime = desc.edge.Lifetime
		if desc.edge.Bandwidth != nil {
			bw := *desc.edge.Bandwidth
			newEdge.Bandwidth = &bw
		}
		if _, err := g.AddEdge(newEdge); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks graph well-formedness: no dangling edges, region
// containment consistency, port index validity, and parent region
// existence. Returns all errors found.
func (g *Graph) Validate() []error {
	var errs []error

	for _, eid := range g.edgeOrder {
		edge := g.edges[eid]
		_, srcOK := g.nodes[edge.Source.Node]
		_, tgtOK := g.nodes[edge.Target.Node]
		if !srcOK || !tgtOK {
			errs = append(errs, NewDanglingEdgeError(edge.Source.Node, edge.Target.Node))
		}
	}

	for _, rid := range g.regionOrder {
		region := g.regions[rid]
		for _, child := range region.Children {
			if _, ok := g.nodes[child]; !ok {
				errs = append(errs, NewRegionContainmentError(child, rid))
			}
		}
	}

	errs = append(errs, g.ValidatePortTypes()...)

	for _, rid := range g.regionOrder {
		region := g.regions[rid]
		if region.Parent != "" {
			if _, ok := g.regions[region.Parent]; !ok {
				errs = append(errs, NewRegionNotFoundError(region.Parent))
			}
		}
	}

	return errs
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, id := range g.nodeOrder {
		out.nodes[id] = g.nodes[id].Clone()
		out.nodeOrder = append(out.nodeOrder, id)
	}
	for _, id := range g.edgeOrder {
		out.edges[id] = g.edges[id].Clone()
		out.edgeOrder = append(out.edgeOrder, id)
	}
	for _, id := range g.regionOrder {
		out.regions[id] = g.regions[id].Clone()
		out.regionOrder = append(out.regionOrder, id)
	}
	for id, edges := range g.outgoing {
		out.outgoing[id] = append([]EdgeID(nil), edges...)
	}
	for id, edges := range g.incoming {
		out.incoming[id] = append([]EdgeID(nil), edges...)
	}
	for id, children := range g.regionChildren {
		out.regionChildren[id] = append([]NodeID(nil), children...)
	}
	for nodeID, regionID := range g.nodeRegion {
		out.nodeRegion[nodeID] = regionID
	}
	for childID, parentID := range g.regionParent {
		out.regionParent[childID] = parentID
	}
	return out
}

func removeEdgeID(s []EdgeID, id EdgeID) []EdgeID {
	out := s[:0]
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeNodeID(s []NodeID, id NodeID) []NodeID {
	out := s[:0]
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeRegionID(s []RegionID, id RegionID) []RegionID {
	out := s[:0]
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
