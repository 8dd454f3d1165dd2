package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torclang/torc/internal/ir"
)

func lit(id string) *Node {
	return NewNodeWithID(NodeID(id), Kind(ClassLiteral))
}

func mustAddNode(t *testing.T, g *Graph, n *Node) NodeID {
	t.Helper()
	id, err := g.AddNode(n)
	require.NoError(t, err)
	return id
}

func mustAddEdge(t *testing.T, g *Graph, src, dst NodeID) EdgeID {
	t.Helper()
	id, err := g.AddEdge(NewEdge(At(src, 0), At(dst, 0)))
	require.NoError(t, err)
	return id
}

func nodeSet(ids ...NodeID) map[NodeID]struct{} {
	out := make(map[NodeID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func TestEmptyGraph(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 0, g.RegionCount())
	assert.Empty(t, g.Validate())
}

func TestAddNodesAndEdges(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, NewNodeWithID("b", Arithmetic(ArithAdd)))
	e := mustAddEdge(t, g, a, b)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())

	node, ok := g.Node(b)
	require.True(t, ok)
	assert.Equal(t, "Arithmetic(Add)", node.Kind.String())

	assert.Equal(t, []EdgeID{e}, g.OutgoingEdges(a))
	assert.Equal(t, []EdgeID{e}, g.IncomingEdges(b))
	assert.Empty(t, g.IncomingEdges(a))
}

func TestDuplicateNodeRejected(t *testing.T) {
	g := New()
	mustAddNode(t, g, lit("a"))
	_, err := g.AddNode(lit("a"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeDuplicateNode, ErrorCode(err))
}

func TestDuplicateEdgeRejected(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	edge := NewEdge(At(a, 0), At(b, 0))
	_, err := g.AddEdge(edge)
	require.NoError(t, err)
	_, err = g.AddEdge(edge)
	require.Error(t, err)
	assert.Equal(t, ErrCodeDuplicateEdge, ErrorCode(err))
}

func TestDanglingEdgeRejected(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	_, err := g.AddEdge(NewEdge(At(a, 0), At("missing", 0)))
	require.Error(t, err)
	assert.Equal(t, ErrCodeDanglingEdge, ErrorCode(err))
}

func TestAddRegionValidatesChildren(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))

	_, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a, "missing"}))
	require.Error(t, err)
	assert.Equal(t, ErrCodeNodeNotFound, ErrorCode(err))
	assert.True(t, IsNotFoundError(err))

	_, err = g.AddRegion(NewRegion(RegionSequential, []NodeID{a, a}))
	require.Error(t, err)
	assert.Equal(t, ErrCodeDuplicateRegionChild, ErrorCode(err))
}

func TestRegionMembership(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	rid, err := g.AddRegion(NewRegion(RegionParallel, []NodeID{a, b}))
	require.NoError(t, err)

	got, ok := g.ContainingRegion(a)
	require.True(t, ok)
	assert.Equal(t, rid, got)

	region, ok := g.Region(rid)
	require.True(t, ok)
	assert.Equal(t, RegionParallel, region.Kind)
	assert.Equal(t, []NodeID{a, b}, region.Children)
}

func TestRegionParentTracking(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	parent, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a}))
	require.NoError(t, err)
	child, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{b}))
	require.NoError(t, err)

	require.NoError(t, g.SetRegionParent(child, parent))

	got, ok := g.ParentRegion(child)
	require.True(t, ok)
	assert.Equal(t, parent, got)
	assert.Equal(t, []RegionID{child}, g.ChildRegions(parent))

	region, _ := g.Region(child)
	assert.Equal(t, parent, region.Parent)

	err = g.SetRegionParent(child, "missing")
	require.Error(t, err)
	assert.Equal(t, ErrCodeRegionNotFound, ErrorCode(err))
}

func TestRegionParentStaysForest(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	c := mustAddNode(t, g, lit("c"))
	top, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a}))
	require.NoError(t, err)
	mid, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{b}))
	require.NoError(t, err)
	leaf, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{c}))
	require.NoError(t, err)

	err = g.SetRegionParent(top, top)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRegionCycle, ErrorCode(err))
	_, ok := g.ParentRegion(top)
	assert.False(t, ok)

	require.NoError(t, g.SetRegionParent(mid, top))
	require.NoError(t, g.SetRegionParent(leaf, mid))

	err = g.SetRegionParent(top, leaf)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRegionCycle, ErrorCode(err))
	_, ok = g.ParentRegion(top)
	assert.False(t, ok, "rejected assignment must not be recorded")

	got, ok := g.ParentRegion(leaf)
	require.True(t, ok)
	assert.Equal(t, mid, got)
}

func TestTopologicalSortChain(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	c := mustAddNode(t, g, lit("c"))
	mustAddEdge(t, g, a, b)
	mustAddEdge(t, g, b, c)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []NodeID{a, b, c}, order)
}

func TestTopologicalSortRespectsEdges(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	c := mustAddNode(t, g, lit("c"))
	d := mustAddNode(t, g, lit("d"))
	mustAddEdge(t, g, a, c)
	mustAddEdge(t, g, b, c)
	mustAddEdge(t, g, c, d)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := map[NodeID]int{}
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[a], pos[c])
	assert.Less(t, pos[b], pos[c])
	assert.Less(t, pos[c], pos[d])
}

func TestTopologicalSortIsDeterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		for _, id := range []string{"c", "a", "b"} {
			mustAddNode(t, g, lit(id))
		}
		return g
	}
	first, err := build().TopologicalSort()
	require.NoError(t, err)
	second, err := build().TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCycleThroughIterateAllowed(t *testing.T) {
	g := New()
	it := mustAddNode(t, g, NewNodeWithID("it", Kind(ClassIterate)))
	body := mustAddNode(t, g, NewNodeWithID("body", Arithmetic(ArithAdd)))
	mustAddEdge(t, g, it, body)
	mustAddEdge(t, g, body, it) // back-edge

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, it, order[0], "iterate node is forced through first")
}

func TestIllegalCycleDetected(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, NewNodeWithID("a", Arithmetic(ArithAdd)))
	b := mustAddNode(t, g, NewNodeWithID("b", Arithmetic(ArithMul)))
	mustAddEdge(t, g, a, b)
	mustAddEdge(t, g, b, a)

	_, err := g.TopologicalSort()
	require.Error(t, err)
	assert.True(t, IsCycleError(err))
}

func TestExtractSubgraph(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	c := mustAddNode(t, g, lit("c"))
	mustAddEdge(t, g, a, b)
	mustAddEdge(t, g, b, c)

	sub := g.ExtractSubgraph(nodeSet(a, b))
	assert.Equal(t, 2, sub.NodeCount())
	assert.Equal(t, 1, sub.EdgeCount(), "only internal edges are copied")
}

func TestExtractSubgraphRegions(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	c := mustAddNode(t, g, lit("c"))

	contained, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a, b}))
	require.NoError(t, err)
	_, err = g.AddRegion(NewRegion(RegionSequential, []NodeID{b, c}))
	require.NoError(t, err)

	sub := g.ExtractSubgraph(nodeSet(a, b))
	assert.Equal(t, 1, sub.RegionCount(), "partially contained regions are dropped")
	_, ok := sub.Region(contained)
	assert.True(t, ok)
}

func TestExtractSubgraphDropsStaleParent(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	outer, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{b}))
	require.NoError(t, err)
	inner, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a}))
	require.NoError(t, err)
	require.NoError(t, g.SetRegionParent(inner, outer))

	sub := g.ExtractSubgraph(nodeSet(a))
	region, ok := sub.Region(inner)
	require.True(t, ok)
	assert.Empty(t, region.Parent, "parent outside the extraction is cleared")
}

func TestMergeDisjointGraphs(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	other := New()
	b := mustAddNode(t, other, lit("b"))
	c := mustAddNode(t, other, lit("c"))
	mustAddEdge(t, other, b, c)

	require.NoError(t, g.Merge(other))
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	_, ok := g.Node(a)
	assert.True(t, ok)
}

func TestMergeConflicts(t *testing.T) {
	g := New()
	mustAddNode(t, g, lit("shared"))
	other := New()
	mustAddNode(t, other, lit("shared"))

	err := g.Merge(other)
	require.Error(t, err)
	assert.Equal(t, ErrCodeMergeConflict, ErrorCode(err))

	// A failed merge leaves the destination untouched.
	assert.Equal(t, 1, g.NodeCount())
}

func TestMergeEdgeConflict(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	edge := NewEdge(At(a, 0), At(b, 0))
	_, err := g.AddEdge(edge)
	require.NoError(t, err)

	other := New()
	x := mustAddNode(t, other, lit("x"))
	y := mustAddNode(t, other, lit("y"))
	dup := NewEdge(At(x, 0), At(y, 0))
	dup.ID = edge.ID
	_, err = other.AddEdge(dup)
	require.NoError(t, err)

	err = g.Merge(other)
	require.Error(t, err)
	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "edge", ge.Details["kind"])
}

func TestComposeConnectsGraphs(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	other := New()
	b := mustAddNode(t, other, lit("b"))

	require.NoError(t, g.Compose(other, [][2]PortRef{{At(a, 0), At(b, 0)}}))
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Len(t, g.OutgoingEdges(a), 1)
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	e := mustAddEdge(t, g, a, b)

	require.NoError(t, g.RemoveEdge(e))
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.OutgoingEdges(a))
	assert.Empty(t, g.IncomingEdges(b))

	err := g.RemoveEdge(e)
	require.Error(t, err)
	assert.Equal(t, ErrCodeEdgeNotFound, ErrorCode(err))
}

func TestRemoveNodeCleansUp(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	c := mustAddNode(t, g, lit("c"))
	mustAddEdge(t, g, a, b)
	mustAddEdge(t, g, b, c)
	rid, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a, b}))
	require.NoError(t, err)

	require.NoError(t, g.RemoveNode(b))

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount(), "connected edges are removed")
	assert.Empty(t, g.OutgoingEdges(a))
	assert.Empty(t, g.IncomingEdges(c))

	region, _ := g.Region(rid)
	assert.Equal(t, []NodeID{a}, region.Children)
}

func TestRemoveRegionOrphansChildren(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	outer, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a}))
	require.NoError(t, err)
	inner, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{b}))
	require.NoError(t, err)
	require.NoError(t, g.SetRegionParent(inner, outer))

	require.NoError(t, g.RemoveRegion(outer))

	_, ok := g.ContainingRegion(a)
	assert.False(t, ok, "child nodes become regionless")
	_, ok = g.ParentRegion(inner)
	assert.False(t, ok, "sub-regions lose their parent")
	region, _ := g.Region(inner)
	assert.Empty(t, region.Parent)
}

func TestInlineRegionWithParent(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	parent, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a}))
	require.NoError(t, err)
	inner, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{b}))
	require.NoError(t, err)
	require.NoError(t, g.SetRegionParent(inner, parent))

	require.NoError(t, g.InlineRegion(inner))

	got, ok := g.ContainingRegion(b)
	require.True(t, ok)
	assert.Equal(t, parent, got, "children promoted to parent region")
	parentRegion, _ := g.Region(parent)
	assert.Contains(t, parentRegion.Children, b)
	assert.Equal(t, 1, g.RegionCount())
}

func TestInlineTopLevelRegion(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	rid, err := g.AddRegion(NewRegion(RegionSequential, []NodeID{a}))
	require.NoError(t, err)

	require.NoError(t, g.InlineRegion(rid))

	_, ok := g.ContainingRegion(a)
	assert.False(t, ok, "children become regionless")
	assert.Equal(t, 0, g.RegionCount())
}

func TestExtractModuleBoundaries(t *testing.T) {
	g := New()
	outside := mustAddNode(t, g, lit("outside"))
	in1 := mustAddNode(t, g, NewNodeWithID("in1", Arithmetic(ArithAdd)))
	in2 := mustAddNode(t, g, NewNodeWithID("in2", Arithmetic(ArithMul)))
	sink := mustAddNode(t, g, lit("sink"))
	mustAddEdge(t, g, outside, in1)
	mustAddEdge(t, g, in1, in2)
	mustAddEdge(t, g, in2, sink)

	mod := g.ExtractModule(nodeSet(in1, in2))
	assert.Equal(t, 2, mod.Graph.NodeCount())
	assert.Equal(t, 1, mod.Graph.EdgeCount())
	require.Len(t, mod.Inputs, 1)
	require.Len(t, mod.Outputs, 1)
	assert.Equal(t, in1, mod.Inputs[0].InternalNode)
	assert.Equal(t, outside, mod.Inputs[0].ExternalNode)
	assert.Equal(t, BoundaryIn, mod.Inputs[0].Direction)
	assert.Equal(t, in2, mod.Outputs[0].InternalNode)
	assert.Equal(t, sink, mod.Outputs[0].ExternalNode)
	assert.Equal(t, BoundaryOut, mod.Outputs[0].Direction)
}

func TestReplaceSubgraph(t *testing.T) {
	g := New()
	src := mustAddNode(t, g, lit("src"))
	old := mustAddNode(t, g, NewNodeWithID("old", Arithmetic(ArithAdd)))
	dst := mustAddNode(t, g, lit("dst"))
	mustAddEdge(t, g, src, old)
	mustAddEdge(t, g, old, dst)

	replacement := New()
	neu := mustAddNode(t, replacement, NewNodeWithID("new", Arithmetic(ArithMul)))

	portMap := map[PortRef]PortRef{
		At(old, 0): At(neu, 0),
	}
	require.NoError(t, g.ReplaceSubgraph(nodeSet(old), replacement, portMap))

	_, ok := g.Node(old)
	assert.False(t, ok)
	_, ok = g.Node(neu)
	assert.True(t, ok)
	assert.Equal(t, 2, g.EdgeCount(), "boundary edges are reconnected")
	assert.Len(t, g.OutgoingEdges(src), 1)
	assert.Len(t, g.IncomingEdges(dst), 1)
}

func TestReplaceSubgraphUnmappedPort(t *testing.T) {
	g := New()
	src := mustAddNode(t, g, lit("src"))
	old := mustAddNode(t, g, NewNodeWithID("old", Arithmetic(ArithAdd)))
	mustAddEdge(t, g, src, old)

	replacement := New()
	mustAddNode(t, replacement, NewNodeWithID("new", Arithmetic(ArithMul)))

	err := g.ReplaceSubgraph(nodeSet(old), replacement, map[PortRef]PortRef{})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnmappedBoundaryPort, ErrorCode(err))

	// Nothing was mutated.
	_, ok := g.Node(old)
	assert.True(t, ok)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestValidateWellFormedGraph(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a").WithTypeSignature(ir.Source(ir.I32())))
	b := mustAddNode(t, g, NewNodeWithID("b", Arithmetic(ArithAdd)).
		WithTypeSignature(ir.PureFn([]ir.Type{ir.I32()}, ir.I32())))
	mustAddEdge(t, g, a, b)

	assert.Empty(t, g.Validate())
}

func TestValidatePortOutOfRange(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a").WithTypeSignature(ir.Source(ir.I32())))
	b := mustAddNode(t, g, lit("b").WithTypeSignature(ir.Sink(ir.I32())))
	_, err := g.AddEdge(NewEdge(At(a, 5), At(b, 0)))
	require.NoError(t, err)

	errs := g.Validate()
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		var ge *GraphError
		if assert.ErrorAs(t, e, &ge) && ge.Code == ErrCodePortOutOfRange && ge.Node == a && ge.Port == 5 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCloneIsIndependent(t *testing.T) {
	g := New()
	a := mustAddNode(t, g, lit("a"))
	b := mustAddNode(t, g, lit("b"))
	mustAddEdge(t, g, a, b)

	clone := g.Clone()
	require.NoError(t, clone.RemoveNode(b))

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 1, clone.NodeCount())
}

func TestNodeContentHashIgnoresIdentity(t *testing.T) {
	a := NewNodeWithID("a", Arithmetic(ArithAdd)).
		WithTypeSignature(ir.PureFn([]ir.Type{ir.I32(), ir.I32()}, ir.I32()))
	b := NewNodeWithID("b", Arithmetic(ArithAdd)).
		WithTypeSignature(ir.PureFn([]ir.Type{ir.I32(), ir.I32()}, ir.I32())).
		WithAnnotation("hint", "unroll")

	assert.Equal(t, a.ContentHash(), b.ContentHash(),
		"ids and annotations are excluded from content identity")

	c := NewNodeWithID("c", Arithmetic(ArithSub)).
		WithTypeSignature(ir.PureFn([]ir.Type{ir.I32(), ir.I32()}, ir.I32()))
	assert.NotEqual(t, a.ContentHash(), c.ContentHash())
}
