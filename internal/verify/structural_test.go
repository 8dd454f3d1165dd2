package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/ir"
)

func TestLinearityObligationsDischarged(t *testing.T) {
	g := graph.New()
	n1 := graph.NewNodeWithID("n1", graph.Kind(graph.ClassLiteral)).
		WithTypeSignature(ir.Source(ir.AsLinear(ir.I32())))
	n2 := graph.NewNodeWithID("n2", graph.Arithmetic(graph.ArithAdd)).
		WithTypeSignature(ir.PureFn([]ir.Type{ir.AsLinear(ir.I32())}, ir.I32()))
	id1, err := g.AddNode(n1)
	require.NoError(t, err)
	id2, err := g.AddNode(n2)
	require.NoError(t, err)
	_, err = g.AddEdge(graph.NewEdge(graph.At(id1, 0), graph.At(id2, 0)))
	require.NoError(t, err)

	registry := CollectFromGraph(g)
	registry.Add(ir.NewObligation(ir.ObligationLinearity, ir.True(),
		"linear buffer consumed exactly once"), id1, "")

	diagnostics := AnalyzeStructure(g, registry)
	assert.Empty(t, diagnostics)

	for _, tracked := range registry.ByKind(ir.ObligationLinearity) {
		assert.Equal(t, ir.StateVerified, tracked.Obligation.Status.State)
		require.NotNil(t, tracked.Obligation.Status.Witness)
		assert.Equal(t, StructuralName, tracked.Obligation.Status.Witness.Solver)
	}
}

func TestLinearityViolationBlocksDischarge(t *testing.T) {
	g := graph.New()
	n1 := graph.NewNodeWithID("n1", graph.Kind(graph.ClassLiteral)).
		WithTypeSignature(ir.Source(ir.AsLinear(ir.I32())))
	_, err := g.AddNode(n1)
	require.NoError(t, err)

	registry := NewRegistry()
	id := registry.Add(ir.NewObligation(ir.ObligationLinearity, ir.True(), "unused linear value"), "", "")

	diagnostics := AnalyzeStructure(g, registry)
	require.NotEmpty(t, diagnostics)
	assert.Equal(t, SeverityError, diagnostics[0].Severity)

	tracked, _ := registry.Get(id)
	assert.Equal(t, ir.StatePending, tracked.Obligation.Status.State)
}

func TestEffectViolationsReported(t *testing.T) {
	g := graph.New()
	n1 := graph.NewNodeWithID("n1", graph.Kind(graph.ClassRead)).
		WithTypeSignature(ir.Source(ir.I32())).
		WithContract(ir.PureDefault().WithEffects(ir.FromEffects(ir.IO("ADC"))))
	n2 := graph.NewNodeWithID("n2", graph.Arithmetic(graph.ArithAdd)).
		WithTypeSignature(ir.PureFn([]ir.Type{ir.I32()}, ir.I32())).
		WithContract(ir.PureDefault())
	id1, err := g.AddNode(n1)
	require.NoError(t, err)
	id2, err := g.AddNode(n2)
	require.NoError(t, err)
	_, err = g.AddEdge(graph.TypedEdge(graph.At(id1, 0), graph.At(id2, 0), ir.I32()))
	require.NoError(t, err)

	registry := CollectFromGraph(g)
	diagnostics := AnalyzeStructure(g, registry)

	found := false
	for _, d := range diagnostics {
		if d.Severity == SeverityError && d.Suggestion == "Declare required effects on the consuming node" {
			assert.NotEmpty(t, d.Message)
			found = true
		}
	}
	assert.True(t, found)
}

func TestWellformednessErrorsDiagnosed(t *testing.T) {
	g := graph.New()
	region := graph.NewRegion(graph.RegionSequential, nil).WithParent("missing-parent")
	_, err := g.AddRegion(region)
	require.NoError(t, err)

	registry := NewRegistry()
	diagnostics := AnalyzeStructure(g, registry)

	require.NotEmpty(t, diagnostics)
	assert.Equal(t, SeverityError, diagnostics[0].Severity)
}
