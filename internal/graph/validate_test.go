package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torclang/torc/internal/ir"
)

func producer(id string, out ir.Type) *Node {
	return NewNodeWithID(NodeID(id), Kind(ClassLiteral)).
		WithTypeSignature(ir.Source(out))
}

func consumer(id string, in ir.Type) *Node {
	return NewNodeWithID(NodeID(id), Kind(ClassWrite)).
		WithTypeSignature(ir.Sink(in))
}

func TestLinearValueSingleConsumerOK(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.AsLinear(ir.I32())))
	c := mustAddNode(t, g, consumer("c", ir.AsLinear(ir.I32())))
	mustAddEdge(t, g, p, c)

	assert.Empty(t, g.ValidateLinearity())
}

func TestLinearValueUnconsumed(t *testing.T) {
	g := New()
	mustAddNode(t, g, producer("p", ir.AsLinear(ir.I32())))

	errs := g.ValidateLinearity()
	require.Len(t, errs, 1)
	var ge *GraphError
	require.ErrorAs(t, errs[0], &ge)
	assert.Equal(t, ErrCodeLinearityViolation, ge.Code)
	assert.Equal(t, "0", ge.Details["consumers"])
}

func TestLinearValueDoubleConsumed(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.AsLinear(ir.I32())))
	c1 := mustAddNode(t, g, consumer("c1", ir.I32()))
	c2 := mustAddNode(t, g, consumer("c2", ir.I32()))
	mustAddEdge(t, g, p, c1)
	mustAddEdge(t, g, p, c2)

	errs := g.ValidateLinearity()
	require.Len(t, errs, 1)
	var ge *GraphError
	require.ErrorAs(t, errs[0], &ge)
	assert.Equal(t, "2", ge.Details["consumers"])
}

func TestAffineValueMayBeDropped(t *testing.T) {
	g := New()
	mustAddNode(t, g, producer("p", ir.WithLinearity(ir.I32(), ir.LinAffine)))
	assert.Empty(t, g.ValidateLinearity())
}

func TestAffineValueDoubleConsumed(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.WithLinearity(ir.I32(), ir.LinAffine)))
	c1 := mustAddNode(t, g, consumer("c1", ir.I32()))
	c2 := mustAddNode(t, g, consumer("c2", ir.I32()))
	mustAddEdge(t, g, p, c1)
	mustAddEdge(t, g, p, c2)

	errs := g.ValidateLinearity()
	require.Len(t, errs, 1)
}

func TestSharedValueManyConsumers(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.AsShared(ir.I32())))
	for _, id := range []string{"c1", "c2", "c3"} {
		c := mustAddNode(t, g, consumer(id, ir.I32()))
		mustAddEdge(t, g, p, c)
	}
	assert.Empty(t, g.ValidateLinearity())
}

func TestEffectPropagationViolation(t *testing.T) {
	g := New()
	reader := mustAddNode(t, g, NewNodeWithID("reader", Kind(ClassRead)).
		WithContract(ir.PureDefault().WithEffects(ir.FromEffects(ir.IO("uart0")))))
	// Downstream node claims purity despite depending on IO.
	pure := mustAddNode(t, g, NewNodeWithID("pure", Arithmetic(ArithAdd)).
		WithContract(ir.PureDefault()))
	mustAddEdge(t, g, reader, pure)

	errs := g.ValidateEffects()
	require.Len(t, errs, 1)
	var ge *GraphError
	require.ErrorAs(t, errs[0], &ge)
	assert.Equal(t, ErrCodeEffectViolation, ge.Code)
	assert.Equal(t, "IO<uart0>", ge.Details["required"])
}

func TestEffectPropagationDeclared(t *testing.T) {
	g := New()
	reader := mustAddNode(t, g, NewNodeWithID("reader", Kind(ClassRead)).
		WithContract(ir.PureDefault().WithEffects(ir.FromEffects(ir.IO("uart0")))))
	sink := mustAddNode(t, g, NewNodeWithID("sink", Kind(ClassWrite)).
		WithContract(ir.PureDefault().WithEffects(ir.FromEffects(ir.IO("uart0"), ir.IO("spi1")))))
	mustAddEdge(t, g, reader, sink)

	assert.Empty(t, g.ValidateEffects())
}

func TestNegativePortRejected(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.I32()))
	c := mustAddNode(t, g, consumer("c", ir.I32()))
	_, err := g.AddEdge(NewEdge(At(p, 0), At(c, -1)))
	require.NoError(t, err)
	_, err = g.AddEdge(NewEdge(At(p, -2), At(c, 0)))
	require.NoError(t, err)

	errs := g.ValidatePortTypes()
	require.Len(t, errs, 2)
	var ge *GraphError
	require.ErrorAs(t, errs[0], &ge)
	assert.Equal(t, ErrCodePortOutOfRange, ge.Code)
	assert.Equal(t, -1, ge.Port)

	// Edge-type checking skips the unresolvable ports instead of
	// indexing with them.
	obligations, typeErrs := g.ValidateEdgeTypes()
	assert.Empty(t, obligations)
	assert.Empty(t, typeErrs)
}

func TestEdgeTypeMismatch(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.I32()))
	c := mustAddNode(t, g, consumer("c", ir.TyBool{}))
	e := mustAddEdge(t, g, p, c)

	_, errs := g.ValidateEdgeTypes()
	require.Len(t, errs, 1)
	var ge *GraphError
	require.ErrorAs(t, errs[0], &ge)
	assert.Equal(t, ErrCodeTypeMismatch, ge.Code)
	assert.Equal(t, e, ge.Edge)
	assert.Equal(t, "Bool", ge.Details["expected"])
	assert.Equal(t, "i32", ge.Details["found"])
}

func TestEdgeTypeExactMatch(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.I32()))
	c := mustAddNode(t, g, consumer("c", ir.I32()))
	mustAddEdge(t, g, p, c)

	obs, errs := g.ValidateEdgeTypes()
	assert.Empty(t, errs)
	assert.Empty(t, obs)
}

func TestRefinementGeneratesObligation(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.I32()))
	c := mustAddNode(t, g, consumer("c", ir.Refine(ir.I32(), ir.Positive("value"))))
	mustAddEdge(t, g, p, c)

	obs, errs := g.ValidateEdgeTypes()
	require.Empty(t, errs)
	require.Len(t, obs, 1)
	assert.Equal(t, ir.ObligationTypeRefinement, obs[0].Kind)
	assert.Equal(t, "(value > 0)", obs[0].Predicate.String())
	assert.Equal(t, ir.StatePending, obs[0].Status.State)
}

func TestRefinementWideningIsFree(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.Refine(ir.I32(), ir.Positive("value"))))
	c := mustAddNode(t, g, consumer("c", ir.I32()))
	mustAddEdge(t, g, p, c)

	obs, errs := g.ValidateEdgeTypes()
	assert.Empty(t, errs)
	assert.Empty(t, obs, "dropping a refinement needs no proof")
}

func TestRefinementToRefinementImplication(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.Refine(ir.I32(), ir.Gt(ir.Ref("value"), ir.Int(10)))))
	c := mustAddNode(t, g, consumer("c", ir.Refine(ir.I32(), ir.Positive("value"))))
	mustAddEdge(t, g, p, c)

	obs, errs := g.ValidateEdgeTypes()
	require.Empty(t, errs)
	require.Len(t, obs, 1)
	assert.Equal(t, "((value > 10) => (value > 0))", obs[0].Predicate.String())
}

func TestContractObligationsEdgeCrossing(t *testing.T) {
	g := New()
	src := mustAddNode(t, g, NewNodeWithID("src", Arithmetic(ArithAdd)).
		WithContract(ir.WithConditions(nil, []ir.Predicate{ir.Positive("out")})))
	tgt := mustAddNode(t, g, NewNodeWithID("tgt", Arithmetic(ArithMul)).
		WithContract(ir.WithConditions([]ir.Predicate{ir.Positive("in")}, nil)))
	mustAddEdge(t, g, src, tgt)

	obs := g.ValidateContracts()

	var crossing []ir.ProofObligation
	for _, ob := range obs {
		if ob.Description == "edge-crossing: postcondition of source implies precondition of target" {
			crossing = append(crossing, ob)
		}
	}
	require.Len(t, crossing, 1)
	assert.Equal(t, ir.ObligationPrecondition, crossing[0].Kind)
	assert.Equal(t, "((out > 0) => (in > 0))", crossing[0].Predicate.String())
}

func TestTerminationObligations(t *testing.T) {
	g := New()
	mustAddNode(t, g, NewNodeWithID("loop", Kind(ClassIterate)))
	mustAddNode(t, g, NewNodeWithID("fix", Kind(ClassFixpoint)))
	mustAddNode(t, g, NewNodeWithID("add", Arithmetic(ArithAdd)))

	obs := g.ValidateContracts()
	var terms []string
	for _, ob := range obs {
		if ob.Kind == ir.ObligationTermination {
			terms = append(terms, ob.Description)
		}
	}
	assert.ElementsMatch(t, []string{
		"Iterate node must terminate",
		"Fixpoint node must terminate",
	}, terms)
}

func TestValidateTypesCollectsEverything(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.I32()))
	c := mustAddNode(t, g, NewNodeWithID("c", Kind(ClassWrite)).
		WithTypeSignature(ir.Sink(ir.Refine(ir.I32(), ir.Positive("value")))).
		WithContract(ir.WithConditions([]ir.Predicate{ir.Positive("value")}, nil)))
	mustAddEdge(t, g, p, c)

	obs, errs := g.ValidateTypes()
	require.Empty(t, errs)

	kinds := map[ir.ObligationKind]int{}
	for _, ob := range obs {
		kinds[ob.Kind]++
	}
	assert.Equal(t, 1, kinds[ir.ObligationTypeRefinement])
	assert.Equal(t, 1, kinds[ir.ObligationPrecondition])
}

func TestValidateTypesSuppressesObligationsOnError(t *testing.T) {
	g := New()
	p := mustAddNode(t, g, producer("p", ir.AsLinear(ir.I32())))
	c := mustAddNode(t, g, NewNodeWithID("c", Kind(ClassWrite)).
		WithTypeSignature(ir.Sink(ir.I32())).
		WithContract(ir.WithConditions([]ir.Predicate{ir.Positive("value")}, nil)))
	mustAddEdge(t, g, p, c)
	// Second consumer breaks linearity.
	c2 := mustAddNode(t, g, consumer("c2", ir.I32()))
	mustAddEdge(t, g, p, c2)

	obs, errs := g.ValidateTypes()
	require.NotEmpty(t, errs)
	assert.Nil(t, obs)
}
