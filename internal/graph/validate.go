package graph

import (
	"fmt"

	"github.com/torclang/torc/internal/ir"
)

// ValidatePortTypes checks that edge port indices are consistent with
// node type signatures: the source port must index into the source
// node's outputs and the target port into the target node's inputs.
// Nodes without type signatures are skipped.
func (g *Graph) ValidatePortTypes() []error {
	var errs []error

	for _, eid := range g.edgeOrder {
		edge := g.edges[eid]
		if src, ok := g.nodes[edge.Source.Node]; ok && src.TypeSignature != nil {
			if edge.Source.Port < 0 || edge.Source.Port >= len(src.TypeSignature.Outputs) {
				errs = append(errs, NewPortOutOfRangeError(edge.Source.Node, edge.Source.Port))
			}
		}
		if tgt, ok := g.nodes[edge.Target.Node]; ok && tgt.TypeSignature != nil {
			if edge.Target.Port < 0 || edge.Target.Port >= len(tgt.TypeSignature.Inputs) {
				errs = append(errs, NewPortOutOfRangeError(edge.Target.Node, edge.Target.Port))
			}
		}
	}

	return errs
}

// ValidateLinearity checks that linear and affine values have the
// correct number of consumers: Linear and Unique need exactly one,
// Affine at most one. Other linearities carry no constraint.
func (g *Graph) ValidateLinearity() []error {
	var errs []error

	for _, nid := range g.nodeOrder {
		node := g.nodes[nid]
		if node.TypeSignature == nil {
			continue
		}

		for portIdx, outputType := range node.TypeSignature.Outputs {
			lin, ok := ir.LinearityOf(outputType)
			if !ok {
				continue
			}

			consumers := 0
			for _, eid := range g.outgoing[nid] {
				edge, ok := g.edges[eid]
				if ok && edge.Source.Node == nid && edge.Source.Port == portIdx {
					consumers++
				}
			}

			switch lin {
			case ir.LinLinear, ir.LinUnique:
				if consumers != 1 {
					errs = append(errs, NewLinearityError(nid, portIdx, lin, consumers))
				}
			case ir.LinAffine:
				if consumers > 1 {
					errs = append(errs, NewLinearityError(nid, portIdx, lin, consumers))
				}
			}
		}
	}

	return errs
}

// ValidateEffects checks that each node's declared effects are a
// superset of the union of its predecessors' effects. Nodes without
// contracts are skipped.
func (g *Graph) ValidateEffects() []error {
	var errs []error

	for _, nid := range g.nodeOrder {
		node := g.nodes[nid]
		if node.Contract == nil {
			continue
		}
		declared := node.Contract.Effects

		required := ir.EmptyEffectSet()
		for _, eid := range g.incoming[nid] {
			edge, ok := g.edges[eid]
			if !ok {
				continue
			}
			pred, ok := g.nodes[edge.Source.Node]
			if !ok || pred.Contract == nil {
				continue
			}
			required.Merge(pred.Contract.Effects)
		}

		if required.IsPure() {
			continue
		}
		if !declared.Contains(required) {
			errs = append(errs, NewEffectViolationError(nid, declared.String(), required.String()))
		}
	}

	return errs
}

// ValidateEdgeTypes checks that edge source and target types are
// compatible, returning any proof obligations generated by refinement
// subtyping. Edges where either node lacks a type signature are
// skipped.
func (g *Graph) ValidateEdgeTypes() ([]ir.ProofObligation, []error) {
	var errs []error
	var obligations []ir.ProofObligation

	for _, eid := range g.edgeOrder {
		edge := g.edges[eid]

		srcType := g.portType(edge.Source, false)
		tgtType := g.portType(edge.Target, true)
		if srcType == nil || tgtType == nil {
			continue
		}

		obs, ok := typesCompatible(srcType, tgtType)
		if !ok {
			errs = append(errs, NewTypeMismatchError(eid, tgtType.String(), srcType.String()))
			continue
		}
		obligations = append(obligations, obs...)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return obligations, nil
}

// portType resolves the type at a port reference: inputs for targets,
// outputs for sources. Returns nil if the node or signature is missing
// or the port is out of range.
func (g *Graph) portType(ref PortRef, input bool) ir.Type {
	node, ok := g.nodes[ref.Node]
	if !ok || node.TypeSignature == nil {
		return nil
	}
	ports := node.TypeSignature.Outputs
	if input {
		ports = node.TypeSignature.Inputs
	}
	if ref.Port < 0 || ref.Port >= len(ports) {
		return nil
	}
	return ports[ref.Port]
}

// typesCompatible decides whether a value of type src may flow into a
// port of type tgt.
//
// Identical renderings are compatible outright. Otherwise the types
// must share a structural base (after stripping refinement, linearity,
// and resource wrappers); refinement differences then become
// TypeRefinement obligations instead of errors:
//
//   - tgt refined, src not: the target predicate must hold
//   - both refined: the source predicate must imply the target's
//   - src refined, tgt not: widening, always safe
func typesCompatible(src, tgt ir.Type) ([]ir.ProofObligation, bool) {
	if src.String() == tgt.String() {
		return nil, true
	}

	if ir.BaseType(src).String() != ir.BaseType(tgt).String() {
		return nil, false
	}

	tgtPred, tgtRefined := refinementOf(tgt)
	if !tgtRefined {
		return nil, true
	}

	pred := tgtPred
	if srcPred, srcRefined := refinementOf(src); srcRefined {
		pred = ir.Implies(srcPred, tgtPred)
	}

	ob := ir.NewObligation(
		ir.ObligationTypeRefinement,
		pred,
		fmt.Sprintf("refinement: value of %s must satisfy %s", src, tgt),
	)
	return []ir.ProofObligation{ob}, true
}

// refinementOf returns the predicate of the outermost refinement in a
// type, unwrapping linearity and resource wrappers.
func refinementOf(t ir.Type) (ir.Predicate, bool) {
	switch v := t.(type) {
	case ir.TyRefined:
		return v.Pred, true
	case ir.TyLinear:
		return refinementOf(v.Inner)
	case ir.TyTimed:
		return refinementOf(v.Inner)
	case ir.TySized:
		return refinementOf(v.Inner)
	case ir.TyPowered:
		return refinementOf(v.Inner)
	default:
		return nil, false
	}
}

// ValidateContracts generates proof obligations from node contracts:
// per-node obligations from each contract, edge-crossing implications
// (postcondition of source implies precondition of target), and
// termination obligations for iteration constructs.
func (g *Graph) ValidateContracts() []ir.ProofObligation {
	var obligations []ir.ProofObligation

	for _, nid := range g.nodeOrder {
		if c := g.nodes[nid].Contract; c != nil {
			obligations = append(obligations, c.GenerateObligations()...)
		}
	}

	for _, eid := range g.edgeOrder {
		edge := g.edges[eid]
		src, srcOK := g.nodes[edge.Source.Node]
		tgt, tgtOK := g.nodes[edge.Target.Node]
		if !srcOK || !tgtOK || src.Contract == nil || tgt.Contract == nil {
			continue
		}
		for _, post := range src.Contract.Postconditions {
			for _, pre := range tgt.Contract.Preconditions {
				obligations = append(obligations, ir.NewObligation(
					ir.ObligationPrecondition,
					ir.Implies(post, pre),
					"edge-crossing: postcondition of source implies precondition of target",
				))
			}
		}
	}

	for _, nid := range g.nodeOrder {
		node := g.nodes[nid]
		if node.Kind.CycleExempt() {
			obligations = append(obligations, ir.NewObligation(
				ir.ObligationTermination,
				ir.True(),
				fmt.Sprintf("%s node must terminate", node.Kind),
			))
		}
	}

	return obligations
}

// ValidateTypes runs all type-related validation: linearity, effect
// propagation, edge type compatibility, and contract obligation
// generation. Obligations are returned only when no errors were found.
// Structural validation (Validate) runs separately.
func (g *Graph) ValidateTypes() ([]ir.ProofObligation, []error) {
	var allErrors []error
	var allObligations []ir.ProofObligation

	allErrors = append(allErrors, g.ValidateLinearity()...)
	allErrors = append(allErrors, g.ValidateEffects()...)

	obs, errs := g.ValidateEdgeTypes()
	if len(errs) > 0 {
		allErrors = append(allErrors, errs...)
	} else {
		allObligations = append(allObligations, obs...)
	}

	allObligations = append(allObligations, g.ValidateContracts()...)

	if len(allErrors) > 0 {
		return nil, allErrors
	}
	return allObligations, nil
}
