package verify

import (
	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/ir"
)

// Severity grades a structural diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// StructuralDiagnostic is one finding from structural analysis.
type StructuralDiagnostic struct {
	Severity   Severity
	Message    string
	NodeID     graph.NodeID
	Suggestion string
}

// StructuralName is the solver name recorded on witnesses produced by
// structural analysis.
const StructuralName = "structural_analysis"

// AnalyzeStructure runs graph well-formedness, linearity, and effect
// validation, producing diagnostics for violations. When linearity
// validation passes, pending Linearity obligations are discharged with
// a structural witness.
func AnalyzeStructure(g *graph.Graph, registry *ObligationRegistry) []StructuralDiagnostic {
	var diagnostics []StructuralDiagnostic

	for _, err := range g.Validate() {
		diagnostics = append(diagnostics, StructuralDiagnostic{
			Severity:   SeverityError,
			Message:    err.Error(),
			Suggestion: "Fix structural well-formedness errors",
		})
	}

	linearityErrs := g.ValidateLinearity()
	for _, err := range linearityErrs {
		diagnostics = append(diagnostics, StructuralDiagnostic{
			Severity:   SeverityError,
			Message:    err.Error(),
			Suggestion: "Ensure linear values are consumed exactly once",
		})
	}

	for _, err := range g.ValidateEffects() {
		diagnostics = append(diagnostics, StructuralDiagnostic{
			Severity:   SeverityError,
			Message:    err.Error(),
			Suggestion: "Declare required effects on the consuming node",
		})
	}

	if len(linearityErrs) == 0 {
		for _, tracked := range registry.Pending() {
			if tracked.Obligation.Kind != ir.ObligationLinearity {
				continue
			}
			witness := GenerateWitness(StructuralName, tracked.Obligation, nil)
			registry.UpdateStatus(tracked.ID, ir.Verified(witness))
		}
	}

	return diagnostics
}
