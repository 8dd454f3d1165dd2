package verify

import (
	"fmt"
	"strings"

	"github.com/torclang/torc/internal/ir"
)

// DiagnosticSeverity grades a report diagnostic.
type DiagnosticSeverity string

const (
	DiagError   DiagnosticSeverity = "ERROR"
	DiagWarning DiagnosticSeverity = "WARN"
	DiagInfo    DiagnosticSeverity = "INFO"
)

// Diagnostic is one finding about an obligation or the graph.
type Diagnostic struct {
	ObligationID   uint64
	Severity       DiagnosticSeverity
	Message        string
	Context        string
	Counterexample map[string]string
	Suggestions    []string
}

// ReportSummary counts obligations by outcome for one verification run.
type ReportSummary struct {
	Total     int
	Verified  int
	Pending   int
	Failed    int
	Assumed   int
	Waived    int
	CacheHits int
}

// Report is the complete result of a verification run.
type Report struct {
	Summary     ReportSummary
	Diagnostics []Diagnostic
	Profile     ProfileLevel
}

// Passed reports whether every obligation was discharged: nothing
// failed and nothing is left pending.
func (r *Report) Passed() bool {
	return r.Summary.Failed == 0 && r.Summary.Pending == 0
}

// BuildReport assembles a report from the registry, cache statistics,
// and structural diagnostics.
func BuildReport(
	registry *ObligationRegistry,
	cacheStats CacheStats,
	profile ProfileLevel,
	structural []StructuralDiagnostic,
) *Report {
	stats := registry.Statistics()

	report := &Report{
		Summary: ReportSummary{
			Total:     stats.Total,
			Verified:  stats.Verified,
			Pending:   stats.Pending,
			Failed:    stats.Failed,
			Assumed:   stats.Assumed,
			Waived:    stats.Waived,
			CacheHits: cacheStats.Hits,
		},
		Profile: profile,
	}

	for _, sd := range structural {
		severity := DiagError
		if sd.Severity == SeverityWarning {
			severity = DiagWarning
		}
		var suggestions []string
		if sd.Suggestion != "" {
			suggestions = []string{sd.Suggestion}
		}
		context := ""
		if sd.NodeID != "" {
			context = fmt.Sprintf("node %s", sd.NodeID)
		}
		report.Diagnostics = append(report.Diagnostics, Diagnostic{
			Severity:    severity,
			Message:     sd.Message,
			Context:     context,
			Suggestions: suggestions,
		})
	}

	for _, tracked := range registry.All() {
		switch tracked.Obligation.Status.State {
		case ir.StatePending:
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				ObligationID: tracked.ID,
				Severity:     DiagWarning,
				Message:      fmt.Sprintf("obligation remains pending: %s", tracked.Obligation.Description),
				Context:      string(tracked.Obligation.Kind),
				Suggestions:  suggestForKind(tracked.Obligation.Kind),
			})
		case ir.StateFailed:
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				ObligationID: tracked.ID,
				Severity:     DiagError,
				Message:      fmt.Sprintf("obligation disproven: %s", tracked.Obligation.Description),
				Context:      string(tracked.Obligation.Kind),
				Suggestions:  suggestForKind(tracked.Obligation.Kind),
			})
		case ir.StateAssumed:
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				ObligationID: tracked.ID,
				Severity:     DiagInfo,
				Message:      fmt.Sprintf("obligation assumed without proof: %s", tracked.Obligation.Description),
				Context:      string(tracked.Obligation.Kind),
				Suggestions:  []string{"Provide proof or waiver with justification"},
			})
		case ir.StateWaived:
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				ObligationID: tracked.ID,
				Severity:     DiagInfo,
				Message:      fmt.Sprintf("obligation waived: %s", tracked.Obligation.Description),
				Context:      string(tracked.Obligation.Kind),
			})
		}
	}

	return report
}

// suggestForKind proposes remediations for an undischarged obligation.
func suggestForKind(kind ir.ObligationKind) []string {
	switch kind {
	case ir.ObligationTypeRefinement:
		return []string{
			"Add clamping: clamp(output, lo, hi)",
			"Waive obligation (requires justification)",
		}
	case ir.ObligationPrecondition:
		return []string{
			"Strengthen precondition on predecessor",
			"Waive obligation (requires justification)",
		}
	case ir.ObligationPostcondition:
		return []string{
			"Weaken postcondition or add guard",
			"Waive obligation (requires justification)",
		}
	case ir.ObligationResourceBound:
		return []string{
			"Optimize implementation to meet bound",
			"Relax resource bound if safe",
			"Waive obligation (requires justification)",
		}
	case ir.ObligationLinearity:
		return []string{
			"Ensure linear values are consumed exactly once",
			"Waive obligation (requires justification)",
		}
	case ir.ObligationTermination:
		return []string{
			"Provide a ranking function or variant",
			"Waive obligation (requires justification)",
		}
	default:
		return nil
	}
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Verification Report (%s) ===\n", r.Profile)
	fmt.Fprintf(&b,
		"Total: %d | Verified: %d | Pending: %d | Failed: %d | Assumed: %d | Waived: %d | Cache hits: %d\n",
		r.Summary.Total, r.Summary.Verified, r.Summary.Pending, r.Summary.Failed,
		r.Summary.Assumed, r.Summary.Waived, r.Summary.CacheHits)

	if len(r.Diagnostics) == 0 {
		b.WriteString("No diagnostics.\n")
		return b.String()
	}

	b.WriteString("--- Diagnostics ---\n")
	for _, diag := range r.Diagnostics {
		fmt.Fprintf(&b, "[%s] #%d: %s (%s)\n", diag.Severity, diag.ObligationID, diag.Message, diag.Context)
		if len(diag.Counterexample) > 0 {
			fmt.Fprintf(&b, "  Counterexample: %v\n", diag.Counterexample)
		}
		for _, s := range diag.Suggestions {
			fmt.Fprintf(&b, "  Suggestion: %s\n", s)
		}
	}
	return b.String()
}
