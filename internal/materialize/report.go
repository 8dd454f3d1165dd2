package materialize

import (
	"fmt"
	"strings"
)

// MaterializationReport summarizes the entire pipeline run.
type MaterializationReport struct {
	// Target platform name.
	Target string
	// Total pipeline duration in milliseconds.
	DurationMs uint64
	// Canonicalization statistics.
	Canonicalization CanonicalizationStats
	// Whether the verification gate passed.
	VerificationPassed bool
	// Per-pass transform statistics.
	Transforms []TransformStats
	// Longest sequential dependency chain.
	ScheduleDepth int
	// Maximum available parallelism.
	MaxParallelism int
	// Resource fitting report, when layout ran.
	Resources *ResourceReport
}

func (r MaterializationReport) String() string {
	var b strings.Builder

	b.WriteString("=== Materialization Report ===\n")
	fmt.Fprintf(&b, "Target: %s\n", r.Target)
	fmt.Fprintf(&b, "Duration: %d ms\n", r.DurationMs)

	b.WriteString("\n--- Canonicalization ---\n")
	fmt.Fprintf(&b, "  Nodes: %d -> %d (%d deduplicated)\n",
		r.Canonicalization.InitialNodeCount,
		r.Canonicalization.FinalNodeCount,
		r.Canonicalization.NodesDeduplicated)
	fmt.Fprintf(&b, "  Regions: %d inlined, %d flattened\n",
		r.Canonicalization.RegionsInlined,
		r.Canonicalization.RegionsFlattened)

	status := "FAILED"
	if r.VerificationPassed {
		status = "PASSED"
	}
	fmt.Fprintf(&b, "\n--- Verification: %s ---\n", status)

	if len(r.Transforms) > 0 {
		fmt.Fprintf(&b, "\n--- Transforms (%d passes) ---\n", len(r.Transforms))
		for i, stats := range r.Transforms {
			fmt.Fprintf(&b, "  Pass %d: +%d nodes, -%d nodes, +%d edges, -%d edges\n",
				i, stats.NodesAdded, stats.NodesRemoved, stats.EdgesAdded, stats.EdgesRemoved)
		}
	}

	b.WriteString("\n--- Schedule ---\n")
	fmt.Fprintf(&b, "  Sequential depth: %d\n", r.ScheduleDepth)
	fmt.Fprintf(&b, "  Max parallelism: %d\n", r.MaxParallelism)

	if r.Resources != nil {
		b.WriteString("\n")
		b.WriteString(r.Resources.String())
	}

	return b.String()
}

// Summary renders a compact report: the given verification summary
// line, resource usage, and an optional artifact path.
func (r MaterializationReport) Summary(verificationSummary, artifactPath string) string {
	parts := []string{verificationSummary}
	if r.Resources != nil {
		parts = append(parts, r.Resources.FormatCompact())
	}
	if artifactPath != "" {
		parts = append(parts, "Artifact: "+artifactPath)
	}
	return strings.Join(parts, "\n")
}
