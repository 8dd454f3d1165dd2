package materialize

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func sampleReport() MaterializationReport {
	return MaterializationReport{
		Target:     "stm32f407-discovery",
		DurationMs: 15,
		Canonicalization: CanonicalizationStats{
			NodesDeduplicated: 2,
			RegionsFlattened:  1,
			RegionsInlined:    1,
			InitialNodeCount:  10,
			FinalNodeCount:    8,
		},
		VerificationPassed: true,
		Transforms: []TransformStats{
			{NodesAdded: 3, NodesRemoved: 1, EdgesAdded: 4, EdgesRemoved: 2},
		},
		ScheduleDepth:  5,
		MaxParallelism: 3,
		Resources: &ResourceReport{
			Flash:  ResourceUsage{Name: "flash", Used: 31244, Available: 1048576, Percent: 3.0},
			RAM:    ResourceUsage{Name: "ram", Used: 2108, Available: 262144, Percent: 0.8},
			Stack:  &ResourceUsage{Name: "stack", Used: 892, Available: 65536, Percent: 1.4},
			AllFit: true,
		},
	}
}

func TestReportRendering(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"))

	g.Assert(t, "materialization_report", []byte(sampleReport().String()))
}

func TestReportFailedVerification(t *testing.T) {
	report := sampleReport()
	report.VerificationPassed = false
	report.Transforms = nil
	report.Resources = nil

	rendered := report.String()
	assert.Contains(t, rendered, "--- Verification: FAILED ---")
	assert.NotContains(t, rendered, "--- Transforms")
	assert.NotContains(t, rendered, "Resource Report")
}

func TestReportSummaryLines(t *testing.T) {
	report := sampleReport()

	summary := report.Summary("Verification: 12/12 obligations discharged", "out/app.elf")
	assert.Contains(t, summary, "Verification: 12/12 obligations discharged")
	assert.Contains(t, summary, "Flash: 31244/1048576 bytes (3.0%)")
	assert.Contains(t, summary, "Artifact: out/app.elf")
}

func TestReportSummaryWithoutArtifact(t *testing.T) {
	report := sampleReport()
	report.Resources = nil

	summary := report.Summary("Verification: clean", "")
	assert.Equal(t, "Verification: clean", summary)
}
