package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyContractNoObligations(t *testing.T) {
	c := PureDefault()
	assert.Empty(t, c.GenerateObligations())
}

func TestPreconditionGeneratesObligation(t *testing.T) {
	c := WithConditions([]Predicate{Positive("input")}, nil)
	obs := c.GenerateObligations()
	require.Len(t, obs, 1)
	assert.Equal(t, ObligationPrecondition, obs[0].Kind)
	assert.Equal(t, StatePending, obs[0].Status.State)
	assert.Nil(t, obs[0].Status.Witness)
}

func TestPostconditionGeneratesObligation(t *testing.T) {
	c := WithConditions(nil, []Predicate{Positive("output")})
	obs := c.GenerateObligations()
	require.Len(t, obs, 1)
	assert.Equal(t, ObligationPostcondition, obs[0].Kind)
}

func TestTrivialPredicateSkipped(t *testing.T) {
	c := WithConditions([]Predicate{True()}, nil)
	assert.Empty(t, c.GenerateObligations())
}

func TestWCETGeneratesResourceBound(t *testing.T) {
	c := PureDefault().WithWCET(50_000, "arm-cortex-m4f-168mhz")
	obs := c.GenerateObligations()
	require.Len(t, obs, 1)
	assert.Equal(t, ObligationResourceBound, obs[0].Kind)
	assert.Contains(t, obs[0].Description, "WCET")
	assert.Contains(t, obs[0].Description, "50000ns")
	assert.Contains(t, obs[0].Description, "arm-cortex-m4f-168mhz")
}

func TestNoHeapGeneratesResourceBound(t *testing.T) {
	c := PureDefault().WithNoHeap()
	obs := c.GenerateObligations()
	require.Len(t, obs, 1)
	assert.Equal(t, ObligationResourceBound, obs[0].Kind)
	assert.Contains(t, obs[0].Description, "no heap")
}

func TestStackBoundGeneratesObligation(t *testing.T) {
	c := PureDefault().WithStack(1024)
	obs := c.GenerateObligations()
	require.Len(t, obs, 1)
	assert.Equal(t, ObligationResourceBound, obs[0].Kind)
	assert.Contains(t, obs[0].Description, "stack")
	assert.Contains(t, obs[0].Description, "1024")
}

func TestEnergyGeneratesObligation(t *testing.T) {
	c := PureDefault().WithEnergy(500)
	obs := c.GenerateObligations()
	require.Len(t, obs, 1)
	assert.Equal(t, ObligationResourceBound, obs[0].Kind)
	assert.Contains(t, obs[0].Description, "500")
}

func TestFullContractObligationCount(t *testing.T) {
	c := WithConditions(
		[]Predicate{Positive("input")},
		[]Predicate{InRange("output", 0, 4095)},
	).WithWCET(50_000, "arm").WithStack(64).WithNoHeap().WithEnergy(100)

	// 1 precondition + 1 postcondition + 4 resource bounds = 6
	assert.Len(t, c.GenerateObligations(), 6)
}

func TestObligationCountDelegates(t *testing.T) {
	c := WithConditions(
		[]Predicate{Positive("x")},
		[]Predicate{Positive("y")},
	).WithWCET(100, "test")

	assert.Equal(t, c.ObligationCount(), len(c.GenerateObligations()))
}

func TestFailureModeGeneratesObligation(t *testing.T) {
	c := PureDefault()
	c.AddFailureMode(FailureMode{
		Name:        "ADC_TIMEOUT",
		Description: "ADC conversion timed out",
		Recovery:    Degrade("0.0"),
	})
	obs := c.GenerateObligations()
	require.Len(t, obs, 1)
	assert.Equal(t, ObligationPostcondition, obs[0].Kind)
	assert.Contains(t, obs[0].Description, "ADC_TIMEOUT")
	assert.Contains(t, obs[0].Description, "degrade(0.0)")
}

func TestObligationContentHashStableAcrossStatus(t *testing.T) {
	o := NewObligation(ObligationPrecondition, Positive("x"), "precondition must hold before execution")
	before := o.ContentHash()

	o.Status = Verified(&ProofWitness{Hash: "abc", Solver: "interval_domain"})
	assert.Equal(t, before, o.ContentHash(), "status must not affect obligation identity")
}
