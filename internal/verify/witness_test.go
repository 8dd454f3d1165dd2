package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torclang/torc/internal/ir"
)

func sampleObligation() ir.ProofObligation {
	return ir.NewObligation(
		ir.ObligationPostcondition,
		ir.InRange("output", 0, 4095),
		"output must be a valid 12-bit ADC value",
	)
}

func TestGenerateAndVerifyWitness(t *testing.T) {
	ob := sampleObligation()
	witness := GenerateWitness(IntervalName, ob, nil)

	assert.Equal(t, IntervalName, witness.Solver)
	assert.NotEmpty(t, witness.Hash)
	assert.True(t, VerifyWitness(witness, ob))
}

func TestTamperedWitnessRejected(t *testing.T) {
	ob := sampleObligation()
	witness := GenerateWitness("smt", ob, []byte{1, 2, 3})

	witness.Hash = "0000000000000000000000000000000000000000000000000000000000000000"
	assert.False(t, VerifyWitness(witness, ob))
}

func TestWitnessBoundToSolver(t *testing.T) {
	ob := sampleObligation()
	witness := GenerateWitness(IntervalName, ob, nil)

	witness.Solver = "smt"
	assert.False(t, VerifyWitness(witness, ob), "witness hash binds the solver name")
}

func TestWitnessBoundToPredicate(t *testing.T) {
	witness := GenerateWitness(IntervalName, sampleObligation(), nil)

	other := ir.NewObligation(ir.ObligationPostcondition, ir.Positive("output"), "other")
	assert.False(t, VerifyWitness(witness, other))
}

func TestNilWitnessRejected(t *testing.T) {
	require.False(t, VerifyWitness(nil, sampleObligation()))
}
