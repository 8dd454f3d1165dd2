package verify

import (
	"context"

	"github.com/torclang/torc/internal/ir"
)

// SolverVerdict is the result of an external solver check.
type SolverVerdict string

const (
	// VerdictProven means the negated predicate is unsatisfiable.
	VerdictProven SolverVerdict = "proven"
	// VerdictDisproven means a counterexample was found.
	VerdictDisproven SolverVerdict = "disproven"
	// VerdictUnknown means the solver could not decide.
	VerdictUnknown SolverVerdict = "unknown"
	// VerdictTimeout means the solver ran out of time.
	VerdictTimeout SolverVerdict = "timeout"
)

// SolverResult pairs a verdict with optional evidence.
type SolverResult struct {
	Verdict SolverVerdict
	// Counterexample maps variable names to failing assignments, for
	// disproven obligations.
	Counterexample map[string]string
	// Reason explains an unknown verdict.
	Reason string
}

// Solver is an external decision procedure for proof obligations. The
// standard strategy asserts the negation of the predicate and checks
// satisfiability: unsat proves the obligation, sat disproves it with a
// model.
//
// The engine treats the solver as optional; builds without one rely on
// structural and interval analysis alone.
type Solver interface {
	// Name identifies the solver on generated witnesses.
	Name() string
	// Check decides one obligation. Implementations must respect ctx
	// cancellation and the configured timeout.
	Check(ctx context.Context, ob ir.ProofObligation) (SolverResult, error)
}
