package ir

import "fmt"

// ObligationKind classifies a proof obligation.
type ObligationKind string

const (
	// ObligationTypeRefinement is a refinement predicate on a type.
	ObligationTypeRefinement ObligationKind = "TypeRefinement"
	// ObligationPrecondition must hold at a call site before execution.
	ObligationPrecondition ObligationKind = "Precondition"
	// ObligationPostcondition must hold after execution.
	ObligationPostcondition ObligationKind = "Postcondition"
	// ObligationResourceBound asserts a time/memory/stack/energy bound.
	ObligationResourceBound ObligationKind = "ResourceBound"
	// ObligationLinearity asserts correct consumption of linear values.
	ObligationLinearity ObligationKind = "Linearity"
	// ObligationTermination asserts that an iterative construct halts.
	ObligationTermination ObligationKind = "Termination"
)

// ProofState is the discharge state of an obligation.
type ProofState string

const (
	// StatePending means verification has not yet been attempted, or
	// every attempted analyzer was inconclusive.
	StatePending ProofState = "Pending"
	// StateVerified means an analyzer proved the obligation and
	// produced a witness.
	StateVerified ProofState = "Verified"
	// StateFailed means an analyzer disproved the obligation. Failed is
	// distinct from Pending: a failed obligation blocks every gate.
	StateFailed ProofState = "Failed"
	// StateAssumed means the obligation is taken to hold without proof
	// (flagged in reports).
	StateAssumed ProofState = "Assumed"
	// StateWaived means a human explicitly waived the obligation.
	StateWaived ProofState = "Waived"
)

// ProofWitness is a machine-checkable proof object, content-addressed
// for caching and independent re-checking.
type ProofWitness struct {
	// Hash is the content hash of the proof (hex SHA-256).
	Hash string
	// Solver names the analyzer that produced this proof.
	Solver string
	// Data is the serialized proof object.
	Data []byte
}

// ProofStatus pairs a discharge state with its evidence: a witness for
// Verified, a waiver reference for Waived.
type ProofStatus struct {
	State   ProofState
	Witness *ProofWitness
	Waiver  *Waiver
}

// Pending returns the initial status.
func Pending() ProofStatus { return ProofStatus{State: StatePending} }

// Verified returns a verified status carrying the witness.
func Verified(w *ProofWitness) ProofStatus {
	return ProofStatus{State: StateVerified, Witness: w}
}

// Failed returns a failed (disproven) status.
func Failed() ProofStatus { return ProofStatus{State: StateFailed} }

// Assumed returns an assumed status.
func Assumed() ProofStatus { return ProofStatus{State: StateAssumed} }

// Waived returns a waived status carrying the waiver.
func Waived(w *Waiver) ProofStatus {
	return ProofStatus{State: StateWaived, Waiver: w}
}

func (s ProofStatus) String() string { return string(s.State) }

// ProofObligation is a single fact the verification engine must
// discharge before a graph may materialize.
type ProofObligation struct {
	// Kind classifies the obligation.
	Kind ObligationKind
	// Predicate is what must be proven.
	Predicate Predicate
	// Description is human-readable context for reports.
	Description string
	// Status is the current discharge state.
	Status ProofStatus
}

// NewObligation returns a pending obligation.
func NewObligation(kind ObligationKind, pred Predicate, description string) ProofObligation {
	return ProofObligation{
		Kind:        kind,
		Predicate:   pred,
		Description: description,
		Status:      Pending(),
	}
}

// ContentHash returns the content-addressed identity of the obligation:
// its kind, predicate rendering, and description. Status is excluded so
// the identity is stable across discharge.
func (o ProofObligation) ContentHash() ContentHash {
	return MustHashCanonical(DomainObligation, CanonObject{
		"kind":        CanonString(o.Kind),
		"predicate":   CanonString(o.Predicate.String()),
		"description": CanonString(o.Description),
	})
}

func (o ProofObligation) String() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", o.Status, o.Kind, o.Description, o.Predicate)
}
