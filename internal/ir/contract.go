package ir

import "fmt"

// RecoveryKind categorizes recovery strategies for failure modes.
type RecoveryKind string

const (
	// RecoverAbort aborts execution immediately.
	RecoverAbort RecoveryKind = "abort"
	// RecoverRetry retries the operation up to MaxRetries times.
	RecoverRetry RecoveryKind = "retry"
	// RecoverDegrade degrades to a safe fallback value.
	RecoverDegrade RecoveryKind = "degrade"
	// RecoverPropagate propagates the failure to the caller.
	RecoverPropagate RecoveryKind = "propagate"
)

// RecoveryStrategy describes how to recover when a failure mode fires.
type RecoveryStrategy struct {
	Kind       RecoveryKind
	MaxRetries uint32 // set for retry
	Fallback   string // set for degrade
}

// Abort returns the abort strategy.
func Abort() RecoveryStrategy { return RecoveryStrategy{Kind: RecoverAbort} }

// Retry returns a retry strategy with the given attempt limit.
func Retry(max uint32) RecoveryStrategy {
	return RecoveryStrategy{Kind: RecoverRetry, MaxRetries: max}
}

// Degrade returns a degrade strategy with the given fallback value.
func Degrade(fallback string) RecoveryStrategy {
	return RecoveryStrategy{Kind: RecoverDegrade, Fallback: fallback}
}

// Propagate returns the propagate strategy.
func Propagate() RecoveryStrategy { return RecoveryStrategy{Kind: RecoverPropagate} }

func (r RecoveryStrategy) String() string {
	switch r.Kind {
	case RecoverRetry:
		return fmt.Sprintf("retry(%d)", r.MaxRetries)
	case RecoverDegrade:
		return fmt.Sprintf("degrade(%s)", r.Fallback)
	default:
		return string(r.Kind)
	}
}

// FailureMode is a specific failure a node may encounter, such as
// "ADC_TIMEOUT" or "DIVISION_BY_ZERO".
type FailureMode struct {
	// Name of the failure condition.
	Name string
	// Description of when this failure occurs.
	Description string
	// How to recover from this failure.
	Recovery RecoveryStrategy
}

// TimeBound specifies timing requirements. Zero-valued fields are
// unspecified except WCETNs, which is required when the bound is
// present.
type TimeBound struct {
	// Worst-case execution time in nanoseconds.
	WCETNs uint64
	// Best-case execution time in nanoseconds (0 = unspecified).
	BCETNs uint64
	// Average execution time in nanoseconds (0 = unspecified).
	AvgNs uint64
	// Target for which this bound applies.
	Target string
}

// MemoryBound specifies heap usage requirements. An all-zero bound
// asserts heap-free execution.
type MemoryBound struct {
	PeakBytes      uint64
	AllocatedBytes uint64
	FreedBytes     uint64
}

// HeapFree reports whether the bound asserts no heap allocation.
func (m MemoryBound) HeapFree() bool {
	return m.PeakBytes == 0 && m.AllocatedBytes == 0 && m.FreedBytes == 0
}

// EnergyBound specifies an energy budget for power-constrained targets.
type EnergyBound struct {
	// Maximum energy consumption in microjoules.
	MaxMicrojoules uint64
}

// StackBound specifies the maximum stack depth in bytes.
type StackBound struct {
	MaxBytes uint64
}

// Waiver is an explicit, human-approved exemption for a proof
// obligation that cannot be automatically discharged.
type Waiver struct {
	// Description of the obligation being waived.
	Obligation string
	// Justification for why this waiver is acceptable.
	Justification string
	// Who authored this waiver.
	Author string
	// Who approved this waiver. Tooling cannot self-waive.
	ApprovedBy string
	// Date of the waiver (ISO 8601).
	Date string
	// When this waiver expires and must be re-reviewed ("" = never).
	Expiration string
	// Assessment of safety impact.
	SafetyImpact string
}

// Contract specifies the full behavioral requirements of a computation
// node: conditions, resource bounds, effects, and failure modes. Every
// contract generates proof obligations the verification engine must
// discharge before materialization.
type Contract struct {
	Preconditions  []Predicate
	Postconditions []Predicate
	TimeBound      *TimeBound
	MemoryBound    *MemoryBound
	EnergyBound    *EnergyBound
	StackBound     *StackBound
	Effects        EffectSet
	FailureModes   []FailureMode
	Recovery       RecoveryStrategy
	Waiver         *Waiver
}

// PureDefault returns a minimal pure contract with no constraints.
func PureDefault() *Contract {
	return &Contract{
		Effects:  PureSet(),
		Recovery: Propagate(),
	}
}

// WithConditions returns a pure contract carrying the given pre- and
// postconditions.
func WithConditions(pre, post []Predicate) *Contract {
	c := PureDefault()
	c.Preconditions = pre
	c.Postconditions = post
	return c
}

// AddPrecondition appends a precondition.
func (c *Contract) AddPrecondition(pred Predicate) {
	c.Preconditions = append(c.Preconditions, pred)
}

// AddPostcondition appends a postcondition.
func (c *Contract) AddPostcondition(pred Predicate) {
	c.Postconditions = append(c.Postconditions, pred)
}

// WithWCET sets the worst-case execution time bound.
func (c *Contract) WithWCET(wcetNs uint64, target string) *Contract {
	c.TimeBound = &TimeBound{WCETNs: wcetNs, Target: target}
	return c
}

// WithStack sets the stack depth bound.
func (c *Contract) WithStack(maxBytes uint64) *Contract {
	c.StackBound = &StackBound{MaxBytes: maxBytes}
	return c
}

// WithNoHeap asserts heap-free execution.
func (c *Contract) WithNoHeap() *Contract {
	c.MemoryBound = &MemoryBound{}
	return c
}

// WithEnergy sets the energy budget.
func (c *Contract) WithEnergy(maxUJ uint64) *Contract {
	c.EnergyBound = &EnergyBound{MaxMicrojoules: maxUJ}
	return c
}

// WithEffects sets the effect set.
func (c *Contract) WithEffects(effects EffectSet) *Contract {
	c.Effects = effects
	return c
}

// AddFailureMode appends a failure mode.
func (c *Contract) AddFailureMode(mode FailureMode) {
	c.FailureModes = append(c.FailureModes, mode)
}

// ObligationCount counts the proof obligations this contract generates
// from conditions and bounds (failure modes excluded).
func (c *Contract) ObligationCount() int {
	n := len(c.Preconditions) + len(c.Postconditions)
	if c.TimeBound != nil {
		n++
	}
	if c.MemoryBound != nil {
		n++
	}
	if c.StackBound != nil {
		n++
	}
	if c.EnergyBound != nil {
		n++
	}
	return n
}

// Clone returns a deep-enough copy: slices and bound pointers are
// duplicated so mutating the copy cannot alias the original.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.Preconditions = append([]Predicate(nil), c.Preconditions...)
	out.Postconditions = append([]Predicate(nil), c.Postconditions...)
	out.FailureModes = append([]FailureMode(nil), c.FailureModes...)
	out.Effects = c.Effects.Clone()
	if c.TimeBound != nil {
		tb := *c.TimeBound
		out.TimeBound = &tb
	}
	if c.MemoryBound != nil {
		mb := *c.MemoryBound
		out.MemoryBound = &mb
	}
	if c.EnergyBound != nil {
		eb := *c.EnergyBound
		out.EnergyBound = &eb
	}
	if c.StackBound != nil {
		sb := *c.StackBound
		out.StackBound = &sb
	}
	if c.Waiver != nil {
		w := *c.Waiver
		out.Waiver = &w
	}
	return &out
}
