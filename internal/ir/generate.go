package ir

import "fmt"

// GenerateObligations turns a contract into the concrete proof
// obligations the verification engine must discharge before
// materialization.
//
// Obligations come from:
//   - preconditions (one per non-trivial predicate)
//   - postconditions (one per non-trivial predicate)
//   - resource bounds (time, memory, stack, energy)
//   - failure modes (one per failure condition)
//
// Trivial predicates (the literal true) are skipped. All obligations
// start Pending with no witness.
func (c *Contract) GenerateObligations() []ProofObligation {
	var obligations []ProofObligation

	for _, pred := range c.Preconditions {
		if IsTrivial(pred) {
			continue
		}
		obligations = append(obligations, NewObligation(
			ObligationPrecondition, pred,
			"precondition must hold before execution"))
	}

	for _, pred := range c.Postconditions {
		if IsTrivial(pred) {
			continue
		}
		obligations = append(obligations, NewObligation(
			ObligationPostcondition, pred,
			"postcondition must hold after execution"))
	}

	if tb := c.TimeBound; tb != nil {
		desc := fmt.Sprintf("WCET bound: %dns", tb.WCETNs)
		if tb.Target != "" {
			desc = fmt.Sprintf("WCET bound: %dns on %s", tb.WCETNs, tb.Target)
		}
		obligations = append(obligations, NewObligation(
			ObligationResourceBound, True(), desc))
	}

	if mb := c.MemoryBound; mb != nil {
		desc := fmt.Sprintf("memory bound: peak %dB", mb.PeakBytes)
		if mb.PeakBytes == 0 {
			desc = "no heap allocation permitted"
		}
		obligations = append(obligations, NewObligation(
			ObligationResourceBound, True(), desc))
	}

	if sb := c.StackBound; sb != nil {
		obligations = append(obligations, NewObligation(
			ObligationResourceBound, True(),
			fmt.Sprintf("stack bound: %dB", sb.MaxBytes)))
	}

	if eb := c.EnergyBound; eb != nil {
		obligations = append(obligations, NewObligation(
			ObligationResourceBound, True(),
			fmt.Sprintf("energy bound: %dμJ", eb.MaxMicrojoules)))
	}

	for _, fm := range c.FailureModes {
		obligations = append(obligations, NewObligation(
			ObligationPostcondition, True(),
			fmt.Sprintf("failure mode '%s': %s (recovery: %s)",
				fm.Name, fm.Description, fm.Recovery)))
	}

	return obligations
}
