// Package compiler turns CUE contract sources into contract values
// attached to graph nodes. Uses the CUE SDK's Go API directly (not a
// CLI subprocess).
package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/torclang/torc/internal/ir"
)

// ContractSet maps node ids to their compiled contracts, preserving
// source order.
type ContractSet struct {
	byNode map[string]*ir.Contract
	order  []string
}

// Get returns the contract for a node id.
func (s *ContractSet) Get(nodeID string) (*ir.Contract, bool) {
	c, ok := s.byNode[nodeID]
	return c, ok
}

// NodeIDs returns the node ids in source order.
func (s *ContractSet) NodeIDs() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of contracts.
func (s *ContractSet) Len() int { return len(s.order) }

// CompileContracts parses a CUE value into a contract set. The value
// should hold a `contracts` struct mapping node ids to contract
// bodies:
//
//	contracts: "sensor-read": {
//		ensures: ["output >= 0 && output <= 4095"]
//		wcet: {ns: 5000, target: "stm32f407-discovery"}
//		effects: ["IO<ADC1>"]
//	}
func CompileContracts(v cue.Value) (*ContractSet, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	set := &ContractSet{byNode: map[string]*ir.Contract{}}

	contractsVal := v.LookupPath(cue.ParsePath("contracts"))
	if !contractsVal.Exists() {
		return nil, &CompileError{
			Field:   "contracts",
			Message: "contracts struct is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := contractsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		nodeID := iter.Label()
		contract, err := CompileContract(iter.Value())
		if err != nil {
			return nil, err
		}
		if _, dup := set.byNode[nodeID]; dup {
			return nil, &CompileError{
				Field:   "contracts." + nodeID,
				Message: "duplicate contract for node",
				Pos:     iter.Value().Pos(),
			}
		}
		set.byNode[nodeID] = contract
		set.order = append(set.order, nodeID)
	}

	return set, nil
}

// CompileContract parses a single contract body.
func CompileContract(v cue.Value) (*ir.Contract, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	contract := ir.PureDefault()

	pre, err := parseConditions(v, "requires")
	if err != nil {
		return nil, err
	}
	contract.Preconditions = pre

	post, err := parseConditions(v, "ensures")
	if err != nil {
		return nil, err
	}
	contract.Postconditions = post

	if err := parseBounds(v, contract); err != nil {
		return nil, err
	}

	effects, err := parseEffects(v)
	if err != nil {
		return nil, err
	}
	if effects.Len() > 0 {
		contract.Effects = effects
	}

	modes, err := parseFailureModes(v)
	if err != nil {
		return nil, err
	}
	contract.FailureModes = modes

	recoveryVal := v.LookupPath(cue.ParsePath("recovery"))
	if recoveryVal.Exists() {
		recovery, err := parseRecovery(recoveryVal)
		if err != nil {
			return nil, err
		}
		contract.Recovery = recovery
	}

	waiver, err := parseWaiver(v)
	if err != nil {
		return nil, err
	}
	contract.Waiver = waiver

	return contract, nil
}

// parseConditions reads a list of predicate expression strings.
func parseConditions(v cue.Value, field string) ([]ir.Predicate, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var preds []ir.Predicate
	for i := 0; iter.Next(); i++ {
		src, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		pred, err := ParsePredicate(src)
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: err.Error(),
				Pos:     iter.Value().Pos(),
			}
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func parseBounds(v cue.Value, contract *ir.Contract) error {
	wcetVal := v.LookupPath(cue.ParsePath("wcet"))
	if wcetVal.Exists() {
		ns, err := requiredUint(wcetVal, "ns")
		if err != nil {
			return err
		}
		bound := &ir.TimeBound{WCETNs: ns}
		bound.BCETNs, _ = optionalUint(wcetVal, "bcet_ns")
		bound.AvgNs, _ = optionalUint(wcetVal, "avg_ns")
		if targetVal := wcetVal.LookupPath(cue.ParsePath("target")); targetVal.Exists() {
			target, err := targetVal.String()
			if err != nil {
				return formatCUEError(err)
			}
			bound.Target = target
		}
		contract.TimeBound = bound
	}

	stackVal := v.LookupPath(cue.ParsePath("stack"))
	if stackVal.Exists() {
		max, err := requiredUint(stackVal, "max_bytes")
		if err != nil {
			return err
		}
		contract.StackBound = &ir.StackBound{MaxBytes: max}
	}

	noHeapVal := v.LookupPath(cue.ParsePath("no_heap"))
	if noHeapVal.Exists() {
		noHeap, err := noHeapVal.Bool()
		if err != nil {
			return formatCUEError(err)
		}
		if noHeap {
			contract.MemoryBound = &ir.MemoryBound{}
		}
	}

	energyVal := v.LookupPath(cue.ParsePath("energy"))
	if energyVal.Exists() {
		max, err := requiredUint(energyVal, "max_uj")
		if err != nil {
			return err
		}
		contract.EnergyBound = &ir.EnergyBound{MaxMicrojoules: max}
	}

	return nil
}

// parseEffects reads effect strings in the canonical Kind<Param> form.
func parseEffects(v cue.Value) (ir.EffectSet, error) {
	effectsVal := v.LookupPath(cue.ParsePath("effects"))
	if !effectsVal.Exists() {
		return ir.EmptyEffectSet(), nil
	}

	iter, err := effectsVal.List()
	if err != nil {
		return ir.EmptyEffectSet(), formatCUEError(err)
	}

	var effects []ir.Effect
	for iter.Next() {
		str, err := iter.Value().String()
		if err != nil {
			return ir.EmptyEffectSet(), formatCUEError(err)
		}
		effect, perr := parseEffect(str)
		if perr != nil {
			return ir.EmptyEffectSet(), &CompileError{
				Field:   "effects",
				Message: perr.Error(),
				Pos:     iter.Value().Pos(),
			}
		}
		effects = append(effects, effect)
	}
	return ir.FromEffects(effects...), nil
}

var effectKinds = map[string]ir.EffectKind{
	"Pure":    ir.EffectPure,
	"Alloc":   ir.EffectAlloc,
	"IO":      ir.EffectIO,
	"Atomic":  ir.EffectAtomic,
	"FFI":     ir.EffectFFI,
	"Diverge": ir.EffectDiverge,
	"Panic":   ir.EffectPanic,
}

func parseEffect(s string) (ir.Effect, error) {
	name := s
	param := ""
	if open := strings.IndexByte(s, '<'); open >= 0 {
		if !strings.HasSuffix(s, ">") {
			return ir.Effect{}, fmt.Errorf("malformed effect %q", s)
		}
		name = s[:open]
		param = s[open+1 : len(s)-1]
	}
	kind, ok := effectKinds[name]
	if !ok {
		return ir.Effect{}, fmt.Errorf("unknown effect kind %q", name)
	}
	return ir.Effect{Kind: kind, Param: param}, nil
}

func parseFailureModes(v cue.Value) ([]ir.FailureMode, error) {
	modesVal := v.LookupPath(cue.ParsePath("failure_modes"))
	if !modesVal.Exists() {
		return nil, nil
	}

	iter, err := modesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var modes []ir.FailureMode
	for iter.Next() {
		modeVal := iter.Value()

		name, err := modeVal.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   "failure_modes",
				Message: "failure mode name is required",
				Pos:     modeVal.Pos(),
			}
		}

		mode := ir.FailureMode{Name: name, Recovery: ir.Propagate()}

		if descVal := modeVal.LookupPath(cue.ParsePath("description")); descVal.Exists() {
			desc, err := descVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			mode.Description = desc
		}

		if recoveryVal := modeVal.LookupPath(cue.ParsePath("recovery")); recoveryVal.Exists() {
			recovery, err := parseRecovery(recoveryVal)
			if err != nil {
				return nil, err
			}
			mode.Recovery = recovery
		}

		modes = append(modes, mode)
	}
	return modes, nil
}

func parseRecovery(v cue.Value) (ir.RecoveryStrategy, error) {
	kind, err := v.LookupPath(cue.ParsePath("kind")).String()
	if err != nil {
		return ir.RecoveryStrategy{}, &CompileError{
			Field:   "recovery",
			Message: "recovery kind is required",
			Pos:     v.Pos(),
		}
	}

	switch ir.RecoveryKind(kind) {
	case ir.RecoverAbort:
		return ir.Abort(), nil
	case ir.RecoverPropagate:
		return ir.Propagate(), nil
	case ir.RecoverRetry:
		max, err := requiredUint(v, "max_retries")
		if err != nil {
			return ir.RecoveryStrategy{}, err
		}
		return ir.Retry(uint32(max)), nil
	case ir.RecoverDegrade:
		fallback, err := v.LookupPath(cue.ParsePath("fallback")).String()
		if err != nil {
			return ir.RecoveryStrategy{}, &CompileError{
				Field:   "recovery",
				Message: "degrade requires a fallback value",
				Pos:     v.Pos(),
			}
		}
		return ir.Degrade(fallback), nil
	default:
		return ir.RecoveryStrategy{}, &CompileError{
			Field:   "recovery",
			Message: fmt.Sprintf("unknown recovery kind %q", kind),
			Pos:     v.Pos(),
		}
	}
}

func parseWaiver(v cue.Value) (*ir.Waiver, error) {
	waiverVal := v.LookupPath(cue.ParsePath("waiver"))
	if !waiverVal.Exists() {
		return nil, nil
	}

	waiver := &ir.Waiver{}
	fields := []struct {
		name     string
		dst      *string
		required bool
	}{
		{"obligation", &waiver.Obligation, true},
		{"justification", &waiver.Justification, true},
		{"author", &waiver.Author, true},
		{"approved_by", &waiver.ApprovedBy, true},
		{"date", &waiver.Date, false},
		{"expiration", &waiver.Expiration, false},
		{"safety_impact", &waiver.SafetyImpact, false},
	}
	for _, f := range fields {
		fieldVal := waiverVal.LookupPath(cue.ParsePath(f.name))
		if !fieldVal.Exists() {
			if f.required {
				return nil, &CompileError{
					Field:   "waiver." + f.name,
					Message: f.name + " is required",
					Pos:     waiverVal.Pos(),
				}
			}
			continue
		}
		str, err := fieldVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		*f.dst = str
	}

	if waiver.Author == waiver.ApprovedBy {
		return nil, &CompileError{
			Field:   "waiver.approved_by",
			Message: "waivers cannot be self-approved",
			Pos:     waiverVal.Pos(),
		}
	}

	return waiver, nil
}

func requiredUint(v cue.Value, field string) (uint64, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return 0, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	u, err := fieldVal.Uint64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return u, nil
}

func optionalUint(v cue.Value, field string) (uint64, bool) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return 0, false
	}
	u, err := fieldVal.Uint64()
	if err != nil {
		return 0, false
	}
	return u, true
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
