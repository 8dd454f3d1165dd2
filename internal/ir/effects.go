package ir

import (
	"fmt"
	"sort"
	"strings"
)

// EffectKind categorizes the side effects a computation may perform.
type EffectKind string

const (
	// EffectPure means no side effects; result depends only on inputs.
	EffectPure EffectKind = "Pure"
	// EffectAlloc allocates memory in the named region.
	EffectAlloc EffectKind = "Alloc"
	// EffectIO performs I/O on the named device or descriptor.
	EffectIO EffectKind = "IO"
	// EffectAtomic is an atomic operation with the named ordering.
	EffectAtomic EffectKind = "Atomic"
	// EffectFFI calls foreign code with the named ABI.
	EffectFFI EffectKind = "FFI"
	// EffectDiverge may not terminate.
	EffectDiverge EffectKind = "Diverge"
	// EffectPanic may abort execution.
	EffectPanic EffectKind = "Panic"
)

// Effect is a single effect, optionally parameterized (region name,
// device, memory ordering, ABI). Comparable, so usable as a map key.
type Effect struct {
	Kind  EffectKind
	Param string
}

func (e Effect) String() string {
	if e.Param == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s<%s>", e.Kind, e.Param)
}

// Pure returns the Pure effect.
func Pure() Effect { return Effect{Kind: EffectPure} }

// AllocIn returns an allocation effect in the named region.
func AllocIn(region string) Effect { return Effect{Kind: EffectAlloc, Param: region} }

// IO returns an I/O effect on the named device.
func IO(device string) Effect { return Effect{Kind: EffectIO, Param: device} }

// AtomicEffect returns an atomic effect with the named ordering.
func AtomicEffect(ordering string) Effect { return Effect{Kind: EffectAtomic, Param: ordering} }

// FFI returns a foreign-call effect with the named ABI.
func FFI(abi string) Effect { return Effect{Kind: EffectFFI, Param: abi} }

// EffectSet is a composable set of effects. Effects propagate upward: a
// node's effect set is the union of its own effects and all its
// children's effects.
type EffectSet struct {
	effects map[Effect]struct{}
}

// PureSet returns an effect set containing only Pure.
func PureSet() EffectSet {
	return FromEffects(Pure())
}

// EmptyEffectSet returns an empty effect set.
func EmptyEffectSet() EffectSet {
	return EffectSet{effects: map[Effect]struct{}{}}
}

// FromEffects builds an effect set from a list of effects.
func FromEffects(effects ...Effect) EffectSet {
	s := EmptyEffectSet()
	for _, e := range effects {
		s.effects[e] = struct{}{}
	}
	return s
}

// Merge unions another effect set into this one. If any non-Pure
// effect is present afterwards, Pure is removed.
func (s *EffectSet) Merge(other EffectSet) {
	if s.effects == nil {
		s.effects = map[Effect]struct{}{}
	}
	for e := range other.effects {
		s.effects[e] = struct{}{}
	}
	if len(s.effects) > 1 {
		delete(s.effects, Pure())
	}
}

// IsPure reports whether the set has no side effects.
func (s EffectSet) IsPure() bool {
	if len(s.effects) == 0 {
		return true
	}
	if len(s.effects) == 1 {
		_, ok := s.effects[Pure()]
		return ok
	}
	return false
}

// Has reports whether a specific effect is present.
func (s EffectSet) Has(e Effect) bool {
	_, ok := s.effects[e]
	return ok
}

// Len returns the number of effects in the set.
func (s EffectSet) Len() int { return len(s.effects) }

// Effects returns the effects in deterministic (kind, param) order.
func (s EffectSet) Effects() []Effect {
	out := make([]Effect, 0, len(s.effects))
	for e := range s.effects {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Param < out[j].Param
	})
	return out
}

// Contains reports whether every effect in other is present in s.
func (s EffectSet) Contains(other EffectSet) bool {
	for e := range other.effects {
		if e == Pure() {
			continue
		}
		if !s.Has(e) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set.
func (s EffectSet) Clone() EffectSet {
	out := EmptyEffectSet()
	for e := range s.effects {
		out.effects[e] = struct{}{}
	}
	return out
}

func (s EffectSet) String() string {
	if s.IsPure() {
		return "Pure"
	}
	parts := make([]string, 0, len(s.effects))
	for _, e := range s.Effects() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, " + ")
}
