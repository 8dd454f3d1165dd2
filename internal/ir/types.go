package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Linearity controls ownership semantics of a value.
type Linearity string

const (
	// LinLinear values must be used exactly once (consumed).
	LinLinear Linearity = "Linear"
	// LinAffine values may be used at most once (consumed or dropped).
	LinAffine Linearity = "Affine"
	// LinShared values may be aliased, immutable access only.
	LinShared Linearity = "Shared"
	// LinUnique values have a single owner with mutable, transferable access.
	LinUnique Linearity = "Unique"
	// LinCounted values use reference-counted shared ownership.
	LinCounted Linearity = "Counted"
	// LinUnrestricted values carry no linearity constraint.
	LinUnrestricted Linearity = "Unrestricted"
)

// Type is the torc type universe: dependent, linear, effectful, and
// resource-bounded types in one representation. Every value flowing
// through a graph edge has a Type.
//
// Type is a sealed interface; the Ty* structs below are the only
// implementations. String renders the canonical form used in content
// hashing.
type Type interface {
	fmt.Stringer
	isType() // sealed
}

// TyVoid is the empty type (no values).
type TyVoid struct{}

// TyUnit is the singleton type (exactly one value).
type TyUnit struct{}

// TyBool is {true, false}.
type TyBool struct{}

// TyInt is an integer with explicit width and signedness.
type TyInt struct {
	Width  uint8
	Signed bool
}

// TyFloat is an IEEE 754 float with explicit precision (16/32/64/128).
type TyFloat struct {
	Bits uint8
}

// TyFixed is a fixed-point number with total and fractional bit counts.
type TyFixed struct {
	TotalBits uint8
	FracBits  uint8
}

// TyTuple is a heterogeneous fixed-length product.
type TyTuple struct {
	Elems []Type
}

// Field is a named component of a record or variant.
type Field struct {
	Name string
	Type Type
}

// TyRecord is a named-field product type. Fields are kept sorted by
// name so equal records render identically.
type TyRecord struct {
	Fields []Field
}

// TyVariant is a tagged union. Cases are kept sorted by tag.
type TyVariant struct {
	Cases []Field
}

// TyArray is a fixed-length homogeneous sequence.
type TyArray struct {
	Elem Type
	Len  int
}

// TyVec is a variable-length homogeneous sequence.
type TyVec struct {
	Elem Type
}

// TyRefined is a type refined by a predicate: `T where P`.
type TyRefined struct {
	Base Type
	Pred Predicate
}

// TyLinear wraps a type with a linearity annotation.
type TyLinear struct {
	Inner     Type
	Linearity Linearity
}

// TyTimed is a value produced within a time bound on a named target.
type TyTimed struct {
	Inner  Type
	WCETNs uint64
	Target string
}

// TySized is a value occupying at most MaxBytes bytes.
type TySized struct {
	Inner    Type
	MaxBytes uint64
}

// TyPowered is a value produced within an energy budget (microjoules).
type TyPowered struct {
	Inner    Type
	EnergyUJ uint64
}

// TyDistribution is a probability distribution over a type.
type TyDistribution struct {
	Inner Type
}

// TyOption is an optional (nullable) value.
type TyOption struct {
	Inner Type
}

// ValueParam is a value parameter of a dependent type: either a
// concrete integer or a symbolic name resolved during linking.
type ValueParam struct {
	Symbol string
	Value  int64
}

// IsSymbolic reports whether the parameter is an unresolved name.
func (p ValueParam) IsSymbolic() bool { return p.Symbol != "" }

func (p ValueParam) String() string {
	if p.IsSymbolic() {
		return p.Symbol
	}
	return fmt.Sprintf("%d", p.Value)
}

// TyParameterized is a named type with type and value parameters,
// e.g. Matrix<f32, Rows, Cols>.
type TyParameterized struct {
	Name        string
	TypeParams  []Type
	ValueParams []ValueParam
}

// TyNamed is a named type reference resolved during linking.
type TyNamed struct {
	Name string
}

func (TyVoid) isType()          {}
func (TyUnit) isType()          {}
func (TyBool) isType()          {}
func (TyInt) isType()           {}
func (TyFloat) isType()         {}
func (TyFixed) isType()         {}
func (TyTuple) isType()         {}
func (TyRecord) isType()        {}
func (TyVariant) isType()       {}
func (TyArray) isType()         {}
func (TyVec) isType()           {}
func (TyRefined) isType()       {}
func (TyLinear) isType()        {}
func (TyTimed) isType()         {}
func (TySized) isType()         {}
func (TyPowered) isType()       {}
func (TyDistribution) isType()  {}
func (TyOption) isType()        {}
func (TyParameterized) isType() {}
func (TyNamed) isType()         {}

func (TyVoid) String() string { return "Void" }
func (TyUnit) String() string { return "Unit" }
func (TyBool) String() string { return "Bool" }

func (t TyInt) String() string {
	prefix := "u"
	if t.Signed {
		prefix = "i"
	}
	return fmt.Sprintf("%s%d", prefix, t.Width)
}

func (t TyFloat) String() string { return fmt.Sprintf("f%d", t.Bits) }

func (t TyFixed) String() string {
	return fmt.Sprintf("Fixed<%d, %d>", t.TotalBits, t.FracBits)
}

func (t TyTuple) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

func (t TyRecord) String() string {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func (t TyVariant) String() string {
	cases := make([]string, len(t.Cases))
	for i, c := range t.Cases {
		cases[i] = fmt.Sprintf("%s(%s)", c.Name, c.Type)
	}
	return "Variant<" + strings.Join(cases, " | ") + ">"
}

func (t TyArray) String() string { return fmt.Sprintf("[%s; %d]", t.Elem, t.Len) }
func (t TyVec) String() string   { return fmt.Sprintf("Vec<%s>", t.Elem) }

func (t TyRefined) String() string {
	return fmt.Sprintf("%s where %s", t.Base, t.Pred)
}

func (t TyLinear) String() string {
	return fmt.Sprintf("%s<%s>", t.Linearity, t.Inner)
}

func (t TyTimed) String() string {
	return fmt.Sprintf("Timed<%s, %dns @ %s>", t.Inner, t.WCETNs, t.Target)
}

func (t TySized) String() string {
	return fmt.Sprintf("Sized<%s, %dB>", t.Inner, t.MaxBytes)
}

func (t TyPowered) String() string {
	return fmt.Sprintf("Powered<%s, %dμJ>", t.Inner, t.EnergyUJ)
}

func (t TyDistribution) String() string { return fmt.Sprintf("Distribution<%s>", t.Inner) }
func (t TyOption) String() string       { return fmt.Sprintf("Option<%s>", t.Inner) }

func (t TyParameterized) String() string {
	params := make([]string, 0, len(t.TypeParams)+len(t.ValueParams))
	for _, tp := range t.TypeParams {
		params = append(params, tp.String())
	}
	for _, vp := range t.ValueParams {
		params = append(params, vp.String())
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(params, ", "))
}

func (t TyNamed) String() string { return t.Name }

// Convenience constructors for common scalar types.

func I8() Type  { return TyInt{Width: 8, Signed: true} }
func I16() Type { return TyInt{Width: 16, Signed: true} }
func I32() Type { return TyInt{Width: 32, Signed: true} }
func I64() Type { return TyInt{Width: 64, Signed: true} }
func U8() Type  { return TyInt{Width: 8, Signed: false} }
func U16() Type { return TyInt{Width: 16, Signed: false} }
func U32() Type { return TyInt{Width: 32, Signed: false} }
func U64() Type { return TyInt{Width: 64, Signed: false} }
func F32() Type { return TyFloat{Bits: 32} }
func F64() Type { return TyFloat{Bits: 64} }

// Record builds a TyRecord with fields sorted by name.
func Record(fields ...Field) Type {
	sorted := append([]Field(nil), fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return TyRecord{Fields: sorted}
}

// Variant builds a TyVariant with cases sorted by tag.
func Variant(cases ...Field) Type {
	sorted := append([]Field(nil), cases...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return TyVariant{Cases: sorted}
}

// Refine wraps a type in a refinement predicate.
func Refine(base Type, pred Predicate) Type {
	return TyRefined{Base: base, Pred: pred}
}

// WithLinearity wraps a type with a linearity annotation.
func WithLinearity(t Type, lin Linearity) Type {
	return TyLinear{Inner: t, Linearity: lin}
}

// AsLinear wraps a type as linear (must be consumed exactly once).
func AsLinear(t Type) Type { return WithLinearity(t, LinLinear) }

// AsShared wraps a type as shared (immutable aliased access).
func AsShared(t Type) Type { return WithLinearity(t, LinShared) }

// Timed wraps a type with a time bound.
func Timed(t Type, wcetNs uint64, target string) Type {
	return TyTimed{Inner: t, WCETNs: wcetNs, Target: target}
}

// Sized wraps a type with a size bound.
func Sized(t Type, maxBytes uint64) Type {
	return TySized{Inner: t, MaxBytes: maxBytes}
}

// Powered wraps a type with an energy budget.
func Powered(t Type, energyUJ uint64) Type {
	return TyPowered{Inner: t, EnergyUJ: energyUJ}
}

// LinearityOf returns the linearity annotation of a type, unwrapping
// refinement and resource wrappers. The second result is false when no
// annotation is present (unrestricted).
func LinearityOf(t Type) (Linearity, bool) {
	switch v := t.(type) {
	case TyLinear:
		return v.Linearity, true
	case TyRefined:
		return LinearityOf(v.Base)
	case TyTimed:
		return LinearityOf(v.Inner)
	case TySized:
		return LinearityOf(v.Inner)
	case TyPowered:
		return LinearityOf(v.Inner)
	default:
		return LinUnrestricted, false
	}
}

// BaseType strips refinement, linearity, and resource wrappers down to
// the underlying structural type.
func BaseType(t Type) Type {
	switch v := t.(type) {
	case TyRefined:
		return BaseType(v.Base)
	case TyLinear:
		return BaseType(v.Inner)
	case TyTimed:
		return BaseType(v.Inner)
	case TySized:
		return BaseType(v.Inner)
	case TyPowered:
		return BaseType(v.Inner)
	default:
		return t
	}
}

// IsPrimitive reports whether the type is a non-composite, non-wrapped
// scalar.
func IsPrimitive(t Type) bool {
	switch t.(type) {
	case TyVoid, TyUnit, TyBool, TyInt, TyFloat, TyFixed:
		return true
	default:
		return false
	}
}

// TypeSignature describes a computation node's input and output ports,
// in order.
type TypeSignature struct {
	Inputs  []Type
	Outputs []Type
}

// NewTypeSignature builds a signature from explicit port types.
func NewTypeSignature(inputs, outputs []Type) TypeSignature {
	return TypeSignature{Inputs: inputs, Outputs: outputs}
}

// PureFn is a function signature with a single output.
func PureFn(inputs []Type, output Type) TypeSignature {
	return TypeSignature{Inputs: inputs, Outputs: []Type{output}}
}

// Source is a signature with no inputs and a single output (Literal,
// Parameter).
func Source(output Type) TypeSignature {
	return TypeSignature{Outputs: []Type{output}}
}

// Sink is a signature with a single input and no outputs.
func Sink(input Type) TypeSignature {
	return TypeSignature{Inputs: []Type{input}}
}

func (s TypeSignature) String() string {
	ins := make([]string, len(s.Inputs))
	for i, t := range s.Inputs {
		ins[i] = t.String()
	}
	outs := make([]string, len(s.Outputs))
	for i, t := range s.Outputs {
		outs[i] = t.String()
	}
	return fmt.Sprintf("fn(%s) -> (%s)", strings.Join(ins, ", "), strings.Join(outs, ", "))
}
