package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Predicate is the expression language for refinement types and
// contract pre/postconditions: first-order logic with arithmetic.
//
// Predicate is a sealed interface; the concrete forms below are the
// only implementations. String renders a canonical form that feeds
// content hashing, so its output must stay stable.
type Predicate interface {
	fmt.Stringer
	isPredicate() // sealed
}

// BoolLit is a boolean literal.
type BoolLit struct {
	V bool
}

// IntLit is an integer literal.
type IntLit struct {
	V int64
}

// FloatLit is a floating-point literal. Permitted in predicates (the
// analyzers treat it conservatively) but never in canonical hashing
// input; hashing uses the decimal rendering.
type FloatLit struct {
	V float64
}

// Var references a named variable such as "value", "output", or "len".
type Var struct {
	Name string
}

// BinaryOp enumerates binary predicate operators.
type BinaryOp string

const (
	OpAdd     BinaryOp = "+"
	OpSub     BinaryOp = "-"
	OpMul     BinaryOp = "*"
	OpDiv     BinaryOp = "/"
	OpMod     BinaryOp = "%"
	OpEq      BinaryOp = "=="
	OpNe      BinaryOp = "!="
	OpLt      BinaryOp = "<"
	OpLe      BinaryOp = "<="
	OpGt      BinaryOp = ">"
	OpGe      BinaryOp = ">="
	OpAnd     BinaryOp = "&&"
	OpOr      BinaryOp = "||"
	OpImplies BinaryOp = "=>"
)

// Binary applies a binary operator to two subexpressions.
type Binary struct {
	Op    BinaryOp
	Left  Predicate
	Right Predicate
}

// UnaryOp enumerates unary predicate operators.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

// Unary applies a unary operator to a subexpression.
type Unary struct {
	Op      UnaryOp
	Operand Predicate
}

// Quantifier distinguishes universal from existential quantification.
type Quantifier string

const (
	QuantForAll Quantifier = "forall"
	QuantExists Quantifier = "exists"
)

// Quant is a quantified predicate: the body must hold for all (or some)
// values of the bound variable within the range.
type Quant struct {
	Quantifier Quantifier
	Var        string
	Range      Predicate
	Body       Predicate
}

// Apply is a named function application, for reference functions such
// as sorted() or len().
type Apply struct {
	Fn   string
	Args []Predicate
}

func (BoolLit) isPredicate()  {}
func (IntLit) isPredicate()   {}
func (FloatLit) isPredicate() {}
func (Var) isPredicate()      {}
func (Binary) isPredicate()   {}
func (Unary) isPredicate()    {}
func (Quant) isPredicate()    {}
func (Apply) isPredicate()    {}

func (p BoolLit) String() string {
	return strconv.FormatBool(p.V)
}

func (p IntLit) String() string {
	return strconv.FormatInt(p.V, 10)
}

func (p FloatLit) String() string {
	return strconv.FormatFloat(p.V, 'g', -1, 64)
}

func (p Var) String() string {
	return p.Name
}

func (p Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Left, p.Op, p.Right)
}

func (p Unary) String() string {
	return fmt.Sprintf("%s(%s)", p.Op, p.Operand)
}

func (p Quant) String() string {
	return fmt.Sprintf("%s %s in %s. (%s)", p.Quantifier, p.Var, p.Range, p.Body)
}

func (p Apply) String() string {
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", p.Fn, strings.Join(args, ", "))
}

// True returns the trivially-true predicate.
func True() Predicate { return BoolLit{V: true} }

// False returns the trivially-false predicate.
func False() Predicate { return BoolLit{V: false} }

// Int returns an integer literal predicate.
func Int(v int64) Predicate { return IntLit{V: v} }

// Ref returns a variable reference predicate.
func Ref(name string) Predicate { return Var{Name: name} }

// And returns the conjunction of two predicates.
func And(l, r Predicate) Predicate { return Binary{Op: OpAnd, Left: l, Right: r} }

// Or returns the disjunction of two predicates.
func Or(l, r Predicate) Predicate { return Binary{Op: OpOr, Left: l, Right: r} }

// Not returns the negation of a predicate.
func Not(p Predicate) Predicate { return Unary{Op: OpNot, Operand: p} }

// Implies returns the implication l => r.
func Implies(l, r Predicate) Predicate { return Binary{Op: OpImplies, Left: l, Right: r} }

// Eq returns l == r.
func Eq(l, r Predicate) Predicate { return Binary{Op: OpEq, Left: l, Right: r} }

// Ne returns l != r.
func Ne(l, r Predicate) Predicate { return Binary{Op: OpNe, Left: l, Right: r} }

// Lt returns l < r.
func Lt(l, r Predicate) Predicate { return Binary{Op: OpLt, Left: l, Right: r} }

// Le returns l <= r.
func Le(l, r Predicate) Predicate { return Binary{Op: OpLe, Left: l, Right: r} }

// Gt returns l > r.
func Gt(l, r Predicate) Predicate { return Binary{Op: OpGt, Left: l, Right: r} }

// Ge returns l >= r.
func Ge(l, r Predicate) Predicate { return Binary{Op: OpGe, Left: l, Right: r} }

// InRange returns `var >= lo && var <= hi`.
func InRange(name string, lo, hi int64) Predicate {
	return And(Ge(Ref(name), Int(lo)), Le(Ref(name), Int(hi)))
}

// Positive returns `var > 0`.
func Positive(name string) Predicate {
	return Gt(Ref(name), Int(0))
}

// Conjoin combines two predicates with &&, treating a trivially-true
// side as absent.
func Conjoin(a, b Predicate) Predicate {
	if IsTrivial(a) {
		return b
	}
	if IsTrivial(b) {
		return a
	}
	return And(a, b)
}

// IsTrivial reports whether the predicate is the literal `true`, which
// generates no proof obligation.
func IsTrivial(p Predicate) bool {
	b, ok := p.(BoolLit)
	return ok && b.V
}
