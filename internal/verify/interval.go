package verify

import (
	"fmt"

	"github.com/torclang/torc/internal/ir"
)

// Interval is [Lo, Hi] where a nil bound means unbounded in that
// direction.
type Interval struct {
	Lo *float64
	Hi *float64
}

func ptr(v float64) *float64 { return &v }

// Unbounded is the entire real line.
func Unbounded() Interval { return Interval{} }

// Point is the interval [v, v].
func Point(v float64) Interval { return Interval{Lo: ptr(v), Hi: ptr(v)} }

// Bounded is the interval [lo, hi].
func Bounded(lo, hi float64) Interval { return Interval{Lo: ptr(lo), Hi: ptr(hi)} }

// Add computes [a,b] + [c,d] = [a+c, b+d].
func (iv Interval) Add(other Interval) Interval {
	out := Interval{}
	if iv.Lo != nil && other.Lo != nil {
		out.Lo = ptr(*iv.Lo + *other.Lo)
	}
	if iv.Hi != nil && other.Hi != nil {
		out.Hi = ptr(*iv.Hi + *other.Hi)
	}
	return out
}

// Sub computes [a,b] - [c,d] = [a-d, b-c].
func (iv Interval) Sub(other Interval) Interval {
	out := Interval{}
	if iv.Lo != nil && other.Hi != nil {
		out.Lo = ptr(*iv.Lo - *other.Hi)
	}
	if iv.Hi != nil && other.Lo != nil {
		out.Hi = ptr(*iv.Hi - *other.Lo)
	}
	return out
}

// Mul computes interval multiplication by the four-corners method.
func (iv Interval) Mul(other Interval) Interval {
	if iv.Lo == nil || iv.Hi == nil || other.Lo == nil || other.Hi == nil {
		return Unbounded()
	}
	products := []float64{
		*iv.Lo * *other.Lo,
		*iv.Lo * *other.Hi,
		*iv.Hi * *other.Lo,
		*iv.Hi * *other.Hi,
	}
	lo, hi := products[0], products[0]
	for _, p := range products[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return Bounded(lo, hi)
}

// Div computes interval division. A divisor interval containing zero
// yields the unbounded interval.
func (iv Interval) Div(other Interval) Interval {
	if iv.Lo == nil || iv.Hi == nil || other.Lo == nil || other.Hi == nil {
		return Unbounded()
	}
	if *other.Lo <= 0 && *other.Hi >= 0 {
		return Unbounded()
	}
	quotients := []float64{
		*iv.Lo / *other.Lo,
		*iv.Lo / *other.Hi,
		*iv.Hi / *other.Lo,
		*iv.Hi / *other.Hi,
	}
	lo, hi := quotients[0], quotients[0]
	for _, q := range quotients[1:] {
		if q < lo {
			lo = q
		}
		if q > hi {
			hi = q
		}
	}
	return Bounded(lo, hi)
}

// Neg computes -[a,b] = [-b, -a].
func (iv Interval) Neg() Interval {
	out := Interval{}
	if iv.Hi != nil {
		out.Lo = ptr(-*iv.Hi)
	}
	if iv.Lo != nil {
		out.Hi = ptr(-*iv.Lo)
	}
	return out
}

// IntervalOutcome is the verdict of interval analysis on one
// obligation.
type IntervalOutcome int

const (
	// IntervalInconclusive means the intervals cannot decide.
	IntervalInconclusive IntervalOutcome = iota
	// IntervalProven means the predicate holds for all values in the
	// intervals.
	IntervalProven
	// IntervalDisproven means a counterexample exists.
	IntervalDisproven
)

// IntervalResult pairs a verdict with its counterexample, if any.
type IntervalResult struct {
	Outcome        IntervalOutcome
	Counterexample string
}

func proven() IntervalResult  { return IntervalResult{Outcome: IntervalProven} }
func unknown() IntervalResult { return IntervalResult{Outcome: IntervalInconclusive} }
func disproven(ce string) IntervalResult {
	return IntervalResult{Outcome: IntervalDisproven, Counterexample: ce}
}

// AnalyzeIntervals pre-screens obligations with interval arithmetic,
// returning a verdict per obligation id.
func AnalyzeIntervals(obligations []*TrackedObligation) map[uint64]IntervalResult {
	results := make(map[uint64]IntervalResult, len(obligations))
	for _, o := range obligations {
		results[o.ID] = checkPredicate(o.Obligation.Predicate)
	}
	return results
}

func checkPredicate(pred ir.Predicate) IntervalResult {
	env := map[string]Interval{}
	return checkWithEnv(pred, env)
}

func checkWithEnv(pred ir.Predicate, env map[string]Interval) IntervalResult {
	switch p := pred.(type) {
	case ir.BoolLit:
		if p.V {
			return proven()
		}
		return disproven("false literal")

	case ir.Binary:
		switch p.Op {
		case ir.OpGt:
			lhs := evalInterval(p.Left, env)
			rhs := evalInterval(p.Right, env)
			if lhs.Lo != nil && rhs.Hi != nil && *lhs.Lo > *rhs.Hi {
				return proven()
			}
			if lhs.Hi != nil && rhs.Lo != nil && *lhs.Hi <= *rhs.Lo {
				return disproven(fmt.Sprintf("lhs_max=%g <= rhs_min=%g", *lhs.Hi, *rhs.Lo))
			}
			return unknown()

		case ir.OpGe:
			lhs := evalInterval(p.Left, env)
			rhs := evalInterval(p.Right, env)
			if lhs.Lo != nil && rhs.Hi != nil && *lhs.Lo >= *rhs.Hi {
				return proven()
			}
			if lhs.Hi != nil && rhs.Lo != nil && *lhs.Hi < *rhs.Lo {
				return disproven(fmt.Sprintf("lhs_max=%g < rhs_min=%g", *lhs.Hi, *rhs.Lo))
			}
			return unknown()

		case ir.OpLt:
			lhs := evalInterval(p.Left, env)
			rhs := evalInterval(p.Right, env)
			if lhs.Hi != nil && rhs.Lo != nil && *lhs.Hi < *rhs.Lo {
				return proven()
			}
			if lhs.Lo != nil && rhs.Hi != nil && *lhs.Lo >= *rhs.Hi {
				return disproven(fmt.Sprintf("lhs_min=%g >= rhs_max=%g", *lhs.Lo, *rhs.Hi))
			}
			return unknown()

		case ir.OpLe:
			lhs := evalInterval(p.Left, env)
			rhs := evalInterval(p.Right, env)
			if lhs.Hi != nil && rhs.Lo != nil && *lhs.Hi <= *rhs.Lo {
				return proven()
			}
			if lhs.Lo != nil && rhs.Hi != nil && *lhs.Lo > *rhs.Hi {
				return disproven(fmt.Sprintf("lhs_min=%g > rhs_max=%g", *lhs.Lo, *rhs.Hi))
			}
			return unknown()

		case ir.OpAnd:
			l := checkWithEnv(p.Left, env)
			r := checkWithEnv(p.Right, env)
			switch {
			case l.Outcome == IntervalProven && r.Outcome == IntervalProven:
				return proven()
			case l.Outcome == IntervalDisproven:
				return l
			case r.Outcome == IntervalDisproven:
				return r
			default:
				return unknown()
			}

		case ir.OpOr:
			l := checkWithEnv(p.Left, env)
			r := checkWithEnv(p.Right, env)
			switch {
			case l.Outcome == IntervalProven || r.Outcome == IntervalProven:
				return proven()
			case l.Outcome == IntervalDisproven && r.Outcome == IntervalDisproven:
				return l
			default:
				return unknown()
			}
		}
	}

	return unknown()
}

// evalInterval evaluates an arithmetic predicate expression to an
// interval under the environment.
func evalInterval(expr ir.Predicate, env map[string]Interval) Interval {
	switch e := expr.(type) {
	case ir.IntLit:
		return Point(float64(e.V))
	case ir.FloatLit:
		return Point(e.V)
	case ir.Var:
		if iv, ok := env[e.Name]; ok {
			return iv
		}
		return Unbounded()
	case ir.Binary:
		switch e.Op {
		case ir.OpAdd:
			return evalInterval(e.Left, env).Add(evalInterval(e.Right, env))
		case ir.OpSub:
			return evalInterval(e.Left, env).Sub(evalInterval(e.Right, env))
		case ir.OpMul:
			return evalInterval(e.Left, env).Mul(evalInterval(e.Right, env))
		case ir.OpDiv:
			return evalInterval(e.Left, env).Div(evalInterval(e.Right, env))
		}
	case ir.Unary:
		if e.Op == ir.OpNeg {
			return evalInterval(e.Operand, env).Neg()
		}
	}
	return Unbounded()
}

// IntervalName is the solver name recorded on witnesses produced by
// interval analysis.
const IntervalName = "interval_domain"
