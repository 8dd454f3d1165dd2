package compiler

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"

	"github.com/torclang/torc/internal/ir"
)

// ParsePredicate parses a contract condition expression into a
// predicate. The grammar is CUE expression syntax: comparisons,
// boolean connectives, arithmetic, and function application.
// Implication is written as implies(a, b).
//
//	"value >= 0 && value <= 4095"
//	"implies(enabled, output > 0)"
//	"len(samples) == 64"
func ParsePredicate(src string) (ir.Predicate, error) {
	expr, err := parser.ParseExpr("contract", src)
	if err != nil {
		return nil, formatCUEError(err)
	}
	return mapExpr(expr)
}

func mapExpr(expr ast.Expr) (ir.Predicate, error) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return mapExpr(e.X)

	case *ast.BasicLit:
		return mapBasicLit(e)

	case *ast.Ident:
		switch e.Name {
		case "true":
			return ir.True(), nil
		case "false":
			return ir.False(), nil
		}
		return ir.Ref(e.Name), nil

	case *ast.BinaryExpr:
		op, ok := binaryOps[e.Op]
		if !ok {
			return nil, &CompileError{
				Field:   "predicate",
				Message: fmt.Sprintf("unsupported operator %q", e.Op),
				Pos:     e.OpPos,
			}
		}
		left, err := mapExpr(e.X)
		if err != nil {
			return nil, err
		}
		right, err := mapExpr(e.Y)
		if err != nil {
			return nil, err
		}
		return ir.Binary{Op: op, Left: left, Right: right}, nil

	case *ast.UnaryExpr:
		operand, err := mapExpr(e.X)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case token.SUB:
			return ir.Unary{Op: ir.OpNeg, Operand: operand}, nil
		case token.NOT:
			return ir.Unary{Op: ir.OpNot, Operand: operand}, nil
		}
		return nil, &CompileError{
			Field:   "predicate",
			Message: fmt.Sprintf("unsupported unary operator %q", e.Op),
			Pos:     e.OpPos,
		}

	case *ast.CallExpr:
		return mapCall(e)

	default:
		return nil, &CompileError{
			Field:   "predicate",
			Message: fmt.Sprintf("unsupported expression form %T", expr),
			Pos:     expr.Pos(),
		}
	}
}

var binaryOps = map[token.Token]ir.BinaryOp{
	token.ADD:  ir.OpAdd,
	token.SUB:  ir.OpSub,
	token.MUL:  ir.OpMul,
	token.QUO:  ir.OpDiv,
	token.IDIV: ir.OpDiv,
	token.IMOD: ir.OpMod,
	token.EQL:  ir.OpEq,
	token.NEQ:  ir.OpNe,
	token.LSS:  ir.OpLt,
	token.LEQ:  ir.OpLe,
	token.GTR:  ir.OpGt,
	token.GEQ:  ir.OpGe,
	token.LAND: ir.OpAnd,
	token.LOR:  ir.OpOr,
}

func mapBasicLit(lit *ast.BasicLit) (ir.Predicate, error) {
	switch lit.Kind {
	case token.INT:
		v, err := strconv.ParseInt(lit.Value, 0, 64)
		if err != nil {
			return nil, &CompileError{
				Field:   "predicate",
				Message: "invalid integer literal: " + lit.Value,
				Pos:     lit.ValuePos,
			}
		}
		return ir.Int(v), nil
	case token.FLOAT:
		v, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return nil, &CompileError{
				Field:   "predicate",
				Message: "invalid float literal: " + lit.Value,
				Pos:     lit.ValuePos,
			}
		}
		return ir.FloatLit{V: v}, nil
	case token.TRUE:
		return ir.True(), nil
	case token.FALSE:
		return ir.False(), nil
	default:
		return nil, &CompileError{
			Field:   "predicate",
			Message: fmt.Sprintf("unsupported literal kind %q", lit.Kind),
			Pos:     lit.ValuePos,
		}
	}
}

func mapCall(call *ast.CallExpr) (ir.Predicate, error) {
	ident, ok := call.Fun.(*ast.Ident)
	if !ok {
		return nil, &CompileError{
			Field:   "predicate",
			Message: "function application requires a plain name",
			Pos:     call.Pos(),
		}
	}

	args := make([]ir.Predicate, 0, len(call.Args))
	for _, arg := range call.Args {
		mapped, err := mapExpr(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, mapped)
	}

	// implies has no operator in CUE expression syntax.
	if ident.Name == "implies" {
		if len(args) != 2 {
			return nil, &CompileError{
				Field:   "predicate",
				Message: fmt.Sprintf("implies takes 2 arguments, got %d", len(args)),
				Pos:     call.Pos(),
			}
		}
		return ir.Implies(args[0], args[1]), nil
	}

	return ir.Apply{Fn: ident.Name, Args: args}, nil
}
