package lowering

import (
	"math"

	"escomp/internal/ast"
)

// foldConstant recursively evaluates a pure arithmetic/bitwise/unary
// subtree to a single numeric value ("Before emitting an
// expression, a recursive numeric evaluator attempts to fold pure
// arithmetic/bitwise/unary subtrees to a single IMM"). Division or modulo
// by zero aborts folding — ok is false and the un-folded form must be
// emitted instead, to be caught at runtime per spec.md.
func foldConstant(n ast.Node) (float64, bool) {
	switch e := n.(type) {
	case *ast.Number:
		return e.Value, true
	case *ast.Boolean:
		if e.Value {
			return 1, true
		}
		return 0, true
	case *ast.Unary:
		v, ok := foldConstant(e.Operand.Get())
		if !ok {
			return 0, false
		}
		switch e.Operator {
		case "-":
			return -v, true
		case "!":
			if v == 0 {
				return 1, true
			}
			return 0, true
		case "~":
			return float64(^int64(v)), true
		default:
			return 0, false
		}
	case *ast.Binary:
		lv, ok := foldConstant(e.Left.Get())
		if !ok {
			return 0, false
		}
		rv, ok := foldConstant(e.Right.Get())
		if !ok {
			return 0, false
		}
		switch e.Operator {
		case "+":
			return lv + rv, true
		case "-":
			return lv - rv, true
		case "*":
			return lv * rv, true
		case "/":
			if rv == 0 {
				return 0, false
			}
			return lv / rv, true
		case "%":
			if rv == 0 {
				return 0, false
			}
			return math.Mod(lv, rv), true
		case "&", "&&":
			return float64(int64(lv) & int64(rv)), true
		case "|", "||":
			return float64(int64(lv) | int64(rv)), true
		case "^":
			return float64(int64(lv) ^ int64(rv)), true
		case "<<":
			return float64(int64(lv) << uint(int64(rv))), true
		case ">>":
			return float64(int64(lv) >> uint(int64(rv))), true
		case "<":
			return boolf(lv < rv), true
		case ">":
			return boolf(lv > rv), true
		case "<=":
			return boolf(lv <= rv), true
		case ">=":
			return boolf(lv >= rv), true
		case "==":
			return boolf(lv == rv), true
		case "!=":
			return boolf(lv != rv), true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
