package solver

import "fmt"

// Operator is an arithmetic comparison or combination operator.
type Operator int

const (
	NoOp Operator = iota
	EQ
	NQ
	LE
	LT
	GE
	GT
	PL
	MN
)

var operatorNames = map[Operator]string{
	EQ: "=", NQ: "!=", LE: "<=", LT: "<", GE: ">=", GT: ">", PL: "+", MN: "-",
}

// ParseOperator parses "=", "!=", "<=", "<", ">=", ">", "+" or "-".
// "==" and "<>" are accepted as aliases.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "=", "==":
		return EQ, nil
	case "!=", "<>":
		return NQ, nil
	case "<=":
		return LE, nil
	case "<":
		return LT, nil
	case ">=":
		return GE, nil
	case ">":
		return GT, nil
	case "+":
		return PL, nil
	case "-":
		return MN, nil
	}
	return NoOp, newSolverError(ErrCodeUnknownOperator, "unknown operator %q", s)
}

func mustParseComparison(s string) Operator {
	op, err := ParseOperator(s)
	if err != nil || !op.IsComparison() {
		mustNotHappen(ErrCodeUnknownOperator, "%q is not a comparison operator", s)
	}
	return op
}

// IsComparison reports whether op is one of EQ NQ LE LT GE GT.
func (op Operator) IsComparison() bool { return op >= EQ && op <= GT }

// Flip returns the operator obtained by swapping the operands:
// x < y is y > x.
func (op Operator) Flip() Operator {
	switch op {
	case LE:
		return GE
	case LT:
		return GT
	case GE:
		return LE
	case GT:
		return LT
	}
	return op
}

// Opposite returns the negation: not(x < y) is x >= y.
func (op Operator) Opposite() Operator {
	switch op {
	case EQ:
		return NQ
	case NQ:
		return EQ
	case LE:
		return GT
	case LT:
		return GE
	case GE:
		return LT
	case GT:
		return LE
	case PL:
		return MN
	case MN:
		return PL
	}
	return op
}

// Eval applies a comparison to a and b. It panics on PL and MN.
func (op Operator) Eval(a, b int) bool {
	switch op {
	case EQ:
		return a == b
	case NQ:
		return a != b
	case LE:
		return a <= b
	case LT:
		return a < b
	case GE:
		return a >= b
	case GT:
		return a > b
	}
	panic(fmt.Sprintf("solver: %s is not a comparison", op))
}

// String returns the textual form of the operator, e.g. "<=".
func (op Operator) String() string {
	if s, ok := operatorNames[op]; ok {
		return s
	}
	return "?"
}
