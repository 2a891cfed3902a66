package solver

import "fmt"

// Priority is the cost class of a propagator. The engine drains its buckets
// in increasing priority order within a fixpoint pass.
type Priority int

const (
	Unary Priority = iota + 1
	Binary
	Ternary
	Linear
	Quadratic
	Cubic
	VerySlow
)

const numPriorities = int(VerySlow)

// PriorityForArity picks Unary, Binary or Ternary for small arities and
// Linear otherwise.
func PriorityForArity(arity int) Priority {
	switch {
	case arity <= 1:
		return Unary
	case arity == 2:
		return Binary
	case arity == 3:
		return Ternary
	}
	return Linear
}

// String returns the priority name, e.g. "BINARY".
func (p Priority) String() string {
	switch p {
	case Unary:
		return "UNARY"
	case Binary:
		return "BINARY"
	case Ternary:
		return "TERNARY"
	case Linear:
		return "LINEAR"
	case Quadratic:
		return "QUADRATIC"
	case Cubic:
		return "CUBIC"
	case VerySlow:
		return "VERY_SLOW"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func (p Priority) valid() bool { return p >= Unary && p <= VerySlow }
