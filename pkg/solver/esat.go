package solver

// ESat is a three-valued satisfaction result.
type ESat int8

const (
	// Undefined means the current domains do not decide the question.
	Undefined ESat = iota
	// True means the constraint holds for every completion of the domains.
	True
	// False means no completion of the domains satisfies the constraint.
	False
)

// EvalESat converts a boolean into True or False.
func EvalESat(b bool) ESat {
	if b {
		return True
	}
	return False
}

// Not swaps True and False and leaves Undefined unchanged.
func (e ESat) Not() ESat {
	switch e {
	case True:
		return False
	case False:
		return True
	}
	return Undefined
}

// String returns "TRUE", "FALSE" or "UNDEFINED".
func (e ESat) String() string {
	switch e {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	}
	return "UNDEFINED"
}
