package solver

// VariableHeuristic selects the next variable to branch on.
type VariableHeuristic int

const (
	// HeuristicDom picks the smallest domain first.
	HeuristicDom VariableHeuristic = iota
	// HeuristicDomDeg picks the smallest domain size over degree first.
	HeuristicDomDeg
	// HeuristicDeg picks the variable watched by the most live propagators.
	HeuristicDeg
	// HeuristicLex picks variables in order.
	HeuristicLex
)

// ValueHeuristic selects the value tried first on a variable.
type ValueHeuristic int

const (
	// ValueMin tries the lower bound.
	ValueMin ValueHeuristic = iota
	// ValueMax tries the upper bound.
	ValueMax
	// ValueMid tries the smallest value at or above the middle of the bounds.
	ValueMid
)

// Strategy is a binary branching strategy: x = v on the left branch, x != v
// on the right one.
type Strategy struct {
	// Vars are the decision variables. Empty means every integer variable of
	// the model.
	Vars     []IntVar
	Variable VariableHeuristic
	Value    ValueHeuristic
}

// DefaultStrategy branches on the smallest domain, lower bound first.
func DefaultStrategy() Strategy {
	return Strategy{Variable: HeuristicDom, Value: ValueMin}
}

// next returns the next decision, or ok == false when every variable is
// instantiated.
func (st Strategy) next(vars []IntVar) (v IntVar, val int, ok bool) {
	var best IntVar
	bestScore := 0.0
	for i, x := range vars {
		if x.IsInstantiated() {
			continue
		}
		score := st.score(i, x)
		if best == nil || score < bestScore {
			best, bestScore = x, score
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return best, st.value(best), true
}

// score is lower for better candidates.
func (st Strategy) score(i int, x IntVar) float64 {
	switch st.Variable {
	case HeuristicDomDeg:
		return float64(x.Size()) / float64(1+x.NbProps())
	case HeuristicDeg:
		return -float64(x.NbProps())
	case HeuristicLex:
		return float64(i)
	}
	return float64(x.Size())
}

func (st Strategy) value(x IntVar) int {
	switch st.Value {
	case ValueMax:
		return x.UB()
	case ValueMid:
		return x.NextValue((x.LB()+x.UB())/2 - 1)
	}
	return x.LB()
}
