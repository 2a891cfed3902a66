package solver

import (
	"fmt"
	"strings"
)

// Sum builds vars[0] + ... + vars[n-1] op c, op being one of "=", "!=",
// "<=", "<", ">=", ">". Bounds are filtered, except for "!=" which only
// removes a value once a single variable is left free.
func (m *Model) Sum(vars []IntVar, op string, c int) *Constraint {
	o := mustParseComparison(op)
	switch o {
	case LT:
		o, c = LE, c-1
	case GT:
		o, c = GE, c+1
	}
	return m.sum(vars, o, c)
}

func (m *Model) sum(vars []IntVar, op Operator, c int) *Constraint {
	if len(vars) == 0 {
		mustNotHappen(ErrCodeInvalidArgument, "sum of no variable")
	}
	p := &propSum{vars: append([]IntVar(nil), vars...), op: op, c: c}
	p.Propagator = NewPropagator(p, PriorityForArity(len(vars)), IntVars(vars...), WithName("sum"))
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name()
	}
	opposite := func(*Constraint) *Constraint {
		switch op {
		case EQ:
			return m.sum(vars, NQ, c)
		case NQ:
			return m.sum(vars, EQ, c)
		case LE:
			return m.sum(vars, GE, c+1)
		}
		return m.sum(vars, LE, c-1)
	}
	return NewConstraint(fmt.Sprintf("sum(%s) %s %d", strings.Join(names, ","), op, c),
		[]*Propagator{p.Propagator}, WithOppositeMaker(opposite))
}

// propSum filters a linear sum with unit coefficients.
type propSum struct {
	*Propagator
	vars []IntVar
	op   Operator
	c    int
}

func (p *propSum) bounds() (lb, ub int) {
	for _, v := range p.vars {
		lb += v.LB()
		ub += v.UB()
	}
	return lb, ub
}

func (p *propSum) Propagate(PropagatorEvent) error {
	if p.op == NQ {
		return p.filterNQ()
	}
	for {
		changed := false
		if p.op == EQ || p.op == LE {
			sumLB, _ := p.bounds()
			for _, v := range p.vars {
				ch, err := v.UpdateUpperBound(p.c-(sumLB-v.LB()), p)
				if err != nil {
					return err
				}
				changed = changed || ch
			}
		}
		if p.op == EQ || p.op == GE {
			_, sumUB := p.bounds()
			for _, v := range p.vars {
				ch, err := v.UpdateLowerBound(p.c-(sumUB-v.UB()), p)
				if err != nil {
					return err
				}
				changed = changed || ch
			}
		}
		if !changed {
			break
		}
	}
	if p.IsActive() && p.IsEntailed() == True {
		return p.SetPassive()
	}
	return nil
}

func (p *propSum) filterNQ() error {
	var free IntVar
	sum := 0
	for _, v := range p.vars {
		if v.IsInstantiated() {
			sum += v.Value()
			continue
		}
		if free != nil {
			return nil
		}
		free = v
	}
	if free == nil {
		if sum == p.c {
			return Fail(p, nil, "sum equals %d", p.c)
		}
	} else if _, err := free.RemoveValue(p.c-sum, p); err != nil {
		return err
	}
	if p.IsActive() {
		return p.SetPassive()
	}
	return nil
}

func (p *propSum) IsEntailed() ESat {
	lb, ub := p.bounds()
	switch p.op {
	case EQ:
		return bounded(lb == p.c && ub == p.c, lb > p.c || ub < p.c)
	case NQ:
		return bounded(lb > p.c || ub < p.c, lb == p.c && ub == p.c)
	case LE:
		return bounded(ub <= p.c, lb > p.c)
	case GE:
		return bounded(lb >= p.c, ub < p.c)
	}
	return Undefined
}
