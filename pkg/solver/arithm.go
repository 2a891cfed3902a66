package solver

import "fmt"

// Arithm builds x op c, op being one of "=", "!=", "<=", "<", ">=", ">".
// Its opposite is the filtering comparison with the negated operator.
// It panics on any other operator.
func (m *Model) Arithm(x IntVar, op string, c int) *Constraint {
	o := mustParseComparison(op)
	return m.arithmXC(x, o, c)
}

func (m *Model) arithmXC(x IntVar, op Operator, c int) *Constraint {
	p := &propXOpC{x: x, op: op, c: c}
	p.Propagator = NewPropagator(p, Unary, IntVars(x), WithName("arithm"))
	return NewConstraint(fmt.Sprintf("%s %s %d", x.Name(), op, c), []*Propagator{p.Propagator},
		WithOppositeMaker(func(*Constraint) *Constraint { return m.arithmXC(x, op.Opposite(), c) }))
}

// ArithmXY builds x op y.
func (m *Model) ArithmXY(x IntVar, op string, y IntVar) *Constraint {
	return m.ArithmXYC(x, op, y, 0)
}

// ArithmXYC builds x op y + c.
func (m *Model) ArithmXYC(x IntVar, op string, y IntVar, c int) *Constraint {
	return m.arithmXYC(x, mustParseComparison(op), y, c)
}

func (m *Model) arithmXYC(x IntVar, op Operator, y IntVar, c int) *Constraint {
	name := fmt.Sprintf("%s %s %s", x.Name(), op, y.Name())
	if c != 0 {
		name = fmt.Sprintf("%s %s %s + %d", x.Name(), op, y.Name(), c)
	}
	p := &propXOpYC{x: x, op: op, y: y, c: c}
	// x >= y + c is y <= x - c
	if op == GE || op == GT {
		p.x, p.op, p.y, p.c = y, op.Flip(), x, -c
	}
	p.Propagator = NewPropagator(p, Binary, IntVars(p.x, p.y), WithName("arithm"))
	return NewConstraint(name, []*Propagator{p.Propagator},
		WithOppositeMaker(func(*Constraint) *Constraint { return m.arithmXYC(x, op.Opposite(), y, c) }))
}

// propXOpC filters x op c.
type propXOpC struct {
	*Propagator
	x  IntVar
	op Operator
	c  int
}

func (p *propXOpC) Propagate(PropagatorEvent) error {
	var err error
	switch p.op {
	case EQ:
		_, err = p.x.InstantiateTo(p.c, p)
	case NQ:
		_, err = p.x.RemoveValue(p.c, p)
	case LE:
		_, err = p.x.UpdateUpperBound(p.c, p)
	case LT:
		_, err = p.x.UpdateUpperBound(p.c-1, p)
	case GE:
		_, err = p.x.UpdateLowerBound(p.c, p)
	case GT:
		_, err = p.x.UpdateLowerBound(p.c+1, p)
	}
	if err != nil {
		return err
	}
	if p.IsActive() {
		return p.SetPassive()
	}
	return nil
}

func (p *propXOpC) IsEntailed() ESat {
	lb, ub := p.x.LB(), p.x.UB()
	switch p.op {
	case EQ, NQ:
		sat := Undefined
		if !p.x.Contains(p.c) {
			sat = False
		} else if p.x.IsInstantiated() {
			sat = True
		}
		if p.op == NQ {
			return sat.Not()
		}
		return sat
	case LE:
		return bounded(ub <= p.c, lb > p.c)
	case LT:
		return bounded(ub < p.c, lb >= p.c)
	case GE:
		return bounded(lb >= p.c, ub < p.c)
	case GT:
		return bounded(lb > p.c, ub <= p.c)
	}
	return Undefined
}

func bounded(entailed, disentailed bool) ESat {
	switch {
	case entailed:
		return True
	case disentailed:
		return False
	}
	return Undefined
}

// propXOpYC filters x op y + c for op in EQ, NQ, LE, LT.
type propXOpYC struct {
	*Propagator
	x, y IntVar
	op   Operator
	c    int
}

func (p *propXOpYC) Propagate(PropagatorEvent) error {
	for {
		changed, err := p.filter()
		if err != nil {
			return err
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

func (p *propXOpYC) filter() (bool, error) {
	x, y, c := p.x, p.y, p.c
	var changed bool
	apply := func(ch bool, err error) error {
		changed = changed || ch
		return err
	}
	switch p.op {
	case EQ:
		if err := apply(x.UpdateBounds(y.LB()+c, y.UB()+c, p)); err != nil {
			return false, err
		}
		if err := apply(y.UpdateBounds(x.LB()-c, x.UB()-c, p)); err != nil {
			return false, err
		}
		if x.IsInstantiated() {
			if err := apply(y.InstantiateTo(x.Value()-c, p)); err != nil {
				return false, err
			}
		} else if y.IsInstantiated() {
			if err := apply(x.InstantiateTo(y.Value()+c, p)); err != nil {
				return false, err
			}
		}
	case NQ:
		if x.IsInstantiated() {
			if err := apply(y.RemoveValue(x.Value()-c, p)); err != nil {
				return false, err
			}
		}
		if y.IsInstantiated() {
			if err := apply(x.RemoveValue(y.Value()+c, p)); err != nil {
				return false, err
			}
		}
	case LE, LT:
		d := 0
		if p.op == LT {
			d = 1
		}
		if err := apply(x.UpdateUpperBound(y.UB()+c-d, p)); err != nil {
			return false, err
		}
		if err := apply(y.UpdateLowerBound(x.LB()-c+d, p)); err != nil {
			return false, err
		}
	}
	return changed, nil
}

func (p *propXOpYC) IsEntailed() ESat {
	x, y, c := p.x, p.y, p.c
	switch p.op {
	case EQ, NQ:
		sat := Undefined
		switch {
		case x.UB() < y.LB()+c || x.LB() > y.UB()+c:
			sat = False
		case x.IsInstantiated() && y.IsInstantiated():
			sat = EvalESat(x.Value() == y.Value()+c)
		case x.IsInstantiated() && !y.Contains(x.Value()-c):
			sat = False
		case y.IsInstantiated() && !x.Contains(y.Value()+c):
			sat = False
		}
		if p.op == NQ {
			return sat.Not()
		}
		return sat
	case LE:
		return bounded(x.UB() <= y.LB()+c, x.LB() > y.UB()+c)
	case LT:
		return bounded(x.UB() < y.LB()+c, x.LB() >= y.UB()+c)
	}
	return Undefined
}
