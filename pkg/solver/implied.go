package solver

import "fmt"

// ImpliedConstraint enforces b => C. C stays silent until b is fixed to 1;
// when C is decided false by the domains, b is fixed to 0.
type ImpliedConstraint struct {
	*Constraint
	b      BoolVar
	target *Constraint
	imp    *propImplied
}

// NewImpliedConstraint builds the gate b => c and declares c as reified.
func NewImpliedConstraint(b BoolVar, c *Constraint) (*ImpliedConstraint, error) {
	if err := c.checkNewStatus(StatusReified); err != nil {
		return nil, err
	}
	for _, p := range c.props {
		if !p.IsStateLess() {
			return nil, newSolverError(ErrCodeStateConflict, "cannot reify %s: propagator %s is %s", c.name, p, p.state)
		}
	}
	vars := []Variable{b}
	for _, v := range collectVars(c) {
		if v != Variable(b) {
			vars = append(vars, v)
		}
	}
	g := &ImpliedConstraint{b: b, target: c}
	g.imp = &propImplied{gate: g}
	g.imp.Propagator = NewPropagator(g.imp, c.MaxPriority(), vars, WithName("implied"))

	for _, p := range c.props {
		if err := p.SetReifiedSilent(b); err != nil {
			return nil, err
		}
	}
	props := append([]*Propagator{g.imp.Propagator}, c.props...)
	g.Constraint = NewConstraint(fmt.Sprintf("%s => %s", b.Name(), c.name), props)
	g.Constraint.satisfied = g.imp.IsEntailed
	g.Constraint.onUnpost = func() { c.status, c.cidx = StatusFree, -1 }
	c.status = StatusReified
	return g, nil
}

// Bool returns the guarding boolean.
func (g *ImpliedConstraint) Bool() BoolVar { return g.b }

// Target returns the implied constraint.
func (g *ImpliedConstraint) Target() *Constraint { return g.target }

// Activate wakes up the propagators of the implied constraint.
func (g *ImpliedConstraint) Activate() error {
	return activateBranch(g.props[1:])
}

type propImplied struct {
	*Propagator
	gate *ImpliedConstraint
}

func (p *propImplied) Propagate(PropagatorEvent) error {
	b := p.gate.b
	switch {
	case b.IsInstantiatedTo(1):
		if err := p.SetPassive(); err != nil {
			return err
		}
		return p.gate.Activate()
	case b.IsInstantiatedTo(0):
		return p.SetPassive()
	case p.gate.target.IsSatisfied() == False:
		if _, err := b.SetToFalse(p); err != nil {
			return err
		}
		return p.SetPassive()
	}
	return nil
}

func (p *propImplied) IsEntailed() ESat {
	b := p.gate.b
	switch {
	case b.IsInstantiatedTo(0):
		return True
	case b.IsInstantiatedTo(1):
		return p.gate.target.IsSatisfied()
	case p.gate.target.IsSatisfied() == True:
		return True
	}
	return Undefined
}
