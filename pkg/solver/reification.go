package solver

import "fmt"

// ReificationConstraint enforces b <=> C1 and not(b) <=> C2, where C2 is
// usually the opposite of C1.
//
// Its first propagator watches b and every variable of C1 and C2. The other
// propagators are those of C1 then C2, kept silent until b is fixed: b = 1
// activates C1, b = 0 activates C2. While b is free, the first propagator
// fixes b as soon as C1 or C2 is decided by the domains.
type ReificationConstraint struct {
	*Constraint
	b        BoolVar
	branches [2]*Constraint
	// bounds[i]:bounds[i+1] is the range of branch i in props.
	bounds [3]int
	reif   *propReif
}

// NewReificationConstraint builds the gate b <=> c1, not(b) <=> c2 and
// declares c1 and c2 as reified.
func NewReificationConstraint(b BoolVar, c1, c2 *Constraint) (*ReificationConstraint, error) {
	if err := c1.checkNewStatus(StatusReified); err != nil {
		return nil, err
	}
	if err := c2.checkNewStatus(StatusReified); err != nil {
		return nil, err
	}
	for _, p := range c1.props {
		if !p.IsStateLess() {
			return nil, newSolverError(ErrCodeStateConflict, "cannot reify %s: propagator %s is %s", c1.name, p, p.state)
		}
	}
	for _, p := range c2.props {
		if !p.IsStateLess() {
			return nil, newSolverError(ErrCodeStateConflict, "cannot reify %s: propagator %s is %s", c2.name, p, p.state)
		}
	}

	vars := []Variable{b}
	for _, v := range collectVars(c1, c2) {
		if v != Variable(b) {
			vars = append(vars, v)
		}
	}

	g := &ReificationConstraint{b: b, branches: [2]*Constraint{c1, c2}}
	g.reif = &propReif{gate: g, b: b}
	prio := c1.MaxPriority()
	if p2 := c2.MaxPriority(); p2 > prio {
		prio = p2
	}
	g.reif.Propagator = NewPropagator(g.reif, prio, vars, WithName("reif"))

	props := make([]*Propagator, 0, 1+len(c1.props)+len(c2.props))
	props = append(props, g.reif.Propagator)
	props = append(props, c1.props...)
	props = append(props, c2.props...)
	g.bounds = [3]int{1, 1 + len(c1.props), len(props)}

	for _, p := range c1.props {
		if err := p.SetReifiedSilent(b); err != nil {
			return nil, err
		}
	}
	not := b.Not()
	for _, p := range c2.props {
		if err := p.SetReifiedSilent(not); err != nil {
			return nil, err
		}
	}

	g.Constraint = NewConstraint(fmt.Sprintf("%s <=> %s", b.Name(), c1.name), props)
	g.Constraint.satisfied = g.reif.IsEntailed
	g.Constraint.onUnpost = func() {
		c1.status, c1.cidx = StatusFree, -1
		c2.status, c2.cidx = StatusFree, -1
	}
	c1.status, c2.status = StatusReified, StatusReified
	return g, nil
}

// Bool returns the reifying boolean.
func (g *ReificationConstraint) Bool() BoolVar { return g.b }

// Branch returns C1 for 0 and C2 for 1.
func (g *ReificationConstraint) Branch(i int) *Constraint { return g.branches[i] }

// Activate wakes up the propagators of branch 0 (C1) or 1 (C2) and runs a
// full propagation of each.
func (g *ReificationConstraint) Activate(branch int) error {
	return activateBranch(g.props[g.bounds[branch]:g.bounds[branch+1]])
}

func activateBranch(props []*Propagator) error {
	for _, p := range props {
		if err := p.SetReifiedTrue(); err != nil {
			return err
		}
		if err := p.Propagate(FullPropagation); err != nil {
			return err
		}
		p.model.engine.onPropagatorExecution(p)
	}
	return nil
}

type propReif struct {
	*Propagator
	gate *ReificationConstraint
	b    BoolVar
}

func (p *propReif) Propagate(PropagatorEvent) error {
	if p.b.IsInstantiated() {
		if err := p.SetPassive(); err != nil {
			return err
		}
		if p.b.Value() == 1 {
			return p.gate.Activate(0)
		}
		return p.gate.Activate(1)
	}
	decide := func(value int, branch int) error {
		if err := p.SetPassive(); err != nil {
			return err
		}
		if _, err := p.b.InstantiateTo(value, p); err != nil {
			return err
		}
		return p.gate.Activate(branch)
	}
	switch p.gate.branches[0].IsSatisfied() {
	case True:
		return decide(1, 0)
	case False:
		return decide(0, 1)
	}
	switch p.gate.branches[1].IsSatisfied() {
	case True:
		return decide(0, 1)
	case False:
		return decide(1, 0)
	}
	return nil
}

func (p *propReif) IsEntailed() ESat {
	if !p.b.IsInstantiated() {
		return Undefined
	}
	if p.b.Value() == 1 {
		return p.gate.branches[0].IsSatisfied()
	}
	return p.gate.branches[1].IsSatisfied()
}
