package solver

// propOpposite is the default negation of a constraint: it filters nothing
// and fails as soon as the original constraint is satisfied.
type propOpposite struct {
	*Propagator
	original *Constraint
}

func collectVars(cs ...*Constraint) []Variable {
	seen := make(map[Variable]bool)
	var vars []Variable
	for _, c := range cs {
		for _, p := range c.props {
			for _, v := range p.vars {
				if !seen[v] {
					seen[v] = true
					vars = append(vars, v)
				}
			}
		}
	}
	return vars
}

func defaultOpposite(c *Constraint) *Constraint {
	p := &propOpposite{original: c}
	p.Propagator = NewPropagator(p, c.MaxPriority(), collectVars(c), WithName("opposite"))
	return NewConstraint("not("+c.name+")", []*Propagator{p.Propagator})
}

func (p *propOpposite) Propagate(PropagatorEvent) error {
	switch p.original.IsSatisfied() {
	case True:
		return Fail(p, nil, "%s is satisfied", p.original.name)
	case False:
		if p.IsActive() {
			return p.SetPassive()
		}
	}
	return nil
}

func (p *propOpposite) IsEntailed() ESat { return p.original.IsSatisfied().Not() }
