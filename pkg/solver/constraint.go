package solver

import (
	"fmt"
	"strings"
)

// Status is the lifecycle status of a constraint.
type Status uint8

const (
	// StatusFree constraints are neither posted nor reified.
	StatusFree Status = iota
	// StatusPosted constraints take part in propagation.
	StatusPosted
	// StatusReified constraints are guarded by a reification gate.
	StatusReified
)

// String returns the status name, e.g. "POSTED".
func (s Status) String() string {
	switch s {
	case StatusPosted:
		return "POSTED"
	case StatusReified:
		return "REIFIED"
	}
	return "FREE"
}

// ConstraintOption configures a Constraint at construction.
type ConstraintOption func(*Constraint)

// WithOppositeMaker replaces the default opposite, which only fails when the
// constraint is satisfied, with a filtering negation.
func WithOppositeMaker(fn func(c *Constraint) *Constraint) ConstraintOption {
	return func(c *Constraint) { c.makeOpposite = fn }
}

// WithPriorityPolicy replaces the default aggregate priority, the maximum
// priority of the propagators.
func WithPriorityPolicy(fn func(props []*Propagator) Priority) ConstraintOption {
	return func(c *Constraint) { c.priorityPolicy = fn }
}

// Constraint is a named bundle of propagators.
//
// A constraint is Free when built. Post makes it Posted, ReifyWith makes it
// Reified; both transitions are checked and neither can be repeated. Only
// Model.Unpost and Ignore bring a constraint back to Free.
type Constraint struct {
	name    string
	model   *Model
	props   []*Propagator
	status  Status
	cidx    int
	enabled bool

	opposite *Constraint
	boolReif BoolVar

	makeOpposite   func(c *Constraint) *Constraint
	priorityPolicy func(props []*Propagator) Priority
	satisfied      func() ESat
	onUnpost       func()
}

// NewConstraint bundles props under name and makes the constraint their
// owner. It panics when props is empty or mixes models.
func NewConstraint(name string, props []*Propagator, opts ...ConstraintOption) *Constraint {
	if len(props) == 0 {
		mustNotHappen(ErrCodeInvalidArgument, "constraint %q has no propagator", name)
	}
	m := props[0].model
	for _, p := range props {
		if p.model != m {
			mustNotHappen(ErrCodeInvalidArgument, "constraint %q mixes propagators of different models", name)
		}
	}
	c := &Constraint{
		name:    name,
		model:   m,
		props:   append([]*Propagator(nil), props...),
		cidx:    -1,
		enabled: true,
	}
	for _, p := range c.props {
		p.defineIn(c)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.makeOpposite == nil {
		c.makeOpposite = defaultOpposite
	}
	m.declare(c)
	return c
}

// Name returns the name of the constraint.
func (c *Constraint) Name() string { return c.name }

// Model returns the model the constraint belongs to.
func (c *Constraint) Model() *Model { return c.model }

// Propagators returns the propagators of the constraint.
func (c *Constraint) Propagators() []*Propagator { return c.props }

// Propagator returns the i-th propagator.
func (c *Constraint) Propagator(i int) *Propagator { return c.props[i] }

// NbPropagators returns the number of propagators.
func (c *Constraint) NbPropagators() int { return len(c.props) }

// Index returns the position of the constraint in the model, or -1 when it is not posted.
func (c *Constraint) Index() int { return c.cidx }

// IsEnabled reports whether the propagators of the constraint run.
func (c *Constraint) IsEnabled() bool { return c.enabled }

// BoolReif returns the boolean reifying the constraint, or nil.
func (c *Constraint) BoolReif() BoolVar { return c.boolReif }

// Status returns the status of the constraint. A Free constraint with an
// opposite reports the opposite's status, so not(C) is Posted when only C was
// posted, and the reverse.
func (c *Constraint) Status() Status {
	if c.status == StatusFree && c.opposite != nil {
		return c.opposite.status
	}
	return c.status
}

func (c *Constraint) checkNewStatus(s Status) error {
	switch c.status {
	case StatusPosted:
		if s == StatusPosted {
			return newSolverError(ErrCodeStatusConflict, "Try to post a constraint which is already posted in the model: %s", c.name)
		}
		if s == StatusReified {
			return newSolverError(ErrCodeStatusConflict, "Try to reify a constraint which is already posted in the model: %s", c.name)
		}
	case StatusReified:
		if s == StatusPosted {
			return newSolverError(ErrCodeStatusConflict, "Try to post a constraint which is already reified: %s", c.name)
		}
		if s == StatusReified {
			return newSolverError(ErrCodeStatusConflict, "Try to reify a constraint which is already reified: %s", c.name)
		}
	}
	return nil
}

// declareAs validates and applies a status transition. idx is the position
// of the constraint in the model when posted, -1 otherwise.
func (c *Constraint) declareAs(s Status, idx int) error {
	if err := c.checkNewStatus(s); err != nil {
		return err
	}
	c.status = s
	c.cidx = idx
	return nil
}

// Post adds the constraint to its model.
func (c *Constraint) Post() error { return c.model.Post(c) }

// MaxPriority returns the aggregate priority of the constraint.
func (c *Constraint) MaxPriority() Priority {
	if c.priorityPolicy != nil {
		return c.priorityPolicy(c.props)
	}
	max := Unary
	for _, p := range c.props {
		if p.priority > max {
			max = p.priority
		}
	}
	return max
}

// IsSatisfied evaluates the constraint over the current domains: False if a
// propagator is not entailed, True if all are, Undefined otherwise.
func (c *Constraint) IsSatisfied() ESat {
	if c.satisfied != nil {
		return c.satisfied()
	}
	undefined := false
	for _, p := range c.props {
		switch p.IsEntailed() {
		case False:
			return False
		case Undefined:
			undefined = true
		}
	}
	if undefined {
		return Undefined
	}
	return True
}

// Opposite returns the negation of the constraint, built on first use.
// c.Opposite().Opposite() is c.
func (c *Constraint) Opposite() *Constraint {
	if c.opposite == nil {
		o := c.makeOpposite(c)
		o.opposite = c
		c.opposite = o
	}
	return c.opposite
}

// Reify returns the boolean reifying the constraint, creating it on the first
// call.
func (c *Constraint) Reify() (BoolVar, error) {
	if c.boolReif != nil {
		return c.boolReif, nil
	}
	b := c.model.BoolVar(c.model.generateName("REIF_"))
	if err := c.ReifyWith(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReifyWith binds the truth value of the constraint to b.
//
// If b is already fixed, the constraint or its opposite is posted directly.
// Otherwise a ReificationConstraint is posted. Reifying again with another
// boolean posts b = previous boolean.
func (c *Constraint) ReifyWith(b BoolVar) error {
	if c.boolReif != nil {
		if b == c.boolReif {
			return nil
		}
		return c.model.ArithmXY(b, "=", c.boolReif).Post()
	}
	if err := c.checkNewStatus(StatusReified); err != nil {
		return err
	}
	op := c.Opposite()
	if err := op.checkNewStatus(StatusReified); err != nil {
		return err
	}
	var err error
	switch {
	case b.IsInstantiatedTo(1):
		err = c.Post()
	case b.IsInstantiatedTo(0):
		err = op.Post()
	default:
		var gate *ReificationConstraint
		if gate, err = NewReificationConstraint(b, c, op); err == nil {
			err = gate.Post()
		}
	}
	if err != nil {
		return err
	}
	c.boolReif = b
	op.boolReif = b.Not()
	return nil
}

// ImpliedBy posts b => c.
func (c *Constraint) ImpliedBy(b BoolVar) error {
	gate, err := NewImpliedConstraint(b, c)
	if err != nil {
		return err
	}
	return gate.Post()
}

// Implies posts c => b, as not(b) => not(c).
func (c *Constraint) Implies(b BoolVar) error {
	return c.Opposite().ImpliedBy(b.Not())
}

// Ignore removes the constraint from the declared-constraint check. A posted
// constraint is unposted first. Reified constraints belong to their gate and
// cannot be ignored.
func (c *Constraint) Ignore() error {
	switch c.status {
	case StatusReified:
		return newSolverError(ErrCodeNotIgnorable, "constraint %s is reified, unpost its gate instead", c.name)
	case StatusPosted:
		if err := c.model.Unpost(c); err != nil {
			return err
		}
	}
	c.model.undeclare(c)
	return nil
}

// SetEnabled enables or disables every propagator of the constraint. It is an
// error to call it while the solver is searching.
func (c *Constraint) SetEnabled(enabled bool) error {
	if c.model.solver.IsSolving() {
		return newSolverError(ErrCodeEnableDuringSearch,
			"constraint %s cannot be enabled or disabled during resolution", c.name)
	}
	c.enabled = enabled
	for _, p := range c.props {
		p.setEnabled(enabled)
	}
	if enabled && c.status == StatusPosted {
		c.model.engine.dynamicAddition(c.props)
	}
	return nil
}

// String returns the name of the constraint followed by its propagators.
func (c *Constraint) String() string {
	parts := make([]string, len(c.props))
	for i, p := range c.props {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", c.name, strings.Join(parts, ", "))
}

// Merge builds a constraint owning the propagators of cs. Each input is
// ignored first, so only the merged constraint needs to be posted.
func Merge(name string, cs ...*Constraint) (*Constraint, error) {
	if len(cs) == 0 {
		return nil, newSolverError(ErrCodeInvalidArgument, "merge %q of no constraint", name)
	}
	var props []*Propagator
	for _, c := range cs {
		if err := c.Ignore(); err != nil {
			return nil, err
		}
		props = append(props, c.props...)
	}
	return NewConstraint(name, props), nil
}
