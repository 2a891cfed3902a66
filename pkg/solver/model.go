package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gitrdm/gokanfd/pkg/memory"
)

// Model holds the variables and constraints of a problem, together with the
// environment, engine and solver working on them.
//
// A model is built and solved on a single goroutine. Several models may be
// solved concurrently, they share nothing.
type Model struct {
	id       uuid.UUID
	name     string
	settings Settings

	env     *memory.Environment
	engine  *Engine
	solver  *Solver
	monitor *Monitor
	log     logrus.FieldLogger

	vars  []Variable
	cstrs []*Constraint

	// declared maps constructed constraints to their construction order,
	// when CheckDeclaredConstraints is set.
	declared map[*Constraint]int
	declSeq  int

	nbProps int
	nbNames int
}

// NewModel creates a model with DefaultSettings.
func NewModel(name string) *Model {
	m, err := NewModelWithSettings(name, DefaultSettings())
	if err != nil {
		panic(err)
	}
	return m
}

// NewModelWithSettings creates a model with custom settings.
func NewModelWithSettings(name string, settings Settings) (*Model, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		id:       uuid.New(),
		name:     name,
		settings: settings,
		env:      memory.NewEnvironment(),
		monitor:  NewMonitor(),
		declared: make(map[*Constraint]int),
	}
	m.log = logrus.StandardLogger().WithField("model", name)
	m.engine = newEngine(m)
	m.solver = newSolver(m)
	return m, nil
}

// ID returns the unique identifier of the model, used as a metric label.
func (m *Model) ID() uuid.UUID { return m.id }

// Name returns the name of the model.
func (m *Model) Name() string { return m.name }

// Settings returns the settings the model was created with.
func (m *Model) Settings() Settings { return m.settings }

// Env returns the environment holding the reversible state of the model.
func (m *Model) Env() *memory.Environment { return m.env }

// Engine returns the propagation engine.
func (m *Model) Engine() *Engine { return m.engine }

// Solver returns the solver searching the model.
func (m *Model) Solver() *Solver { return m.solver }

// Monitor returns the search and propagation statistics.
func (m *Model) Monitor() *Monitor { return m.monitor }

// Logger returns the logger, with the model name as field.
func (m *Model) Logger() logrus.FieldLogger { return m.log }

// Vars returns the variables in creation order.
func (m *Model) Vars() []Variable { return m.vars }

// NbVars returns the number of variables.
func (m *Model) NbVars() int { return len(m.vars) }

// Constraints returns the posted constraints.
func (m *Model) Constraints() []*Constraint { return m.cstrs }

// NbConstraints returns the number of posted constraints.
func (m *Model) NbConstraints() int { return len(m.cstrs) }

func (m *Model) nextPropagatorID() int {
	m.nbProps++
	return m.nbProps - 1
}

// SetLogger replaces the logger. Entries carry the model name.
func (m *Model) SetLogger(l logrus.FieldLogger) {
	m.log = l.WithField("model", m.name)
}

// IntVars returns the integer variables of the model, booleans included.
func (m *Model) IntVars() []IntVar {
	out := make([]IntVar, 0, len(m.vars))
	for _, v := range m.vars {
		if iv, ok := v.(IntVar); ok {
			out = append(out, iv)
		}
	}
	return out
}

func (m *Model) generateName(kind string) string {
	m.nbNames++
	return fmt.Sprintf("%s%s%d", m.settings.DefaultPrefix, kind, m.nbNames)
}

// IntVar creates a variable over [lb, ub]. An empty name is replaced by a
// generated one. It panics when lb > ub.
func (m *Model) IntVar(name string, lb, ub int) IntVar {
	if lb > ub {
		mustNotHappen(ErrCodeInvalidArgument, "variable %q: lower bound %d above upper bound %d", name, lb, ub)
	}
	values := make([]int, 0, ub-lb+1)
	for x := lb; x <= ub; x++ {
		values = append(values, x)
	}
	return m.IntVarValues(name, values)
}

// IntVarValues creates a variable over the given values.
func (m *Model) IntVarValues(name string, values []int) IntVar {
	if name == "" {
		name = m.generateName("I_")
	}
	v := newIntVar(m, name, values)
	v.init(v, m, len(m.vars), name)
	m.vars = append(m.vars, v)
	return v
}

// IntVarArray creates n variables over [lb, ub] named prefix[i].
func (m *Model) IntVarArray(prefix string, n, lb, ub int) []IntVar {
	out := make([]IntVar, n)
	for i := range out {
		out[i] = m.IntVar(fmt.Sprintf("%s[%d]", prefix, i), lb, ub)
	}
	return out
}

// BoolVar creates a 0/1 variable.
func (m *Model) BoolVar(name string) BoolVar {
	if name == "" {
		name = m.generateName("B_")
	}
	iv := newIntVar(m, name, []int{0, 1})
	b := &boolVar{intVar: iv}
	iv.init(b, m, len(m.vars), name)
	m.vars = append(m.vars, b)
	return b
}

// BoolVarArray creates n booleans named prefix[i].
func (m *Model) BoolVarArray(prefix string, n int) []BoolVar {
	out := make([]BoolVar, n)
	for i := range out {
		out[i] = m.BoolVar(fmt.Sprintf("%s[%d]", prefix, i))
	}
	return out
}

// Post posts constraints. Constraints posted after the first propagation are
// queued for activation at the next one.
func (m *Model) Post(cs ...*Constraint) error {
	for _, c := range cs {
		if c.model != m {
			return newSolverError(ErrCodeInvalidArgument, "constraint %s belongs to model %s", c.name, c.model.name)
		}
		if err := c.declareAs(StatusPosted, len(m.cstrs)); err != nil {
			return err
		}
		m.cstrs = append(m.cstrs, c)
		m.undeclare(c)
		for _, p := range c.props {
			p.linkVariables()
		}
		m.engine.dynamicAddition(c.props)
		m.monitor.RecordConstraint()
	}
	return nil
}

// Unpost removes a posted constraint and unlinks its propagators. The
// constraint becomes Free again.
func (m *Model) Unpost(c *Constraint) error {
	if c.status != StatusPosted || c.model != m {
		return newSolverError(ErrCodeStatusConflict, "Try to remove a constraint which is not posted in the model: %s", c.name)
	}
	for _, p := range c.props {
		p.unlinkVariables()
	}
	m.engine.dynamicDeletion(c.props)
	idx := c.cidx
	m.cstrs = append(m.cstrs[:idx], m.cstrs[idx+1:]...)
	for i := idx; i < len(m.cstrs); i++ {
		m.cstrs[i].cidx = i
	}
	c.status, c.cidx = StatusFree, -1
	if c.onUnpost != nil {
		c.onUnpost()
	}
	return nil
}

func (m *Model) declare(c *Constraint) {
	if m.settings.CheckDeclaredConstraints {
		m.declared[c] = m.declSeq
		m.declSeq++
	}
}

func (m *Model) undeclare(c *Constraint) { delete(m.declared, c) }

// UnpostedConstraints returns, in construction order, the constraints that
// were built but are still free. It is always empty when
// CheckDeclaredConstraints is off.
func (m *Model) UnpostedConstraints() []*Constraint {
	var out []*Constraint
	for c := range m.declared {
		if c.Status() == StatusFree {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.declared[out[i]] < m.declared[out[j]] })
	return out
}

// String lists the variables and the posted constraints.
func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model[%s] with %d variables and %d constraints\n", m.name, len(m.vars), len(m.cstrs))
	for _, v := range m.vars {
		fmt.Fprintf(&b, "  %s\n", v)
	}
	for _, c := range m.cstrs {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	return b.String()
}
