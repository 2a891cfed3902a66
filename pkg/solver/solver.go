package solver

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Solution holds the values of the model variables, indexed by variable ID.
type Solution []int

// Value returns the value of v in the solution.
func (s Solution) Value(v IntVar) int {
	if w, ok := v.(*boolNotView); ok {
		return 1 - s[w.base.ID()]
	}
	return s[v.ID()]
}

// String formats the values like a slice, e.g. "[1 3 0 2]".
func (s Solution) String() string {
	parts := make([]string, len(s))
	for i, x := range s {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

type decision struct {
	v       IntVar
	val     int
	refuted bool
}

// Solver explores the search tree of a model depth first.
//
// It is the backtracking boundary: the only place where a
// *ContradictionError is caught, the engine flushed and the world popped.
// Any other error aborts the search and is returned.
type Solver struct {
	model    *Model
	strategy Strategy
	solving  bool
}

func newSolver(m *Model) *Solver {
	return &Solver{model: m, strategy: DefaultStrategy()}
}

// Model returns the model being solved.
func (s *Solver) Model() *Model { return s.model }

// SetStrategy replaces the branching strategy.
func (s *Solver) SetStrategy(st Strategy) { s.strategy = st }

// IsSolving reports whether Solve is running.
func (s *Solver) IsSolving() bool { return s.solving }

// Propagate runs the engine to a fixpoint in the current world. On error the
// engine is flushed; after a contradiction the caller is expected to pop the
// world, or to give up on the model when at the root.
func (s *Solver) Propagate() error {
	m := s.model
	err := m.engine.Propagate()
	m.monitor.RecordTrailSize(m.env.TrailSize())
	if err != nil {
		m.engine.Flush()
		if IsContradiction(err) {
			m.monitor.RecordFail()
		}
	}
	return err
}

// FindSolution returns the first solution, or nil when there is none.
func (s *Solver) FindSolution(ctx context.Context) (Solution, error) {
	sols, err := s.Solve(ctx, 1)
	if len(sols) == 0 {
		return nil, err
	}
	return sols[0], err
}

// Solve finds solutions by binary depth-first search.
// Returns up to maxSolutions solutions, or all solutions if maxSolutions <= 0.
//
// The search runs in a world of its own: when it returns, every domain and
// propagator is back to its state before the call. The search can be
// cancelled via the context; solutions found so far are returned with the
// context error.
func (s *Solver) Solve(ctx context.Context, maxSolutions int) ([]Solution, error) {
	if s.solving {
		return nil, newSolverError(ErrCodeStateConflict, "model %s is already being solved", s.model.name)
	}
	m := s.model
	s.warnUnposted()

	vars := s.strategy.Vars
	if len(vars) == 0 {
		vars = m.IntVars()
	}

	m.monitor.StartSearch()
	defer m.monitor.FinishSearch()

	s.solving = true
	base := m.env.WorldIndex()
	m.env.WorldPush()
	defer func() {
		m.env.WorldPopUntil(base)
		m.engine.Reset()
		s.solving = false
	}()

	solutions := make([]Solution, 0)
	failed, err := s.apply(func() error { return nil })
	if err != nil {
		return nil, err
	}
	if failed {
		m.log.Debug("root propagation failed")
		return solutions, nil
	}

	var stack []decision
	for {
		if err := ctx.Err(); err != nil {
			return solutions, err
		}
		if !failed {
			v, val, ok := s.strategy.next(vars)
			if !ok {
				if sol, valid := s.capture(); valid {
					solutions = append(solutions, sol)
					m.monitor.RecordSolution()
					m.log.WithField("depth", len(stack)).Debug("solution found")
					if maxSolutions > 0 && len(solutions) >= maxSolutions {
						return solutions, nil
					}
				}
				failed = true
			} else {
				m.env.WorldPush()
				stack = append(stack, decision{v: v, val: val})
				m.monitor.RecordNode()
				m.monitor.RecordDepth(len(stack))
				m.log.WithFields(logrus.Fields{"depth": len(stack), "var": v.Name(), "value": val}).Debug("decision")
				if failed, err = s.apply(func() error {
					_, err := v.InstantiateTo(val, Decision)
					return err
				}); err != nil {
					return solutions, err
				}
				continue
			}
		}

		// Refute the deepest decision that has not been refuted yet.
		for failed {
			if len(stack) == 0 {
				return solutions, nil
			}
			d := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			m.env.WorldPop()
			m.monitor.RecordBacktrack()
			if d.refuted {
				continue
			}
			m.env.WorldPush()
			d.refuted = true
			stack = append(stack, d)
			m.log.WithFields(logrus.Fields{"depth": len(stack), "var": d.v.Name(), "value": d.val}).Debug("refutation")
			if failed, err = s.apply(func() error {
				_, err := d.v.RemoveValue(d.val, Decision)
				return err
			}); err != nil {
				return solutions, err
			}
		}
	}
}

// apply runs a decision then propagates. A contradiction is reported as
// failed; any other error is returned.
func (s *Solver) apply(decide func() error) (failed bool, err error) {
	m := s.model
	err = decide()
	if err == nil {
		err = m.engine.Propagate()
	}
	m.monitor.RecordTrailSize(m.env.TrailSize())
	if err == nil {
		return false, nil
	}
	m.engine.Flush()
	if IsContradiction(err) {
		m.monitor.RecordFail()
		m.log.WithError(err).Debug("contradiction")
		return true, nil
	}
	return false, err
}

// capture snapshots the variables. A snapshot violating a posted constraint
// is rejected.
func (s *Solver) capture() (Solution, bool) {
	m := s.model
	for _, c := range m.cstrs {
		if c.enabled && c.IsSatisfied() == False {
			m.log.WithField("constraint", c.name).Warn("candidate solution violates a posted constraint")
			return nil, false
		}
	}
	sol := make(Solution, len(m.vars))
	for i, v := range m.vars {
		if iv, ok := v.(IntVar); ok {
			sol[i] = iv.Value()
		}
	}
	return sol, true
}

func (s *Solver) warnUnposted() {
	m := s.model
	if !m.settings.WarnUser {
		return
	}
	for _, c := range m.UnpostedConstraints() {
		m.log.WithField("constraint", c.name).Warn("constraint is neither posted, reified nor ignored")
	}
}
