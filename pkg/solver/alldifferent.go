package solver

import (
	"fmt"

	"github.com/gitrdm/gokanfd/pkg/memory"
)

// AllDifferent builds a constraint forcing vars to take distinct values.
// Filtering removes the value of each instantiated variable from the others.
func (m *Model) AllDifferent(vars ...IntVar) *Constraint {
	if len(vars) == 0 {
		mustNotHappen(ErrCodeInvalidArgument, "allDifferent of no variable")
	}
	p := &propAllDiffInst{vars: append([]IntVar(nil), vars...)}
	p.Propagator = NewPropagator(p, Unary, IntVars(vars...), WithName("allDifferent"))
	p.free = memory.NewIndexedBipartiteSet(m.env, len(vars))
	for range vars {
		p.free.Add()
	}
	return NewConstraint(fmt.Sprintf("allDifferent(%d)", len(vars)), []*Propagator{p.Propagator})
}

// propAllDiffInst reacts to instantiations only. The slots not yet processed
// are the live part of free; a processed slot is swapped out, and restored on
// backtrack.
type propAllDiffInst struct {
	*Propagator
	vars  []IntVar
	free  *memory.IndexedBipartiteSet
	stack []int
	buf   []int
}

func (p *propAllDiffInst) PropagationConditions(int) EventMask { return Instantiate }

func (p *propAllDiffInst) Propagate(PropagatorEvent) error {
	for i, v := range p.vars {
		if v.IsInstantiated() && p.free.Contains(i) {
			if err := p.filterFrom(i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *propAllDiffInst) PropagateOn(slot int, mask EventMask) error {
	if !mask.IsInstantiate() {
		return nil
	}
	return p.filterFrom(slot)
}

// filterFrom processes slot and every slot instantiated as a consequence.
func (p *propAllDiffInst) filterFrom(slot int) error {
	p.stack = append(p.stack[:0], slot)
	for len(p.stack) > 0 {
		s := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		if !p.free.Contains(s) {
			continue
		}
		p.free.Swap(s)
		val := p.vars[s].Value()
		p.buf = p.buf[:0]
		p.free.Live(func(j int) bool {
			p.buf = append(p.buf, j)
			return true
		})
		for _, j := range p.buf {
			v := p.vars[j]
			changed, err := v.RemoveValue(val, p)
			if err != nil {
				return err
			}
			if changed && v.IsInstantiated() {
				p.stack = append(p.stack, j)
			}
		}
	}
	if p.free.Size() <= 1 && p.IsActive() {
		return p.SetPassive()
	}
	return nil
}

func (p *propAllDiffInst) IsEntailed() ESat {
	seen := make(map[int]bool, len(p.vars))
	all := true
	for _, v := range p.vars {
		if !v.IsInstantiated() {
			all = false
			continue
		}
		if seen[v.Value()] {
			return False
		}
		seen[v.Value()] = true
	}
	if all {
		return True
	}
	return Undefined
}
