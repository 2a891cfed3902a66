package solver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gitrdm/gokanfd/pkg/memory"
)

// Variable is the part of a decision variable the propagation core relies
// on: an identity, instantiation status, and the list of linked propagators.
type Variable interface {
	// ID returns the model-wide index of the variable, or -1 for views.
	ID() int
	Name() string
	Model() *Model
	IsInstantiated() bool
	// NbProps returns the number of propagators linked to the variable that
	// are neither passive nor swapped out.
	NbProps() int
	String() string

	core() *varCore
}

// IntVar is an integer variable with a finite domain.
//
// Modifiers take the Cause of the modification and report whether the domain
// changed. They return a *ContradictionError when the domain would become
// empty, in which case the domain is left untouched.
type IntVar interface {
	Variable

	LB() int
	UB() int
	Size() int
	Contains(v int) bool
	// Value returns the value of an instantiated variable. Calling it on an
	// uninstantiated variable returns the lower bound.
	Value() int
	IsInstantiatedTo(v int) bool
	// NextValue returns the smallest value greater than v, or math.MaxInt.
	NextValue(v int) int
	// PreviousValue returns the largest value smaller than v, or math.MinInt.
	PreviousValue(v int) int
	Values() []int

	InstantiateTo(v int, cause Cause) (bool, error)
	RemoveValue(v int, cause Cause) (bool, error)
	UpdateLowerBound(v int, cause Cause) (bool, error)
	UpdateUpperBound(v int, cause Cause) (bool, error)
	UpdateBounds(lb, ub int, cause Cause) (bool, error)
}

// BoolVar is a 0/1 integer variable.
type BoolVar interface {
	IntVar

	SetToTrue(cause Cause) (bool, error)
	SetToFalse(cause Cause) (bool, error)
	BooleanValue() ESat
	// Not returns the negation view; Not().Not() is the variable itself.
	Not() BoolVar
	IsNot() bool
}

type propLink struct {
	prop  *Propagator
	slot  int
	alive bool
}

// eventView is a variable derived from another one. It receives the events
// of its base variable, transformed.
type eventView interface {
	Variable
	transformEvent(EventMask) EventMask
}

// varCore holds what every variable shares: identity, the links to its
// propagators and the events pending in the engine.
//
// Links are indices of a backtrackable partition so that passive propagators
// can be swapped out of the live part and restored on backtrack.
type varCore struct {
	self  Variable
	model *Model
	id    int
	name  string

	links []propLink
	live  *memory.IndexedBipartiteSet
	views []eventView

	evtMask   EventMask
	evtOrigin *Propagator
}

func (c *varCore) init(self Variable, m *Model, id int, name string) {
	c.self = self
	c.model = m
	c.id = id
	c.name = name
	c.live = memory.NewIndexedBipartiteSet(m.env, 4)
}

func (c *varCore) ID() int        { return c.id }
func (c *varCore) Name() string   { return c.name }
func (c *varCore) Model() *Model  { return c.model }
func (c *varCore) core() *varCore { return c }

func (c *varCore) NbProps() int {
	n := 0
	c.eachLink(func(l propLink) {
		if !l.prop.IsPassive() {
			n++
		}
	})
	return n
}

// link registers p at slot and returns the link index.
func (c *varCore) link(p *Propagator, slot int) int {
	id := c.live.Add()
	c.links = append(c.links, propLink{prop: p, slot: slot, alive: true})
	return id
}

func (c *varCore) unlink(id int) {
	c.links[id].alive = false
	c.live.Swap(id)
}

func (c *varCore) swapOnPassivate(id int) { c.live.Swap(id) }

// eachLink visits the links that are alive and in the live partition.
func (c *varCore) eachLink(fn func(propLink)) {
	c.live.Live(func(id int) bool {
		if l := c.links[id]; l.alive {
			fn(l)
		}
		return true
	})
}

func (c *varCore) notify(mask EventMask, cause Cause) {
	c.model.engine.onVariableUpdate(c.self, mask, cause)
	for _, v := range c.views {
		v.core().notify(v.transformEvent(mask), cause)
	}
}

// intVar is an integer variable backed by a reversible bitset. Bit i stands
// for value offset+i.
type intVar struct {
	varCore
	offset int
	bits   *memory.BitSet
	lb     *memory.StoredInt
	ub     *memory.StoredInt
	size   *memory.StoredInt
}

func newIntVar(m *Model, name string, values []int) *intVar {
	if len(values) == 0 {
		mustNotHappen(ErrCodeInvalidArgument, "variable %q has an empty domain", name)
	}
	vals := append([]int(nil), values...)
	sort.Ints(vals)
	lo, hi := vals[0], vals[len(vals)-1]
	v := &intVar{offset: lo, bits: memory.NewBitSet(m.env, hi-lo+1)}
	n := 0
	for _, x := range vals {
		if !v.bits.Get(x - lo) {
			v.bits.Set(x - lo)
			n++
		}
	}
	v.lb = memory.NewStoredInt(m.env, lo)
	v.ub = memory.NewStoredInt(m.env, hi)
	v.size = memory.NewStoredInt(m.env, n)
	return v
}

func (v *intVar) LB() int   { return v.lb.Get() }
func (v *intVar) UB() int   { return v.ub.Get() }
func (v *intVar) Size() int { return v.size.Get() }

func (v *intVar) Contains(x int) bool {
	return x >= v.lb.Get() && x <= v.ub.Get() && v.bits.Get(x-v.offset)
}

func (v *intVar) Value() int { return v.lb.Get() }

func (v *intVar) IsInstantiated() bool { return v.size.Get() == 1 }

func (v *intVar) IsInstantiatedTo(x int) bool {
	return v.size.Get() == 1 && v.lb.Get() == x
}

func (v *intVar) NextValue(x int) int {
	if x < v.lb.Get() {
		return v.lb.Get()
	}
	if x >= v.ub.Get() {
		return math.MaxInt
	}
	return v.bits.NextSetBit(x+1-v.offset) + v.offset
}

func (v *intVar) PreviousValue(x int) int {
	if x > v.ub.Get() {
		return v.ub.Get()
	}
	if x <= v.lb.Get() {
		return math.MinInt
	}
	return v.bits.PrevSetBit(x-1-v.offset) + v.offset
}

func (v *intVar) Values() []int {
	out := make([]int, 0, v.size.Get())
	for x := v.lb.Get(); x != math.MaxInt; x = v.NextValue(x) {
		out = append(out, x)
	}
	return out
}

func (v *intVar) InstantiateTo(x int, cause Cause) (bool, error) {
	if !v.Contains(x) {
		return false, Fail(cause, v.self, "instantiate to %d, not in %s", x, v.domainString())
	}
	if v.size.Get() == 1 {
		return false, nil
	}
	lb, ub := v.lb.Get(), v.ub.Get()
	mask := Instantiate | Remove
	if x > lb {
		mask |= IncLow
	}
	if x < ub {
		mask |= DecUpp
	}
	v.bits.ClearRange(lb-v.offset, x-v.offset)
	v.bits.ClearRange(x-v.offset+1, ub-v.offset+1)
	v.lb.Set(x)
	v.ub.Set(x)
	v.size.Set(1)
	v.notify(mask, cause)
	return true, nil
}

func (v *intVar) RemoveValue(x int, cause Cause) (bool, error) {
	if !v.Contains(x) {
		return false, nil
	}
	if v.size.Get() == 1 {
		return false, Fail(cause, v.self, "remove %d, the last value", x)
	}
	mask := Remove
	v.bits.Clear(x - v.offset)
	v.size.Add(-1)
	if x == v.lb.Get() {
		v.lb.Set(v.bits.NextSetBit(x-v.offset) + v.offset)
		mask |= IncLow
	} else if x == v.ub.Get() {
		v.ub.Set(v.bits.PrevSetBit(x-v.offset) + v.offset)
		mask |= DecUpp
	}
	if v.size.Get() == 1 {
		mask |= Instantiate
	}
	v.notify(mask, cause)
	return true, nil
}

func (v *intVar) UpdateLowerBound(x int, cause Cause) (bool, error) {
	lb, ub := v.lb.Get(), v.ub.Get()
	if x <= lb {
		return false, nil
	}
	if x > ub {
		return false, Fail(cause, v.self, "lower bound %d above %s", x, v.domainString())
	}
	v.bits.ClearRange(lb-v.offset, x-v.offset)
	v.lb.Set(v.bits.NextSetBit(x-v.offset) + v.offset)
	v.size.Set(v.bits.Cardinality())
	mask := Remove | IncLow
	if v.size.Get() == 1 {
		mask |= Instantiate
	}
	v.notify(mask, cause)
	return true, nil
}

func (v *intVar) UpdateUpperBound(x int, cause Cause) (bool, error) {
	lb, ub := v.lb.Get(), v.ub.Get()
	if x >= ub {
		return false, nil
	}
	if x < lb {
		return false, Fail(cause, v.self, "upper bound %d below %s", x, v.domainString())
	}
	v.bits.ClearRange(x-v.offset+1, ub-v.offset+1)
	v.ub.Set(v.bits.PrevSetBit(x-v.offset) + v.offset)
	v.size.Set(v.bits.Cardinality())
	mask := Remove | DecUpp
	if v.size.Get() == 1 {
		mask |= Instantiate
	}
	v.notify(mask, cause)
	return true, nil
}

func (v *intVar) UpdateBounds(lb, ub int, cause Cause) (bool, error) {
	if lb > ub || lb > v.ub.Get() || ub < v.lb.Get() {
		return false, Fail(cause, v.self, "bounds [%d,%d] disjoint from %s", lb, ub, v.domainString())
	}
	a, err := v.UpdateLowerBound(lb, cause)
	if err != nil {
		return false, err
	}
	b, err := v.UpdateUpperBound(ub, cause)
	return a || b, err
}

func (v *intVar) domainString() string {
	lb, ub := v.lb.Get(), v.ub.Get()
	switch {
	case lb == ub:
		return fmt.Sprint(lb)
	case v.size.Get() == ub-lb+1:
		return fmt.Sprintf("[%d,%d]", lb, ub)
	}
	parts := make([]string, 0, v.size.Get())
	for _, x := range v.Values() {
		parts = append(parts, fmt.Sprint(x))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (v *intVar) String() string { return v.name + " = " + v.domainString() }

// boolVar is an intVar over {0, 1}.
type boolVar struct {
	*intVar
	not *boolNotView
}

func (b *boolVar) SetToTrue(cause Cause) (bool, error)  { return b.InstantiateTo(1, cause) }
func (b *boolVar) SetToFalse(cause Cause) (bool, error) { return b.InstantiateTo(0, cause) }

func (b *boolVar) BooleanValue() ESat {
	if !b.IsInstantiated() {
		return Undefined
	}
	return EvalESat(b.LB() == 1)
}

func (b *boolVar) Not() BoolVar {
	if b.not == nil {
		b.not = &boolNotView{base: b}
		b.not.init(b.not, b.model, -1, "not("+b.name+")")
		b.views = append(b.views, b.not)
	}
	return b.not
}

func (b *boolVar) IsNot() bool { return false }

// boolNotView is the negation of a boolVar. It owns no domain: reads and
// writes go to the base variable, and the base forwards its events with
// IncLow and DecUpp swapped.
type boolNotView struct {
	varCore
	base *boolVar
}

func (w *boolNotView) transformEvent(m EventMask) EventMask { return m.flipBounds() }

func (w *boolNotView) LB() int                     { return 1 - w.base.UB() }
func (w *boolNotView) UB() int                     { return 1 - w.base.LB() }
func (w *boolNotView) Size() int                   { return w.base.Size() }
func (w *boolNotView) Value() int                  { return 1 - w.base.Value() }
func (w *boolNotView) IsInstantiated() bool        { return w.base.IsInstantiated() }
func (w *boolNotView) IsInstantiatedTo(x int) bool { return w.base.IsInstantiatedTo(1 - x) }
func (w *boolNotView) BooleanValue() ESat          { return w.base.BooleanValue().Not() }
func (w *boolNotView) Not() BoolVar                { return w.base }
func (w *boolNotView) IsNot() bool                 { return true }

func (w *boolNotView) Contains(x int) bool {
	return (x == 0 || x == 1) && w.base.Contains(1-x)
}

func (w *boolNotView) NextValue(x int) int {
	switch lb, ub := w.LB(), w.UB(); {
	case x < lb:
		return lb
	case x < ub:
		return ub
	}
	return math.MaxInt
}

func (w *boolNotView) PreviousValue(x int) int {
	switch lb, ub := w.LB(), w.UB(); {
	case x > ub:
		return ub
	case x > lb:
		return lb
	}
	return math.MinInt
}

func (w *boolNotView) Values() []int {
	var out []int
	for x := 0; x <= 1; x++ {
		if w.Contains(x) {
			out = append(out, x)
		}
	}
	return out
}

func (w *boolNotView) InstantiateTo(x int, cause Cause) (bool, error) {
	if !w.Contains(x) {
		return false, Fail(cause, w, "instantiate to %d, not in %v", x, w.Values())
	}
	return w.base.InstantiateTo(1-x, cause)
}

func (w *boolNotView) RemoveValue(x int, cause Cause) (bool, error) {
	if x != 0 && x != 1 {
		return false, nil
	}
	return w.base.RemoveValue(1-x, cause)
}

func (w *boolNotView) UpdateLowerBound(x int, cause Cause) (bool, error) {
	if x <= w.LB() {
		return false, nil
	}
	if x > w.UB() {
		return false, Fail(cause, w, "lower bound %d above %v", x, w.Values())
	}
	return w.InstantiateTo(w.UB(), cause)
}

func (w *boolNotView) UpdateUpperBound(x int, cause Cause) (bool, error) {
	if x >= w.UB() {
		return false, nil
	}
	if x < w.LB() {
		return false, Fail(cause, w, "upper bound %d below %v", x, w.Values())
	}
	return w.InstantiateTo(w.LB(), cause)
}

func (w *boolNotView) UpdateBounds(lb, ub int, cause Cause) (bool, error) {
	a, err := w.UpdateLowerBound(lb, cause)
	if err != nil {
		return false, err
	}
	b, err := w.UpdateUpperBound(ub, cause)
	return a || b, err
}

func (w *boolNotView) SetToTrue(cause Cause) (bool, error)  { return w.base.SetToFalse(cause) }
func (w *boolNotView) SetToFalse(cause Cause) (bool, error) { return w.base.SetToTrue(cause) }

func (w *boolNotView) String() string {
	if w.IsInstantiated() {
		return fmt.Sprintf("%s = %d", w.name, w.Value())
	}
	return w.name + " = [0,1]"
}
