package solver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs its tag on every coarse propagation and filters nothing.
type recorder struct {
	*Propagator
	tag string
	log *[]string
}

func newRecorder(tag string, prio Priority, log *[]string, vars ...IntVar) *recorder {
	r := &recorder{tag: tag, log: log}
	r.Propagator = NewPropagator(r, prio, IntVars(vars...), WithName(tag))
	return r
}

func (r *recorder) Propagate(PropagatorEvent) error {
	*r.log = append(*r.log, r.tag)
	return nil
}

func (r *recorder) IsEntailed() ESat { return Undefined }

type fineEvent struct {
	Slot int
	Mask EventMask
}

// fineRecorder logs the fine events it receives.
type fineRecorder struct {
	*Propagator
	full   int
	events []fineEvent
}

func (f *fineRecorder) Propagate(PropagatorEvent) error {
	f.full++
	return nil
}

func (f *fineRecorder) PropagateOn(slot int, mask EventMask) error {
	f.events = append(f.events, fineEvent{Slot: slot, Mask: mask})
	return nil
}

func (f *fineRecorder) IsEntailed() ESat { return Undefined }

// shrinker lowers the upper bound of its variable once per run, with itself
// as cause.
type shrinker struct {
	*Propagator
	x    IntVar
	runs int
}

func (s *shrinker) Propagate(PropagatorEvent) error {
	s.runs++
	_, err := s.x.UpdateUpperBound(s.x.UB()-1, s)
	return err
}

func (s *shrinker) IsEntailed() ESat { return Undefined }

func TestPropagatorStateMachine(t *testing.T) {
	m := NewModel("states")
	x := m.IntVar("x", 0, 3)
	var log []string

	p := newRecorder("p", Unary, &log, x)
	assert.Equal(t, StateNew, p.State())
	assert.True(t, p.IsStateLess())

	require.NoError(t, p.SetActive())
	assert.True(t, p.IsActive())

	err := p.SetActive()
	require.Error(t, err)
	assert.Equal(t, ErrCodeStateConflict, CodeOf(err))
	assert.Contains(t, err.Error(), "Try to activate a propagator already active, passive or reified")
	assert.Equal(t, ErrCodeStateConflict, CodeOf(p.SetReifiedSilent(m.BoolVar("b"))))
	assert.Equal(t, ErrCodeStateConflict, CodeOf(p.SetReifiedTrue()))

	require.NoError(t, p.SetPassive())
	assert.True(t, p.IsPassive())
	assert.Equal(t, ErrCodeStateConflict, CodeOf(p.SetPassive()))
	assert.Equal(t, ErrCodeStateConflict, CodeOf(p.SetActive()))

	q := newRecorder("q", Unary, &log, x)
	assert.Equal(t, ErrCodeStateConflict, CodeOf(q.SetPassive()))
	assert.Equal(t, ErrCodeStateConflict, CodeOf(q.SetReifiedTrue()))

	b := m.BoolVar("guard")
	require.NoError(t, q.SetReifiedSilent(b))
	assert.True(t, q.IsReifiedAndSilent())
	assert.Equal(t, b, q.ReifVar())
	assert.Equal(t, ErrCodeStateConflict, CodeOf(q.SetActive()))
	require.NoError(t, q.SetReifiedTrue())
	assert.True(t, q.IsActive())
}

func TestPropagatorStateIsRestoredOnBacktrack(t *testing.T) {
	m := NewModel("undo")
	env := m.Env()
	var log []string
	p := newRecorder("p", Unary, &log, m.IntVar("x", 0, 3))

	env.WorldPush()
	require.NoError(t, p.SetActive())
	env.WorldPush()
	require.NoError(t, p.SetPassive())

	env.WorldPop()
	assert.Equal(t, StateActive, p.State())
	env.WorldPop()
	assert.Equal(t, StateNew, p.State())
}

func TestNewPropagatorRejectsMalformedInput(t *testing.T) {
	m := NewModel("a")
	other := NewModel("b")
	x := m.IntVar("x", 0, 1)
	y := other.IntVar("y", 0, 1)
	r := &recorder{}

	assert.Panics(t, func() { NewPropagator(nil, Unary, IntVars(x)) })
	assert.Panics(t, func() { NewPropagator(r, Unary, nil) })
	assert.Panics(t, func() { NewPropagator(r, Binary, IntVars(x, y)) })
	assert.Panics(t, func() { NewPropagator(r, Priority(0), IntVars(x)) })
	assert.Panics(t, func() { NewPropagator(r, Binary, []Variable{x, nil}) })
}

func TestPropagatorClonesVariableArray(t *testing.T) {
	m := NewModel("clone")
	x, y := m.IntVar("x", 0, 1), m.IntVar("y", 0, 1)
	vars := IntVars(x, y)
	r := &recorder{}
	p := NewPropagator(r, Binary, vars)
	vars[0] = y
	assert.Equal(t, Variable(x), p.Var(0))
	assert.Equal(t, 2, p.Arity())
}

func TestHigherPriorityDrainsFirst(t *testing.T) {
	for _, sorted := range []bool{true, false} {
		s := DefaultSettings()
		s.SortPropagatorActivation = sorted
		m, err := NewModelWithSettings("priorities", s)
		require.NoError(t, err)
		x := m.IntVar("x", 0, 10)

		var log []string
		slow := newRecorder("slow", Ternary, &log, x)
		fast := newRecorder("fast", Unary, &log, x)
		require.NoError(t, NewConstraint("order", []*Propagator{slow.Propagator, fast.Propagator}).Post())

		require.NoError(t, m.Solver().Propagate())
		if sorted {
			assert.Equal(t, []string{"fast", "slow"}, log)
		} else {
			assert.Equal(t, []string{"slow", "fast"}, log)
		}

		log = log[:0]
		m.Env().WorldPush()
		_, err = x.UpdateUpperBound(5, NullCause)
		require.NoError(t, err)
		require.NoError(t, m.Solver().Propagate())
		assert.Equal(t, []string{"fast", "slow"}, log, "sorted activation: %v", sorted)
	}
}

func TestFineEventsAreMergedPerSlot(t *testing.T) {
	m := NewModel("fine")
	x, y := m.IntVar("x", 0, 10), m.IntVar("y", 0, 10)
	f := &fineRecorder{}
	f.Propagator = NewPropagator(f, Binary, IntVars(x, y))
	require.True(t, f.ReactsToFineEvents())
	require.NoError(t, NewConstraint("fine", []*Propagator{f.Propagator}).Post())
	require.NoError(t, m.Solver().Propagate())
	assert.Equal(t, 1, f.full)
	assert.Empty(t, f.events)

	m.Env().WorldPush()
	_, err := x.UpdateLowerBound(2, NullCause)
	require.NoError(t, err)
	_, err = y.RemoveValue(5, NullCause)
	require.NoError(t, err)
	_, err = x.UpdateUpperBound(8, NullCause)
	require.NoError(t, err)
	require.NoError(t, m.Solver().Propagate())

	want := []fineEvent{
		{Slot: 0, Mask: Remove | IncLow | DecUpp},
		{Slot: 1, Mask: Remove},
	}
	if diff := cmp.Diff(want, f.events); diff != "" {
		t.Errorf("fine events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, f.full)
}

func TestCoarsePropagatorRejectsFineCall(t *testing.T) {
	m := NewModel("coarse")
	var log []string
	p := newRecorder("p", Unary, &log, m.IntVar("x", 0, 1))
	assert.False(t, p.ReactsToFineEvents())
	assert.Equal(t, ErrCodeFineUnsupported, CodeOf(p.propagateOn(0, Remove)))
}

func TestPropagatorIsNotNotifiedOfItsOwnModifications(t *testing.T) {
	for hybrid := 0; hybrid <= 2; hybrid++ {
		s := DefaultSettings()
		s.EngineHybridization = hybrid
		m, err := NewModelWithSettings("self", s)
		require.NoError(t, err)
		x := m.IntVar("x", 0, 10)
		p := &shrinker{x: x}
		p.Propagator = NewPropagator(p, Unary, IntVars(x))
		require.NoError(t, NewConstraint("shrink", []*Propagator{p.Propagator}).Post())

		require.NoError(t, m.Solver().Propagate())
		assert.Equal(t, 1, p.runs, "hybridization %d", hybrid)
		assert.Equal(t, 9, x.UB())
	}
}

func TestSwapOnPassivate(t *testing.T) {
	for _, swap := range []bool{false, true} {
		s := DefaultSettings()
		s.SwapOnPassivate = swap
		m, err := NewModelWithSettings("swap", s)
		require.NoError(t, err)
		x, y := m.IntVar("x", 0, 5), m.IntVar("y", 0, 5)
		c := m.ArithmXY(x, "<", y)
		require.NoError(t, c.Post())
		require.NoError(t, m.Solver().Propagate())
		assert.Equal(t, 1, y.NbProps())

		m.Env().WorldPush()
		_, err = x.InstantiateTo(0, NullCause)
		require.NoError(t, err)
		require.NoError(t, m.Solver().Propagate())
		assert.True(t, c.Propagator(0).IsPassive())
		assert.Equal(t, 0, y.NbProps())

		live := y.core().live.Size()
		if swap {
			assert.Equal(t, 0, live)
		} else {
			assert.Equal(t, 1, live)
		}

		m.Env().WorldPop()
		assert.True(t, c.Propagator(0).IsActive())
		assert.Equal(t, 1, y.core().live.Size())
		assert.Equal(t, 1, y.NbProps())
	}
}

func TestIsCompletelyInstantiated(t *testing.T) {
	m := NewModel("inst")
	x, y := m.IntVar("x", 1, 1), m.IntVar("y", 0, 1)
	var log []string
	p := newRecorder("p", Binary, &log, x, y)
	assert.False(t, p.IsCompletelyInstantiated())
	_, err := y.InstantiateTo(0, NullCause)
	require.NoError(t, err)
	assert.True(t, p.IsCompletelyInstantiated())
}

func TestEmbeddedFiltersAreCoarseUnlessTheyOptIn(t *testing.T) {
	m := NewModel("embedded")
	x, y := m.IntVar("x", 0, 5), m.IntVar("y", 0, 5)
	b, a := m.BoolVar("b"), m.BoolVar("a")

	require.NoError(t, m.Arithm(x, ">", 2).ReifyWith(b))
	reif := m.Constraints()[m.NbConstraints()-1]
	require.NoError(t, m.Arithm(y, ">", 0).ImpliedBy(a))
	implied := m.Constraints()[m.NbConstraints()-1]

	tests := []struct {
		name       string
		p          *Propagator
		fine       bool
		conditions EventMask
	}{
		{"sum", m.Sum([]IntVar{x, y}, "=", 5).Propagator(0), false, AllEvents},
		{"arithm", m.Arithm(x, "<", 3).Propagator(0), false, AllEvents},
		{"arithmXY", m.ArithmXY(x, "<", y).Propagator(0), false, AllEvents},
		{"opposite", m.AllDifferent(x, y).Opposite().Propagator(0), false, AllEvents},
		{"reification", reif.Propagator(0), false, AllEvents},
		{"implied", implied.Propagator(0), false, AllEvents},
		{"allDifferent", m.AllDifferent(x, y).Propagator(0), true, Instantiate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fine, tt.p.ReactsToFineEvents())
			assert.Equal(t, tt.conditions, tt.p.conditionsOn(0))
		})
	}
}

func TestEmbeddedFiltersPropagate(t *testing.T) {
	m := NewModel("embedded-run")
	x, y := m.IntVar("x", 0, 5), m.IntVar("y", 0, 5)
	b := m.BoolVar("b")
	require.NoError(t, m.Sum([]IntVar{x, y}, "=", 5).Post())
	require.NoError(t, m.Arithm(x, "<", 3).ReifyWith(b))
	require.NoError(t, m.Solver().Propagate())

	m.Env().WorldPush()
	_, err := x.InstantiateTo(1, NullCause)
	require.NoError(t, err)
	require.NoError(t, m.Solver().Propagate())
	assert.Equal(t, 4, y.Value())
	assert.Equal(t, 1, b.Value())
	m.Env().WorldPop()
}
