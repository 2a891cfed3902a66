package solver

import (
	"fmt"

	"github.com/gitrdm/gokanfd/internal/queue"
	"github.com/gitrdm/gokanfd/pkg/memory"
)

// Filter is the filtering algorithm of a propagator.
//
// Propagate must be idempotent: on domains already at its fixpoint it changes
// nothing and does not fail. Since the engine never notifies a propagator of
// its own modifications, a filter reaches its own fixpoint before returning.
//
// IsEntailed evaluates the constraint over the current domains, whether or
// not propagation has reached a fixpoint.
type Filter interface {
	Propagate(evt PropagatorEvent) error
	IsEntailed() ESat
}

// FineFilter is implemented by filters that react to individual variable
// events. The engine then calls PropagateOn once per modified slot, with the
// union of the events received on that slot since the last call, instead of
// calling Propagate.
type FineFilter interface {
	PropagateOn(slot int, mask EventMask) error
}

// ConditionFilter is implemented by filters that only need some events on
// some slots. Without it a filter is told about every event.
type ConditionFilter interface {
	PropagationConditions(slot int) EventMask
}

// PropagatorState is the lifecycle state of a propagator.
type PropagatorState uint8

const (
	// StateNew propagators are built but not yet activated.
	StateNew PropagatorState = iota
	// StateReified propagators are linked but inert until their reifying
	// boolean selects them.
	StateReified
	// StateActive propagators are scheduled on events.
	StateActive
	// StatePassive propagators are entailed and ignored until backtrack.
	StatePassive
)

// String returns the state name, e.g. "ACTIVE".
func (s PropagatorState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateReified:
		return "REIFIED"
	case StateActive:
		return "ACTIVE"
	case StatePassive:
		return "PASSIVE"
	}
	return fmt.Sprintf("PropagatorState(%d)", uint8(s))
}

// PropagatorOption configures a Propagator at construction.
type PropagatorOption func(*Propagator)

// WithSwapOnPassivate makes the propagator leave the live propagator lists of
// its variables when it becomes passive.
func WithSwapOnPassivate() PropagatorOption {
	return func(p *Propagator) { p.swapOnPassivate = true }
}

// WithName sets the name used in logs and errors.
func WithName(name string) PropagatorOption {
	return func(p *Propagator) { p.name = name }
}

// Propagator is the unit of filtering. Concrete propagators embed a
// *Propagator built by NewPropagator and implement Filter:
//
//	type propLE struct {
//		*solver.Propagator
//		x, y solver.IntVar
//	}
//
//	p := &propLE{x: x, y: y}
//	p.Propagator = solver.NewPropagator(p, solver.Binary, solver.IntVars(x, y))
//
// The embedded *Propagator makes the concrete type a Cause, so modifications
// made with the propagator itself as cause are not reported back to it.
type Propagator struct {
	id       int
	name     string
	model    *Model
	vars     []Variable
	linkIDs  []int
	priority Priority

	filter     Filter
	fine       FineFilter
	conditions ConditionFilter

	state      PropagatorState
	reifVar    BoolVar
	enabled    bool
	constraint *Constraint
	linked     bool

	swapOnPassivate bool

	// Engine bookkeeping.
	scheduled  bool
	awaiting   bool
	delayed    bool
	delayedEvt PropagatorEvent
	fineQueue  *queue.Circular[int]
	eventMasks []EventMask
	fails      int
}

// NewPropagator builds the propagator state for filter over vars.
// It panics when vars is empty, when filter is nil, or when the variables
// belong to different models.
func NewPropagator(filter Filter, priority Priority, vars []Variable, opts ...PropagatorOption) *Propagator {
	if filter == nil {
		mustNotHappen(ErrCodeInvalidPropagator, "nil filter")
	}
	if len(vars) == 0 {
		mustNotHappen(ErrCodeInvalidPropagator, "propagator %T has no variable", filter)
	}
	if !priority.valid() {
		mustNotHappen(ErrCodeInvalidPropagator, "propagator %T has invalid priority %d", filter, int(priority))
	}
	var m *Model
	for i, v := range vars {
		if v == nil {
			mustNotHappen(ErrCodeInvalidPropagator, "propagator %T has a nil variable at slot %d", filter, i)
		}
		if m == nil {
			m = v.Model()
		} else if v.Model() != m {
			mustNotHappen(ErrCodeInvalidPropagator, "propagator %T mixes variables of different models", filter)
		}
	}
	if m.settings.CloneVariableArray {
		vars = append([]Variable(nil), vars...)
	}
	p := &Propagator{
		id:              m.nextPropagatorID(),
		model:           m,
		vars:            vars,
		linkIDs:         make([]int, len(vars)),
		priority:        priority,
		filter:          filter,
		enabled:         true,
		swapOnPassivate: m.settings.SwapOnPassivate,
	}
	for i := range p.linkIDs {
		p.linkIDs[i] = -1
	}
	if f, ok := filter.(FineFilter); ok {
		p.fine = f
		p.fineQueue = queue.NewCircular[int](len(vars))
		p.eventMasks = make([]EventMask, len(vars))
	}
	if c, ok := filter.(ConditionFilter); ok {
		p.conditions = c
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.name == "" {
		p.name = fmt.Sprintf("%T", filter)
	}
	return p
}

// IntVars converts its arguments to a []Variable, for NewPropagator.
func IntVars(vs ...IntVar) []Variable {
	out := make([]Variable, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// Origin makes every propagator a Cause.
func (p *Propagator) Origin() *Propagator { return p }

// ID returns the identifier of the propagator, unique within its model.
func (p *Propagator) ID() int { return p.id }

// Name returns the name used in logs and errors.
func (p *Propagator) Name() string { return p.name }

// Model returns the model owning the variables of the propagator.
func (p *Propagator) Model() *Model { return p.model }

// Vars returns the observed variables, one per slot.
func (p *Propagator) Vars() []Variable { return p.vars }

// Var returns the variable observed on slot i.
func (p *Propagator) Var(i int) Variable { return p.vars[i] }

// Arity returns the number of slots.
func (p *Propagator) Arity() int { return len(p.vars) }

// Priority returns the bucket the engine schedules the propagator in.
func (p *Propagator) Priority() Priority { return p.priority }

// State returns the lifecycle state.
func (p *Propagator) State() PropagatorState { return p.state }

// Constraint returns the constraint owning the propagator, or nil before it is bundled.
func (p *Propagator) Constraint() *Constraint { return p.constraint }

// ReifVar returns the boolean guarding the propagator, or nil.
func (p *Propagator) ReifVar() BoolVar { return p.reifVar }

// Enabled reports whether the engine runs the propagator.
func (p *Propagator) Enabled() bool { return p.enabled }

// Fails returns the number of contradictions raised by the propagator.
func (p *Propagator) Fails() int { return p.fails }

// IsScheduled reports whether the propagator waits in a priority bucket.
func (p *Propagator) IsScheduled() bool { return p.scheduled }

// ReactsToFineEvents reports whether the filter implements FineFilter.
func (p *Propagator) ReactsToFineEvents() bool { return p.fine != nil }

// IsStateLess reports whether the propagator is still new.
func (p *Propagator) IsStateLess() bool { return p.state == StateNew }

// IsReifiedAndSilent reports whether the propagator waits for its boolean.
func (p *Propagator) IsReifiedAndSilent() bool { return p.state == StateReified }

// IsActive reports whether the propagator is scheduled on events.
func (p *Propagator) IsActive() bool { return p.state == StateActive }

// IsPassive reports whether the propagator is entailed.
func (p *Propagator) IsPassive() bool { return p.state == StatePassive }

// String returns the name and identifier, e.g. "sum#3".
func (p *Propagator) String() string { return fmt.Sprintf("%s#%d", p.name, p.id) }

func (p *Propagator) setEnabled(enabled bool)  { p.enabled = enabled }
func (p *Propagator) defineIn(c *Constraint)   { p.constraint = c }
func (p *Propagator) env() *memory.Environment { return p.model.env }

// IsCompletelyInstantiated reports whether every variable is instantiated.
func (p *Propagator) IsCompletelyInstantiated() bool {
	for _, v := range p.vars {
		if !v.IsInstantiated() {
			return false
		}
	}
	return true
}

// conditionsOn returns the events slot must be told about. It is unexported
// so that filters embedding *Propagator do not inherit a ConditionFilter.
func (p *Propagator) conditionsOn(slot int) EventMask {
	if p.conditions != nil {
		return p.conditions.PropagationConditions(slot)
	}
	return AllEvents
}

// Propagate runs the coarse filter.
func (p *Propagator) Propagate(evt PropagatorEvent) error { return p.filter.Propagate(evt) }

// propagateOn runs the fine filter for one slot.
func (p *Propagator) propagateOn(slot int, mask EventMask) error {
	if p.fine == nil {
		return newSolverError(ErrCodeFineUnsupported, "%s does not react to fine events", p)
	}
	return p.fine.PropagateOn(slot, mask)
}

// IsEntailed evaluates the filter's entailment over the current domains.
func (p *Propagator) IsEntailed() ESat { return p.filter.IsEntailed() }

type stateUndo struct {
	p     *Propagator
	state PropagatorState
}

func (u *stateUndo) Undo() { u.p.state = u.state }

func (p *Propagator) setState(s PropagatorState) {
	p.env().Save(&stateUndo{p: p, state: p.state})
	p.state = s
}

// SetActive moves a new propagator to the active state.
func (p *Propagator) SetActive() error {
	if p.state != StateNew {
		return newSolverError(ErrCodeStateConflict,
			"Try to activate a propagator already active, passive or reified: %s of %s", p, p.constraint)
	}
	p.setState(StateActive)
	return nil
}

// SetReifiedSilent marks a new propagator as guarded by b. It stays inert
// until SetReifiedTrue.
func (p *Propagator) SetReifiedSilent(b BoolVar) error {
	if p.state != StateNew {
		return newSolverError(ErrCodeStateConflict,
			"Reification process tries to set a propagator already active, passive or reified in silent mode: %s of %s", p, p.constraint)
	}
	p.reifVar = b
	p.setState(StateReified)
	return nil
}

// SetReifiedTrue activates a silent reified propagator.
func (p *Propagator) SetReifiedTrue() error {
	if p.state != StateReified {
		return newSolverError(ErrCodeStateConflict,
			"Reification process tries to force activation of a propagator already active or passive: %s of %s", p, p.constraint)
	}
	p.setState(StateActive)
	return nil
}

// SetPassive marks an active propagator as entailed. With swap-on-passivate
// the propagator also leaves the live lists of its uninstantiated variables.
func (p *Propagator) SetPassive() error {
	if p.state != StateActive {
		return newSolverError(ErrCodeStateConflict,
			"Try to passivate a propagator already passive, new or reified: %s of %s", p, p.constraint)
	}
	p.setState(StatePassive)
	p.model.engine.desactivatePropagator(p)
	if p.swapOnPassivate && p.linked {
		for i, v := range p.vars {
			if !v.IsInstantiated() {
				v.core().swapOnPassivate(p.linkIDs[i])
			}
		}
	}
	return nil
}

// ForcePropagate asks the engine for a delayed call to Propagate(evt), after
// the priority buckets are drained.
func (p *Propagator) ForcePropagate(evt PropagatorEvent) {
	p.model.engine.delayedPropagation(p, evt)
}

// ForcePropagationOnBacktrack schedules a full propagation of p for the next
// fixpoint computed after the current world is popped.
func (p *Propagator) ForcePropagationOnBacktrack() {
	p.model.engine.propagateOnBacktrack(p)
}

func (p *Propagator) linkVariables() {
	if p.linked {
		return
	}
	for i, v := range p.vars {
		p.linkIDs[i] = v.core().link(p, i)
	}
	p.linked = true
}

func (p *Propagator) unlinkVariables() {
	if !p.linked {
		return
	}
	for i, v := range p.vars {
		v.core().unlink(p.linkIDs[i])
		p.linkIDs[i] = -1
	}
	p.linked = false
}

// doScheduleEvent records a fine event on slot. Masks received for a slot
// still in the queue are merged.
func (p *Propagator) doScheduleEvent(slot int, mask EventMask) {
	if p.eventMasks[slot] == 0 {
		p.fineQueue.AddLast(slot)
	}
	p.eventMasks[slot] |= mask
}

// doSchedule enqueues p in the bucket of its priority and returns the bucket
// index, or -1 when p is already scheduled.
func (p *Propagator) doSchedule(buckets []*queue.Circular[*Propagator]) int {
	if p.scheduled {
		return -1
	}
	b := int(p.priority) - 1
	buckets[b].AddLast(p)
	p.scheduled = true
	return b
}

// doFinePropagation drains the fine event queue in arrival order.
func (p *Propagator) doFinePropagation() error {
	for !p.fineQueue.IsEmpty() && p.IsActive() {
		slot := p.fineQueue.PollFirst()
		mask := p.eventMasks[slot]
		p.eventMasks[slot] = 0
		if err := p.propagateOn(slot, mask); err != nil {
			return err
		}
	}
	return nil
}

// doFlush forgets pending fine events.
func (p *Propagator) doFlush() {
	if p.fineQueue == nil {
		return
	}
	for !p.fineQueue.IsEmpty() {
		p.eventMasks[p.fineQueue.PollFirst()] = 0
	}
}

func (p *Propagator) hasPendingEvents() bool {
	return p.fineQueue != nil && !p.fineQueue.IsEmpty()
}
