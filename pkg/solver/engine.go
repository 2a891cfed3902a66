package solver

import (
	"math/bits"
	"sort"

	"github.com/gitrdm/gokanfd/internal/queue"
)

// Engine drives active propagators to a fixpoint.
//
// Propagators are kept in one FIFO bucket per Priority. notEmpty has bit b
// set iff bucket b holds a propagator, so the cheapest non-empty bucket is
// found with a single trailing-zeros count. Newly posted propagators wait in
// the awake queue until their first full propagation.
//
// Variable events reach the buckets according to the hybridization level:
//
//	0  propagators are scheduled as soon as a variable is modified
//	1  events are merged per variable and scheduled after each propagator run
//	2  events are merged per variable and scheduled once the buckets are empty
//
// All levels compute the same fixpoint.
type Engine struct {
	model    *Model
	buckets  []*queue.Circular[*Propagator]
	notEmpty uint8

	varQueue    *queue.Circular[Variable]
	awake       *queue.Circular[*Propagator]
	delayed     *queue.Circular[*Propagator]
	backtracked []*Propagator

	hybrid      int
	initialized bool
	lastProp    *Propagator
}

func newEngine(m *Model) *Engine {
	e := &Engine{
		model:    m,
		buckets:  make([]*queue.Circular[*Propagator], numPriorities),
		varQueue: queue.NewCircular[Variable](16),
		awake:    queue.NewCircular[*Propagator](16),
		delayed:  queue.NewCircular[*Propagator](4),
		hybrid:   m.settings.EngineHybridization,
	}
	for i := range e.buckets {
		e.buckets[i] = queue.NewCircular[*Propagator](16)
	}
	return e
}

// Hybridization returns the hybridization level (0, 1 or 2).
func (e *Engine) Hybridization() int { return e.hybrid }

// IsInitialized reports whether the posted propagators have been collected.
// Variable events are ignored before initialization: the first Propagate runs
// every propagator from scratch anyway.
func (e *Engine) IsInitialized() bool { return e.initialized }

// LastPropagator returns the propagator being executed, or the one that
// failed until the engine is flushed.
func (e *Engine) LastPropagator() *Propagator { return e.lastProp }

// Initialize queues the propagators of every posted constraint for a full
// propagation. It is a no-op once done.
func (e *Engine) Initialize() {
	if e.initialized {
		return
	}
	var props []*Propagator
	for _, c := range e.model.cstrs {
		for _, p := range c.props {
			if p.IsStateLess() || p.IsActive() {
				props = append(props, p)
			}
		}
	}
	if e.model.settings.SortPropagatorActivation {
		sort.SliceStable(props, func(i, j int) bool { return props[i].priority < props[j].priority })
	}
	for _, p := range props {
		e.addAwake(p)
	}
	e.initialized = true
}

// Propagate runs propagators until no event is pending. It returns the first
// error raised by a propagator; the caller must then Flush the engine before
// popping the current world.
func (e *Engine) Propagate() error {
	e.Initialize()
	e.rearm()
	for {
		if err := e.activatePropagators(); err != nil {
			return err
		}
		for e.notEmpty != 0 {
			b := bits.TrailingZeros8(e.notEmpty)
			q := e.buckets[b]
			p := q.PollFirst()
			if q.IsEmpty() {
				e.notEmpty &^= 1 << uint(b)
			}
			p.scheduled = false
			if err := e.execute(p); err != nil {
				return err
			}
		}
		switch {
		case !e.varQueue.IsEmpty():
			e.scheduleVariables()
		case !e.delayed.IsEmpty():
			if err := e.runDelayed(); err != nil {
				return err
			}
		case !e.awake.IsEmpty():
		default:
			e.lastProp = nil
			return nil
		}
	}
}

func (e *Engine) execute(p *Propagator) error {
	if !p.IsActive() || !p.enabled || !p.linked {
		p.doFlush()
		return nil
	}
	e.lastProp = p
	var err error
	if p.fine != nil {
		err = p.doFinePropagation()
	} else {
		err = p.Propagate(CustomPropagation)
	}
	if err != nil {
		return e.onFailure(p, err)
	}
	e.onPropagatorExecution(p)
	return nil
}

// activatePropagators runs the first full propagation of awaiting
// propagators. Propagators guarded by a boolean are put in silent mode.
func (e *Engine) activatePropagators() error {
	for !e.awake.IsEmpty() {
		p := e.awake.PollFirst()
		p.awaiting = false
		if !p.linked || !p.enabled {
			continue
		}
		switch {
		case p.IsStateLess() && p.reifVar != nil:
			if err := p.SetReifiedSilent(p.reifVar); err != nil {
				return err
			}
			continue
		case p.IsStateLess():
			if err := p.SetActive(); err != nil {
				return err
			}
		case !p.IsActive():
			continue
		}
		e.lastProp = p
		if err := p.Propagate(FullPropagation); err != nil {
			return e.onFailure(p, err)
		}
		e.onPropagatorExecution(p)
	}
	return nil
}

func (e *Engine) runDelayed() error {
	p := e.delayed.PollFirst()
	p.delayed = false
	if !p.IsActive() || !p.enabled || !p.linked {
		return nil
	}
	e.lastProp = p
	if err := p.Propagate(p.delayedEvt); err != nil {
		return e.onFailure(p, err)
	}
	e.onPropagatorExecution(p)
	return nil
}

func (e *Engine) onFailure(p *Propagator, err error) error {
	if IsContradiction(err) {
		p.fails++
	}
	return err
}

// onPropagatorExecution accounts for a propagator run that happened outside
// the bucket loop, such as a reification branch being activated.
func (e *Engine) onPropagatorExecution(p *Propagator) {
	e.model.monitor.RecordPropagation()
	if e.hybrid == 1 {
		e.scheduleVariables()
	}
}

// onVariableUpdate is called by variables on every modification.
func (e *Engine) onVariableUpdate(v Variable, mask EventMask, cause Cause) {
	if !e.initialized {
		return
	}
	origin := originOf(cause)
	if e.hybrid == 0 {
		e.scheduleVariable(v, mask, origin)
		return
	}
	c := v.core()
	if c.evtMask == 0 {
		c.evtOrigin = origin
		e.varQueue.AddLast(v)
	} else if c.evtOrigin != origin {
		c.evtOrigin = nil
	}
	c.evtMask |= mask
}

func (e *Engine) scheduleVariables() {
	for !e.varQueue.IsEmpty() {
		v := e.varQueue.PollFirst()
		c := v.core()
		mask, origin := c.evtMask, c.evtOrigin
		c.evtMask, c.evtOrigin = Void, nil
		e.scheduleVariable(v, mask, origin)
	}
}

// scheduleVariable schedules the propagators of v interested in mask, except
// origin.
func (e *Engine) scheduleVariable(v Variable, mask EventMask, origin *Propagator) {
	v.core().eachLink(func(l propLink) {
		p := l.prop
		if p != origin && p.IsActive() && p.enabled && p.conditionsOn(l.slot)&mask != 0 {
			e.schedule(p, l.slot, mask)
		}
	})
}

func (e *Engine) schedule(p *Propagator, slot int, mask EventMask) {
	if p.fine != nil {
		p.doScheduleEvent(slot, mask)
	}
	if b := p.doSchedule(e.buckets); b >= 0 {
		e.notEmpty |= 1 << uint(b)
		e.model.monitor.RecordScheduling()
	}
}

// desactivatePropagator drops the pending fine events of a propagator that
// became passive. It stays in its bucket and is skipped when polled.
func (e *Engine) desactivatePropagator(p *Propagator) {
	p.doFlush()
}

func (e *Engine) delayedPropagation(p *Propagator, evt PropagatorEvent) {
	if p.delayed {
		if evt == FullPropagation {
			p.delayedEvt = evt
		}
		return
	}
	p.delayed = true
	p.delayedEvt = evt
	e.delayed.AddLast(p)
}

type rearmOnBacktrack struct {
	e *Engine
	p *Propagator
}

func (r *rearmOnBacktrack) Undo() { r.e.backtracked = append(r.e.backtracked, r.p) }

func (e *Engine) propagateOnBacktrack(p *Propagator) {
	e.model.env.Save(&rearmOnBacktrack{e: e, p: p})
}

func (e *Engine) rearm() {
	for _, p := range e.backtracked {
		if p.IsActive() {
			e.delayedPropagation(p, FullPropagation)
		}
	}
	e.backtracked = e.backtracked[:0]
}

func (e *Engine) addAwake(p *Propagator) {
	if !p.awaiting {
		p.awaiting = true
		e.awake.AddLast(p)
	}
}

type readdOnBacktrack struct {
	e     *Engine
	props []*Propagator
}

func (r *readdOnBacktrack) Undo() {
	for _, p := range r.props {
		if p.linked && p.IsStateLess() {
			r.e.addAwake(p)
		}
	}
}

// dynamicAddition queues propagators posted after initialization. When the
// world they were activated in is popped they are queued again.
func (e *Engine) dynamicAddition(props []*Propagator) {
	if !e.initialized {
		return
	}
	for _, p := range props {
		e.addAwake(p)
	}
	e.model.env.Save(&readdOnBacktrack{e: e, props: props})
}

// dynamicDeletion forgets the pending work of unposted propagators.
func (e *Engine) dynamicDeletion(props []*Propagator) {
	for _, p := range props {
		p.doFlush()
	}
}

// Flush discards every pending event and scheduled propagator, including the
// fine events the failing propagator had not drained yet. The awake queue is
// kept: its propagators have not run yet.
func (e *Engine) Flush() {
	if e.lastProp != nil {
		e.lastProp.doFlush()
	}
	for b, q := range e.buckets {
		for !q.IsEmpty() {
			p := q.PollFirst()
			p.scheduled = false
			p.doFlush()
		}
		e.notEmpty &^= 1 << uint(b)
	}
	for !e.varQueue.IsEmpty() {
		c := e.varQueue.PollFirst().core()
		c.evtMask, c.evtOrigin = Void, nil
	}
	for !e.delayed.IsEmpty() {
		e.delayed.PollFirst().delayed = false
	}
	e.lastProp = nil
}

// Reset flushes the engine and forgets its initialization, so the next
// Propagate runs every posted propagator from scratch.
func (e *Engine) Reset() {
	e.Flush()
	for !e.awake.IsEmpty() {
		e.awake.PollFirst().awaiting = false
	}
	e.backtracked = e.backtracked[:0]
	e.initialized = false
}

// IsEmpty reports whether nothing is pending.
func (e *Engine) IsEmpty() bool {
	return e.notEmpty == 0 && e.varQueue.IsEmpty() && e.delayed.IsEmpty() && e.awake.IsEmpty()
}
