package solver

import "strings"

// EventMask is a set of integer variable events.
//
// A variable always reports every event kind that actually happened: a value
// removal carries Remove, a bound move also carries IncLow or DecUpp, and an
// instantiation also carries Instantiate. A propagator listening on Remove
// therefore hears about every modification.
type EventMask uint8

const (
	// Void is the empty mask.
	Void EventMask = 0
	// Instantiate is set when the domain becomes a singleton.
	Instantiate EventMask = 1
	// IncLow is set when the lower bound increases.
	IncLow EventMask = 2
	// DecUpp is set when the upper bound decreases.
	DecUpp EventMask = 4
	// Remove is set when at least one value is removed.
	Remove EventMask = 8

	// Bound matches any bound modification.
	Bound = IncLow | DecUpp
	// BoundAndInst matches bound modifications and instantiations.
	BoundAndInst = Bound | Instantiate
	// AllEvents matches every event.
	AllEvents = Instantiate | IncLow | DecUpp | Remove
)

// Has reports whether m shares at least one event with o.
func (m EventMask) Has(o EventMask) bool { return m&o != 0 }

// IsInstantiate reports whether m contains Instantiate.
func (m EventMask) IsInstantiate() bool { return m&Instantiate != 0 }

// IsBound reports whether m contains a bound event.
func (m EventMask) IsBound() bool { return m&Bound != 0 }

// IsRemove reports whether m contains Remove.
func (m EventMask) IsRemove() bool { return m&Remove != 0 }

// flipBounds swaps IncLow and DecUpp. Used by negation views.
func (m EventMask) flipBounds() EventMask {
	out := m &^ Bound
	if m&IncLow != 0 {
		out |= DecUpp
	}
	if m&DecUpp != 0 {
		out |= IncLow
	}
	return out
}

// String lists the events of the mask, e.g. "DECUPP|REMOVE".
func (m EventMask) String() string {
	if m == Void {
		return "VOID"
	}
	var parts []string
	for _, e := range []struct {
		bit  EventMask
		name string
	}{{Instantiate, "INSTANTIATE"}, {IncLow, "INCLOW"}, {DecUpp, "DECUPP"}, {Remove, "REMOVE"}} {
		if m&e.bit != 0 {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "|")
}

// PropagatorEvent tells a coarse propagator why it is called.
type PropagatorEvent uint8

const (
	// CustomPropagation is an event-driven call: some watched variable changed.
	CustomPropagation PropagatorEvent = 1
	// FullPropagation asks for filtering from scratch: initial propagation,
	// reification activation, or an explicit ForcePropagate.
	FullPropagation PropagatorEvent = 2
)

// String returns the event name.
func (e PropagatorEvent) String() string {
	if e == FullPropagation {
		return "FULL_PROPAGATION"
	}
	return "CUSTOM_PROPAGATION"
}
