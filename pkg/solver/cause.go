package solver

// Cause identifies who modifies a variable. The engine never notifies a
// propagator of its own modifications.
type Cause interface {
	Origin() *Propagator
}

type nullCause struct{}

func (nullCause) Origin() *Propagator { return nil }

// Decision is the cause of search decisions and refutations.
var Decision Cause = nullCause{}

// NullCause is the cause of modifications made outside propagation.
var NullCause Cause = nullCause{}

func originOf(c Cause) *Propagator {
	if c == nil {
		return nil
	}
	return c.Origin()
}
