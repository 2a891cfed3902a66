// Package memory provides the backtrackable memory model used by the solver.
//
// All reversible state is owned by an Environment. The environment keeps a
// trail of undo operations and a world index (the depth of the current search
// node). Opening a world with WorldPush records a mark on the trail; closing it
// with WorldPop replays the operations recorded since that mark in reverse
// order, restoring every reversible structure to the value it had before the
// push.
//
// Reversible structures (Stored, StoredInt, BitSet, IndexedBipartiteSet) hold
// a reference to their environment and record at most one undo operation per
// world, so the cost of backtracking is proportional to the number of distinct
// cells written rather than the number of writes.
package memory

import "fmt"

// Operation is an undo action recorded on the trail.
type Operation interface {
	Undo()
}

// OperationFunc adapts a plain function to the Operation interface.
type OperationFunc func()

// Undo calls f.
func (f OperationFunc) Undo() { f() }

// Environment owns the trail and the current world index.
// It is not safe for concurrent use; a solver and its model run on one goroutine.
type Environment struct {
	world int
	trail []Operation
	marks []int
	peak  int

	// stamp identifies the current world. Every push gets a fresh stamp, so
	// a world reopened at the same depth is told apart from the one popped.
	stamp     int
	lastStamp int
	stamps    []int
}

// NewEnvironment creates an environment positioned at world 0.
// Writes performed at world 0 are permanent: there is no parent to restore.
func NewEnvironment() *Environment {
	return &Environment{
		trail:  make([]Operation, 0, 64),
		marks:  make([]int, 0, 16),
		stamps: make([]int, 0, 16),
	}
}

// WorldIndex returns the current world (search depth).
func (e *Environment) WorldIndex() int { return e.world }

// Timestamp returns the identifier of the current world. Unlike WorldIndex it
// is never reused: reversible structures compare it with the stamp of their
// last trailed write.
func (e *Environment) Timestamp() int { return e.stamp }

// WorldPush opens a new world.
func (e *Environment) WorldPush() {
	e.marks = append(e.marks, len(e.trail))
	e.stamps = append(e.stamps, e.stamp)
	e.lastStamp++
	e.stamp = e.lastStamp
	e.world++
}

// WorldPop undoes every operation recorded in the current world and returns
// to the parent world.
func (e *Environment) WorldPop() {
	if e.world == 0 {
		panic("memory: WorldPop called at the root world")
	}
	last := len(e.marks) - 1
	mark := e.marks[last]
	e.marks = e.marks[:last]
	for i := len(e.trail) - 1; i >= mark; i-- {
		op := e.trail[i]
		e.trail[i] = nil
		op.Undo()
	}
	e.trail = e.trail[:mark]
	e.stamp = e.stamps[last]
	e.stamps = e.stamps[:last]
	e.world--
}

// WorldPopUntil pops worlds until the world index equals w.
func (e *Environment) WorldPopUntil(w int) {
	if w < 0 || w > e.world {
		panic(fmt.Sprintf("memory: cannot pop to world %d from world %d", w, e.world))
	}
	for e.world > w {
		e.WorldPop()
	}
}

// Save records op on the trail of the current world. Nothing is recorded at
// world 0.
func (e *Environment) Save(op Operation) {
	if e.world == 0 {
		return
	}
	e.trail = append(e.trail, op)
	if len(e.trail) > e.peak {
		e.peak = len(e.trail)
	}
}

// TrailSize returns the number of pending undo operations.
func (e *Environment) TrailSize() int { return len(e.trail) }

// PeakTrailSize returns the largest trail size observed.
func (e *Environment) PeakTrailSize() int { return e.peak }
