// Package solver provides the propagation core of a finite-domain constraint
// solver.
//
// # Architecture Overview
//
// All mutable solver state lives in reversible structures owned by the
// model's memory.Environment. Search opens a world before each decision and
// pops it to backtrack, so no domain or bookkeeping is ever copied:
//
//	Model
//	  Environment  (trail + world index)
//	  Variables    (reversible bitset domains, links to propagators)
//	  Constraints  (bundles of propagators, Free/Posted/Reified status)
//	  Engine       (priority buckets driving propagators to a fixpoint)
//	  Solver       (depth-first search, the backtracking boundary)
//
// # How Propagation Works
//
//  1. A decision or a propagator modifies a variable with an explicit Cause.
//  2. The variable reports the event mask to the Engine.
//  3. The Engine schedules every active propagator linked to the variable
//     whose propagation conditions intersect the mask, except the cause
//     itself.
//  4. Buckets are drained in increasing Priority order; fine-grained
//     propagators receive one PropagateOn call per modified slot, the others
//     a single coarse Propagate call.
//  5. The loop ends at a fixpoint or when a propagator returns a
//     *ContradictionError, in which case the Solver flushes the Engine and
//     pops the current world.
//
// # Reification
//
// Constraint.ReifyWith binds a constraint to a BoolVar. The resulting
// ReificationConstraint keeps the guarded propagators silent until the
// boolean is fixed, then activates the branch matching its value.
// ImpliedConstraint is the one-directional version.
//
// Models are not safe for concurrent use. Independent models may be solved in
// parallel, see SolvePortfolio.
package solver
