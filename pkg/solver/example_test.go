package solver_test

import (
	"context"
	"fmt"

	"github.com/gitrdm/gokanfd/pkg/solver"
)

// ExampleModel_Sum propagates X + Y = 5 after fixing X.
func ExampleModel_Sum() {
	m := solver.NewModel("sum")
	x := m.IntVar("X", 0, 5)
	y := m.IntVar("Y", 0, 5)
	if err := m.Sum([]solver.IntVar{x, y}, "=", 5).Post(); err != nil {
		panic(err)
	}

	m.Env().WorldPush()
	if _, err := x.InstantiateTo(3, solver.NullCause); err != nil {
		panic(err)
	}
	if err := m.Solver().Propagate(); err != nil {
		panic(err)
	}
	fmt.Println(y)

	m.Env().WorldPop()
	fmt.Println(y)

	// Output:
	// Y = 2
	// Y = [0,5]
}

// ExampleSolver_Solve enumerates the solutions of the 4-queens puzzle.
func ExampleSolver_Solve() {
	m := solver.NewModel("queens")
	q := m.IntVarArray("q", 4, 0, 3)
	if err := m.AllDifferent(q...).Post(); err != nil {
		panic(err)
	}
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if err := m.Post(
				m.ArithmXYC(q[i], "!=", q[j], j-i),
				m.ArithmXYC(q[i], "!=", q[j], i-j),
			); err != nil {
				panic(err)
			}
		}
	}

	sols, err := m.Solver().Solve(context.Background(), 0)
	if err != nil {
		panic(err)
	}
	for _, sol := range sols {
		fmt.Println(sol)
	}

	// Output:
	// [1 3 0 2]
	// [2 0 3 1]
}

// ExampleConstraint_ReifyWith counts how many of three comparisons hold.
func ExampleConstraint_ReifyWith() {
	m := solver.NewModel("count")
	x := m.IntVar("x", 0, 9)
	b := m.BoolVarArray("b", 3)
	cs := []*solver.Constraint{
		m.Arithm(x, ">", 2),
		m.Arithm(x, "<", 5),
		m.Arithm(x, "!=", 4),
	}
	for i, c := range cs {
		if err := c.ReifyWith(b[i]); err != nil {
			panic(err)
		}
	}
	if err := m.Sum([]solver.IntVar{b[0], b[1], b[2]}, "=", 3).Post(); err != nil {
		panic(err)
	}
	m.Solver().SetStrategy(solver.Strategy{Vars: []solver.IntVar{x}})

	sols, err := m.Solver().Solve(context.Background(), 0)
	if err != nil {
		panic(err)
	}
	for _, sol := range sols {
		fmt.Println("x =", sol.Value(x))
	}

	// Output:
	// x = 3
}
