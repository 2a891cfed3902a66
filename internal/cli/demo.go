package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanfd/pkg/solver"
)

func (c *CLI) newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through propagation, backtracking and reification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := c.sumDemo(out); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return c.reifyDemo(out)
		},
	}
}

// sumDemo propagates X + Y = 5, backtracks, then shows a contradiction.
func (c *CLI) sumDemo(out io.Writer) error {
	m, err := c.newModel("sum")
	if err != nil {
		return err
	}
	x, y := m.IntVar("X", 0, 5), m.IntVar("Y", 0, 5)
	if err := m.Sum([]solver.IntVar{x, y}, "=", 5).Post(); err != nil {
		return err
	}
	s := m.Solver()
	if err := s.Propagate(); err != nil {
		return err
	}
	fmt.Fprintln(out, "X + Y = 5")
	fmt.Fprintf(out, "  root:         %s, %s\n", x, y)

	m.Env().WorldPush()
	if _, err := x.InstantiateTo(3, solver.NullCause); err != nil {
		return err
	}
	if err := s.Propagate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "  after X = 3:  %s, %s\n", x, y)

	m.Env().WorldPop()
	fmt.Fprintf(out, "  backtrack:    %s, %s\n", x, y)

	_, err = x.InstantiateTo(7, solver.NullCause)
	if !solver.IsContradiction(err) {
		return fmt.Errorf("expected a contradiction, got %v", err)
	}
	fmt.Fprintf(out, "  X = 7:        %v\n", err)
	return nil
}

// reifyDemo binds b to x < 4 and shows both branches.
func (c *CLI) reifyDemo(out io.Writer) error {
	m, err := c.newModel("reify")
	if err != nil {
		return err
	}
	x := m.IntVar("x", 0, 9)
	b := m.BoolVar("b")
	if err := m.Arithm(x, "<", 4).ReifyWith(b); err != nil {
		return err
	}
	s := m.Solver()
	if err := s.Propagate(); err != nil {
		return err
	}
	fmt.Fprintln(out, "b <=> x < 4")
	for _, value := range []int{1, 0} {
		m.Env().WorldPush()
		if _, err := b.InstantiateTo(value, solver.NullCause); err != nil {
			return err
		}
		if err := s.Propagate(); err != nil {
			return err
		}
		fmt.Fprintf(out, "  b = %d:  %s\n", value, x)
		m.Env().WorldPop()
	}

	m.Env().WorldPush()
	if _, err := x.UpdateLowerBound(6, solver.NullCause); err != nil {
		return err
	}
	if err := s.Propagate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "  x >= 6: %s\n", b)
	m.Env().WorldPop()
	return nil
}
