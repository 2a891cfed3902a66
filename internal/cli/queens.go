package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanfd/pkg/solver"
)

type queensOptions struct {
	n         int
	all       bool
	portfolio int
}

func (c *CLI) newQueensCmd() *cobra.Command {
	var opts queensOptions
	cmd := &cobra.Command{
		Use:   "queens",
		Short: "Solve the N-queens puzzle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.n <= 0 {
				return fmt.Errorf("--size must be positive, got %d", opts.n)
			}
			if opts.portfolio > 0 {
				return c.queensPortfolio(cmd, opts)
			}
			return c.queens(cmd, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.n, "size", "n", 8, "board size")
	cmd.Flags().BoolVar(&opts.all, "all", false, "count every solution")
	cmd.Flags().IntVar(&opts.portfolio, "portfolio", 0, "race this many strategies for a first solution")
	return cmd
}

// queensModel posts one variable per row holding the column of its queen.
func (c *CLI) queensModel(n int) (*solver.Model, []solver.IntVar, error) {
	m, err := c.newModel(fmt.Sprintf("%d-queens", n))
	if err != nil {
		return nil, nil, err
	}
	q := m.IntVarArray("q", n, 0, n-1)
	if err := m.AllDifferent(q...).Post(); err != nil {
		return nil, nil, err
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if err := m.Post(
				m.ArithmXYC(q[i], "!=", q[j], j-i),
				m.ArithmXYC(q[i], "!=", q[j], i-j),
			); err != nil {
				return nil, nil, err
			}
		}
	}
	return m, q, nil
}

func (c *CLI) queens(cmd *cobra.Command, opts queensOptions) error {
	m, q, err := c.queensModel(opts.n)
	if err != nil {
		return err
	}
	limit := 1
	if opts.all {
		limit = 0
	}
	p := newProgress(c.logger.WithField("model", m.Name()))
	sols, err := m.Solver().Solve(cmd.Context(), limit)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("search finished with %d solution(s)", len(sols)))

	out := cmd.OutOrStdout()
	if len(sols) == 0 {
		fmt.Fprintf(out, "no solution for %d queens\n", opts.n)
		return nil
	}
	printBoard(out, sols[0], q)
	if opts.all {
		fmt.Fprintf(out, "%d solutions\n", len(sols))
	}
	fmt.Fprintln(out, m.Monitor().Stats())
	return nil
}

var portfolioStrategies = []solver.Strategy{
	solver.DefaultStrategy(),
	{Variable: solver.HeuristicDomDeg, Value: solver.ValueMid},
	{Variable: solver.HeuristicLex, Value: solver.ValueMax},
	{Variable: solver.HeuristicDeg, Value: solver.ValueMin},
}

func (c *CLI) queensPortfolio(cmd *cobra.Command, opts queensOptions) error {
	boards := make([][]solver.IntVar, len(portfolioStrategies))
	builders := make([]solver.ModelBuilder, len(portfolioStrategies))
	for i, st := range portfolioStrategies {
		builders[i] = func() (*solver.Model, error) {
			m, q, err := c.queensModel(opts.n)
			if err != nil {
				return nil, err
			}
			boards[i] = q
			m.Solver().SetStrategy(st)
			return m, nil
		}
	}
	p := newProgress(c.logger.WithFields(logrus.Fields{"workers": opts.portfolio}))
	res, err := solver.SolvePortfolio(cmd.Context(), opts.portfolio, builders...)
	if err != nil {
		return err
	}
	p.done("portfolio finished")

	out := cmd.OutOrStdout()
	if res == nil {
		fmt.Fprintf(out, "no solution for %d queens\n", opts.n)
		return nil
	}
	fmt.Fprintf(out, "strategy %d won\n", res.Winner)
	printBoard(out, res.Solution, boards[res.Winner])
	fmt.Fprintln(out, res.Stats)
	return nil
}

func printBoard(out io.Writer, sol solver.Solution, q []solver.IntVar) {
	n := len(q)
	for row := 0; row < n; row++ {
		var b strings.Builder
		for col := 0; col < n; col++ {
			switch {
			case sol.Value(q[row]) == col:
				b.WriteString("Q ")
			case (row+col)%2 == 0:
				b.WriteString(". ")
			default:
				b.WriteString(": ")
			}
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
}
