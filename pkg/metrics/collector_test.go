package metrics

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gokanfd/pkg/solver"
)

func solvedModel(t *testing.T) *solver.Model {
	t.Helper()
	m := solver.NewModel("pairs")
	x, y := m.IntVar("x", 0, 2), m.IntVar("y", 0, 2)
	require.NoError(t, m.ArithmXY(x, "<", y).Post())
	sols, err := m.Solver().Solve(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sols, 3)
	return m
}

func TestCollectorExposesOneSamplePerStatistic(t *testing.T) {
	c := NewCollector()
	assert.Equal(t, 0, testutil.CollectAndCount(c))

	m := solvedModel(t)
	c.Add(m)
	c.Add(m)
	assert.Equal(t, 10, testutil.CollectAndCount(c))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "gokanfd_solver_solutions_total"))

	c.Add(solvedModel(t))
	assert.Equal(t, 20, testutil.CollectAndCount(c))

	c.Remove(m)
	assert.Equal(t, 10, testutil.CollectAndCount(c))
}

func TestCollectorValues(t *testing.T) {
	c := NewCollector()
	m := solvedModel(t)
	c.Add(m)

	expected := fmt.Sprintf(`
# HELP gokanfd_solver_solutions_total Solutions found.
# TYPE gokanfd_solver_solutions_total counter
gokanfd_solver_solutions_total{model="pairs",model_id="%[1]s"} 3
# HELP gokanfd_solver_constraints_total Constraints posted.
# TYPE gokanfd_solver_constraints_total counter
gokanfd_solver_constraints_total{model="pairs",model_id="%[1]s"} 1
`, m.ID())
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"gokanfd_solver_solutions_total", "gokanfd_solver_constraints_total")
	assert.NoError(t, err)
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := NewCollector()
	c.Add(solvedModel(t))
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 10)
}
