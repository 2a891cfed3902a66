package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in       string
		op       Operator
		flip     Operator
		opposite Operator
	}{
		{"=", EQ, EQ, NQ},
		{"!=", NQ, NQ, EQ},
		{"<=", LE, GE, GT},
		{"<", LT, GT, GE},
		{">=", GE, LE, LT},
		{">", GT, LT, LE},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			op, err := ParseOperator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.op, op)
			assert.True(t, op.IsComparison())
			assert.Equal(t, tt.flip, op.Flip())
			assert.Equal(t, tt.opposite, op.Opposite())
			assert.Equal(t, tt.in, op.String())
			for a := -1; a <= 1; a++ {
				assert.NotEqual(t, op.Eval(a, 0), op.Opposite().Eval(a, 0))
				assert.Equal(t, op.Eval(a, 0), op.Flip().Eval(0, a))
			}
		})
	}

	_, err := ParseOperator("~")
	assert.Equal(t, ErrCodeUnknownOperator, CodeOf(err))
	m := NewModel("m")
	assert.Panics(t, func() { m.Arithm(m.IntVar("x", 0, 1), "+", 1) })
}

func TestEventMask(t *testing.T) {
	assert.True(t, BoundAndInst.IsInstantiate())
	assert.True(t, BoundAndInst.IsBound())
	assert.False(t, BoundAndInst.IsRemove())
	assert.True(t, AllEvents.Has(Remove))
	assert.False(t, Void.Has(AllEvents))
	assert.Equal(t, DecUpp|Remove, (IncLow | Remove).flipBounds())
	assert.Equal(t, Bound, Bound.flipBounds())
	assert.Equal(t, Instantiate, Instantiate.flipBounds())
}

func TestPriorityForArity(t *testing.T) {
	assert.Equal(t, Unary, PriorityForArity(1))
	assert.Equal(t, Binary, PriorityForArity(2))
	assert.Equal(t, Ternary, PriorityForArity(3))
	assert.Equal(t, Linear, PriorityForArity(12))
	assert.Equal(t, "VERY_SLOW", VerySlow.String())
}

func TestESat(t *testing.T) {
	assert.Equal(t, True, EvalESat(true))
	assert.Equal(t, False, EvalESat(false))
	assert.Equal(t, False, True.Not())
	assert.Equal(t, True, False.Not())
	assert.Equal(t, Undefined, Undefined.Not())
}
