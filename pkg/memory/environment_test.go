package memory

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredUndoToParent(t *testing.T) {
	env := NewEnvironment()
	c := NewStoredInt(env, 1)

	env.WorldPush()
	c.Set(2)
	c.Set(3)
	assert.Equal(t, 1, env.TrailSize(), "only the first write in a world is trailed")

	env.WorldPush()
	c.Add(10)
	assert.Equal(t, 13, c.Get())

	env.WorldPop()
	assert.Equal(t, 3, c.Get())
	env.WorldPop()
	assert.Equal(t, 1, c.Get())
	assert.Equal(t, 0, env.TrailSize())
}

func TestStoredWritesAtRootArePermanent(t *testing.T) {
	env := NewEnvironment()
	c := NewStored(env, "a")
	c.Set("b")
	assert.Equal(t, 0, env.TrailSize())

	env.WorldPush()
	c.Set("c")
	env.WorldPop()
	assert.Equal(t, "b", c.Get())
}

func TestStoredEqualWriteIsNotTrailed(t *testing.T) {
	env := NewEnvironment()
	c := NewStored(env, true)
	env.WorldPush()
	c.Set(true)
	assert.Equal(t, 0, env.TrailSize())
}

func TestStoredRewriteAfterRepush(t *testing.T) {
	env := NewEnvironment()
	c := NewStoredInt(env, 0)
	env.WorldPush()
	c.Set(1)
	env.WorldPop()
	env.WorldPush()
	c.Set(2)
	env.WorldPop()
	assert.Equal(t, 0, c.Get())
}

func TestStoredCreatedInsideAWorld(t *testing.T) {
	env := NewEnvironment()
	env.WorldPush()
	env.WorldPush()
	c := NewStoredInt(env, 5)
	env.WorldPop()

	// Same depth as the popped world, but a different world.
	env.WorldPush()
	c.Set(7)
	env.WorldPop()
	assert.Equal(t, 5, c.Get())

	// Shallower than the creation world.
	c.Set(8)
	env.WorldPop()
	assert.Equal(t, 5, c.Get())
	assert.Equal(t, 0, env.TrailSize())
}

func TestTimestampIsNotReused(t *testing.T) {
	env := NewEnvironment()
	assert.Equal(t, 0, env.Timestamp())
	env.WorldPush()
	first := env.Timestamp()
	env.WorldPop()
	assert.Equal(t, 0, env.Timestamp())
	env.WorldPush()
	assert.NotEqual(t, first, env.Timestamp())
	assert.Equal(t, 1, env.WorldIndex())
}

func TestWorldPopUntil(t *testing.T) {
	env := NewEnvironment()
	c := NewStoredInt(env, 0)
	for i := 1; i <= 5; i++ {
		env.WorldPush()
		c.Set(i)
	}
	env.WorldPopUntil(2)
	assert.Equal(t, 2, env.WorldIndex())
	assert.Equal(t, 2, c.Get())
	assert.Panics(t, func() { env.WorldPopUntil(3) })
	env.WorldPopUntil(0)
	assert.Equal(t, 0, c.Get())
	assert.Panics(t, env.WorldPop)
}

func TestOperationFuncIsReplayedInReverseOrder(t *testing.T) {
	env := NewEnvironment()
	var order []int
	env.WorldPush()
	for i := 0; i < 3; i++ {
		env.Save(OperationFunc(func() { order = append(order, i) }))
	}
	env.WorldPop()
	assert.Equal(t, []int{2, 1, 0}, order)
}

// Interleave random writes with pushes; every pop must restore the value
// observed right before the matching push.
func TestUndoCorrectnessRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	env := NewEnvironment()
	cells := make([]*StoredInt, 8)
	for i := range cells {
		cells[i] = NewStoredInt(env, 0)
	}
	snapshot := func() []int {
		out := make([]int, len(cells))
		for i, c := range cells {
			out[i] = c.Get()
		}
		return out
	}

	var saved [][]int
	for depth := 0; depth < 40; depth++ {
		saved = append(saved, snapshot())
		env.WorldPush()
		for k := 0; k < rng.Intn(12); k++ {
			cells[rng.Intn(len(cells))].Set(rng.Intn(100))
		}
	}
	for depth := len(saved) - 1; depth >= 0; depth-- {
		env.WorldPop()
		require.Equal(t, saved[depth], snapshot(), "depth %d", depth)
	}
}
