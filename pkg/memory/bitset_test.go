package memory

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func members(b *BitSet) []int {
	var out []int
	for i := b.NextSetBit(0); i >= 0; i = b.NextSetBit(i + 1) {
		out = append(out, i)
	}
	return out
}

func TestBitSetNavigation(t *testing.T) {
	env := NewEnvironment()
	b := NewBitSet(env, 130)
	for _, i := range []int{0, 5, 63, 64, 129} {
		b.Set(i)
	}
	assert.Equal(t, 5, b.Cardinality())
	assert.Equal(t, 5, b.NextSetBit(1))
	assert.Equal(t, 63, b.NextSetBit(6))
	assert.Equal(t, 129, b.NextSetBit(65))
	assert.Equal(t, -1, b.NextSetBit(130))
	assert.Equal(t, 64, b.PrevSetBit(128))
	assert.Equal(t, 5, b.PrevSetBit(62))
	assert.Equal(t, -1, b.PrevSetBit(-1))
	assert.False(t, b.Get(200))
}

func TestBitSetClearRangeAcrossWords(t *testing.T) {
	env := NewEnvironment()
	b := NewBitSet(env, 200)
	b.SetRange(0, 200)
	b.ClearRange(10, 190)
	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 190, 191, 192, 193, 194, 195, 196, 197, 198, 199}
	if diff := cmp.Diff(want, members(b)); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestBitSetUndo(t *testing.T) {
	env := NewEnvironment()
	b := NewBitSet(env, 100)
	b.SetRange(0, 100)

	env.WorldPush()
	b.ClearRange(0, 50)
	b.Clear(99)
	env.WorldPush()
	b.Clear(60)
	assert.Equal(t, 48, b.Cardinality())

	env.WorldPop()
	assert.Equal(t, 49, b.Cardinality())
	assert.True(t, b.Get(60))

	env.WorldPop()
	assert.Equal(t, 100, b.Cardinality())
}

func TestBitSetCreatedInsideAWorld(t *testing.T) {
	env := NewEnvironment()
	env.WorldPush()
	b := NewBitSet(env, 10)
	b.SetRange(0, 10)
	env.WorldPop()

	env.WorldPush()
	b.Clear(3)
	env.WorldPop()
	assert.True(t, b.Get(3))
	assert.Equal(t, 10, b.Cardinality())
}
