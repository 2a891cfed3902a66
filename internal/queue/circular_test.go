package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircularFIFOAcrossGrowth(t *testing.T) {
	q := NewCircular[int](2)
	q.AddLast(1)
	q.AddLast(2)
	assert.Equal(t, 1, q.PollFirst())
	q.AddLast(3)
	q.AddLast(4) // wraps, then grows
	q.AddLast(5)
	var got []int
	for !q.IsEmpty() {
		got = append(got, q.PollFirst())
	}
	assert.Equal(t, []int{2, 3, 4, 5}, got)
}

func TestCircularLIFO(t *testing.T) {
	q := NewCircular[string](1)
	q.AddLast("a")
	q.AddLast("b")
	assert.Equal(t, "b", q.PollLast())
	assert.Equal(t, "a", q.PeekFirst())
	assert.Equal(t, 1, q.Size())
}

func TestCircularClear(t *testing.T) {
	q := NewCircular[int](4)
	for i := 0; i < 3; i++ {
		q.AddLast(i)
	}
	q.Clear()
	assert.True(t, q.IsEmpty())
	assert.Panics(t, func() { q.PollFirst() })
	q.AddLast(9)
	assert.Equal(t, 9, q.PollLast())
}
