// Package queue provides the ring-buffer queues used by the propagation
// engine and by propagators that consume fine-grained events.
package queue

// Circular is a growable ring buffer usable as a FIFO (AddLast/PollFirst)
// or a LIFO (AddLast/PollLast).
type Circular[T any] struct {
	elements []T
	head     int
	size     int
}

// NewCircular creates a queue with the given initial capacity.
func NewCircular[T any](capacity int) *Circular[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Circular[T]{elements: make([]T, capacity)}
}

// AddLast appends e to the tail.
func (q *Circular[T]) AddLast(e T) {
	if q.size == len(q.elements) {
		q.grow()
	}
	q.elements[(q.head+q.size)%len(q.elements)] = e
	q.size++
}

// PollFirst removes and returns the head. It panics on an empty queue.
func (q *Circular[T]) PollFirst() T {
	if q.size == 0 {
		panic("queue: PollFirst on empty queue")
	}
	var zero T
	e := q.elements[q.head]
	q.elements[q.head] = zero
	q.head = (q.head + 1) % len(q.elements)
	q.size--
	return e
}

// PollLast removes and returns the tail. It panics on an empty queue.
func (q *Circular[T]) PollLast() T {
	if q.size == 0 {
		panic("queue: PollLast on empty queue")
	}
	var zero T
	i := (q.head + q.size - 1) % len(q.elements)
	e := q.elements[i]
	q.elements[i] = zero
	q.size--
	return e
}

// PeekFirst returns the head without removing it.
func (q *Circular[T]) PeekFirst() T {
	if q.size == 0 {
		panic("queue: PeekFirst on empty queue")
	}
	return q.elements[q.head]
}

// Size returns the number of queued elements.
func (q *Circular[T]) Size() int { return q.size }

// IsEmpty reports whether the queue holds no element.
func (q *Circular[T]) IsEmpty() bool { return q.size == 0 }

// Clear removes every element.
func (q *Circular[T]) Clear() {
	var zero T
	for i := 0; i < q.size; i++ {
		q.elements[(q.head+i)%len(q.elements)] = zero
	}
	q.head, q.size = 0, 0
}

func (q *Circular[T]) grow() {
	n := len(q.elements) * 2
	elements := make([]T, n)
	for i := 0; i < q.size; i++ {
		elements[i] = q.elements[(q.head+i)%len(q.elements)]
	}
	q.elements = elements
	q.head = 0
}
