package memory

// Stored is a reversible cell. Reading returns the value valid at the current
// world; popping a world restores the value that was current in its parent.
type Stored[T comparable] struct {
	env   *Environment
	value T
	stamp int
}

// NewStored creates a reversible cell holding v.
func NewStored[T comparable](env *Environment, v T) *Stored[T] {
	return &Stored[T]{env: env, value: v, stamp: env.Timestamp()}
}

// Get returns the current value.
func (s *Stored[T]) Get() T { return s.value }

// Set writes v. The previous value is trailed once per world, including the
// first write after the world the cell was created in has been popped.
func (s *Stored[T]) Set(v T) {
	if v == s.value {
		return
	}
	if w := s.env.stamp; s.stamp != w {
		s.env.Save(&storedUndo[T]{cell: s, value: s.value, stamp: s.stamp})
		s.stamp = w
	}
	s.value = v
}

type storedUndo[T comparable] struct {
	cell  *Stored[T]
	value T
	stamp int
}

func (u *storedUndo[T]) Undo() {
	u.cell.value = u.value
	u.cell.stamp = u.stamp
}

// StoredInt is a reversible integer.
type StoredInt struct {
	Stored[int]
}

// NewStoredInt creates a reversible integer holding v.
func NewStoredInt(env *Environment, v int) *StoredInt {
	return &StoredInt{Stored[int]{env: env, value: v, stamp: env.Timestamp()}}
}

// Add adds delta and returns the new value.
func (s *StoredInt) Add(delta int) int {
	s.Set(s.value + delta)
	return s.value
}
