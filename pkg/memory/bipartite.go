package memory

// IndexedBipartiteSet is a reversible partition of a dense index set into a
// swapped-out prefix and a live suffix.
//
// list is a permutation of the tracked indices and position is its inverse.
// An index v is live iff position[v] >= first. Swap moves v to the boundary
// and advances first; popping a world moves first back, which makes every
// index swapped in that world live again without touching list or position.
type IndexedBipartiteSet struct {
	list     []int
	position []int
	first    *StoredInt
	size     int
}

// NewIndexedBipartiteSet creates an empty partition with room for capacity
// indices before it needs to grow.
func NewIndexedBipartiteSet(env *Environment, capacity int) *IndexedBipartiteSet {
	if capacity < 1 {
		capacity = 1
	}
	return &IndexedBipartiteSet{
		list:     make([]int, capacity),
		position: make([]int, capacity),
		first:    NewStoredInt(env, 0),
	}
}

// Add tracks a new index, placed in the live part, and returns it.
// Storage grows by half its length when full.
func (s *IndexedBipartiteSet) Add() int {
	if s.size == len(s.list) {
		n := len(s.list) * 3 / 2
		if n <= s.size {
			n = s.size + 1
		}
		list := make([]int, n)
		position := make([]int, n)
		copy(list, s.list)
		copy(position, s.position)
		s.list, s.position = list, position
	}
	v := s.size
	s.list[v] = v
	s.position[v] = v
	s.size++
	return v
}

// Swap moves the live index v to the swapped-out part. Swapping an index that
// is already swapped out is a no-op.
func (s *IndexedBipartiteSet) Swap(v int) {
	f := s.first.Get()
	pv := s.position[v]
	if pv < f {
		return
	}
	w := s.list[f]
	s.list[f], s.list[pv] = v, w
	s.position[v], s.position[w] = f, pv
	s.first.Set(f + 1)
}

// Get returns the index stored at position i.
func (s *IndexedBipartiteSet) Get(i int) int { return s.list[i] }

// Position returns the position of index v.
func (s *IndexedBipartiteSet) Position(v int) int { return s.position[v] }

// Contains reports whether v is live.
func (s *IndexedBipartiteSet) Contains(v int) bool { return s.position[v] >= s.first.Get() }

// Bundle is an alias of Contains.
func (s *IndexedBipartiteSet) Bundle(v int) bool { return s.Contains(v) }

// First returns the boundary position: positions [First, Total) are live.
func (s *IndexedBipartiteSet) First() int { return s.first.Get() }

// Total returns the number of tracked indices, live or not.
func (s *IndexedBipartiteSet) Total() int { return s.size }

// Size returns the number of live indices.
func (s *IndexedBipartiteSet) Size() int { return s.size - s.first.Get() }

// IsEmpty reports whether no index is live.
func (s *IndexedBipartiteSet) IsEmpty() bool { return s.Size() == 0 }

// Live calls fn for each live index, in position order. Iteration stops when
// fn returns false.
func (s *IndexedBipartiteSet) Live(fn func(v int) bool) {
	for i := s.first.Get(); i < s.size; i++ {
		if !fn(s.list[i]) {
			return
		}
	}
}
