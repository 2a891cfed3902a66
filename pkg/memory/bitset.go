package memory

import "math/bits"

// BitSet is a fixed-size reversible bitset. Each 64-bit word is trailed
// independently, once per world. Bit indices are 0-based.
type BitSet struct {
	env    *Environment
	n      int
	words  []uint64
	stamps []int
}

// NewBitSet creates a reversible bitset of n bits, all cleared.
func NewBitSet(env *Environment, n int) *BitSet {
	w := (n + 63) / 64
	stamps := make([]int, w)
	for i := range stamps {
		stamps[i] = env.Timestamp()
	}
	return &BitSet{env: env, n: n, words: make([]uint64, w), stamps: stamps}
}

// Len returns the number of bits the set can hold.
func (b *BitSet) Len() int { return b.n }

func (b *BitSet) setWord(i int, w uint64) {
	if b.words[i] == w {
		return
	}
	if cur := b.env.stamp; b.stamps[i] != cur {
		b.env.Save(&wordUndo{set: b, idx: i, word: b.words[i], stamp: b.stamps[i]})
		b.stamps[i] = cur
	}
	b.words[i] = w
}

type wordUndo struct {
	set   *BitSet
	idx   int
	word  uint64
	stamp int
}

func (u *wordUndo) Undo() {
	u.set.words[u.idx] = u.word
	u.set.stamps[u.idx] = u.stamp
}

// Get reports whether bit i is set. Out-of-range indices read as unset.
func (b *BitSet) Get(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.words[i>>6]&(1<<(uint(i)&63)) != 0
}

// Set sets bit i.
func (b *BitSet) Set(i int) {
	w := i >> 6
	b.setWord(w, b.words[w]|1<<(uint(i)&63))
}

// Clear clears bit i.
func (b *BitSet) Clear(i int) {
	w := i >> 6
	b.setWord(w, b.words[w]&^(1<<(uint(i)&63)))
}

// SetRange sets bits in [from, to).
func (b *BitSet) SetRange(from, to int) {
	for i := from; i < to; i++ {
		b.Set(i)
	}
}

// ClearRange clears bits in [from, to).
func (b *BitSet) ClearRange(from, to int) {
	if from < 0 {
		from = 0
	}
	if to > b.n {
		to = b.n
	}
	for from < to {
		w := from >> 6
		lo := uint(from) & 63
		hi := uint(64)
		if end := (w + 1) << 6; to < end {
			hi = uint(to) & 63
		}
		mask := ^uint64(0) << lo
		if hi < 64 {
			mask &= (1 << hi) - 1
		}
		b.setWord(w, b.words[w]&^mask)
		from = (w + 1) << 6
	}
}

// NextSetBit returns the first set bit at or after from, or -1.
func (b *BitSet) NextSetBit(from int) int {
	if from < 0 {
		from = 0
	}
	if from >= b.n {
		return -1
	}
	w := from >> 6
	word := b.words[w] & (^uint64(0) << (uint(from) & 63))
	for {
		if word != 0 {
			i := w<<6 + bits.TrailingZeros64(word)
			if i >= b.n {
				return -1
			}
			return i
		}
		w++
		if w >= len(b.words) {
			return -1
		}
		word = b.words[w]
	}
}

// PrevSetBit returns the last set bit at or before from, or -1.
func (b *BitSet) PrevSetBit(from int) int {
	if from >= b.n {
		from = b.n - 1
	}
	if from < 0 {
		return -1
	}
	w := from >> 6
	word := b.words[w] & (^uint64(0) >> (63 - uint(from)&63))
	for {
		if word != 0 {
			return w<<6 + 63 - bits.LeadingZeros64(word)
		}
		w--
		if w < 0 {
			return -1
		}
		word = b.words[w]
	}
}

// Cardinality returns the number of set bits.
func (b *BitSet) Cardinality() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}
