package usecases

import "math/bits"

// bitset is a fixed-width set of small non-negative integers.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func fullBitset(n int) bitset {
	b := newBitset(n)
	for i := 0; i < n; i++ {
		b.set(i)
	}
	return b
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) or(o bitset) {
	for i := range b {
		b[i] |= o[i]
	}
}

func (b bitset) reset() {
	for i := range b {
		b[i] = 0
	}
}

func (b bitset) equal(o bitset) bool {
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

func (b bitset) empty() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

func (b bitset) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// andNotCount returns |b \ o|.
func (b bitset) andNotCount(o bitset) int {
	n := 0
	for i := range b {
		n += bits.OnesCount64(b[i] &^ o[i])
	}
	return n
}

func (b bitset) key() string {
	buf := make([]byte, 0, len(b)*8)
	for _, w := range b {
		for s := 0; s < 64; s += 8 {
			buf = append(buf, byte(w>>uint(s)))
		}
	}
	return string(buf)
}

// minimumCover returns the indices of the smallest subfamily of sets whose union
// equals full. Among covers of equal size the lexicographically smallest index
// list wins, so callers order sets by their tie-break key. The caller guarantees
// that the union of all sets equals full.
//
// Enumeration stops after budget candidate combinations; the greedy cover is
// returned instead and exact is false.
func minimumCover(sets []bitset, full bitset, budget int) (chosen []int, exact bool) {
	if full.empty() {
		return nil, true
	}

	acc := make(bitset, len(full))
	steps := 0
	maxK := full.count()
	if maxK > len(sets) {
		maxK = len(sets)
	}

	for k := 1; k <= maxK; k++ {
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		for {
			steps++
			if steps > budget {
				return greedyCover(sets, full), false
			}

			acc.reset()
			for _, i := range idx {
				acc.or(sets[i])
			}
			if acc.equal(full) {
				return append([]int(nil), idx...), true
			}

			// Advance to the next combination in lexicographic order.
			i := k - 1
			for i >= 0 && idx[i] == len(sets)-k+i {
				i--
			}
			if i < 0 {
				break
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
	return nil, true
}

// greedyCover repeatedly picks the set adding the most uncovered elements,
// preferring the lowest index on ties. It returns nil if full cannot be covered.
func greedyCover(sets []bitset, full bitset) []int {
	covered := make(bitset, len(full))
	var chosen []int
	for !covered.equal(full) {
		best, bestGain := -1, 0
		for i, s := range sets {
			if gain := s.andNotCount(covered); gain > bestGain {
				best, bestGain = i, gain
			}
		}
		if best < 0 {
			return nil
		}
		covered.or(sets[best])
		chosen = append(chosen, best)
	}
	return chosen
}
