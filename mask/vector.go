package mask

import "fmt"

// Mask is a compact bit-vector over the vocabulary: bit i is set iff
// vocabulary token i may be validly appended. Backed by a []uint64 instead
// of []bool since the store holds |all_states| * |terminals|^alpha of
// these.
type Mask struct {
	bits []uint64
	n    int
}

// NewMask creates a zeroed mask of length n.
func NewMask(n int) Mask {
	return Mask{bits: make([]uint64, (n+63)/64), n: n}
}

// Set marks vocabulary index i as permitted.
func (m Mask) Set(i int) {
	m.bits[i/64] |= 1 << uint(i%64)
}

// Get reports whether vocabulary index i is permitted.
func (m Mask) Get(i int) bool {
	return m.bits[i/64]&(1<<uint(i%64)) != 0
}

// Len returns the vocabulary length this mask covers.
func (m Mask) Len() int {
	return m.n
}

// Equal reports whether m and other cover the same vocabulary length and
// agree on every bit.
func (m Mask) Equal(other Mask) bool {
	if m.n != other.n || len(m.bits) != len(other.bits) {
		return false
	}
	for i := range m.bits {
		if m.bits[i] != other.bits[i] {
			return false
		}
	}
	return true
}

// Bools returns the mask expanded to a []bool in vocabulary order, mainly
// for tests and host code that doesn't want to deal with bit packing.
func (m Mask) Bools() []bool {
	out := make([]bool, m.n)
	for i := range out {
		out[i] = m.Get(i)
	}
	return out
}

// String renders the mask as a compact "10110" bit string for diagnostics.
func (m Mask) String() string {
	buf := make([]byte, m.n)
	for i := 0; i < m.n; i++ {
		if m.Get(i) {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return fmt.Sprintf("Mask(%s)", string(buf))
}

// computeMask vectorizes dmatch over vocabulary: mask[i] = dmatch(vocab[i],
// state, lambda). Each token is evaluated against a fresh copy of state —
// DFAState is an immutable value, so there is nothing to snapshot/reset
// between tokens beyond simply not reusing a mutated cursor, which this
// package never has in the first place.
func computeMask(builder *DFABuilder, state DFAState, lambda []string, vocabulary []string, cfg Config) (Mask, error) {
	mask := NewMask(len(vocabulary))
	for i, token := range vocabulary {
		ok, err := dmatch(builder, token, state, lambda, cfg)
		if err != nil {
			return Mask{}, err
		}
		if ok {
			mask.Set(i)
		}
	}
	return mask, nil
}
