package pool

// BitArray is a fixed-length bit set used as a document-position mask during
// filtering. A freshly created BitArray has every bit set.
type BitArray struct {
	length int
	words  []uint64
}

// NewBitArray creates a BitArray of the given length with all bits set.
func NewBitArray(length int) *BitArray {
	b := &BitArray{
		length: length,
		words:  make([]uint64, (length+63)/64),
	}
	b.SetAll()
	return b
}

// Len returns the number of addressable bits.
func (b *BitArray) Len() int {
	return b.length
}

// IsSet reports whether bit i is set.
func (b *BitArray) IsSet(i int) bool {
	return b.words[i>>6]&(1<<uint(i&63)) != 0
}

// Set sets bit i.
func (b *BitArray) Set(i int) {
	b.words[i>>6] |= 1 << uint(i&63)
}

// Clear clears bit i.
func (b *BitArray) Clear(i int) {
	b.words[i>>6] &^= 1 << uint(i&63)
}

// SetAll sets every bit.
func (b *BitArray) SetAll() {
	for i := range b.words {
		b.words[i] = ^uint64(0)
	}
}

// ClearAll clears every bit.
func (b *BitArray) ClearAll() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// And intersects b with other in place. Both arrays must have the same
// length.
func (b *BitArray) And(other *BitArray) {
	if b.length != other.length {
		panic("pool: bit array length mismatch")
	}
	for i := range b.words {
		b.words[i] &= other.words[i]
	}
}

// Count returns the number of set bits within the addressable range.
func (b *BitArray) Count() int {
	count := 0
	for i := 0; i < b.length; i++ {
		if b.IsSet(i) {
			count++
		}
	}
	return count
}
