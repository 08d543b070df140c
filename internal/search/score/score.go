// Package score implements the dense per-document score vector used during
// query evaluation, together with the bounded comparator heap that extracts
// the top-ranked results from it.
package score

// IndexedScore is a mutable score vector with one slot per document
// position. The key ordering is fixed at construction and shared with the
// token index that owns the positions. An IndexedScore is scoped to a single
// query: it is acquired from a pool, filled, consumed, and released.
type IndexedScore[K comparable] struct {
	keys   []K
	values []float64
}

// New creates a zeroed IndexedScore aligned to the given key ordering. The
// keys slice is retained, not copied.
func New[K comparable](keys []K) *IndexedScore[K] {
	return &IndexedScore[K]{
		keys:   keys,
		values: make([]float64, len(keys)),
	}
}

// Len returns the number of document positions.
func (s *IndexedScore[K]) Len() int {
	return len(s.values)
}

// KeyAt returns the document key at position i.
func (s *IndexedScore[K]) KeyAt(i int) K {
	return s.keys[i]
}

// ValueAt returns the score at position i.
func (s *IndexedScore[K]) ValueAt(i int) float64 {
	return s.values[i]
}

// SetMax raises the score at position i to v if v is larger. Overlapping
// token matches therefore never double-count.
func (s *IndexedScore[K]) SetMax(i int, v float64) {
	if v > s.values[i] {
		s.values[i] = v
	}
}

// MaxAllFrom takes the position-wise maximum of s and other. Both vectors
// must share the same key ordering.
func (s *IndexedScore[K]) MaxAllFrom(other *IndexedScore[K]) {
	for i, v := range other.values {
		if v > s.values[i] {
			s.values[i] = v
		}
	}
}

// MultiplyAllFrom combines another word's scores into s with AND semantics:
// positions already at zero stay zero, and a zero in other excludes the
// position. Both vectors must share the same key ordering.
func (s *IndexedScore[K]) MultiplyAllFrom(other *IndexedScore[K]) {
	for i, v := range s.values {
		if v == 0 {
			continue
		}
		s.values[i] = v * other.values[i]
	}
}

// FillRange sets every position in [start, end) to v.
func (s *IndexedScore[K]) FillRange(start, end int, v float64) {
	for i := start; i < end; i++ {
		s.values[i] = v
	}
}

// KeepWhere zeroes every non-zero position the predicate rejects. It is the
// hook for applying bit-array visibility masks without coupling this package
// to the mask representation.
func (s *IndexedScore[K]) KeepWhere(keep func(i int) bool) {
	for i, v := range s.values {
		if v != 0 && !keep(i) {
			s.values[i] = 0
		}
	}
}

type rankedEntry[K comparable] struct {
	key   K
	value float64
}

// Top returns the count highest-scoring keys whose value is at least
// minValue. Zero and negative scores never qualify, regardless of minValue.
func (s *IndexedScore[K]) Top(count int, minValue float64) map[K]float64 {
	h := NewHeap(func(a, b rankedEntry[K]) bool {
		return a.value > b.value
	})
	for i, v := range s.values {
		if v <= 0 || v < minValue {
			continue
		}
		h.Collect(rankedEntry[K]{key: s.keys[i], value: v})
	}
	result := make(map[K]float64, count)
	for _, e := range h.TopK(count) {
		result[e.key] = e.value
	}
	return result
}

// ToMap exports every strictly positive entry.
func (s *IndexedScore[K]) ToMap() map[K]float64 {
	result := make(map[K]float64)
	for i, v := range s.values {
		if v > 0 {
			result[s.keys[i]] = v
		}
	}
	return result
}
