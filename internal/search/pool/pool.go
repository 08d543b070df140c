// Package pool provides reusable query-scoped buffers for the search core:
// a generic free-list pool, score-vector pools, and bit-array pools. Pools
// exist to avoid per-query allocation churn under concurrent load; they are
// owned by an index snapshot and discarded with it.
package pool

import (
	"sync"

	"github.com/pkgdepot/registry-search/internal/search/score"
)

// Pool hands out reset, ready-to-use instances of T. Released items are kept
// on an unbounded free list and reset at the next acquire, not at release.
// Acquire and Release are safe for concurrent use; the items themselves are
// not, and a holder must release an item before handing control back.
type Pool[T any] struct {
	mu    sync.Mutex
	free  []T
	alloc func() T
	reset func(T)
}

// New creates a Pool. alloc must return an instance that is already in its
// reset state; reset restores that state on a recycled instance.
func New[T any](alloc func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{
		alloc: alloc,
		reset: reset,
	}
}

// Acquire returns a reset instance, recycling from the free list when
// possible.
func (p *Pool[T]) Acquire() T {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		item := p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		p.mu.Unlock()
		p.reset(item)
		return item
	}
	p.mu.Unlock()
	return p.alloc()
}

// Release returns an item to the free list. The item must not be used after
// release.
func (p *Pool[T]) Release(item T) {
	p.mu.Lock()
	p.free = append(p.free, item)
	p.mu.Unlock()
}

// FreeLen returns the current free-list size.
func (p *Pool[T]) FreeLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// NewScorePool creates a pool of score vectors aligned to the given key
// ordering. Reset is a zero-fill.
func NewScorePool[K comparable](keys []K) *Pool[*score.IndexedScore[K]] {
	return New(
		func() *score.IndexedScore[K] {
			return score.New(keys)
		},
		func(s *score.IndexedScore[K]) {
			s.FillRange(0, s.Len(), 0)
		},
	)
}

// NewBitArrayPool creates a pool of bit arrays of the given length. Reset
// sets all bits, so a fresh mask starts out accepting every position.
func NewBitArrayPool(length int) *Pool[*BitArray] {
	return New(
		func() *BitArray {
			return NewBitArray(length)
		},
		func(b *BitArray) {
			b.SetAll()
		},
	)
}
