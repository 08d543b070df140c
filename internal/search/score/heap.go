package score

// Heap is a comparator-ordered max-heap. The before function reports whether
// a ranks ahead of b; the item ranked first by before is extracted first.
// It backs IndexedScore.Top but is generic so other orderings can reuse it.
type Heap[T any] struct {
	items  []T
	before func(a, b T) bool
}

// NewHeap creates an empty Heap with the given ordering.
func NewHeap[T any](before func(a, b T) bool) *Heap[T] {
	return &Heap[T]{before: before}
}

// Len returns the number of collected items.
func (h *Heap[T]) Len() int {
	return len(h.items)
}

// Collect inserts an item, maintaining heap order.
func (h *Heap[T]) Collect(item T) {
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
}

// TopK removes and returns up to k items in descending comparator order.
func (h *Heap[T]) TopK(k int) []T {
	if k > len(h.items) {
		k = len(h.items)
	}
	result := make([]T, 0, k)
	for len(result) < k {
		result = append(result, h.pop())
	}
	return result
}

func (h *Heap[T]) pop() T {
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	h.siftDown(0)
	return top
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.before(h.items[i], h.items[parent]) {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *Heap[T]) siftDown(i int) {
	n := len(h.items)
	for {
		first := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.before(h.items[left], h.items[first]) {
			first = left
		}
		if right < n && h.before(h.items[right], h.items[first]) {
			first = right
		}
		if first == i {
			return
		}
		h.items[i], h.items[first] = h.items[first], h.items[i]
		i = first
	}
}
