// Package index implements the in-memory inverted token index behind
// registry search. A TokenIndex is built once per corpus snapshot, is
// immutable afterwards, and serves unbounded concurrent read-only queries.
// Corpus changes are handled by building a new instance and swapping the
// reference, never by mutating an existing one.
package index

import (
	"fmt"
	"math"

	"github.com/pkgdepot/registry-search/internal/search/pool"
	"github.com/pkgdepot/registry-search/internal/search/score"
	"github.com/pkgdepot/registry-search/internal/search/tokenizer"
)

// matchTolerance keeps only fuzzy fragments whose weight is at least this
// fraction of the best fragment weight for the same sub-word.
const matchTolerance = 0.7

// TokenMatch maps matched index tokens to the best weight found across the
// fuzzy variants of one query word. It is built fresh per query word and
// never persisted.
type TokenMatch map[string]float64

type options struct {
	skipDocumentWeight bool
}

// Option configures index construction.
type Option func(*options)

// WithoutDocumentWeight disables the token-count dampening factor, so every
// document indexes with weight 1.0 regardless of length.
func WithoutDocumentWeight() Option {
	return func(o *options) {
		o.skipDocumentWeight = true
	}
}

// TokenIndex is an inverted mapping from token to per-position weights over
// a fixed, ordered corpus of document keys. Positions are stable integer
// indexes into the key ordering for the lifetime of the instance.
type TokenIndex[K comparable] struct {
	keys     []K
	postings map[string]map[int]float64
	scores   *pool.Pool[*score.IndexedScore[K]]
}

// New builds a TokenIndex from parallel id and value slices. An empty value
// contributes no tokens for its position. Panics if the slices have
// different lengths; that is a programmer error in the caller.
func New[K comparable](ids []K, values []string, opts ...Option) *TokenIndex[K] {
	texts := make([][]string, len(values))
	for i, v := range values {
		if v != "" {
			texts[i] = []string{v}
		}
	}
	return NewMulti(ids, texts, opts...)
}

// NewMulti builds a TokenIndex from parallel id and multi-value slices,
// merging the tokens of every text at a position. A nil or empty slice
// contributes no tokens for its position. Panics if the slices have
// different lengths.
func NewMulti[K comparable](ids []K, values [][]string, opts ...Option) *TokenIndex[K] {
	if len(ids) != len(values) {
		panic(fmt.Sprintf("index: ids and values length mismatch (%d != %d)", len(ids), len(values)))
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	keys := make([]K, len(ids))
	copy(keys, ids)
	ti := &TokenIndex[K]{
		keys:     keys,
		postings: make(map[string]map[int]float64),
	}

	for pos, texts := range values {
		if len(texts) == 0 {
			continue
		}
		merged := make(map[string]float64)
		for _, text := range texts {
			for token, weight := range tokenizer.Tokenize(text) {
				if weight > merged[token] {
					merged[token] = weight
				}
			}
		}
		if len(merged) == 0 {
			continue
		}
		docWeight := 1.0
		if !o.skipDocumentWeight {
			docWeight = 1 + math.Log(1+float64(len(merged)))/100
		}
		for token, weight := range merged {
			list := ti.postings[token]
			if list == nil {
				list = make(map[int]float64)
				ti.postings[token] = list
			}
			if v := weight / docWeight; v > list[pos] {
				list[pos] = v
			}
		}
	}

	ti.scores = pool.NewScorePool(ti.keys)
	return ti
}

// Len returns the number of document positions.
func (ti *TokenIndex[K]) Len() int {
	return len(ti.keys)
}

// Keys returns the index's key ordering. The slice is shared and must be
// treated as read-only.
func (ti *TokenIndex[K]) Keys() []K {
	return ti.keys
}

// TokenCount returns the number of distinct tokens in the index.
func (ti *TokenIndex[K]) TokenCount() int {
	return len(ti.postings)
}

// LookupTokens resolves one query word against the index. The word is split
// into sub-words, each sub-word is expanded into fuzzy fragment candidates,
// and only candidates present in the index survive. Sub-words combine with
// AND semantics: if any sub-word matches nothing, the whole word matches
// nothing. Per sub-word, only fragments within the tolerance band of the
// best fragment weight are retained, max-merged into the result.
func (ti *TokenIndex[K]) LookupTokens(text string) TokenMatch {
	match := make(TokenMatch)
	for _, sub := range tokenizer.SplitForIndexing(text) {
		candidates := tokenizer.TokenizePartial(sub)
		best := 0.0
		for token, weight := range candidates {
			if _, ok := ti.postings[token]; !ok {
				continue
			}
			if weight > best {
				best = weight
			}
		}
		if best == 0 {
			return TokenMatch{}
		}
		for token, weight := range candidates {
			if weight < best*matchTolerance {
				continue
			}
			if _, ok := ti.postings[token]; !ok {
				continue
			}
			if weight > match[token] {
				match[token] = weight
			}
		}
	}
	return match
}

// SearchAndAccumulate resolves word and max-accumulates
// matchWeight * tokenWeight * weight into s at every matching position.
func (ti *TokenIndex[K]) SearchAndAccumulate(word string, s *score.IndexedScore[K], weight float64) {
	for token, matchWeight := range ti.LookupTokens(word) {
		for pos, tokenWeight := range ti.postings[token] {
			s.SetMax(pos, matchWeight*tokenWeight*weight)
		}
	}
}

// WithSearchWords evaluates a multi-word query. Each word accumulates into a
// pooled score buffer and the buffers combine by position-wise
// multiplication, so words are ANDed. The per-word weight is
// weight^(1/len(words)) to preserve the caller's overall weight scale in the
// product. fn receives the combined buffer, which is released back to the
// pool when fn returns; fn must not retain it.
func (ti *TokenIndex[K]) WithSearchWords(words []string, weight float64, fn func(*score.IndexedScore[K])) {
	if len(words) > 0 {
		weight = math.Pow(weight, 1/float64(len(words)))
	}
	var combined *score.IndexedScore[K]
	for _, word := range words {
		s := ti.scores.Acquire()
		ti.SearchAndAccumulate(word, s, weight)
		if combined == nil {
			combined = s
			continue
		}
		combined.MultiplyAllFrom(s)
		ti.scores.Release(s)
	}
	if combined == nil {
		combined = ti.scores.Acquire()
	}
	fn(combined)
	ti.scores.Release(combined)
}

// Search is the convenience entry point: it splits free query text into
// words and returns all strictly positive document scores.
func (ti *TokenIndex[K]) Search(text string) map[K]float64 {
	var result map[K]float64
	ti.WithSearchWords(tokenizer.SplitForQuery(text), 1.0, func(s *score.IndexedScore[K]) {
		result = s.ToMap()
	})
	return result
}
