package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgdepot/registry-search/internal/search/score"
)

func TestSearchSingleWord(t *testing.T) {
	ti := New([]string{"a", "b"}, []string{"quick fox", "lazy dog"})

	result := ti.Search("fox")
	require.Contains(t, result, "a")
	assert.Greater(t, result["a"], 0.0)
	assert.NotContains(t, result, "b")
}

func TestSearchNoMatch(t *testing.T) {
	ti := New([]string{"a", "b"}, []string{"quick fox", "lazy dog"})
	assert.Empty(t, ti.Search("cat"))
}

func TestSearchWordsAreANDed(t *testing.T) {
	ti := New([]string{"a", "b"}, []string{"alpha beta", "alpha gamma"})

	both := ti.Search("alpha")
	assert.Len(t, both, 2)

	only := ti.Search("alpha beta")
	require.Contains(t, only, "a")
	assert.NotContains(t, only, "b")
}

func TestSearchEmptyQuery(t *testing.T) {
	ti := New([]string{"a"}, []string{"alpha"})
	assert.Empty(t, ti.Search(""))
	assert.Empty(t, ti.Search("   "))
}

func TestRepeatedValuesDoNotChangeScores(t *testing.T) {
	ids := []string{"a", "b"}
	plain := New(ids, []string{"quick fox", "lazy dog"})
	doubled := NewMulti(ids, [][]string{
		{"quick fox", "quick fox"},
		{"lazy dog", "lazy dog"},
	})

	assert.Equal(t, plain.Search("fox"), doubled.Search("fox"))
	assert.Equal(t, plain.Search("lazy dog"), doubled.Search("lazy dog"))
}

func TestDocumentWeightDampensLongDocuments(t *testing.T) {
	ti := New([]string{"short", "long"}, []string{
		"fox",
		"fox alpha bravo charlie delta echo golf hotel india juliet",
	})

	result := ti.Search("fox")
	require.Contains(t, result, "short")
	require.Contains(t, result, "long")
	assert.Greater(t, result["short"], result["long"])
	assert.LessOrEqual(t, result["short"], 1.0)
}

func TestWithoutDocumentWeight(t *testing.T) {
	damped := New([]string{"a"}, []string{"serverpod"})
	flat := New([]string{"a"}, []string{"serverpod"}, WithoutDocumentWeight())

	assert.Equal(t, 1.0, flat.Search("serverpod")["a"])
	assert.Less(t, damped.Search("serverpod")["a"], 1.0)
}

func TestLookupTokensToleranceBand(t *testing.T) {
	ti := New([]string{"a", "b", "c"}, []string{"abcdefghij", "abcde", "abc"})

	// The exact token dominates; weaker prefix fragments fall outside the
	// tolerance band.
	match := ti.LookupTokens("abcdefghij")
	require.Len(t, match, 1)
	assert.Equal(t, 1.0, match["abcdefghij"])
}

func TestLookupTokensPrefixMatch(t *testing.T) {
	ti := New([]string{"a", "b", "c"}, []string{"abcdefghij", "abcde", "abc"})

	match := ti.LookupTokens("abcdef")
	require.Len(t, match, 1)
	assert.InDelta(t, 5.0/6.0, match["abcde"], 1e-9)
}

func TestLookupTokensUnmatchedSubWordVoidsWord(t *testing.T) {
	ti := New([]string{"pkg"}, []string{"firebase core"})

	assert.Empty(t, ti.LookupTokens("firebase_auth"))
	assert.NotEmpty(t, ti.LookupTokens("firebase_core"))
	assert.Empty(t, ti.Search("firebase_auth"))
}

func TestWithSearchWordsPreservesWeightScale(t *testing.T) {
	ti := New([]string{"a"}, []string{"alpha beta"}, WithoutDocumentWeight())

	ti.WithSearchWords([]string{"alpha", "beta"}, 0.81, func(s *score.IndexedScore[string]) {
		assert.InDelta(t, 0.81, s.ValueAt(0), 1e-12)
	})
}

func TestNewPanicsOnLengthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		New([]string{"a"}, []string{"x", "y"})
	})
}

func TestTokenCountAndLen(t *testing.T) {
	ti := New([]string{"a", "b"}, []string{"quick fox", "lazy dog"})
	assert.Equal(t, 2, ti.Len())
	assert.Equal(t, 4, ti.TokenCount())
	assert.Equal(t, []string{"a", "b"}, ti.Keys())
}
