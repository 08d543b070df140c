// Package tokenizer turns package names and free text into weighted token
// fragments. Whole words carry weight 1.0; camelCase and digit-boundary
// parts carry a fraction proportional to their share of the word. At query
// time, prefix fragments are additionally emitted so that a partially typed
// word can still match exact index tokens. All functions are pure and safe
// for concurrent use.
package tokenizer

import (
	"strings"
	"unicode"
)

// minPrefixLength is the shortest prefix fragment emitted for partial
// matching. Shorter prefixes match too broadly to be useful.
const minPrefixLength = 3

// SplitForQuery splits raw query text into independent search words on
// whitespace. Case is preserved so that camelCase query words can still be
// decomposed during lookup.
func SplitForQuery(text string) []string {
	return strings.Fields(text)
}

// SplitForIndexing splits text into words on non-alphanumeric boundaries,
// dropping single-character fragments. Underscores, dots, and dashes in
// package names act as separators here.
func SplitForIndexing(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := words[:0]
	for _, w := range words {
		if len(w) >= 2 {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// Tokenize maps each word of text, and each camelCase or digit-boundary
// part of it, to a weight. Weights max-merge across repeated occurrences.
// Returns nil when the text yields no tokens.
func Tokenize(text string) map[string]float64 {
	tokens := make(map[string]float64)
	for _, word := range SplitForIndexing(text) {
		collectWordTokens(tokens, word, false)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// TokenizePartial tokenizes a single query word, additionally emitting its
// prefix fragments weighted by their share of the word. The result is the
// candidate set matched against exact index tokens during lookup.
func TokenizePartial(word string) map[string]float64 {
	tokens := make(map[string]float64)
	for _, w := range SplitForIndexing(word) {
		collectWordTokens(tokens, w, true)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func collectWordTokens(dst map[string]float64, word string, partial bool) {
	runes := []rune(strings.ToLower(word))
	wordLen := float64(len(runes))
	mergeMax(dst, string(runes), 1.0)

	parts := splitWordParts(word)
	if len(parts) > 1 {
		for _, part := range parts {
			partRunes := []rune(strings.ToLower(part))
			if len(partRunes) < 2 {
				continue
			}
			mergeMax(dst, string(partRunes), float64(len(partRunes))/wordLen)
		}
	}

	if partial {
		for n := minPrefixLength; n < len(runes); n++ {
			mergeMax(dst, string(runes[:n]), float64(n)/wordLen)
		}
	}
}

// splitWordParts decomposes a word at lower-to-upper case transitions and
// letter/digit boundaries: "HttpServer2" becomes ["Http", "Server", "2"].
func splitWordParts(word string) []string {
	runes := []rune(word)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if isPartBoundary(runes[i-1], runes[i]) {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	parts = append(parts, string(runes[start:]))
	return parts
}

func isPartBoundary(prev, cur rune) bool {
	if unicode.IsLower(prev) && unicode.IsUpper(cur) {
		return true
	}
	if unicode.IsLetter(prev) != unicode.IsLetter(cur) {
		return true
	}
	return false
}

func mergeMax(dst map[string]float64, token string, weight float64) {
	if weight > dst[token] {
		dst[token] = weight
	}
}
