// Package textutil implements the text normalization shared by the
// Fetcher (polished_text) and the Analyzer (shingle tokenization).
package textutil

import "strings"

// punctuation is the fixed set of runes stripped by Polish.
var punctuation = map[rune]bool{
	'(': true, ')': true, ',': true, '"': true, '.': true, '!': true,
	';': true, ':': true, '\'': true, '&': true, '?': true,
	'—': true, '–': true,
	'‘': true, '’': true, '“': true, '”': true,
}

// Polish normalizes raw text into the canonical form shingles are drawn
// from: trim, case-fold, then drop the fixed punctuation set. Polish is
// idempotent: Polish(Polish(s)) == Polish(s).
func Polish(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if punctuation[r] {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CaseFold lowercases a handle so it can be used as the canonical
// store key regardless of how it was typed or capitalized on input.
func CaseFold(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}
