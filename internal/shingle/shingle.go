// Package shingle enumerates word n-grams ("shingles") from polished
// text and maintains the per-handle counting multiset the Analyzer
// persists.
package shingle

import "strings"

// Counts is a distinct-shingle -> observed-count multiset, together
// with each shingle's word length, for a single handle.
type Counts struct {
	counts  map[string]uint32
	lengths map[string]uint32
}

// NewCounts returns an empty Counts accumulator.
func NewCounts() *Counts {
	return &Counts{
		counts:  make(map[string]uint32),
		lengths: make(map[string]uint32),
	}
}

// AddText tokenizes polished text on whitespace and enumerates every
// contiguous window of size 1..maxSize (inclusive) whose right edge
// stays strictly inside the token array, per spec §4.2 step 2 / §8.2:
// for n tokens, windows of size w are {tokens[i:i+w] : i+w < n}. This
// is a deliberately preserved boundary: windows ending exactly on the
// last token are excluded.
func (c *Counts) AddText(polishedText string, maxSize int) {
	tokens := strings.Fields(polishedText)
	n := len(tokens)
	for w := 1; w <= maxSize; w++ {
		for i := 0; i+w < n; i++ {
			text := strings.Join(tokens[i:i+w], " ")
			c.counts[text]++
			c.lengths[text] = uint32(w)
		}
	}
}

// Entry is one distinct shingle with its word length and count.
type Entry struct {
	Text   string
	Length uint32
	Count  uint32
}

// Entries returns every distinct shingle observed so far, in no
// particular order. Callers that need a deterministic order (e.g. for
// persistence) should sort the result themselves.
func (c *Counts) Entries() []Entry {
	out := make([]Entry, 0, len(c.counts))
	for text, count := range c.counts {
		out = append(out, Entry{Text: text, Length: c.lengths[text], Count: count})
	}
	return out
}

// Len returns the number of distinct shingles accumulated.
func (c *Counts) Len() int {
	return len(c.counts)
}

// WindowCount returns the number of size-w windows produced from n
// tokens: max(0, n-w). Exposed for tests exercising spec §8.2's closed
// form, Σ_{w=1..maxSize} max(0, n-w).
func WindowCount(n, w int) int {
	if n-w < 0 {
		return 0
	}
	return n - w
}
