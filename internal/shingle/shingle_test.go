package shingle

import (
	"sort"
	"testing"
)

func textsOf(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	sort.Strings(out)
	return out
}

func TestAddText_S2Example(t *testing.T) {
	c := NewCounts()
	c.AddText("hello world", 2)

	got := textsOf(c.Entries())
	want := []string{"hello"}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("shingles = %v, want %v", got, want)
	}
}

func TestAddText_S3Example(t *testing.T) {
	c := NewCounts()
	c.AddText("a b c", 2)

	got := textsOf(c.Entries())
	want := []string{"a", "a b", "b"}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("shingles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("shingles = %v, want %v", got, want)
		}
	}
}

func TestAddText_BoundaryProperty(t *testing.T) {
	// 5 tokens, sizes 1..3: total = (5-1)+(5-2)+(5-3) = 4+3+2 = 9
	c := NewCounts()
	c.AddText("the quick brown fox jumps", 3)

	total := 0
	for _, e := range c.Entries() {
		total += int(e.Count)
	}
	want := WindowCount(5, 1) + WindowCount(5, 2) + WindowCount(5, 3)
	if total != want {
		t.Fatalf("total shingle occurrences = %d, want %d", total, want)
	}
}

func TestAddText_LastTokenNeverEndsAWindow(t *testing.T) {
	c := NewCounts()
	c.AddText("one two three", 1)

	for _, e := range c.Entries() {
		if e.Text == "three" {
			t.Fatalf("size-1 window should exclude the last token")
		}
	}
}

func TestWindowCount(t *testing.T) {
	cases := []struct{ n, w, want int }{
		{5, 1, 4},
		{5, 5, 0},
		{5, 6, 0},
		{2, 2, 0},
		{3, 2, 1},
	}
	for _, c := range cases {
		if got := WindowCount(c.n, c.w); got != c.want {
			t.Errorf("WindowCount(%d, %d) = %d, want %d", c.n, c.w, got, c.want)
		}
	}
}
