package analyzer

import (
	"context"
	"testing"

	"styleprint/internal/models"
	"styleprint/internal/store/storetest"
)

func testConfig() models.HandleConfig {
	return models.HandleConfig{L: 32, SMin: 1, SMax: 2, K: 50, Seed: models.DefaultSeed}
}

func TestAnalyzeHandle_ProducesShinglesAndSignature(t *testing.T) {
	ctx := context.Background()
	st := storetest.New()
	if err := st.InsertItems(ctx, []models.Item{
		{ItemID: 1, Handle: "alice", PolishedText: "hello world"},
		{ItemID: 2, Handle: "alice", PolishedText: "hello there"},
	}); err != nil {
		t.Fatal(err)
	}

	a := New(st, testConfig())
	if err := a.AnalyzeHandle(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	shingles, err := st.ShinglesOf(ctx, "alice", 1, 2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(shingles) == 0 {
		t.Fatal("expected at least one shingle")
	}

	sig, ok, err := st.SignatureOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a stored signature")
	}
	if len(sig.Entries) != 32 {
		t.Fatalf("signature has %d entries, want 32", len(sig.Entries))
	}
}

func TestAnalyzeHandle_EmptyItemsProducesSentinelSignature(t *testing.T) {
	ctx := context.Background()
	st := storetest.New()
	a := New(st, testConfig())

	if err := a.AnalyzeHandle(ctx, "nobody"); err != nil {
		t.Fatal(err)
	}

	sig, ok, err := st.SignatureOf(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a stored signature even with zero shingles")
	}
	for _, e := range sig.Entries {
		if e.MinHash != ^uint64(0) {
			t.Fatalf("entry = %+v, want sentinel max-value hash", e)
		}
	}
}

func TestAnalyzeHandle_IsFullReplaceAcrossRuns(t *testing.T) {
	ctx := context.Background()
	st := storetest.New()
	cfg := testConfig()
	a := New(st, cfg)

	if err := st.InsertItems(ctx, []models.Item{{ItemID: 1, Handle: "erin", PolishedText: "one two three"}}); err != nil {
		t.Fatal(err)
	}
	if err := a.AnalyzeHandle(ctx, "erin"); err != nil {
		t.Fatal(err)
	}
	first, err := st.ShinglesOf(ctx, "erin", 1, 2, 100)
	if err != nil {
		t.Fatal(err)
	}

	if err := st.InsertItems(ctx, []models.Item{{ItemID: 2, Handle: "erin", PolishedText: "completely different words here"}}); err != nil {
		t.Fatal(err)
	}
	if err := a.AnalyzeHandle(ctx, "erin"); err != nil {
		t.Fatal(err)
	}
	second, err := st.ShinglesOf(ctx, "erin", 1, 2, 100)
	if err != nil {
		t.Fatal(err)
	}

	// first: "one", "two", "one two" (3). second, rebuilt from both
	// items: those 3 plus "completely", "different", "words",
	// "completely different", "different words" (8). Appending instead
	// of replacing would leave 11 rows.
	if len(first) != 3 || len(second) != 8 {
		t.Fatalf("expected the shingle set to be replaced by one rebuilt from both items combined, got first=%d second=%d, want 3 and 8", len(first), len(second))
	}
}
