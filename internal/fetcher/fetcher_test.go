package fetcher

import (
	"context"
	"testing"
	"time"

	"styleprint/internal/models"
	"styleprint/internal/store/storetest"
	"styleprint/internal/timeline"
)

func TestFetchHandle_PaginatesUntilEmpty(t *testing.T) {
	src := timeline.NewFake()
	src.Script("alice",
		timeline.ItemPage(150, models.Item{ItemID: 200, Handle: "alice", RawText: "hello"}, models.Item{ItemID: 151, Handle: "alice", RawText: "world"}),
		timeline.ItemPage(0, models.Item{ItemID: 130, Handle: "alice", RawText: "third"}),
		timeline.ItemPage(0),
	)

	st := storetest.New()
	f := New(st, src)

	if err := f.FetchHandle(context.Background(), "alice"); err != nil {
		t.Fatal(err)
	}

	items, err := st.ItemsOf(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("stored %d items, want 3", len(items))
	}
	if src.Calls("alice") != 3 {
		t.Fatalf("Fetch called %d times, want 3 (two data pages + one empty terminator)", src.Calls("alice"))
	}
}

func TestFetchHandle_RetriesOnRateLimit(t *testing.T) {
	src := timeline.NewFake()
	src.Script("bob",
		timeline.RateLimitedResponse(),
		timeline.ItemPage(0, models.Item{ItemID: 1, Handle: "bob"}),
		timeline.ItemPage(0),
	)

	st := storetest.New()
	f := New(st, src)
	f.RateLimitBackoff = time.Millisecond

	if err := f.FetchHandle(context.Background(), "bob"); err != nil {
		t.Fatal(err)
	}

	items, err := st.ItemsOf(context.Background(), "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("stored %d items, want 1", len(items))
	}
}

func TestFetchHandle_ResumesFromLatestStoredItem(t *testing.T) {
	ctx := context.Background()
	st := storetest.New()
	if err := st.InsertItems(ctx, []models.Item{{ItemID: 500, Handle: "carol"}}); err != nil {
		t.Fatal(err)
	}

	src := timeline.NewFake()
	src.Script("carol", timeline.ItemPage(0))
	rec := &sinceRecorder{Source: src}
	f := New(st, rec)

	if err := f.FetchHandle(ctx, "carol"); err != nil {
		t.Fatal(err)
	}
	if src.Calls("carol") != 1 {
		t.Fatalf("Fetch called %d times, want 1", src.Calls("carol"))
	}
	if len(rec.sinceIDs) != 1 || rec.sinceIDs[0] != 500 {
		t.Fatalf("Fetch sinceIDs = %v, want [500] (the latest stored item id)", rec.sinceIDs)
	}
}

// sinceRecorder wraps a Source and records the sinceID of every call.
type sinceRecorder struct {
	timeline.Source
	sinceIDs []uint64
}

func (r *sinceRecorder) Fetch(ctx context.Context, handle string, sinceID, maxID uint64, pageSize int) (timeline.Page, error) {
	r.sinceIDs = append(r.sinceIDs, sinceID)
	return r.Source.Fetch(ctx, handle, sinceID, maxID, pageSize)
}

func TestFetchHandle_NoNewItemsInsertsNothing(t *testing.T) {
	ctx := context.Background()
	st := storetest.New()
	src := timeline.NewFake()
	src.Script("dave", timeline.ItemPage(0))

	f := New(st, src)
	if err := f.FetchHandle(ctx, "dave"); err != nil {
		t.Fatal(err)
	}

	items, err := st.ItemsOf(ctx, "dave")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("stored %d items, want 0", len(items))
	}
}
