package pipeline

import (
	"context"
	"testing"
	"time"

	"styleprint/internal/analyzer"
	"styleprint/internal/eventbus"
	"styleprint/internal/fetcher"
	"styleprint/internal/models"
	"styleprint/internal/similarity"
	"styleprint/internal/store/storetest"
	"styleprint/internal/timeline"
)

func TestPipeline_EndToEndSingleHandle(t *testing.T) {
	src := timeline.NewFake()
	src.Script("alice", timeline.ItemPage(0,
		models.Item{ItemID: 1, Handle: "alice", PolishedText: "hello there friend"},
		models.Item{ItemID: 2, Handle: "alice", PolishedText: "hello there world"},
	))
	src.Script("bob", timeline.ItemPage(0,
		models.Item{ItemID: 3, Handle: "bob", PolishedText: "totally unrelated text"},
	))

	st := storetest.New()
	cfg := models.HandleConfig{L: 16, SMin: 1, SMax: 2, K: 50, Seed: models.DefaultSeed}

	f := fetcher.New(st, src)
	a := analyzer.New(st, cfg)
	s := similarity.New(st)
	bus := eventbus.New()

	events := make(chan eventbus.Notification, 8)
	bus.Subscribe(eventbus.SimilarityUpdated, "", events)

	p := New(f, a, s, bus, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)

	// Seed alice alone first and wait for her event, so her signature
	// is guaranteed stored before bob's similarity comparison runs.
	// Running both handles through the pipeline at once would race
	// against the store's non-transactional write ordering, a real
	// hazard this repo preserves rather than papers over.
	p.Seed([]string{"alice"})
	waitForEvent(t, events, "alice")

	p.Seed([]string{"bob"})
	bobNotification := waitForEvent(t, events, "bob")
	if len(bobNotification.Rows) != 1 {
		t.Fatalf("bob's notification carried %d rows, want 1", len(bobNotification.Rows))
	}
	if bobNotification.Rows[0].Source != "alice" || bobNotification.Rows[0].Target != "bob" {
		t.Fatalf("notification pair = (%s, %s), want (alice, bob)",
			bobNotification.Rows[0].Source, bobNotification.Rows[0].Target)
	}

	p.Stop()

	rows, err := st.AllSimilarities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d similarity rows, want 1 (bob compared against alice's already-stored signature)", len(rows))
	}
	if rows[0].Source != "alice" || rows[0].Target != "bob" {
		t.Fatalf("pair = (%s, %s), want (alice, bob)", rows[0].Source, rows[0].Target)
	}
}

func waitForEvent(t *testing.T, events <-chan eventbus.Notification, want string) eventbus.Notification {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case evt := <-events:
			if evt.Handle == want {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for similarity.updated event for %s", want)
		}
	}
}
