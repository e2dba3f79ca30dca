package api

import (
	"testing"
	"time"

	"styleprint/internal/eventbus"
	"styleprint/internal/models"
)

// These exercise the bus subscription wsHub.serveWS sets up, without
// going through an actual HTTP upgrade: a handle-scoped subscriber only
// sees that handle's notifications, and a wildcard subscriber (no
// handle query parameter) sees every one.

func TestWSHub_HandleScopedSubscriptionIgnoresOtherHandles(t *testing.T) {
	bus := eventbus.New()

	ch := make(chan eventbus.Notification, 1)
	unsubscribe := bus.Subscribe(eventbus.SimilarityUpdated, "alice", ch)
	defer unsubscribe()

	bus.Publish(eventbus.Notification{Kind: eventbus.SimilarityUpdated, Handle: "bob"})

	select {
	case n := <-ch:
		t.Fatalf("received notification for %q on an alice-scoped subscription", n.Handle)
	case <-time.After(50 * time.Millisecond):
	}

	bus.Publish(eventbus.Notification{
		Kind:   eventbus.SimilarityUpdated,
		Handle: "Alice",
		Rows:   []models.Similarity{{Source: "alice", Target: "bob", Strength: 0.5}},
	})

	select {
	case n := <-ch:
		if n.Handle != "alice" {
			t.Fatalf("n.Handle = %q, want alice (case-folded)", n.Handle)
		}
		if len(n.Rows) != 1 || n.Rows[0].Target != "bob" {
			t.Fatalf("n.Rows = %+v, want one row targeting bob", n.Rows)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for alice's notification")
	}
}

func TestWSHub_WildcardSubscriptionSeesEveryHandle(t *testing.T) {
	bus := eventbus.New()

	ch := make(chan eventbus.Notification, 2)
	unsubscribe := bus.Subscribe(eventbus.SimilarityUpdated, "", ch)
	defer unsubscribe()

	bus.Publish(eventbus.Notification{Kind: eventbus.SimilarityUpdated, Handle: "alice"})
	bus.Publish(eventbus.Notification{Kind: eventbus.SimilarityUpdated, Handle: "bob"})

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case n := <-ch:
			seen[n.Handle] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for wildcard subscriber to see both handles")
		}
	}
	if !seen["alice"] || !seen["bob"] {
		t.Fatalf("wildcard subscriber saw %v, want both alice and bob", seen)
	}
}

func TestWSHub_UnsubscribeStopsDelivery(t *testing.T) {
	bus := eventbus.New()

	ch := make(chan eventbus.Notification, 1)
	unsubscribe := bus.Subscribe(eventbus.SimilarityUpdated, "alice", ch)
	unsubscribe()

	bus.Publish(eventbus.Notification{Kind: eventbus.SimilarityUpdated, Handle: "alice"})

	select {
	case n := <-ch:
		t.Fatalf("received %+v after unsubscribing", n)
	case <-time.After(50 * time.Millisecond):
	}
}
