// Package eventbus fans Q_done completions out to interested
// subscribers: each websocket connection subscribes on its own, either
// to every handle or to one specific handle. Unlike a plain
// type-keyed pub/sub, subscriptions here are also handle-scoped, since
// most consumers of a similarity-recomputed notification only care
// about one handle at a time.
package eventbus

import (
	"sync"
	"time"

	"styleprint/internal/models"
	"styleprint/internal/textutil"
)

// Kind identifies what happened. SimilarityUpdated is the only
// notification the pipeline currently emits (Q_done, spec §2); it is
// kept as a distinct type from a bare string so a second notification
// kind can be added later without renegotiating the wire shape.
type Kind string

// SimilarityUpdated fires once SimilarityEngine.UpdateSimilarities
// completes for a handle.
const SimilarityUpdated Kind = "similarity.updated"

// Notification is the payload routed through the bus. Rows carries the
// handle's current similarity rows at publish time, so a subscriber
// does not need to re-query the store to render the update.
type Notification struct {
	Kind      Kind
	Handle    string
	Rows      []models.Similarity
	Timestamp time.Time
}

// subscription pairs a delivery channel with the filter that decides
// whether a given Notification reaches it.
type subscription struct {
	ch     chan<- Notification
	kind   Kind
	handle string // case-folded; empty means "every handle"
}

// Bus is an in-process notification router. It is safe for concurrent
// use; the zero value is not usable, construct with New.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	closed bool
}

// New returns an empty, open Bus.
func New() *Bus {
	return &Bus{subs: make(map[*subscription]struct{})}
}

// Subscribe registers ch to receive every Notification of kind whose
// Handle matches handle. An empty handle subscribes to every handle
// for that kind (what a websocket connection with no ?handle= query
// parameter registers). The caller owns ch's buffering; a
// full channel causes that notification to be dropped for this
// subscriber, never blocking the publisher.
//
// The returned func removes the subscription; it is safe to call more
// than once and safe to call after Close.
func (b *Bus) Subscribe(kind Kind, handle string, ch chan<- Notification) (unsubscribe func()) {
	sub := &subscription{ch: ch, kind: kind, handle: textutil.CaseFold(handle)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
	}
}

// Publish routes n to every subscription whose kind matches and whose
// handle filter is either empty or equal to n.Handle (case-folded).
// Publish is a no-op once Close has been called.
func (b *Bus) Publish(n Notification) {
	n.Handle = textutil.CaseFold(n.Handle)

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for sub := range b.subs {
		if sub.kind != n.Kind {
			continue
		}
		if sub.handle != "" && sub.handle != n.Handle {
			continue
		}
		select {
		case sub.ch <- n:
		default:
		}
	}
}

// Close marks the bus closed; subsequent Publish calls are no-ops.
// Close does not close subscriber channels, nor does it remove
// subscriptions — that remains the caller's responsibility via the
// unsubscribe funcs returned from Subscribe.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
