// Package fetcher implements the pipeline's first stage: pull new
// items for a handle from its TimelineSource, paginate until exhausted,
// and persist them. Grounded on the reference get_and_save_tweets_for
// (_examples/original_source/server/src/tweet_grabber.rs): resume from
// the most recently stored item id, ratchet max_id down page by page,
// and sleep-then-retry on rate limit.
package fetcher

import (
	"context"
	"log"
	"time"

	"styleprint/internal/models"
	"styleprint/internal/store"
	"styleprint/internal/timeline"
)

// DefaultPageSize is the page size requested from the TimelineSource
// when the caller does not override it.
const DefaultPageSize = 200

// DefaultRateLimitBackoff matches the reference system's fixed 60
// second sleep-and-retry interval.
const DefaultRateLimitBackoff = 60 * time.Second

// Fetcher runs the fetch stage for one handle at a time; a single
// Fetcher is shared by every per-handle worker goroutine (spec §5), so
// its methods must not hold per-call mutable state.
type Fetcher struct {
	Store            store.Store
	Source           timeline.Source
	PageSize         int
	RateLimitBackoff time.Duration
}

// New returns a Fetcher with the reference system's default page size
// and backoff.
func New(st store.Store, src timeline.Source) *Fetcher {
	return &Fetcher{
		Store:            st,
		Source:           src,
		PageSize:         DefaultPageSize,
		RateLimitBackoff: DefaultRateLimitBackoff,
	}
}

// FetchHandle pulls every item newer than the handle's latest stored
// item, paginating until a page comes back empty, then persists
// whatever was retrieved in a single batch insert. Errors are returned
// to the caller, which logs and drops them at the per-handle worker
// boundary (spec §7's HandleScoped classification) rather than
// propagating further.
func (f *Fetcher) FetchHandle(ctx context.Context, handle string) error {
	sinceID := uint64(0)
	if latest, ok, err := f.Store.LatestItem(ctx, handle); err != nil {
		return err
	} else if ok {
		sinceID = latest.ItemID
	}

	var collected []models.Item
	var maxID uint64

	for {
		page, err := f.Source.Fetch(ctx, handle, sinceID, maxID, f.pageSize())
		if err == timeline.ErrRateLimited {
			log.Printf("[fetcher] %s: rate limited, waiting %s", handle, f.backoff())
			if !sleep(ctx, f.backoff()) {
				return ctx.Err()
			}
			continue
		}
		if err != nil {
			return err
		}
		if len(page.Items) == 0 {
			break
		}

		collected = append(collected, page.Items...)
		maxID = page.NextMaxID
	}

	if len(collected) == 0 {
		return nil
	}
	return f.Store.InsertItems(ctx, collected)
}

func (f *Fetcher) pageSize() int {
	if f.PageSize > 0 {
		return f.PageSize
	}
	return DefaultPageSize
}

func (f *Fetcher) backoff() time.Duration {
	if f.RateLimitBackoff > 0 {
		return f.RateLimitBackoff
	}
	return DefaultRateLimitBackoff
}

// sleep blocks for d or until ctx is done, reporting which happened
// first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
