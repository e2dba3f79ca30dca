// Package timeline defines the external-timeline collaborator the
// Fetcher pulls items from, grounded on the reference tweet_grabber
// (_examples/original_source/server/src/tweet_grabber.rs): paginate
// backwards from the newest item using an exclusive lower bound
// (sinceID) and an inclusive upper bound (maxID) that the caller
// ratchets down page by page.
package timeline

import (
	"context"
	"errors"

	"styleprint/internal/models"
)

// Page is one page of items plus the upper bound to request next.
type Page struct {
	Items []models.Item
	// NextMaxID is the max_id to pass on the following call: the
	// smallest item id seen in this page, minus one. Callers stop
	// paginating once a page comes back empty.
	NextMaxID uint64
}

// ErrRateLimited signals the source's rate limit was hit; the Fetcher
// sleeps and retries the same request, per spec §4.1 / the reference
// grabber's "Twitter API limit reached: waiting 60 seconds" behavior.
var ErrRateLimited = errors.New("timeline: rate limited")

// Source is the external-timeline contract the Fetcher depends on.
// Implementations must treat sinceID as exclusive and maxID as
// inclusive (spec §4.1): a zero maxID means "no upper bound, start from
// the newest item."
type Source interface {
	Fetch(ctx context.Context, handle string, sinceID, maxID uint64, pageSize int) (Page, error)
}
