// Package storetest provides an in-memory Store double for exercising
// the pipeline stages without a live MongoDB instance.
package storetest

import (
	"context"
	"sort"
	"sync"

	"styleprint/internal/models"
	"styleprint/internal/store"
	"styleprint/internal/textutil"
)

// Fake is a goroutine-safe, in-memory implementation of store.Store.
type Fake struct {
	mu           sync.Mutex
	items        []models.Item
	shingles     map[string][]models.Shingle
	signatures   map[string]models.Signature
	similarities []models.Similarity
}

var _ store.Store = (*Fake)(nil)

// New returns an empty Fake store.
func New() *Fake {
	return &Fake{
		shingles:   make(map[string][]models.Shingle),
		signatures: make(map[string]models.Signature),
	}
}

func (f *Fake) WaitUntilReady(ctx context.Context) error { return nil }

func (f *Fake) InsertItems(ctx context.Context, items []models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		it.Handle = textutil.CaseFold(it.Handle)
		f.items = append(f.items, it)
	}
	return nil
}

func (f *Fake) LatestItem(ctx context.Context, handle string) (models.Item, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle = textutil.CaseFold(handle)

	var latest models.Item
	found := false
	for _, it := range f.items {
		if it.Handle != handle {
			continue
		}
		if !found || it.ItemID > latest.ItemID {
			latest = it
			found = true
		}
	}
	return latest, found, nil
}

func (f *Fake) ItemsOf(ctx context.Context, handle string) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle = textutil.CaseFold(handle)

	var out []models.Item
	for _, it := range f.items {
		if it.Handle == handle {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *Fake) ReplaceShingles(ctx context.Context, handle string, shingles []models.Shingle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle = textutil.CaseFold(handle)

	cp := make([]models.Shingle, len(shingles))
	for i, s := range shingles {
		s.Handle = handle
		cp[i] = s
	}
	f.shingles[handle] = cp
	return nil
}

func (f *Fake) ShinglesOf(ctx context.Context, handle string, minLen, maxLen, limit int) ([]models.Shingle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle = textutil.CaseFold(handle)

	var filtered []models.Shingle
	for _, s := range f.shingles[handle] {
		if int(s.Length) >= minLen && int(s.Length) <= maxLen {
			filtered = append(filtered, s)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Count != filtered[j].Count {
			return filtered[i].Count > filtered[j].Count
		}
		return filtered[i].Text < filtered[j].Text
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (f *Fake) ReplaceSignature(ctx context.Context, sig models.Signature) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sig.Handle = textutil.CaseFold(sig.Handle)
	f.signatures[sig.Handle] = sig
	return nil
}

func (f *Fake) SignatureOf(ctx context.Context, handle string) (models.Signature, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sig, ok := f.signatures[textutil.CaseFold(handle)]
	return sig, ok, nil
}

func (f *Fake) AllSignatures(ctx context.Context) ([]models.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Signature, 0, len(f.signatures))
	for _, sig := range f.signatures {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (f *Fake) InsertSimilarities(ctx context.Context, rows []models.Similarity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.similarities = append(f.similarities, rows...)
	return nil
}

func (f *Fake) AllSimilarities(ctx context.Context) ([]models.Similarity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Similarity, len(f.similarities))
	copy(out, f.similarities)
	return out, nil
}

func (f *Fake) SimilaritiesOf(ctx context.Context, handle string) ([]models.Similarity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle = textutil.CaseFold(handle)

	var out []models.Similarity
	for _, s := range f.similarities {
		if s.Source == handle || s.Target == handle {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Fake) Close(ctx context.Context) error { return nil }
