// Package analyzer implements the pipeline's second stage: turn a
// handle's stored items into a shingle multiset and a MinHash
// signature.
package analyzer

import (
	"context"
	"fmt"

	"styleprint/internal/mhs"
	"styleprint/internal/models"
	"styleprint/internal/shingle"
	"styleprint/internal/store"
	"styleprint/internal/textutil"
)

// Analyzer runs the shingle + signature stage for one handle at a
// time; a single Analyzer is shared across per-handle worker
// goroutines.
type Analyzer struct {
	Store  store.Store
	Engine *mhs.Engine
	Config models.HandleConfig
}

// New returns an Analyzer whose MinHash engine is derived from cfg's
// seed and signature length.
func New(st store.Store, cfg models.HandleConfig) *Analyzer {
	return &Analyzer{
		Store:  st,
		Engine: mhs.New(cfg.Seed, cfg.L),
		Config: cfg,
	}
}

// AnalyzeHandle recomputes handle's shingle set and signature from its
// currently stored items: re-tokenize every item's polished text into
// windows of size [1, SMax], replace the stored shingle set wholesale,
// then re-derive the signature from the top-K shingles by
// [SMin, SMax] length and persist that too.
func (a *Analyzer) AnalyzeHandle(ctx context.Context, handle string) error {
	if err := a.updateShingles(ctx, handle); err != nil {
		return fmt.Errorf("analyzer: update shingles for %s: %w", handle, err)
	}
	if err := a.updateSignature(ctx, handle); err != nil {
		return fmt.Errorf("analyzer: update signature for %s: %w", handle, err)
	}
	return nil
}

func (a *Analyzer) updateShingles(ctx context.Context, handle string) error {
	items, err := a.Store.ItemsOf(ctx, handle)
	if err != nil {
		return err
	}

	counts := shingle.NewCounts()
	for _, item := range items {
		counts.AddText(item.PolishedText, a.Config.SMax)
	}

	entries := counts.Entries()
	shingles := make([]models.Shingle, len(entries))
	for i, e := range entries {
		shingles[i] = models.Shingle{
			Handle: textutil.CaseFold(handle),
			Text:   e.Text,
			Length: e.Length,
			Count:  e.Count,
		}
	}
	return a.Store.ReplaceShingles(ctx, handle, shingles)
}

func (a *Analyzer) updateSignature(ctx context.Context, handle string) error {
	top, err := a.Store.ShinglesOf(ctx, handle, a.Config.SMin, a.Config.SMax, a.Config.K)
	if err != nil {
		return err
	}

	texts := make([]string, len(top))
	for i, s := range top {
		texts[i] = s.Text
	}

	sig, err := a.Engine.Sign(ctx, texts)
	if err != nil {
		return err
	}
	sig.Handle = textutil.CaseFold(handle)

	return a.Store.ReplaceSignature(ctx, sig)
}
