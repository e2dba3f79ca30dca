// Package similarity implements the pipeline's third stage: compare
// one handle's signature against every other stored signature and
// persist the resulting pairwise strengths. Grounded on the reference
// update_similarities_for (_examples/original_source/server/src/
// similarity_computer.rs).
package similarity

import (
	"context"
	"errors"
	"fmt"

	"styleprint/internal/models"
	"styleprint/internal/store"
	"styleprint/internal/textutil"
)

// ErrSignatureLengthMismatch reports two signatures of differing
// length being compared, which would make agreement-fraction
// comparison meaningless. This should never happen in practice since
// every signature is drawn from the same configured engine, so its
// presence indicates a configuration change mid-corpus (spec §7,
// InvariantViolation).
var ErrSignatureLengthMismatch = errors.New("similarity: signature length mismatch")

// ErrNoStoredSignature reports that the handle requested has no
// signature yet, so nothing can be compared.
var ErrNoStoredSignature = errors.New("similarity: no stored signature for handle")

// ErrEmptySignature reports a zero-length signature reaching the
// comparison; every engine-produced signature has L entries, so this is
// an InvariantViolation like ErrSignatureLengthMismatch.
var ErrEmptySignature = errors.New("similarity: empty signature")

// Engine runs the similarity stage for one handle at a time; a single
// Engine is shared across per-handle worker goroutines (spec §5).
type Engine struct {
	Store store.Store
}

// New returns a similarity Engine backed by st.
func New(st store.Store) *Engine {
	return &Engine{Store: st}
}

// UpdateSimilarities compares handle's signature against every other
// stored signature, computing the fraction of positions at which the
// two signatures agree, and appends one Similarity row per comparison.
// Pairs are canonicalized so Source < Target lexicographically (spec
// §3 invariant), and the write is append-only: recomputation does not
// remove or supersede prior rows for the same pair, an acknowledged
// non-idempotence (spec §7).
func (e *Engine) UpdateSimilarities(ctx context.Context, handle string) error {
	handle = textutil.CaseFold(handle)

	signatures, err := e.Store.AllSignatures(ctx)
	if err != nil {
		return err
	}

	var requested *models.Signature
	for i := range signatures {
		if signatures[i].Handle == handle {
			requested = &signatures[i]
			break
		}
	}
	if requested == nil {
		return fmt.Errorf("%w: %s", ErrNoStoredSignature, handle)
	}

	rows := make([]models.Similarity, 0, len(signatures)-1)
	for _, other := range signatures {
		if other.Handle == handle {
			continue
		}

		strength, err := strength(*requested, other)
		if err != nil {
			return err
		}

		source, target := canonicalPair(handle, other.Handle)
		rows = append(rows, models.Similarity{Source: source, Target: target, Strength: strength})
	}

	if len(rows) == 0 {
		return nil
	}
	return e.Store.InsertSimilarities(ctx, rows)
}

// strength returns the fraction of signature positions at which a and
// b agree on their minimum-hash value: an unbiased estimator of the
// Jaccard similarity between the underlying shingle sets (spec §8
// design notes).
func strength(a, b models.Signature) (float64, error) {
	if len(a.Entries) != len(b.Entries) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrSignatureLengthMismatch, len(a.Entries), len(b.Entries))
	}
	if len(a.Entries) == 0 {
		return 0, fmt.Errorf("%w: %s vs %s", ErrEmptySignature, a.Handle, b.Handle)
	}

	agree := 0
	for i := range a.Entries {
		if a.Entries[i].MinHash == b.Entries[i].MinHash {
			agree++
		}
	}
	return float64(agree) / float64(len(a.Entries)), nil
}

// canonicalPair orders two handles lexicographically so the stored
// (source, target) pair is unique regardless of comparison direction.
func canonicalPair(a, b string) (source, target string) {
	if a < b {
		return a, b
	}
	return b, a
}
