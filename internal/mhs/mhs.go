// Package mhs implements the deterministic MinHash signature engine
// (spec §4.3): a fixed family of L hash functions, derived from a
// ChaCha8 PRNG stream seeded with the process-wide constant, used to
// fingerprint a handle's shingle set so that signature agreement
// estimates Jaccard similarity.
package mhs

import (
	"context"
	"encoding/binary"
	mathrand "math/rand/v2"

	"golang.org/x/sync/errgroup"

	"styleprint/internal/models"
)

// Engine is a reproducible family of L hash functions. Construct with
// New; Engine is safe for concurrent read-only use once built.
type Engine struct {
	l       int
	randoms []uint64
}

// New draws L odd u64 multipliers from a ChaCha8 stream seeded with
// seed (zero-extended to the 256-bit ChaCha8 key, per spec §9's
// "ChaCha20/8 with 256-bit zero-extended seed"). Draws are
// draw-then-test-odd: each word from the stream is kept only if it is
// already odd, discarded otherwise — never coerced by setting the low
// bit, since that would change which stream positions are consumed and
// break cross-run reproducibility.
func New(seed uint64, l int) *Engine {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)

	src := mathrand.NewChaCha8(key)
	randoms := make([]uint64, 0, l)
	for len(randoms) < l {
		v := src.Uint64()
		if v%2 == 1 {
			randoms = append(randoms, v)
		}
	}
	return &Engine{l: l, randoms: randoms}
}

// L returns the signature length this engine produces.
func (e *Engine) L() int { return e.l }

// Randoms returns the drawn multipliers, in draw order. Exposed for
// reproducibility tests (spec §8.5); callers must not mutate the
// result.
func (e *Engine) Randoms() []uint64 { return e.randoms }

// Hash computes h_a(s): fold the UTF-8 bytes of s into consecutive
// non-overlapping 8-byte little-endian words (the final word is read
// as a zero-extended tail whenever fewer than 8 bytes remain, including
// when exactly 8 remain — see spec §4.3's boundary note), combining
// them into an accumulator seeded with a via wrapping multiplication.
// Hash("") == a for all a.
func Hash(a uint64, s string) uint64 {
	b := []byte(s)
	acc := a
	n := len(b)
	for k := 0; k < n; k += 8 {
		end := k + 8
		var word uint64
		if end < n {
			word = binary.LittleEndian.Uint64(b[k:end])
		} else {
			var tail [8]byte
			copy(tail[:], b[k:n])
			word = binary.LittleEndian.Uint64(tail[:])
		}
		acc = acc * word
	}
	return acc
}

// Sign derives an L-entry signature over shingles: for each hash
// function a_k, the entry records the shingle realizing the minimum
// h_{a_k}(shingle) and that minimum value, with ties broken by
// first-seen position in shingles (spec §4.3, §5). If shingles is
// empty, every entry is {"", math.MaxUint64}.
//
// The outer loop over the L hash functions is parallelized with one
// errgroup goroutine per hash function (spec §5 permits parallelizing either the outer
// loop over hash functions, as here, or the outer loop over shingles
// with per-k minima); each k writes only its own slot, so results are
// identical to a sequential left-to-right scan.
func (e *Engine) Sign(ctx context.Context, shingles []string) (models.Signature, error) {
	entries := make([]models.SignatureEntry, e.l)

	if len(shingles) == 0 {
		for k := range entries {
			entries[k] = models.SignatureEntry{ShingleText: "", MinHash: ^uint64(0)}
		}
		return models.Signature{Entries: entries}, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for k := 0; k < e.l; k++ {
		k := k
		g.Go(func() error {
			a := e.randoms[k]
			bestHash := ^uint64(0)
			bestText := ""
			found := false
			for _, s := range shingles {
				h := Hash(a, s)
				if !found || h < bestHash {
					bestHash = h
					bestText = s
					found = true
				}
			}
			entries[k] = models.SignatureEntry{ShingleText: bestText, MinHash: bestHash}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Signature{}, err
	}
	return models.Signature{Entries: entries}, nil
}
