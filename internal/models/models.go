// Package models holds the core entities of the similarity pipeline:
// Items fetched per handle, the Shingle counts and MinHash Signature
// derived from them, and the pairwise Similarity rows the
// SimilarityEngine produces.
package models

import "time"

// Item is a single persisted timeline entry for a handle.
type Item struct {
	ItemID       uint64 `bson:"item_id"`
	Handle       string `bson:"handle"`
	AuthorName   string `bson:"author_name"`
	AuthorID     uint64 `bson:"author_id"`
	CreatedTS    int64  `bson:"created_ts"`
	CreatedStr   string `bson:"created_str"`
	RawText      string `bson:"raw_text"`
	PolishedText string `bson:"polished_text"`
}

// Shingle is a distinct word n-gram observed in a handle's items, with
// its word length and observed count.
type Shingle struct {
	Handle string `bson:"handle"`
	Text   string `bson:"text"`
	Length uint32 `bson:"length"`
	Count  uint32 `bson:"count"`
}

// SignatureEntry is one position of a MinHash signature: the shingle
// that realized the minimum hash value for that hash function, and the
// hash value itself.
type SignatureEntry struct {
	ShingleText string `bson:"shingle_text"`
	MinHash     uint64 `bson:"min_hash"`
}

// Signature is the L-entry MinHash fingerprint of a handle's top-K
// shingles, in positional (hash-function) order.
type Signature struct {
	Handle  string           `bson:"handle"`
	Entries []SignatureEntry `bson:"entries"`
}

// Similarity is a single pairwise strength row. Source and Target are
// always canonicalized so Source < Target lexicographically.
type Similarity struct {
	Source    string    `bson:"source_handle"`
	Target    string    `bson:"target_handle"`
	Strength  float64   `bson:"strength"`
	CreatedAt time.Time `bson:"created_at"`
}

// HandleConfig holds the pipeline-wide constants that govern shingle
// bounds, signature length, and the PRNG seed. It is read-only after
// initialization.
type HandleConfig struct {
	L    int    // signature length
	SMin int    // minimum shingle word length, inclusive
	SMax int    // maximum shingle word length, inclusive
	K    int    // top-K shingles evaluated for signature
	Seed uint64 // fixed MinHash seed
}

// DefaultSeed is the process-wide MinHash PRNG seed mandated by the
// specification.
const DefaultSeed uint64 = 42
