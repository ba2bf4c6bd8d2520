// Package collections persists the catalog and the daily sales ledger as
// whole-collection JSON snapshots.
//
// # Architecture
//
// A Store only knows keys and opaque blobs. The Repository on top of it owns
// the JSON shape of each collection, validates snapshots before writing and
// reads legacy placeholder values back as unset.
//
//	Repository (typed, validated) → Store (bytes) → sqlite table | badger
//
// Every write replaces complete collections. Save with several blobs is
// atomic, so a sales upload updates the ledger and the catalog stock
// together or not at all.
package collections

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Load for a key that was never saved.
var ErrNotFound = errors.New("collection not found")

// Blob is one serialized collection.
type Blob struct {
	Key  string
	Data []byte
}

// Store is the persistence boundary for collection snapshots.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	// Save writes all blobs in a single transaction.
	Save(ctx context.Context, blobs ...Blob) error
}
