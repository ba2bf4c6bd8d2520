// Package badgerstore keeps collection snapshots in an embedded Badger
// database, for deployments that do not want the sqlite file.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/mrlokans/bookstore-assistant/internal/collections"
)

const keyPrefix = "collection:"

// Store implements collections.Store on Badger.
type Store struct {
	db *badger.DB
}

var _ collections.Store = (*Store)(nil)

// Open opens (or creates) the Badger directory at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	log.Printf("Badger collection store opened at %s", path)
	return &Store{db: db}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func collectionKey(key string) []byte {
	return []byte(keyPrefix + key)
}

// Load returns the stored snapshot, or collections.ErrNotFound.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(collectionKey(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, collections.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return data, nil
}

// Save writes every blob in one transaction.
func (s *Store) Save(ctx context.Context, blobs ...collections.Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, blob := range blobs {
			if err := txn.Set(collectionKey(blob.Key), blob.Data); err != nil {
				return fmt.Errorf("save %s: %w", blob.Key, err)
			}
		}
		return nil
	})
}

// Delete removes a collection. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(collectionKey(key))
	})
}

// Keys lists the stored collection keys in order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	sort.Strings(keys)
	return keys, err
}
