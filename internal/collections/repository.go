package collections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/bookstore-assistant/internal/catalog"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/validation"
)

// Repository reads and writes typed collection snapshots.
type Repository struct {
	store     Store
	validator *validation.Validator
}

// NewRepository creates a repository on top of store.
func NewRepository(store Store) *Repository {
	return &Repository{store: store, validator: validation.New()}
}

// Catalog loads the catalog snapshot. A missing collection is empty. Items
// stored under ISBNs that only differ in formatting are folded into the
// first of them, so the result always passes validation.
func (r *Repository) Catalog(ctx context.Context) ([]entities.CatalogItem, error) {
	var stored []entities.CatalogItem
	if err := r.load(ctx, entities.CollectionKeyCatalog, &stored); err != nil {
		return nil, err
	}
	items, folded := catalog.Dedupe(stored)
	if folded > 0 {
		log.Printf("[STORE] Folded %d catalog items with duplicate ISBNs", folded)
	}
	return items, nil
}

// Ledger loads the daily sales snapshot. A missing collection is empty.
func (r *Repository) Ledger(ctx context.Context) ([]entities.DailySalesEntry, error) {
	var entries []entities.DailySalesEntry
	if err := r.load(ctx, entities.CollectionKeyDailySales, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveCatalog validates and replaces the catalog snapshot.
func (r *Repository) SaveCatalog(ctx context.Context, items []entities.CatalogItem) error {
	blob, err := r.catalogBlob(items)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, blob)
}

// SaveLedger validates and replaces the daily sales snapshot.
func (r *Repository) SaveLedger(ctx context.Context, entries []entities.DailySalesEntry) error {
	blob, err := r.ledgerBlob(entries)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, blob)
}

// SaveAll replaces both snapshots in one atomic write. Nothing is written
// when either fails validation.
func (r *Repository) SaveAll(ctx context.Context, items []entities.CatalogItem, entries []entities.DailySalesEntry) error {
	catalogBlob, err := r.catalogBlob(items)
	if err != nil {
		return err
	}
	ledgerBlob, err := r.ledgerBlob(entries)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, catalogBlob, ledgerBlob)
}

func (r *Repository) catalogBlob(items []entities.CatalogItem) (Blob, error) {
	if err := r.validator.Catalog(items); err != nil {
		return Blob{}, err
	}
	if items == nil {
		items = []entities.CatalogItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return Blob{Key: entities.CollectionKeyCatalog, Data: data}, nil
}

func (r *Repository) ledgerBlob(entries []entities.DailySalesEntry) (Blob, error) {
	if err := r.validator.Ledger(entries); err != nil {
		return Blob{}, err
	}
	if entries == nil {
		entries = []entities.DailySalesEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to encode daily sales: %w", err)
	}
	return Blob{Key: entities.CollectionKeyDailySales, Data: data}, nil
}

func (r *Repository) load(ctx context.Context, key string, v interface{}) error {
	data, err := r.store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
