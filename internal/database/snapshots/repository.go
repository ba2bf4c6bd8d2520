// Package snapshots stores collection snapshots in the SQLite collections
// table.
//
// # Usage
//
//	repo := snapshots.NewRepository(db)
//	err := repo.Save(ctx, collections.Blob{Key: "catalog", Data: data})
package snapshots

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookstore-assistant/internal/collections"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
)

var _ collections.Store = (*Repository)(nil)

// Repository handles collection snapshot database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new snapshots repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Load returns the stored blob for key, or collections.ErrNotFound.
func (r *Repository) Load(ctx context.Context, key string) ([]byte, error) {
	var row entities.Collection
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, collections.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

// Save upserts every blob inside one transaction.
func (r *Repository) Save(ctx context.Context, blobs ...collections.Blob) error {
	if len(blobs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, b := range blobs {
			row := entities.Collection{
				Key:       b.Key,
				Data:      b.Data,
				CreatedAt: now,
				UpdatedAt: now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a collection. Used to reset a store.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&entities.Collection{}).Error
}

// UpdatedAt reports when key was last written.
func (r *Repository) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var row entities.Collection
	err := r.db.WithContext(ctx).Select("updated_at").Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, collections.ErrNotFound
	}
	return row.UpdatedAt, err
}
