package entities

import (
	"time"
)

// Collection is a named JSON snapshot owned by the persistence layer.
// The store treats Data as an opaque blob.
type Collection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Data      []byte    `gorm:"type:blob" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Collection) TableName() string {
	return "collections"
}

// Known collection keys
const (
	CollectionKeyCatalog    = "catalog"
	CollectionKeyDailySales = "daily_sales"
)
