package entities

import (
	"time"
)

type SyncType string

const (
	SyncTypeEnrichment SyncType = "catalog_enrichment"
)

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncCounts are the running tallies of a pass.
type SyncCounts struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"` // items that gained data
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"` // lookups that returned nothing usable
}

// SyncProgress tracks a long-running background pass over the catalog.
type SyncProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SyncType    SyncType   `gorm:"size:50;uniqueIndex" json:"sync_type"`
	Status      SyncStatus `gorm:"size:20" json:"status"`
	TotalItems  int        `json:"total_items"`
	SyncCounts  `gorm:"embedded"`
	CurrentItem string     `gorm:"size:512" json:"current_item,omitempty"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (SyncProgress) TableName() string {
	return "sync_progress"
}
