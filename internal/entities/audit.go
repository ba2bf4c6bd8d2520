package entities

import "time"

type AuditEventType string

const (
	AuditEventCatalogImport AuditEventType = "catalog_import"
	AuditEventSalesImport   AuditEventType = "sales_import"
	AuditEventEnrich        AuditEventType = "catalog_enrich"
	AuditEventGoals         AuditEventType = "sales_goals"
	AuditEventDelete        AuditEventType = "delete"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "xlsx_catalog_import", "item_delete"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`  // "catalog", "daily_sales"
	EntityKey   string         `gorm:"index;size:64" json:"entity_key,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
