package http

import (
	"net/http"

	"github.com/mrlokans/bookstore-assistant/internal/collections"
	"github.com/mrlokans/bookstore-assistant/internal/database"
	"github.com/mrlokans/bookstore-assistant/internal/tasks"
)

// Inventory is the full surface of the inventory service used by the API.
type Inventory interface {
	CatalogStore
	SpreadsheetImporter
	SalesLedger
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Inventory Inventory
	Database  *database.Database
	Store     collections.Store

	// Audit trail (optional)
	AuditReader AuditReader

	// Prometheus handler for /metrics (optional)
	MetricsHandler http.Handler

	// Task queue client (optional). Enrichment and task endpoints are only
	// registered when set.
	TaskClient   TaskClient
	SyncProgress SyncStatusReader
	CleanupTask  tasks.CleanupAuditTask

	// Upload limits and defaults
	MaxUploadMB       int64
	SheetName         string
	LowStockThreshold int

	// Application info
	Version string
}
