package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore-assistant/internal/audit"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
)

// SnapshotRepository loads and replaces the catalog and ledger collections.
// Implemented by *collections.Repository.
type SnapshotRepository interface {
	Catalog(ctx context.Context) ([]entities.CatalogItem, error)
	Ledger(ctx context.Context) ([]entities.DailySalesEntry, error)
	SaveCatalog(ctx context.Context, items []entities.CatalogItem) error
	SaveLedger(ctx context.Context, entries []entities.DailySalesEntry) error
	// SaveAll must write both collections atomically.
	SaveAll(ctx context.Context, items []entities.CatalogItem, entries []entities.DailySalesEntry) error
}

// AuditLogger records inventory changes. Implemented by *audit.Service.
type AuditLogger interface {
	LogCatalogImport(summary audit.ImportSummary, err error)
	LogSalesImport(date string, summary audit.ImportSummary, err error)
	LogGoals(date string, minGoal, superGoal decimal.Decimal)
	LogDelete(isbn, title string)
}

// Archiver keeps a copy of each import. Implemented by *audit.Archiver.
type Archiver interface {
	Save(kind string, data any) (string, error)
}
