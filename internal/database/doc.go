// Package database provides the SQLite data access layer.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── snapshots/       # Catalog and ledger snapshots (collections.Store)
//	├── audit/           # Audit trail of imports and edits
//	└── sync/            # Enrichment pass progress
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookstore.db")
//
//	store := snapshots.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
// # Interface Implementations
//
//   - snapshots.Repository: implements collections.Store
//   - audit.Repository: implements audit.Repository (service side)
//   - sync.Repository: implements metadata.ProgressReporter
package database
