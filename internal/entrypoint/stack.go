package entrypoint

import (
	"fmt"
	"log"

	"github.com/mrlokans/bookstore-assistant/internal/audit"
	"github.com/mrlokans/bookstore-assistant/internal/badgerstore"
	"github.com/mrlokans/bookstore-assistant/internal/collections"
	"github.com/mrlokans/bookstore-assistant/internal/config"
	"github.com/mrlokans/bookstore-assistant/internal/database"
	auditrepo "github.com/mrlokans/bookstore-assistant/internal/database/audit"
	"github.com/mrlokans/bookstore-assistant/internal/database/snapshots"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/metrics"
	"github.com/mrlokans/bookstore-assistant/internal/services"
)

// Stack is the storage and service layer shared by the server and the CLI
// commands.
type Stack struct {
	DB        *database.Database
	Store     collections.Store
	Inventory *services.InventoryService
	Audit     *audit.Service
	Metrics   *metrics.Metrics

	closers []func() error
}

// OpenStack opens the database and the configured collection store and wires
// the inventory service to them. quiet disables gorm logging.
func OpenStack(cfg *config.Config, quiet bool) (*Stack, error) {
	open := database.NewDatabase
	if quiet {
		open = database.NewQuietDatabase
	}
	db, err := open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	s := &Stack{DB: db, closers: []func() error{db.Close}}

	switch cfg.Store.Backend {
	case config.StoreBackendBadger:
		store, err := badgerstore.Open(cfg.Store.BadgerPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Store = store
		s.closers = append(s.closers, store.Close)
		log.Printf("Collections stored in badger at %s", cfg.Store.BadgerPath)
	case config.StoreBackendSQLite, "":
		s.Store = snapshots.NewRepository(db.DB)
	default:
		s.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	s.Audit = audit.NewService(auditrepo.NewRepository(db.DB))
	s.Metrics = metrics.New()

	s.Inventory = services.NewInventoryService(collections.NewRepository(s.Store))
	s.Inventory.SetAuditLogger(s.Audit)
	s.Inventory.SetMetrics(s.Metrics)
	if cfg.Import.ArchiveDir != "" {
		s.Inventory.SetArchiver(audit.NewArchiver(cfg.Import.ArchiveDir))
	}
	if cfg.Import.DefaultSalesMode != "" {
		if err := s.Inventory.SetDefaultSalesMode(entities.SalesMode(cfg.Import.DefaultSalesMode)); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close flushes pending audit writes and closes stores in reverse order.
func (s *Stack) Close() error {
	if s.Audit != nil {
		s.Audit.Wait()
	}
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
