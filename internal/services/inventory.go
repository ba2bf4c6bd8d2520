package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore-assistant/internal/audit"
	"github.com/mrlokans/bookstore-assistant/internal/catalog"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/importers"
	"github.com/mrlokans/bookstore-assistant/internal/ledger"
	"github.com/mrlokans/bookstore-assistant/internal/metrics"
)

// ErrItemNotFound is returned when no catalog item matches an ISBN.
var ErrItemNotFound = errors.New("catalog item not found")

// Import sources recorded in the audit trail.
const (
	SourceHTTP  = "http"
	SourceCLI   = "cli"
	SourceInbox = "inbox"
)

// ImportRequest is one decoded spreadsheet to import.
type ImportRequest struct {
	Sheet    *importers.Sheet
	Filename string
	Source   string
	DryRun   bool // parse and merge without saving
}

// SalesImportRequest is a sales sheet for one calendar day.
type SalesImportRequest struct {
	ImportRequest
	Date string
	Mode entities.SalesMode // empty uses the service default
}

// CatalogImportResult is the outcome of a catalog import.
type CatalogImportResult struct {
	catalog.MergeReport
	Rejected int    `json:"rejected"`
	DryRun   bool   `json:"dry_run,omitempty"`
	Message  string `json:"message"`
}

// SalesImportResult is the outcome of a sales import.
type SalesImportResult struct {
	ledger.SalesReport
	Rejected int                `json:"rejected"`
	Date     string             `json:"date"`
	Mode     entities.SalesMode `json:"mode"`
	DryRun   bool               `json:"dry_run,omitempty"`
	Message  string             `json:"message"`
}

// InventoryService runs every catalog and ledger operation as
// load snapshot, compute, save snapshot. Operations are serialized.
type InventoryService struct {
	mu               sync.Mutex
	repo             SnapshotRepository
	auditLogger      AuditLogger
	archiver         Archiver
	metrics          *metrics.Metrics
	defaultSalesMode entities.SalesMode
}

// NewInventoryService creates a service on top of repo.
func NewInventoryService(repo SnapshotRepository) *InventoryService {
	return &InventoryService{repo: repo, defaultSalesMode: entities.SalesModeReplace}
}

// SetAuditLogger sets the audit logger (optional).
func (s *InventoryService) SetAuditLogger(l AuditLogger) {
	s.auditLogger = l
}

// SetArchiver sets where parsed imports are archived (optional).
func (s *InventoryService) SetArchiver(a Archiver) {
	s.archiver = a
}

// SetMetrics sets the metrics recorder (optional).
func (s *InventoryService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetDefaultSalesMode sets the mode used when a sales request leaves it empty.
func (s *InventoryService) SetDefaultSalesMode(mode entities.SalesMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ledger.ErrInvalidMode, mode)
	}
	s.defaultSalesMode = mode
	return nil
}

// ImportCatalog merges a catalog sheet into the stored catalog.
func (s *InventoryService) ImportCatalog(ctx context.Context, req ImportRequest) (*CatalogImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.importCatalog(ctx, req)

	s.metrics.ImportFinished(metrics.KindCatalog, err)
	if s.auditLogger != nil {
		summary := audit.ImportSummary{Source: req.Source, Filename: req.Filename}
		if result != nil {
			summary.Counts = map[string]int{
				"added":    result.Added,
				"updated":  result.Updated,
				"enriched": result.Enriched,
				"rejected": result.Rejected,
			}
		}
		if !req.DryRun || err != nil {
			s.auditLogger.LogCatalogImport(summary, err)
		}
	}
	return result, err
}

func (s *InventoryService) importCatalog(ctx context.Context, req ImportRequest) (*CatalogImportResult, error) {
	parsed, err := importers.Parse(req.Sheet, importers.ModeCatalog)
	if err != nil {
		return nil, err
	}
	s.metrics.RowsRejected(metrics.KindCatalog, parsed.Rejected)

	items, err := s.repo.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	merged, report := catalog.Merge(items, parsed.Candidates)
	result := &CatalogImportResult{MergeReport: report, Rejected: parsed.Rejected, DryRun: req.DryRun}
	result.Message = fmt.Sprintf("Catalog updated: %d added, %d updated, %d enriched", report.Added, report.Updated, report.Enriched)
	if parsed.Rejected > 0 {
		result.Message += fmt.Sprintf(" (%d rows rejected)", parsed.Rejected)
	}
	if req.DryRun {
		return result, nil
	}

	if err := s.repo.SaveCatalog(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}
	s.metrics.CatalogMerged(report)
	s.archive(importers.ModeCatalog, req, parsed, result)

	log.Printf("[IMPORT] %s", result.Message)
	return result, nil
}

// ImportSales applies a sales sheet to the ledger for req.Date and
// decrements catalog stock. Both collections are saved together.
func (s *InventoryService) ImportSales(ctx context.Context, req SalesImportRequest) (*SalesImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Mode == "" {
		req.Mode = s.defaultSalesMode
	}
	result, err := s.importSales(ctx, req)

	s.metrics.ImportFinished(metrics.KindSales, err)
	if s.auditLogger != nil && (!req.DryRun || err != nil) {
		summary := audit.ImportSummary{Source: req.Source, Filename: req.Filename}
		if result != nil {
			summary.Counts = map[string]int{
				"items_updated":    result.ItemsUpdated,
				"stock_subtracted": result.StockSubtracted,
				"unmatched":        result.Unmatched,
				"rejected":         result.Rejected,
			}
			summary.Value = result.TotalValue.StringFixed(2)
		}
		s.auditLogger.LogSalesImport(req.Date, summary, err)
	}
	return result, err
}

func (s *InventoryService) importSales(ctx context.Context, req SalesImportRequest) (*SalesImportResult, error) {
	if err := ledger.ValidateDate(req.Date); err != nil {
		return nil, err
	}
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ledger.ErrInvalidMode, req.Mode)
	}

	parsed, err := importers.Parse(req.Sheet, importers.ModeSales)
	if err != nil {
		return nil, err
	}
	s.metrics.RowsRejected(metrics.KindSales, parsed.Rejected)

	items, err := s.repo.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	entries, err := s.repo.Ledger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily sales: %w", err)
	}

	out, err := ledger.ApplyDailySales(ledger.SalesInput{
		Ledger:     entries,
		Catalog:    items,
		Candidates: parsed.Candidates,
		Date:       req.Date,
		Mode:       req.Mode,
	})
	if err != nil {
		return nil, err
	}

	result := &SalesImportResult{
		SalesReport: out.Report,
		Rejected:    parsed.Rejected,
		Date:        req.Date,
		Mode:        req.Mode,
		DryRun:      req.DryRun,
	}
	result.Message = fmt.Sprintf("Sales for %s recorded: %d items, total %s, %d units removed from stock",
		req.Date, out.Report.ItemsUpdated, out.Report.TotalValue.StringFixed(2), out.Report.StockSubtracted)
	if out.Report.Unmatched > 0 {
		result.Message += fmt.Sprintf(", %d not in catalog", out.Report.Unmatched)
	}
	if parsed.Rejected > 0 {
		result.Message += fmt.Sprintf(" (%d rows rejected)", parsed.Rejected)
	}
	if req.DryRun {
		return result, nil
	}

	if err := s.repo.SaveAll(ctx, out.Catalog, out.Ledger); err != nil {
		return nil, fmt.Errorf("failed to save sales: %w", err)
	}
	s.metrics.SalesApplied(out.Report)
	s.archive(importers.ModeSales, req.ImportRequest, parsed, result)

	log.Printf("[IMPORT] %s", result.Message)
	return result, nil
}

// SetGoals sets the goals of one day and returns the resulting entry.
func (s *InventoryService) SetGoals(ctx context.Context, date string, minGoal, superGoal decimal.Decimal) (entities.DailySalesEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Ledger(ctx)
	if err != nil {
		return entities.DailySalesEntry{}, fmt.Errorf("failed to load daily sales: %w", err)
	}
	updated, err := ledger.SetGoals(entries, date, minGoal, superGoal)
	if err != nil {
		return entities.DailySalesEntry{}, err
	}
	if err := s.repo.SaveLedger(ctx, updated); err != nil {
		return entities.DailySalesEntry{}, fmt.Errorf("failed to save daily sales: %w", err)
	}

	if s.auditLogger != nil {
		s.auditLogger.LogGoals(date, minGoal, superGoal)
	}
	entry, _ := ledger.Entry(updated, date)
	return entry, nil
}

// ListCatalog returns the whole catalog.
func (s *InventoryService) ListCatalog(ctx context.Context) ([]entities.CatalogItem, error) {
	return s.repo.Catalog(ctx)
}

// SearchCatalog returns items whose title, author or ISBN match query.
func (s *InventoryService) SearchCatalog(ctx context.Context, query string) ([]entities.CatalogItem, error) {
	items, err := s.repo.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Search(items, query), nil
}

// FindByISBN returns the item for isbn or ErrItemNotFound.
func (s *InventoryService) FindByISBN(ctx context.Context, isbn string) (entities.CatalogItem, error) {
	items, err := s.repo.Catalog(ctx)
	if err != nil {
		return entities.CatalogItem{}, err
	}
	item, ok := catalog.FindByISBN(items, isbn)
	if !ok {
		return entities.CatalogItem{}, ErrItemNotFound
	}
	return item, nil
}

// LowStock returns items with at most threshold units, lowest first.
func (s *InventoryService) LowStock(ctx context.Context, threshold int) ([]entities.CatalogItem, error) {
	items, err := s.repo.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.LowStock(items, threshold), nil
}

// DeleteItem removes the item for isbn from the catalog.
func (s *InventoryService) DeleteItem(ctx context.Context, isbn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.Catalog(ctx)
	if err != nil {
		return err
	}
	item, ok := catalog.FindByISBN(items, isbn)
	if !ok {
		return ErrItemNotFound
	}
	remaining, _ := catalog.Remove(items, isbn)
	if err := s.repo.SaveCatalog(ctx, remaining); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	if s.auditLogger != nil {
		s.auditLogger.LogDelete(item.ISBN, item.DisplayTitle())
	}
	return nil
}

// Ledger returns the daily entries between from and to (inclusive, either
// may be empty), oldest first.
func (s *InventoryService) Ledger(ctx context.Context, from, to string) ([]entities.DailySalesEntry, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if err := ledger.ValidateDate(d); err != nil {
			return nil, err
		}
	}
	entries, err := s.repo.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Between(entries, from, to), nil
}

// ApplyEnrichment merges looked-up metadata through the same merge as
// spreadsheet imports.
func (s *InventoryService) ApplyEnrichment(ctx context.Context, candidates []entities.CandidateRecord) (catalog.MergeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.Catalog(ctx)
	if err != nil {
		return catalog.MergeReport{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	merged, report := catalog.Merge(items, candidates)
	if err := s.repo.SaveCatalog(ctx, merged); err != nil {
		return catalog.MergeReport{}, fmt.Errorf("failed to save catalog: %w", err)
	}
	s.metrics.CatalogMerged(report)
	return report, nil
}

type importArchive struct {
	Filename   string                     `json:"filename,omitempty"`
	Source     string                     `json:"source,omitempty"`
	HeaderRow  int                        `json:"header_row"`
	Total      int                        `json:"total_rows"`
	Candidates []entities.CandidateRecord `json:"candidates"`
	Result     any                        `json:"result"`
}

func (s *InventoryService) archive(mode importers.Mode, req ImportRequest, parsed importers.ParseResult, result any) {
	if s.archiver == nil {
		return
	}
	record := importArchive{
		Filename:   req.Filename,
		Source:     req.Source,
		Total:      parsed.Total,
		Candidates: parsed.Candidates,
		Result:     result,
	}
	if parsed.Header != nil {
		record.HeaderRow = parsed.Header.Row + 1
	}
	if _, err := s.archiver.Save(string(mode), record); err != nil {
		log.Printf("[IMPORT] Failed to archive %s import: %v", mode, err)
	}
}
