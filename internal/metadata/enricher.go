package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mrlokans/bookstore-assistant/internal/catalog"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
)

// ErrSyncRunning is returned when another enrichment pass is in progress.
var ErrSyncRunning = errors.New("catalog enrichment is already in progress")

// flushEvery is how many looked-up items are merged and saved at a time, so
// an interrupted pass keeps what it already fetched.
const flushEvery = 25

// MetadataProvider fetches book metadata by identifier.
type MetadataProvider interface {
	LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error)
}

// CatalogStore is the slice of the inventory service the enricher needs.
// Enrichment results go through the same merge as spreadsheet imports.
type CatalogStore interface {
	ListCatalog(ctx context.Context) ([]entities.CatalogItem, error)
	ApplyEnrichment(ctx context.Context, candidates []entities.CandidateRecord) (catalog.MergeReport, error)
}

// ProgressReporter reports sync progress updates.
type ProgressReporter interface {
	StartSync(totalItems int) error
	UpdateProgress(counts entities.SyncCounts, currentItem string) error
	CompleteSync(succeeded bool, errorMsg string) error
	IsSyncRunning() (bool, error)
}

// Enricher fills missing descriptions and authors from an external source.
type Enricher struct {
	provider         MetadataProvider
	store            CatalogStore
	progressReporter ProgressReporter
}

// NewEnricher creates a new Enricher.
func NewEnricher(provider MetadataProvider, store CatalogStore) *Enricher {
	return &Enricher{provider: provider, store: store}
}

// SetProgressReporter sets the progress reporter for bulk operations (optional).
func (e *Enricher) SetProgressReporter(reporter ProgressReporter) {
	e.progressReporter = reporter
}

// BulkEnrichmentResult contains the summary of an enrichment pass.
type BulkEnrichmentResult struct {
	TotalItems int      `json:"total_items"`
	LookedUp   int      `json:"looked_up"`
	Enriched   int      `json:"enriched"` // items that gained a description
	Updated    int      `json:"updated"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// ToCandidate converts metadata into a candidate record. The first subject
// becomes the genre.
func (m *BookMetadata) ToCandidate() entities.CandidateRecord {
	c := entities.CandidateRecord{
		ISBN:        m.ISBN,
		Title:       m.Title,
		Author:      m.Author,
		Description: m.Description,
	}
	for _, subject := range m.Subjects {
		if s := strings.TrimSpace(subject); s != "" {
			c.Genre = s
			break
		}
	}
	return c
}

// EnrichISBN looks up a single identifier and merges the result.
func (e *Enricher) EnrichISBN(ctx context.Context, isbn string) (catalog.MergeReport, error) {
	metadata, err := e.provider.LookupISBN(ctx, isbn)
	if err != nil {
		return catalog.MergeReport{}, fmt.Errorf("metadata lookup failed: %w", err)
	}
	return e.store.ApplyEnrichment(ctx, []entities.CandidateRecord{metadata.ToCandidate()})
}

// EnrichMissing looks up every item that has an identifier but no
// description. limit <= 0 means no limit.
func (e *Enricher) EnrichMissing(ctx context.Context, limit int) (*BulkEnrichmentResult, error) {
	if e.progressReporter != nil {
		running, err := e.progressReporter.IsSyncRunning()
		if err != nil {
			return nil, fmt.Errorf("check sync status: %w", err)
		}
		if running {
			return nil, ErrSyncRunning
		}
	}

	items, err := e.store.ListCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	targets := catalog.Unenriched(items)
	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}

	result := &BulkEnrichmentResult{TotalItems: len(targets)}

	if e.progressReporter != nil {
		if err := e.progressReporter.StartSync(len(targets)); err != nil {
			return nil, fmt.Errorf("start sync progress: %w", err)
		}
	}

	var pending []entities.CandidateRecord
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		report, err := e.store.ApplyEnrichment(ctx, pending)
		if err != nil {
			return err
		}
		result.Enriched += report.Enriched
		result.Updated += report.Updated
		pending = pending[:0]
		return nil
	}

	for i, item := range targets {
		if err := ctx.Err(); err != nil {
			_ = flush()
			e.complete(false, "operation cancelled")
			return result, err
		}

		if e.progressReporter != nil {
			_ = e.progressReporter.UpdateProgress(e.counts(i, result), item.DisplayTitle())
		}

		metadata, err := e.provider.LookupISBN(ctx, item.ISBN)
		result.LookedUp++
		switch {
		case errors.Is(err, ErrNotFound):
			result.Skipped++
			continue
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.ISBN, err))
			continue
		}

		candidate := metadata.ToCandidate()
		if candidate.Description == "" && candidate.Author == "" && candidate.Title == "" {
			result.Skipped++
			continue
		}
		pending = append(pending, candidate)

		if len(pending) >= flushEvery {
			if err := flush(); err != nil {
				e.complete(false, err.Error())
				return result, fmt.Errorf("apply enrichment: %w", err)
			}
		}
	}

	if err := flush(); err != nil {
		e.complete(false, err.Error())
		return result, fmt.Errorf("apply enrichment: %w", err)
	}

	errorMsg := ""
	if len(result.Errors) > 0 {
		errorMsg = fmt.Sprintf("%d errors occurred", len(result.Errors))
	}
	e.complete(result.Failed == 0, errorMsg)

	log.Printf("[ENRICH] Looked up %d items: %d enriched, %d skipped, %d failed",
		result.LookedUp, result.Enriched, result.Skipped, result.Failed)

	return result, nil
}

func (e *Enricher) counts(processed int, result *BulkEnrichmentResult) entities.SyncCounts {
	return entities.SyncCounts{
		Processed: processed,
		Succeeded: result.Enriched,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
	}
}

func (e *Enricher) complete(succeeded bool, msg string) {
	if e.progressReporter != nil {
		_ = e.progressReporter.CompleteSync(succeeded, msg)
	}
}
