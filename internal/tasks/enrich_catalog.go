package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore-assistant/internal/catalog"
	"github.com/mrlokans/bookstore-assistant/internal/metadata"
	"github.com/mrlokans/bookstore-assistant/internal/metrics"
)

// CatalogEnricher looks up metadata for catalog items.
type CatalogEnricher interface {
	EnrichMissing(ctx context.Context, limit int) (*metadata.BulkEnrichmentResult, error)
	EnrichISBN(ctx context.Context, isbn string) (catalog.MergeReport, error)
}

// EnrichmentAuditor records enrichment runs.
type EnrichmentAuditor interface {
	LogEnrich(description string, counts map[string]int, err error)
}

// EnrichCatalogTask fills missing descriptions from OpenLibrary. With ISBN
// set only that identifier is looked up.
type EnrichCatalogTask struct {
	ISBN  string `json:"isbn,omitempty"`
	Limit int    `json:"limit,omitempty"` // 0 = every unenriched item
}

// Config returns the queue configuration for enrichment tasks.
func (t EnrichCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_catalog",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichCatalogProcessor creates a processor function for EnrichCatalogTask.
// auditor and m may be nil.
func EnrichCatalogProcessor(enricher CatalogEnricher, auditor EnrichmentAuditor, m *metrics.Metrics) backlite.QueueProcessor[EnrichCatalogTask] {
	return func(ctx context.Context, task EnrichCatalogTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		if task.ISBN != "" {
			report, err := enricher.EnrichISBN(ctx, task.ISBN)
			if auditor != nil {
				auditor.LogEnrich("Looked up "+task.ISBN, map[string]int{"added": report.Added, "updated": report.Updated, "enriched": report.Enriched}, err)
			}
			if errors.Is(err, metadata.ErrNotFound) {
				log.Printf("[TASK] No metadata found for %s", task.ISBN)
				m.EnrichmentFinished(0, 1, 0)
				return nil
			}
			if err != nil {
				m.EnrichmentFinished(0, 0, 1)
				return fmt.Errorf("enrich %s: %w", task.ISBN, err)
			}
			m.EnrichmentFinished(report.Enriched, 0, 0)
			log.Printf("[TASK] Enriched %s: %d added, %d updated", task.ISBN, report.Added, report.Updated)
			return nil
		}

		result, err := enricher.EnrichMissing(ctx, task.Limit)
		if errors.Is(err, metadata.ErrSyncRunning) {
			log.Printf("[TASK] Catalog enrichment skipped: already running")
			return nil
		}
		if result != nil {
			m.EnrichmentFinished(result.Enriched, result.Skipped, result.Failed)
			if auditor != nil {
				auditor.LogEnrich(
					fmt.Sprintf("Enrichment pass over %d items", result.TotalItems),
					map[string]int{"looked_up": result.LookedUp, "enriched": result.Enriched, "skipped": result.Skipped, "failed": result.Failed},
					err)
			}
		}
		if err != nil {
			return fmt.Errorf("enrich catalog: %w", err)
		}

		log.Printf("[TASK] Enrichment complete: %d total, %d enriched, %d skipped, %d failed",
			result.TotalItems, result.Enriched, result.Skipped, result.Failed)
		return nil
	}
}

// NewEnrichCatalogQueue creates a backlite queue for enrichment tasks.
func NewEnrichCatalogQueue(enricher CatalogEnricher, auditor EnrichmentAuditor, m *metrics.Metrics) backlite.Queue {
	return backlite.NewQueue(EnrichCatalogProcessor(enricher, auditor, m))
}
