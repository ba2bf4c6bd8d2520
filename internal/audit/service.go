package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore-assistant/internal/database/audit"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every LogAsync call has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// ImportSummary is what an import reports to the audit trail.
type ImportSummary struct {
	Source   string         `json:"source"` // http, cli, inbox
	Filename string         `json:"filename,omitempty"`
	Counts   map[string]int `json:"counts,omitempty"`
	Value    string         `json:"total_value,omitempty"`
}

// LogCatalogImport records a catalog import.
func (s *Service) LogCatalogImport(summary ImportSummary, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCatalogImport,
		Action:      summary.Source + "_catalog_import",
		Description: describeImport("catalog", summary),
		EntityType:  entities.CollectionKeyCatalog,
		Status:      entities.AuditStatusSuccess,
	}
	s.finish(event, summary, err)
}

// LogSalesImport records a sales import for date.
func (s *Service) LogSalesImport(date string, summary ImportSummary, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSalesImport,
		Action:      summary.Source + "_sales_import",
		Description: describeImport("sales for "+date, summary),
		EntityType:  entities.CollectionKeyDailySales,
		EntityKey:   date,
		Status:      entities.AuditStatusSuccess,
	}
	s.finish(event, summary, err)
}

// LogEnrich records an enrichment pass or single lookup.
func (s *Service) LogEnrich(description string, counts map[string]int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventEnrich,
		Action:      "catalog_enrich",
		Description: description,
		EntityType:  entities.CollectionKeyCatalog,
		Status:      entities.AuditStatusSuccess,
	}
	s.finish(event, ImportSummary{Counts: counts}, err)
}

// LogGoals records a goal change for date.
func (s *Service) LogGoals(date string, minGoal, superGoal decimal.Decimal) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventGoals,
		Action:      "set_goals",
		Description: fmt.Sprintf("Goals for %s set to %s / %s", date, minGoal.StringFixed(2), superGoal.StringFixed(2)),
		EntityType:  entities.CollectionKeyDailySales,
		EntityKey:   date,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogDelete records the removal of a catalog item.
func (s *Service) LogDelete(isbn, title string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventDelete,
		Action:      "item_delete",
		Description: "Deleted catalog item: " + title,
		EntityType:  entities.CollectionKeyCatalog,
		EntityKey:   isbn,
		Status:      entities.AuditStatusSuccess,
	})
}

// GetEvents retrieves paginated audit events. An empty eventType returns all.
func (s *Service) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(eventType, limit, offset)
}

// GetEventsForEntity returns the history of one catalog item or ledger day.
func (s *Service) GetEventsForEntity(entityKey string) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity(entityKey)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func (s *Service) finish(event *entities.AuditEvent, summary ImportSummary, err error) {
	if mdBytes, e := json.Marshal(summary); e == nil {
		event.Metadata = string(mdBytes)
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

func describeImport(what string, summary ImportSummary) string {
	desc := "Imported " + what
	if summary.Filename != "" {
		desc += " from " + summary.Filename
	}
	return truncate(desc, 500)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
