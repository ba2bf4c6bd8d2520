package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/importers"
	"github.com/mrlokans/bookstore-assistant/internal/ledger"
	"github.com/mrlokans/bookstore-assistant/internal/services"
	"github.com/mrlokans/bookstore-assistant/internal/validation"
)

// Subdirectories, next to the imported file, that settled files are moved to.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// SpreadsheetImporter imports decoded sheets.
type SpreadsheetImporter interface {
	ImportCatalog(ctx context.Context, req services.ImportRequest) (*services.CatalogImportResult, error)
	ImportSales(ctx context.Context, req services.SalesImportRequest) (*services.SalesImportResult, error)
}

// ImportFileTask imports a spreadsheet from disk.
type ImportFileTask struct {
	Path      string         `json:"path"`
	Kind      importers.Mode `json:"kind"`
	Date      string         `json:"date,omitempty"` // sales only
	Mode      string         `json:"mode,omitempty"` // sales only, empty uses the default
	SheetName string         `json:"sheet_name,omitempty"`
	Source    string         `json:"source,omitempty"`
}

// Config returns the queue configuration for file import tasks.
func (t ImportFileTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_file",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   72 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportFileProcessor creates a processor function for ImportFileTask.
// A file that can never import (bad layout, no data, bad date) is moved to
// FailedDir and the task succeeds; other errors are retried.
func ImportFileProcessor(importer SpreadsheetImporter) backlite.QueueProcessor[ImportFileTask] {
	return func(ctx context.Context, task ImportFileTask) error {
		if importer == nil {
			return fmt.Errorf("importer not configured")
		}

		message, err := importFile(ctx, importer, task)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("[TASK] Import skipped, %s no longer exists", task.Path)
			return nil
		case isPermanent(err):
			log.Printf("[TASK] Import of %s failed: %v", task.Path, err)
			if moveErr := settle(task.Path, FailedDir); moveErr != nil {
				log.Printf("[TASK] Failed to move %s: %v", task.Path, moveErr)
			}
			return nil
		case err != nil:
			return fmt.Errorf("import %s: %w", task.Path, err)
		}

		log.Printf("[TASK] Imported %s: %s", filepath.Base(task.Path), message)
		if err := settle(task.Path, ProcessedDir); err != nil {
			log.Printf("[TASK] Failed to move %s: %v", task.Path, err)
		}
		return nil
	}
}

// NewImportFileQueue creates a backlite queue for file import tasks.
func NewImportFileQueue(importer SpreadsheetImporter) backlite.Queue {
	return backlite.NewQueue(ImportFileProcessor(importer))
}

func importFile(ctx context.Context, importer SpreadsheetImporter, task ImportFileTask) (string, error) {
	f, err := os.Open(task.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sheet, err := importers.DecodeFile(task.Path, f, task.SheetName)
	if err != nil {
		return "", err
	}

	req := services.ImportRequest{
		Sheet:    sheet,
		Filename: filepath.Base(task.Path),
		Source:   task.Source,
	}

	switch task.Kind {
	case importers.ModeCatalog:
		result, err := importer.ImportCatalog(ctx, req)
		if err != nil {
			return "", err
		}
		return result.Message, nil
	case importers.ModeSales:
		result, err := importer.ImportSales(ctx, services.SalesImportRequest{
			ImportRequest: req,
			Date:          task.Date,
			Mode:          entities.SalesMode(task.Mode),
		})
		if err != nil {
			return "", err
		}
		return result.Message, nil
	default:
		return "", fmt.Errorf("%w: unknown import kind %q", importers.ErrUnsupportedFormat, task.Kind)
	}
}

func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	var validationErr *validation.Error
	return errors.Is(err, importers.ErrSchemaNotFound) ||
		errors.Is(err, importers.ErrEmptyInput) ||
		errors.Is(err, importers.ErrUnsupportedFormat) ||
		errors.Is(err, ledger.ErrInvalidDate) ||
		errors.Is(err, ledger.ErrInvalidMode) ||
		errors.As(err, &validationErr)
}

// settle moves path into sub, a sibling directory. An existing file with the
// same name gets a timestamp prefix.
func settle(path, sub string) error {
	dir := filepath.Join(filepath.Dir(path), sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	target := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(dir, time.Now().Format("20060102-150405-")+filepath.Base(path))
	}
	return os.Rename(path, target)
}
