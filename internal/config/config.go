package config

import (
	"time"

	"github.com/spf13/viper"
)

type StoreBackend string

const (
	StoreBackendSQLite StoreBackend = "sqlite" // Collections in the main database (default)
	StoreBackendBadger StoreBackend = "badger" // Collections in a Badger directory
)

type (
	Config struct {
		HTTP
		Global
		Database
		Store
		Import
		Catalog
		Enrichment
		Audit
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Store struct {
		Backend    StoreBackend
		BadgerPath string
	}
	Import struct {
		InboxDir         string // Watched directory with catalog/ and sales/ subdirectories; empty disables
		ArchiveDir       string // Parsed imports are archived here as JSON; empty disables
		MaxUploadMB      int64
		DefaultSalesMode string // "replace" or "add"
		SheetName        string // Workbook sheet to read; empty reads the first one
	}
	Catalog struct {
		LowStockThreshold int
	}
	Enrichment struct {
		Enabled         bool
		Schedule        string // Cron format: "30 3 * * *" = daily at 03:30
		BaseURL         string
		RequestInterval time.Duration // Minimum delay between OpenLibrary requests
		BatchLimit      int           // Items looked up per pass, 0 = all
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 90)
	}
	// Tasks configures the backlite worker pool. Attempts, backoff and
	// retention are set per queue by each task type.
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration // Stuck tasks go back to the queue after this
		CleanupInterval time.Duration // How often expired tasks are purged
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("store_backend", string(StoreBackendSQLite))
	v.SetDefault("badger_path", DefaultBadgerPath)

	v.SetDefault("inbox_dir", "")
	v.SetDefault("import_archive_dir", "")
	v.SetDefault("max_upload_mb", 20)
	v.SetDefault("default_sales_mode", "replace")
	v.SetDefault("import_sheet_name", "")

	v.SetDefault("low_stock_threshold", 2)

	// Enrichment defaults
	v.SetDefault("enrichment_enabled", false)
	v.SetDefault("enrichment_schedule", "30 3 * * *")
	v.SetDefault("enrichment_base_url", DefaultOpenLibraryURL)
	v.SetDefault("enrichment_request_interval", "1s")
	v.SetDefault("enrichment_batch_limit", 200)

	v.SetDefault("audit_retention_days", 90)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Store: Store{
			Backend:    StoreBackend(v.GetString("STORE_BACKEND")),
			BadgerPath: v.GetString("BADGER_PATH"),
		},
		Import: Import{
			InboxDir:         v.GetString("INBOX_DIR"),
			ArchiveDir:       v.GetString("IMPORT_ARCHIVE_DIR"),
			MaxUploadMB:      v.GetInt64("MAX_UPLOAD_MB"),
			DefaultSalesMode: v.GetString("DEFAULT_SALES_MODE"),
			SheetName:        v.GetString("IMPORT_SHEET_NAME"),
		},
		Catalog: Catalog{
			LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
		},
		Enrichment: Enrichment{
			Enabled:         v.GetBool("ENRICHMENT_ENABLED"),
			Schedule:        v.GetString("ENRICHMENT_SCHEDULE"),
			BaseURL:         v.GetString("ENRICHMENT_BASE_URL"),
			RequestInterval: v.GetDuration("ENRICHMENT_REQUEST_INTERVAL"),
			BatchLimit:      v.GetInt("ENRICHMENT_BATCH_LIMIT"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
