package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore-assistant/internal/config"
	syncrepo "github.com/mrlokans/bookstore-assistant/internal/database/sync"
	http_controllers "github.com/mrlokans/bookstore-assistant/internal/http"
	"github.com/mrlokans/bookstore-assistant/internal/inbox"
	"github.com/mrlokans/bookstore-assistant/internal/metadata"
	"github.com/mrlokans/bookstore-assistant/internal/scheduler"
	"github.com/mrlokans/bookstore-assistant/internal/tasks"
)

// auditCleanupSchedule runs retention cleanup daily at 04:15.
const auditCleanupSchedule = "15 4 * * *"

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work after the last request has finished
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookstore Assistant v%s", version)

	stack, err := OpenStack(cfg, false)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := stack.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	// Enrichment goes through the inventory service, so looked-up metadata
	// is merged like any spreadsheet row.
	syncProgress := syncrepo.NewRepository(stack.DB.DB)
	openLibrary := metadata.NewOpenLibraryClient(cfg.Enrichment.BaseURL, cfg.Enrichment.RequestInterval)
	enricher := metadata.NewEnricher(openLibrary, stack.Inventory)
	enricher.SetProgressReporter(syncProgress)

	cleanupTask := tasks.CleanupAuditTask{
		RetentionDays: cfg.Audit.RetentionDays,
		ArchiveDir:    cfg.Import.ArchiveDir,
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var taskScheduler *scheduler.TaskScheduler
	var watcher *inbox.Watcher

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichCatalogQueue(enricher, stack.Audit, stack.Metrics),
			tasks.NewImportFileQueue(stack.Inventory),
			tasks.NewCleanupAuditQueue(stack.Audit),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		taskScheduler = newScheduler(cfg, taskClient, cleanupTask)
		taskScheduler.Start(taskCtx)

		if cfg.Import.InboxDir != "" {
			watcher, err = inbox.NewWatcher(cfg.Import.InboxDir, taskClient, inbox.Options{
				SalesMode: cfg.Import.DefaultSalesMode,
				SheetName: cfg.Import.SheetName,
			})
			if err != nil {
				log.Fatalf("Failed to create inbox watcher: %v", err)
			}
			if err := watcher.Start(taskCtx); err != nil {
				log.Fatalf("Failed to start inbox watcher: %v", err)
			}
		}
	} else {
		log.Printf("Task queue disabled: enrichment, inbox and scheduled cleanup are off")
	}

	routerCfg := http_controllers.RouterConfig{
		Inventory:         stack.Inventory,
		Database:          stack.DB,
		Store:             stack.Store,
		AuditReader:       stack.Audit,
		MetricsHandler:    stack.Metrics.Handler(),
		SyncProgress:      syncProgress,
		CleanupTask:       cleanupTask,
		MaxUploadMB:       cfg.Import.MaxUploadMB,
		SheetName:         cfg.Import.SheetName,
		LowStockThreshold: cfg.Catalog.LowStockThreshold,
		Version:           version,
	}
	// A nil *tasks.Client must stay a nil interface.
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if watcher != nil {
			if err := watcher.Stop(); err != nil {
				log.Printf("Error stopping inbox watcher: %v", err)
			}
		}
		if taskScheduler != nil {
			taskScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

func newScheduler(cfg *config.Config, enqueuer scheduler.TaskEnqueuer, cleanup tasks.CleanupAuditTask) *scheduler.TaskScheduler {
	s := scheduler.NewTaskScheduler(enqueuer)

	if cfg.Enrichment.Enabled {
		limit := cfg.Enrichment.BatchLimit
		err := s.Add(scheduler.Job{
			Name:     "enrich_catalog",
			Schedule: cfg.Enrichment.Schedule,
			NewTask:  func() backlite.Task { return tasks.EnrichCatalogTask{Limit: limit} },
		})
		if err != nil {
			log.Printf("Catalog enrichment not scheduled: %v", err)
		}
	}

	err := s.Add(scheduler.Job{
		Name:     "cleanup_audit",
		Schedule: auditCleanupSchedule,
		NewTask:  func() backlite.Task { return cleanup },
	})
	if err != nil {
		log.Printf("Audit cleanup not scheduled: %v", err)
	}

	return s
}
