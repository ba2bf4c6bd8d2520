package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	// Multipart parts beyond this are spooled to disk.
	if cfg.MaxUploadMB > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadMB << 20
	}

	health := NewHealthController(cfg.Database, cfg.Store, cfg.Version)
	catalogController := NewCatalogController(cfg.Inventory, cfg.LowStockThreshold)
	importController := NewImportController(cfg.Inventory, cfg.MaxUploadMB, cfg.SheetName)
	salesController := NewSalesController(cfg.Inventory)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := router.Group("/api")

	// Catalog endpoints
	api.GET("/catalog", catalogController.ListItems)
	api.GET("/catalog/low-stock", catalogController.LowStock)
	api.GET("/catalog/:isbn", catalogController.GetItem)
	api.DELETE("/catalog/:isbn", catalogController.DeleteItem)

	// Import endpoints
	api.POST("/import/catalog", importController.ImportCatalog)
	api.POST("/import/sales", importController.ImportSales)

	// Sales ledger endpoints
	api.GET("/sales", salesController.GetLedger)
	api.PUT("/sales/:date/goals", salesController.SetGoals)

	// Enrichment and task management endpoints
	if cfg.TaskClient != nil {
		enrichController := NewEnrichController(cfg.TaskClient, cfg.SyncProgress)
		api.POST("/catalog/enrich", enrichController.Enqueue)
		api.GET("/catalog/enrich/status", enrichController.Status)

		tasksController := NewTasksController(cfg.TaskClient, cfg.CleanupTask)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	// Audit endpoints
	if cfg.AuditReader != nil {
		auditController := NewAuditController(cfg.AuditReader)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	return router
}
