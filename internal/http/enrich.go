package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/normalize"
	"github.com/mrlokans/bookstore-assistant/internal/tasks"
)

// SyncStatusReader reads enrichment progress.
type SyncStatusReader interface {
	GetSyncProgress() (*entities.SyncProgress, error)
}

// EnrichController starts catalog enrichment in the background.
type EnrichController struct {
	client   TaskClient
	progress SyncStatusReader
}

func NewEnrichController(client TaskClient, progress SyncStatusReader) *EnrichController {
	return &EnrichController{client: client, progress: progress}
}

// EnrichRequest narrows an enrichment run. Both fields are optional.
type EnrichRequest struct {
	ISBN  string `json:"isbn"`
	Limit int    `json:"limit" binding:"gte=0"`
}

// Enqueue handles POST /api/catalog/enrich
func (ec *EnrichController) Enqueue(c *gin.Context) {
	var req EnrichRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	task := tasks.EnrichCatalogTask{Limit: req.Limit}
	if req.ISBN != "" {
		task.ISBN = normalize.NormalizeISBN(req.ISBN)
		if task.ISBN == "" {
			respondBadRequest(c, "invalid isbn")
			return
		}
	}

	id, err := ec.client.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue enrichment")
		return
	}
	respondAccepted(c, "enrichment enqueued", gin.H{"task_id": id})
}

// Status handles GET /api/catalog/enrich/status
func (ec *EnrichController) Status(c *gin.Context) {
	if ec.progress == nil {
		c.JSON(http.StatusOK, gin.H{"status": "idle"})
		return
	}

	progress, err := ec.progress.GetSyncProgress()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"status": "idle"})
		return
	}
	if err != nil {
		respondInternalError(c, err, "enrichment status")
		return
	}
	c.JSON(http.StatusOK, progress)
}
