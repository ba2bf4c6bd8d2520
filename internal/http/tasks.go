package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore-assistant/internal/tasks"
)

// TaskClient enqueues background tasks and reports their status.
type TaskClient interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles task queue management endpoints.
type TasksController struct {
	client  TaskClient
	cleanup tasks.CleanupAuditTask
}

// NewTasksController creates a new TasksController. cleanup is the task
// enqueued by POST /api/tasks/cleanup_audit/run.
func NewTasksController(client TaskClient, cleanup tasks.CleanupAuditTask) *TasksController {
	return &TasksController{client: client, cleanup: cleanup}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// RunTaskRequest is the optional body for running a task.
type RunTaskRequest struct {
	ISBN  string `json:"isbn,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of available task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "enrich_catalog",
			Description: "Fill missing descriptions from OpenLibrary (optionally a single ISBN)",
			Queue:       tasks.EnrichCatalogTask{}.Config().Name,
		},
		{
			Type:        "cleanup_audit",
			Description: "Remove audit events and import archives past retention",
			Queue:       tasks.CleanupAuditTask{}.Config().Name,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusName(status),
	})
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	var task backlite.Task
	switch taskType {
	case "enrich_catalog":
		task = tasks.EnrichCatalogTask{ISBN: req.ISBN, Limit: req.Limit}
	case "cleanup_audit":
		task = tc.cleanup
	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	id, err := tc.client.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	respondAccepted(c, "task enqueued", gin.H{"task_id": id, "type": taskType})
}
