package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore-assistant/internal/importers"
	"github.com/mrlokans/bookstore-assistant/internal/ledger"
	"github.com/mrlokans/bookstore-assistant/internal/services"
	"github.com/mrlokans/bookstore-assistant/internal/validation"
)

// Machine-readable error codes.
const (
	CodeSchemaNotFound    = "SCHEMA_NOT_FOUND"
	CodeEmptyInput        = "EMPTY_INPUT"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (missing columns, field errors)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondImportError maps errors from the import pipeline and the service
// to a status code. Anything unrecognised is a 500.
func respondImportError(c *gin.Context, err error, context string) {
	var schemaErr *importers.SchemaNotFoundError
	var validationErr *validation.Error

	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   err.Error(),
			Code:    CodeSchemaNotFound,
			Details: gin.H{"missing": schemaErr.Missing, "scanned_rows": schemaErr.Scanned},
		})
	case errors.Is(err, importers.ErrEmptyInput):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: CodeEmptyInput})
	case errors.Is(err, importers.ErrUnsupportedFormat):
		c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{Error: err.Error(), Code: CodeUnsupportedFormat})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "snapshot validation failed",
			Code:    CodeValidationFailed,
			Details: validationErr.Fields,
		})
	case errors.Is(err, ledger.ErrInvalidDate),
		errors.Is(err, ledger.ErrInvalidMode),
		errors.Is(err, ledger.ErrInvalidGoal):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidArgument})
	case errors.Is(err, services.ErrItemNotFound):
		respondNotFound(c, "catalog item")
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseBoolQuery reads a boolean query parameter. A missing value is false;
// an unparseable one responds with a 400 error and returns false, false.
func parseBoolQuery(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		raw = c.PostForm(name)
	}
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return false, false
	}
	return v, true
}

// parseIntQuery reads a non-negative integer query parameter, falling back
// to def when absent.
func parseIntQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}
