package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/importers"
	"github.com/mrlokans/bookstore-assistant/internal/services"
)

// SpreadsheetImporter runs uploaded sheets through the inventory service.
type SpreadsheetImporter interface {
	ImportCatalog(ctx context.Context, req services.ImportRequest) (*services.CatalogImportResult, error)
	ImportSales(ctx context.Context, req services.SalesImportRequest) (*services.SalesImportResult, error)
}

// ImportController accepts catalog and sales spreadsheets as multipart uploads
// in the "file" field.
type ImportController struct {
	importer       SpreadsheetImporter
	maxUploadBytes int64
	sheetName      string
	now            func() time.Time
}

func NewImportController(importer SpreadsheetImporter, maxUploadMB int64, sheetName string) *ImportController {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &ImportController{
		importer:       importer,
		maxUploadBytes: maxUploadMB << 20,
		sheetName:      sheetName,
		now:            time.Now,
	}
}

// ImportCatalog handles POST /api/import/catalog
// Optional fields: dry_run, sheet.
func (ic *ImportController) ImportCatalog(c *gin.Context) {
	req, ok := ic.readUpload(c)
	if !ok {
		return
	}

	result, err := ic.importer.ImportCatalog(c.Request.Context(), req)
	if err != nil {
		respondImportError(c, err, "catalog import")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ImportSales handles POST /api/import/sales
// Optional fields: date (YYYY-MM-DD, default today), mode (replace|add,
// default from config), dry_run, sheet.
func (ic *ImportController) ImportSales(c *gin.Context) {
	req, ok := ic.readUpload(c)
	if !ok {
		return
	}

	date := formValue(c, "date")
	if date == "" {
		date = ic.now().Format("2006-01-02")
	}

	result, err := ic.importer.ImportSales(c.Request.Context(), services.SalesImportRequest{
		ImportRequest: req,
		Date:          date,
		Mode:          entities.SalesMode(formValue(c, "mode")),
	})
	if err != nil {
		respondImportError(c, err, "sales import")
		return
	}
	c.JSON(http.StatusOK, result)
}

// readUpload decodes the uploaded file into a sheet. It responds and returns
// false on any failure.
func (ic *ImportController) readUpload(c *gin.Context) (services.ImportRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, "file is too large")
			return services.ImportRequest{}, false
		}
		respondBadRequest(c, "file is required")
		return services.ImportRequest{}, false
	}

	dryRun, ok := parseBoolQuery(c, "dry_run")
	if !ok {
		return services.ImportRequest{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return services.ImportRequest{}, false
	}
	defer file.Close()

	sheetName := formValue(c, "sheet")
	if sheetName == "" {
		sheetName = ic.sheetName
	}

	sheet, err := importers.DecodeFile(fileHeader.Filename, file, sheetName)
	if err != nil {
		if errors.Is(err, importers.ErrUnsupportedFormat) {
			respondImportError(c, err, "decode upload")
			return services.ImportRequest{}, false
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "could not read file: " + err.Error()})
		return services.ImportRequest{}, false
	}

	return services.ImportRequest{
		Sheet:    sheet,
		Filename: fileHeader.Filename,
		Source:   services.SourceHTTP,
		DryRun:   dryRun,
	}, true
}

// formValue reads a multipart field, falling back to the query string.
func formValue(c *gin.Context, name string) string {
	if v := c.PostForm(name); v != "" {
		return v
	}
	return c.Query(name)
}
