package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore-assistant/internal/collections"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/metrics"
	"github.com/mrlokans/bookstore-assistant/internal/services"
	"github.com/mrlokans/bookstore-assistant/internal/tasks"
)

const catalogCSV = "ISBN;Título;Autor;Preço;Estoque\n" +
	"9788573210452;Dom Casmurro;Machado de Assis;29,90;5\n" +
	"9788535914849;Iracema;José de Alencar;24,50;1\n"

type fakeTaskClient struct {
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
}

func (f *fakeTaskClient) Enqueue(task backlite.Task) (string, error) {
	f.enqueued = append(f.enqueued, task)
	return "task-1", nil
}

func (f *fakeTaskClient) Status(_ context.Context, id string) (backlite.TaskStatus, error) {
	if s, ok := f.statuses[id]; ok {
		return s, nil
	}
	return backlite.TaskStatusNotFound, nil
}

type fakeAuditReader struct {
	events []entities.AuditEvent
}

func (f *fakeAuditReader) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var out []entities.AuditEvent
	for _, e := range f.events {
		if eventType == "" || e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAuditReader) GetEventsForEntity(key string) ([]entities.AuditEvent, error) {
	var out []entities.AuditEvent
	for _, e := range f.events {
		if e.EntityKey == key {
			out = append(out, e)
		}
	}
	return out, nil
}

type testServer struct {
	router *gin.Engine
	tasks  *fakeTaskClient
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := collections.NewMemoryStore()
	svc := services.NewInventoryService(collections.NewRepository(store))
	m := metrics.New()
	svc.SetMetrics(m)

	taskClient := &fakeTaskClient{statuses: map[string]backlite.TaskStatus{"done": backlite.TaskStatusSuccess}}
	router := NewRouter(RouterConfig{
		Inventory:      svc,
		Store:          store,
		MetricsHandler: m.Handler(),
		TaskClient:     taskClient,
		CleanupTask:    tasks.CleanupAuditTask{RetentionDays: 30},
		AuditReader: &fakeAuditReader{events: []entities.AuditEvent{
			{EventType: entities.AuditEventCatalogImport, Description: "Imported catalog", EntityKey: ""},
			{EventType: entities.AuditEventDelete, Description: "Deleted catalog item: Iracema", EntityKey: "9788535914849"},
		}},
		MaxUploadMB:       1,
		LowStockThreshold: 2,
		Version:           "test",
	})
	return &testServer{router: router, tasks: taskClient}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) importCatalog(t *testing.T) {
	t.Helper()
	w := s.do(t, uploadRequest(t, "/api/import/catalog", "catalogo.csv", catalogCSV, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestImportCatalogEndpoint(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, uploadRequest(t, "/api/import/catalog", "catalogo.csv", catalogCSV, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.CatalogImportResult
	decode(t, w, &result)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Rejected)
	assert.Contains(t, result.Message, "2 added")

	// importing the same file again only updates
	w = s.do(t, uploadRequest(t, "/api/import/catalog", "catalogo.csv", catalogCSV, nil))
	decode(t, w, &result)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 2, result.Updated)
}

func TestImportCatalogEndpoint_DryRun(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, uploadRequest(t, "/api/import/catalog?dry_run=true", "catalogo.csv", catalogCSV, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var result services.CatalogImportResult
	decode(t, w, &result)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.Added)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(0), page.Total)
}

func TestImportCatalogEndpoint_Errors(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		code     string
	}{
		{name: "no identifier column", filename: "a.csv", content: "Título;Preço\nDom Casmurro;29,90\n", status: http.StatusUnprocessableEntity, code: CodeSchemaNotFound},
		{name: "empty file", filename: "a.csv", content: "", status: http.StatusUnprocessableEntity, code: CodeEmptyInput},
		{name: "unsupported extension", filename: "a.pdf", content: "%PDF", status: http.StatusUnsupportedMediaType, code: CodeUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, uploadRequest(t, "/api/import/catalog", tt.filename, tt.content, nil))
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.code, resp.Code)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import/catalog", strings.NewReader(""))
		w := s.do(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "file is required")
	})
}

func TestImportSalesEndpoint(t *testing.T) {
	s := setupTestServer(t)
	s.importCatalog(t)

	w := s.do(t, uploadRequest(t, "/api/import/sales", "vendas.csv",
		"ISBN,Qtd\n9788573210452,2\n9780000000001,1\n",
		map[string]string{"date": "2024-03-15"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.SalesImportResult
	decode(t, w, &result)
	assert.Equal(t, "2024-03-15", result.Date)
	assert.Equal(t, entities.SalesModeReplace, result.Mode)
	assert.Equal(t, 2, result.StockSubtracted)
	assert.Equal(t, 1, result.Unmatched)
	assert.True(t, result.TotalValue.Equal(decimal.RequireFromString("59.80")), result.TotalValue.String())

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/9788573210452", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var item entities.CatalogItem
	decode(t, w, &item)
	assert.Equal(t, 3, item.StockCount)
}

func TestImportSalesEndpoint_DefaultsToToday(t *testing.T) {
	s := setupTestServer(t)
	s.importCatalog(t)

	w := s.do(t, uploadRequest(t, "/api/import/sales", "vendas.csv", "ISBN,Qtd\n9788573210452,1\n", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.SalesImportResult
	decode(t, w, &result)
	assert.Equal(t, time.Now().Format("2006-01-02"), result.Date)
}

func TestImportSalesEndpoint_InvalidArguments(t *testing.T) {
	s := setupTestServer(t)

	for _, fields := range []map[string]string{
		{"date": "15/03/2024"},
		{"date": "2024-03-15", "mode": "merge"},
	} {
		w := s.do(t, uploadRequest(t, "/api/import/sales", "vendas.csv", "ISBN,Qtd\n9788573210452,1\n", fields))
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

		var resp ErrorResponse
		decode(t, w, &resp)
		assert.Equal(t, CodeInvalidArgument, resp.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := setupTestServer(t)
	s.importCatalog(t)

	t.Run("list with search", func(t *testing.T) {
		w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog?q=machado", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Data  []entities.CatalogItem `json:"data"`
			Total int64                  `json:"total"`
		}
		decode(t, w, &page)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, "Dom Casmurro", page.Data[0].Title)
	})

	t.Run("pagination", func(t *testing.T) {
		w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog?limit=1&offset=1", nil))
		var page PaginatedResponse
		decode(t, w, &page)
		assert.Equal(t, int64(2), page.Total)
		assert.False(t, page.HasMore)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("get by formatted isbn", func(t *testing.T) {
		w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/978-85-359-1484-9", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var item entities.CatalogItem
		decode(t, w, &item)
		assert.Equal(t, "Iracema", item.Title)
	})

	t.Run("low stock", func(t *testing.T) {
		w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/low-stock", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Threshold int                    `json:"threshold"`
			Items     []entities.CatalogItem `json:"items"`
		}
		decode(t, w, &resp)
		assert.Equal(t, 2, resp.Threshold)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Iracema", resp.Items[0].Title)

		w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/low-stock?threshold=5", nil))
		decode(t, w, &resp)
		assert.Len(t, resp.Items, 2)
	})

	t.Run("delete", func(t *testing.T) {
		w := s.do(t, httptest.NewRequest(http.MethodDelete, "/api/catalog/9788535914849", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/9788535914849", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/catalog/9788535914849", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid isbn", func(t *testing.T) {
		w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSalesEndpoints(t *testing.T) {
	s := setupTestServer(t)
	s.importCatalog(t)

	w := s.do(t, uploadRequest(t, "/api/import/sales", "vendas.csv", "ISBN,Qtd\n9788573210452,2\n", map[string]string{"date": "2024-03-15"}))
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/sales/2024-03-15/goals", strings.NewReader(`{"min_goal": "50", "super_goal": "100"}`))
	req.Header.Set("Content-Type", "application/json")
	w = s.do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var day DaySummary
	decode(t, w, &day)
	assert.True(t, day.MinGoalReached)
	assert.False(t, day.SuperGoalReached)
	assert.True(t, day.ActualSales.Equal(decimal.RequireFromString("59.80")))

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/sales?from=2024-03-01&to=2024-03-31", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var ledgerResp struct {
		Days       []DaySummary `json:"days"`
		TotalSales string       `json:"total_sales"`
	}
	decode(t, w, &ledgerResp)
	require.Len(t, ledgerResp.Days, 1)
	assert.Equal(t, "59.80", ledgerResp.TotalSales)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/sales?from=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPut, "/api/sales/2024-03-15/goals", strings.NewReader(`{"min_goal": -1}`))
	req.Header.Set("Content-Type", "application/json")
	w = s.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrichAndTaskEndpoints(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/catalog/enrich", strings.NewReader(`{"isbn": "978-85-359-1484-9"}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(t, req)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, s.tasks.enqueued, 1)
	assert.Equal(t, tasks.EnrichCatalogTask{ISBN: "9788535914849"}, s.tasks.enqueued[0])

	w = s.do(t, httptest.NewRequest(http.MethodPost, "/api/catalog/enrich", nil))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, tasks.EnrichCatalogTask{}, s.tasks.enqueued[1])

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/enrich/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "idle")

	w = s.do(t, httptest.NewRequest(http.MethodPost, "/api/tasks/cleanup_audit/run", nil))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, tasks.CleanupAuditTask{RetentionDays: 30}, s.tasks.enqueued[2])

	w = s.do(t, httptest.NewRequest(http.MethodPost, "/api/tasks/reindex/run", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/tasks/done", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success"`)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/tasks/types", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "enrich_catalog")
}

func TestAuditEndpoint(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/audit?type=delete", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Events      []entities.AuditEvent `json:"events"`
		TotalEvents int64                 `json:"total_events"`
	}
	decode(t, w, &resp)
	assert.Equal(t, int64(1), resp.TotalEvents)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/audit?entity=9788535914849", nil))
	decode(t, w, &resp)
	require.Len(t, resp.Events, 1)
	assert.Contains(t, resp.Events[0].Description, "Iracema")
}

func TestMetricsAndHealth(t *testing.T) {
	s := setupTestServer(t)
	s.importCatalog(t)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookstore_imports_total")

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
