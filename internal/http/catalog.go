package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/normalize"
	"github.com/mrlokans/bookstore-assistant/internal/services"
)

// CatalogStore is what the catalog endpoints need from the inventory service.
type CatalogStore interface {
	ListCatalog(ctx context.Context) ([]entities.CatalogItem, error)
	SearchCatalog(ctx context.Context, query string) ([]entities.CatalogItem, error)
	FindByISBN(ctx context.Context, isbn string) (entities.CatalogItem, error)
	LowStock(ctx context.Context, threshold int) ([]entities.CatalogItem, error)
	DeleteItem(ctx context.Context, isbn string) error
}

// CatalogController serves the catalog.
type CatalogController struct {
	store             CatalogStore
	lowStockThreshold int
}

func NewCatalogController(store CatalogStore, lowStockThreshold int) *CatalogController {
	return &CatalogController{store: store, lowStockThreshold: lowStockThreshold}
}

// ListItems handles GET /api/catalog?q=&limit=&offset=
func (cc *CatalogController) ListItems(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", 50)
	if !ok {
		return
	}
	offset, ok := parseIntQuery(c, "offset", 0)
	if !ok {
		return
	}
	if limit == 0 || limit > 500 {
		limit = 50
	}

	var items []entities.CatalogItem
	var err error
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		items, err = cc.store.SearchCatalog(c.Request.Context(), q)
	} else {
		items, err = cc.store.ListCatalog(c.Request.Context())
	}
	if err != nil {
		respondInternalError(c, err, "list catalog")
		return
	}

	total := len(items)
	page := []entities.CatalogItem{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = items[offset:end]
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       page,
		Total:      int64(total),
		Limit:      limit,
		Offset:     offset,
		HasMore:    offset+len(page) < total,
		TotalPages: (total + limit - 1) / limit,
	})
}

// LowStock handles GET /api/catalog/low-stock?threshold=
func (cc *CatalogController) LowStock(c *gin.Context) {
	threshold, ok := parseIntQuery(c, "threshold", cc.lowStockThreshold)
	if !ok {
		return
	}

	items, err := cc.store.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondInternalError(c, err, "low stock")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"threshold": threshold,
		"items":     items,
		"count":     len(items),
	})
}

// GetItem handles GET /api/catalog/:isbn. The identifier goes through the
// same cleaning as spreadsheet cells, so "978-85-359-1484-9" finds the item.
func (cc *CatalogController) GetItem(c *gin.Context) {
	isbn, ok := isbnParam(c)
	if !ok {
		return
	}

	item, err := cc.store.FindByISBN(c.Request.Context(), isbn)
	if errors.Is(err, services.ErrItemNotFound) {
		respondNotFound(c, "catalog item")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get catalog item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /api/catalog/:isbn
func (cc *CatalogController) DeleteItem(c *gin.Context) {
	isbn, ok := isbnParam(c)
	if !ok {
		return
	}

	err := cc.store.DeleteItem(c.Request.Context(), isbn)
	if errors.Is(err, services.ErrItemNotFound) {
		respondNotFound(c, "catalog item")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete catalog item")
		return
	}
	respondSuccess(c, "catalog item deleted")
}

func isbnParam(c *gin.Context) (string, bool) {
	isbn := normalize.NormalizeISBN(c.Param("isbn"))
	if isbn == "" {
		respondBadRequest(c, "invalid isbn")
		return "", false
	}
	return isbn, true
}
