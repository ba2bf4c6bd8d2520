package catalog

import (
	"sort"
	"strings"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/normalize"
)

// FindByISBN returns the item whose identifier normalizes to the same digits
// as isbn.
func FindByISBN(items []entities.CatalogItem, isbn string) (entities.CatalogItem, bool) {
	key := normalize.NormalizeISBN(isbn)
	if key == "" {
		return entities.CatalogItem{}, false
	}
	for _, item := range items {
		if normalize.NormalizeISBN(item.ISBN) == key {
			return item, true
		}
	}
	return entities.CatalogItem{}, false
}

// Remove returns a copy of items without the item matching isbn.
func Remove(items []entities.CatalogItem, isbn string) ([]entities.CatalogItem, bool) {
	key := normalize.NormalizeISBN(isbn)
	if key == "" {
		return items, false
	}

	out := make([]entities.CatalogItem, 0, len(items))
	removed := false
	for _, item := range items {
		if !removed && normalize.NormalizeISBN(item.ISBN) == key {
			removed = true
			continue
		}
		out = append(out, item)
	}
	if !removed {
		return items, false
	}
	return out, true
}

// LowStock returns items with StockCount at or below threshold, lowest first.
func LowStock(items []entities.CatalogItem, threshold int) []entities.CatalogItem {
	var out []entities.CatalogItem
	for _, item := range items {
		if item.StockCount <= threshold {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StockCount < out[j].StockCount
	})
	return out
}

// Search keeps items whose text fields or identifier contain query, ignoring
// case. An empty query returns items unchanged.
func Search(items []entities.CatalogItem, query string) []entities.CatalogItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	var out []entities.CatalogItem
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), query) ||
			strings.Contains(strings.ToLower(item.Author), query) ||
			strings.Contains(strings.ToLower(item.Genre), query) ||
			strings.Contains(item.ISBN, query) {
			out = append(out, item)
		}
	}
	return out
}

// Unenriched returns items that have an identifier but no description.
func Unenriched(items []entities.CatalogItem) []entities.CatalogItem {
	var out []entities.CatalogItem
	for _, item := range items {
		if item.ISBN != "" && !item.HasDescription() {
			out = append(out, item)
		}
	}
	return out
}
