// Package catalog merges imported candidate records into a catalog snapshot.
//
// Imports are expected to be partial and repeated: a pricing-only sheet, then
// a synopsis-only sheet for the same titles. Merge therefore updates matched
// items field by field and never replaces an item wholesale.
package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/normalize"
)

// MergeReport counts what a merge pass changed.
type MergeReport struct {
	Added    int `json:"added"`
	Updated  int `json:"updated"`          // candidates that matched an item
	Enriched int `json:"enriched"`         // items that gained a description in this pass
	Folded   int `json:"folded,omitempty"` // stored items folded into an earlier item with the same ISBN
}

// newID is replaced in tests that need deterministic ids.
var newID = func() string { return uuid.NewString() }

// Merge applies candidates to existing in input order and returns the new
// snapshot. existing is not modified.
//
// For a matched item:
//   - title and author are filled only when unset
//   - description is replaced only by a strictly longer one
//   - genre is replaced whenever the candidate supplies one
//   - price and stock are replaced when present in the candidate
//
// Candidates match by canonical ISBN. A candidate without one matches an
// item without one by folded title. Unmatched candidates with an identifier
// or a title become new items.
func Merge(existing []entities.CatalogItem, candidates []entities.CandidateRecord) ([]entities.CatalogItem, MergeReport) {
	var report MergeReport

	items, folded := Dedupe(existing)
	report.Folded = folded

	byISBN := make(map[string]int, len(items)+len(candidates))
	byTitle := make(map[string]int)
	for i, item := range items {
		indexItem(byISBN, byTitle, item, i)
	}

	for _, c := range candidates {
		isbn := normalize.NormalizeISBN(c.ISBN)

		idx, ok := byISBN[isbn]
		if isbn == "" {
			idx, ok = byTitle[normalize.FoldText(c.Title)]
		}
		if ok {
			wasEnriched := items[idx].Enriched
			items[idx] = applyCandidate(items[idx], c)
			report.Updated++
			if items[idx].Enriched && !wasEnriched {
				report.Enriched++
			}
			continue
		}

		if isbn == "" && entities.IsPlaceholder(c.Title) {
			continue
		}

		item := applyCandidate(entities.CatalogItem{ID: newID(), ISBN: isbn}, c)
		items = append(items, item)
		indexItem(byISBN, byTitle, item, len(items)-1)
		report.Added++
		if item.Enriched {
			report.Enriched++
		}
	}

	return items, report
}

// Dedupe returns a normalized copy of items in which every item whose ISBN
// repeats an earlier one is folded into that earlier item, with the same
// field precedence as a merge. It also returns how many items were folded.
func Dedupe(items []entities.CatalogItem) ([]entities.CatalogItem, int) {
	out := make([]entities.CatalogItem, 0, len(items))
	first := make(map[string]int, len(items))
	folded := 0

	for _, item := range items {
		item = item.Normalized()
		item.ISBN = normalize.NormalizeISBN(item.ISBN)
		if item.ISBN != "" {
			if idx, dup := first[item.ISBN]; dup {
				out[idx] = applyCandidate(out[idx], asCandidate(item))
				folded++
				continue
			}
			first[item.ISBN] = len(out)
		}
		out = append(out, item)
	}
	return out, folded
}

// asCandidate treats a stored item as an import row. Zero price and stock
// read as absent so an empty duplicate cannot wipe them.
func asCandidate(item entities.CatalogItem) entities.CandidateRecord {
	c := entities.CandidateRecord{
		ISBN:        item.ISBN,
		Title:       item.Title,
		Author:      item.Author,
		Genre:       item.Genre,
		Description: item.Description,
	}
	if !item.Price.IsZero() {
		price := item.Price
		c.Price = &price
	}
	if item.StockCount > 0 {
		stock := item.StockCount
		c.Stock = &stock
	}
	return c
}

func indexItem(byISBN, byTitle map[string]int, item entities.CatalogItem, idx int) {
	if item.ISBN != "" {
		if _, dup := byISBN[item.ISBN]; !dup {
			byISBN[item.ISBN] = idx
		}
		return
	}
	if !item.HasTitle() {
		return
	}
	if key := normalize.FoldText(item.Title); key != "" {
		if _, dup := byTitle[key]; !dup {
			byTitle[key] = idx
		}
	}
}

func applyCandidate(item entities.CatalogItem, c entities.CandidateRecord) entities.CatalogItem {
	if title := strings.TrimSpace(c.Title); !item.HasTitle() && !entities.IsPlaceholder(title) {
		item.Title = title
	}
	if author := strings.TrimSpace(c.Author); !item.HasAuthor() && !entities.IsPlaceholder(author) {
		item.Author = author
	}

	if desc := strings.TrimSpace(c.Description); len([]rune(desc)) > len([]rune(strings.TrimSpace(item.Description))) {
		item.Description = desc
	}

	if genre := strings.TrimSpace(c.Genre); genre != "" {
		item.Genre = genre
	}

	if c.Price != nil && !c.Price.IsNegative() {
		item.Price = *c.Price
	}
	if c.Stock != nil {
		stock := *c.Stock
		if stock < 0 {
			stock = 0
		}
		item.StockCount = stock
	}

	item.Enriched = item.HasDescription()
	return item
}
