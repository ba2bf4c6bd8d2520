// Package ledger applies sales sheets to the daily sales ledger and the
// catalog stock counts.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/normalize"
)

var (
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidMode = errors.New("sales mode must be 'replace' or 'add'")
	ErrInvalidGoal = errors.New("goals must not be negative")
)

// SalesInput is one sales upload together with the snapshots it applies to.
type SalesInput struct {
	Ledger     []entities.DailySalesEntry
	Catalog    []entities.CatalogItem
	Candidates []entities.CandidateRecord
	Date       string
	Mode       entities.SalesMode
}

// SalesReport summarizes an upload.
type SalesReport struct {
	ItemsUpdated    int             `json:"items_updated"`
	TotalValue      decimal.Decimal `json:"total_value"`
	StockSubtracted int             `json:"stock_subtracted"` // units actually removed after clamping
	Unmatched       int             `json:"unmatched"`        // lines whose ISBN is not in the catalog
}

// SalesOutput holds the new snapshots. The input slices are never modified.
type SalesOutput struct {
	Ledger  []entities.DailySalesEntry
	Catalog []entities.CatalogItem
	Report  SalesReport
}

// ApplyDailySales records the upload's total for in.Date and decrements the
// stock of every matched catalog item, never below zero.
//
// A line's value is its line total when the sheet has one. Otherwise it is
// the unit price times the quantity, taking the sheet's price before the
// catalog's, or zero for unknown items without a price.
func ApplyDailySales(in SalesInput) (SalesOutput, error) {
	if err := ValidateDate(in.Date); err != nil {
		return SalesOutput{}, err
	}
	if !in.Mode.Valid() {
		return SalesOutput{}, fmt.Errorf("%w: %q", ErrInvalidMode, in.Mode)
	}

	catalog := make([]entities.CatalogItem, len(in.Catalog))
	copy(catalog, in.Catalog)
	index := make(map[string]int, len(catalog))
	for i, item := range catalog {
		if isbn := normalize.NormalizeISBN(item.ISBN); isbn != "" {
			if _, dup := index[isbn]; !dup {
				index[isbn] = i
			}
		}
	}

	report := SalesReport{TotalValue: decimal.Zero}
	for _, c := range in.Candidates {
		if c.Quantity <= 0 {
			continue
		}

		idx, matched := index[normalize.NormalizeISBN(c.ISBN)]
		if !matched {
			report.Unmatched++
		}

		report.TotalValue = report.TotalValue.Add(lineValue(c, catalog, idx, matched))
		report.ItemsUpdated++

		if matched {
			removed := c.Quantity
			if removed > catalog[idx].StockCount {
				removed = catalog[idx].StockCount
			}
			if removed < 0 {
				removed = 0
			}
			catalog[idx].StockCount -= removed
			report.StockSubtracted += removed
		}
	}

	ledger := upsertEntry(in.Ledger, in.Date, func(e *entities.DailySalesEntry) {
		if in.Mode == entities.SalesModeAdd {
			e.ActualSales = e.ActualSales.Add(report.TotalValue)
		} else {
			e.ActualSales = report.TotalValue
		}
	})

	return SalesOutput{Ledger: ledger, Catalog: catalog, Report: report}, nil
}

func lineValue(c entities.CandidateRecord, catalog []entities.CatalogItem, idx int, matched bool) decimal.Decimal {
	qty := decimal.NewFromInt(int64(c.Quantity))
	switch {
	case c.LineTotal != nil:
		return *c.LineTotal
	case c.Price != nil:
		return c.Price.Mul(qty)
	case matched:
		return catalog[idx].Price.Mul(qty)
	default:
		return decimal.Zero
	}
}

// SetGoals sets the minimum and stretch goals for date, creating the entry
// when it does not exist. Recorded sales are untouched.
func SetGoals(ledger []entities.DailySalesEntry, date string, minGoal, superGoal decimal.Decimal) ([]entities.DailySalesEntry, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	if minGoal.IsNegative() || superGoal.IsNegative() {
		return nil, ErrInvalidGoal
	}

	return upsertEntry(ledger, date, func(e *entities.DailySalesEntry) {
		e.MinGoal = minGoal
		e.SuperGoal = superGoal
	}), nil
}

// Entry returns the ledger entry for date.
func Entry(ledger []entities.DailySalesEntry, date string) (entities.DailySalesEntry, bool) {
	for _, e := range ledger {
		if e.Date == date {
			return e, true
		}
	}
	return entities.DailySalesEntry{}, false
}

// Between returns the entries whose date lies in [from, to], oldest first.
// An empty bound is open.
func Between(ledger []entities.DailySalesEntry, from, to string) []entities.DailySalesEntry {
	var out []entities.DailySalesEntry
	for _, e := range ledger {
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ValidateDate checks that date is a calendar day in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if _, err := time.Parse(entities.DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

func upsertEntry(ledger []entities.DailySalesEntry, date string, update func(*entities.DailySalesEntry)) []entities.DailySalesEntry {
	out := make([]entities.DailySalesEntry, len(ledger), len(ledger)+1)
	copy(out, ledger)

	for i := range out {
		if out[i].Date == date {
			update(&out[i])
			return out
		}
	}

	entry := entities.DailySalesEntry{
		Date:        date,
		MinGoal:     decimal.Zero,
		SuperGoal:   decimal.Zero,
		ActualSales: decimal.Zero,
	}
	update(&entry)
	return append(out, entry)
}
