package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UntitledDisplay is shown for an item whose title was never populated.
const UntitledDisplay = "Untitled"

// legacyPlaceholders are sentinel strings older snapshots stored in place of an
// empty title or author. They are read back as "unset".
var legacyPlaceholders = map[string]struct{}{
	"untitled":             {},
	"unknown":              {},
	"desconhecido":         {},
	"título não informado": {},
	"titulo nao informado": {},
	"sem título":           {},
	"sem titulo":           {},
	"autor desconhecido":   {},
}

// IsPlaceholder reports whether s is empty or one of the legacy sentinel values.
func IsPlaceholder(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return true
	}
	_, ok := legacyPlaceholders[s]
	return ok
}

// CatalogItem is one stocked title. Empty text fields mean "not yet populated".
type CatalogItem struct {
	ID          string          `json:"id" validate:"required"`
	ISBN        string          `json:"isbn" validate:"omitempty,numeric"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Genre       string          `json:"genre"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	StockCount  int             `json:"stock_count" validate:"gte=0"`
	Enriched    bool            `json:"enriched"`
}

// HasTitle reports whether the title was ever populated.
func (c CatalogItem) HasTitle() bool {
	return !IsPlaceholder(c.Title)
}

// HasAuthor reports whether the author was ever populated.
func (c CatalogItem) HasAuthor() bool {
	return !IsPlaceholder(c.Author)
}

// HasDescription reports whether a non-blank description is present.
func (c CatalogItem) HasDescription() bool {
	return strings.TrimSpace(c.Description) != ""
}

func (c CatalogItem) DisplayTitle() string {
	if !c.HasTitle() {
		return UntitledDisplay
	}
	return c.Title
}

// Normalized clears legacy sentinel values so that they read as unset.
func (c CatalogItem) Normalized() CatalogItem {
	if IsPlaceholder(c.Title) {
		c.Title = ""
	}
	if IsPlaceholder(c.Author) {
		c.Author = ""
	}
	c.Enriched = c.HasDescription()
	return c
}
