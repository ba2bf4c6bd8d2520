package entities

import "github.com/shopspring/decimal"

// CandidateRecord is a parsed, normalized spreadsheet row pending merge into
// the catalog or the sales ledger. Empty strings and nil pointers mean the
// sheet did not supply the value.
type CandidateRecord struct {
	Row         int              `json:"row"` // 1-based row number in the source sheet
	ISBN        string           `json:"isbn"`
	Title       string           `json:"title,omitempty"`
	Author      string           `json:"author,omitempty"`
	Genre       string           `json:"genre,omitempty"`
	Description string           `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`      // unit price
	LineTotal   *decimal.Decimal `json:"line_total,omitempty"` // value of the whole sales line
	Stock       *int             `json:"stock,omitempty"`
	Quantity    int              `json:"quantity,omitempty"` // units sold, sales sheets only
}
