package importers

import (
	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/normalize"
)

// MinIdentifierLength is the shortest digit string accepted as an identifier.
const MinIdentifierLength = 5

// ExtractResult holds the candidates read below the header.
type ExtractResult struct {
	Candidates []entities.CandidateRecord
	Rejected   int // non-blank rows dropped for a missing identifier or quantity
	Total      int // non-blank rows below the header
}

// Extract reads every row after header.Row into a candidate record.
func Extract(rows [][]string, header *Header, mode Mode) ExtractResult {
	var result ExtractResult
	if header == nil {
		return result
	}

	for i := header.Row + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		result.Total++

		candidate, ok := extractRow(row, header, mode)
		if !ok {
			result.Rejected++
			continue
		}
		candidate.Row = i + 1
		result.Candidates = append(result.Candidates, candidate)
	}

	return result
}

func extractRow(row []string, header *Header, mode Mode) (entities.CandidateRecord, bool) {
	var c entities.CandidateRecord

	c.ISBN = normalize.NormalizeISBN(cellAt(row, header, FieldISBN))
	if len(c.ISBN) < MinIdentifierLength {
		return c, false
	}

	if mode == ModeSales {
		c.Quantity = normalize.ParseQuantity(cellAt(row, header, FieldQuantity))
		if c.Quantity <= 0 {
			return c, false
		}
	}

	c.Title = normalize.CleanCell(cellAt(row, header, FieldTitle))
	c.Author = normalize.CleanCell(cellAt(row, header, FieldAuthor))
	c.Genre = normalize.CleanCell(cellAt(row, header, FieldGenre))
	c.Description = normalize.CleanCell(cellAt(row, header, FieldDescription))

	if price, ok := normalize.ParseCurrency(cellAt(row, header, FieldPrice)); ok && !price.IsNegative() {
		c.Price = decimalPtr(price)
	}
	if mode == ModeSales {
		if total, ok := normalize.ParseCurrency(cellAt(row, header, FieldLineTotal)); ok && !total.IsNegative() {
			c.LineTotal = decimalPtr(total)
		}
	}

	if _, ok := header.Column(FieldStock); ok {
		raw := cellAt(row, header, FieldStock)
		if !normalize.IsBlank(raw) {
			stock := normalize.ParseQuantity(raw)
			c.Stock = &stock
		}
	}

	return c, true
}

func cellAt(row []string, header *Header, f Field) string {
	idx, ok := header.Column(f)
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if !normalize.IsBlank(cell) {
			return false
		}
	}
	return true
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
