package importers

import (
	"fmt"
	"log"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
)

// ParseResult is the outcome of classifying and extracting one sheet.
type ParseResult struct {
	Candidates []entities.CandidateRecord
	Header     *Header
	Rejected   int
	Total      int
}

// Parse runs header detection and row extraction over a decoded sheet.
//
// Errors:
//   - ErrEmptyInput when the sheet has no rows or no row survives extraction
//   - *SchemaNotFoundError when no header row is found
func Parse(sheet *Sheet, mode Mode) (ParseResult, error) {
	if !mode.Valid() {
		return ParseResult{}, fmt.Errorf("unknown import mode %q", mode)
	}
	if sheet == nil || isBlankSheet(sheet.Rows) {
		return ParseResult{}, ErrEmptyInput
	}

	header, err := DetectHeader(sheet.Rows, mode)
	if err != nil {
		return ParseResult{}, err
	}

	extracted := Extract(sheet.Rows, header, mode)
	if extracted.Rejected > 0 {
		log.Printf("[IMPORT] %s sheet %q: %d of %d rows rejected", mode, sheet.Name, extracted.Rejected, extracted.Total)
	}
	if len(extracted.Candidates) == 0 {
		return ParseResult{}, ErrEmptyInput
	}

	return ParseResult{
		Candidates: extracted.Candidates,
		Header:     header,
		Rejected:   extracted.Rejected,
		Total:      extracted.Total,
	}, nil
}

func isBlankSheet(rows [][]string) bool {
	for _, row := range rows {
		if !isBlankRow(row) {
			return false
		}
	}
	return true
}
