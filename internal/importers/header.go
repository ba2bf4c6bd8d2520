package importers

import (
	"strings"

	"github.com/mrlokans/bookstore-assistant/internal/normalize"
)

// HeaderScanWindow is how many leading rows are searched for the header.
const HeaderScanWindow = 50

// Header is the located header row and the column index of every resolved
// field. Unresolved fields are absent from Columns.
type Header struct {
	Row     int // 0-based index into the decoded rows
	Columns map[Field]int
}

// Column returns the column index for f.
func (h *Header) Column(f Field) (int, bool) {
	idx, ok := h.Columns[f]
	return idx, ok
}

// DetectHeader finds the first row, within HeaderScanWindow, that resolves
// every mandatory field of mode.
func DetectHeader(rows [][]string, mode Mode) (*Header, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	limit := len(rows)
	if limit > HeaderScanWindow {
		limit = HeaderScanWindow
	}

	var best map[Field]int
	bestFound := -1
	for i := 0; i < limit; i++ {
		columns := classifyRow(rows[i], mode)
		found := countMandatory(columns, mode)
		if found == len(mandatoryFields[mode]) {
			return &Header{Row: i, Columns: columns}, nil
		}
		if found > bestFound {
			best, bestFound = columns, found
		}
	}

	// Report what the closest candidate row lacked.
	var missing []string
	for _, f := range mandatoryFields[mode] {
		if _, ok := best[f]; !ok {
			missing = append(missing, f.String())
		}
	}
	return nil, &SchemaNotFoundError{Missing: missing, Scanned: limit}
}

func classifyRow(row []string, mode Mode) map[Field]int {
	folded := make([]string, len(row))
	for i, cell := range row {
		folded[i] = foldHeader(cell)
	}

	columns := make(map[Field]int)
	claimed := make(map[int]bool)
	for _, field := range resolutionOrder[mode] {
		if idx, ok := matchField(folded, fieldAliases[field], claimed); ok {
			columns[field] = idx
			claimed[idx] = true
		}
	}
	return columns
}

// matchField tries aliases in order, scanning columns left to right for
// each one. The first unclaimed column containing an alias wins. Aliases
// prefixed with exactAlias must equal the whole header.
func matchField(folded []string, aliases []string, claimed map[int]bool) (int, bool) {
	for _, alias := range aliases {
		exact, isExact := strings.CutPrefix(alias, exactAlias)
		for idx, text := range folded {
			if text == "" || claimed[idx] {
				continue
			}
			if (isExact && text == exact) || (!isExact && strings.Contains(text, alias)) {
				return idx, true
			}
		}
	}
	return 0, false
}

func countMandatory(columns map[Field]int, mode Mode) int {
	n := 0
	for _, f := range mandatoryFields[mode] {
		if _, ok := columns[f]; ok {
			n++
		}
	}
	return n
}

// foldHeader reduces header text to lower-case ASCII letters and digits:
// "Cód. Barras" becomes "codbarras".
func foldHeader(s string) string {
	return strings.ReplaceAll(normalize.FoldText(s), " ", "")
}
