package normalize

import "strings"

// CleanCell removes common spreadsheet artifacts from a cell value:
//   - byte order mark and non-breaking spaces
//   - Excel formula wrapper (="...") and text prefix (')
//   - surrounding quotes and whitespace
func CleanCell(s string) string {
	s = strings.ReplaceAll(s, "\ufeff", "")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.TrimPrefix(s, "'")
	s = strings.Trim(s, `"`)

	return strings.TrimSpace(s)
}

// IsBlank reports whether the cell carries no value once cleaned.
func IsBlank(s string) bool {
	return CleanCell(s) == ""
}
