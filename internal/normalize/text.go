package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldText reduces s to lower-case ASCII words separated by single spaces:
// accents are stripped and every other character separates words.
// "Cód. Barras" becomes "cod barras".
func FoldText(s string) string {
	s = CleanCell(s)
	if s == "" {
		return ""
	}

	// transform.Chain is stateful, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	words := strings.FieldsFunc(strings.ToLower(out), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	return strings.Join(words, " ")
}
