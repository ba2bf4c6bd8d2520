package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// scientificRegex matches numbers rendered in exponent form, with either
	// decimal separator: 9.78853E+12, 9,78853E+12.
	scientificRegex = regexp.MustCompile(`^[+-]?\d+(?:[.,]\d+)?[eE][+-]?\d+$`)

	// floatSuffixRegex matches integers a spreadsheet exported as floats: 9788573210452.0
	floatSuffixRegex = regexp.MustCompile(`^(\d+)[.,]0+$`)
)

// NormalizeISBN returns the canonical digit-only form of an identifier cell.
// Scientific notation is expanded to the full integer first. An empty string
// means the value is not a usable identifier (blank or all zeros).
func NormalizeISBN(raw string) string {
	s := CleanCell(raw)
	if s == "" {
		return ""
	}

	if scientificRegex.MatchString(s) {
		if expanded, ok := expandScientific(s); ok {
			s = expanded
		}
	} else if m := floatSuffixRegex.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)

	if strings.Trim(digits, "0") == "" {
		return ""
	}
	return digits
}

func expandScientific(s string) (string, bool) {
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return "", false
	}
	return d.Abs().BigInt().String(), true
}
