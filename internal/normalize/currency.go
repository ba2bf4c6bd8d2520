package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// numericRegex validates a plain decimal literal after separator cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// currencyTokens are stripped before parsing. Longer tokens come first so
// "R$" is removed before "$".
var currencyTokens = []string{"US$", "R$", "BRL", "USD", "EUR", "$", "€", "£"}

// ParseCurrency parses a money cell. The boolean is false when the cell is
// empty or unparseable, which callers must treat as "absent", not zero.
//
// Separator rules:
//   - both '.' and ',' present: the last one is the decimal separator
//   - only ',' present: the last ',' is the decimal separator
//   - several '.' and no ',': they are thousands separators ("1.234.567")
func ParseCurrency(raw string) (decimal.Decimal, bool) {
	s := CleanCell(raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	upper := strings.ToUpper(s)
	for _, token := range currencyTokens {
		upper = strings.ReplaceAll(upper, token, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, upper)

	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.TrimPrefix(s, "+")

	s = canonicalSeparators(s)
	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// canonicalSeparators rewrites s so that '.' is the only decimal separator
// and no thousands separators remain.
func canonicalSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return toDecimalPoint(strings.ReplaceAll(s, ".", ""), ",")
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		return toDecimalPoint(s, ",")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}

// toDecimalPoint keeps the last occurrence of sep as the decimal point and
// drops every earlier one.
func toDecimalPoint(s, sep string) string {
	i := strings.LastIndex(s, sep)
	return strings.ReplaceAll(s[:i], sep, "") + "." + s[i+len(sep):]
}
