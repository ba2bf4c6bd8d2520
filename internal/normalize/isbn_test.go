package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain digits", "9788573210452", "9788573210452"},
		{"hyphenated", "978-85-7321-045-2", "9788573210452"},
		{"spaces and prefix", " ISBN 978 85 7321 045 2 ", "9788573210452"},
		{"scientific notation", "9.78853E+12", "9788530000000"},
		{"scientific lower e", "9.788573210452e12", "9788573210452"},
		{"scientific comma decimal", "9,78853E+12", "9788530000000"},
		{"float export", "9788573210452.0", "9788573210452"},
		{"excel text formula", `="9788573210452"`, "9788573210452"},
		{"excel text prefix", "'9788573210452", "9788573210452"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"all zeros", "0000000", ""},
		{"no digits", "n/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeISBN(tt.input))
		})
	}
}

func TestNormalizeISBN_ScientificMatchesLiteral(t *testing.T) {
	assert.Equal(t, NormalizeISBN("9788530000000"), NormalizeISBN("9.78853E+12"))
	assert.Len(t, NormalizeISBN("9.78853E+12"), 13)
}

func TestNormalizeISBN_Idempotent(t *testing.T) {
	for _, raw := range []string{"978-85-7321-045-2", "9.78853E+12", "0-13-468599-6"} {
		once := NormalizeISBN(raw)
		assert.Equal(t, once, NormalizeISBN(once), raw)
	}
}
