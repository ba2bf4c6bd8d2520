package normalize

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuantity parses a unit count. Comma decimals are accepted, the sign is
// dropped and the value is floored. Unparseable input yields 0.
func ParseQuantity(raw string) int {
	s := strings.ReplaceAll(CleanCell(raw), " ", "")
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	f = math.Floor(math.Abs(f))
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
