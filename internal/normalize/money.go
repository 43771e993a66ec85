package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var amountStripper = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseAmountCents cleans a currency string ("$1,234.56") and converts it to
// cents. Uses math.Round to avoid truncation bias.
func ParseAmountCents(s string) (int64, error) {
	clean := amountStripper.Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(math.Round(v * 100)), nil
}

// FormatCents renders cents as a plain two-decimal dollar amount, e.g. "1234.56".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
