package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TrimFloatSuffix removes the ".0" that spreadsheet tools append to
// integer-looking cells ("99213.0" -> "99213").
func TrimFloatSuffix(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, ".0")
}

// NormalizeModifier strips a trailing ".0" and truncates to the two
// characters a procedure modifier may carry.
func NormalizeModifier(s string) string {
	s = TrimFloatSuffix(s)
	if len(s) > 2 {
		s = s[:2]
	}
	return s
}

// ParseID parses an integer identifier that may have been written as a
// decimal ("1234.0").
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty id")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return int64(f), nil
}

// ParseUnits parses a service-line unit count. Fractional units are allowed.
func ParseUnits(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty units")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid units %q", s)
	}
	return v, nil
}

// FormatUnits renders a unit count without a trailing ".0" for whole numbers.
func FormatUnits(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
