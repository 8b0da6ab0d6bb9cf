package tabular

import (
	"strconv"
	"strings"
)

func stripAll(s string, cutset ...string) string {
	for _, c := range cutset {
		s = strings.ReplaceAll(s, c, "")
	}
	return strings.TrimSpace(s)
}

// ParsePrice strips currency formatting and parses a decimal. A cell
// that does not parse yields nil; the row is preserved either way.
func ParsePrice(s string) *float64 {
	cleaned := stripAll(s, "$", ",", " ")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseChange is ParsePrice with the leading sign marker also
// stripped, so "+0.02" parses to 0.02.
func ParseChange(s string) *float64 {
	return ParsePrice(stripAll(s, "+"))
}

// ParseVolume strips thousands separators and parses a non-negative
// integer; anything else yields nil.
func ParseVolume(s string) *int64 {
	cleaned := stripAll(s, ",", " ")
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
