package standardize

import (
	"strconv"
	"strings"
	"unicode"
)

// parseFloat coerces a numeric cell. Decimal commas are accepted. Empty or
// unparseable cells return nil.
func parseFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseFraction coerces an efficiency cell. Percentages above 1 are scaled
// into the unit interval; anything outside (0, 1] afterwards is rejected.
func parseFraction(raw string) *float64 {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	v := parseFloat(raw)
	if v == nil {
		return nil
	}
	f := *v
	if f > 1 {
		f /= 100
	}
	if f <= 0 || f > 1 {
		return nil
	}
	return &f
}

// parseYear extracts a plausible four-digit year from a cell that may carry
// a bare year, a float-formatted year or a full date.
func parseYear(raw string) *int {
	raw = strings.TrimSpace(raw)
	digits := leadingDigits(raw)
	if len(digits) < 4 {
		return nil
	}
	y, err := strconv.Atoi(digits[:4])
	if err != nil || y < 1850 || y > 2100 {
		return nil
	}
	return &y
}

func leadingDigits(s string) string {
	for i, r := range s {
		if !unicode.IsDigit(r) {
			return s[:i]
		}
	}
	return s
}
