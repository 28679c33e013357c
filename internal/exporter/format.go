package exporter

import (
	"strconv"
)

// formatFloat formats a float64 value for CSV output using the shortest
// representation that round-trips, so ratios keep their full precision.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatCell renders a table cell for CSV output
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return formatFloat(val)
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}
