package prolongation

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// stopEncoding is the numeric value STOP takes part in aggregation with.
const stopEncoding = -1

// Amount is a cleaned monetary cell: a real number or the STOP sentinel.
// The zero value is the amount 0.
type Amount struct {
	value float64
	stop  bool
}

// Numeric returns an ordinary amount.
func Numeric(v float64) Amount {
	return Amount{value: v}
}

// Stop returns the "contract stopped" sentinel.
func Stop() Amount {
	return Amount{stop: true}
}

// IsStop reports whether a is the STOP sentinel.
func (a Amount) IsStop() bool {
	return a.stop
}

// Value returns the shipped amount. A stopped contract ships nothing, so STOP is 0.
func (a Amount) Value() float64 {
	if a.stop {
		return 0
	}
	return a.value
}

// Encoded returns the value used when summing duplicate rows: STOP counts as -1.
func (a Amount) Encoded() float64 {
	if a.stop {
		return stopEncoding
	}
	return a.value
}

// String renders the amount for logs and exports.
func (a Amount) String() string {
	if a.stop {
		return "STOP"
	}
	return strconv.FormatFloat(a.value, 'f', -1, 64)
}

// decodeSum turns an aggregated sum back into an Amount. A sum equal to the STOP
// encoding is read as STOP, matching the literal -1 check of the stop filter.
func decodeSum(v float64) Amount {
	if v == stopEncoding {
		return Stop()
	}
	return Numeric(v)
}

// sentinels are matched exactly after whitespace removal and comma-to-point.
var sentinels = map[string]Amount{
	"вноль": {},
	"стоп":  Stop(),
	"end":   Stop(),
}

// Normalize parses a raw monetary cell. All whitespace is removed and a decimal comma
// becomes a point before the sentinel table is consulted; sentinels are case-sensitive.
// Anything that is neither a sentinel nor a finite decimal number is 0.
func Normalize(raw string) Amount {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	if a, ok := sentinels[cleaned]; ok {
		return a
	}
	if hasHexPrefix(cleaned) {
		return Amount{}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}
	}
	return Numeric(v)
}

// hasHexPrefix reports whether s is a hex literal, which ParseFloat would accept.
func hasHexPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
