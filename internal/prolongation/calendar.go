package prolongation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MonthCount is the length of the reporting calendar.
const MonthCount = 14

// FirstTargetOrdinal is the first month for which both look-back windows exist.
const FirstTargetOrdinal = 3

var calendar = [MonthCount]string{
	"Ноябрь 2022", "Декабрь 2022", "Январь 2023", "Февраль 2023", "Март 2023", "Апрель 2023",
	"Май 2023", "Июнь 2023", "Июль 2023", "Август 2023", "Сентябрь 2023", "Октябрь 2023",
	"Ноябрь 2023", "Декабрь 2023",
}

var monthOrdinals = func() map[string]int {
	m := make(map[string]int, MonthCount)
	for i, name := range calendar {
		m[name] = i + 1
	}
	return m
}()

// Months returns the calendar month names in order.
func Months() []string {
	out := make([]string, MonthCount)
	copy(out, calendar[:])
	return out
}

// MonthOrdinal returns the 1-based calendar position of name.
// The boolean is false when name is not a calendar month.
func MonthOrdinal(name string) (int, bool) {
	ord, ok := monthOrdinals[name]
	return ord, ok
}

// MonthName returns the calendar month at the 1-based ordinal.
func MonthName(ordinal int) (string, bool) {
	if ordinal < 1 || ordinal > MonthCount {
		return "", false
	}
	return calendar[ordinal-1], true
}

// NormalizeMonth trims raw and capitalizes it: first letter upper case, the rest lower case.
// "январь 2023" and "ЯНВАРЬ 2023" both become "Январь 2023".
func NormalizeMonth(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(first)) + strings.ToLower(s[size:])
}
