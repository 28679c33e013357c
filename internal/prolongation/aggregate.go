package prolongation

import (
	"sort"
	"strings"
)

// AggregateFinancial collapses rows sharing a trimmed id into one series by summing
// every month. STOP takes part in the sum as -1, so a group whose month sums to
// exactly -1 keeps the STOP sentinel; any other sum is an ordinary amount.
// The result is sorted by id.
func AggregateFinancial(rows []FinancialRow) []FinancialSeries {
	sums := make(map[string]*[MonthCount]float64, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(row.ID)
		acc, ok := sums[id]
		if !ok {
			acc = new([MonthCount]float64)
			sums[id] = acc
		}
		for i, a := range row.Amounts {
			acc[i] += a.Encoded()
		}
	}

	out := make([]FinancialSeries, 0, len(sums))
	for id, acc := range sums {
		series := FinancialSeries{ID: id}
		for i, v := range acc {
			series.Amounts[i] = decodeSum(v)
		}
		out = append(out, series)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
