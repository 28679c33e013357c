package prolongation

import "sort"

// managerRank is the explicit priority table for summary ordering:
// named managers first, then projects without a manager, then the department.
var managerRank = map[string]int{
	UnassignedLabel: 1,
	DepartmentLabel: 2,
}

// lessSummaryManager orders managers for the monthly tables.
func lessSummaryManager(a, b string) bool {
	ra, rb := managerRank[a], managerRank[b]
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// lessAnnualManager orders managers alphabetically with the department forced last.
func lessAnnualManager(a, b string) bool {
	if (a == DepartmentLabel) != (b == DepartmentLabel) {
		return b == DepartmentLabel
	}
	return a < b
}

// SortSummary returns a copy of entries ordered by manager priority, then calendar month.
func SortSummary(entries []CoefficientEntry) []CoefficientEntry {
	out := make([]CoefficientEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Manager != out[j].Manager {
			return lessSummaryManager(out[i].Manager, out[j].Manager)
		}
		oi, _ := MonthOrdinal(out[i].Month)
		oj, _ := MonthOrdinal(out[j].Month)
		return oi < oj
	})
	return out
}

// PivotRow is one manager's coefficients across the pivot months.
type PivotRow struct {
	Manager string    `json:"manager"`
	K1      []float64 `json:"k1"`
	K2      []float64 `json:"k2"`
}

// MonthlyPivot is the manager x (coefficient, month) table.
type MonthlyPivot struct {
	Months []string   `json:"months"`
	Rows   []PivotRow `json:"rows"`
}

// BuildMonthlyPivot spreads summary entries into one row per manager with a column per
// coefficient and month. Months follow calendar order, rows follow summary order and
// combinations missing from entries are 0.
func BuildMonthlyPivot(entries []CoefficientEntry) MonthlyPivot {
	present := make(map[string]bool)
	for _, e := range entries {
		present[e.Month] = true
	}

	var pivot MonthlyPivot
	column := make(map[string]int)
	for _, month := range calendar {
		if present[month] {
			column[month] = len(pivot.Months)
			pivot.Months = append(pivot.Months, month)
		}
	}

	rows := make(map[string]*PivotRow)
	var order []string
	for _, e := range entries {
		row, ok := rows[e.Manager]
		if !ok {
			row = &PivotRow{
				Manager: e.Manager,
				K1:      make([]float64, len(pivot.Months)),
				K2:      make([]float64, len(pivot.Months)),
			}
			rows[e.Manager] = row
			order = append(order, e.Manager)
		}
		col, ok := column[e.Month]
		if !ok {
			continue
		}
		row.K1[col] = e.K1
		row.K2[col] = e.K2
	}

	sort.SliceStable(order, func(i, j int) bool {
		return lessSummaryManager(order[i], order[j])
	})
	pivot.Rows = make([]PivotRow, 0, len(order))
	for _, manager := range order {
		pivot.Rows = append(pivot.Rows, *rows[manager])
	}
	return pivot
}
