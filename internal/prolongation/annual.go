package prolongation

import "sort"

type annualTotals struct {
	base      map[CoefficientType]float64
	prolonged map[CoefficientType]float64
}

func newAnnualTotals() *annualTotals {
	return &annualTotals{
		base:      make(map[CoefficientType]float64, 2),
		prolonged: make(map[CoefficientType]float64, 2),
	}
}

func (t *annualTotals) add(d DetailRow) {
	t.base[d.Type] += d.Base
	t.prolonged[d.Type] += d.Prolongation
}

func (t *annualTotals) entry(manager string) AnnualEntry {
	return AnnualEntry{
		Manager:  manager,
		AnnualK1: ratio(t.prolonged[K1], t.base[K1]),
		AnnualK2: ratio(t.prolonged[K2], t.base[K2]),
	}
}

// AggregateAnnual sums detail rows per manager and coefficient type over the whole
// year. Managers are sorted alphabetically and the department total comes last.
// The department total covers every detail row, including projects without a
// manager. No detail rows means no annual entries at all.
func AggregateAnnual(details []DetailRow) []AnnualEntry {
	if len(details) == 0 {
		return nil
	}

	department := newAnnualTotals()
	byManager := make(map[string]*annualTotals)
	for _, d := range details {
		department.add(d)
		if d.Manager == "" {
			continue
		}
		t, ok := byManager[d.Manager]
		if !ok {
			t = newAnnualTotals()
			byManager[d.Manager] = t
		}
		t.add(d)
	}

	out := make([]AnnualEntry, 0, len(byManager)+1)
	for manager, t := range byManager {
		out = append(out, t.entry(manager))
	}
	sort.Slice(out, func(i, j int) bool {
		return lessAnnualManager(out[i].Manager, out[j].Manager)
	})
	return append(out, department.entry(DepartmentLabel))
}
