package prolongation

import "testing"

// amounts builds a calendar-indexed amount array from month name -> amount.
func amounts(t *testing.T, byMonth map[string]Amount) [MonthCount]Amount {
	t.Helper()
	var out [MonthCount]Amount
	for name, a := range byMonth {
		ord, ok := MonthOrdinal(name)
		if !ok {
			t.Fatalf("unknown month %q in fixture", name)
		}
		out[ord-1] = a
	}
	return out
}

func project(t *testing.T, id, month, manager string, byMonth map[string]Amount) MergedProject {
	t.Helper()
	return MergedProject{
		ProjectRecord: ProjectRecord{ID: id, CompletionMonth: month, Manager: manager},
		Amounts:       amounts(t, byMonth),
	}
}

func entryFor(entries []CoefficientEntry, month, manager string) (CoefficientEntry, bool) {
	for _, e := range entries {
		if e.Month == month && e.Manager == manager {
			return e, true
		}
	}
	return CoefficientEntry{}, false
}

func detailsFor(details []DetailRow, month string, typ CoefficientType) []DetailRow {
	var out []DetailRow
	for _, d := range details {
		if d.Month == month && d.Type == typ {
			out = append(out, d)
		}
	}
	return out
}
