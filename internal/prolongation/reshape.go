package prolongation

// Reshape converts surviving projects into the long form: one Observation per project
// and calendar month, in project order then calendar order. Projects whose completion
// month is not on the calendar are skipped; FilterStopped already removes them.
func Reshape(projects []MergedProject) []Observation {
	out := make([]Observation, 0, len(projects)*MonthCount)
	for _, p := range projects {
		completion, ok := MonthOrdinal(p.CompletionMonth)
		if !ok {
			continue
		}
		for ord := 1; ord <= MonthCount; ord++ {
			out = append(out, Observation{
				ID:                p.ID,
				Manager:           p.Manager,
				CompletionOrdinal: completion,
				ShipmentOrdinal:   ord,
				Amount:            p.At(ord),
			})
		}
	}
	return out
}
