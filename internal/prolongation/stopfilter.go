package prolongation

// ExclusionReason explains why a project was left out of the analytics.
type ExclusionReason string

const (
	// ReasonUnknownMonth marks a completion month that is not on the calendar.
	ReasonUnknownMonth ExclusionReason = "unknown_completion_month"
	// ReasonStopped marks a STOP at or before the completion month.
	ReasonStopped ExclusionReason = "stopped_before_completion"
)

// Exclusion is a project removed by FilterStopped.
type Exclusion struct {
	Project MergedProject
	Reason  ExclusionReason
}

// FilterStopped splits projects into those kept for analysis and those excluded.
// A project is excluded when its completion month is unknown, or when any month from
// the start of the calendar through the completion month holds STOP. A STOP after
// completion does not exclude the project.
func FilterStopped(projects []MergedProject) (kept []MergedProject, excluded []Exclusion) {
	kept = make([]MergedProject, 0, len(projects))
	for _, p := range projects {
		if reason, ok := exclusionReason(p); ok {
			excluded = append(excluded, Exclusion{Project: p, Reason: reason})
			continue
		}
		kept = append(kept, p)
	}
	return kept, excluded
}

func exclusionReason(p MergedProject) (ExclusionReason, bool) {
	completion, ok := MonthOrdinal(p.CompletionMonth)
	if !ok {
		return ReasonUnknownMonth, true
	}
	for ord := 1; ord <= completion; ord++ {
		if p.At(ord).IsStop() {
			return ReasonStopped, true
		}
	}
	return "", false
}
