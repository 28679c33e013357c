package prolongation

import "strings"

// JoinProjects left-joins completion records onto aggregated series by trimmed id.
// Every distinct completion id appears exactly once, in source order; a repeated id
// keeps its first record. Projects without a series get all-zero amounts.
func JoinProjects(records []ProjectRecord, series []FinancialSeries) []MergedProject {
	byID := make(map[string]FinancialSeries, len(series))
	for _, s := range series {
		byID[strings.TrimSpace(s.ID)] = s
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]MergedProject, 0, len(records))
	for _, rec := range records {
		rec.ID = strings.TrimSpace(rec.ID)
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}

		merged := MergedProject{ProjectRecord: rec}
		if s, ok := byID[rec.ID]; ok {
			merged.Amounts = s.Amounts
		}
		out = append(out, merged)
	}
	return out
}

// Managers returns the distinct assigned managers of projects in first-seen order.
func Managers(projects []MergedProject) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range projects {
		if p.Manager == "" {
			continue
		}
		if _, ok := seen[p.Manager]; ok {
			continue
		}
		seen[p.Manager] = struct{}{}
		out = append(out, p.Manager)
	}
	return out
}
