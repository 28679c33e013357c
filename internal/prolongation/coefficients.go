package prolongation

// CoefficientResult is the output of the coefficient calculation: one entry per
// manager per target month (plus the department total) and the per-project detail
// rows both coefficients were computed from.
type CoefficientResult struct {
	Entries []CoefficientEntry
	Details []DetailRow
}

// cohortMember is one project with its shipments indexed by calendar ordinal.
type cohortMember struct {
	id        string
	manager   string
	shipments [MonthCount + 1]float64
}

// cohortIndex groups long-form observations by completion ordinal.
type cohortIndex map[int][]*cohortMember

func buildCohorts(observations []Observation) cohortIndex {
	index := make(cohortIndex)
	members := make(map[string]*cohortMember)
	for _, o := range observations {
		if o.ShipmentOrdinal < 1 || o.ShipmentOrdinal > MonthCount {
			continue
		}
		m, ok := members[o.ID]
		if !ok {
			m = &cohortMember{id: o.ID, manager: o.Manager}
			members[o.ID] = m
			index[o.CompletionOrdinal] = append(index[o.CompletionOrdinal], m)
		}
		m.shipments[o.ShipmentOrdinal] += o.Amount.Value()
	}
	return index
}

// measurement holds base and prolongation sums of one coefficient for one month.
type measurement struct {
	base           map[string]float64
	prolonged      map[string]float64
	totalBase      float64
	totalProlonged float64
	details        []DetailRow
}

// measure sums each member's shipment in baseOrd (base) and targetOrd (prolongation).
// Projects without a manager get detail rows but stay out of manager and department sums.
func measure(members []*cohortMember, baseOrd, targetOrd int, month string, typ CoefficientType) measurement {
	m := measurement{
		base:      make(map[string]float64),
		prolonged: make(map[string]float64),
		details:   make([]DetailRow, 0, len(members)),
	}
	for _, mem := range members {
		b, p := mem.shipments[baseOrd], mem.shipments[targetOrd]
		m.details = append(m.details, DetailRow{
			ID:           mem.id,
			Manager:      mem.manager,
			Base:         b,
			Prolongation: p,
			Month:        month,
			Type:         typ,
		})
		if mem.manager == "" {
			continue
		}
		m.base[mem.manager] += b
		m.prolonged[mem.manager] += p
		m.totalBase += b
		m.totalProlonged += p
	}
	return m
}

func (m measurement) coefficient(manager string) float64 {
	return ratio(m.prolonged[manager], m.base[manager])
}

func (m measurement) total() float64 {
	return ratio(m.totalProlonged, m.totalBase)
}

// lapsed keeps the members that shipped nothing positive in lapseOrd.
func lapsed(members []*cohortMember, lapseOrd int) []*cohortMember {
	out := make([]*cohortMember, 0, len(members))
	for _, m := range members {
		if m.shipments[lapseOrd] > 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// CalculateCoefficients computes K1 and K2 for every target month from
// FirstTargetOrdinal through the end of the calendar.
//
// K1 for month M uses projects completed in M-1: shipments in M over shipments in M-1.
// K2 uses projects completed in M-2 that had no positive shipment in M-1: shipments in
// M over shipments in M-2. Every manager in managers gets an entry for every month,
// followed by the weighted department total.
func CalculateCoefficients(observations []Observation, managers []string) CoefficientResult {
	cohorts := buildCohorts(observations)

	var res CoefficientResult
	for target := FirstTargetOrdinal; target <= MonthCount; target++ {
		month, _ := MonthName(target)

		k1 := measure(cohorts[target-1], target-1, target, month, K1)
		k2 := measure(lapsed(cohorts[target-2], target-1), target-2, target, month, K2)

		for _, manager := range managers {
			res.Entries = append(res.Entries, CoefficientEntry{
				Month:   month,
				Manager: manager,
				K1:      k1.coefficient(manager),
				K2:      k2.coefficient(manager),
			})
		}
		res.Entries = append(res.Entries, CoefficientEntry{
			Month:   month,
			Manager: DepartmentLabel,
			K1:      k1.total(),
			K2:      k2.total(),
		})

		res.Details = append(res.Details, k1.details...)
		res.Details = append(res.Details, k2.details...)
	}
	return res
}
