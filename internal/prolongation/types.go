package prolongation

// Synthetic manager labels used in report tables.
const (
	// DepartmentLabel names the department-wide aggregate row.
	DepartmentLabel = "Весь отдел"
	// UnassignedLabel is how the source marks projects without an account manager.
	UnassignedLabel = "без А/М"
)

// CoefficientType distinguishes the one-month and two-month retention ratios.
type CoefficientType string

const (
	K1 CoefficientType = "K1"
	K2 CoefficientType = "K2"
)

// ProjectRecord is one row of the completion table.
// An empty Manager means the project has no account manager.
type ProjectRecord struct {
	ID              string `json:"id"`
	CompletionMonth string `json:"month"`
	Manager         string `json:"am,omitempty"`
}

// FinancialRow is one raw row of the financial table, already normalized cell by cell.
// Amounts is indexed by calendar ordinal minus one.
type FinancialRow struct {
	ID      string
	Amounts [MonthCount]Amount
}

// FinancialSeries is the single aggregated series for a project id.
type FinancialSeries struct {
	ID      string
	Amounts [MonthCount]Amount
}

// MergedProject is a completion record joined with its financial series.
type MergedProject struct {
	ProjectRecord
	Amounts [MonthCount]Amount
}

// At returns the amount for the 1-based calendar ordinal.
func (p MergedProject) At(ordinal int) Amount {
	if ordinal < 1 || ordinal > MonthCount {
		return Amount{}
	}
	return p.Amounts[ordinal-1]
}

// Observation is one (project, shipment month) pair of the long form.
type Observation struct {
	ID                string
	Manager           string
	CompletionOrdinal int
	ShipmentOrdinal   int
	Amount            Amount
}

// CoefficientEntry holds both coefficients of one manager for one target month.
type CoefficientEntry struct {
	Month   string  `json:"month"`
	Manager string  `json:"manager"`
	K1      float64 `json:"k1"`
	K2      float64 `json:"k2"`
}

// DetailRow records one project's contribution to a coefficient.
type DetailRow struct {
	ID           string          `json:"id"`
	Manager      string          `json:"am"`
	Base         float64         `json:"base"`
	Prolongation float64         `json:"prolongation"`
	Month        string          `json:"month"`
	Type         CoefficientType `json:"type"`
}

// AnnualEntry is the yearly rollup for one manager or the department.
type AnnualEntry struct {
	Manager  string  `json:"manager"`
	AnnualK1 float64 `json:"annual_k1"`
	AnnualK2 float64 `json:"annual_k2"`
}

// ratio divides with the fixed zero-division policy: a zero base yields 0.
func ratio(prolonged, base float64) float64 {
	if base == 0 {
		return 0
	}
	return prolonged / base
}
