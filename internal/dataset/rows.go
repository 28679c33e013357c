package dataset

import (
	"errors"
	"fmt"
	"strings"

	apperrors "prolongation/internal/errors"
	"prolongation/internal/prolongation"
)

// Column names of the input tables.
const (
	ColumnID      = "id"
	ColumnMonth   = "month"
	ColumnManager = "AM"
)

var (
	// ErrEmptyTable means a source held no data rows.
	ErrEmptyTable = errors.New("empty table")
	// ErrMissingColumn means a required column is absent from the header.
	ErrMissingColumn = errors.New("missing column")
)

func requireColumn(t Table, table, name string) (int, error) {
	idx := t.Column(name)
	if idx < 0 {
		return -1, apperrors.NewParsingError(fmt.Sprintf("%s table: column %q", table, name), ErrMissingColumn).
			WithContext("header", strings.Join(t.Header, ","))
	}
	return idx, nil
}

// CompletionRows converts the completion table. Month names are normalized,
// ids and manager names trimmed; an empty manager cell means no manager.
func CompletionRows(t Table) ([]prolongation.ProjectRecord, error) {
	idCol, err := requireColumn(t, "completion", ColumnID)
	if err != nil {
		return nil, err
	}
	monthCol, err := requireColumn(t, "completion", ColumnMonth)
	if err != nil {
		return nil, err
	}
	managerCol, err := requireColumn(t, "completion", ColumnManager)
	if err != nil {
		return nil, err
	}

	out := make([]prolongation.ProjectRecord, 0, t.Len())
	for i := range t.Rows {
		out = append(out, prolongation.ProjectRecord{
			ID:              strings.TrimSpace(t.Cell(i, idCol)),
			CompletionMonth: prolongation.NormalizeMonth(t.Cell(i, monthCol)),
			Manager:         strings.TrimSpace(t.Cell(i, managerCol)),
		})
	}
	return out, nil
}

// monthColumns maps calendar ordinals to header indexes. Headers are matched after
// month normalization; absent months are left out of the map.
func monthColumns(t Table) map[int]int {
	cols := make(map[int]int, prolongation.MonthCount)
	for i, h := range t.Header {
		if ord, ok := prolongation.MonthOrdinal(prolongation.NormalizeMonth(h)); ok {
			if _, dup := cols[ord]; !dup {
				cols[ord] = i
			}
		}
	}
	return cols
}

// MissingMonths lists calendar months without a column in the financial table.
// Their cells read as zero.
func MissingMonths(t Table) []string {
	cols := monthColumns(t)
	var missing []string
	for ord, name := range prolongation.Months() {
		if _, ok := cols[ord+1]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// FinancialRows converts the financial table, normalizing every month cell.
func FinancialRows(t Table) ([]prolongation.FinancialRow, error) {
	idCol, err := requireColumn(t, "financial", ColumnID)
	if err != nil {
		return nil, err
	}
	cols := monthColumns(t)

	out := make([]prolongation.FinancialRow, 0, t.Len())
	for i := range t.Rows {
		row := prolongation.FinancialRow{ID: strings.TrimSpace(t.Cell(i, idCol))}
		for ord, col := range cols {
			row.Amounts[ord-1] = prolongation.Normalize(t.Cell(i, col))
		}
		out = append(out, row)
	}
	return out, nil
}
