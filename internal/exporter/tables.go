package exporter

import (
	"prolongation/internal/prolongation"
)

// Sheet names of the report workbook, in workbook order.
const (
	SheetAnnual  = "Годовой отчет"
	SheetMonthly = "Сводный отчет по месяцам"
	SheetDetails = "Детализация по проектам"
	SheetSummary = "Данные для сводного отчета"
)

// Column captions shared by the workbook and the CSV exports.
const (
	colManager      = "Менеджер"
	colAnnualK1     = "Годовой_К1"
	colAnnualK2     = "Годовой_К2"
	colMonth        = "Месяц"
	colK1           = "Коэффициент_1"
	colK2           = "Коэффициент_2"
	colID           = "id"
	colAM           = "AM"
	colBase         = "База"
	colProlongation = "Пролонгация"
	colCalcMonth    = "Месяц_расчета"
	colType         = "Тип_коэф"
)

// table is one output table flattened to cells. Header may span several rows;
// spans lists the header cells that cover more than one column.
type table struct {
	name   string
	slug   string
	header [][]string
	spans  []span
	rows   [][]interface{}
}

// span is a horizontal merge of header row cells [from, to], 1-based columns.
type span struct {
	row, from, to int
}

// reportTables lays out the four report tables in workbook order.
func reportTables(r *prolongation.Report) []table {
	return []table{
		annualTable(r.Annual),
		monthlyTable(r.Pivot),
		detailsTable(r.Details),
		summaryTable(r.Summary),
	}
}

func annualTable(entries []prolongation.AnnualEntry) table {
	t := table{
		name:   SheetAnnual,
		slug:   "annual",
		header: [][]string{{colManager, colAnnualK1, colAnnualK2}},
	}
	for _, e := range entries {
		t.rows = append(t.rows, []interface{}{e.Manager, e.AnnualK1, e.AnnualK2})
	}
	return t
}

// monthlyTable writes the pivot with a two-row header: coefficient captions
// over their month columns, then the months themselves.
func monthlyTable(p prolongation.MonthlyPivot) table {
	n := len(p.Months)
	top := make([]string, 0, 1+2*n)
	bottom := make([]string, 0, 1+2*n)
	top = append(top, colManager)
	bottom = append(bottom, "")
	for i := range p.Months {
		if i == 0 {
			top = append(top, colK1)
		} else {
			top = append(top, "")
		}
	}
	for i := range p.Months {
		if i == 0 {
			top = append(top, colK2)
		} else {
			top = append(top, "")
		}
	}
	bottom = append(bottom, p.Months...)
	bottom = append(bottom, p.Months...)

	t := table{
		name:   SheetMonthly,
		slug:   "monthly",
		header: [][]string{top, bottom},
	}
	if n > 1 {
		t.spans = []span{{row: 1, from: 2, to: 1 + n}, {row: 1, from: 2 + n, to: 1 + 2*n}}
	}

	for _, row := range p.Rows {
		cells := make([]interface{}, 0, 1+2*n)
		cells = append(cells, row.Manager)
		for _, v := range row.K1 {
			cells = append(cells, v)
		}
		for _, v := range row.K2 {
			cells = append(cells, v)
		}
		t.rows = append(t.rows, cells)
	}
	return t
}

func detailsTable(details []prolongation.DetailRow) table {
	t := table{
		name:   SheetDetails,
		slug:   "details",
		header: [][]string{{colID, colAM, colBase, colProlongation, colCalcMonth, colType}},
	}
	for _, d := range details {
		t.rows = append(t.rows, []interface{}{d.ID, managerCell(d.Manager), d.Base, d.Prolongation, d.Month, string(d.Type)})
	}
	return t
}

func summaryTable(entries []prolongation.CoefficientEntry) table {
	t := table{
		name:   SheetSummary,
		slug:   "summary",
		header: [][]string{{colMonth, colManager, colK1, colK2}},
	}
	for _, e := range entries {
		t.rows = append(t.rows, []interface{}{e.Month, e.Manager, e.K1, e.K2})
	}
	return t
}

// managerCell leaves the cell blank for projects without an account manager.
func managerCell(manager string) interface{} {
	if manager == "" {
		return nil
	}
	return manager
}
