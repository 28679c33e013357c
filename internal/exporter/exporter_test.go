package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"prolongation/internal/config"
	"prolongation/internal/prolongation"
)

func sampleReport() *prolongation.Report {
	return &prolongation.Report{
		Annual: []prolongation.AnnualEntry{
			{Manager: "Иванов", AnnualK1: 0.8, AnnualK2: 0.5},
			{Manager: prolongation.DepartmentLabel, AnnualK1: 0.75, AnnualK2: 0.5},
		},
		Pivot: prolongation.MonthlyPivot{
			Months: []string{"Январь 2023", "Февраль 2023"},
			Rows: []prolongation.PivotRow{
				{Manager: "Иванов", K1: []float64{0.8, 1}, K2: []float64{0, 0.5}},
				{Manager: prolongation.DepartmentLabel, K1: []float64{0.75, 1}, K2: []float64{0, 0.5}},
			},
		},
		Summary: []prolongation.CoefficientEntry{
			{Month: "Январь 2023", Manager: "Иванов", K1: 0.8},
			{Month: "Февраль 2023", Manager: "Иванов", K1: 1, K2: 0.5},
			{Month: "Январь 2023", Manager: prolongation.DepartmentLabel, K1: 0.75},
			{Month: "Февраль 2023", Manager: prolongation.DepartmentLabel, K1: 1, K2: 0.5},
		},
		Details: []prolongation.DetailRow{
			{ID: "P1", Manager: "Иванов", Base: 100, Prolongation: 80, Month: "Январь 2023", Type: prolongation.K1},
			{ID: "P2", Manager: "", Base: 20, Prolongation: 10, Month: "Январь 2023", Type: prolongation.K1},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetAnnual, SheetMonthly, SheetDetails, SheetSummary}, f.GetSheetList())

	t.Run("annual", func(t *testing.T) {
		rows, err := f.GetRows(SheetAnnual)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"Менеджер", "Годовой_К1", "Годовой_К2"}, rows[0])
		assert.Equal(t, prolongation.DepartmentLabel, rows[2][0])

		raw, err := f.GetCellValue(SheetAnnual, "B2", excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		assert.Equal(t, "0.8", raw)
	})

	t.Run("monthly pivot header", func(t *testing.T) {
		rows, err := f.GetRows(SheetMonthly)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "Коэффициент_1", rows[0][1])
		assert.Equal(t, "Коэффициент_2", rows[0][3])
		assert.Equal(t, []string{"", "Январь 2023", "Февраль 2023", "Январь 2023", "Февраль 2023"}, rows[1])
		assert.Equal(t, "Иванов", rows[2][0])

		merged, err := f.GetMergeCells(SheetMonthly)
		require.NoError(t, err)
		require.Len(t, merged, 2)
		assert.Equal(t, "B1", merged[0].GetStartAxis())
		assert.Equal(t, "C1", merged[0].GetEndAxis())
	})

	t.Run("details leave missing manager blank", func(t *testing.T) {
		rows, err := f.GetRows(SheetDetails)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"id", "AM", "База", "Пролонгация", "Месяц_расчета", "Тип_коэф"}, rows[0])
		assert.Equal(t, "P2", rows[2][0])
		assert.Equal(t, "", rows[2][1])
		assert.Equal(t, "K1", rows[2][5])
	})

	t.Run("summary", func(t *testing.T) {
		rows, err := f.GetRows(SheetSummary)
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, []string{"Месяц", "Менеджер", "Коэффициент_1", "Коэффициент_2"}, rows[0])
	})
}

func TestWriteWorkbookEmptyAnnual(t *testing.T) {
	report := sampleReport()
	report.Annual = nil
	report.Details = nil

	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	require.NoError(t, WriteWorkbookFile(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetAnnual)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestCSVWriterWriteReport(t *testing.T) {
	dir := t.TempDir()
	paths := config.Default().PathsFrom(dir)
	writer := NewCSVWriter(paths, ';')

	files, err := writer.WriteReport("prolongation_report", sampleReport())
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "prolongation_report_annual.csv"), files[0])

	content, err := os.ReadFile(files[2])
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}), "missing BOM")

	reader := csv.NewReader(bytes.NewReader(content[3:]))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"P1", "Иванов", "100", "80", "Январь 2023", "K1"}, records[1])
	assert.Equal(t, "", records[2][1])
}

func TestCSVWriterMonthlyHeader(t *testing.T) {
	writer := NewCSVWriter(config.Default().PathsFrom(t.TempDir()), 0)

	files, err := writer.WriteReport("r", sampleReport())
	require.NoError(t, err)

	content, err := os.ReadFile(files[1])
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(content[3:])).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, []string{"Менеджер", "Коэффициент_1", "", "Коэффициент_2", ""}, records[0])
	assert.Equal(t, []string{"Иванов", "0.8", "1", "0", "0.5"}, records[2])
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"Иванов", "Иванов"},
		{0.8, "0.8"},
		{1.0, "1"},
		{1.0 / 3, "0.3333333333333333"},
		{7, "7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in))
	}
}
