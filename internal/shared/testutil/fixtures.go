package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Two projects completed in January 2023. A keeps 800 of 1000 in February and
// B drops to zero, so the department February K1 is 800 / 2000 = 0.4.
const (
	CompletionCSV = "id,month,AM\n" +
		"A,Январь 2023,Иванов\n" +
		"B,Январь 2023,Петров\n"

	FinancialCSV = "id,Январь 2023,Февраль 2023\n" +
		"A,1000,800\n" +
		"B,1000,0\n"

	// DepartmentFebruaryK1 is the department K1 for February 2023 of the fixtures above
	DepartmentFebruaryK1 = 0.4
)

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Workbook builds an XLSX file with rows on its first sheet
func Workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
