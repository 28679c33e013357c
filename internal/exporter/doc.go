// Package exporter writes the prolongation report tables.
//
// WriteWorkbook renders all four tables as sheets of one XLSX workbook, in the
// order annual, monthly pivot, project details, summary data. The monthly pivot
// sheet carries a two-row header: coefficient captions over their month columns
// and the months below.
//
// CSVWriter exports the same tables as separate UTF-8 CSV files with a BOM so
// spreadsheet tools detect the encoding.
//
// Example usage:
//
//	if err := exporter.WriteWorkbookFile(paths.ReportPath("prolongation_report.xlsx"), report); err != nil {
//		return err
//	}
//
//	csvWriter := exporter.NewCSVWriter(paths, ';')
//	files, err := csvWriter.WriteReport("prolongation_report", report)
package exporter
