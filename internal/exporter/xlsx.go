package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"prolongation/internal/prolongation"
)

const (
	defaultColWidth = 16
	firstColWidth   = 24
	coefficientFmt  = "0.0000"
)

// WriteWorkbook renders the four report tables as sheets of one XLSX workbook.
func WriteWorkbook(w io.Writer, r *prolongation.Report) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteWorkbookFile writes the workbook to path, creating parent directories.
func WriteWorkbookFile(path string, r *prolongation.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook file: %w", err)
	}

	if err := WriteWorkbook(file, r); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func buildWorkbook(r *prolongation.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(coefficientFmt)})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}

	for i, t := range reportTables(r) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", t.name, err)
		}

		if err := writeSheet(f, t, headerStyle, numberStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", t.name, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// writeSheet streams one table into its sheet
func writeSheet(f *excelize.File, t table, headerStyle, numberStyle int) error {
	sw, err := f.NewStreamWriter(t.name)
	if err != nil {
		return err
	}

	width := columnCount(t)
	if width > 0 {
		if err := sw.SetColWidth(1, 1, firstColWidth); err != nil {
			return err
		}
	}
	if width > 1 {
		if err := sw.SetColWidth(2, width, defaultColWidth); err != nil {
			return err
		}
	}

	rowNum := 1
	for _, header := range t.header {
		cells := make([]interface{}, len(header))
		for i, caption := range header {
			cells[i] = excelize.Cell{StyleID: headerStyle, Value: caption}
		}
		if err := setRow(sw, rowNum, cells); err != nil {
			return err
		}
		rowNum++
	}

	for _, row := range t.rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			if num, ok := v.(float64); ok {
				cells[i] = excelize.Cell{StyleID: numberStyle, Value: num}
				continue
			}
			cells[i] = v
		}
		if err := setRow(sw, rowNum, cells); err != nil {
			return err
		}
		rowNum++
	}

	for _, s := range t.spans {
		from, err := excelize.CoordinatesToCellName(s.from, s.row)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(s.to, s.row)
		if err != nil {
			return err
		}
		if err := sw.MergeCell(from, to); err != nil {
			return err
		}
	}

	return sw.Flush()
}

func setRow(sw *excelize.StreamWriter, rowNum int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return sw.SetRow(cell, cells)
}

func columnCount(t table) int {
	n := 0
	for _, h := range t.header {
		if len(h) > n {
			n = len(h)
		}
	}
	return n
}

func strPtr(s string) *string {
	return &s
}
