package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "prolongation/internal/errors"
)

// Format is the encoding of an input table.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", apperrors.NewAppValidationError(fmt.Sprintf("unsupported input file type: %s", filepath.Base(path)))
	}
}

// Table is a header plus data rows. Rows may be shorter than the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the named header, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at row and column, or "" when the row is short.
func (t Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Options configures table reading.
type Options struct {
	// Separator is the CSV field delimiter. Zero means comma.
	Separator rune
	// Sheet selects an XLSX sheet by name. Empty means the first sheet.
	Sheet string
}

// Load reads a table from a file, choosing the format from its extension.
func Load(path string, opts Options) (Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Table{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, apperrors.NewNotFoundError(fmt.Sprintf("input file %s", path))
		}
		return Table{}, apperrors.NewStorageError("open input file", err)
	}
	defer f.Close()

	t, err := Read(f, format, opts)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Read reads a table in the given format.
func Read(r io.Reader, format Format, opts Options) (Table, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(r, opts.Separator)
	case FormatXLSX:
		records, err = readXLSX(r, opts.Sheet)
	default:
		return Table{}, apperrors.NewAppValidationError(fmt.Sprintf("unsupported input format: %q", format))
	}
	if err != nil {
		return Table{}, err
	}
	return newTable(records)
}

func readCSV(r io.Reader, sep rune) ([][]string, error) {
	reader := csv.NewReader(r)
	if sep != 0 {
		reader.Comma = sep
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("read CSV records", err)
	}
	return records, nil
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no sheets", ErrEmptyTable)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read sheet %q", sheet), err)
	}
	return rows, nil
}

// newTable splits raw records into header and rows, dropping blank rows and the BOM.
func newTable(records [][]string) (Table, error) {
	var t Table
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if t.Header == nil {
			t.Header = make([]string, len(rec))
			for i, h := range rec {
				t.Header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			}
			continue
		}
		t.Rows = append(t.Rows, rec)
	}

	if t.Header == nil || len(t.Rows) == 0 {
		return Table{}, apperrors.NewParsingError("table has no data rows", ErrEmptyTable)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
