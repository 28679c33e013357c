package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"prolongation/internal/config"
	"prolongation/internal/prolongation"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths     *config.Paths
	separator rune
}

// NewCSVWriter creates a new CSV writer instance. A zero separator means comma.
func NewCSVWriter(paths *config.Paths, separator rune) *CSVWriter {
	if separator == 0 {
		separator = ','
	}
	return &CSVWriter{paths: paths, separator: separator}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   [][]string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	// Ensure directory exists
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Write BOM if requested (helps Excel recognize UTF-8)
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	writer.Comma = w.separator

	for _, header := range options.Headers {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteReport writes each report table to <prefix>_<table>.csv and returns
// the written paths in workbook order.
func (w *CSVWriter) WriteReport(prefix string, r *prolongation.Report) ([]string, error) {
	var written []string
	for _, t := range reportTables(r) {
		name := fmt.Sprintf("%s_%s.csv", prefix, t.slug)

		records := make([][]string, len(t.rows))
		for i, row := range t.rows {
			record := make([]string, len(row))
			for j, v := range row {
				record[j] = formatCell(v)
			}
			records[i] = record
		}

		err := w.WriteCSV(name, WriteOptions{
			Headers:   t.header,
			Records:   records,
			BOMPrefix: true,
		})
		if err != nil {
			return written, fmt.Errorf("failed to export %s table: %w", t.slug, err)
		}
		written = append(written, w.resolvePath(name))
	}
	return written, nil
}

// resolvePath resolves a relative path against the reports directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.ReportPath(filePath)
}
