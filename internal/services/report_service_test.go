package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"prolongation/internal/config"
	"prolongation/internal/dataset"
	apperrors "prolongation/internal/errors"
	"prolongation/internal/infrastructure"
	"prolongation/internal/prolongation"
	"prolongation/internal/shared/testutil"
)

const (
	completionFixture = "id,month,AM\n" +
		"A,Январь 2023,Иванов\n" +
		"B,январь 2023,Петров\n" +
		"S,Февраль 2023,Петров\n"

	financialFixture = "id,Январь 2023,Февраль 2023,Март 2023\n" +
		"A,1 000,800,\n" +
		"B,500,0,\n" +
		"B,500,,250\n" +
		"S,стоп,100,100\n"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, mutate func(*config.ReportConfig)) (*ReportService, *config.Paths) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg.Report)
	}
	paths := cfg.PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	metrics, err := infrastructure.CreateReportMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	return NewReportService(cfg.Report, paths, metrics, testLogger()), paths
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	return testutil.WriteFile(t, filepath.Join(dir, name), content)
}

func entry(t *testing.T, report *prolongation.Report, month, manager string) prolongation.CoefficientEntry {
	t.Helper()
	for _, e := range report.Summary {
		if e.Month == month && e.Manager == manager {
			return e
		}
	}
	t.Fatalf("no entry for %s / %s", month, manager)
	return prolongation.CoefficientEntry{}
}

func TestReportService_GenerateFromFiles(t *testing.T) {
	svc, paths := newTestService(t, nil)
	completion := writeInput(t, paths.InputDir, "prolongations.csv", completionFixture)
	financial := writeInput(t, paths.InputDir, "financial_data.csv", financialFixture)

	report, err := svc.GenerateFromFiles(context.Background(), completion, financial)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Stats.CompletionRecords)
	assert.Equal(t, 3, report.Stats.Series)
	assert.Equal(t, 1, report.Stats.Excluded)
	assert.Equal(t, 2, report.Stats.Analysed)

	assert.InDelta(t, 0.8, entry(t, report, "Февраль 2023", "Иванов").K1, 1e-12)
	assert.InDelta(t, 0.0, entry(t, report, "Февраль 2023", "Петров").K1, 1e-12)
	// department: (800 + 0) / (1000 + 1000)
	assert.InDelta(t, 0.4, entry(t, report, "Февраль 2023", prolongation.DepartmentLabel).K1, 1e-12)

	require.NotEmpty(t, report.Annual)
	assert.Equal(t, prolongation.DepartmentLabel, report.Annual[len(report.Annual)-1].Manager)
}

func TestReportService_GenerateFromFilesErrors(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		financial  string
		wantType   apperrors.ErrorType
		wantTable  string
	}{
		{
			name:       "missing manager column",
			completion: "id,month\nA,Январь 2023\n",
			financial:  financialFixture,
			wantType:   apperrors.ErrTypeParsing,
			wantTable:  "completion",
		},
		{
			name:       "header only financial",
			completion: completionFixture,
			financial:  "id,Январь 2023\n",
			wantType:   apperrors.ErrTypeParsing,
			wantTable:  "financial",
		},
		{
			name:       "empty financial file",
			completion: completionFixture,
			financial:  "",
			wantType:   apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, paths := newTestService(t, nil)
			completion := writeInput(t, paths.InputDir, "prolongations.csv", tt.completion)
			financial := writeInput(t, paths.InputDir, "financial_data.csv", tt.financial)

			_, err := svc.GenerateFromFiles(context.Background(), completion, financial)
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			if tt.wantTable != "" {
				assert.Equal(t, tt.wantTable, appErr.Context["table"])
			}
		})
	}
}

func TestReportService_GenerateFromFilesMissing(t *testing.T) {
	svc, paths := newTestService(t, nil)
	financial := writeInput(t, paths.InputDir, "financial_data.csv", financialFixture)

	_, err := svc.GenerateFromFiles(context.Background(), filepath.Join(paths.InputDir, "prolongations.csv"), financial)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}

func financialWorkbook(t *testing.T) []byte {
	return testutil.Workbook(t, [][]interface{}{
		{"id", "Январь 2023", "Февраль 2023"},
		{"A", 1000, 800},
		{"B", 1000, "в ноль"},
	})
}

func TestReportService_GenerateFromReaders(t *testing.T) {
	svc, _ := newTestService(t, nil)

	report, err := svc.GenerateFromReaders(context.Background(),
		Upload{Name: "prolongations.csv", Reader: strings.NewReader(completionFixture)},
		Upload{Name: "financial_data.xlsx", Reader: bytes.NewReader(financialWorkbook(t))},
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.8, entry(t, report, "Февраль 2023", "Иванов").K1, 1e-12)
	assert.InDelta(t, 0.4, entry(t, report, "Февраль 2023", prolongation.DepartmentLabel).K1, 1e-12)
}

func TestReportService_GenerateFromReadersSeparator(t *testing.T) {
	svc, _ := newTestService(t, func(r *config.ReportConfig) { r.Separator = ";" })

	completion := strings.ReplaceAll(completionFixture, ",", ";")
	financial := "id;Январь 2023;Февраль 2023\nA;1 000,5;1 000,5\n"

	report, err := svc.GenerateFromReaders(context.Background(),
		Upload{Name: "c.csv", Reader: strings.NewReader(completion)},
		Upload{Name: "f.csv", Reader: strings.NewReader(financial)},
	)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, entry(t, report, "Февраль 2023", "Иванов").K1, 1e-12)
}

func TestReportService_GenerateFromReadersRejects(t *testing.T) {
	svc, _ := newTestService(t, nil)

	t.Run("missing upload", func(t *testing.T) {
		_, err := svc.GenerateFromReaders(context.Background(),
			Upload{Name: "prolongations.csv", Reader: strings.NewReader(completionFixture)},
			Upload{},
		)
		assert.ErrorIs(t, err, ErrMissingInput)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := svc.GenerateFromReaders(context.Background(),
			Upload{Name: "prolongations.json", Reader: strings.NewReader("{}")},
			Upload{Name: "financial_data.csv", Reader: strings.NewReader(financialFixture)},
		)
		assert.ErrorIs(t, err, ErrUnsupportedInput)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
	})

	t.Run("both invalid reports completion first", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			_, err := svc.GenerateFromReaders(context.Background(),
				Upload{},
				Upload{Name: "financial_data.json", Reader: strings.NewReader("{}")},
			)
			require.ErrorIs(t, err, ErrMissingInput)
			assert.NotErrorIs(t, err, ErrUnsupportedInput)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tableCompletion, appErr.Context["table"])
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.GenerateFromReaders(ctx,
			Upload{Name: "prolongations.csv", Reader: strings.NewReader(completionFixture)},
			Upload{Name: "financial_data.csv", Reader: strings.NewReader(financialFixture)},
		)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReportService_LogRecordsCarryTraceID(t *testing.T) {
	cfg := config.Default()
	paths := cfg.PathsFrom(t.TempDir())

	tests := []struct {
		name    string
		ctx     context.Context
		traceID string
	}{
		{name: "caller supplied", ctx: infrastructure.WithTraceID(context.Background(), "run-7"), traceID: "run-7"},
		{name: "generated per run", ctx: context.Background()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			svc := NewReportService(cfg.Report, paths, nil, infrastructure.NewLogger(&buf, "debug"))

			_, err := svc.GenerateFromReaders(tt.ctx,
				Upload{Name: "prolongations.csv", Reader: strings.NewReader(completionFixture)},
				Upload{Name: "financial_data.csv", Reader: strings.NewReader(financialFixture)},
			)
			require.NoError(t, err)

			var engineRecords int
			seen := map[string]bool{}
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				var rec map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
				if rec["component"] == "prolongation_engine" {
					engineRecords++
				}
				assert.Equal(t, "report", rec["service"], rec["msg"])
				id, _ := rec["trace_id"].(string)
				require.NotEmpty(t, id, rec["msg"])
				seen[id] = true
			}

			assert.NotZero(t, engineRecords)
			require.Len(t, seen, 1, "one trace id per run")
			if tt.traceID != "" {
				assert.True(t, seen[tt.traceID])
			}
		})
	}
}

func TestReportService_WriteOutputs(t *testing.T) {
	svc, paths := newTestService(t, func(r *config.ReportConfig) { r.ExportCSV = true })

	report, err := svc.GenerateFromReaders(context.Background(),
		Upload{Name: "prolongations.csv", Reader: strings.NewReader(completionFixture)},
		Upload{Name: "financial_data.csv", Reader: strings.NewReader(financialFixture)},
	)
	require.NoError(t, err)

	out, err := svc.WriteOutputs(context.Background(), report, "")
	require.NoError(t, err)
	assert.Equal(t, paths.ReportPath("prolongation_report.xlsx"), out.Workbook)
	require.Len(t, out.CSV, 4)
	for _, f := range append([]string{out.Workbook}, out.CSV...) {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}

	table, err := dataset.Load(out.Workbook, dataset.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Менеджер", "Годовой_К1", "Годовой_К2"}, table.Header)
}
