package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"prolongation/internal/config"
	"prolongation/internal/dataset"
	apperrors "prolongation/internal/errors"
	"prolongation/internal/exporter"
	"prolongation/internal/infrastructure"
	"prolongation/internal/prolongation"
	"prolongation/internal/validation"
)

const (
	tableCompletion = "completion"
	tableFinancial  = "financial"
)

// Upload is an input table received as a stream, e.g. a multipart file part.
// Name carries the original file name; its extension selects the format.
type Upload struct {
	Name   string
	Reader io.Reader
}

// Outputs lists the files written for one report
type Outputs struct {
	Workbook string   `json:"workbook"`
	CSV      []string `json:"csv,omitempty"`
}

// ReportService loads the two input tables, runs the prolongation engine and
// exports the result.
type ReportService struct {
	cfg       config.ReportConfig
	paths     *config.Paths
	engine    *prolongation.Engine
	validator *validation.FileValidator
	metrics   *infrastructure.ReportMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewReportService creates a report service. metrics may be nil.
func NewReportService(cfg config.ReportConfig, paths *config.Paths, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "report"))

	return &ReportService{
		cfg:       cfg,
		paths:     paths,
		engine:    prolongation.NewEngine(logger),
		validator: validation.NewFileValidator(logger),
		metrics:   metrics,
		tracer:    otel.Tracer("prolongation/services"),
		logger:    logger,
	}
}

// GenerateFromFiles validates and loads both tables from disk, loading them
// concurrently, and runs the engine.
func (s *ReportService) GenerateFromFiles(ctx context.Context, completionPath, financialPath string) (*prolongation.Report, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := s.tracer.Start(ctx, "report.generate_from_files")
	defer span.End()

	start := time.Now()
	report, err := s.generateFromFiles(ctx, completionPath, financialPath)
	s.record(ctx, "files", start, report, err)
	return report, err
}

func (s *ReportService) generateFromFiles(ctx context.Context, completionPath, financialPath string) (*prolongation.Report, error) {
	for _, path := range []string{completionPath, financialPath} {
		if err := s.validator.ValidateInputTable(path); err != nil {
			return nil, err
		}
	}

	opts := s.tableOptions()
	var completion, financial dataset.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := dataset.Load(completionPath, opts)
		if err != nil {
			return withTable(err, tableCompletion)
		}
		completion = t
		return gctx.Err()
	})
	g.Go(func() error {
		t, err := dataset.Load(financialPath, opts)
		if err != nil {
			return withTable(err, tableFinancial)
		}
		financial = t
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "failed to load input tables")
		return nil, err
	}

	s.logger.InfoContext(ctx, "input tables loaded",
		slog.String("completion", filepath.Base(completionPath)),
		slog.Int("completion_rows", completion.Len()),
		slog.String("financial", filepath.Base(financialPath)),
		slog.Int("financial_rows", financial.Len()))

	return s.run(ctx, completion, financial)
}

// GenerateFromReaders loads both tables from streams and runs the engine.
func (s *ReportService) GenerateFromReaders(ctx context.Context, completion, financial Upload) (*prolongation.Report, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := s.tracer.Start(ctx, "report.generate_from_readers")
	defer span.End()

	start := time.Now()
	report, err := s.generateFromReaders(ctx, completion, financial)
	s.record(ctx, "upload", start, report, err)
	return report, err
}

func (s *ReportService) generateFromReaders(ctx context.Context, completionUpload, financialUpload Upload) (*prolongation.Report, error) {
	uploads := []struct {
		name string
		u    Upload
	}{
		{tableCompletion, completionUpload},
		{tableFinancial, financialUpload},
	}
	formats := make(map[string]dataset.Format, len(uploads))
	for _, up := range uploads {
		name, u := up.name, up.u
		if u.Reader == nil {
			return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("%s table is required", name), ErrMissingInput).
				WithContext("table", name)
		}
		format, err := dataset.FormatFromPath(u.Name)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrUnsupportedInput, u.Name, withTable(err, name))
		}
		formats[name] = format
	}

	opts := s.tableOptions()
	var completion, financial dataset.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := dataset.Read(completionUpload.Reader, formats[tableCompletion], opts)
		if err != nil {
			return withTable(err, tableCompletion)
		}
		completion = t
		return gctx.Err()
	})
	g.Go(func() error {
		t, err := dataset.Read(financialUpload.Reader, formats[tableFinancial], opts)
		if err != nil {
			return withTable(err, tableFinancial)
		}
		financial = t
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "rejected uploaded tables")
		return nil, err
	}

	return s.run(ctx, completion, financial)
}

// run converts the tables into engine rows and executes the engine
func (s *ReportService) run(ctx context.Context, completion, financial dataset.Table) (*prolongation.Report, error) {
	projects, err := dataset.CompletionRows(completion)
	if err != nil {
		return nil, withTable(err, tableCompletion)
	}

	rows, err := dataset.FinancialRows(financial)
	if err != nil {
		return nil, withTable(err, tableFinancial)
	}

	if missing := dataset.MissingMonths(financial); len(missing) > 0 {
		s.logger.WarnContext(ctx, "financial table lacks calendar month columns; treating them as zero",
			slog.Int("missing", len(missing)),
			slog.String("months", strings.Join(missing, ", ")))
	}

	return s.engine.Run(ctx, prolongation.Input{Projects: projects, Financial: rows})
}

// WriteOutputs writes the workbook into the reports directory and, when
// enabled, the CSV exports next to it.
func (s *ReportService) WriteOutputs(ctx context.Context, report *prolongation.Report, outputFile string) (Outputs, error) {
	if outputFile == "" {
		outputFile = s.cfg.OutputFile
	}
	path := outputFile
	if !filepath.IsAbs(path) {
		path = s.paths.ReportPath(outputFile)
	}

	if err := s.validator.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return Outputs{}, err
	}

	if err := exporter.WriteWorkbookFile(path, report); err != nil {
		return Outputs{}, apperrors.NewStorageError("failed to write report workbook", err).WithContext("path", path)
	}
	out := Outputs{Workbook: path}

	if s.cfg.ExportCSV {
		prefix := strings.TrimSuffix(path, filepath.Ext(path))
		files, err := exporter.NewCSVWriter(s.paths, s.cfg.SeparatorRune()).WriteReport(prefix, report)
		if err != nil {
			return out, apperrors.NewStorageError("failed to write CSV exports", err)
		}
		out.CSV = files
	}

	s.logger.InfoContext(ctx, "report written",
		slog.String("workbook", out.Workbook),
		slog.Int("csv_files", len(out.CSV)))

	return out, nil
}

// WriteWorkbook streams the workbook of report into w
func (s *ReportService) WriteWorkbook(w io.Writer, report *prolongation.Report) error {
	return exporter.WriteWorkbook(w, report)
}

func (s *ReportService) tableOptions() dataset.Options {
	return dataset.Options{Separator: s.cfg.SeparatorRune()}
}

// record emits the run metrics and the span outcome
func (s *ReportService) record(ctx context.Context, source string, start time.Time, report *prolongation.Report, err error) {
	var stats prolongation.RunStats
	if report != nil {
		stats = report.Stats
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("report.source", source),
		attribute.Int("report.detail_rows", stats.DetailRows),
	)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}

	infrastructure.RecordReportRun(ctx, s.metrics, source, time.Since(start),
		stats.Analysed, stats.Excluded, stats.DetailRows, err)
}

// withTable tags collaborator errors with the table they came from
func withTable(err error, table string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		appErr.WithContext("table", table)
		return err
	}
	return fmt.Errorf("%s table: %w", table, err)
}
