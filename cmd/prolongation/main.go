package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"prolongation/internal/config"
	apperrors "prolongation/internal/errors"
	"prolongation/internal/files"
	"prolongation/internal/infrastructure"
	"prolongation/internal/services"
	"prolongation/internal/validation"
)

// options holds the command line flags
type options struct {
	configFile string
	baseDir    string
	inDir      string
	output     string
	completion string
	financial  string
	separator  string
	csv        bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		logger = infrastructure.NewLogger(os.Stderr, cfg.Logging.Level)
		logger.Warn("Failed to initialize logger, logging to stderr", slog.String("error", err.Error()))
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := run(ctx, cfg, opts, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Report generation failed", slog.String("error", err.Error()))
		stop()
		infrastructure.CloseLogFile()
		os.Exit(1)
	}

	fmt.Printf("Report written to %s\n", out.Workbook)
	for _, f := range out.CSV {
		fmt.Printf("CSV written to %s\n", f)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("prolongation", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file (defaults to config.yaml or configs/config.yaml)")
	fs.StringVar(&opts.baseDir, "base", "", "base directory for relative paths (defaults to the executable directory)")
	fs.StringVar(&opts.inDir, "in", "", "input directory holding the completion and financial tables (defaults to data/input)")
	fs.StringVar(&opts.output, "out", "", "output workbook; relative names go to the reports directory")
	fs.StringVar(&opts.completion, "completion", "", "completion table (.csv or .xlsx); skips discovery")
	fs.StringVar(&opts.financial, "financial", "", "financial table (.csv or .xlsx); skips discovery")
	fs.StringVar(&opts.separator, "sep", "", "CSV field separator (defaults to the configured one)")
	fs.BoolVar(&opts.csv, "csv", false, "also write the four tables as CSV files")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return options{}, err
	}
	return opts, nil
}

// loadConfig loads the configuration and applies the flag overrides
func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}

	if opts.csv {
		cfg.Report.ExportCSV = true
	}
	if opts.separator != "" {
		cfg.Report.Separator = opts.separator
	}
	if len([]rune(cfg.Report.Separator)) != 1 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("separator must be a single character, got %q", cfg.Report.Separator), nil)
	}
	return cfg, nil
}

// run discovers the inputs, generates the report and writes it
func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) (services.Outputs, error) {
	ctx = infrastructure.EnsureTraceID(ctx)

	paths, err := resolvePaths(cfg, opts)
	if err != nil {
		return services.Outputs{}, err
	}
	paths.LogPathResolution(logger)

	// The batch command exports spans only; there is no scrape endpoint
	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.EnableMetrics = false
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return services.Outputs{}, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateReportMetrics(providers.Meter)
	if err != nil {
		return services.Outputs{}, fmt.Errorf("failed to create report metrics: %w", err)
	}

	completion, financial, err := locateInputs(cfg.Report, paths, opts, logger)
	if err != nil {
		return services.Outputs{}, err
	}

	logger.InfoContext(ctx, "Starting prolongation report",
		slog.String("completion", completion),
		slog.String("financial", financial),
		slog.String("reports_dir", paths.ReportsDir),
		slog.Bool("csv", cfg.Report.ExportCSV))

	svc := services.NewReportService(cfg.Report, paths, metrics, logger)

	report, err := svc.GenerateFromFiles(ctx, completion, financial)
	if err != nil {
		return services.Outputs{}, err
	}

	out, err := svc.WriteOutputs(ctx, report, opts.output)
	if err != nil {
		return services.Outputs{}, err
	}

	logger.InfoContext(ctx, "Prolongation report complete",
		slog.Int("projects_analysed", report.Stats.Analysed),
		slog.Int("projects_excluded", report.Stats.Excluded),
		slog.Int("managers", report.Stats.Managers),
		slog.Int("detail_rows", report.Stats.DetailRows),
		slog.String("workbook", out.Workbook))

	return out, nil
}

func resolvePaths(cfg *config.Config, opts options) (*config.Paths, error) {
	var paths *config.Paths
	if opts.baseDir != "" {
		base, err := filepath.Abs(opts.baseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve base directory: %w", err)
		}
		paths = cfg.PathsFrom(base)
	} else {
		var err error
		if paths, err = cfg.GetPaths(); err != nil {
			return nil, err
		}
	}

	if opts.inDir != "" {
		in, err := filepath.Abs(opts.inDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve input directory: %w", err)
		}
		paths.InputDir = in
	}
	return paths, nil
}

// locateInputs returns the explicit table paths, discovering the missing
// ones in the input directory
func locateInputs(cfg config.ReportConfig, paths *config.Paths, opts options, logger *slog.Logger) (string, string, error) {
	discovery := files.NewDiscovery(paths.BaseDir)
	validator := validation.NewFileValidator(logger)

	find := func(explicit, base string) (string, error) {
		if explicit != "" {
			return explicit, nil
		}
		if err := validator.ValidateInputDirectory(paths.InputDir); err != nil {
			return "", err
		}
		f, err := discovery.FindInput(paths.InputDir, base)
		if err != nil {
			return "", err
		}
		return f.Path, nil
	}

	completion, err := find(opts.completion, cfg.CompletionFile)
	if err != nil {
		return "", "", err
	}
	financial, err := find(opts.financial, cfg.FinancialFile)
	if err != nil {
		return "", "", err
	}
	return completion, financial, nil
}
