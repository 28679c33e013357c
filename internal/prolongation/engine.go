package prolongation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"prolongation/internal/infrastructure"
)

// TracerName is the instrumentation scope of engine spans.
const TracerName = "prolongation/engine"

// Input is the pair of validated in-memory tables the engine runs on.
type Input struct {
	Projects  []ProjectRecord
	Financial []FinancialRow
}

// RunStats counts rows at each stage of a run.
type RunStats struct {
	CompletionRecords int                     `json:"completion_records"`
	FinancialRows     int                     `json:"financial_rows"`
	Series            int                     `json:"series"`
	Merged            int                     `json:"merged"`
	Excluded          int                     `json:"excluded"`
	ExcludedByReason  map[ExclusionReason]int `json:"excluded_by_reason,omitempty"`
	Analysed          int                     `json:"analysed"`
	Managers          int                     `json:"managers"`
	Observations      int                     `json:"observations"`
	DetailRows        int                     `json:"detail_rows"`
}

// Report holds the four output tables of a run.
type Report struct {
	Annual     []AnnualEntry      `json:"annual"`
	Pivot      MonthlyPivot       `json:"pivot"`
	Summary    []CoefficientEntry `json:"summary"`
	Details    []DetailRow        `json:"details"`
	Exclusions []Exclusion        `json:"-"`
	Stats      RunStats           `json:"stats"`
}

// Engine runs the prolongation pipeline.
type Engine struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewEngine creates an engine. A nil logger falls back to slog.Default.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: infrastructure.WithComponent(logger, "prolongation_engine"),
		tracer: otel.Tracer(TracerName),
	}
}

// Run executes every stage in order and assembles the report. Messy input never
// fails a run; the only error is a cancelled or expired context.
func (e *Engine) Run(ctx context.Context, in Input) (*Report, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "prolongation.run")
	defer span.End()

	report := &Report{Stats: RunStats{
		CompletionRecords: len(in.Projects),
		FinancialRows:     len(in.Financial),
	}}

	var (
		series       []FinancialSeries
		merged       []MergedProject
		kept         []MergedProject
		managers     []string
		observations []Observation
		result       CoefficientResult
	)

	stages := []struct {
		name string
		run  func() int
	}{
		{"aggregate", func() int {
			series = AggregateFinancial(in.Financial)
			return len(series)
		}},
		{"join", func() int {
			merged = JoinProjects(in.Projects, series)
			return len(merged)
		}},
		{"stop_filter", func() int {
			kept, report.Exclusions = FilterStopped(merged)
			managers = Managers(kept)
			return len(kept)
		}},
		{"reshape", func() int {
			observations = Reshape(kept)
			return len(observations)
		}},
		{"coefficients", func() int {
			result = CalculateCoefficients(observations, managers)
			return len(result.Entries)
		}},
		{"annual", func() int {
			report.Annual = AggregateAnnual(result.Details)
			return len(report.Annual)
		}},
		{"tables", func() int {
			report.Summary = SortSummary(result.Entries)
			report.Pivot = BuildMonthlyPivot(report.Summary)
			report.Details = result.Details
			return len(report.Pivot.Rows)
		}},
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("prolongation %s stage: %w", st.name, err)
		}
		_, stageSpan := e.tracer.Start(ctx, "prolongation."+st.name)
		rows := st.run()
		stageSpan.SetAttributes(attribute.Int("rows", rows))
		stageSpan.End()

		e.logger.DebugContext(ctx, "stage completed",
			slog.String("stage", st.name),
			slog.Int("rows", rows))
	}

	report.Stats.Series = len(series)
	report.Stats.Merged = len(merged)
	report.Stats.Excluded = len(report.Exclusions)
	report.Stats.Analysed = len(kept)
	report.Stats.Managers = len(managers)
	report.Stats.Observations = len(observations)
	report.Stats.DetailRows = len(result.Details)
	if len(report.Exclusions) > 0 {
		report.Stats.ExcludedByReason = make(map[ExclusionReason]int)
		for _, ex := range report.Exclusions {
			report.Stats.ExcludedByReason[ex.Reason]++
		}
	}

	span.SetAttributes(
		attribute.Int("projects.merged", report.Stats.Merged),
		attribute.Int("projects.excluded", report.Stats.Excluded),
		attribute.Int("projects.analysed", report.Stats.Analysed),
	)

	if len(result.Details) == 0 {
		e.logger.WarnContext(ctx, "insufficient data for coefficient calculation",
			slog.Int("analysed", report.Stats.Analysed))
	}

	e.logger.InfoContext(ctx, "prolongation report computed",
		slog.Int("merged", report.Stats.Merged),
		slog.Int("excluded", report.Stats.Excluded),
		slog.Int("analysed", report.Stats.Analysed),
		slog.Int("managers", report.Stats.Managers),
		slog.Int("detail_rows", report.Stats.DetailRows),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}
