package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"prolongation/internal/config"
)

type contextKey string

// TraceIDContextKey carries the report run id through a context.
const TraceIDContextKey contextKey = "trace_id"

// Values accepted by config.LoggingConfig.Output.
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputBoth    = "both"
)

var (
	logFileMu sync.Mutex
	logFile   *os.File
)

// InitializeLogger builds the process logger from cfg and installs it as the
// slog default. Calling it again swaps the logger and closes the log file the
// previous call opened.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	w, file, err := logOutput(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	logFileMu.Lock()
	prev := logFile
	logFile = file
	logFileMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}

	logger := slog.New(newRunHandler(w, parseLogLevel(cfg.Level), cfg.Development))
	slog.SetDefault(logger)
	return logger, nil
}

// NewLogger builds a JSON logger writing to w without touching the default
// logger. The batch CLI uses it for stderr diagnostics.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(newRunHandler(w, parseLogLevel(level), false))
}

// CloseLogFile closes the file opened by InitializeLogger, if any.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// logOutput resolves the configured output mode. file is non-nil only when a
// log file had to be opened.
func logOutput(cfg config.LoggingConfig, console io.Writer) (w io.Writer, file *os.File, err error) {
	mode := strings.ToLower(cfg.Output)
	if mode != OutputFile && mode != OutputBoth {
		return console, nil, nil
	}

	file, err = openLogFile(cfg.FilePath)
	if err != nil {
		return nil, nil, err
	}
	if mode == OutputFile {
		return file, file, nil
	}
	return io.MultiWriter(console, file), file, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// parseLogLevel accepts the slog level names in any case plus "warning".
// Anything else logs at info.
func parseLogLevel(name string) slog.Level {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// runHandler stamps every record with the run's trace id and, inside a
// recording span, the span id so log lines line up with exported stage spans.
type runHandler struct {
	slog.Handler
}

func newRunHandler(w io.Writer, level slog.Level, addSource bool) *runHandler {
	return &runHandler{Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})}
}

func (h *runHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{Handler: h.Handler.WithGroup(name)}
}

// WithTraceID returns ctx tagged with traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the trace id carried by ctx, or "".
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return id
	}
	return ""
}
