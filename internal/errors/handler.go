package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types returned by the report API (RFC 7807 "type" member).
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"

	TypeInputNotFound  = "/errors/input/not-found"
	TypeInputInvalid   = "/errors/input/invalid"
	TypeReportFailed   = "/errors/report/failed"
	TypeStorageFailure = "/errors/storage/failure"
)

// apiProblemTypes maps APIError codes onto problem types. Unlisted codes are internal.
var apiProblemTypes = map[string]string{
	"VALIDATION_FAILED":   TypeValidation,
	"INVALID_REQUEST":     TypeValidation,
	"NOT_FOUND":           TypeNotFound,
	"PARSING_FAILED":      TypeInputInvalid,
	"REPORT_FAILED":       TypeReportFailed,
	"FILESYSTEM_ERROR":    TypeStorageFailure,
	"PAYLOAD_TOO_LARGE":   TypePayloadTooLarge,
	"RATE_LIMIT_EXCEEDED": TypeRateLimit,
}

type problemKind struct {
	typ   string
	title string
}

// appProblemKinds describes how each input/report failure category is presented.
var appProblemKinds = map[ErrorType]problemKind{
	ErrTypeParsing:    {TypeInputInvalid, "Invalid Input Table"},
	ErrTypeValidation: {TypeValidation, "Validation Failed"},
	ErrTypeNotFound:   {TypeInputNotFound, "Input Not Found"},
	ErrTypeStorage:    {TypeStorageFailure, "Storage Failure"},
}

// ErrorHandler renders failures of the report API as problem details and logs them.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds goroutine stacks
// to responses and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes the matching problem response. A nil err is a no-op.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		append(requestAttrs(r), slog.String("error", err.Error()))...)

	problem := h.ErrorToProblem(err, r)
	if h.includeStack {
		problem.WithExtension("stack", string(debug.Stack()))
	}
	h.respond(w, r, problem)
}

// ErrorToProblem classifies err. Cancellation and deadlines come first so a
// timed-out engine run reads as 504 whatever wrapped it.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	var (
		apiErr      *APIError
		maxBytesErr *http.MaxBytesError
		appErr      *AppError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The report took too long to compute and was cancelled", r.URL.Path)
	case errors.As(err, &apiErr):
		return apiProblem(apiErr, r.URL.Path)
	case errors.As(err, &maxBytesErr):
		return NewProblemDetails(http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "Payload Too Large",
			fmt.Sprintf("The uploaded tables exceed the limit of %d bytes", maxBytesErr.Limit), r.URL.Path)
	case errors.As(err, &appErr):
		return appProblem(appErr, r.URL.Path)
	case strings.Contains(err.Error(), "request body too large"):
		// multipart parsing reports an exceeded limit only as text
		return apiProblem(ErrPayloadTooLarge, r.URL.Path)
	default:
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			"An unexpected error occurred while processing your request", r.URL.Path)
	}
}

func apiProblem(apiErr *APIError, instance string) *ProblemDetails {
	typ, ok := apiProblemTypes[apiErr.ErrorCode]
	if !ok {
		typ = TypeInternal
	}

	problem := NewProblemDetails(apiErr.StatusCode, typ, http.StatusText(apiErr.StatusCode), apiErr.Message, instance).
		WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

func appProblem(appErr *AppError, instance string) *ProblemDetails {
	kind, ok := appProblemKinds[appErr.Type]
	if !ok {
		kind = problemKind{TypeInternal, "Internal Server Error"}
	}

	apiErr := FromAppError(appErr)
	problem := NewProblemDetails(apiErr.StatusCode, kind.typ, kind.title, appErr.Message, instance).
		WithExtension("error_code", apiErr.ErrorCode)
	if len(appErr.Context) > 0 {
		problem.WithExtension("context", appErr.Context)
	}
	return problem
}

// HandlePanic answers a recovered panic with a 500 problem.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	stack := string(debug.Stack())
	h.logger.ErrorContext(r.Context(), "panic recovered",
		append(requestAttrs(r), slog.Any("panic", recovered), slog.String("stack", stack))...)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprint(recovered)).WithExtension("stack", stack)
	}
	h.respond(w, r, problem)
}

// NotFound is the router's 404 handler.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path))
}

// MethodNotAllowed is the router's 405 handler.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path))
}

func (h *ErrorHandler) respond(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	problem.WithExtension("trace_id", middleware.GetReqID(r.Context()))
	if err := render.Render(w, r, problem); err != nil {
		h.logger.WarnContext(r.Context(), "failed to render problem", slog.String("error", err.Error()))
	}
}

// Middleware turns panics in next into problem responses and logs every
// 4xx/5xx status next writes.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		defer func() {
			if rvr := recover(); rvr != nil {
				h.HandlePanic(sw, r, rvr)
			}
			if sw.status >= http.StatusBadRequest {
				h.logger.WarnContext(r.Context(), "error response",
					append(requestAttrs(r), slog.Int("status", sw.status))...)
			}
		}()
		next.ServeHTTP(sw, r)
	})
}

func requestAttrs(r *http.Request) []any {
	return []any{
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
}

// statusWriter records the first status written to the response.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
