package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "prolongation/internal/errors"
	"prolongation/internal/infrastructure"
	"prolongation/internal/middleware"
	"prolongation/internal/prolongation"
	"prolongation/internal/services"
)

// Response formats of POST /api/reports
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Multipart field names
const (
	fieldCompletion = "completion"
	fieldFinancial  = "financial"
	fieldFormat     = "format"
)

// reportRequest is the validated shape of the multipart upload
type reportRequest struct {
	Format     string `form:"format" validate:"oneof=json xlsx"`
	Completion string `form:"completion" validate:"required,filename,tablefile"`
	Financial  string `form:"financial" validate:"required,filename,tablefile"`
}

// reportResponse is the JSON body of a generated report
type reportResponse struct {
	TraceID string `json:"trace_id,omitempty"`
	*prolongation.Report
}

// ReportHandler generates prolongation reports from uploaded tables
type ReportHandler struct {
	service      *services.ReportService
	validator    *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	filename     string
	maxMemory    int64
	logger       *slog.Logger
}

// NewReportHandler creates a report handler. filename names the workbook
// attachment; maxMemory bounds the multipart parts kept in memory.
func NewReportHandler(
	service *services.ReportService,
	validator *middleware.ValidationMiddleware,
	errorHandler *apierrors.ErrorHandler,
	filename string,
	maxMemory int64,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		filename:     filename,
		maxMemory:    maxMemory,
		logger:       logger.With(slog.String("handler", "report")),
	}
}

// Routes sets up the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(h.validator.ContentTypeValidator("multipart/form-data")).Post("/", h.Generate)
	return r
}

// Generate handles POST /api/reports. The completion and financial parts are
// CSV or XLSX tables; format selects a JSON body (default) or the workbook.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req := reportRequest{Format: r.FormValue(fieldFormat)}
	if req.Format == "" {
		req.Format = FormatJSON
	}

	completion, completionHeader, err := formFile(r, fieldCompletion)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if completion != nil {
		defer completion.Close()
		req.Completion = completionHeader.Filename
	}

	financial, financialHeader, err := formFile(r, fieldFinancial)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if financial != nil {
		defer financial.Close()
		req.Financial = financialHeader.Filename
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "generating report",
		slog.String("completion", req.Completion),
		slog.String("financial", req.Financial),
		slog.String("format", req.Format))

	report, err := h.service.GenerateFromReaders(ctx,
		services.Upload{Name: req.Completion, Reader: completion},
		services.Upload{Name: req.Financial, Reader: financial},
	)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if req.Format == FormatXLSX {
		h.writeWorkbook(w, r, report)
		return
	}

	render.JSON(w, r, reportResponse{
		TraceID: middleware.GetRequestID(ctx),
		Report:  report,
	})
}

// writeWorkbook buffers the workbook so a failed export still gets a problem response
func (h *ReportHandler) writeWorkbook(w http.ResponseWriter, r *http.Request, report *prolongation.Report) {
	var buf bytes.Buffer
	if err := h.service.WriteWorkbook(&buf, report); err != nil {
		infrastructure.RecordError(r.Context(), err)
		h.errorHandler.HandleError(w, r, apierrors.ErrReportFailed)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream workbook", slog.String("error", err.Error()))
	}
}

// formFile returns the named part, or nil when the client did not send it
func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}
	return file, header, nil
}
