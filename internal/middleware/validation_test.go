package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "prolongation/internal/errors"
)

type uploadRequest struct {
	Format     string `form:"format" validate:"oneof=json xlsx"`
	Completion string `form:"completion" validate:"required,filename,tablefile"`
}

func TestValidateStruct(t *testing.T) {
	v := NewValidationMiddleware(testLogger(nil), apierrors.NewErrorHandler(testLogger(nil), false))

	tests := []struct {
		name    string
		req     uploadRequest
		wantErr map[string]string
	}{
		{
			name: "valid",
			req:  uploadRequest{Format: "json", Completion: "prolongations.csv"},
		},
		{
			name:    "bad format",
			req:     uploadRequest{Format: "pdf", Completion: "prolongations.xlsx"},
			wantErr: map[string]string{"format": "format must be one of: json, xlsx"},
		},
		{
			name:    "missing file",
			req:     uploadRequest{Format: "xlsx"},
			wantErr: map[string]string{"completion": "completion is required"},
		},
		{
			name:    "unsupported extension",
			req:     uploadRequest{Format: "json", Completion: "data.txt"},
			wantErr: map[string]string{"completion": "completion must be one of: .csv, .xlsx"},
		},
		{
			name:    "path traversal",
			req:     uploadRequest{Format: "json", Completion: "../secret.csv"},
			wantErr: map[string]string{"completion": "completion must be a valid filename"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			got := make(map[string]string, len(details.Errors))
			for _, fe := range details.Errors {
				got[fe.Field] = fe.Message
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	v := NewValidationMiddleware(testLogger(nil), apierrors.NewErrorHandler(testLogger(nil), false))
	h := v.ContentTypeValidator("multipart/form-data")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{name: "get skips check", method: http.MethodGet, want: http.StatusOK},
		{name: "multipart accepted", method: http.MethodPost, contentType: "multipart/form-data; boundary=x", want: http.StatusOK},
		{name: "missing", method: http.MethodPost, want: http.StatusBadRequest},
		{name: "json rejected", method: http.MethodPost, contentType: "application/json", want: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/reports", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
