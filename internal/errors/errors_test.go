package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := errors.New("unexpected EOF")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "parsing error keeps cause",
			err:      NewParsingError("read financial table", cause),
			wantType: ErrTypeParsing,
			wantMsg:  "[PARSING] read financial table: unexpected EOF",
		},
		{
			name:     "storage error",
			err:      NewStorageError("open input", cause),
			wantType: ErrTypeStorage,
			wantMsg:  "[STORAGE] open input: unexpected EOF",
		},
		{
			name:     "validation error has no cause",
			err:      NewAppValidationError("unsupported input format"),
			wantType: ErrTypeValidation,
			wantMsg:  "[VALIDATION] unsupported input format",
		},
		{
			name:     "not found error",
			err:      NewNotFoundError("prolongations.csv"),
			wantType: ErrTypeNotFound,
			wantMsg:  "[NOT_FOUND] prolongations.csv not found",
		},
		{
			name:     "config error",
			err:      NewConfigError("invalid port", nil),
			wantType: ErrTypeConfig,
			wantMsg:  "[CONFIG] invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrapAndContext(t *testing.T) {
	cause := errors.New("missing column")
	err := fmt.Errorf("load: %w", NewParsingError("bad header", cause).WithContext("column", "AM"))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AM", appErr.Context["column"])
}

func TestFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"parsing", NewParsingError("bad", nil), http.StatusUnprocessableEntity, "PARSING_FAILED"},
		{"validation", NewAppValidationError("bad"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"not found", NewNotFoundError("x"), http.StatusNotFound, "NOT_FOUND"},
		{"storage", NewStorageError("disk", nil), http.StatusInternalServerError, "FILESYSTEM_ERROR"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromAppError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "", "/api/reports").
		WithExtension("error_code", "VALIDATION_FAILED")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, TypeValidation, m["type"])
	assert.Equal(t, float64(http.StatusBadRequest), m["status"])
	assert.Equal(t, "VALIDATION_FAILED", m["error_code"])
	assert.Equal(t, "/api/reports", m["instance"])
	_, hasDetail := m["detail"]
	assert.False(t, hasDetail)
}
