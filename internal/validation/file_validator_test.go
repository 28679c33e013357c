package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "prolongation/internal/errors"
)

func newValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func requireAppErrorType(t *testing.T, err error, want apperrors.ErrorType) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, want, appErr.Type)
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
	}{
		{
			name: "existing directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "non-existent directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "path is file not directory",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "prolongations.csv")
				require.NoError(t, os.WriteFile(file, []byte("id"), 0644))
				return file
			},
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator().ValidateInputDirectory(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			requireAppErrorType(t, err, tt.wantType)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")
	require.NoError(t, newValidator().ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err), "probe file must be removed")
}

func TestFileValidator_ValidateInputTable(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantType apperrors.ErrorType
	}{
		{name: "csv table", file: "prolongations.csv", content: "id,month,AM\n"},
		{name: "xlsx table", file: "financial_data.xlsx", content: "PK"},
		{name: "empty file", file: "prolongations.csv", content: "", wantType: apperrors.ErrTypeValidation},
		{name: "wrong extension", file: "prolongations.json", content: "{}", wantType: apperrors.ErrTypeValidation},
		{name: "lock file", file: "~$financial_data.xlsx", content: "x", wantType: apperrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			err := newValidator().ValidateInputTable(path)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			requireAppErrorType(t, err, tt.wantType)
		})
	}
}

func TestFileValidator_ValidateFile(t *testing.T) {
	v := newValidator()

	requireAppErrorType(t, v.ValidateFile(filepath.Join(t.TempDir(), "absent.csv")), apperrors.ErrTypeNotFound)
	requireAppErrorType(t, v.ValidateFile(t.TempDir()), apperrors.ErrTypeValidation)
}
