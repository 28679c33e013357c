package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "prolongation/internal/errors"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("id\n1\n"), 0644))
}

func TestDiscovery_FindInput(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		base     string
		wantName string
		wantErr  bool
	}{
		{
			name:     "csv table",
			files:    []string{"prolongations.csv", "financial_data.csv"},
			base:     "prolongations",
			wantName: "prolongations.csv",
		},
		{
			name:     "xlsx table",
			files:    []string{"financial_data.xlsx"},
			base:     "financial_data",
			wantName: "financial_data.xlsx",
		},
		{
			name:     "csv preferred over xlsx",
			files:    []string{"financial_data.xlsx", "financial_data.csv"},
			base:     "financial_data",
			wantName: "financial_data.csv",
		},
		{
			name:     "extension case ignored",
			files:    []string{"Prolongations.CSV"},
			base:     "prolongations",
			wantName: "Prolongations.CSV",
		},
		{
			name:    "lock file ignored",
			files:   []string{"~$financial_data.xlsx"},
			base:    "financial_data",
			wantErr: true,
		},
		{
			name:    "unsupported extension",
			files:   []string{"prolongations.txt"},
			base:    "prolongations",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			dir := filepath.Join(base, "input")
			require.NoError(t, os.MkdirAll(dir, 0755))
			for _, f := range tt.files {
				touch(t, dir, f)
			}

			got, err := NewDiscovery(base).FindInput("input", tt.base)
			if tt.wantErr {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, filepath.Join(dir, tt.wantName), got.Path)
		})
	}
}

func TestDiscovery_FindInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv")
	touch(t, dir, "b.xlsx")
	touch(t, dir, "notes.md")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0755))

	files, err := NewDiscovery("/unused").FindInputFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.NotEqual(t, "notes.md", f.Name)
		assert.Positive(t, f.Size)
	}
}

func TestDiscovery_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindInputFiles("absent")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}
