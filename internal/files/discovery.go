package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "prolongation/internal/errors"
)

// InputExtensions lists the table formats accepted as report inputs, in
// lookup priority order.
var InputExtensions = []string{".csv", ".xlsx"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindInput locates the input table named base inside dir, trying each of
// InputExtensions in turn. Office lock files (~$name.xlsx) are never matched.
func (d *Discovery) FindInput(dir, base string) (FileInfo, error) {
	candidates, err := d.FindInputFiles(dir)
	if err != nil {
		return FileInfo{}, err
	}

	for _, ext := range InputExtensions {
		for _, f := range candidates {
			stem := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
			if strings.EqualFold(stem, base) && strings.EqualFold(filepath.Ext(f.Name), ext) {
				return f, nil
			}
		}
	}

	return FileInfo{}, apperrors.NewNotFoundError(fmt.Sprintf("input table %s (%s)", base, strings.Join(InputExtensions, ", "))).
		WithContext("directory", d.resolve(dir))
}

// FindInputFiles lists every file in dir with a supported input extension,
// oldest first.
func (d *Discovery) FindInputFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("input directory %s", fullPath))
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", fullPath), err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, "~$") || !isInputExtension(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Sort by modification time (oldest first)
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// resolve joins relative directories onto the base path
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

func isInputExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range InputExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
