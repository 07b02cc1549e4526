package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
)

// FileBackend keeps the snapshot in a single file with optional versioning.
type FileBackend struct {
	path     string
	versions int
	logger   *common.Logger
}

// NewFileBackend creates a FileBackend and ensures the parent directory exists.
func NewFileBackend(logger *common.Logger, config *common.FileConfig) (*FileBackend, error) {
	versions := config.Versions
	if versions < 0 {
		versions = 0
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	logger.Debug().Str("path", config.Path).Int("versions", versions).Msg("FileBackend opened")
	return &FileBackend{
		path:     config.Path,
		versions: versions,
		logger:   logger,
	}, nil
}

func (fb *FileBackend) Name() string { return common.BackendFile }

// Path returns the snapshot file location.
func (fb *FileBackend) Path() string { return fb.path }

// ReadSnapshot reads the snapshot file.
func (fb *FileBackend) ReadSnapshot(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(fb.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("'%s': %w", fb.path, interfaces.ErrNoSnapshot)
		}
		return nil, fmt.Errorf("failed to read %s: %w", fb.path, err)
	}
	return data, nil
}

// WriteSnapshot writes data atomically: temp file in the same directory,
// then rename over the target. Previous contents rotate into .v1..vN first.
func (fb *FileBackend) WriteSnapshot(_ context.Context, data []byte) error {
	dir := filepath.Dir(fb.path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if fb.versions > 0 {
		fb.rotateVersions()
	}

	if err := os.Rename(tmpPath, fb.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// rotateVersions shifts existing versions up and links the current file as v1.
// v{N} -> deleted, v{N-1} -> v{N}, ..., v1 -> v2, current -> v1
// The current file stays in place until the rename in WriteSnapshot replaces it.
func (fb *FileBackend) rotateVersions() {
	os.Remove(fb.versionPath(fb.versions))

	for i := fb.versions; i > 1; i-- {
		os.Rename(fb.versionPath(i-1), fb.versionPath(i)) // may not exist yet
	}

	if _, err := os.Stat(fb.path); err == nil {
		v1 := fb.versionPath(1)
		os.Remove(v1)
		if err := os.Link(fb.path, v1); err != nil {
			fb.logger.Warn().Err(err).Str("path", v1).Msg("Failed to keep previous snapshot version")
		}
	}
}

func (fb *FileBackend) versionPath(n int) string {
	return fmt.Sprintf("%s.v%d", fb.path, n)
}

func (fb *FileBackend) Close() error { return nil }
