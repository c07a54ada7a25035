// Package report persists run reports as JSON files.
package report

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/zerr"
)

// ErrReportNotFound is returned when no report exists at the requested path.
var ErrReportNotFound = zerr.New("run report not found")

// Store implements ports.ReportStore using JSON files.
type Store struct {
	mu sync.Mutex
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Write stores the report at path. The file is replaced atomically so that a
// reader never observes a partially written report.
func (s *Store) Write(path string, report *domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path = filepath.Clean(path)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal run report")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory for run report"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create run report"), "path", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write run report"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write run report"), "path", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // reports are meant to be shared
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write run report"), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to replace run report"), "path", path)
	}
	return nil
}

// Read loads the report stored at path.
func (s *Store) Read(path string) (*domain.RunReport, error) {
	//nolint:gosec // Path is provided by trusted caller
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(ErrReportNotFound, "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read run report"), "path", path)
	}

	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to unmarshal run report"), "path", path)
	}
	return &report, nil
}
