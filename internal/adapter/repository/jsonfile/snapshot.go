// Package jsonfile implements the repository ports as JSON snapshot files.
// Each collection lives in one file that is fully overwritten on every save.
package jsonfile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

// snapshotFile stores a []T as an indented JSON array.
//
// Thread-safe: reads and writes are serialized by mu.
type snapshotFile[T any] struct {
	fs       afero.Fs
	path     string
	repoType string
	logger   *slog.Logger
	mu       sync.Mutex
}

func newSnapshotFile[T any](fsys afero.Fs, path, repoType string, logger *slog.Logger) *snapshotFile[T] {
	return &snapshotFile[T]{
		fs:       fsys,
		path:     path,
		repoType: repoType,
		logger:   logger,
	}
}

// load returns the stored items. A missing or empty file is an empty collection.
func (s *snapshotFile[T]) load() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, domain.NewRepositoryError("load", s.repoType, "failed to read "+s.path, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, domain.NewRepositoryError("load", s.repoType, "failed to unmarshal snapshot", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// save overwrites the file with items via a sibling temp file and rename.
func (s *snapshotFile[T]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return domain.NewRepositoryError("save", s.repoType, "failed to marshal snapshot", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.NewRepositoryError("save", s.repoType, "failed to create data directory", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return domain.NewRepositoryError("save", s.repoType, "failed to write snapshot", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return domain.NewRepositoryError("save", s.repoType, "failed to replace snapshot", err)
	}

	if s.logger != nil {
		s.logger.Debug("snapshot saved",
			slog.String("repository", s.repoType),
			slog.Int("items", len(items)),
			slog.Int("bytes", len(data)))
	}
	return nil
}
