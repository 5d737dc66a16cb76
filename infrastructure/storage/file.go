package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/helixml/linedit/domain/edit"
)

// FileStore implements edit.Storage on the local filesystem.
type FileStore struct {
	policy PathPolicy
	logger *slog.Logger
}

// NewFileStore creates a FileStore.
func NewFileStore(policy PathPolicy, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{policy: policy, logger: logger}
}

// Policy returns the path policy.
func (s *FileStore) Policy() PathPolicy { return s.policy }

// Read returns the whole file as text.
func (s *FileStore) Read(ctx context.Context, path string) (string, error) {
	clean, err := s.policy.Check(path)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", edit.WrapError(edit.KindIOFailure, "read "+clean, err)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return "", classify("read", clean, err)
	}
	if info.IsDir() {
		return "", edit.Errorf(edit.KindInvalid, "%s is a directory", clean)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return "", classify("read", clean, err)
	}
	return string(data), nil
}

// Write replaces the existing file, keeping its permissions.
func (s *FileStore) Write(ctx context.Context, path, content string) error {
	clean, err := s.policy.Check(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(clean)
	if err != nil {
		return classify("write", clean, err)
	}
	if err := writeAtomic(ctx, clean, []byte(content), info.Mode().Perm()); err != nil {
		return edit.WrapError(edit.KindIOFailure, "write "+clean, err)
	}
	s.logger.Debug("file written", slog.String("path", clean), slog.Int("bytes", len(content)))
	return nil
}

// Create writes a new file, creating parent directories. It fails with
// Conflict when the file already exists.
func (s *FileStore) Create(ctx context.Context, path, content string) error {
	clean, err := s.policy.Check(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return edit.WrapError(edit.KindIOFailure, "create "+clean, err)
	}

	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return edit.WrapError(edit.KindIOFailure, "create parent directories", err)
	}
	f, err := os.OpenFile(clean, os.O_WRONLY|os.O_CREATE|os.O_EXCL, DefaultFileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return edit.Errorf(edit.KindConflict, "file already exists: %s", clean)
		}
		return edit.WrapError(edit.KindIOFailure, "create "+clean, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(clean)
		return edit.WrapError(edit.KindIOFailure, "create "+clean, err)
	}
	if err := f.Close(); err != nil {
		return edit.WrapError(edit.KindIOFailure, "create "+clean, err)
	}
	s.logger.Debug("file created", slog.String("path", clean), slog.Int("bytes", len(content)))
	return nil
}

// Exists reports whether path names an existing regular file.
func (s *FileStore) Exists(_ context.Context, path string) bool {
	clean, err := s.policy.Check(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(clean)
	return err == nil && !info.IsDir()
}

func classify(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return edit.Errorf(edit.KindNotFound, "file not found: %s", path)
	}
	return edit.WrapError(edit.KindIOFailure, fmt.Sprintf("%s %s", op, path), err)
}
