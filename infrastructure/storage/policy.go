// Package storage provides whole-file storage for line edits.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/helixml/linedit/domain/edit"
)

// PathPolicy decides which paths callers may touch. Paths must be absolute
// and free of ".." segments; when root is set they must also lie under it.
type PathPolicy struct {
	root string
}

// NewPathPolicy creates a PathPolicy. An empty root allows any absolute
// path.
func NewPathPolicy(root string) PathPolicy {
	if root != "" {
		root = filepath.Clean(root)
	}
	return PathPolicy{root: root}
}

// Root returns the allowed root, or "" when unrestricted.
func (p PathPolicy) Root() string { return p.root }

// Check returns the cleaned path, or an Invalid error.
func (p PathPolicy) Check(path string) (string, error) {
	if path == "" {
		return "", edit.NewError(edit.KindInvalid, "path is required")
	}
	if !filepath.IsAbs(path) {
		return "", edit.Errorf(edit.KindInvalid, "path must be absolute: %s", path)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", edit.Errorf(edit.KindInvalid, "path must not contain '..': %s", path)
		}
	}
	clean := filepath.Clean(path)
	if p.root == "" {
		return clean, nil
	}
	rel, err := filepath.Rel(p.root, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", edit.Errorf(edit.KindInvalid, "path is outside %s: %s", p.root, path)
	}
	return clean, nil
}
