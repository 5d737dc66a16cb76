package edit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

// ValidatorEntry is a syntax validator bound to a file extension.
type ValidatorEntry struct {
	Name      string
	Validator SyntaxValidator
	// Strict discards a staged change whose content fails validation.
	Strict bool
}

// Verdict is the outcome of validating content for a path.
type Verdict struct {
	// Message is empty when the content passed or no validator applies.
	Message string
	Strict  bool
	// Validator names the validator that produced the verdict.
	Validator string
}

// Passed reports whether the content was accepted.
func (v Verdict) Passed() bool { return v.Message == "" }

// ValidatorRegistry maps file extensions to syntax validators.
// Unregistered extensions always pass.
type ValidatorRegistry struct {
	mu      sync.RWMutex
	entries map[string]ValidatorEntry
}

// NewValidatorRegistry creates an empty registry.
func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{entries: make(map[string]ValidatorEntry)}
}

// Register binds entry to each extension, replacing earlier bindings.
// Extensions are matched case-insensitively, with or without a leading dot.
func (r *ValidatorRegistry) Register(entry ValidatorEntry, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extensions {
		r.entries[normalizeExt(ext)] = entry
	}
}

// Lookup returns the entry for path's extension.
func (r *ValidatorRegistry) Lookup(path string) (ValidatorEntry, bool) {
	if r == nil {
		return ValidatorEntry{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[normalizeExt(filepath.Ext(path))]
	return e, ok
}

// Extensions returns the registered extensions.
func (r *ValidatorRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for ext := range r.entries {
		out = append(out, ext)
	}
	return out
}

// Validate runs the validator registered for path against text. Errors
// other than *SyntaxError are returned as is; the verdict is then empty.
func (r *ValidatorRegistry) Validate(ctx context.Context, path, text string) (Verdict, error) {
	entry, ok := r.Lookup(path)
	if !ok || entry.Validator == nil {
		return Verdict{}, nil
	}
	err := entry.Validator.Validate(ctx, text)
	if err == nil {
		return Verdict{Strict: entry.Strict, Validator: entry.Name}, nil
	}
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		return Verdict{Message: syntaxErr.Error(), Strict: entry.Strict, Validator: entry.Name}, nil
	}
	return Verdict{}, err
}

func normalizeExt(ext string) string {
	return "." + strings.TrimPrefix(strings.ToLower(ext), ".")
}
