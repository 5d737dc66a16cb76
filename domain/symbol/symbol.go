// Package symbol provides the domain model for locating named definitions
// in source files.
package symbol

import (
	"context"

	"github.com/helixml/linedit/domain/edit"
)

// Range is the inclusive line span of a located definition. It is
// recomputed on every query and never persisted.
type Range struct {
	start     int
	end       int
	nested    bool
	enclosing string
	source    string
}

// NewRange creates a Range for a top-level or member definition.
func NewRange(start, end int) Range {
	return Range{start: start, end: end}
}

// Start returns the first line.
func (r Range) Start() int { return r.start }

// End returns the last line.
func (r Range) End() int { return r.end }

// Nested reports whether the definition sits inside another function.
func (r Range) Nested() bool { return r.nested }

// Enclosing returns the enclosing function name for nested definitions.
func (r Range) Enclosing() string { return r.enclosing }

// Source names the strategy that produced the range.
func (r Range) Source() string { return r.source }

// LineRange converts to an edit.LineRange.
func (r Range) LineRange() edit.LineRange {
	return edit.NewLineRange(r.start, r.end)
}

// WithEnclosing marks the range as nested inside the named function.
func (r Range) WithEnclosing(name string) Range {
	r.nested = true
	r.enclosing = name
	return r
}

// WithSource records the producing strategy.
func (r Range) WithSource(source string) Range {
	r.source = source
	return r
}

// Parser turns source text into a Tree.
type Parser interface {
	Parse(ctx context.Context, source []byte) (Tree, error)
}

// Locator finds the range of a named definition. It returns an error
// matching edit.ErrNotFound when the name is absent.
type Locator interface {
	Name() string
	Locate(ctx context.Context, source []byte, name string) (Range, error)
}

// NotFound returns the standard error for a missing symbol.
func NotFound(name string) error {
	return edit.Errorf(edit.KindNotFound, "symbol %q not found", name)
}
