// Package edit provides the line-addressed, fingerprint-guarded edit model.
package edit

import "fmt"

// LineRange is a 1-based inclusive range of lines. Immutable value object.
// A LineRange may hold invalid bounds; ValidateRange decides whether it
// fits a file.
type LineRange struct {
	start int
	end   int
}

// NewLineRange creates a LineRange.
func NewLineRange(start, end int) LineRange {
	return LineRange{start: start, end: end}
}

// SingleLine creates a LineRange covering one line.
func SingleLine(line int) LineRange {
	return LineRange{start: line, end: line}
}

// Start returns the first line.
func (r LineRange) Start() int { return r.start }

// End returns the last line.
func (r LineRange) End() int { return r.end }

// Len returns the number of lines covered.
func (r LineRange) Len() int {
	if r.end < r.start {
		return 0
	}
	return r.end - r.start + 1
}

// IsZero reports whether the range was never set.
func (r LineRange) IsZero() bool { return r.start == 0 && r.end == 0 }

// Contains reports whether line lies inside the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.start && line <= r.end
}

// Overlaps reports whether the two ranges share at least one line.
func (r LineRange) Overlaps(other LineRange) bool {
	return r.start <= other.end && other.start <= r.end
}

// String renders the range as "start-end".
func (r LineRange) String() string {
	return fmt.Sprintf("%d-%d", r.start, r.end)
}
