package repository

import "time"

// WithPath filters by the "path" column.
func WithPath(path string) Option {
	return WithCondition("path", path)
}

// WithSince filters rows committed at or after t.
func WithSince(t time.Time) Option {
	return WithWhere("committed_at >= ?", t)
}
