package edit

import (
	"context"
	"time"

	"github.com/helixml/linedit/domain/repository"
)

// Storage reads and writes whole files. Read fails with a NotFound or
// IOFailure Error; Write replaces the whole file and never patches in
// place.
type Storage interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, content string) error
	Create(ctx context.Context, path, content string) error
	Exists(ctx context.Context, path string) bool
}

// SyntaxValidator checks full file content. A rejection is reported as a
// *SyntaxError.
type SyntaxValidator interface {
	Validate(ctx context.Context, text string) error
}

// SyntaxValidatorFunc adapts a function to SyntaxValidator.
type SyntaxValidatorFunc func(ctx context.Context, text string) error

// Validate implements SyntaxValidator.
func (f SyntaxValidatorFunc) Validate(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Journal records committed changes.
type Journal interface {
	Record(ctx context.Context, c Commit) (Commit, error)
}

// JournalReader queries recorded changes.
type JournalReader interface {
	Find(ctx context.Context, options ...repository.Option) ([]Commit, error)
}

// JournalPruner deletes recorded changes committed before a cutoff.
type JournalPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
