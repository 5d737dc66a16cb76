package service

import (
	"context"
	"fmt"
	"time"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/domain/repository"
)

// DefaultHistoryLimit caps History results when no limit is given.
const DefaultHistoryLimit = 50

// HistoryQuery filters journal entries. Zero fields do not filter.
type HistoryQuery struct {
	Path      string
	SessionID string
	Since     time.Time
	Limit     int
	Offset    int
}

// History lists committed changes from the journal.
type History struct {
	reader edit.JournalReader
}

// NewHistory creates a History service.
func NewHistory(reader edit.JournalReader) *History {
	return &History{reader: reader}
}

// List returns matching commits, newest first.
func (h *History) List(ctx context.Context, q HistoryQuery) ([]edit.Commit, error) {
	if h.reader == nil {
		return nil, edit.NewError(edit.KindInvalid, "edit journal is disabled")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	opts := []repository.Option{
		repository.WithOrderDesc("committed_at"),
		repository.WithOrderDesc("id"),
		repository.WithLimit(limit),
	}
	if q.Offset > 0 {
		opts = append(opts, repository.WithOffset(q.Offset))
	}
	if q.Path != "" {
		opts = append(opts, repository.WithPath(q.Path))
	}
	if q.SessionID != "" {
		opts = append(opts, edit.WithSessionID(q.SessionID))
	}
	if !q.Since.IsZero() {
		opts = append(opts, repository.WithSince(q.Since))
	}

	commits, err := h.reader.Find(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("find commits: %w", err)
	}
	return commits, nil
}
