package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/internal/database"
)

// JournalStore implements edit.Journal and edit.JournalReader using GORM.
type JournalStore struct {
	database.Repository[edit.Commit, CommitModel]
}

// NewJournalStore creates a new JournalStore.
func NewJournalStore(db database.Database) JournalStore {
	return JournalStore{
		Repository: database.NewRepository[edit.Commit, CommitModel](db, CommitMapper{}, "commit"),
	}
}

// Record inserts a commit and returns it with its ID.
func (s JournalStore) Record(ctx context.Context, commit edit.Commit) (edit.Commit, error) {
	model := s.Mapper().ToModel(commit)
	model.ID = 0
	if model.CommittedAt.IsZero() {
		model.CommittedAt = time.Now()
	}

	result := s.DB(ctx).Create(&model)
	if result.Error != nil {
		return edit.Commit{}, fmt.Errorf("record commit: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Prune removes commits recorded before cutoff and returns how many were
// removed.
func (s JournalStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.DB(ctx).Where("committed_at < ?", cutoff).Delete(&CommitModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("prune commits: %w", result.Error)
	}
	return result.RowsAffected, nil
}
