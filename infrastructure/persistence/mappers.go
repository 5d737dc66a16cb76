package persistence

import (
	"github.com/helixml/linedit/domain/edit"
)

// CommitMapper maps between edit.Commit and CommitModel.
type CommitMapper struct{}

// ToDomain converts a CommitModel to a domain Commit.
func (m CommitMapper) ToDomain(e CommitModel) edit.Commit {
	return edit.ReconstructCommit(
		e.ID,
		e.SessionID,
		e.Path,
		edit.NewLineRange(e.StartLine, e.EndLine),
		edit.Fingerprint(e.Before),
		edit.Fingerprint(e.After),
		e.LinesRemoved,
		e.LinesAdded,
		e.CommittedAt.UTC(),
	)
}

// ToModel converts a domain Commit to a CommitModel.
func (m CommitMapper) ToModel(c edit.Commit) CommitModel {
	return CommitModel{
		ID:           c.ID(),
		SessionID:    c.SessionID(),
		Path:         c.Path(),
		StartLine:    c.Target().Start(),
		EndLine:      c.Target().End(),
		Before:       c.Before().String(),
		After:        c.After().String(),
		LinesRemoved: c.LinesRemoved(),
		LinesAdded:   c.LinesAdded(),
		CommittedAt:  c.CommittedAt(),
	}
}
