package edit

import (
	"time"

	"github.com/helixml/linedit/domain/repository"
)

// Commit records one change written to disk. Immutable value object.
type Commit struct {
	id           int64
	sessionID    string
	path         string
	target       LineRange
	before       Fingerprint
	after        Fingerprint
	linesRemoved int
	linesAdded   int
	committedAt  time.Time
}

// NewCommit creates a Commit that is not yet persisted.
func NewCommit(sessionID, path string, target LineRange, before, after Fingerprint, removed, added int, at time.Time) Commit {
	return Commit{
		sessionID:    sessionID,
		path:         path,
		target:       target,
		before:       before,
		after:        after,
		linesRemoved: removed,
		linesAdded:   added,
		committedAt:  at,
	}
}

// ReconstructCommit recreates a Commit from persistence.
func ReconstructCommit(id int64, sessionID, path string, target LineRange, before, after Fingerprint, removed, added int, at time.Time) Commit {
	c := NewCommit(sessionID, path, target, before, after, removed, added, at)
	c.id = id
	return c
}

// ID returns the database identifier.
func (c Commit) ID() int64 { return c.id }

// SessionID returns the session that committed the change. Empty for
// stateless operations.
func (c Commit) SessionID() string { return c.sessionID }

// Path returns the edited file.
func (c Commit) Path() string { return c.path }

// Target returns the replaced range in the file before the change.
func (c Commit) Target() LineRange { return c.target }

// Before returns the fingerprint of the replaced range.
func (c Commit) Before() Fingerprint { return c.before }

// After returns the fingerprint of the whole file after the change.
func (c Commit) After() Fingerprint { return c.after }

// LinesRemoved returns the number of lines replaced.
func (c Commit) LinesRemoved() int { return c.linesRemoved }

// LinesAdded returns the number of lines written in their place.
func (c Commit) LinesAdded() int { return c.linesAdded }

// CommittedAt returns when the change was written.
func (c Commit) CommittedAt() time.Time { return c.committedAt }

// WithSessionID filters commits by session.
func WithSessionID(id string) repository.Option {
	return repository.WithCondition("session_id", id)
}
