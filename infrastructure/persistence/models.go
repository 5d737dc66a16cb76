package persistence

import "time"

// CommitModel is the journal row for one committed change.
type CommitModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	SessionID    string    `gorm:"index;size:64"`
	Path         string    `gorm:"index;not null"`
	StartLine    int       `gorm:"not null"`
	EndLine      int       `gorm:"not null"`
	Before       string    `gorm:"size:64"`
	After        string    `gorm:"size:64"`
	LinesRemoved int       `gorm:"not null;default:0"`
	LinesAdded   int       `gorm:"not null;default:0"`
	CommittedAt  time.Time `gorm:"index;not null"`
}

// TableName returns the table name.
func (CommitModel) TableName() string { return "edit_commits" }
