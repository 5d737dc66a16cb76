package mcp

import (
	"time"

	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/domain/edit"
)

type openResult struct {
	SessionID   string `json:"session_id"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	LineCount   int    `json:"line_count"`
}

type selectResult struct {
	SessionID   string `json:"session_id"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Fingerprint string `json:"fingerprint"`
	Content     string `json:"content"`
}

type proposeResult struct {
	SessionID   string `json:"session_id"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Preview     string `json:"preview"`
	Removed     int    `json:"removed"`
	Added       int    `json:"added"`
	SyntaxError string `json:"syntax_error,omitempty"`
}

type confirmResult struct {
	SessionID   string `json:"session_id"`
	Fingerprint string `json:"fingerprint"`
	LineCount   int    `json:"line_count"`
	Diff        string `json:"diff"`
	SyntaxError string `json:"syntax_error,omitempty"`
	CommitID    int64  `json:"commit_id,omitempty"`
}

type selectionStatus struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Fingerprint string `json:"fingerprint"`
}

type pendingStatus struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Preview     string `json:"preview"`
	SyntaxError string `json:"syntax_error,omitempty"`
}

type statusResult struct {
	SessionID string           `json:"session_id"`
	Phase     string           `json:"phase"`
	Path      string           `json:"path,omitempty"`
	Selection *selectionStatus `json:"selection,omitempty"`
	Pending   *pendingStatus   `json:"pending,omitempty"`
}

func newStatusResult(id string, s edit.Session) statusResult {
	out := statusResult{SessionID: id, Phase: s.Phase().String(), Path: s.Path()}
	if sel, ok := s.Selection(); ok {
		out.Selection = &selectionStatus{
			Start:       sel.Range.Start(),
			End:         sel.Range.End(),
			Fingerprint: sel.Fingerprint.String(),
		}
	}
	if p, ok := s.Pending(); ok {
		out.Pending = &pendingStatus{
			Start:       p.Target.Start(),
			End:         p.Target.End(),
			Preview:     p.Preview.String(),
			SyntaxError: p.SyntaxError,
		}
	}
	return out
}

type attemptResult struct {
	Strategy string `json:"strategy"`
	Error    string `json:"error"`
}

type symbolResult struct {
	Path        string          `json:"path"`
	Name        string          `json:"name"`
	Start       int             `json:"start"`
	End         int             `json:"end"`
	Nested      bool            `json:"nested"`
	Enclosing   string          `json:"enclosing,omitempty"`
	Strategy    string          `json:"strategy"`
	Fingerprint string          `json:"fingerprint"`
	Content     string          `json:"content"`
	Attempts    []attemptResult `json:"attempts,omitempty"`
}

func newSymbolResult(loc service.SymbolLocation) symbolResult {
	out := symbolResult{
		Path:        loc.Path,
		Name:        loc.Name,
		Start:       loc.Range.Start(),
		End:         loc.Range.End(),
		Nested:      loc.Range.Nested(),
		Enclosing:   loc.Range.Enclosing(),
		Strategy:    loc.Range.Source(),
		Fingerprint: loc.Fingerprint.String(),
		Content:     loc.Content,
	}
	for _, a := range loc.Attempts {
		out.Attempts = append(out.Attempts, attemptResult{Strategy: a.Strategy, Error: a.Err.Error()})
	}
	return out
}

type rangeResult struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Fingerprint string `json:"fingerprint"`
	Content     string `json:"content"`
}

type readResult struct {
	Path            string        `json:"path"`
	FileFingerprint string        `json:"file_fingerprint"`
	LineCount       int           `json:"line_count"`
	Ranges          []rangeResult `json:"ranges"`
}

func newReadResult(r service.ReadResult) readResult {
	out := readResult{
		Path:            r.Path,
		FileFingerprint: r.Fingerprint.String(),
		LineCount:       r.LineCount,
		Ranges:          make([]rangeResult, len(r.Ranges)),
	}
	for i, rc := range r.Ranges {
		out.Ranges[i] = rangeResult{
			Start:       rc.Range.Start(),
			End:         rc.Range.End(),
			Fingerprint: rc.Fingerprint.String(),
			Content:     rc.Content,
		}
	}
	return out
}

type changeResult struct {
	Path            string  `json:"path"`
	FileFingerprint string  `json:"file_fingerprint"`
	LineCount       int     `json:"line_count"`
	Diff            string  `json:"diff"`
	SyntaxError     string  `json:"syntax_error,omitempty"`
	CommitIDs       []int64 `json:"commit_ids,omitempty"`
}

func newChangeResult(c service.ChangeResult) changeResult {
	out := changeResult{
		Path:            c.Path,
		FileFingerprint: c.Fingerprint.String(),
		LineCount:       c.LineCount,
		Diff:            c.Diff,
		SyntaxError:     c.SyntaxError,
	}
	for _, commit := range c.Commits {
		if commit.ID() != 0 {
			out.CommitIDs = append(out.CommitIDs, commit.ID())
		}
	}
	return out
}

type commitResult struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id,omitempty"`
	Path         string    `json:"path"`
	Start        int       `json:"start"`
	End          int       `json:"end"`
	Before       string    `json:"before"`
	After        string    `json:"after"`
	LinesRemoved int       `json:"lines_removed"`
	LinesAdded   int       `json:"lines_added"`
	CommittedAt  time.Time `json:"committed_at"`
}

func newCommitResult(c edit.Commit) commitResult {
	return commitResult{
		ID:           c.ID(),
		SessionID:    c.SessionID(),
		Path:         c.Path(),
		Start:        c.Target().Start(),
		End:          c.Target().End(),
		Before:       c.Before().String(),
		After:        c.After().String(),
		LinesRemoved: c.LinesRemoved(),
		LinesAdded:   c.LinesAdded(),
		CommittedAt:  c.CommittedAt(),
	}
}
