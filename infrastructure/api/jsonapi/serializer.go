package jsonapi

import (
	"strconv"

	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/domain/edit"
)

// Resource type names.
const (
	TypeSession = "session"
	TypeResult  = "command_result"
	TypeFile    = "file"
	TypeChange  = "change"
	TypeSymbol  = "symbol"
	TypeCommit  = "commit"
)

// SelectionAttributes describes a held selection.
type SelectionAttributes struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Fingerprint string `json:"fingerprint"`
}

// PendingAttributes describes a staged change.
type PendingAttributes struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Preview     string `json:"preview"`
	Removed     int    `json:"removed"`
	Added       int    `json:"added"`
	SyntaxError string `json:"syntax_error,omitempty"`
}

// SessionAttributes represents session state in JSON:API format.
type SessionAttributes struct {
	Phase     string               `json:"phase"`
	Path      string               `json:"path,omitempty"`
	Selection *SelectionAttributes `json:"selection,omitempty"`
	Pending   *PendingAttributes   `json:"pending,omitempty"`
}

// ResultAttributes represents the outcome of one session command.
type ResultAttributes struct {
	Session     SessionAttributes `json:"session"`
	Start       int               `json:"start,omitempty"`
	End         int               `json:"end,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Content     string            `json:"content,omitempty"`
	LineCount   int               `json:"line_count,omitempty"`
	Preview     string            `json:"preview,omitempty"`
	Diff        string            `json:"diff,omitempty"`
	SyntaxError string            `json:"syntax_error,omitempty"`
	CommitID    int64             `json:"commit_id,omitempty"`
}

// RangeAttributes is one range read from a file.
type RangeAttributes struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Fingerprint string `json:"fingerprint"`
	Content     string `json:"content"`
}

// FileAttributes represents a ranged file read.
type FileAttributes struct {
	Path            string            `json:"path"`
	FileFingerprint string            `json:"file_fingerprint"`
	LineCount       int               `json:"line_count"`
	Ranges          []RangeAttributes `json:"ranges"`
}

// ChangeAttributes represents a written change.
type ChangeAttributes struct {
	Path            string  `json:"path"`
	FileFingerprint string  `json:"file_fingerprint"`
	LineCount       int     `json:"line_count"`
	Diff            string  `json:"diff"`
	SyntaxError     string  `json:"syntax_error,omitempty"`
	CommitIDs       []int64 `json:"commit_ids,omitempty"`
}

// AttemptAttributes is one failed locator strategy.
type AttemptAttributes struct {
	Strategy string `json:"strategy"`
	Error    string `json:"error"`
}

// SymbolAttributes represents a located definition.
type SymbolAttributes struct {
	Path        string              `json:"path"`
	Name        string              `json:"name"`
	Start       int                 `json:"start"`
	End         int                 `json:"end"`
	Nested      bool                `json:"nested"`
	Enclosing   string              `json:"enclosing,omitempty"`
	Strategy    string              `json:"strategy"`
	Fingerprint string              `json:"fingerprint"`
	Content     string              `json:"content"`
	Attempts    []AttemptAttributes `json:"attempts,omitempty"`
}

// CommitAttributes represents a journal entry.
type CommitAttributes struct {
	SessionID    string   `json:"session_id,omitempty"`
	Path         string   `json:"path"`
	Start        int      `json:"start"`
	End          int      `json:"end"`
	Before       string   `json:"before"`
	After        string   `json:"after"`
	LinesRemoved int      `json:"lines_removed"`
	LinesAdded   int      `json:"lines_added"`
	CommittedAt  DateTime `json:"committed_at"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

func sessionAttributes(s edit.Session) SessionAttributes {
	attrs := SessionAttributes{Phase: s.Phase().String(), Path: s.Path()}
	if sel, ok := s.Selection(); ok {
		attrs.Selection = &SelectionAttributes{
			Start:       sel.Range.Start(),
			End:         sel.Range.End(),
			Fingerprint: sel.Fingerprint.String(),
		}
	}
	if p, ok := s.Pending(); ok {
		attrs.Pending = &PendingAttributes{
			Start:       p.Target.Start(),
			End:         p.Target.End(),
			Preview:     p.Preview.String(),
			Removed:     p.Preview.Removed(),
			Added:       p.Preview.Added(),
			SyntaxError: p.SyntaxError,
		}
	}
	return attrs
}

// SessionResource converts a session.
func (s *Serializer) SessionResource(session edit.Session) *Resource {
	return NewResource(TypeSession, session.ID(), sessionAttributes(session))
}

// SessionResources converts sessions.
func (s *Serializer) SessionResources(sessions []edit.Session) []*Resource {
	out := make([]*Resource, len(sessions))
	for i, session := range sessions {
		out[i] = s.SessionResource(session)
	}
	return out
}

// ResultResource converts the outcome of a successful command.
func (s *Serializer) ResultResource(session edit.Session, r service.Result) *Resource {
	attrs := ResultAttributes{
		Session:     sessionAttributes(session),
		Fingerprint: r.Fingerprint.String(),
		Content:     r.Content,
		LineCount:   r.LineCount,
		Diff:        r.Diff,
		SyntaxError: r.SyntaxError,
	}
	if !r.Range.IsZero() {
		attrs.Start = r.Range.Start()
		attrs.End = r.Range.End()
	}
	if lines := r.Preview.Lines(); len(lines) > 0 {
		attrs.Preview = r.Preview.String()
	}
	if r.Commit != nil {
		attrs.CommitID = r.Commit.ID()
	}
	return NewResource(TypeResult, session.ID(), attrs)
}

// FileResource converts a ranged read.
func (s *Serializer) FileResource(r service.ReadResult) *Resource {
	attrs := FileAttributes{
		Path:            r.Path,
		FileFingerprint: r.Fingerprint.String(),
		LineCount:       r.LineCount,
		Ranges:          make([]RangeAttributes, len(r.Ranges)),
	}
	for i, rc := range r.Ranges {
		attrs.Ranges[i] = RangeAttributes{
			Start:       rc.Range.Start(),
			End:         rc.Range.End(),
			Fingerprint: rc.Fingerprint.String(),
			Content:     rc.Content,
		}
	}
	return NewResource(TypeFile, r.Path, attrs)
}

// ChangeResource converts a written change.
func (s *Serializer) ChangeResource(c service.ChangeResult) *Resource {
	attrs := ChangeAttributes{
		Path:            c.Path,
		FileFingerprint: c.Fingerprint.String(),
		LineCount:       c.LineCount,
		Diff:            c.Diff,
		SyntaxError:     c.SyntaxError,
	}
	for _, commit := range c.Commits {
		if commit.ID() != 0 {
			attrs.CommitIDs = append(attrs.CommitIDs, commit.ID())
		}
	}
	return NewResource(TypeChange, c.Path, attrs)
}

// SymbolResource converts a located symbol.
func (s *Serializer) SymbolResource(loc service.SymbolLocation) *Resource {
	attrs := SymbolAttributes{
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
		attrs.Attempts = append(attrs.Attempts, AttemptAttributes{Strategy: a.Strategy, Error: a.Err.Error()})
	}
	return NewResource(TypeSymbol, loc.Path+"#"+loc.Name, attrs)
}

// CommitResource converts a journal entry.
func (s *Serializer) CommitResource(c edit.Commit) *Resource {
	return NewResource(TypeCommit, strconv.FormatInt(c.ID(), 10), CommitAttributes{
		SessionID:    c.SessionID(),
		Path:         c.Path(),
		Start:        c.Target().Start(),
		End:          c.Target().End(),
		Before:       c.Before().String(),
		After:        c.After().String(),
		LinesRemoved: c.LinesRemoved(),
		LinesAdded:   c.LinesAdded(),
		CommittedAt:  NewDateTime(c.CommittedAt()),
	})
}

// CommitResources converts journal entries.
func (s *Serializer) CommitResources(commits []edit.Commit) []*Resource {
	out := make([]*Resource, len(commits))
	for i, c := range commits {
		out[i] = s.CommitResource(c)
	}
	return out
}
