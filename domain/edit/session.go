package edit

// Phase is the position of a Session in the two-phase edit protocol.
type Phase int

// Phase values.
const (
	PhaseIdle Phase = iota
	PhaseSelected
	PhaseStaged
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSelected:
		return "selected"
	case PhaseStaged:
		return "staged"
	default:
		return "idle"
	}
}

// Selection is the optimistic-lock ticket held between select and propose.
type Selection struct {
	Range       LineRange
	Fingerprint Fingerprint
}

// Pending is a fully computed replacement waiting for confirm or cancel.
type Pending struct {
	Target      LineRange
	Lines       []string
	Content     string
	Preview     DiffPreview
	SyntaxError string
	// Before is the content the replacement was computed against.
	Before string
}

// Session is the per-caller edit state. Immutable: every transition
// returns a new Session.
type Session struct {
	id        string
	path      string
	selection *Selection
	pending   *Pending
}

// NewSession creates an idle Session with no open file.
func NewSession(id string) Session {
	return Session{id: id}
}

// ID returns the session identifier.
func (s Session) ID() string { return s.id }

// Path returns the open file, or "" when none is open.
func (s Session) Path() string { return s.path }

// Selection returns the current selection.
func (s Session) Selection() (Selection, bool) {
	if s.selection == nil {
		return Selection{}, false
	}
	return *s.selection, true
}

// Pending returns the staged change.
func (s Session) Pending() (Pending, bool) {
	if s.pending == nil {
		return Pending{}, false
	}
	return *s.pending, true
}

// Phase derives the protocol phase from the held state.
func (s Session) Phase() Phase {
	switch {
	case s.pending != nil:
		return PhaseStaged
	case s.selection != nil:
		return PhaseSelected
	default:
		return PhaseIdle
	}
}

// WithPath opens path, dropping any selection and pending change.
func (s Session) WithPath(path string) Session {
	return Session{id: s.id, path: path}
}

// WithSelection stores sel and drops any pending change.
func (s Session) WithSelection(sel Selection) Session {
	s.selection = &sel
	s.pending = nil
	return s
}

// WithPending stages p. The selection is kept.
func (s Session) WithPending(p Pending) Session {
	lines := make([]string, len(p.Lines))
	copy(lines, p.Lines)
	p.Lines = lines
	s.pending = &p
	return s
}

// WithoutPending drops the staged change and keeps the selection.
func (s Session) WithoutPending() Session {
	s.pending = nil
	return s
}

// WithoutSelection drops the selection and any staged change.
func (s Session) WithoutSelection() Session {
	s.selection = nil
	s.pending = nil
	return s
}

// Closed drops the open file and all edit state.
func (s Session) Closed() Session {
	return Session{id: s.id}
}
