package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/helixml/linedit/domain/edit"
)

type hostedSession struct {
	mu      sync.Mutex
	session edit.Session
}

// SessionManager hosts many edit sessions. Commands for one session run
// strictly in sequence; different sessions run concurrently.
type SessionManager struct {
	coordinator *Coordinator
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*hostedSession
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(coordinator *Coordinator, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		coordinator: coordinator,
		logger:      logger,
		sessions:    make(map[string]*hostedSession),
	}
}

// Create starts a new idle session with a random ID.
func (m *SessionManager) Create() edit.Session {
	s := edit.NewSession(uuid.NewString())
	m.mu.Lock()
	m.sessions[s.ID()] = &hostedSession{session: s}
	m.mu.Unlock()
	m.logger.Debug("session created", slog.String("session", s.ID()))
	return s
}

// Acquire returns the session with id, creating it when absent.
func (m *SessionManager) Acquire(id string) edit.Session {
	m.mu.Lock()
	h, ok := m.sessions[id]
	if !ok {
		h = &hostedSession{session: edit.NewSession(id)}
		m.sessions[id] = h
	}
	m.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

// Get returns the session with id.
func (m *SessionManager) Get(id string) (edit.Session, error) {
	h, err := m.hosted(id)
	if err != nil {
		return edit.Session{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session, nil
}

// List returns all sessions ordered by ID.
func (m *SessionManager) List() []edit.Session {
	m.mu.RLock()
	hosted := make([]*hostedSession, 0, len(m.sessions))
	for _, h := range m.sessions {
		hosted = append(hosted, h)
	}
	m.mu.RUnlock()

	out := make([]edit.Session, 0, len(hosted))
	for _, h := range hosted {
		h.mu.Lock()
		out = append(out, h.session)
		h.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Delete removes the session with id. A staged change is discarded.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return edit.Errorf(edit.KindNotFound, "session %s not found", id)
	}
	delete(m.sessions, id)
	m.logger.Debug("session deleted", slog.String("session", id))
	return nil
}

// Apply runs cmd against the session with id and stores the new state.
func (m *SessionManager) Apply(ctx context.Context, id string, cmd Command) (edit.Session, Result) {
	h, err := m.hosted(id)
	if err != nil {
		return edit.Session{}, failed(err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	next, result := m.coordinator.Apply(ctx, h.session, cmd)
	h.session = next
	return next, result
}

func (m *SessionManager) hosted(id string) (*hostedSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.sessions[id]
	if !ok {
		return nil, edit.Errorf(edit.KindNotFound, "session %s not found", id)
	}
	return h, nil
}
