package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/domain/repository"
)

type memoryStorage struct {
	mu       sync.Mutex
	files    map[string]string
	writeErr error
	writes   int
}

func newMemoryStorage(files map[string]string) *memoryStorage {
	if files == nil {
		files = map[string]string{}
	}
	return &memoryStorage{files: files}
}

func (m *memoryStorage) Read(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return "", edit.Errorf(edit.KindNotFound, "file not found: %s", path)
	}
	return content, nil
}

func (m *memoryStorage) Write(_ context.Context, path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.files[path]; !ok {
		return edit.Errorf(edit.KindNotFound, "file not found: %s", path)
	}
	m.files[path] = content
	m.writes++
	return nil
}

func (m *memoryStorage) Create(_ context.Context, path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; ok {
		return edit.Errorf(edit.KindConflict, "file already exists: %s", path)
	}
	m.files[path] = content
	return nil
}

func (m *memoryStorage) Exists(_ context.Context, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *memoryStorage) get(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[path]
}

func (m *memoryStorage) set(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

type fakeJournal struct {
	mu      sync.Mutex
	commits []edit.Commit
	err     error
	queries []repository.Query
}

func (j *fakeJournal) Record(_ context.Context, c edit.Commit) (edit.Commit, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return edit.Commit{}, j.err
	}
	saved := edit.ReconstructCommit(int64(len(j.commits)+1), c.SessionID(), c.Path(), c.Target(),
		c.Before(), c.After(), c.LinesRemoved(), c.LinesAdded(), c.CommittedAt())
	j.commits = append(j.commits, saved)
	return saved, nil
}

func (j *fakeJournal) Find(_ context.Context, opts ...repository.Option) ([]edit.Commit, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.queries = append(j.queries, repository.Build(opts...))
	return j.commits, nil
}

// bangValidator rejects content containing "!!".
var bangValidator = edit.SyntaxValidatorFunc(func(_ context.Context, text string) error {
	if i := strings.Index(text, "!!"); i >= 0 {
		return &edit.SyntaxError{Line: strings.Count(text[:i], "\n") + 1, Message: "unexpected !!"}
	}
	return nil
})

func bangRegistry(strict bool) *edit.ValidatorRegistry {
	r := edit.NewValidatorRegistry()
	r.Register(edit.ValidatorEntry{Name: "bang", Validator: bangValidator, Strict: strict}, ".txt")
	return r
}

var errDisk = errors.New("disk full")

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}
