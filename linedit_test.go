package linedit_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/helixml/linedit"
	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/domain/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// replaceLine runs one full select, propose, confirm cycle.
func replaceLine(t *testing.T, client *linedit.Client, path string, line int, text string) service.Result {
	t.Helper()
	ctx := context.Background()
	id := client.Sessions.Create().ID()

	_, r := client.Sessions.Apply(ctx, id, service.Open{Path: path})
	require.NoError(t, r.Err)
	_, r = client.Sessions.Apply(ctx, id, service.Select{Range: edit.SingleLine(line)})
	require.NoError(t, r.Err)
	_, r = client.Sessions.Apply(ctx, id, service.Propose{Lines: []string{text}, Fingerprint: r.Fingerprint})
	require.NoError(t, r.Err)
	_, r = client.Sessions.Apply(ctx, id, service.Confirm{})
	return r
}

func TestNew_WithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	client, err := linedit.New(linedit.WithSQLite(dbPath))
	require.NoError(t, err)
	defer func() {
		err := client.Close()
		assert.NoError(t, err)
	}()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	assert.True(t, client.JournalEnabled())
	assert.NotNil(t, client.Coordinator())
}

func TestNew_DefaultsToDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	client, err := linedit.New(linedit.WithDataDir(dataDir))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = os.Stat(filepath.Join(dataDir, "linedit.db"))
	assert.NoError(t, err)
}

func TestNew_InvalidValidatorsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "validators.yaml", "validators: [")

	_, err := linedit.New(linedit.WithoutJournal(), linedit.WithValidatorsFile(path))
	assert.Error(t, err)
}

func TestClient_Close_Idempotent(t *testing.T) {
	client, err := linedit.New(linedit.WithSQLite(filepath.Join(t.TempDir(), "journal.db")))
	require.NoError(t, err)

	err = client.Close()
	assert.NoError(t, err)
	assert.True(t, client.Closed())

	err = client.Close()
	assert.ErrorIs(t, err, linedit.ErrClientClosed)
}

func TestClient_EditRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "a\nb\nc\n")

	client, err := linedit.New(linedit.WithSQLite(filepath.Join(dir, "journal.db")))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	r := replaceLine(t, client, path, 2, "B")
	require.NoError(t, r.Err)
	require.NotNil(t, r.Commit)
	assert.Equal(t, "a\nB\nc\n", readFile(t, path))

	commits, err := client.History.List(context.Background(), service.HistoryQuery{Path: path})
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, edit.SingleLine(2), commits[0].Target())
	assert.Equal(t, edit.Compute("a\nB\nc\n"), commits[0].After())
}

func TestClient_WithoutJournal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "a\n")

	client, err := linedit.New(linedit.WithoutJournal())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.False(t, client.JournalEnabled())
	r := replaceLine(t, client, path, 1, "z")
	require.NoError(t, r.Err)
	assert.Equal(t, "z\n", readFile(t, path))

	_, err = client.History.List(context.Background(), service.HistoryQuery{})
	assert.ErrorIs(t, err, edit.ErrInvalid)
}

func TestClient_JournalRetention(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	path := writeFile(t, dir, "notes.txt", "a\n")
	then := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := linedit.New(linedit.WithSQLite(dbPath), linedit.WithClock(func() time.Time { return then }))
	require.NoError(t, err)
	require.NoError(t, replaceLine(t, first, path, 1, "b").Err)
	assert.Nil(t, first.Pruner)
	require.NoError(t, first.Close())

	kept, err := linedit.New(
		linedit.WithSQLite(dbPath),
		linedit.WithJournalRetention(72*time.Hour),
		linedit.WithClock(func() time.Time { return then.Add(48 * time.Hour) }),
	)
	require.NoError(t, err)
	commits, err := kept.History.List(context.Background(), service.HistoryQuery{})
	require.NoError(t, err)
	assert.Len(t, commits, 1)
	require.NoError(t, kept.Close())

	pruned, err := linedit.New(
		linedit.WithSQLite(dbPath),
		linedit.WithJournalRetention(24*time.Hour),
		linedit.WithClock(func() time.Time { return then.Add(48 * time.Hour) }),
	)
	require.NoError(t, err)
	defer func() { _ = pruned.Close() }()
	commits, err = pruned.History.List(context.Background(), service.HistoryQuery{})
	require.NoError(t, err)
	assert.Empty(t, commits)
	require.NotNil(t, pruned.Pruner)
	assert.Equal(t, 24*time.Hour, pruned.Pruner.Retention())
}

func TestClient_AllowedRoot(t *testing.T) {
	root := t.TempDir()
	outside := writeFile(t, t.TempDir(), "other.txt", "x\n")

	client, err := linedit.New(linedit.WithoutJournal(), linedit.WithAllowedRoot(root))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.Equal(t, filepath.Clean(root), client.AllowedRoot())
	_, err = client.Editor.ReadRanges(context.Background(), outside, nil)
	assert.ErrorIs(t, err, edit.ErrInvalid)
}

func TestClient_StrictCustomValidator(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "a\n")
	reject := edit.SyntaxValidatorFunc(func(_ context.Context, text string) error {
		if text != "a\n" {
			return &edit.SyntaxError{Line: 1, Message: "frozen"}
		}
		return nil
	})

	client, err := linedit.New(
		linedit.WithoutJournal(),
		linedit.WithStrictSyntax(true),
		linedit.WithValidator(edit.ValidatorEntry{Name: "frozen", Validator: reject}, ".txt"),
	)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	id := client.Sessions.Create().ID()
	_, r := client.Sessions.Apply(ctx, id, service.Open{Path: path})
	require.NoError(t, r.Err)
	_, r = client.Sessions.Apply(ctx, id, service.Select{Range: edit.SingleLine(1)})
	require.NoError(t, r.Err)
	s, r := client.Sessions.Apply(ctx, id, service.Propose{Lines: []string{"b"}})
	assert.ErrorIs(t, r.Err, edit.ErrSyntaxRejected)
	_, pending := s.Pending()
	assert.False(t, pending)
	assert.Equal(t, "a\n", readFile(t, path))
}

type fixedLocator struct{}

func (fixedLocator) Name() string { return "fixed" }

func (fixedLocator) Locate(_ context.Context, _ []byte, name string) (symbol.Range, error) {
	if name != "main" {
		return symbol.Range{}, symbol.NotFound(name)
	}
	return symbol.NewRange(2, 3), nil
}

func TestClient_Symbols(t *testing.T) {
	dir := t.TempDir()
	py := writeFile(t, dir, "app.py", "import os\n\ndef run():\n    return 1\n")
	custom := writeFile(t, dir, "prog.bas", "10 REM\n20 PRINT\n30 END\n")

	client, err := linedit.New(linedit.WithoutJournal(), linedit.WithLocator(symbol.Chain{fixedLocator{}}, ".bas"))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	loc, err := client.Symbols.Locate(ctx, py, "run")
	require.NoError(t, err)
	assert.Equal(t, 3, loc.Range.Start())
	assert.Equal(t, 4, loc.Range.End())

	loc, err = client.Symbols.Locate(ctx, custom, "main")
	require.NoError(t, err)
	assert.Equal(t, "20 PRINT\n30 END\n", loc.Content)
}
