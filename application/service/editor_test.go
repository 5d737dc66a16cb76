package service

import (
	"context"
	"errors"
	"testing"

	"github.com/helixml/linedit/domain/edit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(content string, opts ...CoordinatorOption) (*Editor, *memoryStorage, *fakeJournal) {
	storage := newMemoryStorage(map[string]string{testPath: content})
	journal := &fakeJournal{}
	opts = append([]CoordinatorOption{WithJournal(journal), WithClock(fixedClock)}, opts...)
	return NewEditor(storage, opts...), storage, journal
}

func rangeFP(content string, start, end int) edit.Fingerprint {
	return edit.FingerprintLines(edit.SplitLines(content), edit.NewLineRange(start, end))
}

func TestEditor_ReadRanges(t *testing.T) {
	content := "a\nb\nc\nd\n"
	e, _, _ := newTestEditor(content)
	ctx := context.Background()

	r, err := e.ReadRanges(ctx, testPath, []edit.LineRange{edit.NewLineRange(2, 3), edit.NewLineRange(4, 10)})
	require.NoError(t, err)
	assert.Equal(t, edit.Compute(content), r.Fingerprint)
	assert.Equal(t, 4, r.LineCount)
	require.Len(t, r.Ranges, 2)
	assert.Equal(t, "b\nc\n", r.Ranges[0].Content)
	assert.Equal(t, rangeFP(content, 2, 3), r.Ranges[0].Fingerprint)
	assert.Equal(t, edit.NewLineRange(4, 4), r.Ranges[1].Range)

	whole, err := e.ReadRanges(ctx, testPath, nil)
	require.NoError(t, err)
	require.Len(t, whole.Ranges, 1)
	assert.Equal(t, content, whole.Ranges[0].Content)

	_, err = e.ReadRanges(ctx, testPath, []edit.LineRange{edit.NewLineRange(0, 1)})
	assert.True(t, errors.Is(err, edit.ErrOutOfRange))

	_, err = e.ReadRanges(ctx, "/work/missing.txt", nil)
	assert.True(t, errors.Is(err, edit.ErrNotFound))
}

func TestEditor_PatchRanges(t *testing.T) {
	content := "1\n2\n3\n4\n5\n6\n"
	e, storage, journal := newTestEditor(content)

	// given out of order; applied bottom to top against the original numbering
	r, err := e.PatchRanges(context.Background(), testPath, edit.Compute(content), []Patch{
		{Range: edit.NewLineRange(5, 6), Fingerprint: rangeFP(content, 5, 6), Lines: []string{"five"}},
		{Range: edit.NewLineRange(1, 1), Fingerprint: rangeFP(content, 1, 1), Lines: []string{"one", "uno"}},
		{Range: edit.NewLineRange(3, 3), Fingerprint: rangeFP(content, 3, 3), Lines: nil},
	})
	require.NoError(t, err)
	want := "one\nuno\n2\n4\nfive\n"
	assert.Equal(t, want, storage.get(testPath))
	assert.Equal(t, edit.Compute(want), r.Fingerprint)
	assert.Equal(t, 5, r.LineCount)
	assert.NotEmpty(t, r.Diff)
	assert.Len(t, journal.commits, 3)
	assert.Len(t, r.Commits, 3)
}

func TestEditor_PatchRangesRejections(t *testing.T) {
	content := "1\n2\n3\n4\n"
	fileFP := edit.Compute(content)
	ctx := context.Background()

	tests := []struct {
		name    string
		fileFP  edit.Fingerprint
		patches []Patch
		want    error
	}{
		{"missing file fingerprint", "", []Patch{{Range: edit.NewLineRange(1, 1), Fingerprint: rangeFP(content, 1, 1)}}, edit.ErrInvalid},
		{"stale file fingerprint", edit.Compute("other"), []Patch{{Range: edit.NewLineRange(1, 1), Fingerprint: rangeFP(content, 1, 1)}}, edit.ErrConflict},
		{"overlap", fileFP, []Patch{
			{Range: edit.NewLineRange(3, 4), Fingerprint: rangeFP(content, 3, 4)},
			{Range: edit.NewLineRange(1, 3), Fingerprint: rangeFP(content, 1, 3)},
		}, edit.ErrOutOfRange},
		{"past end", fileFP, []Patch{{Range: edit.NewLineRange(4, 5), Fingerprint: "x"}}, edit.ErrOutOfRange},
		{"stale range fingerprint", fileFP, []Patch{
			{Range: edit.NewLineRange(1, 1), Fingerprint: rangeFP(content, 1, 1)},
			{Range: edit.NewLineRange(2, 2), Fingerprint: rangeFP(content, 3, 3)},
		}, edit.ErrConflict},
		{"no patches", fileFP, nil, edit.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, storage, journal := newTestEditor(content)
			_, err := e.PatchRanges(ctx, testPath, tt.fileFP, tt.patches)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, content, storage.get(testPath))
			assert.Zero(t, storage.writes)
			assert.Empty(t, journal.commits)
		})
	}
}

func TestEditor_DeleteRanges(t *testing.T) {
	content := "a\nb\nc\nd\n"
	e, storage, _ := newTestEditor(content)

	_, err := e.DeleteRanges(context.Background(), testPath, edit.Compute(content), []Patch{
		{Range: edit.NewLineRange(4, 4), Fingerprint: rangeFP(content, 4, 4)},
		{Range: edit.NewLineRange(1, 2), Fingerprint: rangeFP(content, 1, 2), Lines: []string{"ignored"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "c\n", storage.get(testPath))
}

func TestEditor_InsertLines(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		line     int
		position Position
		lines    []string
		expected string
		err      error
	}{
		{"before first", "a\nb\n", 1, Before, []string{"x"}, "x\na\nb\n", nil},
		{"after first", "a\nb\n", 1, After, []string{"x", "y"}, "a\nx\ny\nb\n", nil},
		{"after last", "a\nb\n", 2, After, []string{"x"}, "a\nb\nx\n", nil},
		{"after last without newline", "a\nb", 2, After, []string{"x"}, "a\nb\nx", nil},
		{"into empty file", "", 1, Before, []string{"x"}, "x\n", nil},
		{"anchor zero", "a\n", 0, Before, []string{"x"}, "", edit.ErrOutOfRange},
		{"anchor past end", "a\n", 2, After, []string{"x"}, "", edit.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, storage, _ := newTestEditor(tt.content)
			_, err := e.InsertLines(context.Background(), testPath, edit.Compute(tt.content), tt.line, tt.position, tt.lines)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
				assert.Equal(t, tt.content, storage.get(testPath))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, storage.get(testPath))
		})
	}
}

func TestEditor_AppendLines(t *testing.T) {
	e, storage, journal := newTestEditor("a\n")
	r, err := e.AppendLines(context.Background(), testPath, edit.Compute("a\n"), []string{"b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", storage.get(testPath))
	assert.Equal(t, 3, r.LineCount)
	require.Len(t, journal.commits, 1)
	assert.Equal(t, edit.SingleLine(2), journal.commits[0].Target())
	assert.Equal(t, 2, journal.commits[0].LinesAdded())
}

func TestEditor_CreateFile(t *testing.T) {
	e, storage, _ := newTestEditor("")
	ctx := context.Background()

	r, err := e.CreateFile(ctx, "/work/new.txt", []string{"hello", "world"})
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", storage.get("/work/new.txt"))
	assert.Equal(t, edit.Compute("hello\nworld\n"), r.Fingerprint)

	_, err = e.CreateFile(ctx, "/work/new.txt", []string{"again"})
	assert.True(t, errors.Is(err, edit.ErrConflict))
}

func TestEditor_StrictSyntax(t *testing.T) {
	e, storage, _ := newTestEditor("a\n", WithValidators(bangRegistry(true)))
	ctx := context.Background()

	_, err := e.AppendLines(ctx, testPath, edit.Compute("a\n"), []string{"!!"})
	assert.True(t, errors.Is(err, edit.ErrSyntaxRejected))
	assert.Equal(t, "a\n", storage.get(testPath))

	_, err = e.CreateFile(ctx, "/work/bad.txt", []string{"!!"})
	assert.True(t, errors.Is(err, edit.ErrSyntaxRejected))
	assert.False(t, storage.Exists(ctx, "/work/bad.txt"))
}

func TestEditor_WriteFailure(t *testing.T) {
	e, storage, journal := newTestEditor("a\n")
	storage.writeErr = errDisk

	_, err := e.AppendLines(context.Background(), testPath, edit.Compute("a\n"), []string{"b"})
	assert.True(t, errors.Is(err, edit.ErrIOFailure))
	assert.Empty(t, journal.commits)
}
