package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/helixml/linedit/domain/edit"
)

// RangeContent is one range read from a file.
type RangeContent struct {
	Range       edit.LineRange
	Fingerprint edit.Fingerprint
	Content     string
}

// ReadResult holds ranges read from one file.
type ReadResult struct {
	Path        string
	Fingerprint edit.Fingerprint
	LineCount   int
	Ranges      []RangeContent
}

// Patch replaces Range, whose content must still match Fingerprint.
type Patch struct {
	Range       edit.LineRange
	Fingerprint edit.Fingerprint
	Lines       []string
}

// Position places inserted lines relative to an anchor line.
type Position int

// Position values.
const (
	Before Position = iota
	After
)

// ParsePosition reads "before" or "after". Empty means before.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "", "before":
		return Before, nil
	case "after":
		return After, nil
	default:
		return Before, edit.Errorf(edit.KindInvalid, "position must be before or after, got %q", s)
	}
}

// String returns the position name.
func (p Position) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// ChangeResult describes a written change.
type ChangeResult struct {
	Path        string
	Fingerprint edit.Fingerprint
	LineCount   int
	Diff        string
	SyntaxError string
	Commits     []edit.Commit
}

// Editor performs stateless, fingerprint-guarded file edits. Each call
// reads the file, checks every supplied fingerprint, and writes the whole
// result at once or not at all.
type Editor struct {
	storage    edit.Storage
	validators *edit.ValidatorRegistry
	journal    edit.Journal
	logger     *slog.Logger
	clock      func() time.Time
	strict     bool
}

// NewEditor creates an Editor. It accepts the same options as
// NewCoordinator; the selection cap does not apply.
func NewEditor(storage edit.Storage, opts ...CoordinatorOption) *Editor {
	c := NewCoordinator(storage, opts...)
	return &Editor{
		storage:    storage,
		validators: c.validators,
		journal:    c.journal,
		logger:     c.logger,
		clock:      c.clock,
		strict:     c.strict,
	}
}

// ReadRanges returns the content and fingerprint of each range. Ends are
// clamped to the file length. With no ranges the whole file is returned.
func (e *Editor) ReadRanges(ctx context.Context, path string, ranges []edit.LineRange) (ReadResult, error) {
	content, err := e.storage.Read(ctx, path)
	if err != nil {
		return ReadResult{}, err
	}
	lines := edit.SplitLines(content)
	result := ReadResult{
		Path:        path,
		Fingerprint: edit.Compute(content),
		LineCount:   len(lines),
	}

	if len(ranges) == 0 {
		if len(lines) == 0 {
			return result, nil
		}
		ranges = []edit.LineRange{edit.NewLineRange(1, len(lines))}
	}
	for _, r := range ranges {
		valid, err := edit.ValidateRange(r, len(lines))
		if err != nil {
			return ReadResult{}, err
		}
		result.Ranges = append(result.Ranges, RangeContent{
			Range:       valid,
			Fingerprint: edit.FingerprintLines(lines, valid),
			Content:     edit.JoinLines(lines[valid.Start()-1 : valid.End()]),
		})
	}
	return result, nil
}

// PatchRanges applies several replacements in one write. The file
// fingerprint is checked first, then the ranges are validated as a set,
// then each range fingerprint. Patches apply bottom to top so line
// numbers refer to the file as read.
func (e *Editor) PatchRanges(ctx context.Context, path string, fileFingerprint edit.Fingerprint, patches []Patch) (ChangeResult, error) {
	original, lines, err := e.load(ctx, path, fileFingerprint)
	if err != nil {
		return ChangeResult{}, err
	}

	ranges := make([]edit.LineRange, len(patches))
	for i, p := range patches {
		ranges[i] = p.Range
	}
	if _, err := edit.ValidateRanges(ranges, len(lines)); err != nil {
		return ChangeResult{}, err
	}

	sorted := slices.Clone(patches)
	slices.SortStableFunc(sorted, func(a, b Patch) int {
		return a.Range.Start() - b.Range.Start()
	})
	for _, p := range sorted {
		if current := edit.FingerprintLines(lines, p.Range); !current.Equal(p.Fingerprint) {
			return ChangeResult{}, edit.Errorf(edit.KindConflict,
				"range %s changed: expected %s, found %s", p.Range, p.Fingerprint, current)
		}
	}

	next := lines
	for i := len(sorted) - 1; i >= 0; i-- {
		next = edit.Splice(next, sorted[i].Range, edit.NormalizeBlock(sorted[i].Lines))
	}

	commits := make([]pendingCommit, len(sorted))
	for i, p := range sorted {
		commits[i] = pendingCommit{target: p.Range, before: p.Fingerprint, removed: p.Range.Len(), added: len(edit.NormalizeBlock(p.Lines))}
	}
	return e.write(ctx, path, original, edit.JoinLines(next), commits)
}

// DeleteRanges removes ranges whose content still matches the supplied
// fingerprints.
func (e *Editor) DeleteRanges(ctx context.Context, path string, fileFingerprint edit.Fingerprint, deletions []Patch) (ChangeResult, error) {
	patches := make([]Patch, len(deletions))
	for i, d := range deletions {
		patches[i] = Patch{Range: d.Range, Fingerprint: d.Fingerprint}
	}
	return e.PatchRanges(ctx, path, fileFingerprint, patches)
}

// InsertLines inserts lines before or after the anchor line.
func (e *Editor) InsertLines(ctx context.Context, path string, fileFingerprint edit.Fingerprint, line int, position Position, block []string) (ChangeResult, error) {
	original, lines, err := e.load(ctx, path, fileFingerprint)
	if err != nil {
		return ChangeResult{}, err
	}

	limit := len(lines)
	if position == Before {
		limit = max(limit, 1)
	}
	if line < 1 || line > limit {
		return ChangeResult{}, edit.Errorf(edit.KindOutOfRange,
			"anchor line %d is outside 1-%d", line, len(lines))
	}

	at := line
	if position == After {
		at = line + 1
	}
	block = edit.NormalizeBlock(block)
	next := edit.InsertBefore(lines, at, block)
	commit := pendingCommit{target: edit.SingleLine(at), added: len(block)}
	return e.write(ctx, path, original, edit.JoinLines(next), []pendingCommit{commit})
}

// AppendLines adds lines at the end of the file.
func (e *Editor) AppendLines(ctx context.Context, path string, fileFingerprint edit.Fingerprint, block []string) (ChangeResult, error) {
	original, lines, err := e.load(ctx, path, fileFingerprint)
	if err != nil {
		return ChangeResult{}, err
	}
	block = edit.NormalizeBlock(block)
	next := edit.Append(lines, block)
	commit := pendingCommit{target: edit.SingleLine(len(lines) + 1), added: len(block)}
	return e.write(ctx, path, original, edit.JoinLines(next), []pendingCommit{commit})
}

// CreateFile writes a new file. Every line, the last included, is
// newline-terminated. It fails with Conflict when the file exists.
func (e *Editor) CreateFile(ctx context.Context, path string, block []string) (ChangeResult, error) {
	block = edit.NormalizeBlock(block)
	content := edit.JoinLines(edit.Append(nil, block))

	verdict := e.validate(ctx, path, content)
	if !verdict.Passed() && (verdict.Strict || e.strict) {
		return ChangeResult{SyntaxError: verdict.Message}, edit.Errorf(edit.KindSyntaxRejected,
			"%s rejected the file: %s", verdict.Validator, verdict.Message)
	}
	if err := e.storage.Create(ctx, path, content); err != nil {
		return ChangeResult{}, err
	}

	commit := edit.NewCommit("", path, edit.NewLineRange(1, max(len(block), 1)), edit.Compute(""),
		edit.Compute(content), 0, len(block), e.clock())
	commit = recordCommit(ctx, e.journal, e.logger, commit)
	e.logger.Info("file created", slog.String("path", path), slog.Int("lines", len(block)))

	return ChangeResult{
		Path:        path,
		Fingerprint: edit.Compute(content),
		LineCount:   len(block),
		Diff:        edit.UnifiedDiff("", content),
		SyntaxError: verdict.Message,
		Commits:     []edit.Commit{commit},
	}, nil
}

// load reads path and checks the whole-file fingerprint.
func (e *Editor) load(ctx context.Context, path string, fileFingerprint edit.Fingerprint) (string, []string, error) {
	if fileFingerprint.IsZero() {
		return "", nil, edit.NewError(edit.KindInvalid, "file fingerprint is required")
	}
	content, err := e.storage.Read(ctx, path)
	if err != nil {
		return "", nil, err
	}
	if current := edit.Compute(content); !current.Equal(fileFingerprint) {
		return "", nil, edit.Errorf(edit.KindConflict,
			"file changed: expected %s, found %s", fileFingerprint, current)
	}
	return content, edit.SplitLines(content), nil
}

type pendingCommit struct {
	target  edit.LineRange
	before  edit.Fingerprint
	removed int
	added   int
}

func (e *Editor) write(ctx context.Context, path, original, content string, commits []pendingCommit) (ChangeResult, error) {
	verdict := e.validate(ctx, path, content)
	if !verdict.Passed() && (verdict.Strict || e.strict) {
		return ChangeResult{SyntaxError: verdict.Message}, edit.Errorf(edit.KindSyntaxRejected,
			"%s rejected the change: %s", verdict.Validator, verdict.Message)
	}
	if err := e.storage.Write(ctx, path, content); err != nil {
		return ChangeResult{}, asIOFailure("write", err)
	}

	after := edit.Compute(content)
	at := e.clock()
	recorded := make([]edit.Commit, 0, len(commits))
	for _, pc := range commits {
		c := edit.NewCommit("", path, pc.target, pc.before, after, pc.removed, pc.added, at)
		recorded = append(recorded, recordCommit(ctx, e.journal, e.logger, c))
	}
	e.logger.Info("file edited", slog.String("path", path), slog.Int("changes", len(commits)))

	return ChangeResult{
		Path:        path,
		Fingerprint: after,
		LineCount:   len(edit.SplitLines(content)),
		Diff:        edit.UnifiedDiff(original, content),
		SyntaxError: verdict.Message,
		Commits:     recorded,
	}, nil
}

func (e *Editor) validate(ctx context.Context, path, content string) edit.Verdict {
	verdict, err := e.validators.Validate(ctx, path, content)
	if err != nil {
		e.logger.Warn("syntax validator failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return edit.Verdict{}
	}
	return verdict
}
