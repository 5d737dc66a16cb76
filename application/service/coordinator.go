package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/linedit/domain/edit"
)

// DefaultMaxSelectionLines caps how many lines one selection may span.
const DefaultMaxSelectionLines = 500

// Command is an input to Coordinator.Apply.
type Command interface {
	command()
}

// Open makes Path the session's file, dropping any selection.
type Open struct {
	Path string
}

// Select takes an optimistic-lock ticket on Range of the open file.
type Select struct {
	Range edit.LineRange
}

// Propose stages Lines as the replacement of the selected range. When
// Fingerprint is set it must equal the selection's fingerprint.
type Propose struct {
	Lines       []string
	Fingerprint edit.Fingerprint
}

// Confirm writes the staged change.
type Confirm struct{}

// Cancel discards the staged change and keeps the selection.
type Cancel struct{}

// Reset drops the selection and any staged change.
type Reset struct{}

// Close drops the open file.
type Close struct{}

func (Open) command()    {}
func (Select) command()  {}
func (Propose) command() {}
func (Confirm) command() {}
func (Cancel) command()  {}
func (Reset) command()   {}
func (Close) command()   {}

// Result is the outcome of one command. Failures are carried in Err; a
// failed command returns the session it was given.
type Result struct {
	Err error
	// Range is the effective range: clamped on Select, the target on
	// Propose and Confirm.
	Range edit.LineRange
	// Fingerprint is the selection token on Select and the whole-file
	// fingerprint on Open and Confirm.
	Fingerprint edit.Fingerprint
	// Content is the selected text on Select.
	Content     string
	LineCount   int
	Preview     edit.DiffPreview
	Diff        string
	SyntaxError string
	Commit      *edit.Commit
}

// OK reports whether the command succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Coordinator runs the two-phase edit protocol as a pure transition from
// (Session, Command) to (Session, Result). It holds no session state; all
// file state is re-read on every command.
type Coordinator struct {
	storage    edit.Storage
	validators *edit.ValidatorRegistry
	journal    edit.Journal
	logger     *slog.Logger
	clock      func() time.Time
	maxLines   int
	strict     bool
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithValidators sets the syntax validator registry.
func WithValidators(r *edit.ValidatorRegistry) CoordinatorOption {
	return func(c *Coordinator) { c.validators = r }
}

// WithJournal records every confirmed change.
func WithJournal(j edit.Journal) CoordinatorOption {
	return func(c *Coordinator) { c.journal = j }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source for journal entries.
func WithClock(clock func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.clock = clock }
}

// WithMaxSelectionLines caps selection length. Zero or less disables the
// cap.
func WithMaxSelectionLines(n int) CoordinatorOption {
	return func(c *Coordinator) { c.maxLines = n }
}

// WithStrictSyntax rejects staged content that fails validation for every
// extension, regardless of the validator's own policy.
func WithStrictSyntax(strict bool) CoordinatorOption {
	return func(c *Coordinator) { c.strict = strict }
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(storage edit.Storage, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		storage:    storage,
		validators: edit.NewValidatorRegistry(),
		logger:     slog.Default(),
		clock:      time.Now,
		maxLines:   DefaultMaxSelectionLines,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply runs cmd against s.
func (c *Coordinator) Apply(ctx context.Context, s edit.Session, cmd Command) (edit.Session, Result) {
	switch cmd := cmd.(type) {
	case Open:
		return c.open(ctx, s, cmd)
	case Select:
		return c.selectRange(ctx, s, cmd)
	case Propose:
		return c.propose(ctx, s, cmd)
	case Confirm:
		return c.confirm(ctx, s)
	case Cancel:
		if _, ok := s.Pending(); !ok {
			return s, failed(edit.NewError(edit.KindInvalid, "no change is staged"))
		}
		return s.WithoutPending(), Result{}
	case Reset:
		return s.WithoutSelection(), Result{}
	case Close:
		return s.Closed(), Result{}
	default:
		return s, failed(edit.Errorf(edit.KindInvalid, "unknown command %T", cmd))
	}
}

func failed(err error) Result {
	return Result{Err: err}
}

func (c *Coordinator) open(ctx context.Context, s edit.Session, cmd Open) (edit.Session, Result) {
	content, err := c.storage.Read(ctx, cmd.Path)
	if err != nil {
		return s, failed(err)
	}
	return s.WithPath(cmd.Path), Result{
		Fingerprint: edit.Compute(content),
		LineCount:   len(edit.SplitLines(content)),
	}
}

func (c *Coordinator) selectRange(ctx context.Context, s edit.Session, cmd Select) (edit.Session, Result) {
	if s.Path() == "" {
		return s, failed(edit.NewError(edit.KindInvalid, "no file is open"))
	}
	content, err := c.storage.Read(ctx, s.Path())
	if err != nil {
		return s, failed(err)
	}
	lines := edit.SplitLines(content)

	r, err := edit.ValidateRange(cmd.Range, len(lines))
	if err != nil {
		return s, failed(err)
	}
	if err := edit.ValidateSize(r, c.maxLines); err != nil {
		return s, failed(err)
	}

	fp := edit.FingerprintLines(lines, r)
	c.logger.Debug("range selected",
		slog.String("session", s.ID()),
		slog.String("path", s.Path()),
		slog.String("range", r.String()),
	)
	return s.WithSelection(edit.Selection{Range: r, Fingerprint: fp}), Result{
		Range:       r,
		Fingerprint: fp,
		Content:     edit.JoinLines(lines[r.Start()-1 : r.End()]),
		LineCount:   len(lines),
	}
}

func (c *Coordinator) propose(ctx context.Context, s edit.Session, cmd Propose) (edit.Session, Result) {
	sel, ok := s.Selection()
	if !ok {
		return s, failed(edit.NewError(edit.KindInvalid, "no range is selected"))
	}
	if !cmd.Fingerprint.IsZero() && !cmd.Fingerprint.Equal(sel.Fingerprint) {
		return s, failed(edit.Errorf(edit.KindConflict,
			"fingerprint %s does not match selection %s", cmd.Fingerprint, sel.Fingerprint))
	}

	original, err := c.storage.Read(ctx, s.Path())
	if err != nil {
		return s, failed(err)
	}
	lines := edit.SplitLines(original)
	r := sel.Range
	if r.End() > len(lines) {
		return s, failed(edit.Errorf(edit.KindConflict,
			"file changed since selection: range %s is past the end (%d lines)", r, len(lines)))
	}
	if current := edit.FingerprintLines(lines, r); !current.Equal(sel.Fingerprint) {
		return s, failed(edit.Errorf(edit.KindConflict,
			"file changed since selection: range %s is now %s", r, current))
	}

	block := edit.NormalizeBlock(cmd.Lines)
	content := edit.JoinLines(edit.Splice(lines, r, block))
	preview := edit.NewDiffPreview(lines, block, r)
	diff := edit.UnifiedDiff(original, content)

	verdict := c.validate(ctx, s.Path(), content)
	if !verdict.Passed() && (verdict.Strict || c.strict) {
		c.logger.Info("staged change rejected by syntax check",
			slog.String("session", s.ID()),
			slog.String("path", s.Path()),
			slog.String("validator", verdict.Validator),
			slog.String("error", verdict.Message),
		)
		return s.WithoutPending(), Result{
			Err:         edit.Errorf(edit.KindSyntaxRejected, "%s rejected the change: %s", verdict.Validator, verdict.Message),
			Range:       r,
			Preview:     preview,
			Diff:        diff,
			SyntaxError: verdict.Message,
		}
	}

	pending := edit.Pending{
		Target:      r,
		Lines:       block,
		Content:     content,
		Preview:     preview,
		SyntaxError: verdict.Message,
		Before:      original,
	}
	return s.WithPending(pending), Result{
		Range:       r,
		Preview:     preview,
		Diff:        diff,
		SyntaxError: verdict.Message,
		LineCount:   len(edit.SplitLines(content)),
	}
}

// validate runs the registry. A validator that cannot run is logged and
// treated as a pass.
func (c *Coordinator) validate(ctx context.Context, path, content string) edit.Verdict {
	verdict, err := c.validators.Validate(ctx, path, content)
	if err != nil {
		c.logger.Warn("syntax validator failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return edit.Verdict{}
	}
	return verdict
}

func (c *Coordinator) confirm(ctx context.Context, s edit.Session) (edit.Session, Result) {
	pending, ok := s.Pending()
	if !ok {
		return s, failed(edit.NewError(edit.KindInvalid, "no change is staged"))
	}
	sel, _ := s.Selection()

	current, err := c.storage.Read(ctx, s.Path())
	if err != nil {
		return s, failed(asIOFailure("read before write", err))
	}
	if current != pending.Before {
		return s, failed(edit.Errorf(edit.KindConflict,
			"file changed since the change was staged: %s", s.Path()))
	}

	if err := c.storage.Write(ctx, s.Path(), pending.Content); err != nil {
		c.logger.Error("confirm write failed",
			slog.String("session", s.ID()),
			slog.String("path", s.Path()),
			slog.String("error", err.Error()),
		)
		return s, failed(asIOFailure("write", err))
	}

	after := edit.Compute(pending.Content)
	commit := edit.NewCommit(s.ID(), s.Path(), pending.Target, sel.Fingerprint, after,
		pending.Target.Len(), len(pending.Lines), c.clock())
	commit = c.record(ctx, commit)

	c.logger.Info("change committed",
		slog.String("session", s.ID()),
		slog.String("path", s.Path()),
		slog.String("range", pending.Target.String()),
		slog.Int("added", len(pending.Lines)),
	)
	return s.WithoutSelection(), Result{
		Range:       pending.Target,
		Fingerprint: after,
		LineCount:   len(edit.SplitLines(pending.Content)),
		Preview:     pending.Preview,
		SyntaxError: pending.SyntaxError,
		Commit:      &commit,
	}
}

// record journals commit. Journal failures never fail the edit.
func (c *Coordinator) record(ctx context.Context, commit edit.Commit) edit.Commit {
	return recordCommit(ctx, c.journal, c.logger, commit)
}

func recordCommit(ctx context.Context, journal edit.Journal, logger *slog.Logger, commit edit.Commit) edit.Commit {
	if journal == nil {
		return commit
	}
	saved, err := journal.Record(ctx, commit)
	if err != nil {
		logger.Warn("failed to record commit",
			slog.String("path", commit.Path()),
			slog.String("error", err.Error()),
		)
		return commit
	}
	return saved
}

func asIOFailure(op string, err error) error {
	if edit.KindOf(err) != edit.KindUnknown {
		return err
	}
	return edit.WrapError(edit.KindIOFailure, fmt.Sprintf("%s failed", op), err)
}
