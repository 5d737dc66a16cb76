// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/domain/edit"
)

// DefaultSessionID names the session used when neither the caller nor the
// transport supplies one.
const DefaultSessionID = "default"

// Sessions hosts two-phase edit sessions.
type Sessions interface {
	Acquire(id string) edit.Session
	Apply(ctx context.Context, id string, cmd service.Command) (edit.Session, service.Result)
}

// Editor performs stateless fingerprint-guarded edits.
type Editor interface {
	ReadRanges(ctx context.Context, path string, ranges []edit.LineRange) (service.ReadResult, error)
	PatchRanges(ctx context.Context, path string, fileFingerprint edit.Fingerprint, patches []service.Patch) (service.ChangeResult, error)
	DeleteRanges(ctx context.Context, path string, fileFingerprint edit.Fingerprint, deletions []service.Patch) (service.ChangeResult, error)
	InsertLines(ctx context.Context, path string, fileFingerprint edit.Fingerprint, line int, position service.Position, block []string) (service.ChangeResult, error)
	AppendLines(ctx context.Context, path string, fileFingerprint edit.Fingerprint, block []string) (service.ChangeResult, error)
	CreateFile(ctx context.Context, path string, block []string) (service.ChangeResult, error)
}

// SymbolLocator finds definitions by name.
type SymbolLocator interface {
	Locate(ctx context.Context, path, name string) (service.SymbolLocation, error)
}

// HistoryLister lists journal entries.
type HistoryLister interface {
	List(ctx context.Context, q service.HistoryQuery) ([]edit.Commit, error)
}

// Server wraps the MCP server with line-editing tools.
type Server struct {
	mcpServer *server.MCPServer
	sessions  Sessions
	editor    Editor
	symbols   SymbolLocator
	history   HistoryLister
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(sessions Sessions, editor Editor, symbols SymbolLocator, history HistoryLister, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		sessions: sessions,
		editor:   editor,
		symbols:  symbols,
		history:  history,
		logger:   logger,
	}

	mcpServer := server.NewMCPServer(
		"linedit",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	s.registerSessionTools(mcpServer)
	s.registerFileTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

const instructions = `Edit files by line range with optimistic locking.
Session flow: open_file, select_lines (returns a fingerprint), propose_edit
(returns a preview), then confirm_edit or cancel_edit.
Stateless flow: read_ranges returns a file fingerprint and one fingerprint per
range; pass them back to patch_ranges, delete_ranges, insert_lines or
append_lines. Any change to the file since the read is reported as a conflict.
Lines are 1-based and inclusive.`

func sessionIDParam() mcp.ToolOption {
	return mcp.WithString("session_id",
		mcp.Description("Edit session to use (default: the connection's session)"),
	)
}

func (s *Server) registerSessionTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("open_file",
		mcp.WithDescription("Open a file in an edit session, dropping any earlier selection"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
		sessionIDParam(),
	), s.handleOpenFile)

	mcpServer.AddTool(mcp.NewTool("select_lines",
		mcp.WithDescription("Select a line range of the open file and return its content and fingerprint"),
		mcp.WithNumber("start", mcp.Required(), mcp.Description("First line, 1-based")),
		mcp.WithNumber("end", mcp.Description("Last line, inclusive; clamped to the file length (default: start)")),
		sessionIDParam(),
	), s.handleSelectLines)

	mcpServer.AddTool(mcp.NewTool("propose_edit",
		mcp.WithDescription("Stage a replacement for the selected lines and return a diff preview"),
		mcp.WithString("new_content", mcp.Required(), mcp.Description("Replacement text; empty deletes the selection")),
		mcp.WithString("fingerprint", mcp.Description("Fingerprint returned by select_lines")),
		sessionIDParam(),
	), s.handleProposeEdit)

	mcpServer.AddTool(mcp.NewTool("confirm_edit",
		mcp.WithDescription("Write the staged change to disk"),
		mcp.WithDestructiveHintAnnotation(true),
		sessionIDParam(),
	), s.handleConfirmEdit)

	mcpServer.AddTool(mcp.NewTool("cancel_edit",
		mcp.WithDescription("Discard the staged change and keep the selection"),
		sessionIDParam(),
	), s.handleCancelEdit)

	mcpServer.AddTool(mcp.NewTool("session_status",
		mcp.WithDescription("Show the open file, selection and staged change of a session"),
		mcp.WithReadOnlyHintAnnotation(true),
		sessionIDParam(),
	), s.handleSessionStatus)
}

func (s *Server) registerFileTools(mcpServer *server.MCPServer) {
	rangeItems := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start":       map[string]any{"type": "number", "description": "First line, 1-based"},
			"end":         map[string]any{"type": "number", "description": "Last line, inclusive"},
			"fingerprint": map[string]any{"type": "string", "description": "Range fingerprint from read_ranges"},
		},
		"required": []string{"start"},
	}
	patchItems := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start":       map[string]any{"type": "number", "description": "First line, 1-based"},
			"end":         map[string]any{"type": "number", "description": "Last line, inclusive"},
			"fingerprint": map[string]any{"type": "string", "description": "Range fingerprint from read_ranges"},
			"content":     map[string]any{"type": "string", "description": "Replacement text"},
		},
		"required": []string{"start", "fingerprint", "content"},
	}

	mcpServer.AddTool(mcp.NewTool("locate_symbol",
		mcp.WithDescription("Find the line range of a function, method or class by name"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of a Python, JavaScript or TypeScript file")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Symbol name")),
	), s.handleLocateSymbol)

	mcpServer.AddTool(mcp.NewTool("read_ranges",
		mcp.WithDescription("Read line ranges with their fingerprints (the whole file when no ranges are given)"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
		mcp.WithArray("ranges", mcp.Description("Ranges to read"), mcp.Items(rangeItems)),
	), s.handleReadRanges)

	mcpServer.AddTool(mcp.NewTool("patch_ranges",
		mcp.WithDescription("Replace several non-overlapping ranges in one write"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
		mcp.WithString("file_fingerprint", mcp.Required(), mcp.Description("Whole-file fingerprint from read_ranges")),
		mcp.WithArray("patches", mcp.Required(), mcp.Description("Replacements"), mcp.Items(patchItems)),
	), s.handlePatchRanges)

	mcpServer.AddTool(mcp.NewTool("delete_ranges",
		mcp.WithDescription("Delete several non-overlapping ranges in one write"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
		mcp.WithString("file_fingerprint", mcp.Required(), mcp.Description("Whole-file fingerprint from read_ranges")),
		mcp.WithArray("ranges", mcp.Required(), mcp.Description("Ranges to delete, each with its fingerprint"), mcp.Items(rangeItems)),
	), s.handleDeleteRanges)

	mcpServer.AddTool(mcp.NewTool("insert_lines",
		mcp.WithDescription("Insert text before or after a line"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
		mcp.WithString("file_fingerprint", mcp.Required(), mcp.Description("Whole-file fingerprint from read_ranges")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Anchor line, 1-based")),
		mcp.WithString("position", mcp.Enum("before", "after"), mcp.Description("Where to insert (default: before)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to insert")),
	), s.handleInsertLines)

	mcpServer.AddTool(mcp.NewTool("append_lines",
		mcp.WithDescription("Append text at the end of a file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
		mcp.WithString("file_fingerprint", mcp.Required(), mcp.Description("Whole-file fingerprint from read_ranges")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to append")),
	), s.handleAppendLines)

	mcpServer.AddTool(mcp.NewTool("create_file",
		mcp.WithDescription("Create a new file; fails when it already exists"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the new file")),
		mcp.WithString("content", mcp.Required(), mcp.Description("File content")),
	), s.handleCreateFile)

	mcpServer.AddTool(mcp.NewTool("edit_history",
		mcp.WithDescription("List confirmed edits, newest first"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("path", mcp.Description("Only edits to this file")),
		mcp.WithString("session_id", mcp.Description("Only edits from this session")),
		mcp.WithNumber("limit", mcp.Description("Maximum entries (default: 50)")),
	), s.handleEditHistory)
}

// sessionID picks the explicit session_id argument, then the transport's
// client session, then DefaultSessionID.
func (s *Server) sessionID(ctx context.Context, request mcp.CallToolRequest) string {
	if id := request.GetString("session_id", ""); id != "" {
		return id
	}
	if cs := server.ClientSessionFromContext(ctx); cs != nil && cs.SessionID() != "" {
		return cs.SessionID()
	}
	return DefaultSessionID
}

func (s *Server) apply(ctx context.Context, request mcp.CallToolRequest, cmd service.Command) (edit.Session, service.Result, string) {
	id := s.sessionID(ctx, request)
	s.sessions.Acquire(id)
	next, result := s.sessions.Apply(ctx, id, cmd)
	if result.Err != nil {
		s.logger.Debug("edit command failed",
			slog.String("session", id),
			slog.String("command", fmt.Sprintf("%T", cmd)),
			slog.String("error", result.Err.Error()),
		)
	}
	return next, result, id
}

func (s *Server) handleOpenFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	session, result, id := s.apply(ctx, request, service.Open{Path: path})
	if result.Err != nil {
		return errorResult(result.Err), nil
	}
	return textResult(openResult{
		SessionID:   id,
		Path:        session.Path(),
		Fingerprint: result.Fingerprint.String(),
		LineCount:   result.LineCount,
	})
}

func (s *Server) handleSelectLines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := request.RequireInt("start")
	if err != nil {
		return mcp.NewToolResultError("start is required"), nil
	}
	end := request.GetInt("end", start)

	_, result, id := s.apply(ctx, request, service.Select{Range: edit.NewLineRange(start, end)})
	if result.Err != nil {
		return errorResult(result.Err), nil
	}
	return textResult(selectResult{
		SessionID:   id,
		Start:       result.Range.Start(),
		End:         result.Range.End(),
		Fingerprint: result.Fingerprint.String(),
		Content:     result.Content,
	})
}

func (s *Server) handleProposeEdit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("new_content")
	if err != nil {
		return mcp.NewToolResultError("new_content is required"), nil
	}
	cmd := service.Propose{
		Lines:       edit.BlockLines(content),
		Fingerprint: edit.Fingerprint(request.GetString("fingerprint", "")),
	}

	_, result, id := s.apply(ctx, request, cmd)
	if result.Err != nil {
		return errorResult(result.Err), nil
	}
	return textResult(proposeResult{
		SessionID:   id,
		Start:       result.Range.Start(),
		End:         result.Range.End(),
		Preview:     result.Preview.String(),
		Removed:     result.Preview.Removed(),
		Added:       result.Preview.Added(),
		SyntaxError: result.SyntaxError,
	})
}

func (s *Server) handleConfirmEdit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, result, id := s.apply(ctx, request, service.Confirm{})
	if result.Err != nil {
		return errorResult(result.Err), nil
	}
	out := confirmResult{
		SessionID:   id,
		Fingerprint: result.Fingerprint.String(),
		LineCount:   result.LineCount,
		Diff:        result.Diff,
		SyntaxError: result.SyntaxError,
	}
	if result.Commit != nil {
		out.CommitID = result.Commit.ID()
	}
	return textResult(out)
}

func (s *Server) handleCancelEdit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, result, id := s.apply(ctx, request, service.Cancel{})
	if result.Err != nil {
		return errorResult(result.Err), nil
	}
	return textResult(newStatusResult(id, session))
}

func (s *Server) handleSessionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := s.sessionID(ctx, request)
	return textResult(newStatusResult(id, s.sessions.Acquire(id)))
}

func (s *Server) handleLocateSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	loc, err := s.symbols.Locate(ctx, path, name)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(newSymbolResult(loc))
}

type rangeArg struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Fingerprint string `json:"fingerprint"`
	Content     string `json:"content"`
}

func (r rangeArg) lineRange() edit.LineRange {
	end := r.End
	if end == 0 {
		end = r.Start
	}
	return edit.NewLineRange(r.Start, end)
}

func (r rangeArg) patch() service.Patch {
	return service.Patch{
		Range:       r.lineRange(),
		Fingerprint: edit.Fingerprint(r.Fingerprint),
		Lines:       edit.BlockLines(r.Content),
	}
}

type rangesArgs struct {
	Path            string     `json:"path"`
	FileFingerprint string     `json:"file_fingerprint"`
	Ranges          []rangeArg `json:"ranges"`
	Patches         []rangeArg `json:"patches"`
}

func bindRanges(request mcp.CallToolRequest) (rangesArgs, error) {
	var args rangesArgs
	if err := request.BindArguments(&args); err != nil {
		return rangesArgs{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Path == "" {
		return rangesArgs{}, errors.New("path is required")
	}
	return args, nil
}

func (s *Server) handleReadRanges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindRanges(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ranges := make([]edit.LineRange, len(args.Ranges))
	for i, r := range args.Ranges {
		ranges[i] = r.lineRange()
	}

	read, err := s.editor.ReadRanges(ctx, args.Path, ranges)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(newReadResult(read))
}

func (s *Server) handlePatchRanges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindRanges(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	patches := make([]service.Patch, len(args.Patches))
	for i, p := range args.Patches {
		patches[i] = p.patch()
	}

	change, err := s.editor.PatchRanges(ctx, args.Path, edit.Fingerprint(args.FileFingerprint), patches)
	return changeOrError(change, err)
}

func (s *Server) handleDeleteRanges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindRanges(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deletions := make([]service.Patch, len(args.Ranges))
	for i, r := range args.Ranges {
		deletions[i] = r.patch()
	}

	change, err := s.editor.DeleteRanges(ctx, args.Path, edit.Fingerprint(args.FileFingerprint), deletions)
	return changeOrError(change, err)
}

func (s *Server) handleInsertLines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	line, err := request.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError("line is required"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required"), nil
	}
	position, err := service.ParsePosition(request.GetString("position", "before"))
	if err != nil {
		return errorResult(err), nil
	}

	fp := edit.Fingerprint(request.GetString("file_fingerprint", ""))
	change, err := s.editor.InsertLines(ctx, path, fp, line, position, edit.BlockLines(content))
	return changeOrError(change, err)
}

func (s *Server) handleAppendLines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required"), nil
	}

	fp := edit.Fingerprint(request.GetString("file_fingerprint", ""))
	change, err := s.editor.AppendLines(ctx, path, fp, edit.BlockLines(content))
	return changeOrError(change, err)
}

func (s *Server) handleCreateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required"), nil
	}

	change, err := s.editor.CreateFile(ctx, path, edit.BlockLines(content))
	return changeOrError(change, err)
}

func (s *Server) handleEditHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultError("edit journal is disabled"), nil
	}
	commits, err := s.history.List(ctx, service.HistoryQuery{
		Path:      request.GetString("path", ""),
		SessionID: request.GetString("session_id", ""),
		Limit:     request.GetInt("limit", service.DefaultHistoryLimit),
	})
	if err != nil {
		return errorResult(err), nil
	}

	out := make([]commitResult, len(commits))
	for i, c := range commits {
		out[i] = newCommitResult(c)
	}
	return textResult(out)
}

func changeOrError(change service.ChangeResult, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(newChangeResult(change))
}

// errorResult renders err as "<kind>: <message>" so callers can branch on
// the kind prefix.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", edit.KindOf(err), err))
}

func textResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
