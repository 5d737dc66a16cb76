package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helixml/linedit"
	"github.com/helixml/linedit/infrastructure/api"
)

func newMCPTestClient(t *testing.T) (*linedit.Client, string) {
	t.Helper()
	tmpDir := t.TempDir()
	client, err := linedit.New(
		linedit.WithSQLite(filepath.Join(tmpDir, "test.db")),
		linedit.WithDataDir(tmpDir),
		linedit.WithAllowedRoot(tmpDir),
	)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, tmpDir
}

func mcpRequest(t *testing.T, method string, id int, params map[string]any) []byte {
	t.Helper()
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return b
}

func postMCP(t *testing.T, handler http.Handler, body []byte, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestMCPEndpoint_Initialize(t *testing.T) {
	client, _ := newMCPTestClient(t)
	apiServer := api.NewAPIServer(client, nil, api.WithVersion("1.2.3"))
	handler := apiServer.Handler()

	body := mcpRequest(t, "initialize", 1, map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "0.0.1"},
	})

	w := postMCP(t, handler, body, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int    `json:"id"`
		Result  struct {
			ServerInfo struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
			Capabilities struct {
				Tools json.RawMessage `json:"tools"`
			} `json:"capabilities"`
		} `json:"result"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Result.ServerInfo.Name != "linedit" {
		t.Errorf("server name = %q, want linedit", resp.Result.ServerInfo.Name)
	}
	if resp.Result.ServerInfo.Version != "1.2.3" {
		t.Errorf("server version = %q, want 1.2.3", resp.Result.ServerInfo.Version)
	}
	if resp.Result.Capabilities.Tools == nil {
		t.Error("expected tools capability to be present")
	}
}

func TestMCPEndpoint_ListTools(t *testing.T) {
	client, _ := newMCPTestClient(t)
	apiServer := api.NewAPIServer(client, nil)
	handler := apiServer.Handler()

	// Initialize first and capture session ID
	initBody := mcpRequest(t, "initialize", 1, map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "0.0.1"},
	})
	initResp := postMCP(t, handler, initBody, "")
	sessionID := initResp.Header().Get("Mcp-Session-Id")
	if sessionID == "" {
		t.Fatal("initialize did not return a session ID")
	}

	// List tools using the session ID
	body := mcpRequest(t, "tools/list", 2, nil)
	w := postMCP(t, handler, body, sessionID)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	names := map[string]bool{}
	for _, tool := range resp.Result.Tools {
		names[tool.Name] = true
	}

	expected := []string{
		"open_file",
		"select_lines",
		"propose_edit",
		"confirm_edit",
		"cancel_edit",
		"session_status",
		"locate_symbol",
		"read_ranges",
		"patch_ranges",
		"delete_ranges",
		"insert_lines",
		"append_lines",
		"create_file",
		"edit_history",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("missing %s tool", name)
		}
	}
	if len(resp.Result.Tools) != len(expected) {
		t.Errorf("expected %d tools, got %d", len(expected), len(resp.Result.Tools))
	}
}

func TestMCPEndpoint_RejectsInvalidContentType(t *testing.T) {
	client, _ := newMCPTestClient(t)
	apiServer := api.NewAPIServer(client, nil)
	handler := apiServer.Handler()

	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// initMCPSession sends an initialize request and returns the session ID.
func initMCPSession(t *testing.T, handler http.Handler) string {
	t.Helper()
	body := mcpRequest(t, "initialize", 1, map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "0.0.1"},
	})
	w := postMCP(t, handler, body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("initialize: status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	sessionID := w.Header().Get("Mcp-Session-Id")
	if sessionID == "" {
		t.Fatal("initialize did not return a session ID")
	}
	return sessionID
}

// toolResultText decodes the JSON-RPC response from a tools/call and returns
// the text content and whether the tool reported an error.
func toolResultText(t *testing.T, w *httptest.ResponseRecorder) (string, bool) {
	t.Helper()
	var resp struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode tool result: %v", err)
	}
	if len(resp.Result.Content) == 0 {
		return "", resp.Result.IsError
	}
	return resp.Result.Content[0].Text, resp.Result.IsError
}

func callTool(t *testing.T, handler http.Handler, sessionID string, id int, name string, args map[string]any) (string, bool) {
	t.Helper()
	body := mcpRequest(t, "tools/call", id, map[string]any{"name": name, "arguments": args})
	w := postMCP(t, handler, body, sessionID)
	if w.Code != http.StatusOK {
		t.Fatalf("%s: status = %d, want %d; body: %s", name, w.Code, http.StatusOK, w.Body.String())
	}
	return toolResultText(t, w)
}

// TestMCPEndpoint_SessionFollowsConnection verifies that session tools
// without a session_id share the edit session bound to the MCP session.
func TestMCPEndpoint_SessionFollowsConnection(t *testing.T) {
	client, dir := newMCPTestClient(t)
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	handler := api.NewAPIServer(client, nil).Handler()
	sessionID := initMCPSession(t, handler)

	if text, isError := callTool(t, handler, sessionID, 2, "open_file", map[string]any{"path": path}); isError {
		t.Fatalf("open_file: %s", text)
	}

	text, isError := callTool(t, handler, sessionID, 3, "select_lines", map[string]any{"start": 2})
	if isError {
		t.Fatalf("select_lines: %s", text)
	}
	var selected struct {
		SessionID   string `json:"session_id"`
		Fingerprint string `json:"fingerprint"`
	}
	if err := json.Unmarshal([]byte(text), &selected); err != nil {
		t.Fatalf("decode select result: %v", err)
	}
	if selected.SessionID != sessionID {
		t.Errorf("session_id = %q, want %q", selected.SessionID, sessionID)
	}

	if text, isError := callTool(t, handler, sessionID, 4, "propose_edit", map[string]any{
		"new_content": "TWO",
		"fingerprint": selected.Fingerprint,
	}); isError {
		t.Fatalf("propose_edit: %s", text)
	}
	if text, isError := callTool(t, handler, sessionID, 5, "confirm_edit", map[string]any{}); isError {
		t.Fatalf("confirm_edit: %s", text)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "one\nTWO\n" {
		t.Errorf("file = %q, want %q", data, "one\nTWO\n")
	}
}

// TestMCPEndpoint_ErrorsCarryKind verifies that tool failures are reported
// as tool-level errors prefixed with the failure kind.
func TestMCPEndpoint_ErrorsCarryKind(t *testing.T) {
	client, dir := newMCPTestClient(t)
	handler := api.NewAPIServer(client, nil).Handler()
	sessionID := initMCPSession(t, handler)

	text, isError := callTool(t, handler, sessionID, 2, "open_file", map[string]any{
		"path": filepath.Join(dir, "missing.txt"),
	})
	if !isError {
		t.Fatal("expected open_file on a missing file to fail")
	}
	if !strings.HasPrefix(text, "not_found:") {
		t.Errorf("error text = %q, want not_found prefix", text)
	}

	text, isError = callTool(t, handler, sessionID, 3, "confirm_edit", map[string]any{})
	if !isError {
		t.Fatal("expected confirm_edit without a staged change to fail")
	}
	if !strings.HasPrefix(text, "invalid:") {
		t.Errorf("error text = %q, want invalid prefix", text)
	}
}

// TestMCPEndpoint_ServerMiddlewareStack verifies that MCP works through the
// full server middleware stack (as built by ListenAndServe). Previously, chi's
// Timeout middleware wrapped the MCP StreamableHTTPServer's ResponseWriter,
// causing "superfluous response.WriteHeader" errors because MCP manages its
// own response headers for session state.
func TestMCPEndpoint_ServerMiddlewareStack(t *testing.T) {
	client, dir := newMCPTestClient(t)
	path := filepath.Join(dir, "a.py")
	if err := os.WriteFile(path, []byte("def run():\n    return 1\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	apiServer := api.NewAPIServer(client, nil)
	apiServer.MountRoutes()

	// Build the same handler stack as ListenAndServe: the Server router
	// (with RequestID, RealIP, Recoverer) wrapping the APIServer routes.
	srv := api.NewServer("", nil)
	srv.Router().Mount("/", apiServer.Router())
	handler := srv.Router()

	// Initialize: must succeed and return a session ID.
	sessionID := initMCPSession(t, handler)

	// List tools using the session, which verifies session state survives the
	// middleware stack.
	body := mcpRequest(t, "tools/list", 2, nil)
	w := postMCP(t, handler, body, sessionID)
	if w.Code != http.StatusOK {
		t.Fatalf("tools/list: status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	// Call a tool to confirm end-to-end through the middleware stack.
	text, isError := callTool(t, handler, sessionID, 3, "locate_symbol", map[string]any{"path": path, "name": "run"})
	if isError {
		t.Fatalf("locate_symbol returned error: %s", text)
	}
	if !strings.Contains(text, `"start":1`) {
		t.Errorf("expected symbol at line 1, got %s", text)
	}
}
