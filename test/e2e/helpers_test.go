package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/helixml/linedit"
	"github.com/helixml/linedit/infrastructure/api"
	apimiddleware "github.com/helixml/linedit/infrastructure/api/middleware"
)

const testAPIKey = "e2e-key"

// TestServer wraps the full HTTP stack for e2e testing.
type TestServer struct {
	t          *testing.T
	client     *linedit.Client
	root       string
	httpServer *httptest.Server
}

// NewTestServer creates a test server over a client confined to a temp
// directory, with write protection enabled.
func NewTestServer(t *testing.T, opts ...linedit.Option) *TestServer {
	t.Helper()

	root := t.TempDir()
	dataDir := t.TempDir()

	opts = append([]linedit.Option{
		linedit.WithSQLite(filepath.Join(dataDir, "journal.db")),
		linedit.WithDataDir(dataDir),
		linedit.WithAllowedRoot(root),
	}, opts...)
	client, err := linedit.New(opts...)
	if err != nil {
		t.Fatalf("create linedit client: %v", err)
	}

	logger := client.Logger()
	apiServer := api.NewAPIServer(client, []string{testAPIKey})
	router := apiServer.Router()
	router.Use(apimiddleware.Logging(logger))
	router.Use(apimiddleware.CorrelationID)
	apiServer.MountRoutes()
	router.Get("/healthz", apiServer.HealthHandler)

	server := api.NewServer(":0", logger)
	server.Router().Mount("/", router)

	ts := &TestServer{
		t:          t,
		client:     client,
		root:       root,
		httpServer: httptest.NewServer(server.Router()),
	}

	t.Cleanup(func() {
		ts.Close()
	})

	return ts
}

// URL returns the base URL of the test server.
func (ts *TestServer) URL() string {
	return ts.httpServer.URL
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	ts.httpServer.Close()
	_ = ts.client.Close()
}

// WriteFile creates name under the server's root and returns its path.
func (ts *TestServer) WriteFile(name, content string) string {
	ts.t.Helper()
	path := filepath.Join(ts.root, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		ts.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of path.
func (ts *TestServer) ReadFile(path string) string {
	ts.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		ts.t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// GET performs a GET request and returns the response.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	resp, err := http.Get(ts.URL() + path)
	if err != nil {
		ts.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST sends attrs wrapped in a JSON:API document with the API key.
func (ts *TestServer) POST(path, resourceType string, attrs any) *http.Response {
	ts.t.Helper()
	var body io.Reader = http.NoBody
	if attrs != nil {
		data, err := json.Marshal(map[string]any{
			"data": map[string]any{"type": resourceType, "attributes": attrs},
		})
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL()+path, body)
	if err != nil {
		ts.t.Fatalf("create POST request: %v", err)
	}
	req.Header.Set("Content-Type", "application/vnd.api+json")
	req.Header.Set(apimiddleware.APIKeyHeader, testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// DecodeJSON decodes the response body as JSON into v.
func (ts *TestServer) DecodeJSON(resp *http.Response, v any) {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		ts.t.Fatalf("decode response: %v", err)
	}
}

// ReadBody reads and returns the response body as a string.
func (ts *TestServer) ReadBody(resp *http.Response) string {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read body: %v", err)
	}
	return string(body)
}

// ExpectStatus fails the test when resp has a different status code.
func (ts *TestServer) ExpectStatus(resp *http.Response, want int) {
	ts.t.Helper()
	if resp.StatusCode != want {
		ts.t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, want, ts.ReadBody(resp))
	}
}

// ErrorCode decodes a JSON:API error document and returns its first code.
func (ts *TestServer) ErrorCode(resp *http.Response) string {
	ts.t.Helper()
	var doc struct {
		Errors []struct {
			Code string `json:"code"`
		} `json:"errors"`
	}
	ts.DecodeJSON(resp, &doc)
	if len(doc.Errors) == 0 {
		ts.t.Fatal("expected an error document")
	}
	return doc.Errors[0].Code
}

type resource[A any] struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes A      `json:"attributes"`
}

type single[A any] struct {
	Data resource[A] `json:"data"`
}

type list[A any] struct {
	Data []resource[A] `json:"data"`
}
