package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/linedit"
	apimiddleware "github.com/helixml/linedit/infrastructure/api/middleware"
	v1 "github.com/helixml/linedit/infrastructure/api/v1"
	mcpinternal "github.com/helixml/linedit/internal/mcp"
)

// APIServer provides an HTTP API backed by a linedit Client.
type APIServer struct {
	client       *linedit.Client
	apiKeys      []string
	version      string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithVersion sets the version reported by the MCP endpoint.
func WithVersion(version string) APIServerOption {
	return func(a *APIServer) {
		a.version = version
	}
}

// NewAPIServer creates a new APIServer wired to the given linedit Client.
// apiKeys configures write-protection: mutating endpoints on
// /api/v1/sessions and /api/v1/files require a valid key. Reads, symbol
// lookup, history, MCP and docs remain open.
func NewAPIServer(client *linedit.Client, apiKeys []string, opts ...APIServerOption) *APIServer {
	a := &APIServer{
		client:  client,
		apiKeys: apiKeys,
		version: "dev",
		logger:  client.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	sessionsRouter := v1.NewSessionsRouter(c)
	filesRouter := v1.NewFilesRouter(c)
	symbolsRouter := v1.NewSymbolsRouter(c)
	historyRouter := v1.NewHistoryRouter(c)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		// Reads and lookups use POST bodies but never touch files.
		r.Mount("/read", filesRouter.ReadRoutes())
		r.Mount("/symbols", symbolsRouter.Routes())
		r.Mount("/history", historyRouter.Routes())

		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.WriteProtectAuth(a.apiKeys))
			r.Mount("/sessions", sessionsRouter.Routes())
			r.Mount("/files", filesRouter.Routes())
		})
	})

	// MCP streams responses and tracks its own sessions through headers,
	// so it sits outside the Timeout middleware.
	mcpSrv := mcpinternal.NewServer(c.Sessions, c.Editor, c.Symbols, c.History, a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

// DocsRouter returns a router for Swagger UI and OpenAPI spec.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}

// HealthHandler reports liveness along with the journal state.
func (a *APIServer) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"journal": a.client.JournalEnabled(),
	})
}
