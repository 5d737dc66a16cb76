package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/linedit"
	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/infrastructure/api/jsonapi"
	"github.com/helixml/linedit/infrastructure/api/middleware"
)

// HistoryRouter lists journal entries.
type HistoryRouter struct {
	client     *linedit.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewHistoryRouter creates a new HistoryRouter.
func NewHistoryRouter(client *linedit.Client) *HistoryRouter {
	return &HistoryRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for history endpoints.
func (r *HistoryRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.List)
	return router
}

// List handles GET /api/v1/history.
//
//	@Summary		List committed changes
//	@Description	Newest first, filtered by path, session and time
//	@Tags			history
//	@Produce		json
//	@Param			path		query		string	false	"Absolute file path"
//	@Param			session_id	query		string	false	"Session ID"
//	@Param			since		query		string	false	"RFC 3339 timestamp"
//	@Param			page		query		int		false	"Page number (default: 1)"
//	@Param			page_size	query		int		false	"Results per page (default: 20, max: 100)"
//	@Success		200			{object}	jsonapi.Document
//	@Failure		400			{object}	jsonapi.Document
//	@Router			/history [get]
func (r *HistoryRouter) List(w http.ResponseWriter, req *http.Request) {
	pagination := ParsePagination(req)
	q := req.URL.Query()

	query := service.HistoryQuery{
		Path:      q.Get("path"),
		SessionID: q.Get("session_id"),
		Limit:     pagination.Limit(),
		Offset:    pagination.Offset(),
	}
	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "since must be an RFC 3339 timestamp", err), r.logger)
			return
		}
		query.Since = t
	}

	commits, err := r.client.History.List(req.Context(), query)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.CommitResources(commits))
	doc.Meta = PaginationMeta(pagination, len(commits))
	doc.Links = PaginationLinks(req, pagination, len(commits))
	middleware.WriteJSON(w, http.StatusOK, doc)
}
