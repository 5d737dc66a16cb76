// Package v1 provides the v1 API routes.
package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/linedit"
	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/infrastructure/api/jsonapi"
	"github.com/helixml/linedit/infrastructure/api/middleware"
	"github.com/helixml/linedit/infrastructure/api/v1/dto"
	"github.com/helixml/linedit/internal/log"
)

// SessionsRouter handles edit session endpoints.
type SessionsRouter struct {
	client     *linedit.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewSessionsRouter creates a new SessionsRouter.
func NewSessionsRouter(client *linedit.Client) *SessionsRouter {
	return &SessionsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for session endpoints.
func (r *SessionsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Delete("/{id}", r.Delete)
	router.Post("/{id}/open", r.Open)
	router.Post("/{id}/select", r.Select)
	router.Post("/{id}/propose", r.Propose)
	router.Post("/{id}/confirm", r.Confirm)
	router.Post("/{id}/cancel", r.Cancel)
	router.Post("/{id}/reset", r.Reset)
	router.Post("/{id}/close", r.Close)

	return router
}

// List handles GET /api/v1/sessions.
//
//	@Summary	List sessions
//	@Tags		sessions
//	@Produce	json
//	@Success	200	{object}	jsonapi.Document
//	@Router		/sessions [get]
func (r *SessionsRouter) List(w http.ResponseWriter, req *http.Request) {
	sessions := r.client.Sessions.List()
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.SessionResources(sessions)))
}

// Create handles POST /api/v1/sessions.
//
//	@Summary		Create session
//	@Description	Start an edit session, optionally opening a file
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.Request[dto.SessionCreateAttributes]	false	"Session"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/sessions [post]
func (r *SessionsRouter) Create(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.SessionCreateAttributes](w, req, true)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var session edit.Session
	if attrs.ID != "" {
		session = r.client.Sessions.Acquire(attrs.ID)
	} else {
		session = r.client.Sessions.Create()
	}

	if attrs.Path != "" {
		next, result := r.client.Sessions.Apply(r.context(req, session.ID()), session.ID(), service.Open{Path: attrs.Path})
		if result.Err != nil {
			middleware.WriteError(w, req, result.Err, r.logger)
			return
		}
		middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.ResultResource(next, result)))
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.SessionResource(session)))
}

// Get handles GET /api/v1/sessions/{id}.
func (r *SessionsRouter) Get(w http.ResponseWriter, req *http.Request) {
	session, err := r.client.Sessions.Get(chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.SessionResource(session)))
}

// Delete handles DELETE /api/v1/sessions/{id}.
//
//	@Summary	Delete session
//	@Tags		sessions
//	@Param		id	path	string	true	"Session ID"
//	@Success	204
//	@Failure	404	{object}	jsonapi.Document
//	@Security	APIKeyAuth
//	@Router		/sessions/{id} [delete]
func (r *SessionsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	if err := r.client.Sessions.Delete(chi.URLParam(req, "id")); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Open handles POST /api/v1/sessions/{id}/open.
func (r *SessionsRouter) Open(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.OpenAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.apply(w, req, service.Open{Path: attrs.Path})
}

// Select handles POST /api/v1/sessions/{id}/select.
//
//	@Summary		Select lines
//	@Description	Take a fingerprint on a line range of the open file
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Session ID"
//	@Param			body	body		dto.Request[dto.SelectAttributes]	true	"Range"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		413		{object}	jsonapi.Document
//	@Failure		416		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/sessions/{id}/select [post]
func (r *SessionsRouter) Select(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.SelectAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.apply(w, req, service.Select{Range: attrs.Range()})
}

// Propose handles POST /api/v1/sessions/{id}/propose.
//
//	@Summary		Propose replacement
//	@Description	Stage replacement text for the selection and return a diff preview
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Session ID"
//	@Param			body	body		dto.Request[dto.ProposeAttributes]	true	"Replacement"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		409		{object}	jsonapi.Document
//	@Failure		422		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/sessions/{id}/propose [post]
func (r *SessionsRouter) Propose(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.ProposeAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.apply(w, req, attrs.Command())
}

// Confirm handles POST /api/v1/sessions/{id}/confirm.
//
//	@Summary		Confirm change
//	@Description	Write the staged change if the file is unchanged since it was proposed
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		409	{object}	jsonapi.Document
//	@Failure		500	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/sessions/{id}/confirm [post]
func (r *SessionsRouter) Confirm(w http.ResponseWriter, req *http.Request) {
	r.apply(w, req, service.Confirm{})
}

// Cancel handles POST /api/v1/sessions/{id}/cancel.
func (r *SessionsRouter) Cancel(w http.ResponseWriter, req *http.Request) {
	r.apply(w, req, service.Cancel{})
}

// Reset handles POST /api/v1/sessions/{id}/reset.
func (r *SessionsRouter) Reset(w http.ResponseWriter, req *http.Request) {
	r.apply(w, req, service.Reset{})
}

// Close handles POST /api/v1/sessions/{id}/close.
func (r *SessionsRouter) Close(w http.ResponseWriter, req *http.Request) {
	r.apply(w, req, service.Close{})
}

func (r *SessionsRouter) apply(w http.ResponseWriter, req *http.Request, cmd service.Command) {
	id := chi.URLParam(req, "id")
	session, result := r.client.Sessions.Apply(r.context(req, id), id, cmd)
	if result.Err != nil {
		middleware.WriteError(w, req, result.Err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.ResultResource(session, result)))
}

func (r *SessionsRouter) context(req *http.Request, id string) context.Context {
	return log.WithSessionID(req.Context(), id)
}
