package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/linedit"
	"github.com/helixml/linedit/infrastructure/api/jsonapi"
	"github.com/helixml/linedit/infrastructure/api/middleware"
	"github.com/helixml/linedit/infrastructure/api/v1/dto"
)

// SymbolsRouter handles symbol lookup endpoints.
type SymbolsRouter struct {
	client     *linedit.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewSymbolsRouter creates a new SymbolsRouter.
func NewSymbolsRouter(client *linedit.Client) *SymbolsRouter {
	return &SymbolsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for symbol endpoints.
func (r *SymbolsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/locate", r.Locate)
	return router
}

// Locate handles POST /api/v1/symbols/locate.
//
//	@Summary		Locate symbol
//	@Description	Find the line range of a named function or class, ready to select or patch
//	@Tags			symbols
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.Request[dto.LocateAttributes]	true	"Symbol"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Router			/symbols/locate [post]
func (r *SymbolsRouter) Locate(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.LocateAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	loc, err := r.client.Symbols.Locate(req.Context(), attrs.Path, attrs.Name)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.SymbolResource(loc)))
}
