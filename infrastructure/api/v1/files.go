package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/linedit"
	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/infrastructure/api/jsonapi"
	"github.com/helixml/linedit/infrastructure/api/middleware"
	"github.com/helixml/linedit/infrastructure/api/v1/dto"
)

// FilesRouter handles the stateless, fingerprint-guarded file endpoints.
type FilesRouter struct {
	client     *linedit.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewFilesRouter creates a new FilesRouter.
func NewFilesRouter(client *linedit.Client) *FilesRouter {
	return &FilesRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// ReadRoutes returns the read-only endpoints. Reads use POST to carry a
// body but never modify files.
func (r *FilesRouter) ReadRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", r.Read)
	return router
}

// Routes returns the mutating file endpoints.
func (r *FilesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Create)
	router.Post("/patch", r.Patch)
	router.Post("/delete", r.DeleteRanges)
	router.Post("/insert", r.Insert)
	router.Post("/append", r.Append)

	return router
}

// Read handles POST /api/v1/read.
//
//	@Summary		Read ranges
//	@Description	Read line ranges of a file with a fingerprint per range and for the whole file
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.Request[dto.ReadAttributes]	true	"Ranges"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Failure		416		{object}	jsonapi.Document
//	@Router			/read [post]
func (r *FilesRouter) Read(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.ReadAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	read, err := r.client.Editor.ReadRanges(req.Context(), attrs.Path, attrs.LineRanges())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.FileResource(read)))
}

// Patch handles POST /api/v1/files/patch.
//
//	@Summary		Patch ranges
//	@Description	Replace several ranges in one write, checked against file and range fingerprints
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.Request[dto.RangesAttributes]	true	"Patches"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		409		{object}	jsonapi.Document
//	@Failure		416		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/files/patch [post]
func (r *FilesRouter) Patch(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.RangesAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	change, err := r.client.Editor.PatchRanges(req.Context(), attrs.Path, edit.Fingerprint(attrs.FileFingerprint), attrs.Patches())
	r.writeChange(w, req, change, err)
}

// DeleteRanges handles POST /api/v1/files/delete.
func (r *FilesRouter) DeleteRanges(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.RangesAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	change, err := r.client.Editor.DeleteRanges(req.Context(), attrs.Path, edit.Fingerprint(attrs.FileFingerprint), attrs.Patches())
	r.writeChange(w, req, change, err)
}

// Insert handles POST /api/v1/files/insert.
func (r *FilesRouter) Insert(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.InsertAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	position, err := service.ParsePosition(attrs.Position)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	change, err := r.client.Editor.InsertLines(req.Context(), attrs.Path, edit.Fingerprint(attrs.FileFingerprint),
		attrs.Line, position, edit.BlockLines(attrs.Content))
	r.writeChange(w, req, change, err)
}

// Append handles POST /api/v1/files/append.
func (r *FilesRouter) Append(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.AppendAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	change, err := r.client.Editor.AppendLines(req.Context(), attrs.Path, edit.Fingerprint(attrs.FileFingerprint),
		edit.BlockLines(attrs.Content))
	r.writeChange(w, req, change, err)
}

// Create handles POST /api/v1/files.
//
//	@Summary	Create file
//	@Tags		files
//	@Accept		json
//	@Produce	json
//	@Param		body	body		dto.Request[dto.CreateAttributes]	true	"File"
//	@Success	201		{object}	jsonapi.Document
//	@Failure	409		{object}	jsonapi.Document
//	@Security	APIKeyAuth
//	@Router		/files [post]
func (r *FilesRouter) Create(w http.ResponseWriter, req *http.Request) {
	attrs, err := decodeAttributes[dto.CreateAttributes](w, req, false)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	change, err := r.client.Editor.CreateFile(req.Context(), attrs.Path, edit.BlockLines(attrs.Content))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.ChangeResource(change)))
}

func (r *FilesRouter) writeChange(w http.ResponseWriter, req *http.Request, change service.ChangeResult, err error) {
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.ChangeResource(change)))
}
