package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"cadastro/internal/records/models"
	id "cadastro/pkg/domain"
	dErrors "cadastro/pkg/domain-errors"
	"cadastro/pkg/platform/httputil"
	"cadastro/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service-mocks.go -package=mocks Service

// Service defines the document operations exposed over HTTP.
type Service interface {
	Insert(ctx context.Context, ownerID id.UserID, collection string, data map[string]any) (id.DocumentID, error)
	Get(ctx context.Context, ownerID id.UserID, collection string, docID id.DocumentID) (*models.Document, error)
	List(ctx context.Context, ownerID id.UserID, collection string) ([]*models.Document, error)
	Update(ctx context.Context, ownerID id.UserID, collection string, docID id.DocumentID, data map[string]any) (*models.Document, error)
	Delete(ctx context.Context, ownerID id.UserID, collection string, docID id.DocumentID) error
}

// Handler handles the /v1/collections endpoints. Every route requires a
// bearer token; documents are scoped to the caller.
type Handler struct {
	service     Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

func New(service Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, requireAuth: requireAuth}
}

// Register registers the document routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/collections/{collection}/documents", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleInsert)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docs, err := h.service.List(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "collection"))
	if err != nil {
		h.fail(w, r, "list documents failed", err)
		return
	}
	views := lo.Map(docs, func(d *models.Document, _ int) models.DocumentView { return d.View() })
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleInsert(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[models.WriteRequest](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	docID, err := h.service.Insert(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "collection"), req.Data)
	if err != nil {
		h.fail(w, r, "insert document failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.InsertResponse{ID: docID.String()})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	docID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	doc, err := h.service.Get(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "collection"), docID)
	if err != nil {
		h.fail(w, r, "get document failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc.View())
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	docID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.WriteRequest](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	doc, err := h.service.Update(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "collection"), docID, req.Data)
	if err != nil {
		h.fail(w, r, "update document failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc.View())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	docID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := h.service.Delete(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "collection"), docID); err != nil {
		h.fail(w, r, "delete document failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) documentID(w http.ResponseWriter, r *http.Request) (id.DocumentID, bool) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.DocumentID{}, false
	}
	return docID, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err.Error(),
		"collection", chi.URLParam(r, "collection"),
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
