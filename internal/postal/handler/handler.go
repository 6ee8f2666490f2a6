package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cadastro/internal/postal"
	dErrors "cadastro/pkg/domain-errors"
	"cadastro/pkg/platform/httputil"
	"cadastro/pkg/requestcontext"
)

// retryAfter is the Retry-After hint, in seconds, sent with retryable failures.
const retryAfter = "5"

// Handler serves GET /v1/cep/{cep} with ViaCEP-compatible bodies, so the
// front-end can point the same client at either.
type Handler struct {
	lookup postal.Lookuper
	logger *slog.Logger
}

func New(lookup postal.Lookuper, logger *slog.Logger) *Handler {
	return &Handler{lookup: lookup, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/cep/{cep}", h.handleLookup)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, err := h.lookup.Lookup(ctx, chi.URLParam(r, "cep"))
	if err == nil {
		httputil.WriteJSON(w, http.StatusOK, addr)
		return
	}
	if errors.Is(err, postal.ErrNotFound) {
		httputil.WriteJSON(w, http.StatusOK, postal.NotFoundResponse{Erro: true})
		return
	}

	h.logger.WarnContext(ctx, "cep lookup failed",
		"error", err.Error(),
		"category", string(postal.GetCategory(err)),
		"request_id", requestcontext.RequestID(ctx),
	)
	if postal.IsRetryable(err) {
		w.Header().Set("Retry-After", retryAfter)
	}
	httputil.WriteError(w, toDomainError(err))
}

func toDomainError(err error) error {
	switch postal.GetCategory(err) {
	case postal.CategoryInvalidInput:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "cep must have 8 digits")
	case postal.CategoryTimeout, postal.CategoryOutage, postal.CategoryRateLimited, postal.CategoryBadData:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "cep service unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "cep lookup failed")
	}
}
