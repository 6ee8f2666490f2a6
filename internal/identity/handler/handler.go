package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cadastro/internal/identity/models"
	id "cadastro/pkg/domain"
	dErrors "cadastro/pkg/domain-errors"
	"cadastro/pkg/platform/httputil"
	"cadastro/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service-mocks.go -package=mocks Service

// Service defines the identity operations exposed over HTTP.
type Service interface {
	SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResult, error)
	SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResult, error)
	SignOut(ctx context.Context, userID id.UserID, sessionID id.SessionID) error
	Me(ctx context.Context, userID id.UserID) (*models.User, error)
}

// Handler handles the /v1/auth endpoints.
type Handler struct {
	service     Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

// New creates a new identity Handler. requireAuth guards sign-out and me.
func New(service Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, requireAuth: requireAuth}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignUp)
		r.Post("/signin", h.handleSignIn)
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/signout", h.handleSignOut)
			r.Get("/me", h.handleMe)
		})
	})
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[models.SignUpRequest](w, r)
	if !ok {
		return
	}
	res, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		h.logFailure(r.Context(), "sign-up failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[models.SignInRequest](w, r)
	if !ok {
		return
	}
	res, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		h.logFailure(r.Context(), "sign-in failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.SignOut(ctx, requestcontext.UserID(ctx), requestcontext.SessionID(ctx)); err != nil {
		h.logFailure(ctx, "sign-out failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.service.Me(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logFailure(ctx, "me lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.View())
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
