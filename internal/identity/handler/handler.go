package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackportal/internal/identity/service"
	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/httputil"
	request "hackportal/pkg/platform/middleware/request"
	"hackportal/pkg/requestcontext"
)

// Service defines the sign-in operations exposed over HTTP.
type Service interface {
	SignIn(ctx context.Context, req *service.SignInRequest) (*service.SignInResult, error)
	SignOut(ctx context.Context, ident *id.Identity, jti string) error
}

// Handler serves /auth.
type Handler struct {
	identity    Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

func New(identity Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{identity: identity, logger: logger, requireAuth: requireAuth}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/sign-in", h.handleSignIn)
	r.With(h.requireAuth).Post("/auth/sign-out", h.handleSignOut)
	r.With(h.requireAuth).Get("/auth/me", h.handleMe)
}

// SignInResponse carries the access token and the signed-in user.
type SignInResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req service.SignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid sign-in request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.identity.SignIn(ctx, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "sign-in rejected",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := &SignInResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
	}
	if res.User != nil {
		resp.User = &UserResponse{
			ID:      res.User.ID.String(),
			Email:   res.User.Email,
			Name:    res.User.Name,
			IsAdmin: res.User.IsAdmin,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.identity.SignOut(ctx, requestcontext.Identity(ctx), requestcontext.TokenID(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "failed to sign out",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ident := requestcontext.Identity(r.Context())
	httputil.WriteJSON(w, http.StatusOK, &UserResponse{
		ID:      ident.UserID.String(),
		Email:   ident.Email,
		IsAdmin: ident.IsAdmin,
	})
}
