package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackportal/internal/admin/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/httputil"
	request "hackportal/pkg/platform/middleware/request"
	"hackportal/pkg/requestcontext"
)

// Service defines the admin operations exposed over HTTP.
type Service interface {
	ListUsers(ctx context.Context, actor *id.Identity) ([]*models.UserSummary, error)
	SetAdmin(ctx context.Context, actor *id.Identity, targetID id.UserID, isAdmin bool) (*models.UserSummary, error)
	RegistrationAnalytics(ctx context.Context, actor *id.Identity) (*models.RegistrationAnalytics, error)
	SetupAdmin(ctx context.Context, address, key string) (*models.UserSummary, error)
}

// Handler serves /admin and /setup/admin.
type Handler struct {
	admin        Service
	logger       *slog.Logger
	requireAdmin func(http.Handler) http.Handler
}

func New(admin Service, logger *slog.Logger, requireAdmin func(http.Handler) http.Handler) *Handler {
	return &Handler{admin: admin, logger: logger, requireAdmin: requireAdmin}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/setup/admin", h.handleSetupAdmin)
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/users", h.handleListUsers)
		r.Patch("/users/{userID}", h.handleSetAdmin)
		r.Get("/analytics/registrations", h.handleAnalytics)
	})
}

type UsersResponse struct {
	Users []*models.UserSummary `json:"users"`
	Total int                   `json:"total"`
}

// SetAdminRequest changes a user's admin flag. IsAdmin is required.
type SetAdminRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

type SetupAdminRequest struct {
	Email string `json:"email"`
	Key   string `json:"key"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.admin.ListUsers(ctx, requestcontext.Identity(ctx))
	if err != nil {
		h.fail(ctx, w, "list users", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &UsersResponse{Users: users, Total: len(users)})
}

func (h *Handler) handleSetAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}
	var req SetAdminRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.IsAdmin == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "isAdmin is required"))
		return
	}

	user, err := h.admin.SetAdmin(ctx, requestcontext.Identity(ctx), targetID, *req.IsAdmin)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeLastAdminProtected) {
			h.logger.WarnContext(ctx, "admin demotion blocked - last admin",
				"user_id", targetID.String(),
				"request_id", request.GetRequestID(ctx),
			)
		}
		h.fail(ctx, w, "update admin flag", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.admin.RegistrationAnalytics(ctx, requestcontext.Identity(ctx))
	if err != nil {
		h.fail(ctx, w, "load analytics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSetupAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req SetupAdminRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.admin.SetupAdmin(ctx, req.Email, req.Key)
	if err != nil {
		h.fail(ctx, w, "set up admin", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeStoreUnavailable) || dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
