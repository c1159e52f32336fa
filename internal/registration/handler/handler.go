package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackportal/internal/registration/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/httputil"
	request "hackportal/pkg/platform/middleware/request"
	"hackportal/pkg/requestcontext"
)

// Service defines the registration transitions exposed over HTTP.
type Service interface {
	Register(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (*models.Status, error)
	Unregister(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (*models.Status, error)
	Status(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (*models.Status, error)
}

// Handler serves /projects/{projectID}/registration. Every route requires a
// signed-in caller and responds with the recomputed Status.
type Handler struct {
	registrations Service
	logger        *slog.Logger
	requireAuth   func(http.Handler) http.Handler
}

func New(registrations Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{registrations: registrations, logger: logger, requireAuth: requireAuth}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/projects/{projectID}/registration", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/", h.transition(h.registrations.Status, http.StatusOK))
		r.Post("/", h.transition(h.registrations.Register, http.StatusCreated))
		r.Delete("/", h.transition(h.registrations.Unregister, http.StatusOK))
	})
}

type transitionFunc func(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (*models.Status, error)

func (h *Handler) transition(fn transitionFunc, okStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid project id"))
			return
		}

		status, err := fn(ctx, requestcontext.Identity(ctx), projectID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeStoreUnavailable) || dErrors.HasCode(err, dErrors.CodeInternal) {
				h.logger.ErrorContext(ctx, "registration transition failed",
					"error", err,
					"method", r.Method,
					"project_id", projectID.String(),
					"request_id", request.GetRequestID(ctx),
				)
			}
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, okStatus, status)
	}
}
