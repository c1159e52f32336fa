package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hackportal/internal/project/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/httputil"
	request "hackportal/pkg/platform/middleware/request"
	"hackportal/pkg/requestcontext"
)

// Service defines the project operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, ident *id.Identity, in *models.ProjectInput) (*models.ProjectView, error)
	Get(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (*models.ProjectView, error)
	List(ctx context.Context, ident *id.Identity) ([]*models.ProjectView, error)
	Update(ctx context.Context, ident *id.Identity, projectID id.ProjectID, in *models.ProjectInput) (*models.ProjectView, error)
	Delete(ctx context.Context, ident *id.Identity, projectID id.ProjectID) error
}

// Handler serves /projects.
type Handler struct {
	projects    Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

// New creates a project Handler. requireAuth guards the mutating routes.
func New(projects Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{projects: projects, logger: logger, requireAuth: requireAuth}
}

// Register mounts the project routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/projects", h.handleList)
	r.Get("/projects/{projectID}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/projects", h.handleCreate)
		r.Put("/projects/{projectID}", h.handleUpdate)
		r.Delete("/projects/{projectID}", h.handleDelete)
	})
}

// ProjectResponse is the JSON shape of a project.
type ProjectResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	MinTeamSize        int       `json:"minTeamSize"`
	MaxTeamSize        int       `json:"maxTeamSize"`
	Environment        string    `json:"environment"`
	AdditionalRequests string    `json:"additionalRequests,omitempty"`
	CreatorID          *string   `json:"creatorId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	RegistrationCount  int       `json:"registrationCount"`
	IsRegistered       bool      `json:"isRegistered"`
}

type ListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
	Total    int                `json:"total"`
}

func toResponse(v *models.ProjectView) *ProjectResponse {
	resp := &ProjectResponse{
		ID:                 v.ID.String(),
		Title:              v.Title,
		Description:        v.Description,
		MinTeamSize:        v.MinTeamSize,
		MaxTeamSize:        v.MaxTeamSize,
		Environment:        string(v.Environment),
		AdditionalRequests: v.AdditionalRequests,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
		RegistrationCount:  v.RegistrationCount,
		IsRegistered:       v.IsRegistered,
	}
	if v.CreatorID != nil {
		creator := v.CreatorID.String()
		resp.CreatorID = &creator
	}
	return resp
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.projects.List(ctx, requestcontext.Identity(ctx))
	if err != nil {
		h.fail(ctx, w, "list projects", err)
		return
	}
	resp := &ListResponse{Projects: make([]*ProjectResponse, len(views)), Total: len(views)}
	for i, v := range views {
		resp.Projects[i] = toResponse(v)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := projectIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.projects.Get(ctx, requestcontext.Identity(ctx), projectID)
	if err != nil {
		h.fail(ctx, w, "get project", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(view))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.ProjectInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.projects.Create(ctx, requestcontext.Identity(ctx), &in)
	if err != nil {
		h.fail(ctx, w, "create project", err)
		return
	}
	w.Header().Set("Location", "/projects/"+view.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, toResponse(view))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := projectIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var in models.ProjectInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.projects.Update(ctx, requestcontext.Identity(ctx), projectID, &in)
	if err != nil {
		h.fail(ctx, w, "update project", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(view))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := projectIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.projects.Delete(ctx, requestcontext.Identity(ctx), projectID); err != nil {
		h.fail(ctx, w, "delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func projectIDParam(r *http.Request) (id.ProjectID, error) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		return id.ProjectID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid project id")
	}
	return projectID, nil
}
