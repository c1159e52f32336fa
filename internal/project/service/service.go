// Package service implements project submission, browsing, editing and
// deletion on top of the authz rules.
package service

import (
	"context"
	"errors"
	"log/slog"

	"hackportal/internal/audit"
	"hackportal/internal/authz"
	"hackportal/internal/platform/metrics"
	"hackportal/internal/project/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/platform/tx"
	"hackportal/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, projectID id.ProjectID) error
	List(ctx context.Context) ([]*models.Project, error)
}

// RegistrationReader supplies the per-caller registration view and removes
// registrations of deleted projects.
type RegistrationReader interface {
	Count(ctx context.Context, projectID id.ProjectID) (int, error)
	CountByProjects(ctx context.Context, projectIDs []id.ProjectID) (map[id.ProjectID]int, error)
	ProjectsForUser(ctx context.Context, userID id.UserID) (map[id.ProjectID]bool, error)
	DeleteByProject(ctx context.Context, projectID id.ProjectID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages projects.
type Service struct {
	projects       Store
	registrations  RegistrationReader
	tx             tx.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx sets the transaction runner. Defaults to an in-memory sharded lock.
func WithTx(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func New(projects Store, registrations RegistrationReader, opts ...Option) *Service {
	s := &Service{projects: projects, registrations: registrations}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewShardedLock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create stores a new project owned by the caller.
func (s *Service) Create(ctx context.Context, ident *id.Identity, in *models.ProjectInput) (*models.ProjectView, error) {
	if err := authz.CanCreateProject(ident); err != nil {
		return nil, err
	}
	in.Normalize()
	creator := ident.UserID
	project, err := models.NewProject(id.NewProjectID(), in, &creator, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, wrapStoreErr(err, "failed to create project")
	}

	if s.metrics != nil {
		s.metrics.IncrementProjectsCreated()
	}
	s.emit(ctx, ident, audit.ActionProjectCreated, project.ID)
	return &models.ProjectView{Project: project}, nil
}

// Get returns one project with its registration count and the caller's membership.
func (s *Service) Get(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (*models.ProjectView, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load project")
	}
	count, err := s.registrations.Count(ctx, projectID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to count registrations")
	}
	view := &models.ProjectView{Project: project, RegistrationCount: count}
	if ident.IsAuthenticated() {
		mine, err := s.registrations.ProjectsForUser(ctx, ident.UserID)
		if err != nil {
			return nil, wrapStoreErr(err, "failed to load registrations")
		}
		view.IsRegistered = mine[projectID]
	}
	return view, nil
}

// List returns all projects newest first. Anonymous callers see counts only.
func (s *Service) List(ctx context.Context, ident *id.Identity) ([]*models.ProjectView, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to list projects")
	}
	ids := make([]id.ProjectID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	counts, err := s.registrations.CountByProjects(ctx, ids)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to count registrations")
	}
	var mine map[id.ProjectID]bool
	if ident.IsAuthenticated() {
		if mine, err = s.registrations.ProjectsForUser(ctx, ident.UserID); err != nil {
			return nil, wrapStoreErr(err, "failed to load registrations")
		}
	}

	views := make([]*models.ProjectView, len(projects))
	for i, p := range projects {
		views[i] = &models.ProjectView{Project: p, RegistrationCount: counts[p.ID], IsRegistered: mine[p.ID]}
	}
	return views, nil
}

// Update replaces the editable fields. Invalid input leaves the stored project untouched.
func (s *Service) Update(ctx context.Context, ident *id.Identity, projectID id.ProjectID, in *models.ProjectInput) (*models.ProjectView, error) {
	if !ident.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "sign in required")
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated *models.Project
	err := s.tx.RunInTx(tx.WithShardKey(ctx, projectID.String()), func(txCtx context.Context) error {
		project, err := s.projects.FindByID(txCtx, projectID)
		if err != nil {
			return wrapStoreErr(err, "failed to load project")
		}
		if err := authz.CanEditProject(ident, project); err != nil {
			return err
		}
		project.Apply(in, requestcontext.Now(txCtx))
		if err := s.projects.Update(txCtx, project); err != nil {
			return wrapStoreErr(err, "failed to update project")
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ident, audit.ActionProjectUpdated, projectID)
	return s.Get(ctx, ident, updated.ID)
}

// Delete removes the project and its registrations.
func (s *Service) Delete(ctx context.Context, ident *id.Identity, projectID id.ProjectID) error {
	if !ident.IsAuthenticated() {
		return dErrors.New(dErrors.CodeUnauthenticated, "sign in required")
	}
	err := s.tx.RunInTx(tx.WithShardKey(ctx, projectID.String()), func(txCtx context.Context) error {
		project, err := s.projects.FindByID(txCtx, projectID)
		if err != nil {
			return wrapStoreErr(err, "failed to load project")
		}
		if err := authz.CanDeleteProject(ident, project); err != nil {
			return err
		}
		if err := s.registrations.DeleteByProject(txCtx, projectID); err != nil {
			return wrapStoreErr(err, "failed to delete registrations")
		}
		if err := s.projects.Delete(txCtx, projectID); err != nil {
			return wrapStoreErr(err, "failed to delete project")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementProjectsDeleted()
	}
	s.emit(ctx, ident, audit.ActionProjectDeleted, projectID)
	return nil
}

func (s *Service) emit(ctx context.Context, ident *id.Identity, action audit.Action, projectID id.ProjectID) {
	if s.auditPublisher == nil {
		return
	}
	requestID := requestcontext.RequestID(ctx)
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:    action,
		ActorID:   ident.UserID,
		ProjectID: projectID,
		RequestID: requestID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", string(action),
			"request_id", requestID,
		)
	}
}

// wrapStoreErr passes domain errors through and maps store failures.
func wrapStoreErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, msg)
	}
}
