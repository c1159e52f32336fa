// Package service implements the register/unregister transitions for a
// (project, user) pair and reports the resulting registration status.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hackportal/internal/audit"
	"hackportal/internal/authz"
	"hackportal/internal/platform/metrics"
	projectModels "hackportal/internal/project/models"
	"hackportal/internal/registration/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/platform/tx"
	"hackportal/pkg/requestcontext"
)

type Store interface {
	Find(ctx context.Context, projectID id.ProjectID, userID id.UserID) (*models.Registration, error)
	Insert(ctx context.Context, reg *models.Registration) error
	InsertWithinCapacity(ctx context.Context, reg *models.Registration, limit int) error
	Delete(ctx context.Context, projectID id.ProjectID, userID id.UserID) (bool, error)
	Count(ctx context.Context, projectID id.ProjectID) (int, error)
}

type ProjectReader interface {
	FindByID(ctx context.Context, projectID id.ProjectID) (*projectModels.Project, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	actionRegister   = "register"
	actionUnregister = "unregister"
)

// Service runs registration transitions.
type Service struct {
	registrations   Store
	projects        ProjectReader
	policy          authz.Policy
	enforceCapacity bool
	tx              tx.Runner
	tracer          trace.Tracer
	logger          *slog.Logger
	auditPublisher  AuditPublisher
	metrics         *metrics.Metrics
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

func WithTx(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// WithPolicy sets the creator-exclusion policy.
func WithPolicy(policy authz.Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithCapacityEnforcement caps registrations at the project's MaxTeamSize.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceCapacity = enabled
	}
}

func New(registrations Store, projects ProjectReader, opts ...Option) *Service {
	s := &Service{
		registrations: registrations,
		projects:      projects,
		tracer:        otel.Tracer("hackportal/registration"),
	}
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

// Register moves the caller from NotRegistered to Registered. Losing a race
// for the same pair surfaces as AlreadyRegistered.
func (s *Service) Register(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (_ *models.Status, err error) {
	ctx, span := s.startSpan(ctx, "registration.Register", ident, projectID)
	defer func() { s.finish(span, actionRegister, err) }()

	if !ident.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "sign in required")
	}

	err = s.tx.RunInTx(tx.WithShardKey(ctx, projectID.String()), func(txCtx context.Context) error {
		project, err := s.loadProject(txCtx, projectID)
		if err != nil {
			return err
		}

		_, err = s.registrations.Find(txCtx, projectID, ident.UserID)
		alreadyRegistered := err == nil
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load registration")
		}
		if err := s.policy.CanRegister(ident, project, alreadyRegistered); err != nil {
			return err
		}

		reg := &models.Registration{ProjectID: projectID, UserID: ident.UserID, CreatedAt: requestcontext.Now(txCtx)}
		if s.enforceCapacity {
			err = s.registrations.InsertWithinCapacity(txCtx, reg, project.MaxTeamSize)
		} else {
			err = s.registrations.Insert(txCtx, reg)
		}
		return translateInsertErr(err)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ident, audit.ActionRegistrationCreated, projectID)
	return s.status(ctx, ident, projectID)
}

// Unregister removes the caller's registration. Not being registered is success.
func (s *Service) Unregister(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (_ *models.Status, err error) {
	ctx, span := s.startSpan(ctx, "registration.Unregister", ident, projectID)
	defer func() { s.finish(span, actionUnregister, err) }()

	if err := authz.CanUnregister(ident); err != nil {
		return nil, err
	}

	var removed bool
	err = s.tx.RunInTx(tx.WithShardKey(ctx, projectID.String()), func(txCtx context.Context) error {
		if _, err := s.loadProject(txCtx, projectID); err != nil {
			return err
		}
		var err error
		removed, err = s.registrations.Delete(txCtx, projectID, ident.UserID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to delete registration")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if removed {
		s.emit(ctx, ident, audit.ActionRegistrationRemoved, projectID)
	}
	return s.status(ctx, ident, projectID)
}

// Status reads the current count and the caller's membership.
func (s *Service) Status(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (*models.Status, error) {
	if !ident.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "sign in required")
	}
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.status(ctx, ident, projectID)
}

func (s *Service) status(ctx context.Context, ident *id.Identity, projectID id.ProjectID) (*models.Status, error) {
	count, err := s.registrations.Count(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to count registrations")
	}
	_, err = s.registrations.Find(ctx, projectID, ident.UserID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load registration")
	}
	return &models.Status{ProjectID: projectID, RegistrationCount: count, IsRegistered: err == nil}, nil
}

func (s *Service) loadProject(ctx context.Context, projectID id.ProjectID) (*projectModels.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load project")
	}
	return project, nil
}

func translateInsertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeAlreadyRegistered, "already registered for this project")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeCapacityReached, "project team is full")
	default:
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to save registration")
	}
}

func (s *Service) startSpan(ctx context.Context, name string, ident *id.Identity, projectID id.ProjectID) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("project.id", projectID.String())}
	if ident.IsAuthenticated() {
		attrs = append(attrs, attribute.String("user.id", ident.UserID.String()))
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) finish(span trace.Span, action string, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.SetStatus(codes.Error, outcome)
	}
	span.End()
	if s.metrics != nil {
		s.metrics.ObserveRegistration(action, outcome)
	}
}

func (s *Service) emit(ctx context.Context, ident *id.Identity, action audit.Action, projectID id.ProjectID) {
	if s.auditPublisher == nil {
		return
	}
	requestID := requestcontext.RequestID(ctx)
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:    action,
		ActorID:   ident.UserID,
		UserID:    ident.UserID,
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
