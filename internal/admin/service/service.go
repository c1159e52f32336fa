// Package service implements admin user management, the last-admin guard,
// registration analytics and first-admin setup.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"hackportal/internal/admin/models"
	"hackportal/internal/audit"
	"hackportal/internal/authz"
	"hackportal/internal/platform/metrics"
	projectModels "hackportal/internal/project/models"
	regModels "hackportal/internal/registration/models"
	userModels "hackportal/internal/user/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/email"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/requestcontext"
)

type UserStore interface {
	FindByEmail(ctx context.Context, address string) (*userModels.User, error)
	List(ctx context.Context) ([]*userModels.User, error)
	UpdateAdmin(ctx context.Context, userID id.UserID, isAdmin bool, guard userModels.AdminGuard) (*userModels.User, error)
}

type ProjectLister interface {
	List(ctx context.Context) ([]*projectModels.Project, error)
}

type RegistrationLister interface {
	ListByProject(ctx context.Context, projectID id.ProjectID) ([]*regModels.Registration, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const analyticsConcurrency = 8

// Service runs admin operations.
type Service struct {
	users          UserStore
	projects       ProjectLister
	registrations  RegistrationLister
	setupKeyHash   []byte
	tracer         trace.Tracer
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

// WithSetupKeyHash enables SetupAdmin with a bcrypt hash of the setup key.
func WithSetupKeyHash(hash string) Option {
	return func(s *Service) {
		s.setupKeyHash = []byte(hash)
	}
}

func New(users UserStore, projects ProjectLister, registrations RegistrationLister, opts ...Option) *Service {
	s := &Service{
		users:         users,
		projects:      projects,
		registrations: registrations,
		tracer:        otel.Tracer("hackportal/admin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ListUsers returns every user ordered by email.
func (s *Service) ListUsers(ctx context.Context, actor *id.Identity) ([]*models.UserSummary, error) {
	if err := authz.CanManageUsers(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list users")
	}
	out := make([]*models.UserSummary, len(users))
	for i, u := range users {
		out[i] = summarize(u)
	}
	return out, nil
}

// SetAdmin changes targetID's admin flag. The store evaluates the guard
// while holding its locks, so the admin count it sees is current.
func (s *Service) SetAdmin(ctx context.Context, actor *id.Identity, targetID id.UserID, isAdmin bool) (_ *models.UserSummary, err error) {
	ctx, span := s.tracer.Start(ctx, "admin.SetAdmin", trace.WithAttributes(
		attribute.String("target.id", targetID.String()),
		attribute.Bool("target.is_admin", isAdmin),
	))
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = string(dErrors.CodeOf(err))
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveAdminChange(outcome)
		}
	}()

	if err := authz.CanManageUsers(actor); err != nil {
		return nil, err
	}

	var wasAdmin bool
	updated, err := s.users.UpdateAdmin(ctx, targetID, isAdmin, func(target *userModels.User, adminCount int) error {
		wasAdmin = target.IsAdmin
		return authz.CanSetAdmin(actor, target, isAdmin, adminCount)
	})
	if err != nil {
		return nil, translateUserErr(err, "failed to update admin flag")
	}

	if wasAdmin != updated.IsAdmin {
		action := audit.ActionAdminRevoked
		if updated.IsAdmin {
			action = audit.ActionAdminGranted
		}
		s.emit(ctx, audit.Event{Action: action, ActorID: actor.UserID, UserID: updated.ID, Email: updated.Email})
	}
	return summarize(updated), nil
}

// RegistrationAnalytics aggregates registrations per project for the dashboard.
func (s *Service) RegistrationAnalytics(ctx context.Context, actor *id.Identity) (*models.RegistrationAnalytics, error) {
	if err := authz.CanViewAnalytics(actor); err != nil {
		return nil, err
	}

	var (
		projects []*projectModels.Project
		users    []*userModels.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.projects.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.users.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load analytics")
	}

	byID := make(map[id.UserID]*models.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = summarize(u)
	}

	rows := make([]*models.ProjectRegistrations, len(projects))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(analyticsConcurrency)
	for i, p := range projects {
		g.Go(func() error {
			regs, err := s.registrations.ListByProject(gctx, p.ID)
			if err != nil {
				return err
			}
			row := &models.ProjectRegistrations{
				ProjectID:         p.ID,
				Title:             p.Title,
				MaxTeamSize:       p.MaxTeamSize,
				RegistrationCount: len(regs),
				Registrants:       make([]*models.UserSummary, 0, len(regs)),
			}
			if p.CreatorID != nil {
				row.Creator = byID[*p.CreatorID]
			}
			for _, reg := range regs {
				if u, ok := byID[reg.UserID]; ok {
					row.Registrants = append(row.Registrants, u)
				}
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load registrations")
	}

	result := &models.RegistrationAnalytics{
		Projects:      rows,
		TotalProjects: len(projects),
		TotalUsers:    len(users),
	}
	registered := make(map[id.UserID]struct{})
	for _, row := range rows {
		result.TotalRegistrations += row.RegistrationCount
		for _, u := range row.Registrants {
			registered[u.ID] = struct{}{}
		}
	}
	result.RegisteredUsers = len(registered)
	return result, nil
}

// SetupAdmin promotes an existing user when key matches the configured
// setup key hash. Promoting an admin again is a no-op.
func (s *Service) SetupAdmin(ctx context.Context, address, key string) (*models.UserSummary, error) {
	if len(s.setupKeyHash) == 0 {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin setup is disabled")
	}
	if key == "" || bcrypt.CompareHashAndPassword(s.setupKeyHash, []byte(key)) != nil {
		s.logger.WarnContext(ctx, "admin setup rejected - invalid key",
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid or missing setup key")
	}
	address = email.Normalize(address)
	if address == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	return s.promote(ctx, address)
}

// EnsureBootstrapAdmins promotes the listed users if they exist. Missing
// users are skipped; they can be promoted after their first sign-in.
func (s *Service) EnsureBootstrapAdmins(ctx context.Context, addresses []string) error {
	for _, address := range addresses {
		address = email.Normalize(address)
		if address == "" {
			continue
		}
		if _, err := s.promote(ctx, address); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				s.logger.InfoContext(ctx, "bootstrap admin has not signed in yet", "email", address)
				continue
			}
			return err
		}
		s.logger.InfoContext(ctx, "bootstrap admin ensured", "email", address)
	}
	return nil
}

func (s *Service) promote(ctx context.Context, address string) (*models.UserSummary, error) {
	user, err := s.users.FindByEmail(ctx, address)
	if err != nil {
		return nil, translateUserErr(err, "failed to load user")
	}
	if user.IsAdmin {
		return summarize(user), nil
	}
	updated, err := s.users.UpdateAdmin(ctx, user.ID, true, nil)
	if err != nil {
		return nil, translateUserErr(err, "failed to promote user")
	}
	s.emit(ctx, audit.Event{Action: audit.ActionAdminGranted, ActorID: updated.ID, UserID: updated.ID, Email: updated.Email})
	return summarize(updated), nil
}

func translateUserErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, msg)
	}
}

func summarize(u *userModels.User) *models.UserSummary {
	return &models.UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		Name:      strings.TrimSpace(u.Name),
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", string(event.Action),
			"request_id", event.RequestID,
		)
	}
}
