// Package service signs users in from an upstream identity provider
// assertion, issues access tokens and resolves the identity behind a token.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"hackportal/internal/audit"
	jwttoken "hackportal/internal/jwt_token"
	"hackportal/internal/platform/metrics"
	"hackportal/internal/user/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/email"
	"hackportal/pkg/platform/sentinel"
	"hackportal/pkg/requestcontext"
)

type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, address string) (*models.User, error)
	CreateIfEmailAvailable(ctx context.Context, user *models.User) error
}

type TokenIssuer interface {
	VerifyAssertion(assertion string) (*jwttoken.AssertionClaims, error)
	GenerateAccessToken(userID id.UserID, expiresIn time.Duration) (string, string, error)
}

// RevocationList remembers signed-out token IDs until they expire.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// SignInRequest carries the identity provider's signed assertion.
type SignInRequest struct {
	Assertion string `json:"assertion"`
}

// SignInResult is returned to the client after a successful sign-in.
type SignInResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        *models.User `json:"-"`
}

// Service handles sign-in, sign-out and identity resolution.
type Service struct {
	users          UserStore
	tokens         TokenIssuer
	revocations    RevocationList
	allowedDomain  string
	tokenTTL       time.Duration
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

// WithAllowedDomain restricts sign-in to one email domain. Empty allows any.
func WithAllowedDomain(domain string) Option {
	return func(s *Service) {
		s.allowedDomain = domain
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

func New(users UserStore, tokens TokenIssuer, revocations RevocationList, opts ...Option) *Service {
	s := &Service{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		tokenTTL:    8 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// SignIn verifies the assertion, enforces the email domain, creates the user
// on first sign-in and issues an access token.
func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (_ *SignInResult, err error) {
	defer func() { s.observeSignIn(err) }()

	if req == nil || strings.TrimSpace(req.Assertion) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "assertion is required")
	}
	claims, err := s.tokens.VerifyAssertion(strings.TrimSpace(req.Assertion))
	if err != nil {
		return nil, err
	}

	address := email.Normalize(claims.Email)
	if !govalidator.StringLength(address, "3", "254") || !govalidator.IsEmail(address) {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "assertion carries no valid email")
	}
	if !email.InDomain(address, s.allowedDomain) {
		s.logger.WarnContext(ctx, "sign-in rejected - email outside allowed domain",
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeForbidden, "email domain is not allowed")
	}

	user, err := s.findOrCreate(ctx, address, claims.Name)
	if err != nil {
		return nil, err
	}

	token, _, err := s.tokens.GenerateAccessToken(user.ID, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}

	s.emit(ctx, audit.Event{Action: audit.ActionUserSignedIn, ActorID: user.ID, UserID: user.ID, Email: user.Email})
	return &SignInResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		User:        user,
	}, nil
}

func (s *Service) findOrCreate(ctx context.Context, address, name string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load user")
	}

	user, err = models.NewUser(id.NewUserID(), address, name, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid user")
	}
	if err := s.users.CreateIfEmailAvailable(ctx, user); err != nil {
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to create user")
		}
		// A concurrent first sign-in created the row.
		existing, err := s.users.FindByEmail(ctx, address)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load user")
		}
		return existing, nil
	}
	s.emit(ctx, audit.Event{Action: audit.ActionUserCreated, ActorID: user.ID, UserID: user.ID, Email: user.Email})
	return user, nil
}

// SignOut revokes the token that authenticated the request.
func (s *Service) SignOut(ctx context.Context, ident *id.Identity, jti string) error {
	if !ident.IsAuthenticated() || jti == "" {
		return dErrors.New(dErrors.CodeUnauthenticated, "sign in required")
	}
	if err := s.revocations.RevokeToken(ctx, jti, s.tokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to revoke token")
	}
	s.emit(ctx, audit.Event{Action: audit.ActionUserSignedOut, ActorID: ident.UserID, UserID: ident.UserID})
	return nil
}

// ResolveIdentity re-reads the user so admin changes apply immediately.
func (s *Service) ResolveIdentity(ctx context.Context, userID id.UserID) (*id.Identity, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "unknown user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load user")
	}
	return user.Identity(), nil
}

// IsTokenRevoked satisfies the auth middleware's revocation check.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revocations.IsRevoked(ctx, jti)
}

func (s *Service) observeSignIn(err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	s.metrics.ObserveSignIn(outcome)
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
