// Package httptransport assembles the HTTP surface: the shared middleware
// chain, per-domain handlers and operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminHandler "hackportal/internal/admin/handler"
	identityHandler "hackportal/internal/identity/handler"
	"hackportal/internal/platform/metrics"
	projectHandler "hackportal/internal/project/handler"
	"hackportal/internal/ratelimit"
	registrationHandler "hackportal/internal/registration/handler"
	"hackportal/pkg/platform/httputil"
	adminmw "hackportal/pkg/platform/middleware/admin"
	"hackportal/pkg/platform/middleware/auth"
	"hackportal/pkg/platform/middleware/metadata"
	request "hackportal/pkg/platform/middleware/request"
	"hackportal/pkg/platform/middleware/requesttime"
)

// IdentityService signs users in and resolves bearer tokens to identities.
type IdentityService interface {
	identityHandler.Service
	auth.TokenRevocationChecker
	auth.IdentityResolver
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router wires together. A nil RateLimiter
// disables throttling. TrustProxyHeaders takes the client address from
// X-Forwarded-For and must only be set behind a proxy that rewrites it.
type Deps struct {
	Logger            *slog.Logger
	Metrics           *metrics.Metrics
	Gatherer          prometheus.Gatherer
	Tokens            auth.JWTValidator
	Identity          IdentityService
	Projects          projectHandler.Service
	Registrations     registrationHandler.Service
	Admin             adminHandler.Service
	HealthChecks      map[string]HealthCheck
	RateLimiter       ratelimit.Limiter
	RateLimits        []ratelimit.Rule
	TrustProxyHeaders bool
}

const healthTimeout = 2 * time.Second

// NewRouter builds the application handler.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientIP(d.TrustProxyHeaders))
	r.Use(request.Logger(d.Logger))
	r.Use(ratelimit.Middleware(d.RateLimiter, d.Logger, d.RateLimits...))
	r.Use(requesttime.Middleware)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", healthHandler(d.HealthChecks, d.Logger))

	requireAuth := auth.RequireAuth(d.Logger)
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(d.Tokens, d.Identity, d.Identity, d.Logger))
		identityHandler.New(d.Identity, d.Logger, requireAuth).Register(r)
		projectHandler.New(d.Projects, d.Logger, requireAuth).Register(r)
		registrationHandler.New(d.Registrations, d.Logger, requireAuth).Register(r)
		adminHandler.New(d.Admin, d.Logger, adminmw.RequireAdmin(d.Logger)).Register(r)
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"check", name,
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
