package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/httputil"
	"hackportal/pkg/platform/middleware/metadata"
	request "hackportal/pkg/platform/middleware/request"
)

// Rule limits one method and path per client address.
type Rule struct {
	Method string
	Path   string
	Limit  int
	Window time.Duration
}

// Middleware enforces rules against the client address stored by
// metadata.ClientIP. Limiter failures let the request through.
func Middleware(limiter Limiter, logger *slog.Logger, rules ...Rule) func(http.Handler) http.Handler {
	byRoute := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		byRoute[rule.Method+" "+rule.Path] = rule
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := byRoute[r.Method+" "+r.URL.Path]
			if !ok || limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := metadata.GetClientIP(ctx)
			key := SanitizeKeySegment(rule.Path) + ":" + SanitizeKeySegment(ip)
			result, err := limiter.Allow(ctx, key, rule.Limit, rule.Window)
			if err != nil {
				logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"path", rule.Path,
					"request_id", request.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			if !result.Allowed {
				logger.WarnContext(ctx, "rate limit exceeded",
					"path", rule.Path,
					"client_ip", ip,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter(time.Now())))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
