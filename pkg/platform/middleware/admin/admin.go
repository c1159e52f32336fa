package admin

import (
	"log/slog"
	"net/http"

	request "hackportal/pkg/platform/middleware/request"
	"hackportal/pkg/requestcontext"
)

// RequireAdmin rejects requests whose resolved identity is not an admin.
// Services re-check admin rights; this keeps non-admins off admin routes early.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ident := requestcontext.Identity(ctx)
			if !ident.IsAuthenticated() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthenticated","error_description":"sign in required"}`))
				return
			}
			if !ident.Admin() {
				logger.WarnContext(ctx, "admin route denied",
					"user_id", ident.UserID.String(),
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin rights required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
