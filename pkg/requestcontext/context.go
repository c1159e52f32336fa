// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; handlers read them and pass them to services
// explicitly. Services never read the identity from context themselves.
//
//	ctx = requestcontext.WithIdentity(ctx, ident)
//	ident := requestcontext.Identity(ctx) // nil when anonymous
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	id "hackportal/pkg/domain"
)

type (
	identityKey    struct{}
	tokenIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyIdentity    = identityKey{}
	ContextKeyTokenID     = tokenIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Identity returns the resolved identity, or nil for anonymous requests.
func Identity(ctx context.Context) *id.Identity {
	if ident, ok := ctx.Value(ContextKeyIdentity).(*id.Identity); ok {
		return ident
	}
	return nil
}

// WithIdentity injects the resolved identity into the context.
func WithIdentity(ctx context.Context, ident *id.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, ident)
}

// TokenID returns the jti of the access token that authenticated the request.
func TokenID(ctx context.Context) string {
	if jti, ok := ctx.Value(ContextKeyTokenID).(string); ok {
		return jti
	}
	return ""
}

// WithTokenID injects the access token jti into the context.
func WithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, ContextKeyTokenID, jti)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
