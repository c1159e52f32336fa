package testutil

import (
	"context"
	"net/http"

	id "hackportal/pkg/domain"
	"hackportal/pkg/requestcontext"
)

// WithIdentity attaches an identity to the request the way the auth
// middleware would after resolving a bearer token.
func WithIdentity(req *http.Request, ident *id.Identity) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), ident))
}

// WithTokenID attaches the access token jti to the request context.
func WithTokenID(req *http.Request, jti string) *http.Request {
	return req.WithContext(requestcontext.WithTokenID(req.Context(), jti))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}

// Member returns a signed-in non-admin identity.
func Member(email string) *id.Identity {
	return &id.Identity{UserID: id.NewUserID(), Email: email}
}

// Admin returns a signed-in admin identity.
func Admin(email string) *id.Identity {
	return &id.Identity{UserID: id.NewUserID(), Email: email, IsAdmin: true}
}
