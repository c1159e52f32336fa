package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) { return v.claims, v.err }

type stubRevocations struct {
	revoked bool
	err     error
}

func (r stubRevocations) IsTokenRevoked(context.Context, string) (bool, error) { return r.revoked, r.err }

type stubResolver struct {
	ident *id.Identity
	err   error
}

func (r stubResolver) ResolveIdentity(context.Context, id.UserID) (*id.Identity, error) {
	return r.ident, r.err
}

func TestAuthenticate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := id.NewUserID()
	claims := &JWTClaims{UserID: userID.String(), JTI: "jti-1"}
	resolved := &id.Identity{UserID: userID, Email: "m@final.co.il", IsAdmin: true}

	tests := []struct {
		name        string
		header      string
		validator   stubValidator
		revocations stubRevocations
		resolver    stubResolver
		wantStatus  int
		wantCode    string
		wantIdent   bool
	}{
		{name: "no header is anonymous", wantStatus: http.StatusOK},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer x", validator: stubValidator{err: errors.New("expired")}, wantStatus: http.StatusUnauthorized},
		{name: "revoked", header: "Bearer x", validator: stubValidator{claims: claims}, revocations: stubRevocations{revoked: true}, wantStatus: http.StatusUnauthorized},
		{name: "revocation store down", header: "Bearer x", validator: stubValidator{claims: claims}, revocations: stubRevocations{err: errors.New("down")}, wantStatus: http.StatusServiceUnavailable},
		{name: "unknown user", header: "Bearer x", validator: stubValidator{claims: claims}, resolver: stubResolver{err: errors.New("gone")}, wantStatus: http.StatusUnauthorized},
		{name: "user store down", header: "Bearer x", validator: stubValidator{claims: claims}, resolver: stubResolver{err: fmt.Errorf("resolve: %w", dErrors.New(dErrors.CodeStoreUnavailable, "db down"))}, wantStatus: http.StatusServiceUnavailable, wantCode: "store_unavailable"},
		{name: "bad subject", header: "Bearer x", validator: stubValidator{claims: &JWTClaims{UserID: "nope", JTI: "j"}}, wantStatus: http.StatusUnauthorized},
		{name: "resolved", header: "Bearer x", validator: stubValidator{claims: claims}, resolver: stubResolver{ident: resolved}, wantStatus: http.StatusOK, wantIdent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *id.Identity
			var seenJTI string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestcontext.Identity(r.Context())
				seenJTI = requestcontext.TokenID(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := Authenticate(tt.validator, tt.revocations, tt.resolver, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rr.Body.String(), `"error":"`+tt.wantCode+`"`)
			}
			if tt.wantIdent {
				assert.Equal(t, resolved, seen)
				assert.Equal(t, "jti-1", seenJTI)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequireAuth(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"unauthenticated","error_description":"Missing or invalid Authorization header"}`, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(requestcontext.WithIdentity(req.Context(), &id.Identity{UserID: id.NewUserID()}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
