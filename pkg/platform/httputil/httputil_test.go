package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "hackportal/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("store failure is 503 without description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("dial tcp"), dErrors.CodeStoreUnavailable, "failed to load project"))

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
		}
		if strings.Contains(w.Body.String(), "dial tcp") {
			t.Fatalf("store cause leaked to client: %s", w.Body.String())
		}
	})

	t.Run("already registered includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeAlreadyRegistered, "already registered for this project"))

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "already_registered" {
			t.Fatalf("expected error code already_registered, got %q", body["error"])
		}
		if body["error_description"] != "already registered for this project" {
			t.Fatalf("expected error_description to be returned")
		}
	})

	t.Run("uncoded error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeUnauthenticated:     http.StatusUnauthorized,
		dErrors.CodeForbidden:           http.StatusForbidden,
		dErrors.CodeOwnerCannotRegister: http.StatusForbidden,
		dErrors.CodeNotFound:            http.StatusNotFound,
		dErrors.CodeInvalidInput:        http.StatusBadRequest,
		dErrors.CodeLastAdminProtected:  http.StatusConflict,
		dErrors.CodeCapacityReached:     http.StatusConflict,
		dErrors.CodeTimeout:             http.StatusGatewayTimeout,
		dErrors.CodeRateLimited:         http.StatusTooManyRequests,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x","owner":"me"}`))
		var v struct {
			Title string `json:"title"`
		}
		err := DecodeJSON(req, &v)
		if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			t.Fatalf("expected invalid_input, got %v", err)
		}
	})

	t.Run("decodes valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x"}`))
		var v struct {
			Title string `json:"title"`
		}
		if err := DecodeJSON(req, &v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Title != "x" {
			t.Fatalf("expected title x, got %q", v.Title)
		}
	})
}
