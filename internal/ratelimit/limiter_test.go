package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackportal/pkg/platform/middleware/metadata"
)

func TestInMemorySlidingWindow(t *testing.T) {
	l := NewInMemory()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }
	ctx := context.Background()

	for i := range 3 {
		res, err := l.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, now.Add(time.Minute), res.ResetAt)
	assert.Equal(t, 60, res.RetryAfter(now))

	res, err = l.Allow(ctx, "other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "keys are independent")

	now = now.Add(time.Minute + time.Second)
	res, err = l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "window slid past the old requests")
}

func TestInMemoryNonPositiveLimit(t *testing.T) {
	l := NewInMemory()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }

	for _, limit := range []int{0, -3} {
		res, err := l.Allow(context.Background(), "k", limit, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, now.Add(time.Minute), res.ResetAt)
	}
	assert.Zero(t, l.Len(), "rejected requests leave no bucket behind")
}

func TestInMemoryEvictsElapsedWindows(t *testing.T) {
	l := NewInMemory()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_, err := l.Allow(ctx, key, 5, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 3, l.Len())

	now = now.Add(2 * time.Minute)
	_, err := l.Allow(ctx, "d", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len(), "only the live key remains")
}

func TestSanitizeKeySegment(t *testing.T) {
	assert.Equal(t, "_auth_sign-in", SanitizeKeySegment(":auth_sign-in"))
	assert.Equal(t, "__1", SanitizeKeySegment("::1"))
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("redis down")
}

func TestMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	rule := Rule{Method: http.MethodPost, Path: "/auth/sign-in", Limit: 2, Window: time.Minute}

	send := func(h http.Handler, method, path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req = req.WithContext(metadata.WithClientIP(req.Context(), ip))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("limits matching route per address", func(t *testing.T) {
		h := Middleware(NewInMemory(), logger, rule)(ok)

		assert.Equal(t, http.StatusOK, send(h, http.MethodPost, "/auth/sign-in", "10.0.0.1").Code)
		second := send(h, http.MethodPost, "/auth/sign-in", "10.0.0.1")
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

		blocked := send(h, http.MethodPost, "/auth/sign-in", "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
		assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
		assert.Contains(t, blocked.Body.String(), "rate_limited")

		assert.Equal(t, http.StatusOK, send(h, http.MethodPost, "/auth/sign-in", "10.0.0.2").Code)
		assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/projects", "10.0.0.1").Code)
	})

	t.Run("rotating forwarded header from one peer shares a bucket", func(t *testing.T) {
		limiter := NewInMemory()
		setup := Rule{Method: http.MethodPost, Path: "/setup/admin", Limit: 5, Window: time.Hour}
		h := metadata.ClientIP(false)(Middleware(limiter, logger, setup)(ok))

		allowed := 0
		for i := range 50 {
			req := httptest.NewRequest(http.MethodPost, "/setup/admin", nil)
			req.RemoteAddr = "198.51.100.4:40000"
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code == http.StatusOK {
				allowed++
			}
		}
		assert.Equal(t, 5, allowed)
		assert.Equal(t, 1, limiter.Len())
	})

	t.Run("fails open", func(t *testing.T) {
		h := Middleware(failingLimiter{}, logger, rule)(ok)
		assert.Equal(t, http.StatusOK, send(h, http.MethodPost, "/auth/sign-in", "10.0.0.1").Code)
	})

	t.Run("nil limiter disables", func(t *testing.T) {
		h := Middleware(nil, logger, rule)(ok)
		for range 5 {
			assert.Equal(t, http.StatusOK, send(h, http.MethodPost, "/auth/sign-in", "10.0.0.1").Code)
		}
	})
}
