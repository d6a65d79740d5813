package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticValidator struct {
	userID string
	err    error
}

func (v staticValidator) Validate(string) (string, error) {
	return v.userID, v.err
}

func noopHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id when none is supplied", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))
	})

	t.Run("honors a caller-supplied id", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "caller-id")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "caller-id", seen)
	})
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("passes the user id through on success", func(t *testing.T) {
		var gotUserID string
		h := RequireAuth(staticValidator{userID: "user-123"}, logger)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID = GetUserID(r.Context())
			}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "user-123", gotUserID)
	})

	t.Run("missing header short-circuits with 401", func(t *testing.T) {
		var called bool
		h := RequireAuth(staticValidator{userID: "user-123"}, logger)(noopHandler(t, &called))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Authorization header is missing or invalid.")
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		var called bool
		h := RequireAuth(staticValidator{userID: "user-123"}, logger)(noopHandler(t, &called))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("validator rejection is a 401 with the public message", func(t *testing.T) {
		var called bool
		h := RequireAuth(staticValidator{err: errors.New("signature mismatch")}, logger)(noopHandler(t, &called))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid or expired token.")
		assert.NotContains(t, rr.Body.String(), "signature mismatch")
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(slog.New(slog.DiscardHandler))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "An error occurred.")
	assert.NotContains(t, rr.Body.String(), "boom")
}
