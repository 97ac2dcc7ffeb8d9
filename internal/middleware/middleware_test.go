package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidebank/corebank/internal/auth"
	"github.com/tidebank/corebank/internal/logging"
	"github.com/tidebank/corebank/internal/middleware"
)

func TestTracingAssignsRequestID(t *testing.T) {
	var seen string
	h := middleware.Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.TraceIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestTracingHonorsCallerRequestID(t *testing.T) {
	h := middleware.Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "caller-id", rec.Header().Get("X-Request-ID"))
}

func TestAuthTagsContextLoggerWithAccount(t *testing.T) {
	token, err := auth.GenerateToken("123456", false, "secret", time.Hour)
	require.NoError(t, err)

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	h := middleware.Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("handled")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), base))
	req.Header.Set("Authorization", "Bearer "+token)

	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "account=123456",
		"log lines emitted past auth carry the authenticated account")
}

func TestAuthRejectsMissingToken(t *testing.T) {
	h := middleware.Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("admin claim passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.ContextWithClaims(req.Context(),
			&auth.Claims{AccountNumber: "123456", IsAdmin: true}))

		rec := httptest.NewRecorder()
		middleware.RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("non-admin claim is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.ContextWithClaims(req.Context(),
			&auth.Claims{AccountNumber: "123456"}))

		rec := httptest.NewRecorder()
		middleware.RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
