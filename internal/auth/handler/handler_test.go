package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"shopfloor/internal/auth"
	"shopfloor/internal/auth/revocation"
	"shopfloor/internal/jwttoken"
	authmw "shopfloor/pkg/platform/middleware/auth"
)

// newRouter wires the public and protected auth routes the way the real
// router does, with an extra protected probe endpoint.
func newRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := jwttoken.NewJWTService("test-signing-key", "shopfloor", "shopfloor-api")
	revoked := revocation.NewMemoryList()
	service := auth.NewService(auth.NewInMemory(), issuer, revoked, time.Hour, logger)
	h := New(service, logger)

	router := chi.NewRouter()
	h.RegisterPublic(router)
	router.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(issuer, revoked, logger))
		h.RegisterProtected(r)
		r.Get("/probe", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return router
}

func do(t *testing.T, router chi.Router, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signup(t *testing.T, router chi.Router) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Arun K",
		"email":    "arun@example.com",
		"password": "s3cret-pass",
		"role":     "production_scheduler",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func login(t *testing.T, router chi.Router) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "arun@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "Bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestSignupLoginFlow(t *testing.T) {
	router := newRouter(t)
	signup(t, router)
	token := login(t, router)

	// The password hash must never appear in responses.
	rec := do(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "arun@example.com",
		"password": "s3cret-pass",
	})
	require.NotContains(t, rec.Body.String(), "password")

	rec = do(t, router, http.MethodGet, "/probe", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	router := newRouter(t)
	signup(t, router)

	rec := do(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "arun@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodGet, "/probe", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/probe", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	router := newRouter(t)
	signup(t, router)
	token := login(t, router)

	rec := do(t, router, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The revoked token no longer grants access.
	rec = do(t, router, http.MethodGet, "/probe", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A fresh login issues a new working token.
	fresh := login(t, router)
	rec = do(t, router, http.MethodGet, "/probe", fresh, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
