package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devreg/devreg/internal/app"
	"github.com/devreg/devreg/internal/config"
	"github.com/devreg/devreg/internal/record/repository"
	"github.com/devreg/devreg/internal/record/service"
	"github.com/devreg/devreg/internal/tokens"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const secret = "server-test-secret-32-bytes-xxxxxxx"

func newEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a := &app.App{Service: service.New(repository.NewMemoryRepo())}
	ver, err := NewVerifier(context.Background(), cfg.Auth)
	require.NoError(t, err)
	return New(cfg, a, ver, prometheus.NewRegistry())
}

func serve(g *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestServerRoutes(t *testing.T) {
	g := newEngine(t, &config.Config{})

	require.Equal(t, http.StatusOK, serve(g, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	require.Equal(t, http.StatusOK, serve(g, httptest.NewRequest(http.MethodGet, "/ready", nil)).Code)
	require.Equal(t, http.StatusOK, serve(g, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)).Code)

	// auth off: writes are open
	require.Equal(t, http.StatusCreated, serve(g, httptest.NewRequest(http.MethodPost, "/api/records", nil)).Code)
	require.Equal(t, http.StatusOK, serve(g, httptest.NewRequest(http.MethodGet, "/api/records/count", nil)).Code)

	w := serve(g, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "devreg_db_operations_total")
}

func TestServerWriteAuth(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = secret
	g := newEngine(t, cfg)

	require.Equal(t, http.StatusUnauthorized, serve(g, httptest.NewRequest(http.MethodPost, "/api/records", nil)).Code)

	tok, err := tokens.GenerateAccessToken(secret, "writer", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/records", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusCreated, serve(g, req).Code)
}

func TestServerRateLimit(t *testing.T) {
	cfg := &config.Config{}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.01, Burst: 1}
	g := newEngine(t, cfg)

	require.Equal(t, http.StatusOK, serve(g, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(g, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestNewVerifierOff(t *testing.T) {
	ver, err := NewVerifier(context.Background(), config.AuthConfig{})
	require.NoError(t, err)
	require.Nil(t, ver)
}
