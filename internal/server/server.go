package server

import (
	"context"
	"time"

	"github.com/devreg/devreg/handlers"
	"github.com/devreg/devreg/internal/app"
	"github.com/devreg/devreg/internal/config"
	"github.com/devreg/devreg/internal/oidc"
	"github.com/devreg/devreg/internal/record/handler"
	"github.com/devreg/devreg/internal/tokens"
	"github.com/devreg/devreg/pkg/logger"
	"github.com/devreg/devreg/pkg/metrics"
	"github.com/devreg/devreg/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewVerifier picks the bearer token verifier from cfg: OIDC when an issuer
// is set, otherwise HS256 with JWT_SECRET. It returns nil when auth is off.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (middleware.Verifier, error) {
	if cfg.OIDCIssuer != "" && cfg.OIDCClientID != "" {
		return oidc.NewVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
	}
	if cfg.JWTSecret != "" {
		return tokens.NewHMACVerifier(cfg.JWTSecret), nil
	}
	return nil, nil
}

// New builds the HTTP engine for the record service. reg receives the
// service collectors; /metrics serves whatever reg gathers.
func New(cfg *config.Config, a *app.App, ver middleware.Verifier, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && a.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(a.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win, nil))
			logger.Infof("rate limiter: redis (%.1f rps, burst %d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter: memory (%.1f rps, burst %d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	checks := map[string]handlers.Check{"mongo": a.PingMongo}
	if a.Redis != nil {
		checks["redis"] = a.PingRedis
	}
	handlers.RegisterHealth(r, time.Now(), checks)
	handlers.RegisterSwagger(r)

	var guard gin.HandlerFunc
	if ver != nil {
		guard = middleware.AuthMiddleware(ver)
	} else {
		logger.Warnf("write endpoints are not protected: set JWT_SECRET or OIDC_ISSUER/OIDC_CLIENT_ID")
	}
	handler.RegisterRecordRoutes(r, a.Service, guard)

	metrics.RegisterCollectors(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return r
}
