package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devreg/devreg/internal/app"
	"github.com/devreg/devreg/internal/config"
	"github.com/devreg/devreg/internal/server"
	"github.com/devreg/devreg/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// RECORDS_MEMORY=true serves an in-process collection (local UI work, smoke tests)
	memory := os.Getenv("RECORDS_MEMORY") == "true"
	a, err := app.Open(ctx, cfg, memory)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	ver, err := server.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		logger.Fatalf("failed to initialize token verifier: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r := server.New(cfg, a, ver, reg)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("record service listening on %s (env=%s, log=%s)", srv.Addr, cfg.Server.Environment, logger.LevelString())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
}
