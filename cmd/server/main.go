package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certgen/internal/certificate"
	"certgen/internal/certificate/certid"
	certmetrics "certgen/internal/certificate/metrics"
	"certgen/internal/certificate/store"
	"certgen/internal/platform/config"
	"certgen/internal/platform/httpserver"
	"certgen/internal/platform/logger"
	"certgen/internal/platform/middleware"
	"certgen/internal/render"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ids, err := certid.New(cfg.SigningKey)
	if err != nil {
		log.Error("invalid signing key", "error", err)
		os.Exit(1)
	}

	svc := certificate.NewService(
		ids,
		store.NewInMemory(),
		render.NewPDF(),
		cfg.TrainingPartner,
		cfg.VerifyBaseURL,
		log,
		certmetrics.New(),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	certificate.NewHandler(svc, log).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting certgen", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
