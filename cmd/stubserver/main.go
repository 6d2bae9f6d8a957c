package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/bekzodm/omborscan/internal/config"
	"github.com/bekzodm/omborscan/internal/stub"
)

// Development stand-in for the inventory service. It keeps everything
// in memory and accepts any non-empty camera frame as the configured
// operator, so the TUI can be exercised without the real backend.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store := stub.NewStore()
	store.Seed()

	token, err := stub.MintToken(cfg.Stub.JWTSecret, cfg.Stub.Operator, 24*time.Hour)
	if err != nil {
		slog.Error("failed to mint token", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(stub.Auth(cfg.Stub.JWTSecret))
		r.Use(stub.CSRF(cfg.Stub.CSRFToken))
		stub.NewHandler(store, cfg.Stub.Operator).Routes(r)
	})

	addr := fmt.Sprintf(":%d", cfg.Stub.Port)
	slog.Info("starting stub server", "addr", addr, "operator", cfg.Stub.Operator)
	slog.Info("client environment", "API_TOKEN", token, "CSRF_TOKEN", cfg.Stub.CSRFToken)

	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
