package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flowplate/internal/config"
	apierrors "flowplate/internal/errors"
	"flowplate/internal/services"
)

// NewRouter assembles the API router with logging, metrics, and rate
// limiting middleware.
func NewRouter(cfg *config.Config, service *services.SessionService, logger *slog.Logger) chi.Router {
	errorHandler := apierrors.NewErrorHandler(logger)
	sessions := NewSessionHandler(service, logger, errorHandler, cfg.Export.Dir)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(Metrics)
	r.Use(RateLimit(cfg.Server.RateLimit))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api/sessions", sessions.Routes())

	return r
}
