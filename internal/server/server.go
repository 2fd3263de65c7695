// Package server exposes the profiler over HTTP: single lookups, bulk
// uploads, history queries, and cached profile reads.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kimberlite-group/matprofile/internal/config"
	"github.com/kimberlite-group/matprofile/internal/profile"
	"github.com/kimberlite-group/matprofile/internal/store"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	svc      *profile.Service
	store    store.Store
	maxCodes int
}

// New builds a Server around the profile service and store.
func New(svc *profile.Service, st store.Store, cfg *config.Config) *Server {
	return &Server{
		svc:      svc,
		store:    st,
		maxCodes: cfg.Bulk.MaxCodes,
	}
}

// Router assembles the chi router with middleware and all API routes.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/lookup", s.handleLookup)
		r.Post("/bulk", s.handleBulk)
		r.Get("/history", s.handleHistory)
		r.Get("/profiles/{code}", s.handleGetProfile)
	})

	return r
}

// requestLogger logs each request with its status, duration and request ID.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
