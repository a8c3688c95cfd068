// Package server exposes the routing core over HTTP. All route-serving
// handlers are pure reads against the currently published snapshots, so they
// are safe under arbitrary request concurrency; rebuilds swap snapshots
// behind the manager without touching in-flight requests.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/safemap/saferoute/internal/hazard"
	"github.com/safemap/saferoute/internal/model"
	"github.com/safemap/saferoute/internal/network"
	"github.com/safemap/saferoute/pkg/geocode"
)

// RebuildFunc rebuilds and republishes the snapshot for one mode.
type RebuildFunc func(ctx context.Context, mode string) error

// Server wires the routing core, hazard store, and geocoder into a chi
// router.
type Server struct {
	manager  *network.Manager
	profiles model.Profiles
	hazards  hazard.Store   // optional
	geocoder geocode.Client // optional
	rebuild  RebuildFunc    // optional
	origins  []string
	router   chi.Router
}

// Option configures the server.
type Option func(*Server)

// WithHazardStore enables the /api/hazards endpoint.
func WithHazardStore(st hazard.Store) Option {
	return func(s *Server) { s.hazards = st }
}

// WithGeocoder enables the /api/geocode endpoint.
func WithGeocoder(c geocode.Client) Option {
	return func(s *Server) { s.geocoder = c }
}

// WithRebuild enables the POST /api/rebuild endpoint.
func WithRebuild(fn RebuildFunc) Option {
	return func(s *Server) { s.rebuild = fn }
}

// WithAllowedOrigins restricts CORS to the given origins. Empty means any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// New assembles the router.
func New(manager *network.Manager, profiles model.Profiles, opts ...Option) *Server {
	s := &Server{
		manager:  manager,
		profiles: profiles,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/profiles", s.handleProfiles)
		r.Get("/route", s.handleRoute)
		r.Get("/route_multi", s.handleRouteMulti)
		r.Get("/geocode", s.handleGeocode)
		r.Get("/hazards", s.handleHazards)
		r.Post("/rebuild", s.handleRebuild)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs one line per request with latency and status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
