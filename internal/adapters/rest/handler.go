package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/trackfinder/internal/core/services"
)

// Config holds the HTTP layer settings.
type Config struct {
	DefaultNeighbors int
	MaxNeighbors     int
	CORSOrigins      []string
	RateLimitReqs    int
	RateLimitWindow  time.Duration
}

// DefaultConfig mirrors the built-in application config.
func DefaultConfig() Config {
	return Config{
		DefaultNeighbors: 150,
		MaxNeighbors:     300,
		CORSOrigins:      []string{"*"},
		RateLimitReqs:    100,
		RateLimitWindow:  time.Minute,
	}
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc      *services.Orchestrator
	sessions *SessionRegistry
	cfg      Config
	router   chi.Router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator, sessions *SessionRegistry, cfg Config) *Handler {
	h := &Handler{
		svc:      svc,
		sessions: sessions,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	r := h.router

	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID", userIDHeader},
		ExposedHeaders: []string{"X-Request-ID", "Location"},
		MaxAge:         300,
	}))
	r.Use(recordMetrics)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if h.cfg.RateLimitReqs > 0 {
			r.Use(httprate.LimitByIP(h.cfg.RateLimitReqs, h.cfg.RateLimitWindow))
		}

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/search", h.SearchCatalog)
			r.Get("/filter", h.FilterCatalog)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/sessions", h.CreateSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Post("/cart/toggle", h.ToggleCart)
				r.Delete("/cart/{position}", h.RemoveFromCart)
				r.Delete("/cart", h.ClearCart)
				r.Post("/search", h.FindSimilar)
				r.Post("/playlists", h.SavePlaylist)
			})

			r.Get("/playlists", h.ListPlaylists)

			r.Route("/stats", func(r chi.Router) {
				r.Get("/artists", h.TopArtists)
				r.Get("/genres", h.GenreCounts)
				r.Get("/features/{feature}", h.FeatureDistribution)
			})
		})
	})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"catalog_songs": h.svc.CatalogSize(),
		"sessions":      h.sessions.Len(),
	})
}
