package transporthttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"travelplanner/internal/planner"
)

const (
	serviceName    = "Travel Planner API"
	serviceVersion = "1.0.0"
	maxBodyBytes   = 1 << 20
)

// Composer produces itineraries; *planner.Composer satisfies it.
type Composer interface {
	Compose(ctx context.Context, req planner.Request) (planner.Itinerary, error)
}

// CityLister reports the cities with curated data.
type CityLister interface {
	Cities() []string
}

// Deps wires the HTTP boundary.
type Deps struct {
	Composer       Composer
	Cities         CityLister
	Logger         *slog.Logger
	RequestTimeout time.Duration
	Secrets        []string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Now            func() time.Time
}

// Server exposes the itinerary composer over HTTP.
type Server struct {
	composer       Composer
	cities         CityLister
	logger         *slog.Logger
	requestTimeout time.Duration
	redact         *strings.Replacer
	allowedOrigins []string
	limiter        *clientLimiter
	now            func() time.Time
}

// NewServer fills unset deps with defaults.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		composer:       deps.Composer,
		cities:         deps.Cities,
		logger:         logger.With("component", "http"),
		requestTimeout: timeout,
		redact:         newRedactor(deps.Secrets),
		allowedOrigins: origins,
		limiter:        newClientLimiter(deps.RateLimitRPS, deps.RateLimitBurst, now),
		now:            now,
	}
}

// Routes returns the router with middleware and all endpoints mounted.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.accessLog)
	router.Use(middleware.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)

	router.Get("/", s.root)
	router.Get("/api/health", s.health)
	router.Route("/api/itinerary", func(r chi.Router) {
		r.With(s.limiter.middleware(s.writeRateLimited)).Post("/generate", s.generate)
		r.Get("/{id}", s.getItinerary)
	})
	router.Get("/api/cities", s.listCities)

	router.Get(swaggerSpecPath, serveSwaggerYAML)
	router.Get("/swagger", serveSwaggerUI)
	router.Get("/swagger/", serveSwaggerUI)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, errorBody{Error: "route not found", Code: "NOT_FOUND"})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
	})
	return router
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"status":  "running",
		"version": serviceVersion,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	cities := []string{}
	if s.cities != nil {
		cities = append(cities, s.cities.Cities()...)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}

func newRedactor(secrets []string) *strings.Replacer {
	var pairs []string
	for _, secret := range secrets {
		if secret != "" {
			pairs = append(pairs, secret, "[redacted]")
		}
	}
	return strings.NewReplacer(pairs...)
}
