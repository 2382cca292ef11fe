// Package api implements the HTTP API surface using huma on top of chi.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/garagehubapp/garagehub-server/internal/config"
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// Server holds the router, the OpenAPI registry, and everything the
// handlers reach for.
type Server struct {
	store    *store.Store
	services *Services
	photos   *photos.Storage
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	globalRateLimiter *RateLimiter
	authRateLimiter   *RateLimiter
	createRateLimiter *RateLimiter
}

// NewServer wires middleware, the OpenAPI config, and every route group.
func NewServer(cfg *config.Config, st *store.Store, services *Services, storage *StorageServices, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Global limit first, then the stricter auth-path limit, then auth
	// resolution. Order matters: rejected requests never touch the token parser.
	globalLimiter := NewRateLimiter(200, 15*time.Minute, 200)
	authLimiter := NewRateLimiter(15, 15*time.Minute, 15)
	createLimiter := NewRateLimiter(10, time.Hour, 10)

	router.Use(clientIPMiddleware)
	router.Use(RateLimitMiddleware(globalLimiter, logger))
	router.Use(PathRateLimitMiddleware("/api/v1/auth/", authLimiter, logger))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig(cfg.Server.Name, "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:             st,
		services:          services,
		photos:            storage.Photos,
		router:            router,
		api:               humaAPI,
		logger:            logger,
		globalRateLimiter: globalLimiter,
		authRateLimiter:   authLimiter,
		createRateLimiter: createLimiter,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerVehicleRoutes()
	s.registerShareRoutes()
	s.registerMaintenanceRoutes()
	s.registerPhotoRoutes()
	s.registerWeatherRoutes()
	s.registerContentRoutes()

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops the background rate limiter goroutines.
func (s *Server) Close() {
	s.globalRateLimiter.Stop()
	s.authRateLimiter.Stop()
	s.createRateLimiter.Stop()
}
