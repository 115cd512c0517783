package rest

import (
	"net/http"

	"github.com/stoat/Mewton-family-tree/interfaces/http/rest/handlers"
	"github.com/stoat/Mewton-family-tree/interfaces/http/rest/middleware"
	"github.com/stoat/Mewton-family-tree/pkg/auth"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"
	"github.com/stoat/Mewton-family-tree/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options toggles the optional parts of the router.
type Options struct {
	EnableCORS  bool
	CORSOrigins []string
}

// Router creates and configures the HTTP router
type Router struct {
	tree     *handlers.TreeHandler
	auth     *handlers.AuthHandler
	health   *handlers.HealthHandler
	verifier auth.TokenVerifier
	limiter  *auth.IPRateLimiter
	metrics  *observability.Collector
	errors   *apperrors.ErrorHandler
	options  Options
	logger   *zap.Logger
}

// NewRouter creates a new router instance. A nil metrics collector leaves
// /metrics unmounted.
func NewRouter(
	tree *handlers.TreeHandler,
	authHandler *handlers.AuthHandler,
	health *handlers.HealthHandler,
	verifier auth.TokenVerifier,
	limiter *auth.IPRateLimiter,
	metrics *observability.Collector,
	errs *apperrors.ErrorHandler,
	options Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		tree:     tree,
		auth:     authHandler,
		health:   health,
		verifier: verifier,
		limiter:  limiter,
		metrics:  metrics,
		errors:   errs,
		options:  options,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.options.EnableCORS {
		origins := rt.options.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", rt.health.Health)

		r.With(middleware.RateLimit(rt.limiter, rt.errors, rt.logger)).
			Post("/auth", rt.auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.verifier, rt.errors, rt.logger))
			r.Get("/tree", rt.tree.GetTree)
			r.Put("/tree", rt.tree.PutTree)
		})
	})

	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	return router
}
