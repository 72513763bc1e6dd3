package rest

import (
	"net/http"

	"users-backend/interfaces/http/rest/handlers"
	"users-backend/interfaces/http/rest/middleware"
	"users-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options controls the optional parts of the router
type Options struct {
	ServiceName    string
	MaxUploadBytes int64
	EnableCORS     bool
	AllowedOrigins []string
	// TraceRequests opens an X-Ray segment per request. Lambda already
	// provides one, so only the standalone server sets it.
	TraceRequests bool
	Debug         bool
	// Registry is served on /metrics when non-nil
	Registry *prometheus.Registry
}

// Router creates and configures the HTTP router
type Router struct {
	users  handlers.UserGateway
	opts   Options
	logger *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(users handlers.UserGateway, opts Options, logger *zap.Logger) *Router {
	return &Router{
		users:  users,
		opts:   opts,
		logger: logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()
	errHandler := handlers.NewErrorHandler(rt.logger, rt.opts.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	if rt.opts.TraceRequests {
		router.Use(middleware.Tracing(rt.opts.ServiceName))
	}
	router.Use(middleware.Logger(rt.logger))
	router.Use(errHandler.Middleware)

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errHandler.HandleStatus(w, r, http.StatusNotFound, common.StandardErrorCodes.NotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.opts.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.opts.Registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1/users", func(r chi.Router) {
		userHandler := handlers.NewUserHandler(rt.users, errHandler, rt.opts.MaxUploadBytes, rt.logger)
		r.Post("/", userHandler.CreateUser)
		r.Get("/", userHandler.GetUsers)
		r.Post("/login", userHandler.Login)
		r.Post("/lookup", userHandler.Lookup)
		r.Get("/{userID}", userHandler.GetUser)
		r.Put("/{userID}", userHandler.UpdateUser)
		r.Delete("/{userID}", userHandler.DeleteUser)
		r.Put("/{userID}/image", userHandler.UpdateUserImage)
		r.Post("/{userID}/file", userHandler.UpdateUserFile)
		r.Delete("/{userID}/file/{fileName}", userHandler.DeleteUserFile)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests. The service holds no
// connections of its own, so it is ready once routes are mounted.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
