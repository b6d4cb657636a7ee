// ===============================
// FILE: internal/router/router.go
// HTTP routing and middleware assembly
// ===============================

package router

import (
	"net/http"
	"time"

	"campusboard/internal/middleware"
	"campusboard/internal/response"
	"campusboard/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// New builds the full HTTP handler: global middleware chain, health
// endpoints, and the versioned API routes.
func New(sc *services.ServiceCollection, logger *zap.Logger) http.Handler {
	responseBuilder := response.NewBuilder(response.DefaultConfig(), logger)

	authMiddleware := middleware.NewAuthMiddleware(
		sc.AuthService,
		sc.Repositories.User,
		sc.Cache,
		&sc.Config.Auth,
		logger,
	)

	rateLimiter := middleware.NewRateLimiter(
		middleware.DefaultRateLimiterConfig(),
		sc.Cache,
		logger,
	)

	r := mux.NewRouter()
	r.Use(
		middleware.RequestID(logger),
		middleware.RecoverPanic(logger),
		middleware.SecureHeaders,
		middleware.CORS(corsOrigin(sc.Config.Security.CORSAllowedOrigins)),
		response.Middleware(responseBuilder),
		middleware.Logging(logger),
		rateLimiter.Limit,
	)

	registerHealthRoutes(r, sc, responseBuilder)
	registerAPIv1(r, sc, authMiddleware, responseBuilder, logger)

	r.NotFoundHandler = notFoundHandler(responseBuilder)
	r.MethodNotAllowedHandler = methodNotAllowedHandler(responseBuilder)

	logger.Info("router initialized",
		zap.String("api_base", "/api/v1"),
	)

	return r
}

// ===============================
// HEALTH ENDPOINTS
// ===============================

func registerHealthRoutes(r *mux.Router, sc *services.ServiceCollection, rb *response.Builder) {
	// Liveness: cheap, no dependency probes.
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		rb.WriteSuccess(w, req, map[string]interface{}{
			"status":    "alive",
			"timestamp": time.Now().UTC(),
		})
	}).Methods(http.MethodGet)

	// Readiness: probes database, cache and event bus.
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		health, err := sc.HealthCheck(req.Context())
		if err != nil || health.Status != "healthy" {
			rb.WriteError(w, req, services.NewServiceUnavailableError("service degraded"))
			return
		}
		rb.WriteSuccess(w, req, health)
	}).Methods(http.MethodGet)
}

// corsOrigin picks the first configured origin; the CORS middleware
// falls back to "*" when none is set.
func corsOrigin(origins []string) string {
	if len(origins) == 0 {
		return ""
	}
	return origins[0]
}

func notFoundHandler(rb *response.Builder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rb.WriteError(w, req, services.NewNotFoundError("resource not found"))
	})
}

func methodNotAllowedHandler(rb *response.Builder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rb.WriteError(w, req, services.NewValidationError("method not allowed", nil))
	})
}
