// file: internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/config"
	"campusboard/internal/contextutils"
	"campusboard/internal/models"
	"campusboard/internal/repositories"
	"campusboard/internal/response"
	"campusboard/internal/services"

	"go.uber.org/zap"
)

const userCacheTTL = 15 * time.Minute

// AuthMiddleware authenticates requests via JWT, carried either as a
// Bearer token or in the auth cookie.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
	cache       cache.Cache
	cookieName  string
	logger      *zap.Logger
}

// NewAuthMiddleware creates the authentication middleware
func NewAuthMiddleware(
	authService services.AuthService,
	userRepo repositories.UserRepository,
	cacheImpl cache.Cache,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
		cache:       cacheImpl,
		cookieName:  cfg.CookieName,
		logger:      logger,
	}
}

// ===============================
// AUTHENTICATION
// ===============================

// Authenticate resolves the caller's identity and injects it into the
// request context. With required=false the request proceeds anonymous
// when no valid token is present.
func (am *AuthMiddleware) Authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := am.extractToken(r)
			if tokenString == "" {
				if required {
					response.QuickError(w, r, services.NewUnauthorizedError("authentication required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := am.authService.ValidateToken(ctx, tokenString)
			if err != nil {
				if required {
					response.QuickError(w, r, services.NewUnauthorizedError("invalid or expired token"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Token claims can go stale; verified and admin flags are
			// always read from the current user row.
			user, err := am.loadUser(ctx, claims.UserID)
			if err != nil || user == nil {
				if required {
					response.QuickError(w, r, services.NewUnauthorizedError("account no longer exists"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithUser(ctx, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return am.Authenticate(true)
}

// OptionalAuth attaches identity when present, otherwise passes through
func (am *AuthMiddleware) OptionalAuth() func(http.Handler) http.Handler {
	return am.Authenticate(false)
}

// RequireVerified rejects callers whose ID has not been verified.
// Must be stacked after RequireAuth.
func (am *AuthMiddleware) RequireVerified() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				response.QuickError(w, r, services.NewUnauthorizedError("authentication required"))
				return
			}
			if !user.IsVerified {
				response.QuickError(w, r, services.NewForbiddenError("ID verification is required for this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects non-admin callers. Must be stacked after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				response.QuickError(w, r, services.NewUnauthorizedError("authentication required"))
				return
			}
			if !user.IsAdmin {
				am.logger.Warn("Admin endpoint denied",
					zap.Int64("user_id", user.ID),
					zap.String("path", r.URL.Path),
				)
				response.QuickError(w, r, services.NewForbiddenError("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ===============================
// HELPERS
// ===============================

// extractToken pulls the JWT from the Authorization header or cookie
func (am *AuthMiddleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie(am.cookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// loadUser fetches the user, going to the database past a short cache
func (am *AuthMiddleware) loadUser(ctx context.Context, userID int64) (*models.User, error) {
	cacheKey := cache.UserKey(userID)
	if cached, found := am.cache.Get(ctx, cacheKey); found {
		if user, ok := cached.(*models.User); ok {
			return user, nil
		}
	}

	user, err := am.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if cacheErr := am.cache.Set(ctx, cacheKey, user, userCacheTTL); cacheErr != nil {
			am.logger.Debug("Failed to cache user", zap.Error(cacheErr))
		}
	}

	return user, nil
}

// ===============================
// CONTEXT HELPERS
// ===============================

type contextKey string

const userKey contextKey = "user"

// WithUser injects an authenticated user into the request context
func WithUser(ctx context.Context, user *models.User) context.Context {
	ctx = contextutils.WithUserID(ctx, user.ID)
	ctx = contextutils.WithIsAdmin(ctx, user.IsAdmin)
	return context.WithValue(ctx, userKey, user)
}

// GetUser extracts the authenticated user from the request context
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}

// GetUserID extracts the authenticated user ID from the request context
func GetUserID(ctx context.Context) int64 {
	return contextutils.GetUserID(ctx)
}

// ViewerID returns the authenticated user's ID as an optional viewer
// reference, nil when the request is anonymous.
func ViewerID(ctx context.Context) *int64 {
	if id := contextutils.GetUserID(ctx); id != 0 {
		return &id
	}
	return nil
}
