// file: internal/middleware/rate_limiter.go
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/contextutils"

	"go.uber.org/zap"
)

// RateLimiterConfig holds rate limiting configuration
type RateLimiterConfig struct {
	Enabled        bool          `json:"enabled"`
	HeadersEnabled bool          `json:"headers_enabled"`
	DefaultLimit   int           `json:"default_limit"`
	DefaultWindow  time.Duration `json:"default_window"`

	// Endpoint-specific overrides keyed by "METHOD path"
	EndpointLimits map[string]*EndpointLimit `json:"endpoint_limits"`
}

// EndpointLimit overrides the default limit for one endpoint
type EndpointLimit struct {
	Limit  int           `json:"limit"`
	Window time.Duration `json:"window"`
}

// DefaultRateLimiterConfig returns the standard limits. Auth endpoints
// are tighter to slow credential stuffing.
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Enabled:        true,
		HeadersEnabled: true,
		DefaultLimit:   600,
		DefaultWindow:  time.Minute,
		EndpointLimits: map[string]*EndpointLimit{
			"POST /api/v1/auth/login": {
				Limit:  10,
				Window: 15 * time.Minute,
			},
			"POST /api/v1/auth/register": {
				Limit:  5,
				Window: 15 * time.Minute,
			},
			"POST /api/v1/activities": {
				Limit:  30,
				Window: time.Hour,
			},
		},
	}
}

// RateLimiter enforces fixed-window request limits backed by the cache
type RateLimiter struct {
	config *RateLimiterConfig
	cache  cache.Cache
	logger *zap.Logger
}

// NewRateLimiter creates a rate limiting middleware
func NewRateLimiter(config *RateLimiterConfig, cacheImpl cache.Cache, logger *zap.Logger) *RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}
	return &RateLimiter{config: config, cache: cacheImpl, logger: logger}
}

// Limit applies rate limiting keyed by user when authenticated,
// otherwise by client IP.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		limit, window := rl.limitFor(r)

		subject := getClientIP(r)
		if userID := contextutils.GetUserID(ctx); userID != 0 {
			subject = fmt.Sprintf("u%d", userID)
		}

		windowStart := time.Now().Truncate(window).Unix()
		key := fmt.Sprintf("ratelimit:%s %s:%s:%d", r.Method, r.URL.Path, subject, windowStart)

		count, err := rl.cache.Increment(ctx, key, 1)
		if err != nil {
			// Limiter failures never block traffic
			rl.logger.Warn("Rate limit check failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if setErr := rl.cache.Set(ctx, key, count, window); setErr != nil {
				rl.logger.Debug("Failed to set rate limit TTL", zap.Error(setErr))
			}
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		resetAt := time.Unix(windowStart, 0).Add(window)

		if rl.config.HeadersEnabled {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		}

		if count > int64(limit) {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("subject", subject),
				zap.String("path", r.URL.Path),
				zap.Int64("count", count),
				zap.Int("limit", limit),
			)
			rl.writeRateLimitError(w, resetAt)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limitFor(r *http.Request) (int, time.Duration) {
	if override, ok := rl.config.EndpointLimits[r.Method+" "+r.URL.Path]; ok {
		return override.Limit, override.Window
	}
	return rl.config.DefaultLimit, rl.config.DefaultWindow
}

func (rl *RateLimiter) writeRateLimitError(w http.ResponseWriter, resetAt time.Time) {
	retryAfter := time.Until(resetAt)
	if retryAfter < 0 {
		retryAfter = 0
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
	w.WriteHeader(http.StatusTooManyRequests)

	body := map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "RATE_LIMITED",
			"message": "too many requests, slow down",
		},
		"timestamp": time.Now().Unix(),
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rl.logger.Debug("Failed to write rate limit response", zap.Error(err))
	}
}
