// file: internal/handlers/api/v1/auth/auth_controller.go
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"campusboard/internal/middleware"
	"campusboard/internal/response"
	"campusboard/internal/services"

	"go.uber.org/zap"
)

// AuthController handles signup, login and account endpoints
type AuthController struct {
	services        *services.ServiceCollection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAuthController creates a new authentication controller
func NewAuthController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AuthController {
	return &AuthController{
		services:        sc,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ===============================
// AUTHENTICATION ENDPOINTS
// ===============================

// Register handles signup - POST /api/v1/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "register")

	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	authResp, err := c.services.AuthService.Register(ctx, &req)
	if err != nil {
		logger.Warn("Registration failed", zap.Error(err))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("User registered",
		zap.Int64("user_id", authResp.User.ID),
		zap.String("roll_number", authResp.User.RollNumber),
	)

	c.setAuthCookie(w, r, authResp)

	c.responseBuilder.WriteCreatedWithMessage(w, r, map[string]interface{}{
		"user":       authResp.User,
		"token":      authResp.Token,
		"expires_at": authResp.ExpiresAt.Unix(),
	}, "Account created. Submit your ID for verification to start posting activities.")
}

// Login handles authentication - POST /api/v1/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "login")

	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	authResp, err := c.services.AuthService.Login(ctx, &req)
	if err != nil {
		logger.Warn("Login failed", zap.Error(err))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("User logged in", zap.Int64("user_id", authResp.User.ID))

	c.setAuthCookie(w, r, authResp)

	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"user":       authResp.User,
		"token":      authResp.Token,
		"expires_at": authResp.ExpiresAt.Unix(),
	})
}

// Logout clears the auth cookie - POST /api/v1/auth/logout
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.services.Config.Auth.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
		Path:     "/",
	})

	c.responseBuilder.WriteSuccessWithMessage(w, r, nil, "Logged out")
}

// Me returns the authenticated account - GET /api/v1/auth/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	current, err := c.services.AuthService.GetCurrentUser(ctx, user.ID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, current)
}

// ChangePassword updates the caller's password - POST /api/v1/auth/change-password
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "change_password")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	var req services.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = user.ID

	if err := c.services.AuthService.ChangePassword(ctx, &req); err != nil {
		logger.Warn("Password change failed", zap.Error(err), zap.Int64("user_id", user.ID))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Password changed", zap.Int64("user_id", user.ID))
	c.responseBuilder.WriteSuccessWithMessage(w, r, nil, "Password changed")
}

// ===============================
// HELPERS
// ===============================

func (c *AuthController) setAuthCookie(w http.ResponseWriter, r *http.Request, authResp *services.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.services.Config.Auth.CookieName,
		Value:    authResp.Token,
		Expires:  authResp.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
		Path:     "/",
	})
}

func (c *AuthController) endpointLogger(r *http.Request, endpoint string) *zap.Logger {
	return c.logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("endpoint", endpoint),
	)
}
