// file: internal/handlers/api/v1/users/users_controller.go
package users

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"campusboard/internal/middleware"
	"campusboard/internal/response"
	"campusboard/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxIDImageMemory bounds multipart parsing for verification uploads
const maxIDImageMemory = 8 << 20

// UsersController handles profile and verification endpoints
type UsersController struct {
	services        *services.ServiceCollection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewUsersController creates a new users controller
func NewUsersController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UsersController {
	return &UsersController{
		services:        sc,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ===============================
// PROFILE ENDPOINTS
// ===============================

// GetMe returns the caller's profile - GET /api/v1/users/me
func (c *UsersController) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	profile, err := c.services.UserService.GetProfile(ctx, user.ID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, profile)
}

// UpdateMe edits the caller's profile - PATCH /api/v1/users/me
func (c *UsersController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "update_profile")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = user.ID

	updated, err := c.services.UserService.UpdateProfile(ctx, &req)
	if err != nil {
		logger.Warn("Profile update failed", zap.Error(err), zap.Int64("user_id", user.ID))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, updated)
}

// GetUser returns a public profile - GET /api/v1/users/{id}
func (c *UsersController) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user ID", nil))
		return
	}

	user, err := c.services.UserService.GetPublicProfile(ctx, id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// GetUserActivities lists a user's authored activities - GET /api/v1/users/{id}/activities
func (c *UsersController) GetUserActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user ID", nil))
		return
	}

	page, err := c.services.UserService.GetUserActivities(ctx, id,
		response.ParsePagination(r), middleware.ViewerID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// GetJoined lists activities the caller has joined - GET /api/v1/users/me/joined
func (c *UsersController) GetJoined(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	page, err := c.services.UserService.GetJoinedActivities(ctx, user.ID, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// ===============================
// VERIFICATION ENDPOINTS
// ===============================

// RequestVerification submits an ID for review - POST /api/v1/users/me/verification
// Accepts multipart/form-data with an optional "id_image" file part.
func (c *UsersController) RequestVerification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	logger := c.endpointLogger(r, "request_verification")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	req := &services.RequestVerificationRequest{UserID: user.ID}

	if err := r.ParseMultipartForm(maxIDImageMemory); err == nil {
		if file, header, fileErr := r.FormFile("id_image"); fileErr == nil {
			defer file.Close()
			req.IDImage = &services.FileUpload{
				File:        file,
				Filename:    header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
			}
		}
	}

	request, err := c.services.VerificationService.RequestVerification(ctx, req)
	if err != nil {
		logger.Warn("Verification request failed", zap.Error(err), zap.Int64("user_id", user.ID))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Verification requested", zap.Int64("user_id", user.ID), zap.Int64("request_id", request.ID))
	c.responseBuilder.WriteCreatedWithMessage(w, r, request, "Verification submitted. An admin will review your ID.")
}

// GetVerificationStatus returns the caller's request - GET /api/v1/users/me/verification
func (c *UsersController) GetVerificationStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	request, err := c.services.VerificationService.GetVerificationStatus(ctx, user.ID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, request)
}

// ===============================
// HELPERS
// ===============================

func (c *UsersController) endpointLogger(r *http.Request, endpoint string) *zap.Logger {
	return c.logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("endpoint", endpoint),
	)
}
