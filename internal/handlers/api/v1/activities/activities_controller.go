// file: internal/handlers/api/v1/activities/activities_controller.go
package activities

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

// ActivitiesController handles the activity board endpoints
type ActivitiesController struct {
	services        *services.ServiceCollection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewActivitiesController creates a new activities controller
func NewActivitiesController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ActivitiesController {
	return &ActivitiesController{
		services:        sc,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ===============================
// LIFECYCLE ENDPOINTS
// ===============================

// Create posts a new activity - POST /api/v1/activities
func (c *ActivitiesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "create_activity")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	var req services.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.AuthorID = user.ID

	result, err := c.services.ActivityService.CreateActivity(ctx, &req)
	if err != nil {
		logger.Warn("Activity creation failed", zap.Error(err), zap.Int64("user_id", user.ID))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Activity created",
		zap.Int64("activity_id", result.Activity.ID),
		zap.String("type", result.Activity.Type),
	)

	c.responseBuilder.WriteCreatedWithMessage(w, r, result.Activity, result.Message)
}

// Get returns one activity - GET /api/v1/activities/{id}
func (c *ActivitiesController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	activity, err := c.services.ActivityService.GetActivityByID(ctx, id, middleware.ViewerID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, activity)
}

// List returns the filtered feed - GET /api/v1/activities
func (c *ActivitiesController) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	req := &services.ListActivitiesRequest{
		Filter:     response.ParseActivityFilter(r),
		Pagination: response.ParsePagination(r),
		ViewerID:   middleware.ViewerID(r.Context()),
	}

	page, err := c.services.ActivityService.ListActivities(ctx, req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// Update edits an activity - PATCH /api/v1/activities/{id}
func (c *ActivitiesController) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "update_activity")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	var req services.UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ActivityID = id
	req.UserID = user.ID

	activity, err := c.services.ActivityService.UpdateActivity(ctx, &req)
	if err != nil {
		logger.Warn("Activity update failed", zap.Error(err), zap.Int64("activity_id", id))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Activity updated", zap.Int64("activity_id", id))
	c.responseBuilder.WriteSuccess(w, r, activity)
}

// Delete removes an activity - DELETE /api/v1/activities/{id}
func (c *ActivitiesController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "delete_activity")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	if err := c.services.ActivityService.DeleteActivity(ctx, id, user.ID, user.IsAdmin); err != nil {
		logger.Warn("Activity deletion failed", zap.Error(err), zap.Int64("activity_id", id))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Activity deleted", zap.Int64("activity_id", id))
	c.responseBuilder.WriteNoContent(w, r)
}

// ===============================
// ENGAGEMENT ENDPOINTS
// ===============================

// ToggleLike flips the caller's like - POST /api/v1/activities/{id}/like
func (c *ActivitiesController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	result, err := c.services.ActivityService.ToggleLike(ctx, user.ID, id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}

// Join confirms the caller onto an activity - POST /api/v1/activities/{id}/join
func (c *ActivitiesController) Join(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "join_activity")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	request, err := c.services.ActivityService.JoinActivity(ctx, user.ID, id)
	if err != nil {
		logger.Warn("Join failed", zap.Error(err), zap.Int64("activity_id", id))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("User joined activity", zap.Int64("activity_id", id), zap.Int64("user_id", user.ID))
	c.responseBuilder.WriteCreated(w, r, request)
}

// Leave releases the caller's slot - DELETE /api/v1/activities/{id}/join
func (c *ActivitiesController) Leave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	if err := c.services.ActivityService.LeaveActivity(ctx, user.ID, id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// Participants lists confirmed participants - GET /api/v1/activities/{id}/participants
func (c *ActivitiesController) Participants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	page, err := c.services.ActivityService.GetParticipants(ctx, id, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// ===============================
// COMMENT ENDPOINTS
// ===============================

// AddComment posts a comment - POST /api/v1/activities/{id}/comments
func (c *ActivitiesController) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "add_comment")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	var req services.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = user.ID
	req.ActivityID = id

	comment, err := c.services.ActivityService.AddComment(ctx, &req)
	if err != nil {
		logger.Warn("Comment failed", zap.Error(err), zap.Int64("activity_id", id))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, comment)
}

// Comments lists an activity's comments - GET /api/v1/activities/{id}/comments
func (c *ActivitiesController) Comments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	page, err := c.services.ActivityService.GetComments(ctx, id, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// DeleteComment removes a comment - DELETE /api/v1/comments/{id}
func (c *ActivitiesController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid comment ID", nil))
		return
	}

	if err := c.services.ActivityService.DeleteComment(ctx, id, user.ID, user.IsAdmin); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// ===============================
// MODERATION ENDPOINTS
// ===============================

// Report files a report against an activity - POST /api/v1/activities/{id}/report
func (c *ActivitiesController) Report(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "report_activity")

	user := middleware.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteUnauthorized(w, r, "authentication required")
		return
	}

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	var req services.ReportActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ReporterID = user.ID
	req.ActivityID = id

	report, err := c.services.ActivityService.ReportActivity(ctx, &req)
	if err != nil {
		logger.Warn("Report failed", zap.Error(err), zap.Int64("activity_id", id))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Activity reported", zap.Int64("activity_id", id), zap.Int64("report_id", report.ID))
	c.responseBuilder.WriteCreatedWithMessage(w, r, report, "Report filed. An admin will review it.")
}

// ===============================
// HELPERS
// ===============================

func (c *ActivitiesController) endpointLogger(r *http.Request, endpoint string) *zap.Logger {
	return c.logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("endpoint", endpoint),
	)
}
