// file: internal/handlers/api/v1/admin/admin_controller.go
package admin

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

// AdminController handles verification review, report moderation and
// funded-activity approval. Every route is stacked behind RequireAdmin.
type AdminController struct {
	services        *services.ServiceCollection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAdminController creates a new admin controller
func NewAdminController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AdminController {
	return &AdminController{
		services:        sc,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ===============================
// VERIFICATION REVIEW
// ===============================

// ListVerificationRequests returns the review queue - GET /api/v1/admin/verifications
func (c *AdminController) ListVerificationRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	page, err := c.services.VerificationService.ListRequests(ctx,
		statusFilter(r), response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// ReviewVerification decides a request - POST /api/v1/admin/verifications/{id}/review
func (c *AdminController) ReviewVerification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "review_verification")
	admin := middleware.GetUser(r.Context())

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request ID", nil))
		return
	}

	var req services.ReviewVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.RequestID = id
	req.AdminID = admin.ID

	request, err := c.services.VerificationService.ReviewRequest(ctx, &req)
	if err != nil {
		logger.Warn("Verification review failed", zap.Error(err), zap.Int64("request_id", id))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Verification reviewed",
		zap.Int64("request_id", id),
		zap.String("status", request.Status),
	)

	c.responseBuilder.WriteSuccess(w, r, request)
}

// ===============================
// REPORT MODERATION
// ===============================

// ListReports returns the report queue - GET /api/v1/admin/reports
func (c *AdminController) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	page, err := c.services.ActivityService.ListReports(ctx,
		statusFilter(r), response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// ResolveReport records a decision on a report - POST /api/v1/admin/reports/{id}/resolve
func (c *AdminController) ResolveReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "resolve_report")
	admin := middleware.GetUser(r.Context())

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid report ID", nil))
		return
	}

	var req services.ResolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ReportID = id
	req.AdminID = admin.ID

	if err := c.services.ActivityService.ResolveReport(ctx, &req); err != nil {
		logger.Warn("Report resolution failed", zap.Error(err), zap.Int64("report_id", id))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Report resolved", zap.Int64("report_id", id), zap.String("status", req.Status))
	c.responseBuilder.WriteSuccessWithMessage(w, r, nil, "Report "+req.Status)
}

// ===============================
// FUNDED ACTIVITY APPROVAL
// ===============================

// ListPendingFunded lists funding activities awaiting approval - GET /api/v1/admin/activities/pending
func (c *AdminController) ListPendingFunded(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	page, err := c.services.ActivityService.ListPendingFunded(ctx, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// ApproveFunded activates a pending activity - POST /api/v1/admin/activities/{id}/approve
func (c *AdminController) ApproveFunded(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	logger := c.endpointLogger(r, "approve_funded")
	admin := middleware.GetUser(r.Context())

	id, ok := response.ParseIDParam(mux.Vars(r)["id"])
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity ID", nil))
		return
	}

	if err := c.services.ActivityService.ApproveFundedActivity(ctx, id, admin.ID); err != nil {
		logger.Warn("Funded approval failed", zap.Error(err), zap.Int64("activity_id", id))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("Funded activity approved", zap.Int64("activity_id", id))
	c.responseBuilder.WriteSuccessWithMessage(w, r, nil, "Activity approved and live on the board")
}

// ===============================
// USER DIRECTORY
// ===============================

// ListUsers returns the user directory - GET /api/v1/admin/users
func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	page, err := c.services.UserService.ListUsers(ctx, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, page.Data,
		page.Pagination.Limit, page.Pagination.Offset, page.Pagination.TotalItems)
}

// ===============================
// HELPERS
// ===============================

// statusFilter reads an optional ?status= query parameter
func statusFilter(r *http.Request) *string {
	if status := r.URL.Query().Get("status"); status != "" {
		return &status
	}
	return nil
}

func (c *AdminController) endpointLogger(r *http.Request, endpoint string) *zap.Logger {
	return c.logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("endpoint", endpoint),
	)
}
