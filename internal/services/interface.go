// file: internal/services/interface.go
package services

import (
	"context"

	"campusboard/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// AuthService defines authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	GetCurrentUser(ctx context.Context, userID int64) (*models.User, error)
	ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error)
	ChangePassword(ctx context.Context, req *ChangePasswordRequest) error
}

// UserService defines user and profile business logic
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	GetPublicProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error)
	GetUserActivities(ctx context.Context, userID int64, params models.PaginationParams, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error)
	GetJoinedActivities(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error)
	ListUsers(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
}

// ActivityService defines activity board business logic
type ActivityService interface {
	// Lifecycle
	CreateActivity(ctx context.Context, req *CreateActivityRequest) (*CreateActivityResult, error)
	GetActivityByID(ctx context.Context, id int64, viewerID *int64) (*models.Activity, error)
	ListActivities(ctx context.Context, req *ListActivitiesRequest) (*models.PaginatedResponse[*models.Activity], error)
	UpdateActivity(ctx context.Context, req *UpdateActivityRequest) (*models.Activity, error)
	DeleteActivity(ctx context.Context, activityID, userID int64, isAdmin bool) error

	// Engagement
	ToggleLike(ctx context.Context, userID, activityID int64) (*ToggleLikeResult, error)
	JoinActivity(ctx context.Context, userID, activityID int64) (*models.JoinRequest, error)
	LeaveActivity(ctx context.Context, userID, activityID int64) error
	GetParticipants(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error)

	// Comments
	AddComment(ctx context.Context, req *CreateCommentRequest) (*models.Comment, error)
	GetComments(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error)
	DeleteComment(ctx context.Context, commentID, userID int64, isAdmin bool) error

	// Moderation
	ReportActivity(ctx context.Context, req *ReportActivityRequest) (*models.Report, error)
	ListReports(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error)
	ResolveReport(ctx context.Context, req *ResolveReportRequest) error

	// Funding approvals (admin)
	ListPendingFunded(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Activity], error)
	ApproveFundedActivity(ctx context.Context, activityID, adminID int64) error
}

// VerificationService defines ID-verification business logic
type VerificationService interface {
	RequestVerification(ctx context.Context, req *RequestVerificationRequest) (*models.VerificationRequest, error)
	GetVerificationStatus(ctx context.Context, userID int64) (*models.VerificationRequest, error)
	ListRequests(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.VerificationRequest], error)
	ReviewRequest(ctx context.Context, req *ReviewVerificationRequest) (*models.VerificationRequest, error)
}

// ===============================
// INFRASTRUCTURE SERVICES
// ===============================

// FileService handles file storage operations
type FileService interface {
	UploadIDImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error)
	UploadProfileImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error)
	DeleteFile(ctx context.Context, publicID string) error
}
