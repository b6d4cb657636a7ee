// file: internal/repositories/interfaces.go
package repositories

import (
	"context"

	"campusboard/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// UserRepository defines the contract for user data operations
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByRollNumber(ctx context.Context, rollNumber string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
	Delete(ctx context.Context, id int64) error

	// Profile composition
	GetProfile(ctx context.Context, id int64) (*models.User, error)
	CountActiveActivities(ctx context.Context, userID int64) (int, error)

	// Listing (admin)
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
}

// ActivityRepository defines the contract for activity data operations
type ActivityRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id int64, viewerID *int64) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id int64) error

	// Listing and filtering
	List(ctx context.Context, filter models.ActivityFilter, params models.PaginationParams, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error)
	GetByAuthorID(ctx context.Context, authorID int64, params models.PaginationParams, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error)
	GetPendingFunded(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Activity], error)

	// Lifecycle
	SetActive(ctx context.Context, activityID int64, active bool) error
	CountActiveByAuthor(ctx context.Context, authorID int64) (int, error)
}

// CommentRepository defines the contract for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	Delete(ctx context.Context, id int64) error

	GetByActivityID(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error)
	CountByActivityID(ctx context.Context, activityID int64) (int, error)
}

// LikeRepository defines the contract for like data operations
type LikeRepository interface {
	// Toggle adds a like if absent, removes it if present, and reports
	// the resulting state plus the fresh like count.
	Toggle(ctx context.Context, userID, activityID int64) (liked bool, likeCount int, err error)
	HasLiked(ctx context.Context, userID, activityID int64) (bool, error)
	CountByActivityID(ctx context.Context, activityID int64) (int, error)
}

// JoinRequestRepository defines the contract for join data operations
type JoinRequestRepository interface {
	// Join inserts a confirmed join for the user, guarded by the
	// activity's capacity inside a single transaction.
	Join(ctx context.Context, userID, activityID int64) (*models.JoinRequest, error)
	Leave(ctx context.Context, userID, activityID int64) error
	HasJoined(ctx context.Context, userID, activityID int64) (bool, error)

	GetByActivityID(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error)
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error)
	CountByActivityID(ctx context.Context, activityID int64) (int, error)
}

// ReportRepository defines the contract for report data operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	HasReported(ctx context.Context, reporterID, activityID int64) (bool, error)

	// Moderation (admin)
	List(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error)
	UpdateStatus(ctx context.Context, reportID int64, status string) error
}

// VerificationRepository defines the contract for verification data operations
type VerificationRepository interface {
	// Upsert creates the user's verification request, or resets an
	// existing rejected one back to pending.
	Upsert(ctx context.Context, request *models.VerificationRequest) error
	GetByUserID(ctx context.Context, userID int64) (*models.VerificationRequest, error)
	GetByID(ctx context.Context, id int64) (*models.VerificationRequest, error)

	// Review decides a pending request and flips the user's verified
	// flag in the same transaction when approving.
	Review(ctx context.Context, requestID, adminID int64, status, note string) (*models.VerificationRequest, error)

	// Listing (admin)
	List(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.VerificationRequest], error)
}
