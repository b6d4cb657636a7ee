// file: internal/services/user_service.go
package services

import (
	"context"

	"campusboard/internal/models"
	"campusboard/internal/repositories"
	"campusboard/internal/validation"

	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	userRepo     repositories.UserRepository
	activityRepo repositories.ActivityRepository
	joinRepo     repositories.JoinRequestRepository
	logger       *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repos *repositories.Collection, logger *zap.Logger) UserService {
	return &userService{
		userRepo:     repos.User,
		activityRepo: repos.Activity,
		joinRepo:     repos.JoinRequest,
		logger:       logger,
	}
}

// GetProfile returns the caller's own profile with verification state
// and activity counts.
func (s *userService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load profile")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}
	return user, nil
}

// GetPublicProfile returns another user's profile with private fields
// stripped.
func (s *userService) GetPublicProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}

	user.Email = nil
	user.VerificationRequest = nil
	return user, nil
}

// UpdateProfile applies partial edits to the caller's profile
func (s *userService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error) {
	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("profile update failed validation", violations)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", req.UserID)
	}

	if req.Name != nil {
		user.Name = models.Sanitize(*req.Name)
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.ProfilePicURL != nil {
		user.ProfilePicURL = req.ProfilePicURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, NewInternalError("failed to update profile")
	}

	s.logger.Info("Profile updated", zap.Int64("user_id", req.UserID))
	return user, nil
}

// GetUserActivities lists activities authored by a user. The owner sees
// all their activities; everyone else sees only active ones.
func (s *userService) GetUserActivities(ctx context.Context, userID int64, params models.PaginationParams, viewerID *int64) (*models.PaginatedResponse[*models.Activity], error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}

	page, err := s.activityRepo.GetByAuthorID(ctx, userID, params, viewerID)
	if err != nil {
		return nil, NewInternalError("failed to list activities")
	}
	return page, nil
}

// GetJoinedActivities lists the activities a user has joined
func (s *userService) GetJoinedActivities(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error) {
	page, err := s.joinRepo.GetByUserID(ctx, userID, params)
	if err != nil {
		return nil, NewInternalError("failed to list joined activities")
	}
	return page, nil
}

// ListUsers returns the admin user directory
func (s *userService) ListUsers(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	page, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, NewInternalError("failed to list users")
	}
	return page, nil
}
