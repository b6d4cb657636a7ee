// file: internal/services/verification_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"campusboard/internal/cache"
	"campusboard/internal/events"
	"campusboard/internal/models"
	"campusboard/internal/repositories"
	"campusboard/internal/validation"

	"go.uber.org/zap"
)

// verificationService implements VerificationService
type verificationService struct {
	verificationRepo repositories.VerificationRepository
	userRepo         repositories.UserRepository
	fileService      FileService
	cache            cache.Cache
	events           events.EventBus
	logger           *zap.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	repos *repositories.Collection,
	fileService FileService,
	cacheService cache.Cache,
	eventBus events.EventBus,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{
		verificationRepo: repos.Verification,
		userRepo:         repos.User,
		fileService:      fileService,
		cache:            cacheService,
		events:           eventBus,
		logger:           logger,
	}
}

// RequestVerification submits (or re-submits after rejection) the
// caller's ID-verification request. An uploaded ID image is stored
// before the request row is written.
func (s *verificationService) RequestVerification(ctx context.Context, req *RequestVerificationRequest) (*models.VerificationRequest, error) {
	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("verification request failed validation", violations)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", req.UserID)
	}
	if user.IsVerified {
		return nil, NewConflictError("your account is already verified", "ALREADY_VERIFIED")
	}

	var imageURL *string
	if req.IDImage != nil {
		result, uploadErr := s.fileService.UploadIDImage(ctx, &FileUploadRequest{
			UserID: req.UserID,
			Upload: req.IDImage,
		})
		if uploadErr != nil {
			return nil, uploadErr
		}
		imageURL = &result.URL
	}

	request := &models.VerificationRequest{
		UserID:     req.UserID,
		IDImageURL: imageURL,
		Status:     models.VerificationPending,
	}

	if err := s.verificationRepo.Upsert(ctx, request); err != nil {
		if errors.Is(err, repositories.ErrRequestNotPending) {
			return nil, NewConflictError("you already have a verification request under review", "REQUEST_PENDING")
		}
		return nil, NewInternalError("failed to submit verification request")
	}

	if pubErr := s.events.PublishAsync(ctx, events.NewVerificationRequestedEvent(request.ID, req.UserID)); pubErr != nil {
		s.logger.Warn("Failed to publish verification requested event", zap.Error(pubErr))
	}

	s.logger.Info("Verification requested",
		zap.Int64("user_id", req.UserID),
		zap.Int64("request_id", request.ID),
		zap.Bool("has_id_image", imageURL != nil),
	)

	return request, nil
}

// GetVerificationStatus returns the caller's verification request, if any
func (s *verificationService) GetVerificationStatus(ctx context.Context, userID int64) (*models.VerificationRequest, error) {
	request, err := s.verificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load verification status")
	}
	if request == nil {
		return nil, NewNotFoundError("no verification request on file")
	}
	return request, nil
}

// ListRequests returns the admin review queue
func (s *verificationService) ListRequests(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.VerificationRequest], error) {
	page, err := s.verificationRepo.List(ctx, status, params)
	if err != nil {
		return nil, NewInternalError("failed to list verification requests")
	}
	return page, nil
}

// ReviewRequest decides a pending verification request. Approval flips
// the user's verified flag atomically with the request update.
func (s *verificationService) ReviewRequest(ctx context.Context, req *ReviewVerificationRequest) (*models.VerificationRequest, error) {
	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("verification review failed validation", violations)
	}

	status := models.VerificationRejected
	if req.Approve {
		status = models.VerificationApproved
	} else if len(strings.TrimSpace(req.Note)) < models.MinReviewNoteLength {
		return nil, NewDetailedValidationError("verification review failed validation", []FieldError{{
			Field:   "note",
			Message: "a note of at least 5 characters is required when rejecting",
			Code:    "min",
		}})
	}

	request, err := s.verificationRepo.Review(ctx, req.RequestID, req.AdminID, status, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRequestNotFound):
			return nil, EntityNotFoundError("verification request", req.RequestID)
		case errors.Is(err, repositories.ErrRequestNotPending):
			return nil, NewConflictError("this request has already been decided", "REQUEST_DECIDED")
		default:
			return nil, NewInternalError("failed to review verification request")
		}
	}

	// The auth layer caches user rows; drop the entry so the reviewed
	// user's verified flag is fresh on their next request.
	if cacheErr := s.cache.Delete(ctx, cache.UserKey(request.UserID)); cacheErr != nil {
		s.logger.Warn("Failed to invalidate cached user after review",
			zap.Int64("user_id", request.UserID), zap.Error(cacheErr))
	}

	if pubErr := s.events.PublishAsync(ctx, events.NewVerificationReviewedEvent(
		request.ID, request.UserID, req.AdminID, status,
	)); pubErr != nil {
		s.logger.Warn("Failed to publish verification reviewed event", zap.Error(pubErr))
	}

	s.logger.Info("Verification reviewed",
		zap.Int64("request_id", req.RequestID),
		zap.Int64("admin_id", req.AdminID),
		zap.String("status", status),
	)

	return request, nil
}
