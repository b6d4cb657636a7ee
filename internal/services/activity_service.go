// file: internal/services/activity_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/events"
	"campusboard/internal/models"
	"campusboard/internal/repositories"
	"campusboard/internal/validation"

	"go.uber.org/zap"
)

// FundingPendingMessage is returned to authors of freshly created
// COLLEGE_FUNDED activities, which stay hidden until an admin approves.
const FundingPendingMessage = "Created. Funding activities are pending admin approval."

// ActivityCreatedMessage is returned for activities that go live immediately.
const ActivityCreatedMessage = "Activity created."

// activityService implements ActivityService
type activityService struct {
	activityRepo repositories.ActivityRepository
	userRepo     repositories.UserRepository
	commentRepo  repositories.CommentRepository
	likeRepo     repositories.LikeRepository
	joinRepo     repositories.JoinRequestRepository
	reportRepo   repositories.ReportRepository
	cache        cache.Cache
	events       events.EventBus
	logger       *zap.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(
	repos *repositories.Collection,
	cacheService cache.Cache,
	eventBus events.EventBus,
	logger *zap.Logger,
) ActivityService {
	return &activityService{
		activityRepo: repos.Activity,
		userRepo:     repos.User,
		commentRepo:  repos.Comment,
		likeRepo:     repos.Like,
		joinRepo:     repos.JoinRequest,
		reportRepo:   repos.Report,
		cache:        cacheService,
		events:       eventBus,
		logger:       logger,
	}
}

// ===============================
// LIFECYCLE
// ===============================

// CreateActivity posts a new activity. Only verified users may create;
// authors are capped at a fixed number of simultaneously active
// activities; COLLEGE_FUNDED activities start inactive pending
// admin approval.
func (s *activityService) CreateActivity(ctx context.Context, req *CreateActivityRequest) (*CreateActivityResult, error) {
	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("activity failed validation", violations)
	}

	author, err := s.userRepo.GetByID(ctx, req.AuthorID)
	if err != nil {
		return nil, NewInternalError("failed to load author")
	}
	if author == nil {
		return nil, NewUnauthorizedError("account no longer exists")
	}
	if !author.IsVerified {
		return nil, NewForbiddenError("only verified users can create activities")
	}

	activeCount, err := s.activityRepo.CountActiveByAuthor(ctx, req.AuthorID)
	if err != nil {
		return nil, NewInternalError("failed to check activity quota")
	}
	if activeCount >= models.MaxActiveActivitiesPerUser {
		return nil, NewQuotaExceededError(
			fmt.Sprintf("you already have %d active activities", activeCount),
			map[string]interface{}{
				"active_activities": activeCount,
				"limit":             models.MaxActiveActivitiesPerUser,
			},
		)
	}

	activity, err := s.buildActivity(req)
	if err != nil {
		return nil, err
	}

	if errs := activity.Validate(); errs.HasErrors() {
		return nil, modelValidationError("activity failed validation", errs)
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, NewInternalError("failed to create activity")
	}

	s.invalidateFeed(ctx)

	pending := activity.Type == models.TypeCollegeFunded
	if pubErr := s.events.PublishAsync(ctx, events.NewActivityCreatedEvent(
		activity.ID, activity.AuthorID, activity.Type, activity.Genre, pending,
	)); pubErr != nil {
		s.logger.Warn("Failed to publish activity created event", zap.Error(pubErr))
	}

	message := ActivityCreatedMessage
	if pending {
		message = FundingPendingMessage
	}

	activity.Author = author.PublicProfile()
	activity.IsOwner = true

	return &CreateActivityResult{Activity: activity, Message: message}, nil
}

// buildActivity converts a create request into a sanitized model
func (s *activityService) buildActivity(req *CreateActivityRequest) (*models.Activity, error) {
	startDate, err := parseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}

	if req.Type == models.TypeCollegeFunded && req.FundingGoal == nil {
		return nil, NewValidationError("COLLEGE_FUNDED activities require a funding goal", nil)
	}

	activity := &models.Activity{
		AuthorID:    req.AuthorID,
		Title:       models.Sanitize(req.Title),
		Description: models.Sanitize(req.Description),
		Type:        req.Type,
		Genre:       req.Genre,
		Frequency:   req.Frequency,
		Location:    models.SanitizePtr(req.Location),
		StartDate:   startDate,
		EndDate:     endDate,
		Capacity:    req.Capacity,
		FundingGoal: req.FundingGoal,
		IsActive:    req.Type != models.TypeCollegeFunded,
	}

	templates, form, err := buildTypePayload(req.Type, req.OpenTemplate, req.CommunityTemplate, req.ApplicationForm)
	if err != nil {
		return nil, err
	}
	activity.TemplatesUsed = templates
	activity.ApplicationForm = form

	return activity, nil
}

// buildTypePayload validates and assembles the type-specific payload.
// Exactly the payload matching the declared type may be present.
func buildTypePayload(
	activityType string,
	open *OpenTemplateRequest,
	community *CommunityTemplateRequest,
	form *ApplicationFormRequest,
) (*models.TemplatesUsed, *models.ApplicationForm, error) {
	switch activityType {
	case models.TypeOpen:
		if community != nil || form != nil {
			return nil, nil, NewValidationError("OPEN activities only accept the open template", nil)
		}
		templates := &models.TemplatesUsed{Open: &models.OpenTemplate{}}
		if open != nil {
			if violations := validation.CollectViolations(open); violations != nil {
				return nil, nil, violationError("open template failed validation", violations)
			}
			templates.Open.MeetingPointDetails = models.SanitizePtr(open.MeetingPointDetails)
			templates.Open.ExpectedDurationMinutes = open.ExpectedDurationMinutes
		}
		return templates, nil, nil

	case models.TypeCommunity:
		if community == nil {
			return nil, nil, NewValidationError("COMMUNITY activities require a community template", nil)
		}
		if open != nil || form != nil {
			return nil, nil, NewValidationError("COMMUNITY activities only accept the community template", nil)
		}
		if violations := validation.CollectViolations(community); violations != nil {
			return nil, nil, violationError("community template failed validation", violations)
		}
		firstMeet, err := parseOptionalDate(community.FirstMeetDate, "first_meet_date")
		if err != nil {
			return nil, nil, err
		}
		coOrganisers := make([]string, 0, len(community.CoOrganisers))
		for _, c := range community.CoOrganisers {
			coOrganisers = append(coOrganisers, models.Sanitize(c))
		}
		return &models.TemplatesUsed{
			Community: &models.CommunityTemplate{
				CommunityName:    models.Sanitize(community.CommunityName),
				Goals:            models.Sanitize(community.Goals),
				MeetingFrequency: community.MeetingFrequency,
				FirstMeetDate:    firstMeet,
				CoOrganisers:     coOrganisers,
				Visibility:       community.Visibility,
			},
		}, nil, nil

	case models.TypeCollegeFunded:
		if open != nil || community != nil {
			return nil, nil, NewValidationError("COLLEGE_FUNDED activities only accept the application form", nil)
		}
		// Every form field is optional at submission; only the funding
		// goal itself is mandatory, and that lives on the activity.
		if form == nil {
			return nil, &models.ApplicationForm{}, nil
		}
		if violations := validation.CollectViolations(form); violations != nil {
			return nil, nil, violationError("application form failed validation", violations)
		}
		return nil, &models.ApplicationForm{
			BudgetBreakdown:       form.BudgetBreakdown,
			VenueRequirement:      models.SanitizePtr(form.VenueRequirement),
			ExpectedAttendees:     form.ExpectedAttendees,
			SafetyPlan:            models.SanitizePtr(form.SafetyPlan),
			ProposedDates:         form.ProposedDates,
			RepresentativeContact: form.RepresentativeContact,
		}, nil

	default:
		return nil, nil, NewValidationError("unknown activity type", nil)
	}
}

// GetActivityByID loads a single activity with viewer context
func (s *activityService) GetActivityByID(ctx context.Context, id int64, viewerID *int64) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, NewInternalError("failed to load activity")
	}
	if activity == nil {
		return nil, EntityNotFoundError("activity", id)
	}

	// Inactive activities are visible to their owner and admins only;
	// handlers pass isAdmin context through viewer checks upstream.
	if !activity.IsActive && !activity.IsOwner {
		return nil, EntityNotFoundError("activity", id)
	}

	return activity, nil
}

// ListActivities returns the filtered public feed
func (s *activityService) ListActivities(ctx context.Context, req *ListActivitiesRequest) (*models.PaginatedResponse[*models.Activity], error) {
	// Anonymous, unfiltered-feed pages are cached briefly.
	cacheKey := ""
	if req.ViewerID == nil {
		cacheKey = feedCacheKey(req.Filter, req.Pagination)
		if cached, found := s.cache.Get(ctx, cacheKey); found {
			if page, ok := cached.(*models.PaginatedResponse[*models.Activity]); ok {
				return page, nil
			}
		}
	}

	page, err := s.activityRepo.List(ctx, req.Filter, req.Pagination, req.ViewerID)
	if err != nil {
		return nil, NewInternalError("failed to list activities")
	}

	if cacheKey != "" {
		if cacheErr := s.cache.Set(ctx, cacheKey, page, 0); cacheErr != nil {
			s.logger.Debug("Failed to cache feed page", zap.Error(cacheErr))
		}
	}

	return page, nil
}

// UpdateActivity edits an activity. Only the owner may edit, and the
// activity's type cannot change.
func (s *activityService) UpdateActivity(ctx context.Context, req *UpdateActivityRequest) (*models.Activity, error) {
	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("activity update failed validation", violations)
	}

	activity, err := s.activityRepo.GetByID(ctx, req.ActivityID, &req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to load activity")
	}
	if activity == nil {
		return nil, EntityNotFoundError("activity", req.ActivityID)
	}
	if !activity.IsOwnedBy(req.UserID) {
		return nil, InsufficientPermissionsError("update", "activity")
	}

	if req.Title != nil {
		activity.Title = models.Sanitize(*req.Title)
	}
	if req.Description != nil {
		activity.Description = models.Sanitize(*req.Description)
	}
	if req.Genre != nil {
		activity.Genre = *req.Genre
	}
	if req.Frequency != nil {
		activity.Frequency = *req.Frequency
	}
	if req.Location != nil {
		activity.Location = models.SanitizePtr(req.Location)
	}
	if req.StartDate != nil {
		startDate, err := parseOptionalDate(req.StartDate, "start_date")
		if err != nil {
			return nil, err
		}
		activity.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseOptionalDate(req.EndDate, "end_date")
		if err != nil {
			return nil, err
		}
		activity.EndDate = endDate
	}
	if req.Capacity != nil {
		activity.Capacity = req.Capacity
	}
	if req.FundingGoal != nil {
		if activity.Type != models.TypeCollegeFunded {
			return nil, NewValidationError("funding goal only applies to COLLEGE_FUNDED activities", nil)
		}
		activity.FundingGoal = req.FundingGoal
	}

	if req.OpenTemplate != nil || req.CommunityTemplate != nil || req.ApplicationForm != nil {
		templates, form, err := buildTypePayload(activity.Type, req.OpenTemplate, req.CommunityTemplate, req.ApplicationForm)
		if err != nil {
			return nil, err
		}
		if templates != nil {
			activity.TemplatesUsed = templates
		}
		if form != nil {
			activity.ApplicationForm = form
		}
	}

	if errs := activity.Validate(); errs.HasErrors() {
		return nil, modelValidationError("activity failed validation", errs)
	}

	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return nil, NewInternalError("failed to update activity")
	}

	s.invalidateFeed(ctx)

	return activity, nil
}

// DeleteActivity removes an activity. Owners and admins only.
func (s *activityService) DeleteActivity(ctx context.Context, activityID, userID int64, isAdmin bool) error {
	activity, err := s.activityRepo.GetByID(ctx, activityID, &userID)
	if err != nil {
		return NewInternalError("failed to load activity")
	}
	if activity == nil {
		return EntityNotFoundError("activity", activityID)
	}
	if !activity.IsOwnedBy(userID) && !isAdmin {
		return InsufficientPermissionsError("delete", "activity")
	}

	if err := s.activityRepo.Delete(ctx, activityID); err != nil {
		return NewInternalError("failed to delete activity")
	}

	s.invalidateFeed(ctx)

	if pubErr := s.events.PublishAsync(ctx, events.NewActivityDeletedEvent(activityID, userID)); pubErr != nil {
		s.logger.Warn("Failed to publish activity deleted event", zap.Error(pubErr))
	}

	return nil
}

// ===============================
// ENGAGEMENT
// ===============================

// ToggleLike flips the user's like on an activity
func (s *activityService) ToggleLike(ctx context.Context, userID, activityID int64) (*ToggleLikeResult, error) {
	if err := s.requireActiveActivity(ctx, activityID); err != nil {
		return nil, err
	}

	liked, count, err := s.likeRepo.Toggle(ctx, userID, activityID)
	if err != nil {
		return nil, NewInternalError("failed to toggle like")
	}

	s.invalidateFeed(ctx)

	if pubErr := s.events.PublishAsync(ctx, events.NewActivityLikedEvent(activityID, userID, liked)); pubErr != nil {
		s.logger.Warn("Failed to publish like event", zap.Error(pubErr))
	}

	return &ToggleLikeResult{Liked: liked, LikeCount: count}, nil
}

// JoinActivity confirms the user onto an activity, honoring capacity
func (s *activityService) JoinActivity(ctx context.Context, userID, activityID int64) (*models.JoinRequest, error) {
	request, err := s.joinRepo.Join(ctx, userID, activityID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrActivityNotFound):
			return nil, EntityNotFoundError("activity", activityID)
		case errors.Is(err, repositories.ErrActivityFull):
			return nil, NewConflictError("this activity is already at capacity", "ACTIVITY_FULL")
		case errors.Is(err, repositories.ErrAlreadyJoined):
			return nil, NewConflictError("you have already joined this activity", "ALREADY_JOINED")
		default:
			return nil, NewInternalError("failed to join activity")
		}
	}

	s.invalidateFeed(ctx)

	if pubErr := s.events.PublishAsync(ctx, events.NewActivityJoinedEvent(activityID, userID)); pubErr != nil {
		s.logger.Warn("Failed to publish join event", zap.Error(pubErr))
	}

	return request, nil
}

// LeaveActivity releases the user's slot on an activity
func (s *activityService) LeaveActivity(ctx context.Context, userID, activityID int64) error {
	if err := s.joinRepo.Leave(ctx, userID, activityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewNotFoundError("you have not joined this activity")
		}
		return NewInternalError("failed to leave activity")
	}

	s.invalidateFeed(ctx)
	return nil
}

// GetParticipants lists an activity's confirmed participants
func (s *activityService) GetParticipants(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.JoinRequest], error) {
	if err := s.requireActiveActivity(ctx, activityID); err != nil {
		return nil, err
	}

	page, err := s.joinRepo.GetByActivityID(ctx, activityID, params)
	if err != nil {
		return nil, NewInternalError("failed to list participants")
	}
	return page, nil
}

// ===============================
// COMMENTS
// ===============================

// AddComment posts a comment on an activity
func (s *activityService) AddComment(ctx context.Context, req *CreateCommentRequest) (*models.Comment, error) {
	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("comment failed validation", violations)
	}

	if err := s.requireActiveActivity(ctx, req.ActivityID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:     req.UserID,
		ActivityID: req.ActivityID,
		Text:       models.Sanitize(req.Text),
	}

	if errs := comment.Validate(); errs.HasErrors() {
		return nil, modelValidationError("comment failed validation", errs)
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, NewInternalError("failed to create comment")
	}

	// Reload to attach the author for the response.
	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil || created == nil {
		created = comment
	}

	if pubErr := s.events.PublishAsync(ctx, events.NewCommentCreatedEvent(comment.ID, req.ActivityID, req.UserID)); pubErr != nil {
		s.logger.Warn("Failed to publish comment event", zap.Error(pubErr))
	}

	return created, nil
}

// GetComments lists an activity's comments
func (s *activityService) GetComments(ctx context.Context, activityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	if err := s.requireActiveActivity(ctx, activityID); err != nil {
		return nil, err
	}

	page, err := s.commentRepo.GetByActivityID(ctx, activityID, params)
	if err != nil {
		return nil, NewInternalError("failed to list comments")
	}
	return page, nil
}

// DeleteComment removes a comment. Authors and admins only.
func (s *activityService) DeleteComment(ctx context.Context, commentID, userID int64, isAdmin bool) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return NewInternalError("failed to load comment")
	}
	if comment == nil {
		return EntityNotFoundError("comment", commentID)
	}
	if comment.UserID != userID && !isAdmin {
		return InsufficientPermissionsError("delete", "comment")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return NewInternalError("failed to delete comment")
	}

	return nil
}

// ===============================
// MODERATION
// ===============================

// ReportActivity files a report against an activity. One per user per
// activity.
func (s *activityService) ReportActivity(ctx context.Context, req *ReportActivityRequest) (*models.Report, error) {
	if violations := validation.CollectViolations(req); violations != nil {
		return nil, violationError("report failed validation", violations)
	}

	if err := s.requireActiveActivity(ctx, req.ActivityID); err != nil {
		return nil, err
	}

	report := &models.Report{
		ReporterID: req.ReporterID,
		ActivityID: req.ActivityID,
		Reason:     models.Sanitize(req.Reason),
		Status:     models.ReportStatusOpen,
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		if errors.Is(err, repositories.ErrAlreadyReported) {
			return nil, NewConflictError("you have already reported this activity", "ALREADY_REPORTED")
		}
		return nil, NewInternalError("failed to file report")
	}

	if pubErr := s.events.PublishAsync(ctx, events.NewActivityReportedEvent(req.ActivityID, report.ID, req.ReporterID)); pubErr != nil {
		s.logger.Warn("Failed to publish report event", zap.Error(pubErr))
	}

	return report, nil
}

// ListReports returns the admin report queue
func (s *activityService) ListReports(ctx context.Context, status *string, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	page, err := s.reportRepo.List(ctx, status, params)
	if err != nil {
		return nil, NewInternalError("failed to list reports")
	}
	return page, nil
}

// ResolveReport records an admin's decision on a report
func (s *activityService) ResolveReport(ctx context.Context, req *ResolveReportRequest) error {
	if violations := validation.CollectViolations(req); violations != nil {
		return violationError("report resolution failed validation", violations)
	}

	report, err := s.reportRepo.GetByID(ctx, req.ReportID)
	if err != nil {
		return NewInternalError("failed to load report")
	}
	if report == nil {
		return EntityNotFoundError("report", req.ReportID)
	}
	if report.Status != models.ReportStatusOpen {
		return NewConflictError("this report has already been decided", "REPORT_DECIDED")
	}

	if err := s.reportRepo.UpdateStatus(ctx, req.ReportID, req.Status); err != nil {
		return NewInternalError("failed to update report")
	}

	s.logger.Info("Report resolved",
		zap.Int64("report_id", req.ReportID),
		zap.Int64("admin_id", req.AdminID),
		zap.String("status", req.Status),
	)

	return nil
}

// ===============================
// FUNDING APPROVALS
// ===============================

// ListPendingFunded lists funding activities awaiting approval
func (s *activityService) ListPendingFunded(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Activity], error) {
	page, err := s.activityRepo.GetPendingFunded(ctx, params)
	if err != nil {
		return nil, NewInternalError("failed to list pending activities")
	}
	return page, nil
}

// ApproveFundedActivity activates a pending COLLEGE_FUNDED activity
func (s *activityService) ApproveFundedActivity(ctx context.Context, activityID, adminID int64) error {
	activity, err := s.activityRepo.GetByID(ctx, activityID, nil)
	if err != nil {
		return NewInternalError("failed to load activity")
	}
	if activity == nil {
		return EntityNotFoundError("activity", activityID)
	}
	if activity.Type != models.TypeCollegeFunded {
		return NewValidationError("only COLLEGE_FUNDED activities require approval", nil)
	}
	if activity.IsActive {
		return NewConflictError("this activity is already approved", "ALREADY_APPROVED")
	}

	if err := s.activityRepo.SetActive(ctx, activityID, true); err != nil {
		return NewInternalError("failed to approve activity")
	}

	s.invalidateFeed(ctx)

	if pubErr := s.events.PublishAsync(ctx, events.NewActivityApprovedEvent(activityID, activity.AuthorID, adminID)); pubErr != nil {
		s.logger.Warn("Failed to publish approval event", zap.Error(pubErr))
	}

	s.logger.Info("Funded activity approved",
		zap.Int64("activity_id", activityID),
		zap.Int64("admin_id", adminID),
	)

	return nil
}

// ===============================
// HELPERS
// ===============================

// requireActiveActivity ensures the activity exists and is on the board
func (s *activityService) requireActiveActivity(ctx context.Context, activityID int64) error {
	activity, err := s.activityRepo.GetByID(ctx, activityID, nil)
	if err != nil {
		return NewInternalError("failed to load activity")
	}
	if activity == nil || !activity.IsActive {
		return EntityNotFoundError("activity", activityID)
	}
	return nil
}

// invalidateFeed drops cached feed pages after any write
func (s *activityService) invalidateFeed(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, feedCachePrefix+"*"); err != nil {
		s.logger.Debug("Failed to invalidate feed cache", zap.Error(err))
	}
}

const feedCachePrefix = "activities:feed:"

// feedCacheKey builds a cache key for an anonymous feed page
func feedCacheKey(filter models.ActivityFilter, params models.PaginationParams) string {
	return fmt.Sprintf("%sq=%s:g=%s:t=%s:f=%s:s=%s:l=%d:o=%d",
		feedCachePrefix,
		filter.Query, filter.Genre, filter.Type, filter.Frequency,
		params.Sort, params.Limit, params.Offset,
	)
}

// parseOptionalDate accepts RFC 3339 timestamps or plain dates
func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", *raw); err == nil {
		return &t, nil
	}
	return nil, NewValidationError(fmt.Sprintf("%s must be an RFC 3339 timestamp or YYYY-MM-DD date", field), nil)
}

// modelValidationError converts model validation errors into a detailed
// service validation error.
func modelValidationError(message string, errs models.ValidationErrors) error {
	fields := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, FieldError{
			Field:   e.Field,
			Value:   e.Value,
			Message: e.Message,
			Code:    e.Code,
		})
	}
	return NewDetailedValidationError(message, fields)
}
