// file: internal/services/activity_service_test.go
package services

import (
	"context"
	"strings"
	"testing"

	"campusboard/internal/cache"
	"campusboard/internal/events"
	"campusboard/internal/models"
	"campusboard/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type activityServiceFixture struct {
	service      ActivityService
	users        *fakeUserRepo
	activities   *fakeActivityRepo
	comments     *fakeCommentRepo
	likes        *fakeLikeRepo
	joins        *fakeJoinRepo
	reports      *fakeReportRepo
	verification *fakeVerificationRepo
}

func newActivityServiceFixture(t *testing.T) *activityServiceFixture {
	t.Helper()
	logger := zap.NewNop()

	users := newFakeUserRepo()
	activities := newFakeActivityRepo()
	comments := newFakeCommentRepo()
	likes := newFakeLikeRepo()
	joins := newFakeJoinRepo()
	reports := newFakeReportRepo()
	verification := newFakeVerificationRepo(users)

	repos := &repositories.Collection{
		User:         users,
		Activity:     activities,
		Comment:      comments,
		Like:         likes,
		JoinRequest:  joins,
		Report:       reports,
		Verification: verification,
	}

	service := NewActivityService(
		repos,
		cache.NewMemoryCache(cache.DefaultConfig(), logger),
		events.NewInMemoryEventBus(events.DefaultEventBusConfig(), logger),
		logger,
	)

	return &activityServiceFixture{
		service:      service,
		users:        users,
		activities:   activities,
		comments:     comments,
		likes:        likes,
		joins:        joins,
		reports:      reports,
		verification: verification,
	}
}

func (f *activityServiceFixture) addVerifiedUser(id int64) *models.User {
	return f.users.add(&models.User{
		ID:         id,
		RollNumber: "CS2021/042",
		Name:       "Asha Mensah",
		IsVerified: true,
	})
}

func (f *activityServiceFixture) addActiveActivity(id, authorID int64) *models.Activity {
	return f.activities.add(&models.Activity{
		ID:          id,
		AuthorID:    authorID,
		Title:       "Weekly robotics build sessions",
		Description: "Hands-on sessions assembling the club's competition robot.",
		Type:        models.TypeOpen,
		Genre:       models.GenreTech,
		Frequency:   models.FrequencyWeekly,
		IsActive:    true,
	})
}

func openCreateRequest(authorID int64) *CreateActivityRequest {
	return &CreateActivityRequest{
		AuthorID:    authorID,
		Title:       "Sunrise football at the east field",
		Description: "Casual 7-a-side games every week, all skill levels welcome.",
		Type:        models.TypeOpen,
		Genre:       models.GenreSports,
		Frequency:   models.FrequencyWeekly,
	}
}

func fundedCreateRequest(authorID int64) *CreateActivityRequest {
	goal := int64(50000)
	cost := int64(30000)
	return &CreateActivityRequest{
		AuthorID:    authorID,
		Title:       "Inter-college hackathon weekend",
		Description: "A 48-hour hackathon with prizes, mentors and catered meals.",
		Type:        models.TypeCollegeFunded,
		Genre:       models.GenreTech,
		Frequency:   models.FrequencyOneOff,
		StartDate:   strPtr("2026-10-17"),
		FundingGoal: &goal,
		ApplicationForm: &ApplicationFormRequest{
			BudgetBreakdown: []models.BudgetItem{
				{Item: "Venue and AV", Cost: &cost},
			},
		},
	}
}

func strPtr(s string) *string { return &s }

// ===============================
// CREATE
// ===============================

func TestCreateActivityOpenGoesLiveImmediately(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)

	result, err := f.service.CreateActivity(context.Background(), openCreateRequest(1))
	require.NoError(t, err, "verified user should be able to create an OPEN activity")

	assert.True(t, result.Activity.IsActive, "OPEN activities should be live immediately")
	assert.True(t, result.Activity.IsOwner, "creator should be marked as owner")
	assert.Equal(t, ActivityCreatedMessage, result.Message)
	assert.NotNil(t, result.Activity.TemplatesUsed, "OPEN activities carry an open template")
	assert.NotNil(t, result.Activity.TemplatesUsed.Open)
}

func TestCreateActivityFundedStartsPending(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)

	result, err := f.service.CreateActivity(context.Background(), fundedCreateRequest(1))
	require.NoError(t, err)

	assert.False(t, result.Activity.IsActive, "funded activities should wait for admin approval")
	assert.Equal(t, FundingPendingMessage, result.Message)
	require.NotNil(t, result.Activity.ApplicationForm)
	assert.Len(t, result.Activity.ApplicationForm.BudgetBreakdown, 1)
}

func TestCreateActivityTitleBoundsIgnoreEscaping(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)

	req := openCreateRequest(1)
	req.Title = "Tom & Jerry " + strings.Repeat("x", 108)
	require.Len(t, req.Title, 120)

	result, err := f.service.CreateActivity(context.Background(), req)
	require.NoError(t, err, "length bounds apply to the title as typed, not its escaped form")
	assert.Contains(t, result.Activity.Title, "Tom &amp; Jerry")
}

func TestCreateActivityRejectsUnverifiedAuthor(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah", IsVerified: false})

	_, err := f.service.CreateActivity(context.Background(), openCreateRequest(1))
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", GetServiceError(err).Type)
}

func TestCreateActivityEnforcesActiveQuota(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)
	f.activities.activeCount = models.MaxActiveActivitiesPerUser

	_, err := f.service.CreateActivity(context.Background(), openCreateRequest(1))
	require.Error(t, err)

	serviceErr := GetServiceError(err)
	assert.True(t, IsQuotaExceededError(err), "hitting the cap should be a quota error")
	assert.Equal(t, models.MaxActiveActivitiesPerUser, serviceErr.Details["limit"])
}

func TestCreateActivityRejectsMismatchedPayload(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)

	req := openCreateRequest(1)
	req.CommunityTemplate = &CommunityTemplateRequest{
		CommunityName:    "Chess circle",
		Goals:            "Weekly practice and a termly tournament",
		MeetingFrequency: models.FrequencyWeekly,
	}

	_, err := f.service.CreateActivity(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidationError(err), "OPEN activity with a community template should fail validation")
}

func TestCreateActivityFundedFormIsOptional(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)

	req := fundedCreateRequest(1)
	req.ApplicationForm = nil

	result, err := f.service.CreateActivity(context.Background(), req)
	require.NoError(t, err, "a funding goal alone should be enough to submit a funded activity")

	assert.False(t, result.Activity.IsActive)
	require.NotNil(t, result.Activity.ApplicationForm, "a funded activity always carries a form, even an empty one")
	assert.Empty(t, result.Activity.ApplicationForm.BudgetBreakdown)
}

func TestCreateActivityCommunityRejectsUnknownMeetingFrequency(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)

	req := openCreateRequest(1)
	req.Type = models.TypeCommunity
	req.CommunityTemplate = &CommunityTemplateRequest{
		CommunityName:    "Chess circle",
		Goals:            "Weekly practice and a termly tournament",
		MeetingFrequency: models.FrequencyFortnightly,
	}

	_, err := f.service.CreateActivity(context.Background(), req)
	require.Error(t, err, "FORTNIGHTLY is not a community meeting frequency")
	assert.True(t, IsValidationError(err))
}

func TestCreateActivityFundedRequiresGoal(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)

	req := fundedCreateRequest(1)
	req.FundingGoal = nil

	_, err := f.service.CreateActivity(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

// ===============================
// READ
// ===============================

func TestGetActivityHidesInactiveFromNonOwners(t *testing.T) {
	f := newActivityServiceFixture(t)
	activity := f.addActiveActivity(10, 1)
	activity.IsActive = false

	viewer := int64(2)
	_, err := f.service.GetActivityByID(context.Background(), 10, &viewer)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err), "inactive activities should look missing to other users")

	owner := int64(1)
	got, err := f.service.GetActivityByID(context.Background(), 10, &owner)
	require.NoError(t, err, "owners should still see their pending activity")
	assert.Equal(t, int64(10), got.ID)
}

func TestGetActivityUnknownID(t *testing.T) {
	f := newActivityServiceFixture(t)

	_, err := f.service.GetActivityByID(context.Background(), 999, nil)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

// ===============================
// UPDATE & DELETE
// ===============================

func TestUpdateActivityOwnerOnly(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	_, err := f.service.UpdateActivity(context.Background(), &UpdateActivityRequest{
		ActivityID: 10,
		UserID:     2,
		Title:      strPtr("Hijacked title attempt"),
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", GetServiceError(err).Type)
}

func TestUpdateActivityAppliesPartialEdits(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	updated, err := f.service.UpdateActivity(context.Background(), &UpdateActivityRequest{
		ActivityID:  10,
		UserID:      1,
		Title:       strPtr("Robotics build sessions, now twice a week"),
		Description: strPtr("Extra Thursday slot added ahead of the regional competition."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Robotics build sessions, now twice a week", updated.Title)
	assert.Equal(t, models.GenreTech, updated.Genre, "untouched fields should survive")
}

func TestUpdateActivityRejectsFundingGoalOnOpenType(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	goal := int64(1000)
	_, err := f.service.UpdateActivity(context.Background(), &UpdateActivityRequest{
		ActivityID:  10,
		UserID:      1,
		FundingGoal: &goal,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestDeleteActivityAdminOverride(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	err := f.service.DeleteActivity(context.Background(), 10, 99, false)
	require.Error(t, err, "strangers must not delete activities")

	err = f.service.DeleteActivity(context.Background(), 10, 99, true)
	require.NoError(t, err, "admins may delete any activity")

	got, _ := f.activities.GetByID(context.Background(), 10, nil)
	assert.Nil(t, got)
}

// ===============================
// ENGAGEMENT
// ===============================

func TestToggleLikeFlipsState(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	first, err := f.service.ToggleLike(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 1, first.LikeCount)

	second, err := f.service.ToggleLike(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.False(t, second.Liked, "second toggle should remove the like")
	assert.Equal(t, 0, second.LikeCount)
}

func TestToggleLikeMissingActivity(t *testing.T) {
	f := newActivityServiceFixture(t)

	_, err := f.service.ToggleLike(context.Background(), 2, 404)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestJoinActivityConfirmsImmediately(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	request, err := f.service.JoinActivity(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, models.JoinStatusConfirmed, request.Status)
}

func TestJoinActivityDuplicate(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	_, err := f.service.JoinActivity(context.Background(), 2, 10)
	require.NoError(t, err)

	_, err = f.service.JoinActivity(context.Background(), 2, 10)
	require.Error(t, err)

	serviceErr := GetServiceError(err)
	assert.True(t, IsConflictError(err))
	assert.Equal(t, "ALREADY_JOINED", serviceErr.Code)
}

func TestJoinActivityAtCapacity(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)
	f.joins.joinErr = repositories.ErrActivityFull

	_, err := f.service.JoinActivity(context.Background(), 2, 10)
	require.Error(t, err)

	serviceErr := GetServiceError(err)
	assert.True(t, IsConflictError(err))
	assert.Equal(t, "ACTIVITY_FULL", serviceErr.Code)
}

func TestLeaveActivityNotJoined(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	err := f.service.LeaveActivity(context.Background(), 2, 10)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err), "leaving without a join should be a not-found")
}

func TestLeaveActivityReleasesSlot(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	_, err := f.service.JoinActivity(context.Background(), 2, 10)
	require.NoError(t, err)

	require.NoError(t, f.service.LeaveActivity(context.Background(), 2, 10))

	joined, _ := f.joins.HasJoined(context.Background(), 2, 10)
	assert.False(t, joined)
}

// ===============================
// COMMENTS
// ===============================

func TestAddCommentOnActiveActivity(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	comment, err := f.service.AddComment(context.Background(), &CreateCommentRequest{
		UserID:     2,
		ActivityID: 10,
		Text:       "Count me in for Saturday!",
	})
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)
	assert.Equal(t, "Count me in for Saturday!", comment.Text)
}

func TestAddCommentMaxLengthWithApostrophe(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	text := "it's " + strings.Repeat("a", 995)
	require.Len(t, text, 1000)

	comment, err := f.service.AddComment(context.Background(), &CreateCommentRequest{
		UserID:     2,
		ActivityID: 10,
		Text:       text,
	})
	require.NoError(t, err, "escaping must not push a max-length comment over the bound")
	assert.Contains(t, comment.Text, "&#x27;", "stored text should be escaped")
}

func TestAddCommentRejectsEmptyText(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	_, err := f.service.AddComment(context.Background(), &CreateCommentRequest{
		UserID:     2,
		ActivityID: 10,
		Text:       "",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestDeleteCommentAuthorOrAdmin(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	comment, err := f.service.AddComment(context.Background(), &CreateCommentRequest{
		UserID:     2,
		ActivityID: 10,
		Text:       "See you there",
	})
	require.NoError(t, err)

	err = f.service.DeleteComment(context.Background(), comment.ID, 3, false)
	require.Error(t, err, "other users must not delete comments")

	err = f.service.DeleteComment(context.Background(), comment.ID, 2, false)
	require.NoError(t, err, "authors may delete their own comments")
}

// ===============================
// MODERATION
// ===============================

func TestReportActivityOncePerUser(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	report, err := f.service.ReportActivity(context.Background(), &ReportActivityRequest{
		ReporterID: 2,
		ActivityID: 10,
		Reason:     "Misleading description of the event",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusOpen, report.Status)

	_, err = f.service.ReportActivity(context.Background(), &ReportActivityRequest{
		ReporterID: 2,
		ActivityID: 10,
		Reason:     "Reporting the same thing again",
	})
	require.Error(t, err)
	assert.Equal(t, "ALREADY_REPORTED", GetServiceError(err).Code)
}

func TestResolveReportRejectsDecidedReport(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	report, err := f.service.ReportActivity(context.Background(), &ReportActivityRequest{
		ReporterID: 2,
		ActivityID: 10,
		Reason:     "Spam posting across the board",
	})
	require.NoError(t, err)

	err = f.service.ResolveReport(context.Background(), &ResolveReportRequest{
		ReportID: report.ID,
		AdminID:  9,
		Status:   models.ReportStatusResolved,
	})
	require.NoError(t, err)

	err = f.service.ResolveReport(context.Background(), &ResolveReportRequest{
		ReportID: report.ID,
		AdminID:  9,
		Status:   models.ReportStatusDismissed,
	})
	require.Error(t, err)
	assert.Equal(t, "REPORT_DECIDED", GetServiceError(err).Code)
}

// ===============================
// FUNDING APPROVALS
// ===============================

func TestApproveFundedActivity(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addVerifiedUser(1)

	result, err := f.service.CreateActivity(context.Background(), fundedCreateRequest(1))
	require.NoError(t, err)
	require.False(t, result.Activity.IsActive)

	err = f.service.ApproveFundedActivity(context.Background(), result.Activity.ID, 9)
	require.NoError(t, err)

	approved, err := f.activities.GetByID(context.Background(), result.Activity.ID, nil)
	require.NoError(t, err)
	assert.True(t, approved.IsActive)
}

func TestApproveFundedActivityRejectsOpenType(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.addActiveActivity(10, 1)

	err := f.service.ApproveFundedActivity(context.Background(), 10, 9)
	require.Error(t, err)
	assert.True(t, IsValidationError(err), "only funded activities go through approval")
}

func TestApproveFundedActivityAlreadyApproved(t *testing.T) {
	f := newActivityServiceFixture(t)
	activity := f.addActiveActivity(10, 1)
	activity.Type = models.TypeCollegeFunded

	err := f.service.ApproveFundedActivity(context.Background(), 10, 9)
	require.Error(t, err)
	assert.Equal(t, "ALREADY_APPROVED", GetServiceError(err).Code)
}
