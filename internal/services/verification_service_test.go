// file: internal/services/verification_service_test.go
package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/events"
	"campusboard/internal/models"
	"campusboard/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeFileService records uploads and returns a stable URL
type fakeFileService struct {
	uploads int
	err     error
}

func (f *fakeFileService) UploadIDImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads++
	return &FileUploadResult{
		URL:      "https://cdn.example.com/ids/upload.jpg",
		PublicID: "ids/upload",
		Size:     req.Upload.Size,
	}, nil
}

func (f *fakeFileService) UploadProfileImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error) {
	return f.UploadIDImage(ctx, req)
}

func (f *fakeFileService) DeleteFile(ctx context.Context, publicID string) error {
	return nil
}

type verificationFixture struct {
	service  VerificationService
	users    *fakeUserRepo
	requests *fakeVerificationRepo
	files    *fakeFileService
	cache    cache.Cache
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	t.Helper()
	logger := zap.NewNop()

	users := newFakeUserRepo()
	requests := newFakeVerificationRepo(users)
	files := &fakeFileService{}
	userCache := cache.NewMemoryCache(cache.DefaultConfig(), logger)

	repos := &repositories.Collection{
		User:         users,
		Activity:     newFakeActivityRepo(),
		Comment:      newFakeCommentRepo(),
		Like:         newFakeLikeRepo(),
		JoinRequest:  newFakeJoinRepo(),
		Report:       newFakeReportRepo(),
		Verification: requests,
	}

	service := NewVerificationService(
		repos,
		files,
		userCache,
		events.NewInMemoryEventBus(events.DefaultEventBusConfig(), logger),
		logger,
	)

	return &verificationFixture{service: service, users: users, requests: requests, files: files, cache: userCache}
}

func TestRequestVerificationCreatesPendingRequest(t *testing.T) {
	f := newVerificationFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	request, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{
		UserID: 1,
		IDImage: &FileUpload{
			File:        strings.NewReader("jpeg bytes"),
			Filename:    "id.jpg",
			Size:        10,
			ContentType: "image/jpeg",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, request.Status)
	require.NotNil(t, request.IDImageURL)
	assert.Equal(t, "https://cdn.example.com/ids/upload.jpg", *request.IDImageURL)
	assert.Equal(t, 1, f.files.uploads)
}

func TestRequestVerificationAlreadyVerified(t *testing.T) {
	f := newVerificationFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah", IsVerified: true})

	_, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.Error(t, err)
	assert.Equal(t, "ALREADY_VERIFIED", GetServiceError(err).Code)
}

func TestRequestVerificationPendingBlocksResubmission(t *testing.T) {
	f := newVerificationFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	_, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.NoError(t, err)

	_, err = f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.Error(t, err)
	assert.Equal(t, "REQUEST_PENDING", GetServiceError(err).Code)
}

func TestRequestVerificationResubmitAfterRejection(t *testing.T) {
	f := newVerificationFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	first, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.NoError(t, err)

	_, err = f.service.ReviewRequest(context.Background(), &ReviewVerificationRequest{
		RequestID: first.ID,
		AdminID:   9,
		Approve:   false,
		Note:      "ID photo is unreadable",
	})
	require.NoError(t, err)

	resubmitted, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.NoError(t, err, "rejected requests may be resubmitted")
	assert.Equal(t, models.VerificationPending, resubmitted.Status)
	assert.Equal(t, first.ID, resubmitted.ID, "resubmission reuses the existing request row")
}

func TestReviewRequestApproveFlipsVerifiedFlag(t *testing.T) {
	f := newVerificationFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	request, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.NoError(t, err)

	reviewed, err := f.service.ReviewRequest(context.Background(), &ReviewVerificationRequest{
		RequestID: request.ID,
		AdminID:   9,
		Approve:   true,
		Note:      "ID checks out",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, reviewed.Status)
	require.NotNil(t, reviewed.AdminID)
	assert.Equal(t, int64(9), *reviewed.AdminID)

	user, err := f.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, user.IsVerified, "approval should mark the user verified")
}

func TestReviewRequestApproveNoteOptional(t *testing.T) {
	f := newVerificationFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	request, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.NoError(t, err)

	reviewed, err := f.service.ReviewRequest(context.Background(), &ReviewVerificationRequest{
		RequestID: request.ID,
		AdminID:   9,
		Approve:   true,
		Note:      "ok",
	})
	require.NoError(t, err, "approvals should not demand a note")
	assert.Equal(t, models.VerificationApproved, reviewed.Status)
}

func TestReviewRequestRejectRequiresNote(t *testing.T) {
	f := newVerificationFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	request, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.NoError(t, err)

	for _, note := range []string{"", "ok", "    "} {
		_, err = f.service.ReviewRequest(context.Background(), &ReviewVerificationRequest{
			RequestID: request.ID,
			AdminID:   9,
			Approve:   false,
			Note:      note,
		})
		require.Error(t, err, "rejections need a note the student can act on")
		assert.True(t, IsValidationError(err))
	}

	user, err := f.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, user.IsVerified, "a failed rejection must not touch the request")
}

func TestReviewRequestInvalidatesCachedUser(t *testing.T) {
	f := newVerificationFixture(t)
	user := f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	request, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.NoError(t, err)

	// Simulate the auth layer having cached the unverified user row.
	require.NoError(t, f.cache.Set(context.Background(), cache.UserKey(1), user, time.Minute))

	_, err = f.service.ReviewRequest(context.Background(), &ReviewVerificationRequest{
		RequestID: request.ID,
		AdminID:   9,
		Approve:   true,
		Note:      "ID checks out",
	})
	require.NoError(t, err)

	assert.False(t, f.cache.Exists(context.Background(), cache.UserKey(1)),
		"approval must drop the cached user so the verified flag is fresh")
}

func TestReviewRequestAlreadyDecided(t *testing.T) {
	f := newVerificationFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	request, err := f.service.RequestVerification(context.Background(), &RequestVerificationRequest{UserID: 1})
	require.NoError(t, err)

	_, err = f.service.ReviewRequest(context.Background(), &ReviewVerificationRequest{
		RequestID: request.ID,
		AdminID:   9,
		Approve:   true,
		Note:      "ID checks out",
	})
	require.NoError(t, err)

	_, err = f.service.ReviewRequest(context.Background(), &ReviewVerificationRequest{
		RequestID: request.ID,
		AdminID:   9,
		Approve:   false,
		Note:      "Second look",
	})
	require.Error(t, err)
	assert.Equal(t, "REQUEST_DECIDED", GetServiceError(err).Code)
}

func TestReviewRequestUnknownID(t *testing.T) {
	f := newVerificationFixture(t)

	_, err := f.service.ReviewRequest(context.Background(), &ReviewVerificationRequest{
		RequestID: 404,
		AdminID:   9,
		Approve:   true,
		Note:      "No such request",
	})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestGetVerificationStatusNoneOnFile(t *testing.T) {
	f := newVerificationFixture(t)

	_, err := f.service.GetVerificationStatus(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}
