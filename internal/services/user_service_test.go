// file: internal/services/user_service_test.go
package services

import (
	"context"
	"fmt"
	"testing"

	"campusboard/internal/models"
	"campusboard/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userServiceFixture struct {
	service    UserService
	users      *fakeUserRepo
	activities *fakeActivityRepo
}

func newUserServiceFixture(t *testing.T) *userServiceFixture {
	t.Helper()

	users := newFakeUserRepo()
	activities := newFakeActivityRepo()

	repos := &repositories.Collection{
		User:         users,
		Activity:     activities,
		Comment:      newFakeCommentRepo(),
		Like:         newFakeLikeRepo(),
		JoinRequest:  newFakeJoinRepo(),
		Report:       newFakeReportRepo(),
		Verification: newFakeVerificationRepo(users),
	}

	service := NewUserService(repos, zap.NewNop())
	return &userServiceFixture{service: service, users: users, activities: activities}
}

// seedAuthorActivities adds five activities for author 1, two of them
// inactive (a pending funded one and a delisted one).
func (f *userServiceFixture) seedAuthorActivities() {
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah", IsVerified: true})
	for i := int64(1); i <= 5; i++ {
		f.activities.add(&models.Activity{
			ID:          i,
			AuthorID:    1,
			Title:       fmt.Sprintf("Robotics build session %d", i),
			Description: "Hands-on sessions assembling the club's competition robot.",
			Type:        models.TypeOpen,
			Genre:       models.GenreTech,
			Frequency:   models.FrequencyWeekly,
			IsActive:    i != 2 && i != 4,
		})
	}
}

func TestGetUserActivitiesPublicViewerGetsFullPages(t *testing.T) {
	f := newUserServiceFixture(t)
	f.seedAuthorActivities()

	params := models.PaginationParams{Limit: 2, Offset: 0}
	page, err := f.service.GetUserActivities(context.Background(), 1, params, nil)
	require.NoError(t, err)

	assert.Len(t, page.Data, 2, "hidden activities must not shrink the page")
	assert.Equal(t, int64(3), page.Pagination.TotalItems, "totals should count only visible activities")
	assert.True(t, page.Pagination.HasNext)

	params.Offset = 2
	page, err = f.service.GetUserActivities(context.Background(), 1, params, nil)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.False(t, page.Pagination.HasNext)

	for _, a := range page.Data {
		assert.True(t, a.IsActive)
	}
}

func TestGetUserActivitiesOwnerSeesInactive(t *testing.T) {
	f := newUserServiceFixture(t)
	f.seedAuthorActivities()

	owner := int64(1)
	page, err := f.service.GetUserActivities(context.Background(), 1, models.PaginationParams{Limit: 10}, &owner)
	require.NoError(t, err)

	assert.Len(t, page.Data, 5, "owners see their pending and delisted activities")
	assert.Equal(t, int64(5), page.Pagination.TotalItems)
}

func TestGetUserActivitiesUnknownUser(t *testing.T) {
	f := newUserServiceFixture(t)

	_, err := f.service.GetUserActivities(context.Background(), 404, models.PaginationParams{Limit: 10}, nil)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestUpdateProfileSanitizesName(t *testing.T) {
	f := newUserServiceFixture(t)
	f.users.add(&models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})

	name := "Asha <Mensah>"
	updated, err := f.service.UpdateProfile(context.Background(), &UpdateProfileRequest{
		UserID: 1,
		Name:   &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha &lt;Mensah&gt;", updated.Name)
}
