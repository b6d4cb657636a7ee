// file: internal/services/auth_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"campusboard/internal/config"
	"campusboard/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthServiceFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	logger := zap.NewNop()
	users := newFakeUserRepo()

	service := NewAuthService(
		users,
		events.NewInMemoryEventBus(events.DefaultEventBusConfig(), logger),
		logger,
		&config.AuthConfig{
			JWTSecret:  "test-signing-secret",
			JWTExpiry:  7 * 24 * time.Hour,
			BCryptCost: bcrypt.MinCost,
		},
	)
	return service, users
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	registered, err := service.Register(context.Background(), &RegisterRequest{
		RollNumber: "cs2021/042",
		Name:       "Asha Mensah",
		Password:   "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "CS2021/042", registered.User.RollNumber, "roll numbers should be normalized on signup")
	assert.NotEmpty(t, registered.Token)
	assert.False(t, registered.User.IsVerified, "new accounts start unverified")

	loggedIn, err := service.Login(context.Background(), &LoginRequest{
		RollNumber: "  cs2021/042 ",
		Password:   "correct horse battery",
	})
	require.NoError(t, err, "login should accept the un-normalized roll number")
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestRegisterRejectsDuplicateRollNumber(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.Register(context.Background(), &RegisterRequest{
		RollNumber: "CS2021/042",
		Name:       "Asha Mensah",
		Password:   "correct horse battery",
	})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), &RegisterRequest{
		RollNumber: "cs2021/042",
		Name:       "Another Person",
		Password:   "different password",
	})
	require.Error(t, err)
	assert.Equal(t, "ROLL_NUMBER_TAKEN", GetServiceError(err).Code)
}

func TestRegisterRejectsMalformedRollNumber(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.Register(context.Background(), &RegisterRequest{
		RollNumber: "NOT-A-ROLL",
		Name:       "Asha Mensah",
		Password:   "correct horse battery",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestLoginWrongPassword(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.Register(context.Background(), &RegisterRequest{
		RollNumber: "CS2021/042",
		Name:       "Asha Mensah",
		Password:   "correct horse battery",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), &LoginRequest{
		RollNumber: "CS2021/042",
		Password:   "wrong password",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", GetServiceError(err).Type)
}

func TestLoginUnknownAccountSameError(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.Login(context.Background(), &LoginRequest{
		RollNumber: "EE2020/001",
		Password:   "whatever",
	})
	require.Error(t, err)

	// Unknown accounts and bad passwords must be indistinguishable.
	assert.Equal(t, "invalid roll number or password", GetServiceError(err).Message)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	registered, err := service.Register(context.Background(), &RegisterRequest{
		RollNumber: "CS2021/042",
		Name:       "Asha Mensah",
		Password:   "correct horse battery",
	})
	require.NoError(t, err)

	claims, err := service.ValidateToken(context.Background(), registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "CS2021/042", claims.RollNumber)
	assert.False(t, claims.IsAdmin)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.ValidateToken(context.Background(), "not.a.token")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", GetServiceError(err).Type)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	service, users := newAuthServiceFixture(t)

	registered, err := service.Register(context.Background(), &RegisterRequest{
		RollNumber: "CS2021/042",
		Name:       "Asha Mensah",
		Password:   "correct horse battery",
	})
	require.NoError(t, err)

	err = service.ChangePassword(context.Background(), &ChangePasswordRequest{
		UserID:          registered.User.ID,
		CurrentPassword: "wrong current",
		NewPassword:     "brand new password",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", GetServiceError(err).Type)

	err = service.ChangePassword(context.Background(), &ChangePasswordRequest{
		UserID:          registered.User.ID,
		CurrentPassword: "correct horse battery",
		NewPassword:     "brand new password",
	})
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), registered.User.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(stored.PasswordHash), []byte("brand new password"),
	), "stored hash should match the new password")
}

func TestGetCurrentUserGone(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.GetCurrentUser(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", GetServiceError(err).Type)
}
