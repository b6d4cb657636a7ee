// file: internal/handlers/api/v1/auth/auth_controller_test.go
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campusboard/internal/config"
	"campusboard/internal/middleware"
	"campusboard/internal/models"
	"campusboard/internal/response"
	"campusboard/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAuthService implements services.AuthService with configurable
// behavior per test.
type mockAuthService struct {
	registerFunc       func(ctx context.Context, req *services.RegisterRequest) (*services.AuthResponse, error)
	loginFunc          func(ctx context.Context, req *services.LoginRequest) (*services.AuthResponse, error)
	getCurrentUserFunc func(ctx context.Context, userID int64) (*models.User, error)
	changePasswordFunc func(ctx context.Context, req *services.ChangePasswordRequest) error
}

func (m *mockAuthService) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResponse, error) {
	return m.registerFunc(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResponse, error) {
	return m.loginFunc(ctx, req)
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return m.getCurrentUserFunc(ctx, userID)
}

func (m *mockAuthService) ValidateToken(ctx context.Context, tokenString string) (*services.TokenClaims, error) {
	return nil, services.NewUnauthorizedError("invalid or expired token")
}

func (m *mockAuthService) ChangePassword(ctx context.Context, req *services.ChangePasswordRequest) error {
	return m.changePasswordFunc(ctx, req)
}

func newTestController(mock *mockAuthService) *AuthController {
	logger := zap.NewNop()
	sc := &services.ServiceCollection{
		AuthService: mock,
		Config: &config.Config{
			Auth: config.AuthConfig{CookieName: "campusboard_token"},
		},
	}
	return NewAuthController(sc, logger, response.NewBuilder(response.DefaultConfig(), logger))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRegisterEndpointCreatesAccount(t *testing.T) {
	mock := &mockAuthService{
		registerFunc: func(ctx context.Context, req *services.RegisterRequest) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				User:      &models.User{ID: 1, RollNumber: "CS2021/042", Name: req.Name},
				Token:     "signed-token",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	controller := newTestController(mock)

	payload := `{"roll_number":"cs2021/042","name":"Asha Mensah","password":"correct horse battery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	controller.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "Submit your ID")

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "signed-token", data["token"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1, "registration should set the auth cookie")
	assert.Equal(t, "campusboard_token", cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRegisterEndpointRejectsBadJSON(t *testing.T) {
	controller := newTestController(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	controller.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestRegisterEndpointSurfacesConflict(t *testing.T) {
	mock := &mockAuthService{
		registerFunc: func(ctx context.Context, req *services.RegisterRequest) (*services.AuthResponse, error) {
			return nil, services.NewConflictError("an account with this roll number already exists", "ROLL_NUMBER_TAKEN")
		},
	}
	controller := newTestController(mock)

	payload := `{"roll_number":"CS2021/042","name":"Asha Mensah","password":"correct horse battery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	controller.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	errDetail := body["error"].(map[string]interface{})
	assert.Equal(t, "ROLL_NUMBER_TAKEN", errDetail["code"])
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	mock := &mockAuthService{
		loginFunc: func(ctx context.Context, req *services.LoginRequest) (*services.AuthResponse, error) {
			return nil, services.NewUnauthorizedError("invalid roll number or password")
		},
	}
	controller := newTestController(mock)

	payload := `{"roll_number":"CS2021/042","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	controller.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "failed logins must not set a cookie")
}

func TestMeEndpointRequiresIdentity(t *testing.T) {
	controller := newTestController(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()

	controller.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeEndpointReturnsCurrentUser(t *testing.T) {
	mock := &mockAuthService{
		getCurrentUserFunc: func(ctx context.Context, userID int64) (*models.User, error) {
			return &models.User{ID: userID, RollNumber: "CS2021/042", Name: "Asha Mensah", IsVerified: true}, nil
		},
	}
	controller := newTestController(mock)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	ctx := middleware.WithUser(req.Context(), &models.User{ID: 1, RollNumber: "CS2021/042", Name: "Asha Mensah"})
	rec := httptest.NewRecorder()

	controller.Me(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "CS2021/042", data["roll_number"])
	assert.Equal(t, true, data["is_verified"])
}

func TestChangePasswordEndpointUsesContextIdentity(t *testing.T) {
	var captured *services.ChangePasswordRequest
	mock := &mockAuthService{
		changePasswordFunc: func(ctx context.Context, req *services.ChangePasswordRequest) error {
			captured = req
			return nil
		},
	}
	controller := newTestController(mock)

	payload := `{"current_password":"old password","new_password":"brand new password","user_id":999}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", strings.NewReader(payload))
	ctx := middleware.WithUser(req.Context(), &models.User{ID: 7, RollNumber: "CS2021/042", Name: "Asha Mensah"})
	rec := httptest.NewRecorder()

	controller.ChangePassword(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, int64(7), captured.UserID, "the caller's identity must come from the context, not the body")
}

func TestLogoutClearsCookie(t *testing.T) {
	controller := newTestController(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()

	controller.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "campusboard_token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}
